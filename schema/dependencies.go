package schema

import (
	"fmt"
	"sort"
	"strings"
)

// evaluateDependencies implements the draft-04/06/07 "dependencies" keyword,
// superseded from 2019-09 onward by the split dependentRequired/
// dependentSchemas keywords (see dependentRequired.go, dependentSchemas.go).
// Its value is an object whose entries are either an array of required
// property names or a subschema:
//   - Array form: if the key property is present, every named property
//     must also be present.
//   - Schema form: if the key property is present, the whole instance must
//     validate against the associated schema.
//
// Reference: https://json-schema.org/draft-07/json-schema-validation#rfc.section.6.5.7
func evaluateDependencies(schema *Schema, data interface{}, evaluatedProps map[string]bool, evaluatedItems map[int]bool, dynamicScope *DynamicScope) ([]*EvaluationResult, *EvaluationError) {
	if len(schema.Dependencies) == 0 || !schema.dialect().legacyDependenciesApply() {
		return nil, nil
	}

	object, ok := data.(map[string]interface{})
	if !ok {
		return nil, nil // Data is not an object, dependencies do not apply.
	}

	results := []*EvaluationResult{}
	invalidProps := []string{}

	for propName, dep := range schema.Dependencies {
		if _, exists := object[propName]; !exists || dep == nil {
			continue
		}

		if dep.Schema != nil {
			result, schemaEvaluatedProps, schemaEvaluatedItems := dep.Schema.evaluate(object, dynamicScope)
			if result != nil {
				result.SetEvaluationPath(fmt.Sprintf("/dependencies/%s", propName)).
					SetSchemaLocation(schema.GetSchemaLocation(fmt.Sprintf("/dependencies/%s", propName))).
					SetInstanceLocation("")
				results = append(results, result)
			}
			if result != nil && result.IsValid() {
				mergeStringMaps(evaluatedProps, schemaEvaluatedProps)
				mergeIntMaps(evaluatedItems, schemaEvaluatedItems)
			} else {
				invalidProps = append(invalidProps, propName)
			}
			continue
		}

		for _, req := range dep.Required {
			if _, ok := object[req]; !ok {
				invalidProps = append(invalidProps, propName)
				break
			}
		}
	}

	if len(invalidProps) == 0 {
		return results, nil
	}

	sort.Strings(invalidProps)
	quoted := make([]string, len(invalidProps))
	for i, p := range invalidProps {
		quoted[i] = fmt.Sprintf("'%s'", p)
	}
	return results, NewEvaluationError("dependencies", "dependencies_mismatch", "Property {properties} does not meet its dependencies requirements", map[string]interface{}{
		"properties": strings.Join(quoted, ", "),
	})
}
