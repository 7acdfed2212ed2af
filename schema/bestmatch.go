package schema

import (
	"fmt"

	"github.com/goccy/go-json"
)

// matchScore ranks how close a failed oneOf/anyOf alternative came to
// matching, so the validator can report the single most useful branch
// instead of an undifferentiated list of every failure.
//
// Ranking is lexicographic over the four fields in the order declared:
// an error-free alternative beats one with errors, a matching enum beats a mismatched
// one, then more matched property values, then more matched property
// names.
type matchScore struct {
	hasErrors              bool
	enumValueMatch         bool
	propertiesValueMatches int
	propertiesMatches      int
}

func scoreAlternative(subSchema *Schema, instance interface{}, result *EvaluationResult) matchScore {
	score := matchScore{enumValueMatch: true}
	if result == nil {
		return score
	}
	score.hasErrors = !result.IsValid()

	if _, failed := result.Errors["enum"]; failed {
		score.enumValueMatch = false
	}

	obj, isObject := instance.(map[string]any)
	if subSchema != nil && subSchema.Properties != nil && isObject {
		for name := range *subSchema.Properties {
			if _, present := obj[name]; present {
				score.propertiesMatches++
			}
		}
	}
	for _, detail := range result.Details {
		if isObject && detail.IsValid() && len(detail.InstanceLocation) > 0 {
			score.propertiesValueMatches++
		}
	}

	return score
}

// better reports whether a is a stronger candidate than b under the
// ranking described on matchScore.
func (a matchScore) better(b matchScore) bool {
	if a.hasErrors != b.hasErrors {
		return !a.hasErrors
	}
	if a.enumValueMatch != b.enumValueMatch {
		return a.enumValueMatch
	}
	if a.propertiesValueMatches != b.propertiesValueMatches {
		return a.propertiesValueMatches > b.propertiesValueMatches
	}
	return a.propertiesMatches > b.propertiesMatches
}

// bestAlternative picks the strongest-scoring branch among a set of
// oneOf/anyOf results, and collects the enum values of every failed enum
// keyword inside each branch's result tree (the branch schema itself and
// nested schemas such as property schemas), so a single merged diagnostic
// can list every value the instance was allowed to take across all
// rejected branches.
func bestAlternative(subSchemas []*Schema, instance interface{}, results []*EvaluationResult) (bestIndex int, mismatchedEnumValues []any) {
	seen := make(map[string]bool)
	best := matchScore{}
	bestSet := false

	for i, result := range results {
		var sub *Schema
		if i < len(subSchemas) {
			sub = subSchemas[i]
		}
		s := scoreAlternative(sub, instance, result)
		if !bestSet || s.better(best) {
			best = s
			bestIndex = i
			bestSet = true
		}

		var collect func(r *EvaluationResult)
		collect = func(r *EvaluationResult) {
			if _, failed := r.Errors["enum"]; failed && r.schema != nil {
				for _, v := range r.schema.Enum {
					key := enumKeyOf(v)
					if seen[key] {
						continue
					}
					seen[key] = true
					mismatchedEnumValues = append(mismatchedEnumValues, v)
				}
			}
			for _, detail := range r.Details {
				collect(detail)
			}
		}
		if result != nil {
			collect(result)
		}
	}

	return bestIndex, mismatchedEnumValues
}

func enumKeyOf(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
