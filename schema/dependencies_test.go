package schema

import "testing"

func TestDependenciesRequiredFormUnderDraft07(t *testing.T) {
	schemaJSON := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"dependencies": {
			"creditCard": ["billingAddress"]
		}
	}`

	compiler := NewCompiler()
	s, err := compiler.Compile([]byte(schemaJSON))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if result := s.Validate(map[string]interface{}{"creditCard": "1234"}); result.IsValid() {
		t.Error("expected invalid: creditCard present without billingAddress")
	}

	if result := s.Validate(map[string]interface{}{"creditCard": "1234", "billingAddress": "123 Main St"}); !result.IsValid() {
		t.Error("expected valid: both properties present")
	}

	if result := s.Validate(map[string]interface{}{"billingAddress": "123 Main St"}); !result.IsValid() {
		t.Error("expected valid: key property absent, dependency does not apply")
	}
}

func TestDependenciesSchemaFormUnderDraft06(t *testing.T) {
	schemaJSON := `{
		"$schema": "http://json-schema.org/draft-06/schema#",
		"type": "object",
		"dependencies": {
			"name": {
				"properties": {
					"age": {"type": "integer"}
				},
				"required": ["age"]
			}
		}
	}`

	compiler := NewCompiler()
	s, err := compiler.Compile([]byte(schemaJSON))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	if result := s.Validate(map[string]interface{}{"name": "widget"}); result.IsValid() {
		t.Error("expected invalid: name present without required age")
	}

	if result := s.Validate(map[string]interface{}{"name": "widget", "age": 3}); !result.IsValid() {
		t.Error("expected valid: name and age both present")
	}
}

func TestDependenciesIgnoredUnder202012(t *testing.T) {
	schemaJSON := `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"dependencies": {
			"creditCard": ["billingAddress"]
		}
	}`

	compiler := NewCompiler()
	s, err := compiler.Compile([]byte(schemaJSON))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	result := s.Validate(map[string]interface{}{"creditCard": "1234"})
	if !result.IsValid() {
		t.Error("expected legacy dependencies to be ignored under 2020-12")
	}
}
