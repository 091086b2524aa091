package llm

// BuildTransactionArraySchema returns a JSON-Schema (draft 2020-12 subset)
// for the transaction array as a generic map. We use it locally to validate
// the completion-service response before trusting a single field.
func BuildTransactionArraySchema(allowedCategories []string) map[string]any {
	props := map[string]any{
		"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"description": map[string]any{"type": "string", "minLength": 1},
		"amount":      map[string]any{"type": "number"},
		"category":    map[string]any{"type": "string"},
		"payee":       map[string]any{"type": "string"},
		"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"tags": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	}

	// Constrain category if a taxonomy is provided.
	if len(allowedCategories) > 0 {
		props["category"] = map[string]any{
			"type": "string",
			"enum": allowedCategories,
		}
	}

	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"date", "description", "amount"},
	}

	return map[string]any{
		"type":  "array",
		"items": item,
	}
}

// BuildClassificationSchema describes the two-field classifier response.
func BuildClassificationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"bank":     map[string]any{"type": "string"},
			"language": map[string]any{"type": "string"},
		},
		"required": []string{"bank", "language"},
	}
}
