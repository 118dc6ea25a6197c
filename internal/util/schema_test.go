package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Valid  bool     `json:"valid" description:"Whether the input passes"`
	Topic  string   `json:"topic"`
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
	Note   *string  `json:"note"`
	hidden string
}

func TestCreateSchema(t *testing.T) {
	s := CreateSchema(&verdict{})

	assert.Equal(t, "object", s["type"])
	props := s["properties"].(map[string]any)
	require.Len(t, props, 5)
	assert.Equal(t, "boolean", props["valid"].(map[string]any)["type"])
	assert.Equal(t, "Whether the input passes", props["valid"].(map[string]any)["description"])
	assert.Equal(t, "number", props["score"].(map[string]any)["type"])
	assert.Equal(t, map[string]any{"type": "string"}, props["issues"].(map[string]any)["items"])
	assert.ElementsMatch(t, []string{"valid", "topic", "score"}, s["required"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	s := CreateSchema(42)
	assert.Equal(t, "object", s["type"])
	assert.Empty(t, s["properties"])
}

func TestValidateObject(t *testing.T) {
	schema := CreateSchema(verdict{})

	tests := []struct {
		name    string
		obj     map[string]any
		field   string
		wantErr bool
	}{
		{"complete", map[string]any{"valid": true, "topic": "go", "score": 0.5}, "", false},
		{"optional omitted", map[string]any{"valid": false, "topic": "", "score": 1.0, "extra": 1}, "", false},
		{"missing required", map[string]any{"valid": true, "score": 0.5}, "topic", true},
		{"wrong type", map[string]any{"valid": "yes", "topic": "go", "score": 0.5}, "valid", true},
		{"array type", map[string]any{"valid": true, "topic": "go", "score": 1, "issues": "x"}, "issues", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObject(tt.obj, schema)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateObject_DecodedRequiredList(t *testing.T) {
	schema := map[string]any{"required": []any{"a"}, "properties": map[string]any{}}
	assert.Error(t, ValidateObject(map[string]any{}, schema))
	assert.NoError(t, ValidateObject(map[string]any{"a": 1}, schema))
}
