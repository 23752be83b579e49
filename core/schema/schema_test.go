package schema_test

import (
	"testing"

	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/stretchr/testify/assert"
)

func todoSchema() schema.Schema {
	return schema.Schema{
		"title": {Name: "title", Type: schema.TypeString, Required: true},
		"votes": {Name: "votes", Type: schema.TypeNumber},
		"done":  {Name: "done", Type: schema.TypeBoolean},
		"tags":  {Name: "tags", Type: schema.TypeArray},
	}
}

func TestValidate_CreateMissingRequired(t *testing.T) {
	body := map[string]interface{}{"votes": float64(3)}
	errs := schema.Validate(todoSchema(), body, true)
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "is required", errs["title"])
}

func TestValidate_UpdateNeverRequiresMissingField(t *testing.T) {
	body := map[string]interface{}{"votes": float64(3)}
	errs := schema.Validate(todoSchema(), body, false)
	assert.False(t, errs.HasErrors())
}

func TestValidate_CoercesNumericString(t *testing.T) {
	body := map[string]interface{}{"title": "a", "votes": "7"}
	errs := schema.Validate(todoSchema(), body, true)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, float64(7), body["votes"])
}

func TestValidate_DefaultsMissingBoolean(t *testing.T) {
	body := map[string]interface{}{"title": "a"}
	errs := schema.Validate(todoSchema(), body, true)
	assert.False(t, errs.HasErrors())
	assert.Equal(t, false, body["done"])
}

func TestValidate_TypeMismatch(t *testing.T) {
	body := map[string]interface{}{"title": "a", "votes": "not-a-number"}
	errs := schema.Validate(todoSchema(), body, true)
	assert.Equal(t, "must be a number", errs["votes"])
}

func TestSanitize_DropsUnknownKeys(t *testing.T) {
	clean := schema.Sanitize(todoSchema(), map[string]interface{}{
		"title": "a", "secret": "nope",
	})
	_, ok := clean["secret"]
	assert.False(t, ok)
	assert.Equal(t, "a", clean["title"])
}

func TestSanitize_Idempotent(t *testing.T) {
	s := todoSchema()
	body := map[string]interface{}{"title": "a", "votes": "7", "extra": 1}
	once := schema.Sanitize(s, body)
	twice := schema.Sanitize(s, once)
	assert.Equal(t, once, twice)
}

func TestSanitize_DropsTypeMismatch(t *testing.T) {
	clean := schema.Sanitize(todoSchema(), map[string]interface{}{
		"title": 42,
	})
	_, ok := clean["title"]
	assert.False(t, ok)
}

func TestSanitizeQuery_KeepsDollarKeysExceptReserved(t *testing.T) {
	query := map[string]interface{}{
		"$fields":         map[string]interface{}{"id": 1},
		"$limitRecursion": 3,
		"$skipEvents":     true,
		"id":              "abc",
		"done":            "true",
	}
	clean := schema.SanitizeQuery(todoSchema(), query)
	_, hasFields := clean["$fields"]
	assert.True(t, hasFields)
	_, hasLimit := clean["$limitRecursion"]
	assert.False(t, hasLimit)
	_, hasSkip := clean["$skipEvents"]
	assert.False(t, hasSkip)
	assert.Equal(t, "abc", clean["id"])
	assert.Equal(t, true, clean["done"])
}

func TestSanitizeQuery_BooleanLiteralString(t *testing.T) {
	clean := schema.SanitizeQuery(todoSchema(), map[string]interface{}{"done": "yes"})
	assert.Equal(t, false, clean["done"])
}

func TestSanitizeQuery_DropsUndefinedValues(t *testing.T) {
	clean := schema.SanitizeQuery(todoSchema(), map[string]interface{}{"title": nil})
	_, ok := clean["title"]
	assert.False(t, ok)
}
