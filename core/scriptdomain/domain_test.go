package scriptdomain_test

import (
	"testing"

	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/stretchr/testify/assert"
)

func TestChanged_UpdateComparesAgainstPrevious(t *testing.T) {
	d := scriptdomain.New(
		map[string]interface{}{"votes": float64(9)},
		map[string]interface{}{"votes": float64(7)},
		false, nil, nil,
	)
	assert.True(t, d.Changed("votes"))
}

func TestChanged_UpdateUnchangedIsFalse(t *testing.T) {
	d := scriptdomain.New(
		map[string]interface{}{"votes": float64(7)},
		map[string]interface{}{"votes": float64(7)},
		false, nil, nil,
	)
	assert.False(t, d.Changed("votes"))
}

func TestChanged_CreateTrueWhenPresent(t *testing.T) {
	d := scriptdomain.New(map[string]interface{}{"title": "a"}, nil, true, nil, nil)
	assert.True(t, d.Changed("title"))
	assert.False(t, d.Changed("votes"))
}

func TestProtect_RemovesFromData(t *testing.T) {
	data := map[string]interface{}{"title": "a", "secret": "x"}
	d := scriptdomain.New(data, nil, true, nil, nil)
	d.Protect("secret")
	assert.NotContains(t, d.Map(), "secret")
	assert.Contains(t, d.Map(), "title")
}

func TestHide_IsAliasForProtect(t *testing.T) {
	data := map[string]interface{}{"title": "a"}
	d := scriptdomain.New(data, nil, true, nil, nil)
	d.Hide("title")
	assert.NotContains(t, d.Map(), "title")
}

func TestErrorCollector(t *testing.T) {
	d := scriptdomain.New(map[string]interface{}{}, nil, true, nil, nil)
	assert.False(t, d.HasErrors())
	d.ErrorIf(true, "title", "is required")
	d.ErrorUnless(false, "votes", "must be a number")
	assert.True(t, d.HasErrors())
	assert.Equal(t, "is required", d.Errors()["title"])
	assert.Equal(t, "must be a number", d.Errors()["votes"])
}

func TestAllowPrevent_CallThrough(t *testing.T) {
	var allowed, prevented string
	d := scriptdomain.New(map[string]interface{}{}, nil, true,
		func(tag string) { allowed = tag },
		func(tag string) { prevented = tag },
	)
	d.Allow("creating an object")
	d.Prevent("deleting an object by id")
	assert.Equal(t, "creating an object", allowed)
	assert.Equal(t, "deleting an object by id", prevented)
}

func TestAllowPrevent_NilIsNoOp(t *testing.T) {
	d := scriptdomain.New(map[string]interface{}{}, nil, true, nil, nil)
	assert.NotPanics(t, func() {
		d.Allow("x")
		d.Prevent("y")
	})
}

func TestMap_NilForSequenceData(t *testing.T) {
	d := scriptdomain.New([]map[string]interface{}{{"id": "1"}}, nil, false, nil, nil)
	assert.Nil(t, d.Map())
	assert.False(t, d.Changed("id"))
}
