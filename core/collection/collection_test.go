package collection_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/relabs-tech/collectiond/core/collection"
	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store/memory"
	"github.com/stretchr/testify/assert"
)

// fakeContext is a minimal, synchronous collection.Context for tests:
// every callback-style method invokes its callback immediately.
type fakeContext struct {
	method  string
	url     *url.URL
	query   map[string]interface{}
	body    interface{}
	isRoot  bool
	denied  error
	err     error
	result  interface{}
	emitted []string
}

func newFakeContext(method, path string, query map[string]interface{}, body interface{}) *fakeContext {
	u, _ := url.Parse(path)
	if query == nil {
		query = map[string]interface{}{}
	}
	return &fakeContext{method: method, url: u, query: query, body: body}
}

func (f *fakeContext) Method() string                 { return f.method }
func (f *fakeContext) URL() *url.URL                  { return f.url }
func (f *fakeContext) Query() map[string]interface{}  { return f.query }
func (f *fakeContext) Body() interface{}              { return f.body }
func (f *fakeContext) DPD() interface{}               { return nil }
func (f *fakeContext) RequestContext() context.Context { return context.Background() }
func (f *fakeContext) Allow(tag string)               {}
func (f *fakeContext) Prevent(tag string)             {}

func (f *fakeContext) Session() collection.Session {
	return collection.Session{
		IsRoot:    f.isRoot,
		EmitToAll: func(event string) { f.emitted = append(f.emitted, event) },
	}
}

func (f *fakeContext) VerifyPermissions(required permission.Set, callback func(err error)) {
	callback(f.denied)
}

func (f *fakeContext) Done(err error, result interface{}) {
	f.err = err
	f.result = result
}

func todoSchema() schema.Schema {
	return schema.Schema{
		"title": {Name: "title", Type: schema.TypeString, Required: true},
		"votes": {Name: "votes", Type: schema.TypeNumber},
		"done":  {Name: "done", Type: schema.TypeBoolean},
	}
}

func newTodos() *collection.Collection {
	return collection.New(collection.CollectionConfig{
		Name:       "todos",
		Properties: todoSchema(),
	}, memory.New("todos"), nil)
}

func TestCreate_MissingRequired(t *testing.T) {
	c := newTodos()
	ctx := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"votes": float64(3)})
	c.Serve(ctx)

	assert.NoError(t, ctx.err)
	errs, ok := ctx.result.(map[string]interface{})["errors"].(collection.ValidationErrors)
	assert.True(t, ok)
	assert.Equal(t, "is required", errs["title"])
}

func TestCreate_CoercesNumericStringAndAssignsID(t *testing.T) {
	c := newTodos()
	ctx := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "a", "votes": "7"})
	c.Serve(ctx)

	assert.NoError(t, ctx.err)
	doc := ctx.result.(map[string]interface{})
	assert.Equal(t, float64(7), doc["votes"])
	assert.NotEmpty(t, doc["id"])
	assert.Contains(t, ctx.emitted, "todos:changed")
}

func TestUpdateByID_Inc(t *testing.T) {
	c := newTodos()
	create := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "a", "votes": float64(7)})
	c.Serve(create)
	created := create.result.(map[string]interface{})
	id := created["id"].(string)

	update := newFakeContext(http.MethodPost, "/todos/"+id, nil, map[string]interface{}{
		"id":    id,
		"votes": map[string]interface{}{"$inc": float64(2)},
	})
	c.Serve(update)

	assert.NoError(t, update.err)
	doc := update.result.(map[string]interface{})
	assert.Equal(t, id, doc["id"])
	assert.Equal(t, float64(9), doc["votes"])
}

func TestGetByID_NotFound(t *testing.T) {
	c := newTodos()
	ctx := newFakeContext(http.MethodGet, "/todos/nope", map[string]interface{}{"id": "nope"}, nil)
	c.Serve(ctx)

	statusErr, ok := ctx.err.(*collection.StatusError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestGetList_PerDocumentScriptFiltersDoneItems(t *testing.T) {
	c := collection.New(collection.CollectionConfig{
		Name:       "todos",
		Properties: todoSchema(),
		Scripts: map[collection.EventName]collection.Script{
			collection.EventGet: hideDoneScript{},
		},
	}, memory.New("todos"), nil)

	createA := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "a", "done": false})
	c.Serve(createA)
	createB := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "b", "done": true})
	c.Serve(createB)

	list := newFakeContext(http.MethodGet, "/todos", nil, nil)
	c.Serve(list)

	assert.NoError(t, list.err)
	docs := list.result.([]map[string]interface{})
	assert.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0]["title"])
}

// hideDoneScript reports an error for any document whose "done"
// property is true, emulating an onGet filter script.
type hideDoneScript struct{}

func (hideDoneScript) Run(ctx collection.Context, domain *scriptdomain.Domain, done func(err error)) {
	if m := domain.Map(); m != nil {
		if b, _ := m["done"].(bool); b {
			domain.Error("hide", "yes")
		}
	}
	done(nil)
}

func TestCount_RequiresRoot(t *testing.T) {
	c := newTodos()
	ctx := newFakeContext(http.MethodGet, "/todos/count", map[string]interface{}{"id": "count"}, nil)
	c.Serve(ctx)

	statusErr, ok := ctx.err.(*collection.StatusError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)

	ctx = newFakeContext(http.MethodGet, "/todos/count", map[string]interface{}{"id": "count"}, nil)
	ctx.isRoot = true
	c.Serve(ctx)

	assert.NoError(t, ctx.err)
	assert.Equal(t, 0, ctx.result.(map[string]interface{})["count"])
}

func TestDelete_ByID(t *testing.T) {
	c := newTodos()
	create := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "a"})
	c.Serve(create)
	id := create.result.(map[string]interface{})["id"].(string)

	del := newFakeContext(http.MethodDelete, "/todos/"+id, map[string]interface{}{"id": id}, nil)
	c.Serve(del)
	assert.NoError(t, del.err)

	get := newFakeContext(http.MethodGet, "/todos/"+id, map[string]interface{}{"id": id}, nil)
	c.Serve(get)
	assert.Error(t, get.err)
}

func TestSaveAll_AwaitsAllWritesBeforeReplying(t *testing.T) {
	c := newTodos()
	createA := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "a", "votes": float64(1)})
	c.Serve(createA)
	idA := createA.result.(map[string]interface{})["id"].(string)

	createB := newFakeContext(http.MethodPost, "/todos", nil, map[string]interface{}{"title": "b", "votes": float64(2)})
	c.Serve(createB)
	idB := createB.result.(map[string]interface{})["id"].(string)

	body := []interface{}{
		map[string]interface{}{"id": idA, "votes": float64(10)},
		map[string]interface{}{"id": idB, "votes": float64(20)},
	}
	save := newFakeContext(http.MethodPut, "/todos", nil, body)
	c.Serve(save)

	assert.NoError(t, save.err)
	ids := save.result.([]string)
	assert.ElementsMatch(t, []string{idA, idB}, ids)

	getA := newFakeContext(http.MethodGet, "/todos/"+idA, map[string]interface{}{"id": idA}, nil)
	c.Serve(getA)
	assert.Equal(t, float64(10), getA.result.(map[string]interface{})["votes"])
}
