package collection

import (
	"net/http"

	"github.com/relabs-tech/collectiond/core/command"
	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// servePut routes a PUT: an id-less request with a body is a bulk
// saveAll; an id-bearing request is a single update.
func (c *Collection) servePut(ctx Context, id string) {
	if id == "" {
		c.saveAll(ctx)
		return
	}
	item, _ := ctx.Body().(map[string]interface{})
	if item == nil {
		item = map[string]interface{}{}
	}
	c.putSingle(ctx, id, item)
}

func (c *Collection) putSingle(ctx Context, id string, item map[string]interface{}) {
	query := c.effectiveQuery(ctx, id)
	existing, err := c.store.First(ctx.RequestContext(), query)
	if err == store.ErrNotFound {
		msg := "No object exists that matches that query"
		if len(query) == 1 {
			msg = "No object exists with that id"
		}
		ctx.Done(NewStatusError(http.StatusNotFound, msg), nil)
		return
	}
	if err != nil {
		ctx.Done(err, nil)
		return
	}

	merged, ok := c.prepareUpdate(ctx, existing, item)
	if !ok {
		return
	}
	c.verifyThen(ctx, permission.Required(http.MethodPut, true, false), func() {
		c.updateOneAndRespond(ctx, merged)
	})
}

// prepareUpdate merges sanitized item onto existing, applies commands,
// runs schema validation and the Validate/Put scripts. It returns
// ok=false when validation or a script already sent a response -
// callers must return immediately without touching ctx again.
func (c *Collection) prepareUpdate(ctx Context, existing store.Document, item map[string]interface{}) (map[string]interface{}, bool) {
	previous := clone(existing)
	commands := command.Build(item)
	clean := schema.Sanitize(c.config.Properties, item)

	merged := clone(existing)
	for k, v := range clean {
		merged[k] = v
	}
	command.Exec(merged, commands)

	errs := schema.Validate(c.config.Properties, merged, false)
	if errs != nil {
		ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(errs)})
		return nil, false
	}

	domain := scriptdomain.New(merged, previous, false, ctx.Allow, ctx.Prevent)

	for _, event := range [...]EventName{EventValidate, EventPut} {
		script, ok := shouldRunEvent(c, event, ctx)
		if !ok {
			continue
		}
		if err := runScriptSync(ctx, script, domain); err != nil {
			ctx.Done(err, nil)
			return nil, false
		}
		if domain.HasErrors() {
			ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(domain.Errors())})
			return nil, false
		}
	}

	return domain.Map(), true
}

func (c *Collection) updateOneAndRespond(ctx Context, doc map[string]interface{}) {
	id, _ := doc["id"].(string)
	withoutID := clone(doc)
	delete(withoutID, "id")
	if err := c.store.Update(ctx.RequestContext(), store.Query{"id": id}, store.Document(withoutID)); err != nil {
		ctx.Done(err, nil)
		return
	}
	c.notifier.Notify(ctx, c.config.Name)
	doc["id"] = id
	ctx.Done(nil, doc)
}

// saveAll is the bulk-update pipeline. Every matched document that the
// sequence body names by id is independently merged, validated,
// scripted, and permission-checked (matched documents the body does
// not name are left untouched);
// any single failure short-circuits the whole batch. Only once every
// object has survived does it issue the store updates - all of them
// are awaited before the batch replies with the updated ids, per the
// spec decision to not emulate a fire-and-forget commit.
func (c *Collection) saveAll(ctx Context) {
	query := c.effectiveQuery(ctx, "")
	docs, err := c.store.Find(ctx.RequestContext(), query)
	if err != nil {
		ctx.Done(err, nil)
		return
	}

	items, ok := toSequenceDocs(ctx.Body())
	if !ok {
		ctx.Done(NewStatusError(http.StatusBadRequest, "saveAll requires a sequence body"), nil)
		return
	}
	byID := make(map[string]map[string]interface{}, len(items))
	for _, item := range items {
		if id, ok := item["id"].(string); ok {
			byID[id] = item
		}
	}

	var prepared []map[string]interface{}
	var process func(i int)
	process = func(i int) {
		if i >= len(docs) {
			c.commitSaveAll(ctx, prepared)
			return
		}
		existing := docs[i]
		id, _ := existing["id"].(string)
		item, ok := byID[id]
		if !ok {
			process(i + 1)
			return
		}

		merged, ok := c.prepareUpdate(ctx, existing, item)
		if !ok {
			return
		}
		c.verifyThen(ctx, permission.Required(http.MethodPut, true, false), func() {
			prepared = append(prepared, merged)
			process(i + 1)
		})
	}
	process(0)
}

func (c *Collection) commitSaveAll(ctx Context, docs []map[string]interface{}) {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		withoutID := clone(doc)
		delete(withoutID, "id")
		if err := c.store.Update(ctx.RequestContext(), store.Query{"id": id}, store.Document(withoutID)); err != nil {
			ctx.Done(err, nil)
			return
		}
		ids = append(ids, id)
	}
	c.notifier.Notify(ctx, c.config.Name)
	ctx.Done(nil, ids)
}
