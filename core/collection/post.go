package collection

import (
	"net/http"

	"github.com/relabs-tech/collectiond/core/command"
	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// servePost routes a POST: a sequence body is a bulk create: a body
// (or resolved id) naming an existing id is an update-by-id; anything
// else is a single create.
func (c *Collection) servePost(ctx Context, id string) {
	body := ctx.Body()

	if isSequence(body) {
		c.createMultiple(ctx, body)
		return
	}

	item, _ := body.(map[string]interface{})
	if item == nil {
		item = map[string]interface{}{}
	}
	if id == "" {
		if bodyID, ok := item["id"].(string); ok && bodyID != "" {
			id = bodyID
		}
	}

	if id != "" {
		c.putSingle(ctx, id, item)
		return
	}
	c.createOne(ctx, item)
}

func (c *Collection) createOne(ctx Context, item map[string]interface{}) {
	commands := command.Build(item)
	clean := schema.Sanitize(c.config.Properties, item)

	errs := schema.Validate(c.config.Properties, clean, true)
	if errs != nil {
		ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(errs)})
		return
	}
	command.Exec(clean, commands)
	clean["id"] = c.store.CreateUniqueIdentifier()

	script, ok := shouldRunEvent(c, EventPost, ctx)
	if !ok {
		c.verifyThen(ctx, permission.Required(http.MethodPost, false, false), func() {
			c.insertAndRespond(ctx, clean)
		})
		return
	}

	domain := scriptdomain.New(clean, nil, true, ctx.Allow, ctx.Prevent)
	if err := runScriptSync(ctx, script, domain); err != nil {
		ctx.Done(err, nil)
		return
	}
	if domain.HasErrors() {
		ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(domain.Errors())})
		return
	}

	c.verifyThen(ctx, permission.Required(http.MethodPost, false, false), func() {
		c.insertAndRespond(ctx, domain.Map())
	})
}

func (c *Collection) insertAndRespond(ctx Context, item map[string]interface{}) {
	inserted, err := c.store.Insert(ctx.RequestContext(), store.Document(item))
	if err != nil {
		ctx.Done(err, nil)
		return
	}
	c.notifier.Notify(ctx, c.config.Name)
	ctx.Done(nil, toDoc(inserted))
}

func (c *Collection) createMultiple(ctx Context, body interface{}) {
	items, _ := toSequenceDocs(body)

	cleaned := make([]map[string]interface{}, len(items))
	for i, item := range items {
		commands := command.Build(item)
		clean := schema.Sanitize(c.config.Properties, item)
		errs := schema.Validate(c.config.Properties, clean, true)
		if errs != nil {
			ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(errs)})
			return
		}
		command.Exec(clean, commands)
		clean["id"] = c.store.CreateUniqueIdentifier()
		cleaned[i] = clean
	}

	c.verifyThen(ctx, permission.Required(http.MethodPost, false, true), func() {
		inserted := make([]store.Document, 0, len(cleaned))
		for _, item := range cleaned {
			doc, err := c.store.Insert(ctx.RequestContext(), store.Document(item))
			if err != nil {
				ctx.Done(err, nil)
				return
			}
			inserted = append(inserted, doc)
		}
		c.notifier.Notify(ctx, c.config.Name)
		ctx.Done(nil, toDocs(inserted))
	})
}
