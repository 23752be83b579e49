package collection

import (
	"net/http"

	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// serveDelete implements the remove pipeline. store.find materializes
// the match; a configured Delete script runs with data bound to the
// fetched result (a single document when id was resolved, the full
// sequence otherwise) before permission verification and the store
// removal.
func (c *Collection) serveDelete(ctx Context, id string) {
	query := c.effectiveQuery(ctx, id)

	docs, err := c.store.Find(ctx.RequestContext(), query)
	if err != nil {
		ctx.Done(err, nil)
		return
	}

	var data interface{} = docs
	if id != "" {
		if len(docs) == 0 {
			ctx.Done(NewStatusError(http.StatusNotFound, "not found"), nil)
			return
		}
		data = toDoc(docs[0])
	}

	required := permission.Required(http.MethodDelete, id != "", false)

	script, ok := shouldRunEvent(c, EventDelete, ctx)
	if !ok {
		c.verifyThen(ctx, required, func() {
			c.removeAndRespond(ctx, query)
		})
		return
	}

	domain := scriptdomain.New(data, nil, false, ctx.Allow, ctx.Prevent)
	if err := runScriptSync(ctx, script, domain); err != nil {
		ctx.Done(err, nil)
		return
	}
	if domain.HasErrors() {
		ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(domain.Errors())})
		return
	}

	c.verifyThen(ctx, required, func() {
		c.removeAndRespond(ctx, query)
	})
}

func (c *Collection) removeAndRespond(ctx Context, query store.Query) {
	if err := c.store.Remove(ctx.RequestContext(), query); err != nil {
		ctx.Done(err, nil)
		return
	}
	c.notifier.Notify(ctx, c.config.Name)
	ctx.Done(nil, map[string]interface{}{"status": "ok"})
}
