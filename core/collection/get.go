package collection

import (
	"net/http"
	"sync"

	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// serveGet implements the find pipeline. For a root-path list query
// (no id), a configured Query script runs before permission
// verification, since it shapes the query rather than the result.
// Every other shape goes straight to permission verification.
func (c *Collection) serveGet(ctx Context, id string) {
	hasID := id != ""

	proceed := func() {
		c.findAndRespond(ctx, id)
	}

	if !hasID {
		if script, ok := shouldRunEvent(c, EventQuery, ctx); ok {
			domain := scriptdomain.New(ctx.Query(), nil, false, ctx.Allow, ctx.Prevent)
			if err := runScriptSync(ctx, script, domain); err != nil {
				ctx.Done(err, nil)
				return
			}
			if domain.HasErrors() {
				ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(domain.Errors())})
				return
			}
			c.verifyThen(ctx, permission.Required(http.MethodGet, false, false), proceed)
			return
		}
	}

	c.verifyThen(ctx, permission.Required(http.MethodGet, hasID, false), proceed)
}

func (c *Collection) findAndRespond(ctx Context, id string) {
	query := c.effectiveQuery(ctx, id)

	docs, err := c.store.Find(ctx.RequestContext(), query)
	if err != nil {
		ctx.Done(err, nil)
		return
	}

	if id != "" && len(docs) == 0 {
		ctx.Done(NewStatusError(http.StatusNotFound, "not found"), nil)
		return
	}

	script, ok := shouldRunEvent(c, EventGet, ctx)
	if !ok {
		if id != "" {
			ctx.Done(nil, toDoc(docs[0]))
			return
		}
		ctx.Done(nil, toDocs(docs))
		return
	}

	c.runGetScripts(ctx, script, docs, id != "")
}

type getScriptResult struct {
	doc      map[string]interface{}
	err      error
	filtered bool
	errs     map[string]string
}

// runGetScripts dispatches one Domain per document concurrently, waits
// for the whole group, then filters: a script engine error aborts the
// whole request; per-document value errors only remove that document
// from a list response, or short-circuit a single-document response
// with that error.
func (c *Collection) runGetScripts(ctx Context, script Script, docs []store.Document, single bool) {
	results := make([]getScriptResult, len(docs))

	var wg sync.WaitGroup
	wg.Add(len(docs))
	for i, doc := range docs {
		i, doc := i, doc
		go func() {
			defer wg.Done()
			domain := scriptdomain.New(clone(doc), nil, false, ctx.Allow, ctx.Prevent)
			err := runScriptSync(ctx, script, domain)
			results[i] = getScriptResult{
				doc:      domain.Map(),
				err:      err,
				filtered: domain.HasErrors(),
				errs:     domain.Errors(),
			}
		}()
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			ctx.Done(r.err, nil)
			return
		}
	}

	if single {
		r := results[0]
		if r.filtered {
			ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(r.errs)})
			return
		}
		ctx.Done(nil, r.doc)
		return
	}

	survivors := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		if !r.filtered {
			survivors = append(survivors, r.doc)
		}
	}
	ctx.Done(nil, survivors)
}
