package collection

import (
	"net/http"

	"github.com/relabs-tech/collectiond/core/logger"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// Collection is a named set of documents sharing a schema: the
// request lifecycle for GET/POST/PUT/DELETE, wired to a Store and a
// Notifier. A Collection owns its schema and scripts for its
// lifetime; the Store is shared, borrowed for the duration of each
// call.
type Collection struct {
	config   CollectionConfig
	store    store.Store
	notifier Notifier
}

// New builds a Collection. A nil notifier defaults to LocalNotifier.
func New(config CollectionConfig, s store.Store, notifier Notifier) *Collection {
	if notifier == nil {
		notifier = LocalNotifier{}
	}
	return &Collection{config: config, store: s, notifier: notifier}
}

// Name returns the collection's configured name.
func (c *Collection) Name() string {
	return c.config.Name
}

// Serve dispatches ctx to the appropriate lifecycle pipeline.
func (c *Collection) Serve(ctx Context) {
	id := resolveID(ctx)

	if ctx.Method() == http.MethodGet {
		switch id {
		case "count":
			c.serveCount(ctx)
			return
		case "index-of":
			c.serveIndexOf(ctx)
			return
		}
	}

	if route, ok := c.customRoute(ctx, id); ok {
		c.serveRoute(ctx, route, id)
		return
	}

	switch ctx.Method() {
	case http.MethodGet:
		c.serveGet(ctx, id)
	case http.MethodPost:
		c.servePost(ctx, id)
	case http.MethodPut:
		c.servePut(ctx, id)
	case http.MethodDelete:
		c.serveDelete(ctx, id)
	default:
		ctx.Done(NewStatusError(http.StatusMethodNotAllowed, "method not allowed"), nil)
	}
}

// customRoute looks up a configured subresource script by the URL's
// third path segment - custom per-request scripts mounted as nested
// paths preempt the standard method dispatch.
func (c *Collection) customRoute(ctx Context, id string) (Script, bool) {
	if id == "" || len(c.config.Routes) == 0 {
		return nil, false
	}
	segments := pathSegments(ctx)
	if len(segments) < 3 {
		return nil, false
	}
	route, ok := c.config.Routes[segments[2]]
	return route, ok
}

// serveRoute runs a custom subresource script directly, with the
// domain bound to the document found by id (or an empty document if
// none is found), bypassing schema validation and command application.
func (c *Collection) serveRoute(ctx Context, route Script, id string) {
	query := c.effectiveQuery(ctx, id)
	existing, err := c.store.First(ctx.RequestContext(), query)
	if err != nil && err != store.ErrNotFound {
		ctx.Done(err, nil)
		return
	}
	data := map[string]interface{}(existing)
	if data == nil {
		data = map[string]interface{}{}
	}
	domain := scriptdomain.New(data, nil, false, ctx.Allow, ctx.Prevent)
	if err := runScriptSync(ctx, route, domain); err != nil {
		ctx.Done(err, nil)
		return
	}
	if domain.HasErrors() {
		ctx.Done(nil, map[string]interface{}{"errors": ValidationErrors(domain.Errors())})
		return
	}
	ctx.Done(nil, domain.Map())
}

// serveCount implements the GET .../count virtual route: root-only,
// returns {count: n}.
func (c *Collection) serveCount(ctx Context) {
	if !ctx.Session().IsRoot {
		ctx.Done(NewStatusError(http.StatusForbidden, "Must be root to count"), nil)
		return
	}
	query := c.queryWithoutVirtualID(ctx)
	n, err := c.store.Count(ctx.RequestContext(), query)
	if err != nil {
		ctx.Done(err, nil)
		return
	}
	ctx.Done(nil, map[string]interface{}{"count": n})
}

// serveIndexOf implements the GET .../index-of/{targetID} virtual
// route: root-only, returns {index: n} or {index: -1}.
func (c *Collection) serveIndexOf(ctx Context) {
	if !ctx.Session().IsRoot {
		ctx.Done(NewStatusError(http.StatusForbidden, "Must be root to count"), nil)
		return
	}
	target := indexOfTarget(ctx)
	query := c.queryWithoutVirtualID(ctx)
	query["$fields"] = map[string]interface{}{"id": 1}

	docs, err := c.store.Find(ctx.RequestContext(), query)
	if err != nil {
		ctx.Done(err, nil)
		return
	}
	index := -1
	for i, doc := range docs {
		if id, _ := doc["id"].(string); id == target {
			index = i
			break
		}
	}
	ctx.Done(nil, map[string]interface{}{"index": index})
}

func indexOfTarget(ctx Context) string {
	segments := pathSegments(ctx)
	if len(segments) >= 3 {
		return segments[2]
	}
	return ""
}

// OnConfigChanged reacts to a collection's schema being renamed or
// deleted at the persistence layer: deletion removes every document
// from the backing store; a name change renames it. A nil newConfig
// means "delete"; an empty newConfig.Name, or one equal to the current
// name, is a no-op.
func (c *Collection) OnConfigChanged(ctx Context, newConfig *CollectionConfig) error {
	if newConfig == nil {
		return c.store.Remove(ctx.RequestContext(), store.Query{})
	}
	if newConfig.Name == "" || newConfig.Name == c.config.Name {
		return nil
	}
	logger.Default().Debugf("renaming collection %s to %s", c.config.Name, newConfig.Name)
	if err := c.store.Rename(ctx.RequestContext(), newConfig.Name); err != nil {
		return err
	}
	c.config.Name = newConfig.Name
	return nil
}
