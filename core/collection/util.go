package collection

import (
	"strings"

	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
	"github.com/relabs-tech/collectiond/core/store"
)

// pathSegments returns the non-empty segments of ctx's URL path.
func pathSegments(ctx Context) []string {
	u := ctx.URL()
	if u == nil {
		return nil
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// resolveID normalizes the request id from query.id, the URL's second
// path segment, or body.id, in that order of precedence.
func resolveID(ctx Context) string {
	if q := ctx.Query(); q != nil {
		if id, ok := q["id"].(string); ok && id != "" {
			return id
		}
	}
	if segments := pathSegments(ctx); len(segments) >= 2 {
		return segments[1]
	}
	if body, ok := ctx.Body().(map[string]interface{}); ok {
		if id, ok := body["id"].(string); ok {
			return id
		}
	}
	return ""
}

// isSequence reports whether body is an ordered sequence of objects
// rather than a single object.
func isSequence(body interface{}) bool {
	_, ok := toSequenceDocs(body)
	return ok
}

// toSequenceDocs coerces body into a sequence of documents, accepting
// both []map[string]interface{} and the []interface{} shape a generic
// JSON decoder produces.
func toSequenceDocs(body interface{}) ([]map[string]interface{}, bool) {
	switch v := body.(type) {
	case []map[string]interface{}:
		return v, true
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
}

// clone returns a shallow copy of doc.
func clone(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// toDoc normalizes a store.Document into the plain map type responses
// are built from.
func toDoc(d store.Document) map[string]interface{} {
	return map[string]interface{}(d)
}

// toDocs normalizes a sequence of store.Document into plain maps.
func toDocs(ds []store.Document) []map[string]interface{} {
	out := make([]map[string]interface{}, len(ds))
	for i, d := range ds {
		out[i] = toDoc(d)
	}
	return out
}

// effectiveQuery builds the sanitized store query for a request,
// folding the resolved id (if any) into the raw query before
// sanitizing - this is the "normalize ctx.query.id" step the
// orchestrator performs once at entry.
func (c *Collection) effectiveQuery(ctx Context, id string) store.Query {
	raw := map[string]interface{}{}
	for k, v := range ctx.Query() {
		raw[k] = v
	}
	if id != "" {
		raw["id"] = id
	}
	return store.Query(schema.SanitizeQuery(c.config.Properties, raw))
}

// queryWithoutVirtualID builds the sanitized store query for the
// count/index-of virtual routes, discarding query.id: there it never
// names a real document, only the virtual route itself.
func (c *Collection) queryWithoutVirtualID(ctx Context) store.Query {
	raw := map[string]interface{}{}
	for k, v := range ctx.Query() {
		if k == "id" {
			continue
		}
		raw[k] = v
	}
	return store.Query(schema.SanitizeQuery(c.config.Properties, raw))
}

// truthy mirrors the query-dialect notion of a truthy value for
// boolean-flavored reserved keys like $skipEvents.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}

// shouldRunEvent looks up the script bound to name and reports whether
// it should run: it must exist, and it must not be the case that a
// root caller is asking to skip it. Root callers can skip
// events via $skipEvents; non-root callers cannot.
func shouldRunEvent(c *Collection, name EventName, ctx Context) (Script, bool) {
	script, ok := c.config.Scripts[name]
	if !ok {
		return nil, false
	}
	skip := truthy(fromMap(ctx.Body(), "$skipEvents")) || truthy(ctx.Query()["$skipEvents"])
	if skip && ctx.Session().IsRoot {
		return nil, false
	}
	return script, true
}

func fromMap(body interface{}, key string) interface{} {
	m, ok := body.(map[string]interface{})
	if !ok {
		return nil
	}
	return m[key]
}

// runScriptSync blocks until script.Run signals completion and
// returns its engine-level error, if any.
func runScriptSync(ctx Context, script Script, domain *scriptdomain.Domain) error {
	done := make(chan error, 1)
	script.Run(ctx, domain, func(err error) { done <- err })
	return <-done
}

// verifyThen asks the external permission verifier whether required is
// satisfied and, only on success, runs next.
func (c *Collection) verifyThen(ctx Context, required permission.Set, next func()) {
	ctx.VerifyPermissions(required, func(err error) {
		if err != nil {
			ctx.Done(err, nil)
			return
		}
		next()
	})
}
