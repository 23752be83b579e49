// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package main

import (
	"context"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/relabs-tech/collectiond/core/access"
	"github.com/relabs-tech/collectiond/core/collection"
	"github.com/relabs-tech/collectiond/core/logger"
	"github.com/relabs-tech/collectiond/core/permission"
)

// allTags is the permission set a root caller is granted, regardless
// of the Defaults a collection otherwise permits.
var allTags = permission.NewSet(
	permission.QueryMultiple, permission.QueryByID,
	permission.Create, permission.CreateMultiple,
	permission.UpdateByID, permission.UpdateMultiple,
	permission.DeleteByID, permission.DeleteMultiple,
)

// httpContext adapts an *http.Request/ResponseWriter pair to
// collection.Context. Permission verification, body decoding and
// response encoding all happen here, at the transport edge, so the
// orchestrator itself stays transport-agnostic.
type httpContext struct {
	w       http.ResponseWriter
	r       *http.Request
	query   map[string]interface{}
	body    interface{}
	claims  access.Claims
	allowed permission.Set
	denied  permission.Set
}

func newHTTPContext(w http.ResponseWriter, r *http.Request, claims access.Claims) *httpContext {
	query := map[string]interface{}{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	var body interface{}
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	return &httpContext{w: w, r: r, query: query, body: body, claims: claims}
}

func (h *httpContext) Method() string                { return h.r.Method }
func (h *httpContext) URL() *url.URL                  { return h.r.URL }
func (h *httpContext) Query() map[string]interface{}  { return h.query }
func (h *httpContext) Body() interface{}              { return h.body }
func (h *httpContext) DPD() interface{}               { return nil }
func (h *httpContext) RequestContext() context.Context { return h.r.Context() }

func (h *httpContext) Allow(tag string) {
	if h.allowed == nil {
		h.allowed = permission.Set{}
	}
	h.allowed[permission.Tag(tag)] = true
}

func (h *httpContext) Prevent(tag string) {
	if h.denied == nil {
		h.denied = permission.Set{}
	}
	h.denied[permission.Tag(tag)] = true
}

func (h *httpContext) Session() collection.Session {
	return collection.Session{
		IsRoot: h.claims.IsRoot,
		EmitToAll: func(event string) {
			logger.FromContext(h.r.Context()).Debugf("emit %s", event)
		},
	}
}

// VerifyPermissions grants permission.Defaults() to every caller, the
// full tag set to a root caller, and honors per-request Allow/Prevent
// overrides a script recorded before this callback ran. A real
// deployment backs this with a role/tenant policy lookup instead.
func (h *httpContext) VerifyPermissions(required permission.Set, callback func(err error)) {
	granted := permission.Defaults()
	if h.claims.IsRoot {
		granted = allTags
	}
	for tag := range required {
		if h.denied.Has(tag) {
			callback(collection.NewStatusError(http.StatusForbidden, "permission %q denied", tag))
			return
		}
		if granted.Has(tag) || h.allowed.Has(tag) {
			continue
		}
		callback(collection.NewStatusError(http.StatusForbidden, "permission %q required", tag))
		return
	}
	callback(nil)
}

func (h *httpContext) Done(err error, result interface{}) {
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		if statusErr, ok := err.(*collection.StatusError); ok {
			status = statusErr.Status
			message = statusErr.Message
		}
		h.w.Header().Set("Content-Type", "application/json")
		h.w.WriteHeader(status)
		_ = json.NewEncoder(h.w).Encode(map[string]interface{}{"message": message, "statusCode": status})
		return
	}
	h.w.Header().Set("Content-Type", "application/json")
	if result == nil {
		h.w.WriteHeader(http.StatusNoContent)
		return
	}
	_ = json.NewEncoder(h.w).Encode(result)
}
