package collection

import (
	"context"
	"net/url"

	"github.com/relabs-tech/collectiond/core/permission"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/scriptdomain"
)

// EventName identifies a lifecycle point a script can be attached to.
type EventName string

// The lifecycle events a script can be bound to.
const (
	EventGet      EventName = "Get"
	EventValidate EventName = "Validate"
	EventPost     EventName = "Post"
	EventPut      EventName = "Put"
	EventDelete   EventName = "Delete"
	EventQuery    EventName = "Query"
)

// Script is a compiled event-script handle. Run receives the request
// Context and the per-document Domain and signals completion via
// done. A non-nil err there is an engine-level failure from the
// script runtime and aborts the request outright; it is distinct from
// script-reported validation errors, which the caller finds by
// checking domain.HasErrors() once Run has signaled success.
type Script interface {
	Run(ctx Context, domain *scriptdomain.Domain, done func(err error))
}

// Session is the identity facts a request's Context exposes. EmitToAll
// broadcasts a change event to every connected client rather than
// just the requester that triggered it; it may be nil.
type Session struct {
	IsRoot    bool
	EmitToAll func(event string)
}

// Context is the per-request object mediating transport, session, and
// completion. It is supplied by an HTTP adapter external to this
// package - only the surface the orchestrator consumes is specified
// here.
type Context interface {
	// Method is the HTTP method of the request.
	Method() string
	// URL is the request URL; its path carries the optional id and
	// subresource segments.
	URL() *url.URL
	// Query is the parsed query string, pre-sanitization.
	Query() map[string]interface{}
	// Body is the parsed JSON payload: a map[string]interface{} for a
	// single-item operation, or a sequence of such maps for bulk
	// create/saveAll, either []map[string]interface{} or the
	// []interface{} a generic JSON decoder produces.
	Body() interface{}
	// Session carries the caller's root/broadcast facts.
	Session() Session
	// DPD is the client handle passed through to scripts unexamined.
	DPD() interface{}
	// VerifyPermissions asks the external policy layer whether the
	// caller holds every tag in required, invoking callback with a
	// non-nil error on denial.
	VerifyPermissions(required permission.Set, callback func(err error))
	// Allow and Prevent adjust the in-flight permission decision;
	// scripts reach them through Domain.Allow/Domain.Prevent.
	Allow(tag string)
	Prevent(tag string)
	// RequestContext is threaded through every Store call for
	// cancellation.
	RequestContext() context.Context
	// Done completes the request. A non-nil err short-circuits with
	// that failure; otherwise result is the JSON response body.
	Done(err error, result interface{})
}

// CollectionConfig declares a collection's name (also its store
// namespace), its property schema, the scripts bound to each
// lifecycle event, and any custom subresource routes that preempt the
// standard method dispatch.
type CollectionConfig struct {
	Name       string
	Properties schema.Schema
	Scripts    map[EventName]Script
	// Routes maps a third URL path segment to a script that runs
	// instead of the standard GET/POST/PUT/DELETE pipeline, e.g.
	// "/todos/{id}/archive" bound under key "archive".
	Routes map[string]Script
}
