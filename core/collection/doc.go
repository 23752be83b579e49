// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package collection implements the request lifecycle for a single
// schema-validated, event-scriptable collection resource: the
// pipeline that sits between a Context (the external request/session
// adapter) and a document store.Store, resolving intent, validating
// and sanitizing payloads, running event scripts with a sandboxed
// scriptdomain.Domain, enforcing permissions, applying mutation
// commands, and emitting change notifications.
//
// A Collection owns its schema and script handles for its lifetime;
// the Store it is built with is a shared, borrowed collaborator.
package collection
