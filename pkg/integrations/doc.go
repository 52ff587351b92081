// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// This package contains low-level API clients for fetching package metadata
// from various registries. Each registry has its own subpackage:
//
//   - [npm]: Node Package Manager
//   - [pypi]: Python Package Index
//   - [crates]: Rust crates.io
//
// # Client Pattern
//
// All registry clients follow a consistent pattern:
//
//	client := npm.NewClient(backend, 24*time.Hour)              // cache backend + TTL
//	pkg, err := client.FetchPackage(ctx, "express", false)      // false = use cache
//
// Clients handle:
//   - HTTP requests with retry and rate limiting
//   - Response caching through a [cache.Cache] backend
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality used by all registry
// clients. It namespaces cache keys per registry, retries transient failures
// with backoff, and emits observability events for every request and cache
// operation.
//
// # Adding a New Registry
//
// To add support for a new package registry:
//
//  1. Create a subpackage: pkg/integrations/<registry>/
//  2. Define response structs matching the API schema
//  3. Embed [Client] and implement a Fetch method returning normalized metadata
//  4. Register a generate.Source adapter in pkg/generate
package integrations
