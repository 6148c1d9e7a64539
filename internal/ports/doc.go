// Package ports defines the interfaces (ports) that connect the engine to
// the host environment and to infrastructure adapters.
//
// Ports are the boundaries between the engine core and the outside world.
// They define what the engine needs without specifying how those needs are
// fulfilled.
//
// # Port Interfaces
//
//   - [Provider]: an injected wallet provider (EIP-1193 style)
//   - [Window]: the host page (location, history, event target, screen)
//   - [Storage]: durable and session-scoped key/value storage
//   - [Channel] and [Dialer]: the persistent connection to the collector
//   - [Poster]: one-shot requests for identity bootstrap and diagnostics
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The engine (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with
// WebSocket, HTTP, file and in-memory backends.
package ports
