// Package domain contains the core entities and value objects for walletscope.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (WebSocket, HTTP, storage, logging) and contains
// only the event vocabulary, the envelope shape and the validation rules
// shared by every observer.
//
// # Entities
//
//   - [Event]: the tag identifying what was observed (PAGE, CONNECT, ...)
//   - [Envelope]: the normalized record delivered to the collector
//   - [Attributes]: the free-form payload carried by an envelope
//
// # Chain identifiers
//
// Wallet providers report chain ids as hex strings ("0x1") while the
// collector expects decimal strings ("1"). [NormalizeChainID] converts
// either form to the decimal representation.
package domain
