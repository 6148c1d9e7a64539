// Package host provides an in-memory host environment: a window with
// session history and click dispatch, and an EIP-1193 style wallet
// provider with scripted responses.
//
// It stands in for the browser in tests and in scenario replay.
package host
