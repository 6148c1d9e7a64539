package ports

// Storage is a string key/value store.
// Durable storage survives restarts; session storage lives for one
// browsing session.
type Storage interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool)

	// Set stores value under key.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
