package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/walletscope/internal/ports"
)

// IdentityKey is the durable storage key holding the device identity.
const IdentityKey = "identity"

// PathIdentify is the bootstrap endpoint.
const PathIdentify = "/identify"

// IdentityResolver obtains the stable device identity.
type IdentityResolver struct {
	storage ports.Storage
	poster  ports.Poster
	baseURL string
	apiKey  string
	logger  ports.Logger
}

// NewIdentityResolver creates a resolver backed by durable storage.
func NewIdentityResolver(storage ports.Storage, poster ports.Poster, baseURL, apiKey string, logger ports.Logger) *IdentityResolver {
	return &IdentityResolver{
		storage: storage,
		poster:  poster,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Resolve returns the cached identity when cacheEnabled and one exists,
// otherwise bootstraps a new one from the collector. With caching on, a
// bootstrapped identity is persisted before it is returned. Storage is not
// touched when caching is off.
func (r *IdentityResolver) Resolve(ctx context.Context, cacheEnabled bool) (string, error) {
	if cacheEnabled {
		if id, ok := r.storage.Get(IdentityKey); ok && id != "" {
			r.logger.Debug("using cached identity")
			return id, nil
		}
	}

	id, err := r.poster.Post(ctx, r.baseURL, r.apiKey, PathIdentify, nil)
	if err != nil {
		return "", fmt.Errorf("identify: %w", err)
	}

	if cacheEnabled {
		if err := r.storage.Set(IdentityKey, id); err != nil {
			return "", fmt.Errorf("persist identity: %w", err)
		}
	}

	r.logger.Info("identity bootstrapped", ports.Bool("cached", cacheEnabled))
	return id, nil
}
