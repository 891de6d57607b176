package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Router tries registered providers in registration order.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	mu        sync.RWMutex
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider at the end of the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		r.fallback = append(r.fallback, name)
	}
	r.providers[name] = provider
}

// Suggest returns the first successful provider response.
func (r *Router) Suggest(ctx context.Context, req Request) (Response, error) {
	if _, err := ParseKind(string(req.Type)); err != nil {
		return Response{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var lastErr error
	for _, name := range r.fallback {
		resp, err := r.providers[name].Suggest(ctx, req)
		if err != nil {
			slog.Warn("suggestion provider failed, trying next",
				"provider", name,
				"type", req.Type,
				"error", err,
			)
			lastErr = err
			continue
		}

		slog.Debug("suggestions generated",
			"provider", name,
			"type", req.Type,
			"count", resp.Len(),
		)
		return resp, nil
	}

	if lastErr == nil {
		return Response{}, fmt.Errorf("%w: no providers registered", ErrUnavailable)
	}
	if errors.Is(lastErr, ErrUnavailable) {
		return Response{}, lastErr
	}
	return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// HealthCheck succeeds when any provider is healthy.
func (r *Router) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.fallback {
		if err := r.providers[name].HealthCheck(ctx); err == nil {
			return nil
		}
	}
	return ErrUnavailable
}
