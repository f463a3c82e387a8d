// File path: internal/backend/offline.go
package backend

import "context"

// Offline is the backend used when no API credential is configured. Every
// call reports ErrUnavailable, which routes each channel to its
// deterministic rendering instead of failing the request.
type Offline struct{}

func (Offline) Name() string { return "offline" }

func (Offline) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}
