package download

import (
	"context"

	"github.com/hrmshandy/treasure-chest/internal/nxm"
)

// Resolver exchanges a signed download request for a direct content URL.
type Resolver interface {
	ResolveDownloadURL(ctx context.Context, req nxm.Request) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, req nxm.Request) (string, error)

// ResolveDownloadURL calls f.
func (f ResolverFunc) ResolveDownloadURL(ctx context.Context, req nxm.Request) (string, error) {
	return f(ctx, req)
}
