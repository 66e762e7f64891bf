package interaction

import (
	"context"

	"github.com/go-drift/charts/pkg/errors"
)

type storeKey struct{}

// NewContext returns a copy of ctx carrying s. Charts created under the
// returned context share s.
func NewContext(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the Store carried by ctx.
func FromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok && s != nil
}

// MustFromContext returns the Store carried by ctx.
// It panics with a *errors.UsageError if there is none.
func MustFromContext(ctx context.Context) *Store {
	s, ok := FromContext(ctx)
	if !ok {
		panic(&errors.UsageError{
			Op:      "interaction.MustFromContext",
			Message: "no interaction store in context; create one with interaction.Provide or attach one with interaction.NewContext",
		})
	}
	return s
}

// Provide creates a Store and returns it together with a context carrying it.
// The caller owns the Store and must Dispose it when the region is torn down.
func Provide(ctx context.Context, cfg Config, opts ...Option) (context.Context, *Store) {
	s := NewStore(cfg, opts...)
	return NewContext(ctx, s), s
}
