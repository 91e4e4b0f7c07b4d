package saving

import (
	"context"

	"github.com/debemdeboas/campaign-editor/internal/model"
)

// Persister writes an exported snapshot to the backend.
type Persister interface {
	Persist(ctx context.Context, content model.Content) error
}

type PersisterFunc func(ctx context.Context, content model.Content) error

func (f PersisterFunc) Persist(ctx context.Context, content model.Content) error {
	return f(ctx, content)
}
