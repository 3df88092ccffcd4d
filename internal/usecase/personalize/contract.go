package personalize

import (
	"context"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/repository/session"
)

// Repository persists session interest records and per-user histories.
type Repository interface {
	Session(ctx context.Context, sessionID string) (session.Record, error)
	SaveSession(ctx context.Context, rec session.Record) error
	// UserSessions returns retained sessions oldest first.
	UserSessions(ctx context.Context, userID string) ([]session.Record, error)
}

// Embedder vectorizes interest terms.
type Embedder interface {
	SentenceVector(ctx context.Context, text string) (domain.Vector, error)
}

// DocumentVectors resolves stored document embeddings by URI.
type DocumentVectors interface {
	Embedding(ctx context.Context, uri string) (domain.Vector, error)
}
