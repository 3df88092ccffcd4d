// Package personalize maintains per-session interest vectors learned from
// search and browsing behaviour.
package personalize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/normalize"
	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/repository/session"
)

// Service applies decayed interest updates to session vectors and derives
// durable user vectors from session history. Updates to one session are
// serialized through a per-session lock, so a read-modify-write never
// races a concurrent event for the same session.
type Service struct {
	sessions Repository
	embed    Embedder
	docs     DocumentVectors
	alpha    float64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a personalization service with the given learning rate.
func New(sessions Repository, embed Embedder, docs DocumentVectors, alpha float64) *Service {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.25
	}
	return &Service{
		sessions: sessions,
		embed:    embed,
		docs:     docs,
		alpha:    alpha,
		locks:    map[string]*sync.Mutex{},
	}
}

// RecordTerm applies a searched-term interest signal to a session.
func (s *Service) RecordTerm(ctx context.Context, userID, sessionID, term string, positive bool) error {
	cleaned := normalize.Clean(term)
	if cleaned == "" {
		return fmt.Errorf("%w: %q", domain.ErrMalformedSearchTerm, term)
	}
	vec, err := s.embed.SentenceVector(ctx, cleaned)
	if err != nil {
		return fmt.Errorf("record term %q: %w", cleaned, err)
	}
	return s.update(ctx, userID, sessionID, vec, positive)
}

// RecordDocument applies a viewed-document interest signal to a session.
func (s *Service) RecordDocument(ctx context.Context, userID, sessionID, uri string, positive bool) error {
	vec, err := s.docs.Embedding(ctx, uri)
	if err != nil {
		return fmt.Errorf("record document %q: %w", uri, err)
	}
	return s.update(ctx, userID, sessionID, vec, positive)
}

// SessionVector returns a session's current interest vector, or nil for an
// unknown session.
func (s *Service) SessionVector(ctx context.Context, sessionID string) (domain.Vector, error) {
	rec, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec.InterestVector()
}

// UserVector recomputes the durable user vector from the user's retained
// sessions: a weighted average where the most recent session has weight
// 1.0 and older sessions decay exponentially. Pure function of the session
// history, recomputed on every read.
func (s *Service) UserVector(ctx context.Context, userID string) (domain.Vector, error) {
	records, err := s.sessions.UserSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user vector: %w", err)
	}

	vectors := make([]domain.Vector, 0, len(records))
	for _, rec := range records {
		vec, err := rec.InterestVector()
		if err != nil {
			return nil, fmt.Errorf("user vector: %w", err)
		}
		if !vec.IsZero() {
			vectors = append(vectors, vec)
		}
	}
	return aggregate(vectors)
}

func (s *Service) update(ctx context.Context, userID, sessionID string, target domain.Vector, positive bool) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	rec, err := s.sessions.Session(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("read session: %w", err)
		}
		rec = session.Record{ID: sessionID, UserID: userID}
	}

	current, err := rec.InterestVector()
	if err != nil {
		return err
	}
	updated, err := current.Blend(target, s.alpha, positive)
	if err != nil {
		return fmt.Errorf("update session %q: %w", sessionID, err)
	}

	rec.Vector = updated.EncodeBase64()
	rec.UpdatedAt = time.Now().UTC()
	if rec.UserID == "" {
		rec.UserID = userID
	}
	if err := s.sessions.SaveSession(ctx, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// lockSession acquires the per-session writer lock.
func (s *Service) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// aggregate computes the decay-weighted average of session vectors ordered
// oldest to newest: weight_i = e^i / e^(N-1), so the newest session weighs
// exactly 1.0.
func aggregate(vectors []domain.Vector) (domain.Vector, error) {
	n := len(vectors)
	if n == 0 {
		return nil, nil
	}

	dim := len(vectors[n-1])
	sum := make(domain.Vector, dim)
	var totalWeight float64

	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: session %d has %d dims, want %d",
				domain.ErrVectorDimMismatch, i, len(vec), dim)
		}
		w := math.Exp(float64(i - (n - 1)))
		for j := range vec {
			sum[j] += w * vec[j]
		}
		totalWeight += w
	}

	for j := range sum {
		sum[j] /= totalWeight
	}
	return sum, nil
}
