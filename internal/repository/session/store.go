// Package session persists per-session interest vectors and per-user
// session histories in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/flaxandteal/dp-conceptual-search-sub000/internal/domain"
)

// Record is one session's interest state.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Vector    string    `json:"vector"` // base64 big-endian float64
	UpdatedAt time.Time `json:"updated_at"`
}

// InterestVector decodes the stored vector. A missing vector decodes to nil.
func (r Record) InterestVector() (domain.Vector, error) {
	if r.Vector == "" {
		return nil, nil
	}
	v, err := domain.DecodeVectorBase64(r.Vector)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", r.ID, err)
	}
	return v, nil
}

// Store keeps session records in Redis: one JSON value per session plus a
// per-user list of session IDs in creation order (oldest first).
type Store struct {
	client      rueidis.Client
	keyPrefix   string
	ttl         time.Duration
	maxSessions int
}

// Config holds session store settings.
type Config struct {
	Addrs           []string
	Password        string
	KeyPrefix       string
	SessionTTLHours int
	MaxSessions     int
}

// NewStore connects to Redis and creates a session store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "search:"
	}
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if cfg.SessionTTLHours <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 5
	}

	return &Store{
		client:      client,
		keyPrefix:   prefix,
		ttl:         ttl,
		maxSessions: maxSessions,
	}, nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping session store: %w", err)
	}
	return nil
}

// Session retrieves one session record.
func (s *Store) Session(ctx context.Context, sessionID string) (Record, error) {
	cmd := s.client.B().Get().Key(s.sessionKey(sessionID)).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return Record{}, fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
		}
		return Record{}, fmt.Errorf("get session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode session %q: %w", sessionID, err)
	}
	return rec, nil
}

// SaveSession writes a session record and, for a session not seen before,
// appends it to its user's history (trimmed to the newest maxSessions).
func (s *Store) SaveSession(ctx context.Context, rec Record) error {
	existed := true
	if _, err := s.Session(ctx, rec.ID); err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		existed = false
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", rec.ID, err)
	}

	set := s.client.B().Set().Key(s.sessionKey(rec.ID)).Value(string(data)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, set).Error(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if existed || rec.UserID == "" {
		return nil
	}
	listKey := s.userKey(rec.UserID)
	push := s.client.B().Rpush().Key(listKey).Element(rec.ID).Build()
	if err := s.client.Do(ctx, push).Error(); err != nil {
		return fmt.Errorf("append user session: %w", err)
	}
	trim := s.client.B().Ltrim().Key(listKey).Start(int64(-s.maxSessions)).Stop(-1).Build()
	if err := s.client.Do(ctx, trim).Error(); err != nil {
		return fmt.Errorf("trim user sessions: %w", err)
	}
	return nil
}

// UserSessions returns the user's retained sessions, oldest first. Expired
// sessions still listed in the history are skipped.
func (s *Store) UserSessions(ctx context.Context, userID string) ([]Record, error) {
	cmd := s.client.B().Lrange().Key(s.userKey(userID)).Start(0).Stop(-1).Build()
	ids, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Session(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) sessionKey(id string) string {
	return s.keyPrefix + "session:" + id
}

func (s *Store) userKey(id string) string {
	return s.keyPrefix + "user:" + id + ":sessions"
}
