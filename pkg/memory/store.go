package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/papercomputeco/mentor/pkg/embeddings"
	"github.com/papercomputeco/mentor/pkg/eventstream"
	"github.com/papercomputeco/mentor/pkg/eventstream/nop"
	"github.com/papercomputeco/mentor/pkg/logger"
	"github.com/papercomputeco/mentor/pkg/vector"
)

// Config wires a Store to its backends.
type Config struct {
	Driver   vector.Driver
	Embedder embeddings.Embedder

	// Publisher receives memory events. Nil disables them.
	Publisher eventstream.Publisher

	// Source labels published events.
	Source eventstream.EventSource

	Logger *slog.Logger
}

// Store owns every Turn of one conversation. Writes are serialized so
// the read, wipe, write sequence of ReplaceSubject never interleaves
// with another writer.
type Store struct {
	driver    vector.Driver
	embedder  embeddings.Embedder
	publisher eventstream.Publisher
	source    eventstream.EventSource
	logger    *slog.Logger

	mu   sync.Mutex
	next TurnID
}

// NewStore opens a store over c.Driver. Turn ids continue after the
// highest id already present in the driver.
func NewStore(ctx context.Context, c Config) (*Store, error) {
	if c.Driver == nil || c.Embedder == nil {
		return nil, errors.New("memory store requires a vector driver and an embedder")
	}

	publisher := c.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	s := &Store{
		driver:    c.Driver,
		embedder:  c.Embedder,
		publisher: publisher,
		source:    c.Source,
		logger:    logger.OrNop(c.Logger),
	}

	ids, err := s.driver.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing turns: %w", ErrBackendUnavailable, err)
	}

	for _, raw := range ids {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.logger.Warn("ignoring turn with non-numeric id", "id", raw)
			continue
		}
		if TurnID(id) >= s.next {
			s.next = TurnID(id) + 1
		}
	}

	s.logger.Debug("memory store opened", "turns", len(ids), "next_id", s.next)

	return s, nil
}

// Append stores a dialogue turn and returns its id.
func (s *Store) Append(ctx context.Context, key, payload string) (TurnID, error) {
	if key == SubjectKey {
		return 0, ErrReservedKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.append(ctx, key, payload)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, eventstream.EventTypeTurnAppended, func(e *eventstream.MemoryEvent) {
		e.TurnID = uint64(id)
		e.Key = key
	})

	return id, nil
}

// append must be called with mu held. The id is consumed even when the
// driver fails, so a half-written turn can never be shadowed later.
func (s *Store) append(ctx context.Context, key, payload string) (TurnID, error) {
	embedding, err := s.embedder.Embed(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("%w: embedding turn: %w", ErrBackendUnavailable, err)
	}

	id := s.next
	s.next++

	err = s.driver.Add(ctx, []vector.Document{{
		ID:        id.String(),
		Key:       key,
		Payload:   payload,
		Embedding: embedding,
	}})
	if err != nil {
		return 0, fmt.Errorf("%w: storing turn %d: %w", ErrBackendUnavailable, id, err)
	}

	s.logger.Debug("appended turn", "id", id, "key_len", len(key), "payload_len", len(payload))

	return id, nil
}

// QueryRelevant returns up to k turns most similar to query. k <= 0 means
// DefaultTopK. An empty store yields an empty result.
func (s *Store) QueryRelevant(ctx context.Context, query string, k int) ([]Relevant, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", ErrBackendUnavailable, err)
	}

	results, err := s.driver.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("%w: querying turns: %w", ErrBackendUnavailable, err)
	}

	relevant := make([]Relevant, 0, len(results))
	for _, r := range results {
		relevant = append(relevant, Relevant{
			Key:     r.Key,
			Payload: r.Payload,
			Score:   r.Score,
		})
	}

	return relevant, nil
}

// subjects returns the stored subject payloads, newest first. A sentinel
// query answers in the common case. Turns whose keys embed like the
// sentinel can outrank it, so a full top-k without a subject falls back to
// scanning every turn by key.
func (s *Store) subjects(ctx context.Context) ([]string, error) {
	hits, err := s.QueryRelevant(ctx, SubjectKey, DefaultTopK)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, h := range hits {
		if h.Key == SubjectKey {
			found = append(found, h.Payload)
		}
	}
	if len(found) > 0 || len(hits) < DefaultTopK {
		return found, nil
	}

	s.logger.Debug("subject outranked by similar keys, scanning turns")

	all, err := s.Turns(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range slices.Backward(all) {
		if t.Key == SubjectKey {
			found = append(found, t.Payload)
		}
	}
	return found, nil
}

// Subject returns the current subject text, if one is stored.
func (s *Store) Subject(ctx context.Context) (string, bool, error) {
	found, err := s.subjects(ctx)
	if err != nil {
		return "", false, err
	}
	if len(found) == 0 {
		return "", false, nil
	}
	return found[0], true, nil
}

// ReplaceSubject makes text the canonical subject. When a different
// subject is stored the whole conversation is deleted first. Text equal
// to the stored subject, ignoring surrounding whitespace, leaves the store
// untouched.
//
// On error the store may be left without a subject; callers retry the
// whole cycle.
func (s *Store) ReplaceSubject(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.subjects(ctx)
	if err != nil {
		return err
	}

	switch {
	case len(found) > 1:
		s.logger.Warn("repairing memory", "error", ErrStoreInconsistency, "subjects", len(found))
		if err := s.wipe(ctx); err != nil {
			return err
		}
	case len(found) == 1 && strings.TrimSpace(found[0]) == strings.TrimSpace(text):
		s.logger.Debug("subject unchanged, keeping conversation")
		return nil
	case len(found) == 1:
		if err := s.wipe(ctx); err != nil {
			return err
		}
	}

	id, err := s.append(ctx, SubjectKey, text)
	if err != nil {
		return err
	}

	s.publish(ctx, eventstream.EventTypeSubjectReplaced, func(e *eventstream.MemoryEvent) {
		e.TurnID = uint64(id)
		e.Key = SubjectKey
	})

	return nil
}

// wipe deletes every stored turn. Must be called with mu held.
func (s *Store) wipe(ctx context.Context) error {
	ids, err := s.driver.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing turns: %w", ErrBackendUnavailable, err)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := s.driver.Delete(ctx, ids); err != nil {
		return fmt.Errorf("%w: deleting turns: %w", ErrBackendUnavailable, err)
	}

	s.logger.Info("memory wiped", "removed", len(ids))

	s.publish(ctx, eventstream.EventTypeMemoryWiped, func(e *eventstream.MemoryEvent) {
		e.Removed = len(ids)
	})

	return nil
}

// Turns returns every stored turn ordered by id.
func (s *Store) Turns(ctx context.Context) ([]Turn, error) {
	ids, err := s.driver.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing turns: %w", ErrBackendUnavailable, err)
	}

	docs, err := s.driver.Get(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: reading turns: %w", ErrBackendUnavailable, err)
	}

	turns := make([]Turn, 0, len(docs))
	for _, doc := range docs {
		id, err := strconv.ParseUint(doc.ID, 10, 64)
		if err != nil {
			continue
		}
		turns = append(turns, Turn{ID: TurnID(id), Key: doc.Key, Payload: doc.Payload})
	}

	slices.SortFunc(turns, func(a, b Turn) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return turns, nil
}

// Count returns the number of stored turns.
func (s *Store) Count(ctx context.Context) (int, error) {
	ids, err := s.driver.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: listing turns: %w", ErrBackendUnavailable, err)
	}
	return len(ids), nil
}

// Close closes the driver, embedder and publisher.
func (s *Store) Close() error {
	return errors.Join(
		s.driver.Close(),
		s.embedder.Close(),
		s.publisher.Close(),
	)
}

func (s *Store) publish(ctx context.Context, eventType string, fill func(*eventstream.MemoryEvent)) {
	event := eventstream.NewMemoryEvent(eventType, s.source)
	fill(event)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publishing memory event failed", "type", eventType, "error", err)
	}
}
