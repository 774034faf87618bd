package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

// ThreadService implements the chat thread repository over the profile
// store: CRUD plus the 30-day retention policy, applied on every load and
// after every save.
type ThreadService struct {
	store  ports.ProfileStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewThreadService(store ports.ProfileStore, logger zerolog.Logger) *ThreadService {
	return &ThreadService{store: store, logger: logger, now: time.Now}
}

// List loads the thread list, drops entries outside the retention window
// and persists the filtered result when anything was dropped. The caller
// decides ordering; the repository does not sort.
func (s *ThreadService) List(ctx context.Context, profileID string) ([]domain.ChatThread, error) {
	threads := s.load(ctx, profileID)
	kept := s.applyRetention(threads)
	if len(kept) < len(threads) {
		if err := s.persist(ctx, profileID, kept); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

// Upsert replaces any existing thread with the same id, else prepends,
// re-applies the retention filter and persists.
func (s *ThreadService) Upsert(ctx context.Context, profileID string, thread domain.ChatThread) error {
	threads := s.load(ctx, profileID)

	replaced := false
	for i := range threads {
		if threads[i].ID == thread.ID {
			threads[i] = thread
			replaced = true
			break
		}
	}
	if !replaced {
		threads = append([]domain.ChatThread{thread}, threads...)
	}

	return s.persist(ctx, profileID, s.applyRetention(threads))
}

// Remove deletes one thread by id and persists the remainder.
func (s *ThreadService) Remove(ctx context.Context, profileID, threadID string) error {
	threads := s.load(ctx, profileID)
	kept := threads[:0:0]
	for _, t := range threads {
		if t.ID != threadID {
			kept = append(kept, t)
		}
	}
	return s.persist(ctx, profileID, s.applyRetention(kept))
}

// RemoveAll persists an empty list.
func (s *ThreadService) RemoveAll(ctx context.Context, profileID string) error {
	return s.persist(ctx, profileID, nil)
}

// load reads the stored thread array. A missing or corrupt record
// degrades to an empty list; corruption is logged, never propagated.
func (s *ThreadService) load(ctx context.Context, profileID string) []domain.ChatThread {
	raw, err := s.store.Get(ctx, profileID, ports.KeyChatThreads)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.Error().Err(err).Str("profile_id", profileID).Msg("failed to load chat threads")
		}
		return nil
	}

	var threads []domain.ChatThread
	if err := json.Unmarshal(raw, &threads); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profileID).Msg("corrupt chat_threads record, treating as empty")
		return nil
	}
	return threads
}

// persist always writes a valid JSON array, even when the list is empty.
func (s *ThreadService) persist(ctx context.Context, profileID string, threads []domain.ChatThread) error {
	if threads == nil {
		threads = []domain.ChatThread{}
	}
	raw, err := json.Marshal(threads)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, profileID, ports.KeyChatThreads, raw)
}

func (s *ThreadService) applyRetention(threads []domain.ChatThread) []domain.ChatThread {
	now := s.now()
	kept := threads[:0:0]
	for _, t := range threads {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	if dropped := len(threads) - len(kept); dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Msg("purged threads past retention window")
	}
	return kept
}
