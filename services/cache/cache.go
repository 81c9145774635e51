// Package cache keeps an in-process index of every activity instance
// the bot has already recorded, so ingestion sweeps can skip known
// instances without a database round trip.
package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/store"
)

// Service answers "have we seen this activity instance before".
type Service interface {
	// Lookup returns the cached record for an instance. On a cache miss
	// it falls through to the store and caches a hit. Returns nil, nil
	// when the instance is unknown everywhere.
	Lookup(ctx context.Context, instanceID int64) (*models.ActivityRecord, error)
	// Insert adds a record to the cache and reports whether it was new.
	// Inserting an instance a second time is a no-op.
	Insert(record models.ActivityRecord) bool
	// Rebuild replaces the cache contents from the store.
	Rebuild(ctx context.Context) error
	// Size returns the number of cached instances.
	Size() int
}

type service struct {
	Store store.Store

	entries sync.Map // int64 -> models.ActivityRecord
	size    int64
	mu      sync.Mutex
}

var _ Service = (*service)(nil)

// NewService returns a cache backed by the given store.
func NewService(s store.Store) Service {
	return &service{Store: s}
}

func (s *service) Lookup(ctx context.Context, instanceID int64) (*models.ActivityRecord, error) {
	if v, ok := s.entries.Load(instanceID); ok {
		record := v.(models.ActivityRecord)
		return &record, nil
	}
	record, err := s.Store.Activity(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	s.Insert(*record)
	return record, nil
}

func (s *service) Insert(record models.ActivityRecord) bool {
	_, loaded := s.entries.LoadOrStore(record.InstanceID, record)
	if !loaded {
		s.mu.Lock()
		s.size++
		s.mu.Unlock()
	}
	return !loaded
}

func (s *service) Rebuild(ctx context.Context) error {
	records, err := s.Store.AllActivities(ctx)
	if err != nil {
		return err
	}
	s.entries.Range(func(key, _ any) bool {
		s.entries.Delete(key)
		return true
	})
	s.mu.Lock()
	s.size = 0
	s.mu.Unlock()
	for _, record := range records {
		s.Insert(record)
	}
	log.Info().Int("activities", len(records)).Msg("activity cache rebuilt")
	return nil
}

func (s *service) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.size)
}
