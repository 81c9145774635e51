package store

import (
	"context"
	"sync"
	"time"

	"github.com/KiaArmani/NFLBot/models"
)

// memoryStore keeps everything in process memory. It exists for tests
// and local development without a Firestore project.
type memoryStore struct {
	mu         sync.RWMutex
	activities []models.ActivityRecord
	challenges []models.ChallengeEntry
	scores     []models.ScoreEntry
	blitz      []models.BlitzEntry
}

var _ Store = (*memoryStore)(nil)

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{}
}

func (s *memoryStore) Activity(_ context.Context, instanceID int64) (*models.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.activities {
		if s.activities[i].InstanceID == instanceID {
			record := s.activities[i]
			return &record, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) AllActivities(_ context.Context) ([]models.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ActivityRecord, len(s.activities))
	copy(out, s.activities)
	return out, nil
}

func (s *memoryStore) AddActivities(_ context.Context, records []models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, records...)
	return nil
}

func (s *memoryStore) CompletedActivities(_ context.Context, modes []models.ActivityMode, since time.Time) ([]models.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[models.ActivityMode]struct{}, len(modes))
	for _, mode := range modes {
		wanted[mode] = struct{}{}
	}
	var out []models.ActivityRecord
	for i := range s.activities {
		record := s.activities[i]
		if _, ok := wanted[record.Mode]; !ok {
			continue
		}
		if record.Period.Before(since) {
			continue
		}
		if !record.Completed() {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *memoryStore) ActivitiesInWindow(_ context.Context, mode models.ActivityMode, start, end time.Time) ([]models.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ActivityRecord
	for i := range s.activities {
		record := s.activities[i]
		if record.Mode != mode {
			continue
		}
		if record.Period.Before(start) || !record.Period.Before(end) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *memoryStore) TotalKills(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for i := range s.activities {
		if kills, ok := s.activities[i].Stat(models.StatBasic, "kills"); ok {
			total += kills
		}
	}
	return total, nil
}

func (s *memoryStore) HasChallenge(_ context.Context, accountID, week, tier int64, difficulty models.Difficulty) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.challenges {
		entry := s.challenges[i]
		if entry.AccountID == accountID && entry.Week == week && entry.Tier == tier && entry.Difficulty == difficulty {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AddChallenge(_ context.Context, entry models.ChallengeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges = append(s.challenges, entry)
	return nil
}

func (s *memoryStore) ChallengesForAccount(_ context.Context, accountID int64) ([]models.ChallengeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChallengeEntry
	for i := range s.challenges {
		if s.challenges[i].AccountID == accountID {
			out = append(out, s.challenges[i])
		}
	}
	return out, nil
}

func (s *memoryStore) AllChallenges(_ context.Context) ([]models.ChallengeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChallengeEntry, len(s.challenges))
	copy(out, s.challenges)
	return out, nil
}

func (s *memoryStore) HasScore(_ context.Context, instanceID, accountID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.scores {
		if s.scores[i].InstanceID == instanceID && s.scores[i].AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AddScores(_ context.Context, entries []models.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, entries...)
	return nil
}

func (s *memoryStore) ScoresSince(_ context.Context, since time.Time) ([]models.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ScoreEntry
	for i := range s.scores {
		if !s.scores[i].ActivityDate.Before(since) {
			out = append(out, s.scores[i])
		}
	}
	return out, nil
}

func (s *memoryStore) HasBlitz(_ context.Context, accountID int64, start time.Time, mode models.ActivityMode, statField string, target float64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.blitz {
		entry := s.blitz[i]
		if entry.AccountID == accountID && entry.MissionStart.Equal(start) &&
			entry.Mode == mode && entry.StatField == statField && entry.Target == target {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) AddBlitz(_ context.Context, entry models.BlitzEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blitz = append(s.blitz, entry)
	return nil
}
