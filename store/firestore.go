package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/KiaArmani/NFLBot/models"
)

type firestoreStore struct {
	DB *firestore.Client
}

var _ Store = (*firestoreStore)(nil)

// NewFirestore returns a Store backed by the given Firestore client.
func NewFirestore(db *firestore.Client) Store {
	return &firestoreStore{DB: db}
}

func (s *firestoreStore) Activity(ctx context.Context, instanceID int64) (*models.ActivityRecord, error) {
	iter := s.DB.Collection(ActivityCollection).
		Where("instanceId", "==", instanceID).
		Limit(1).
		Documents(ctx)
	var record *models.ActivityRecord
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		err = doc.DataTo(&record)
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (s *firestoreStore) AllActivities(ctx context.Context) ([]models.ActivityRecord, error) {
	iter := s.DB.Collection(ActivityCollection).Documents(ctx)
	return collectActivities(iter)
}

func (s *firestoreStore) AddActivities(ctx context.Context, records []models.ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}
	bw := s.DB.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(records))
	for _, record := range records {
		ref := s.DB.Collection(ActivityCollection).Doc(record.ID)
		job, err := bw.Create(ref, record)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (s *firestoreStore) CompletedActivities(ctx context.Context, modes []models.ActivityMode, since time.Time) ([]models.ActivityRecord, error) {
	iter := s.DB.Collection(ActivityCollection).
		Where("mode", "in", modes).
		Where("period", ">=", since).
		Documents(ctx)
	records, err := collectActivities(iter)
	if err != nil {
		return nil, err
	}
	completed := make([]models.ActivityRecord, 0, len(records))
	for _, record := range records {
		if record.Completed() {
			completed = append(completed, record)
		}
	}
	return completed, nil
}

func (s *firestoreStore) ActivitiesInWindow(ctx context.Context, mode models.ActivityMode, start, end time.Time) ([]models.ActivityRecord, error) {
	iter := s.DB.Collection(ActivityCollection).
		Where("mode", "==", mode).
		Where("period", ">=", start).
		Where("period", "<", end).
		Documents(ctx)
	return collectActivities(iter)
}

func (s *firestoreStore) TotalKills(ctx context.Context) (float64, error) {
	records, err := s.AllActivities(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, record := range records {
		if kills, ok := record.Stat(models.StatBasic, "kills"); ok {
			total += kills
		}
	}
	return total, nil
}

func (s *firestoreStore) HasChallenge(ctx context.Context, accountID, week, tier int64, difficulty models.Difficulty) (bool, error) {
	iter := s.DB.Collection(ChallengeCollection).
		Where("accountId", "==", accountID).
		Where("week", "==", week).
		Where("tier", "==", tier).
		Where("difficulty", "==", string(difficulty)).
		Limit(1).
		Documents(ctx)
	return exists(iter)
}

func (s *firestoreStore) AddChallenge(ctx context.Context, entry models.ChallengeEntry) error {
	_, err := s.DB.Collection(ChallengeCollection).Doc(entry.ID).Set(ctx, entry)
	return err
}

func (s *firestoreStore) ChallengesForAccount(ctx context.Context, accountID int64) ([]models.ChallengeEntry, error) {
	iter := s.DB.Collection(ChallengeCollection).
		Where("accountId", "==", accountID).
		Documents(ctx)
	return collectChallenges(iter)
}

func (s *firestoreStore) AllChallenges(ctx context.Context) ([]models.ChallengeEntry, error) {
	iter := s.DB.Collection(ChallengeCollection).Documents(ctx)
	return collectChallenges(iter)
}

func (s *firestoreStore) HasScore(ctx context.Context, instanceID, accountID int64) (bool, error) {
	iter := s.DB.Collection(ScoreCollection).
		Where("instanceId", "==", instanceID).
		Where("accountId", "==", accountID).
		Limit(1).
		Documents(ctx)
	return exists(iter)
}

func (s *firestoreStore) AddScores(ctx context.Context, entries []models.ScoreEntry) error {
	if len(entries) == 0 {
		return nil
	}
	bw := s.DB.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(entries))
	for _, entry := range entries {
		ref := s.DB.Collection(ScoreCollection).Doc(entry.ID)
		job, err := bw.Create(ref, entry)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

func (s *firestoreStore) ScoresSince(ctx context.Context, since time.Time) ([]models.ScoreEntry, error) {
	iter := s.DB.Collection(ScoreCollection).
		Where("activityDate", ">=", since).
		Documents(ctx)
	var entries []models.ScoreEntry
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var entry models.ScoreEntry
		err = doc.DataTo(&entry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *firestoreStore) HasBlitz(ctx context.Context, accountID int64, start time.Time, mode models.ActivityMode, statField string, target float64) (bool, error) {
	iter := s.DB.Collection(BlitzCollection).
		Where("accountId", "==", accountID).
		Where("missionStart", "==", start).
		Where("mode", "==", mode).
		Where("statField", "==", statField).
		Where("target", "==", target).
		Limit(1).
		Documents(ctx)
	return exists(iter)
}

func (s *firestoreStore) AddBlitz(ctx context.Context, entry models.BlitzEntry) error {
	_, err := s.DB.Collection(BlitzCollection).Doc(entry.ID).Set(ctx, entry)
	return err
}

func collectActivities(iter *firestore.DocumentIterator) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var record models.ActivityRecord
		err = doc.DataTo(&record)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func collectChallenges(iter *firestore.DocumentIterator) ([]models.ChallengeEntry, error) {
	var entries []models.ChallengeEntry
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var entry models.ChallengeEntry
		err = doc.DataTo(&entry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func exists(iter *firestore.DocumentIterator) (bool, error) {
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
