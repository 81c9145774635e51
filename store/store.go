// Package store persists activity records, challenge completions,
// nightfall scores and blitz results. The production implementation is
// backed by Firestore; an in-memory implementation exists for tests.
package store

import (
	"context"
	"time"

	"github.com/KiaArmani/NFLBot/models"
)

// Collection names. These match the live database and must not change
// without a migration.
const (
	ActivityCollection  = "memberactivity"
	ChallengeCollection = "confirmedchallenges"
	ScoreCollection     = "nfl"
	BlitzCollection     = "blitzmissions"
)

// Store is the durable record of everything the bot has observed.
// Lookup methods that return a pointer yield nil, nil when no document
// matches.
type Store interface {
	// Activity returns the stored record for an activity instance.
	Activity(ctx context.Context, instanceID int64) (*models.ActivityRecord, error)
	// AllActivities streams every stored activity record. Used to warm
	// the dedup cache at start-up.
	AllActivities(ctx context.Context) ([]models.ActivityRecord, error)
	// AddActivities writes a batch of new records. Callers are expected
	// to have deduplicated against the cache first.
	AddActivities(ctx context.Context, records []models.ActivityRecord) error
	// CompletedActivities returns finished activities in any of the
	// given modes with a period at or after since.
	CompletedActivities(ctx context.Context, modes []models.ActivityMode, since time.Time) ([]models.ActivityRecord, error)
	// ActivitiesInWindow returns activities of one mode whose period
	// falls in [start, end).
	ActivitiesInWindow(ctx context.Context, mode models.ActivityMode, start, end time.Time) ([]models.ActivityRecord, error)
	// TotalKills sums the kills stat over every stored activity.
	TotalKills(ctx context.Context) (float64, error)

	// HasChallenge reports whether an account already holds a completion
	// for the given week, tier and difficulty.
	HasChallenge(ctx context.Context, accountID, week, tier int64, difficulty models.Difficulty) (bool, error)
	AddChallenge(ctx context.Context, entry models.ChallengeEntry) error
	ChallengesForAccount(ctx context.Context, accountID int64) ([]models.ChallengeEntry, error)
	AllChallenges(ctx context.Context) ([]models.ChallengeEntry, error)

	// HasScore reports whether a score entry exists for the given
	// activity instance and account.
	HasScore(ctx context.Context, instanceID, accountID int64) (bool, error)
	AddScores(ctx context.Context, entries []models.ScoreEntry) error
	// ScoresSince returns every score entry whose activity date is at or
	// after since.
	ScoresSince(ctx context.Context, since time.Time) ([]models.ScoreEntry, error)

	// HasBlitz reports whether an account already finished the rotation
	// identified by (start, mode, statField, target).
	HasBlitz(ctx context.Context, accountID int64, start time.Time, mode models.ActivityMode, statField string, target float64) (bool, error)
	AddBlitz(ctx context.Context, entry models.BlitzEntry) error
}
