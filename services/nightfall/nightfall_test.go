package nightfall

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/services/manifest"
	"github.com/KiaArmani/NFLBot/set"
	"github.com/KiaArmani/NFLBot/store"
)

var since = time.Date(2020, 6, 9, 18, 0, 0, 0, time.UTC)

type fakeDestiny struct {
	roster  []int64
	reports map[int64]*bungie.PostGameCarnageReport
}

var _ destiny.Service = (*fakeDestiny)(nil)

func (f *fakeDestiny) ClanMembershipIDs(context.Context, int64) (*set.Set[int64], error) {
	return set.FromSlice(f.roster), nil
}

func (f *fakeDestiny) ClanMembers(context.Context, int64) ([]bungie.GroupMember, error) {
	panic("not used")
}

func (f *fakeDestiny) Characters(context.Context, int, int64) ([]bungie.Character, error) {
	panic("not used")
}

func (f *fakeDestiny) ActivityHistory(context.Context, int, int64, string, int, int, int) ([]bungie.HistoricalStatsPeriodGroup, error) {
	panic("not used")
}

func (f *fakeDestiny) PostGameCarnageReport(_ context.Context, instanceID int64) (*bungie.PostGameCarnageReport, error) {
	return f.reports[instanceID], nil
}

type fakeManifest struct {
	names map[uint32]string
}

var _ manifest.Service = (*fakeManifest)(nil)

func (f *fakeManifest) Init(context.Context) error    { return nil }
func (f *fakeManifest) Refresh(context.Context) error { return nil }
func (f *fakeManifest) Version() string               { return "test" }
func (f *fakeManifest) Close() error                  { return nil }

func (f *fakeManifest) ActivityDisplay(uint32) (manifest.DisplayProperties, error) {
	return manifest.DisplayProperties{}, nil
}

func (f *fakeManifest) NightfallName(hash uint32) (string, error) {
	return f.names[hash], nil
}

func (f *fakeManifest) WeaponTier(uint32) (manifest.TierType, error) {
	return manifest.TierUnknown, nil
}

func (f *fakeManifest) WeaponType(uint32) (string, error) { return "", nil }

func scoredRun(instanceID, directorHash int64, teamScore float64) models.ActivityRecord {
	return models.ActivityRecord{
		ID:           uuid.NewString(),
		InstanceID:   instanceID,
		Mode:         models.ModeScoredNightfall,
		DirectorHash: directorHash,
		Period:       since.Add(time.Hour),
		Values: map[string]models.StatValue{
			"completionReason": {DisplayValue: "Objective Completed"},
			"teamScore":        {Value: teamScore},
		},
	}
}

func participant(accountID int64, name string) bungie.PostGameEntry {
	return bungie.PostGameEntry{
		Player: bungie.Player{
			DestinyUserInfo: &bungie.UserInfo{MembershipID: accountID, DisplayName: name},
		},
	}
}

func newSweep(d destiny.Service, m manifest.Service) (Service, store.Store) {
	s := store.NewMemory()
	return NewService(d, m, s, Config{GroupID: 1, Since: since}), s
}

func TestSweepRecordsScorePerParticipant(t *testing.T) {
	ctx := context.Background()
	d := &fakeDestiny{
		roster: []int64{1, 2, 3},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{
				participant(1, "One"), participant(2, "Two"), participant(3, "Three"),
			}},
		},
	}
	m := &fakeManifest{names: map[uint32]string{555: "The Scarlet Keep (ADEPT)"}}
	svc, s := newSweep(d, m)
	require.NoError(t, s.AddActivities(ctx, []models.ActivityRecord{scoredRun(100, 555, 113000)}))

	added, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	scores, err := s.ScoresSince(ctx, since)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.Equal(t, "The Scarlet Keep (ADEPT)", scores[0].ActivityName)
	assert.Equal(t, float64(113000), scores[0].Score)
}

func TestSweepSkipsAbortedRuns(t *testing.T) {
	ctx := context.Background()
	d := &fakeDestiny{
		roster: []int64{1},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{participant(1, "One")}},
		},
	}
	m := &fakeManifest{names: map[uint32]string{555: "The Scarlet Keep (ADEPT)"}}
	svc, s := newSweep(d, m)
	require.NoError(t, s.AddActivities(ctx, []models.ActivityRecord{scoredRun(100, 555, 0)}))

	added, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "zero team score means the run was aborted")
}

func TestSweepSkipsRunsWithOutsiders(t *testing.T) {
	ctx := context.Background()
	d := &fakeDestiny{
		roster: []int64{1},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{participant(1, "One"), participant(99, "Outsider")}},
		},
	}
	m := &fakeManifest{names: map[uint32]string{555: "The Scarlet Keep (ADEPT)"}}
	svc, s := newSweep(d, m)
	require.NoError(t, s.AddActivities(ctx, []models.ActivityRecord{scoredRun(100, 555, 113000)}))

	added, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSweepSkipsExcludedActivities(t *testing.T) {
	ctx := context.Background()
	d := &fakeDestiny{
		roster: []int64{1},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{participant(1, "One")}},
		},
	}
	// Hash 555 resolves to nothing, as quest variants do.
	m := &fakeManifest{names: map[uint32]string{}}
	svc, s := newSweep(d, m)
	require.NoError(t, s.AddActivities(ctx, []models.ActivityRecord{scoredRun(100, 555, 113000)}))

	added, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestSweepDoesNotDuplicateScores(t *testing.T) {
	ctx := context.Background()
	d := &fakeDestiny{
		roster: []int64{1, 2},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{participant(1, "One"), participant(2, "Two")}},
		},
	}
	m := &fakeManifest{names: map[uint32]string{555: "The Scarlet Keep (ADEPT)"}}
	svc, s := newSweep(d, m)
	require.NoError(t, s.AddActivities(ctx, []models.ActivityRecord{scoredRun(100, 555, 113000)}))

	added, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	scores, err := s.ScoresSince(ctx, since)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}
