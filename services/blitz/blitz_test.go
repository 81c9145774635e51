package blitz

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/set"
	"github.com/KiaArmani/NFLBot/store"
)

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

func pvpEntry(accountID int64, name string, kills float64) bungie.PostGameEntry {
	return bungie.PostGameEntry{
		Player: bungie.Player{
			DestinyUserInfo: &bungie.UserInfo{MembershipID: accountID, DisplayName: name},
		},
		Values: map[string]bungie.HistoricalStatsValue{
			"kills": {Basic: bungie.HistoricalStatsValuePair{Value: kills}},
		},
	}
}

func pvpActivity(instanceID int64, period time.Time) models.ActivityRecord {
	return models.ActivityRecord{
		ID:         uuid.NewString(),
		InstanceID: instanceID,
		Mode:       models.ModeAllPvP,
		Period:     period,
	}
}

func pvpRotation(start time.Time, target float64) *Rotation {
	for _, mission := range Missions() {
		if mission.Mode == models.ModeAllPvP {
			return &Rotation{Mission: mission, Target: target, Start: start}
		}
	}
	panic("no pvp mission")
}

func TestRotateNeverRepeatsMission(t *testing.T) {
	s := &service{
		missions: Missions(),
		rng:      rand.New(rand.NewSource(1)),
	}

	previous := s.Rotate()
	for i := 0; i < 50; i++ {
		next := s.Rotate()
		assert.NotEqual(t, previous.Mission.Name, next.Mission.Name)
		previous = next
	}
}

func TestRotateRollsTargetInRange(t *testing.T) {
	s := &service{
		missions: Missions(),
		rng:      rand.New(rand.NewSource(1)),
	}

	for i := 0; i < 50; i++ {
		rotation := s.Rotate()
		min := float64(rotation.Mission.Range[0])
		max := float64(rotation.Mission.Range[1])
		assert.GreaterOrEqual(t, rotation.Target, min)
		assert.Less(t, rotation.Target, max)
	}
}

func TestCheckProgressRecordsCompletions(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2020, 7, 1, 8, 0, 0, 0, time.UTC)
	d := &fakeDestiny{
		roster: []int64{1, 2},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{
				pvpEntry(1, "Sharp", 10),
				pvpEntry(2, "Blunt", 3),
				pvpEntry(99, "Outsider", 20),
			}},
		},
	}
	st := store.NewMemory()
	require.NoError(t, st.AddActivities(ctx, []models.ActivityRecord{pvpActivity(100, start.Add(time.Hour))}))

	s := &service{
		Destiny:  d,
		Store:    st,
		Config:   Config{GroupID: 1},
		missions: Missions(),
		rng:      rand.New(rand.NewSource(1)),
		current:  pvpRotation(start, 9),
	}

	added, err := s.CheckProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "only the clan member meeting the target completes")

	// A second check is a no-op.
	added, err = s.CheckProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestCheckProgressIgnoresActivitiesOutsideWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2020, 7, 1, 8, 0, 0, 0, time.UTC)
	d := &fakeDestiny{
		roster: []int64{1},
		reports: map[int64]*bungie.PostGameCarnageReport{
			100: {Entries: []bungie.PostGameEntry{pvpEntry(1, "Sharp", 10)}},
		},
	}
	st := store.NewMemory()
	require.NoError(t, st.AddActivities(ctx, []models.ActivityRecord{pvpActivity(100, start.Add(-time.Hour))}))

	s := &service{
		Destiny:  d,
		Store:    st,
		Config:   Config{GroupID: 1},
		missions: Missions(),
		rng:      rand.New(rand.NewSource(1)),
		current:  pvpRotation(start, 9),
	}

	added, err := s.CheckProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestCheckProgressWithoutRotation(t *testing.T) {
	s := &service{
		Store:    store.NewMemory(),
		missions: Missions(),
	}

	added, err := s.CheckProgress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestDescriptionText(t *testing.T) {
	mission := Mission{Description: "Land %AMOUNT% Final Blows against Guardians in any PvP Activity."}
	assert.Equal(t,
		"Land 9 Final Blows against Guardians in any PvP Activity.",
		mission.DescriptionText(9),
	)
}
