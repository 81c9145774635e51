package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/cache"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/set"
	"github.com/KiaArmani/NFLBot/store"
)

var seasonStart = time.Date(2020, 6, 9, 18, 0, 0, 0, time.UTC)

type fakeDestiny struct {
	members    []bungie.GroupMember
	characters map[int64][]bungie.Character
	history    map[string][]bungie.HistoricalStatsPeriodGroup
	historyErr map[string]error
}

var _ destiny.Service = (*fakeDestiny)(nil)

func (f *fakeDestiny) ClanMembers(context.Context, int64) ([]bungie.GroupMember, error) {
	return f.members, nil
}

func (f *fakeDestiny) ClanMembershipIDs(context.Context, int64) (*set.Set[int64], error) {
	panic("not used")
}

func (f *fakeDestiny) Characters(_ context.Context, _ int, membershipID int64) ([]bungie.Character, error) {
	return f.characters[membershipID], nil
}

func (f *fakeDestiny) ActivityHistory(_ context.Context, _ int, _ int64, characterID string, _, _, page int) ([]bungie.HistoricalStatsPeriodGroup, error) {
	if err := f.historyErr[characterID]; err != nil {
		return nil, err
	}
	if page > 0 {
		return nil, nil
	}
	return f.history[characterID], nil
}

func (f *fakeDestiny) PostGameCarnageReport(context.Context, int64) (*bungie.PostGameCarnageReport, error) {
	return nil, nil
}

func member(accountID int64, name string) bungie.GroupMember {
	return bungie.GroupMember{
		DestinyUserInfo: bungie.UserInfo{
			MembershipType: 3,
			MembershipID:   accountID,
			DisplayName:    name,
		},
	}
}

func historyRow(instanceID int64, period time.Time) bungie.HistoricalStatsPeriodGroup {
	return bungie.HistoricalStatsPeriodGroup{
		Period: period,
		ActivityDetails: bungie.ActivityDetails{
			InstanceID:           instanceID,
			DirectorActivityHash: 555,
			Mode:                 int(models.ModeStrike),
		},
		Values: map[string]bungie.HistoricalStatsValue{
			"kills": {Basic: bungie.HistoricalStatsValuePair{Value: 10, DisplayValue: "10"}},
		},
	}
}

func newEngine(d destiny.Service) (Service, store.Store, cache.Service) {
	s := store.NewMemory()
	c := cache.NewService(s)
	e := NewService(d, c, s, Config{GroupID: 1, SeasonStart: seasonStart})
	return e, s, c
}

func TestSweepAddsOnlyNewActivities(t *testing.T) {
	ctx := context.Background()
	after := seasonStart.Add(time.Hour)
	fake := &fakeDestiny{
		members:    []bungie.GroupMember{member(1, "Player")},
		characters: map[int64][]bungie.Character{1: {{CharacterID: "c1"}}},
		history: map[string][]bungie.HistoricalStatsPeriodGroup{
			"c1": {historyRow(10, after), historyRow(11, after), historyRow(12, after)},
		},
	}
	e, s, c := newEngine(fake)

	// Instance 10 is already on record.
	c.Insert(destiny.ActivityRecordFromHistory(historyRow(10, after), 1, "Player"))

	added, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	stored, err := s.AllActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	after := seasonStart.Add(time.Hour)
	fake := &fakeDestiny{
		members:    []bungie.GroupMember{member(1, "Player")},
		characters: map[int64][]bungie.Character{1: {{CharacterID: "c1"}}},
		history: map[string][]bungie.HistoricalStatsPeriodGroup{
			"c1": {historyRow(10, after)},
		},
	}
	e, s, _ := newEngine(fake)

	added, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "same history must not be recorded twice")

	stored, err := s.AllActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestSweepDropsPreSeasonActivity(t *testing.T) {
	ctx := context.Background()
	fake := &fakeDestiny{
		members:    []bungie.GroupMember{member(1, "Player")},
		characters: map[int64][]bungie.Character{1: {{CharacterID: "c1"}}},
		history: map[string][]bungie.HistoricalStatsPeriodGroup{
			"c1": {historyRow(10, seasonStart.Add(-time.Hour)), historyRow(11, seasonStart.Add(time.Hour))},
		},
	}
	e, s, _ := newEngine(fake)

	added, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	stored, err := s.AllActivities(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(11), stored[0].InstanceID)
}

func TestSweepIsolatesPrivateHistories(t *testing.T) {
	ctx := context.Background()
	after := seasonStart.Add(time.Hour)
	fake := &fakeDestiny{
		members: []bungie.GroupMember{member(1, "Private"), member(2, "Open")},
		characters: map[int64][]bungie.Character{
			1: {{CharacterID: "c1"}},
			2: {{CharacterID: "c2"}},
		},
		history: map[string][]bungie.HistoricalStatsPeriodGroup{
			"c2": {historyRow(20, after)},
		},
		historyErr: map[string]error{
			"c1": &bungie.Error{Code: bungie.CodeDestinyPrivacyRestriction, Status: "DestinyPrivacyRestriction"},
		},
	}
	e, s, _ := newEngine(fake)

	added, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	stored, err := s.AllActivities(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(20), stored[0].InstanceID)
}

func TestSweepRecordsSharedInstanceOnce(t *testing.T) {
	ctx := context.Background()
	after := seasonStart.Add(time.Hour)
	fake := &fakeDestiny{
		members: []bungie.GroupMember{member(1, "One"), member(2, "Two")},
		characters: map[int64][]bungie.Character{
			1: {{CharacterID: "c1"}},
			2: {{CharacterID: "c2"}},
		},
		history: map[string][]bungie.HistoricalStatsPeriodGroup{
			"c1": {historyRow(30, after)},
			"c2": {historyRow(30, after)},
		},
	}
	e, s, _ := newEngine(fake)

	added, err := e.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "a fireteam instance must be stored once")

	stored, err := s.AllActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
