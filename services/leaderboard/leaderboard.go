// Package leaderboard answers score and challenge queries over the
// collected entries.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/challenge"
	"github.com/KiaArmani/NFLBot/store"
)

// OrdealDifficulties are the suffixes recognized in location queries.
var OrdealDifficulties = []string{"ADEPT", "HERO", "MASTER", "LEGEND"}

func validDifficulty(difficulty string) bool {
	for _, d := range OrdealDifficulties {
		if d == difficulty {
			return true
		}
	}
	return false
}

// Config scopes the queries.
type Config struct {
	// Since bounds season-wide queries, normally the season start.
	Since time.Time
	// TeamSize is the fireteam size used by the full-team Ordeal
	// board. Zero means three.
	TeamSize int
}

// Service answers leaderboard queries.
type Service interface {
	// TopScores returns each account's best score, descending, capped
	// at topX.
	TopScores(ctx context.Context, topX int) ([]models.ScoreEntry, error)
	// TopOrdealScores returns the top Ordeal runs where the whole
	// fireteam's entries are on record, descending, capped at topX
	// runs. Each run contributes one entry per team member.
	TopOrdealScores(ctx context.Context, topX int) ([]models.ScoreEntry, error)
	// TopScoresForLocation returns each account's best score on one
	// nightfall, optionally at a specific Ordeal difficulty.
	TopScoresForLocation(ctx context.Context, location string, topX int, difficulty string) ([]models.ScoreEntry, error)
	// PlayerScores returns a player's best score per nightfall,
	// descending, optionally filtered to one location and difficulty.
	PlayerScores(ctx context.Context, playerName string, topX int, location, difficulty string) ([]models.ScoreEntry, error)
	// PositionOfScore returns the zero-based rank of an activity
	// instance on the Ordeal board, -1 when absent.
	PositionOfScore(ctx context.Context, instanceID int64) (int, error)
	// PlayerScore sums the challenge scores an account has earned.
	PlayerScore(ctx context.Context, accountID int64) (int64, error)
	// ClanScore sums the challenge scores of the whole clan.
	ClanScore(ctx context.Context) (int64, error)
	// ClanKills sums the kills of every recorded activity.
	ClanKills(ctx context.Context) (int64, error)
	// ChallengeStatus reports per challenge whether an account has
	// completed it, keyed like "tier1Normal".
	ChallengeStatus(ctx context.Context, accountID int64) (map[string]bool, error)
}

type service struct {
	Store       store.Store
	Config      Config
	definitions []challenge.Definition
}

var _ Service = (*service)(nil)

// NewService builds a query service over the given store and challenge
// catalogue.
func NewService(s store.Store, definitions []challenge.Definition, config Config) Service {
	if config.TeamSize == 0 {
		config.TeamSize = 3
	}
	return &service{
		Store:       s,
		Config:      config,
		definitions: definitions,
	}
}

func (s *service) TopScores(ctx context.Context, topX int) ([]models.ScoreEntry, error) {
	scores, err := s.Store.ScoresSince(ctx, s.Config.Since)
	if err != nil {
		return nil, err
	}
	return topPerGroup(scores, topX, func(e models.ScoreEntry) int64 { return e.AccountID }), nil
}

func (s *service) TopOrdealScores(ctx context.Context, topX int) ([]models.ScoreEntry, error) {
	scores, err := s.Store.ScoresSince(ctx, s.Config.Since)
	if err != nil {
		return nil, err
	}

	// Ordeal entries carry the difficulty suffix in their name. A full
	// run shows up once per team member with an identical score; any
	// other count means part of the team is missing from the record.
	counts := make(map[float64]int)
	for _, entry := range scores {
		if strings.Contains(entry.ActivityName, "(") {
			counts[entry.Score]++
		}
	}

	var full []models.ScoreEntry
	for _, entry := range scores {
		if strings.Contains(entry.ActivityName, "(") && counts[entry.Score] == s.Config.TeamSize {
			full = append(full, entry)
		}
	}
	sortByScoreDesc(full)
	limit := topX * s.Config.TeamSize
	if len(full) > limit {
		full = full[:limit]
	}
	return full, nil
}

func (s *service) TopScoresForLocation(ctx context.Context, location string, topX int, difficulty string) ([]models.ScoreEntry, error) {
	name := location
	if validDifficulty(difficulty) {
		name = fmt.Sprintf("%s (%s)", location, difficulty)
	}

	scores, err := s.Store.ScoresSince(ctx, s.Config.Since)
	if err != nil {
		return nil, err
	}
	var matching []models.ScoreEntry
	for _, entry := range scores {
		if entry.ActivityName == name {
			matching = append(matching, entry)
		}
	}
	return topPerGroup(matching, topX, func(e models.ScoreEntry) int64 { return e.AccountID }), nil
}

func (s *service) PlayerScores(ctx context.Context, playerName string, topX int, location, difficulty string) ([]models.ScoreEntry, error) {
	name := ""
	if location != "" && location != "ANY" {
		name = location
		if validDifficulty(difficulty) {
			name = fmt.Sprintf("%s (%s)", location, difficulty)
		}
	}

	scores, err := s.Store.ScoresSince(ctx, s.Config.Since)
	if err != nil {
		return nil, err
	}
	var matching []models.ScoreEntry
	for _, entry := range scores {
		if entry.PlayerName != playerName {
			continue
		}
		if name != "" && entry.ActivityName != name {
			continue
		}
		matching = append(matching, entry)
	}
	return topPerGroup(matching, topX, func(e models.ScoreEntry) int64 { return e.DirectorHash }), nil
}

func (s *service) PositionOfScore(ctx context.Context, instanceID int64) (int, error) {
	scores, err := s.Store.ScoresSince(ctx, s.Config.Since)
	if err != nil {
		return 0, err
	}
	var board []models.ScoreEntry
	for _, entry := range scores {
		if strings.Contains(entry.ActivityName, "(") {
			board = append(board, entry)
		}
	}
	sortByScoreDesc(board)
	for i, entry := range board {
		if entry.InstanceID == instanceID {
			return i, nil
		}
	}
	return -1, nil
}

func (s *service) PlayerScore(ctx context.Context, accountID int64) (int64, error) {
	entries, err := s.Store.ChallengesForAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return s.sumChallengeScores(entries), nil
}

func (s *service) ClanScore(ctx context.Context) (int64, error) {
	entries, err := s.Store.AllChallenges(ctx)
	if err != nil {
		return 0, err
	}
	return s.sumChallengeScores(entries), nil
}

func (s *service) ClanKills(ctx context.Context) (int64, error) {
	total, err := s.Store.TotalKills(ctx)
	if err != nil {
		return 0, err
	}
	return int64(total), nil
}

func (s *service) ChallengeStatus(ctx context.Context, accountID int64) (map[string]bool, error) {
	status := make(map[string]bool, len(s.definitions))
	for _, definition := range s.definitions {
		done, err := s.Store.HasChallenge(ctx, accountID, definition.Week, definition.Tier, definition.Difficulty)
		if err != nil {
			return nil, err
		}
		status[fmt.Sprintf("tier%d%s", definition.Tier, definition.Difficulty)] = done
	}
	return status, nil
}

// sumChallengeScores resolves every completion against the catalogue.
// The score is looked up rather than trusted from the entry so a
// corrected catalogue retroactively fixes the totals.
func (s *service) sumChallengeScores(entries []models.ChallengeEntry) int64 {
	scores := make(map[int64]int64, len(s.definitions))
	for _, definition := range s.definitions {
		scores[definition.Tier] = definition.Score
	}
	var total int64
	for _, entry := range entries {
		total += scores[entry.Tier]
	}
	return total
}

// topPerGroup keeps each group's best entries and returns the overall
// top slice, descending by score.
func topPerGroup(entries []models.ScoreEntry, topX int, groupKey func(models.ScoreEntry) int64) []models.ScoreEntry {
	best := make(map[int64]float64)
	for _, entry := range entries {
		if score, ok := best[groupKey(entry)]; !ok || entry.Score > score {
			best[groupKey(entry)] = entry.Score
		}
	}
	var top []models.ScoreEntry
	for _, entry := range entries {
		if entry.Score == best[groupKey(entry)] {
			top = append(top, entry)
		}
	}
	sortByScoreDesc(top)
	if len(top) > topX {
		top = top[:topX]
	}
	return top
}

func sortByScoreDesc(entries []models.ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
