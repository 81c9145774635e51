// Package nightfall turns recorded scored-nightfall runs into
// leaderboard score entries.
package nightfall

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/services/manifest"
	"github.com/KiaArmani/NFLBot/store"
)

var scoredModes = []models.ActivityMode{
	models.ModeScoredNightfall,
	models.ModeScoredHeroicNightfall,
}

// Config scopes one score sweep.
type Config struct {
	// GroupID is the clan whose roster closes the fireteam check.
	GroupID int64
	// Since bounds how far back recorded nightfalls are scanned.
	Since time.Time
}

// Service collects nightfall scores.
type Service interface {
	// Sweep scans recorded scored nightfalls and persists one score
	// entry per participant per run. Returns how many were added.
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	Destiny  destiny.Service
	Manifest manifest.Service
	Store    store.Store
	Config   Config
}

var _ Service = (*service)(nil)

// NewService builds a nightfall score sweep.
func NewService(d destiny.Service, m manifest.Service, s store.Store, config Config) Service {
	return &service{
		Destiny:  d,
		Manifest: m,
		Store:    s,
		Config:   config,
	}
}

func (s *service) Sweep(ctx context.Context) (int, error) {
	log.Info().Msg("nightfall sweep started")

	roster, err := s.Destiny.ClanMembershipIDs(ctx, s.Config.GroupID)
	if err != nil {
		return 0, err
	}

	activities, err := s.Store.CompletedActivities(ctx, scoredModes, s.Config.Since)
	if err != nil {
		return 0, err
	}

	var entries []models.ScoreEntry
	for _, activity := range activities {
		// The API reports aborted runs with a zero team score.
		score := activity.TeamScore()
		if score <= 0 {
			continue
		}

		report, err := s.Destiny.PostGameCarnageReport(ctx, activity.InstanceID)
		if err != nil {
			log.Warn().Err(err).Int64("instanceId", activity.InstanceID).Msg("carnage report unavailable")
			continue
		}
		if report == nil {
			continue
		}

		// Runs with non-clan participants stay off the board.
		validRun := true
		for _, entry := range report.Entries {
			if entry.Player.DestinyUserInfo == nil {
				continue
			}
			if !roster.Contains(entry.Player.DestinyUserInfo.MembershipID) {
				validRun = false
			}
		}
		if !validRun {
			continue
		}

		name, err := s.Manifest.NightfallName(uint32(activity.DirectorHash))
		if err != nil {
			return 0, err
		}
		if name == "" {
			continue
		}

		for _, entry := range report.Entries {
			if entry.Player.DestinyUserInfo == nil {
				continue
			}
			accountID := entry.Player.DestinyUserInfo.MembershipID
			exists, err := s.Store.HasScore(ctx, activity.InstanceID, accountID)
			if err != nil {
				return 0, err
			}
			if exists {
				continue
			}

			scoreEntry := models.NewScoreEntry(
				entry.Player.DestinyUserInfo.DisplayName,
				accountID,
				activity.DirectorHash,
				activity.InstanceID,
				name,
				activity.Period,
				score,
			)
			log.Info().
				Str("player", scoreEntry.PlayerName).
				Str("activity", name).
				Float64("score", score).
				Time("date", activity.Period).
				Msg("adding nightfall score")
			entries = append(entries, scoreEntry)
		}
	}

	if len(entries) > 0 {
		if err := s.Store.AddScores(ctx, entries); err != nil {
			return 0, err
		}
	}
	log.Info().Int("added", len(entries)).Msg("nightfall sweep done")
	return len(entries), nil
}
