// Package blitz runs short rotating missions: a stat target in one
// activity mode, active for a few hours, rerolled on every rotation.
package blitz

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/store"
)

// RotationPeriod is how long one mission stays active.
const RotationPeriod = 4 * time.Hour

// Mission is one blitz mission template. The target is rolled from
// Range on every rotation.
type Mission struct {
	Name        string
	Description string
	Mode        models.ActivityMode
	Scope       models.StatScope
	StatField   string
	Range       [2]int
	Score       int64
}

// DescriptionText renders the description with the rolled target.
func (m Mission) DescriptionText(target float64) string {
	return strings.ReplaceAll(m.Description, "%AMOUNT%", fmt.Sprintf("%g", target))
}

// Missions is the rotation pool.
func Missions() []Mission {
	return []Mission{
		{
			Name:        "PvP Kills",
			Description: "Land %AMOUNT% Final Blows against Guardians in any PvP Activity.",
			Mode:        models.ModeAllPvP,
			Scope:       models.StatBasic,
			StatField:   "kills",
			Range:       [2]int{6, 12},
			Score:       825,
		},
		{
			Name:        "Strike Kills",
			Description: "Land %AMOUNT% Final Blows against Enemies in any Strike.",
			Mode:        models.ModeAllStrikes,
			Scope:       models.StatBasic,
			StatField:   "kills",
			Range:       [2]int{50, 85},
			Score:       825,
		},
		{
			Name:        "Deposit Motes",
			Description: "Deposit %AMOUNT% Motes in Gambit Prime.",
			Mode:        models.ModeGambitPrime,
			Scope:       models.StatExtended,
			StatField:   "motesDeposited",
			Range:       [2]int{10, 35},
			Score:       925,
		},
	}
}

// Rotation is one active mission with its rolled target and window.
type Rotation struct {
	Mission Mission
	Target  float64
	Start   time.Time
}

// End returns when the rotation expires.
func (r Rotation) End() time.Time {
	return r.Start.Add(RotationPeriod)
}

// Config scopes the progress checks.
type Config struct {
	GroupID int64
}

// Service rotates blitz missions and records completions.
type Service interface {
	// Current returns the active rotation, false before the first
	// Rotate.
	Current() (Rotation, bool)
	// Rotate activates a new random mission, never the same one twice
	// in a row, with a fresh target.
	Rotate() Rotation
	// CheckProgress scans recorded activities inside the active window
	// and records completions. Returns how many were added.
	CheckProgress(ctx context.Context) (int, error)
}

type service struct {
	Destiny  destiny.Service
	Store    store.Store
	Config   Config
	missions []Mission
	rng      *rand.Rand

	mu      sync.Mutex
	current *Rotation
}

var _ Service = (*service)(nil)

// NewService builds a blitz service over the default mission pool.
func NewService(d destiny.Service, s store.Store, config Config) Service {
	return &service{
		Destiny:  d,
		Store:    s,
		Config:   config,
		missions: Missions(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *service) Current() (Rotation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Rotation{}, false
	}
	return *s.current, true
}

func (s *service) Rotate() Rotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	mission := s.missions[s.rng.Intn(len(s.missions))]
	for s.current != nil && mission.Name == s.current.Mission.Name {
		mission = s.missions[s.rng.Intn(len(s.missions))]
	}
	target := float64(s.rng.Intn(mission.Range[1]-mission.Range[0]) + mission.Range[0])

	rotation := Rotation{
		Mission: mission,
		Target:  target,
		Start:   time.Now().UTC(),
	}
	s.current = &rotation
	log.Info().
		Str("mission", mission.Name).
		Str("statField", mission.StatField).
		Float64("target", target).
		Msg("new blitz mission selected")
	return rotation
}

func (s *service) CheckProgress(ctx context.Context) (int, error) {
	rotation, ok := s.Current()
	if !ok {
		return 0, nil
	}
	log.Info().Str("mission", rotation.Mission.Name).Msg("checking blitz mission progress")

	roster, err := s.Destiny.ClanMembershipIDs(ctx, s.Config.GroupID)
	if err != nil {
		return 0, err
	}

	activities, err := s.Store.ActivitiesInWindow(ctx, rotation.Mission.Mode, rotation.Start, rotation.End())
	if err != nil {
		return 0, err
	}

	added := 0
	for _, activity := range activities {
		report, err := s.Destiny.PostGameCarnageReport(ctx, activity.InstanceID)
		if err != nil {
			log.Warn().Err(err).Int64("instanceId", activity.InstanceID).Msg("carnage report unavailable")
			continue
		}
		if report == nil {
			continue
		}

		for _, entry := range report.Entries {
			if entry.Player.DestinyUserInfo == nil {
				continue
			}
			accountID := entry.Player.DestinyUserInfo.MembershipID
			if !roster.Contains(accountID) {
				continue
			}

			done, err := s.Store.HasBlitz(ctx, accountID, rotation.Start, rotation.Mission.Mode, rotation.Mission.StatField, rotation.Target)
			if err != nil {
				return added, err
			}
			if done {
				continue
			}

			var value float64
			switch rotation.Mission.Scope {
			case models.StatExtended:
				if entry.Extended == nil {
					continue
				}
				value = entry.Extended.Values[rotation.Mission.StatField].Basic.Value
			default:
				value = entry.Values[rotation.Mission.StatField].Basic.Value
			}
			if value < rotation.Target {
				continue
			}

			blitzEntry := models.NewBlitzEntry(
				entry.Player.DestinyUserInfo.DisplayName,
				accountID,
				activity.InstanceID,
				rotation.Start,
				rotation.Mission.Mode,
				rotation.Mission.StatField,
				rotation.Target,
				rotation.Mission.Score,
			)
			if err := s.Store.AddBlitz(ctx, blitzEntry); err != nil {
				return added, err
			}
			log.Info().
				Str("player", blitzEntry.PlayerName).
				Str("mission", rotation.Mission.Name).
				Float64("value", value).
				Msg("blitz mission completed")
			added++
		}
	}

	log.Info().Int("added", added).Msg("blitz mission check done")
	return added, nil
}
