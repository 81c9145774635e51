package challenge

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/services/manifest"
	"github.com/KiaArmani/NFLBot/set"
	"github.com/KiaArmani/NFLBot/store"
)

// Config scopes one evaluation sweep.
type Config struct {
	// GroupID is the clan whose roster closes the fireteam checks.
	GroupID int64
	// Since bounds how far back recorded activities are scanned,
	// normally the start of the challenge week.
	Since time.Time
}

// Service evaluates the challenge catalogue.
type Service interface {
	// Sweep matches every definition against the recorded activities
	// and persists first-time completions. Returns how many were added.
	Sweep(ctx context.Context) (int, error)
	// Definitions returns the catalogue being evaluated.
	Definitions() []Definition
}

type service struct {
	Destiny     destiny.Service
	Manifest    manifest.Service
	Store       store.Store
	Config      Config
	definitions []Definition
}

var _ Service = (*service)(nil)

// NewService builds an evaluator over the given catalogue.
func NewService(d destiny.Service, m manifest.Service, s store.Store, definitions []Definition, config Config) Service {
	return &service{
		Destiny:     d,
		Manifest:    m,
		Store:       s,
		Config:      config,
		definitions: definitions,
	}
}

func (s *service) Definitions() []Definition {
	return s.definitions
}

func (s *service) Sweep(ctx context.Context) (int, error) {
	log.Info().Int("challenges", len(s.definitions)).Msg("challenge sweep started")

	roster, err := s.Destiny.ClanMembershipIDs(ctx, s.Config.GroupID)
	if err != nil {
		return 0, err
	}

	// Carnage reports are shared across definitions within one sweep.
	reports := make(map[int64]*bungie.PostGameCarnageReport)
	added := 0
	for _, definition := range s.definitions {
		n, err := s.evaluate(ctx, definition, roster, reports)
		if err != nil {
			log.Error().Err(err).Str("challenge", definition.Name).Msg("challenge evaluation failed")
			continue
		}
		added += n
	}

	log.Info().Int("added", added).Msg("challenge sweep done")
	return added, nil
}

func (s *service) evaluate(ctx context.Context, definition Definition, roster *set.Set[int64], reports map[int64]*bungie.PostGameCarnageReport) (int, error) {
	activities, err := s.Store.CompletedActivities(ctx, definition.Rules.Modes, s.Config.Since)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, activity := range activities {
		report, ok := reports[activity.InstanceID]
		if !ok {
			report, err = s.Destiny.PostGameCarnageReport(ctx, activity.InstanceID)
			if err != nil {
				log.Warn().Err(err).Int64("instanceId", activity.InstanceID).Msg("carnage report unavailable")
				continue
			}
			reports[activity.InstanceID] = report
		}
		if report == nil {
			continue
		}

		winners, err := s.winners(definition.Rules, report, roster)
		if err != nil {
			return added, err
		}
		for _, winner := range winners {
			n, err := s.grant(ctx, definition, winner, activity.InstanceID)
			if err != nil {
				return added, err
			}
			added += n
		}
	}
	return added, nil
}

// grant records a completion unless the account already holds one for
// this week, tier and difficulty.
func (s *service) grant(ctx context.Context, definition Definition, winner bungie.PostGameEntry, instanceID int64) (int, error) {
	accountID := winner.Player.DestinyUserInfo.MembershipID
	done, err := s.Store.HasChallenge(ctx, accountID, definition.Week, definition.Tier, definition.Difficulty)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	entry := models.NewChallengeEntry(
		winner.Player.DestinyUserInfo.DisplayName,
		accountID,
		instanceID,
		definition.Week,
		definition.Tier,
		definition.Difficulty,
		definition.Score,
	)
	if err := s.Store.AddChallenge(ctx, entry); err != nil {
		return 0, err
	}
	log.Info().
		Str("player", entry.PlayerName).
		Int64("week", definition.Week).
		Int64("tier", definition.Tier).
		Str("difficulty", string(definition.Difficulty)).
		Msg("challenge completed")
	return 1, nil
}

// winners applies the rules to one carnage report and returns the
// entries that earn the completion. An empty slice means the run did
// not qualify.
func (s *service) winners(rules Rules, report *bungie.PostGameCarnageReport, roster *set.Set[int64]) ([]bungie.PostGameEntry, error) {
	if len(rules.DirectorHashes) > 0 {
		match := false
		for _, hash := range rules.DirectorHashes {
			if report.ActivityDetails.DirectorActivityHash == hash {
				match = true
				break
			}
		}
		if !match {
			return nil, nil
		}
	}
	if rules.FireteamSize > 0 && len(report.Entries) != rules.FireteamSize {
		return nil, nil
	}

	entries := make([]bungie.PostGameEntry, 0, len(report.Entries))
	fireteam := make([]int64, 0, len(report.Entries))
	for _, entry := range report.Entries {
		if entry.Player.DestinyUserInfo == nil {
			continue
		}
		entries = append(entries, entry)
		fireteam = append(fireteam, entry.Player.DestinyUserInfo.MembershipID)
	}
	if rules.RequireRoster && !roster.ContainsAll(fireteam) {
		return nil, nil
	}

	ok, err := s.teamQualifies(rules, entries)
	if err != nil || !ok {
		return nil, err
	}

	var winners []bungie.PostGameEntry
	for _, entry := range entries {
		if !roster.Contains(entry.Player.DestinyUserInfo.MembershipID) {
			continue
		}
		qualifies, err := s.playerQualifies(rules, entry)
		if err != nil {
			return nil, err
		}
		if qualifies {
			winners = append(winners, entry)
		}
	}
	return winners, nil
}

func (s *service) teamQualifies(rules Rules, entries []bungie.PostGameEntry) (bool, error) {
	if rules.MaxSeconds > 0 {
		fastest := -1.0
		for _, entry := range entries {
			if value, ok := entry.Values["timePlayedSeconds"]; ok {
				if fastest < 0 || value.Basic.Value < fastest {
					fastest = value.Basic.Value
				}
			}
		}
		if fastest < 0 || fastest > rules.MaxSeconds {
			return false, nil
		}
	}

	if rules.Flawless {
		for _, entry := range entries {
			if value, ok := entry.Values["deaths"]; ok && value.Basic.Value > 0 {
				return false, nil
			}
		}
	}

	if rules.AnyZeroKillsDeaths {
		found := false
		for _, entry := range entries {
			deaths := entry.Values["deaths"].Basic.Value
			kills := entry.Values["kills"].Basic.Value
			if deaths == 0 && kills == 0 {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}

	if len(rules.Classes) > 0 {
		counts := make(map[string]int)
		for _, entry := range entries {
			counts[entry.Player.CharacterClass]++
		}
		for class, want := range rules.Classes {
			if counts[class] != want {
				return false, nil
			}
		}
	}

	if rules.WeaponTier != manifest.TierUnknown {
		for _, entry := range entries {
			if entry.Extended == nil {
				continue
			}
			for _, weapon := range entry.Extended.Weapons {
				tier, err := s.Manifest.WeaponTier(weapon.ReferenceID)
				if err != nil {
					return false, err
				}
				if tier != rules.WeaponTier {
					return false, nil
				}
			}
		}
	}

	return true, nil
}

func (s *service) playerQualifies(rules Rules, entry bungie.PostGameEntry) (bool, error) {
	// Standing zero is a victory; one is a defeat.
	if rules.RequireWin {
		if value, ok := entry.Values["standing"]; !ok || value.Basic.Value == 1 {
			return false, nil
		}
	}

	if rules.Stat != nil {
		var values map[string]bungie.HistoricalStatsValue
		switch rules.Stat.Scope {
		case models.StatExtended:
			if entry.Extended == nil {
				return false, nil
			}
			values = entry.Extended.Values
		default:
			values = entry.Values
		}
		value, ok := values[rules.Stat.Field]
		if !ok || value.Basic.Value < rules.Stat.Min {
			return false, nil
		}
	}

	if rules.WeaponTypeStat != nil {
		if entry.Extended == nil {
			return false, nil
		}
		var total float64
		for _, weapon := range entry.Extended.Weapons {
			weaponType, err := s.Manifest.WeaponType(weapon.ReferenceID)
			if err != nil {
				return false, err
			}
			if weaponType != rules.WeaponTypeStat.WeaponType {
				continue
			}
			if value, ok := weapon.Values[rules.WeaponTypeStat.Field]; ok {
				total += value.Basic.Value
			}
		}
		if total < rules.WeaponTypeStat.Min {
			return false, nil
		}
	}

	return true, nil
}
