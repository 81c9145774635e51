// Package ingest sweeps the clan roster's recent activity history into
// the store, deduplicated against the activity cache.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/cache"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/store"
)

// Config tunes one sweep.
type Config struct {
	// GroupID is the clan whose roster is swept.
	GroupID int64
	// PageCount and PageSize bound how far back each character's
	// history is read. Two pages of thirty cover a sweep interval with
	// plenty of slack.
	PageCount int
	PageSize  int
	// Concurrency bounds how many members are swept at once.
	Concurrency int
	// SeasonStart drops activities from before the ranking period.
	SeasonStart time.Time
	// Mode filters the history request. Zero means all modes.
	Mode int
}

func (c Config) withDefaults() Config {
	if c.PageCount == 0 {
		c.PageCount = 2
	}
	if c.PageSize == 0 {
		c.PageSize = 30
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	return c
}

// Service runs activity sweeps.
type Service interface {
	// Sweep reads every roster member's recent history and persists the
	// activities not seen before. Returns how many records were added.
	// Per-member and per-character failures are logged and skipped so
	// one private profile cannot starve the rest of the clan.
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	Destiny destiny.Service
	Cache   cache.Service
	Store   store.Store
	Config  Config
}

var _ Service = (*service)(nil)

// NewService builds a sweep engine over the given dependencies.
func NewService(d destiny.Service, c cache.Service, s store.Store, config Config) Service {
	return &service{
		Destiny: d,
		Cache:   c,
		Store:   s,
		Config:  config.withDefaults(),
	}
}

func (s *service) Sweep(ctx context.Context) (int, error) {
	log.Info().Int64("groupId", s.Config.GroupID).Msg("activity sweep started")

	members, err := s.Destiny.ClanMembers(ctx, s.Config.GroupID)
	if err != nil {
		return 0, err
	}

	var (
		mu    sync.Mutex
		batch []models.ActivityRecord
	)
	sem := make(chan struct{}, s.Config.Concurrency)
	var wg sync.WaitGroup
	for _, member := range members {
		wg.Add(1)
		sem <- struct{}{}
		go func(member bungie.GroupMember) {
			defer wg.Done()
			defer func() { <-sem }()
			records := s.sweepMember(ctx, member)
			if len(records) == 0 {
				return
			}
			mu.Lock()
			batch = append(batch, records...)
			mu.Unlock()
		}(member)
	}
	wg.Wait()

	if len(batch) > 0 {
		if err := s.Store.AddActivities(ctx, batch); err != nil {
			return 0, err
		}
	}
	log.Info().Int("members", len(members)).Int("added", len(batch)).Msg("activity sweep done")
	return len(batch), nil
}

// sweepMember reads one member's characters and their recent history.
// Failures are contained here: a member whose profile or history is
// unavailable contributes nothing.
func (s *service) sweepMember(ctx context.Context, member bungie.GroupMember) []models.ActivityRecord {
	accountID := member.DestinyUserInfo.MembershipID

	characters, err := s.Destiny.Characters(ctx, member.DestinyUserInfo.MembershipType, accountID)
	if err != nil {
		log.Warn().Err(err).Int64("accountId", accountID).Msg("skipping member, profile unavailable")
		return nil
	}

	var records []models.ActivityRecord
	for _, character := range characters {
		records = append(records, s.sweepCharacter(ctx, member, character)...)
	}
	return records
}

func (s *service) sweepCharacter(ctx context.Context, member bungie.GroupMember, character bungie.Character) []models.ActivityRecord {
	accountID := member.DestinyUserInfo.MembershipID
	playerName := member.DestinyUserInfo.DisplayName

	var records []models.ActivityRecord
	for page := 0; page < s.Config.PageCount; page++ {
		history, err := s.Destiny.ActivityHistory(
			ctx,
			member.DestinyUserInfo.MembershipType,
			accountID,
			character.CharacterID,
			s.Config.PageSize,
			s.Config.Mode,
			page,
		)
		if err != nil {
			// Players can opt their history out of the API. Their
			// scores are simply not tracked.
			if bungie.IsPrivacyRestricted(err) {
				log.Debug().Int64("accountId", accountID).Str("characterId", character.CharacterID).Msg("history is private")
			} else {
				log.Warn().Err(err).Int64("accountId", accountID).Msg("failed to read activity history")
			}
			continue
		}

		for _, activity := range history {
			if activity.Period.Before(s.Config.SeasonStart) {
				continue
			}
			existing, err := s.Cache.Lookup(ctx, activity.ActivityDetails.InstanceID)
			if err != nil {
				log.Error().Err(err).Int64("instanceId", activity.ActivityDetails.InstanceID).Msg("cache lookup failed")
				continue
			}
			if existing != nil {
				continue
			}
			record := destiny.ActivityRecordFromHistory(activity, accountID, playerName)
			if !s.Cache.Insert(record) {
				// Another character already claimed this instance
				// during the same sweep.
				continue
			}
			log.Info().
				Int64("instanceId", record.InstanceID).
				Int("mode", int(record.Mode)).
				Str("player", playerName).
				Time("period", record.Period).
				Msg("adding activity")
			records = append(records, record)
		}
	}
	return records
}
