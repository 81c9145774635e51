// Package challenge evaluates weekly clan challenges against recorded
// activities. A challenge is data: a set of rules matched against post
// game carnage reports. Completions are first-time-only per account,
// week, tier and difficulty.
package challenge

import (
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/manifest"
)

// Definition is one weekly challenge.
type Definition struct {
	Name        string
	Description string
	Week        int64
	// Tier is unique across the week's challenges, with heroics
	// numbered after the normals.
	Tier       int64
	Difficulty models.Difficulty
	Score      int64
	// Hidden challenges are redacted in listings until completed.
	Hidden bool
	Rules  Rules
}

// Public returns the definition as shown to players. Hidden challenges
// keep their tier and score but give nothing else away.
func (d Definition) Public() Definition {
	if !d.Hidden {
		return d
	}
	redacted := d
	redacted.Name = "???"
	redacted.Description = "REDACTED"
	redacted.Rules = Rules{}
	return redacted
}

// StatRule requires a minimum on one of a player's reported stats.
type StatRule struct {
	Scope models.StatScope
	Field string
	Min   float64
}

// WeaponTypeStatRule requires a minimum summed over the weapons of one
// type a player used, like 165 sidearm kills.
type WeaponTypeStatRule struct {
	WeaponType string
	Field      string
	Min        float64
}

// Rules is the declarative shape of a challenge. Team rules disqualify
// the whole run; player rules select which fireteam members earn the
// completion. A run with no player rules grants every roster member in
// the fireteam.
type Rules struct {
	// Modes selects which recorded activities are scanned.
	Modes []models.ActivityMode
	// DirectorHashes restricts the run to specific activities, like a
	// particular mission or raid.
	DirectorHashes []uint32
	// FireteamSize requires an exact number of participants. Zero
	// means any size.
	FireteamSize int
	// RequireRoster disqualifies runs with non-clan participants.
	RequireRoster bool
	// MaxSeconds caps the fastest reported timePlayedSeconds. Zero
	// means no time limit.
	MaxSeconds float64
	// Flawless disqualifies the run if anyone died.
	Flawless bool
	// AnyZeroKillsDeaths requires at least one participant to finish
	// with zero kills and zero deaths.
	AnyZeroKillsDeaths bool
	// Classes requires an exact class composition, like two of each.
	Classes map[string]int
	// WeaponTier requires every weapon used by everyone to be of the
	// given quality tier.
	WeaponTier manifest.TierType

	// RequireWin grants only players whose standing is a victory.
	RequireWin bool
	// Stat grants only players meeting a stat threshold.
	Stat *StatRule
	// WeaponTypeStat grants only players meeting a per-weapon-type
	// threshold.
	WeaponTypeStat *WeaponTypeStatRule
}
