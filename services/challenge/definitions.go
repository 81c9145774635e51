package challenge

import (
	"github.com/KiaArmani/NFLBot/models"
	"github.com/KiaArmani/NFLBot/services/manifest"
)

// Activity hashes referenced by the catalogue.
const (
	zeroHourHash         uint32 = 3232506937
	scourgeOfThePastHash uint32 = 548750096
	crownOfSorrowHash    uint32 = 2812525063
)

var nightfallModes = []models.ActivityMode{
	models.ModeNightfall,
	models.ModeHeroicNightfall,
	models.ModeScoredNightfall,
	models.ModeScoredHeroicNightfall,
}

// Catalogue returns the challenge set for a week. Tiers four through
// six are the heroic counterparts of one through three and stay hidden
// in listings.
func Catalogue(week int64) []Definition {
	return []Definition{
		{
			Name:        "Alright, Alright, Alright",
			Description: "Send 3 Large Blockers in a single game of Gambit and win the match.",
			Week:        week,
			Tier:        1,
			Difficulty:  models.DifficultyNormal,
			Score:       1635,
			Rules: Rules{
				Modes:      []models.ActivityMode{models.ModeGambit},
				RequireWin: true,
				Stat: &StatRule{
					Scope: models.StatExtended,
					Field: "largeBlockersSent",
					Min:   3,
				},
			},
		},
		{
			Name:        "Negative Two Hour",
			Description: "As a fireteam of two: Complete the \"Zero Hour\" Story Mission in less than 15 Minutes.",
			Week:        week,
			Tier:        2,
			Difficulty:  models.DifficultyNormal,
			Score:       2250,
			Rules: Rules{
				Modes:          []models.ActivityMode{models.ModeStory},
				DirectorHashes: []uint32{zeroHourHash},
				FireteamSize:   2,
				RequireRoster:  true,
				MaxSeconds:     900,
			},
		},
		{
			Name:        "Kinderguardian",
			Description: "Complete any Raid with one player having zero Kills and Deaths.",
			Week:        week,
			Tier:        3,
			Difficulty:  models.DifficultyNormal,
			Score:       3795,
			Rules: Rules{
				Modes:              []models.ActivityMode{models.ModeRaid},
				RequireRoster:      true,
				AnyZeroKillsDeaths: true,
			},
		},
		{
			Name:        "Sidearms Dealer",
			Description: "Get 165 or more final blows on enemies using a sidearm in a single instance of Vex Offensive.",
			Week:        week,
			Tier:        4,
			Difficulty:  models.DifficultyHeroic,
			Score:       2455,
			Hidden:      true,
			Rules: Rules{
				Modes: []models.ActivityMode{models.ModeVexOffensive},
				WeaponTypeStat: &WeaponTypeStatRule{
					WeaponType: "Sidearm",
					Field:      "uniqueWeaponKills",
					Min:        165,
				},
			},
		},
		{
			Name:        "Lightning Round",
			Description: "As a fireteam of clan members, complete this week's Nightfall: The Ordeal flawlessly in 12 minutes or less.",
			Week:        week,
			Tier:        5,
			Difficulty:  models.DifficultyHeroic,
			Score:       3679,
			Hidden:      true,
			Rules: Rules{
				Modes:         nightfallModes,
				RequireRoster: true,
				Flawless:      true,
				MaxSeconds:    720,
			},
		},
		{
			Name:        "Dressed in Blue",
			Description: "Complete the Scourge of the Past or Crown of Sorrow Raid using only Blue Weapons, with each Character Class exactly twice in the Fireteam.",
			Week:        week,
			Tier:        6,
			Difficulty:  models.DifficultyHeroic,
			Score:       6205,
			Hidden:      true,
			Rules: Rules{
				Modes:          []models.ActivityMode{models.ModeRaid},
				DirectorHashes: []uint32{scourgeOfThePastHash, crownOfSorrowHash},
				RequireRoster:  true,
				WeaponTier:     manifest.TierRare,
				Classes: map[string]int{
					"Hunter":  2,
					"Titan":   2,
					"Warlock": 2,
				},
			},
		},
	}
}
