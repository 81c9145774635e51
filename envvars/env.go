// Package envvars loads process configuration from the environment.
// Required values abort start-up with a clear diagnostic when missing.
package envvars

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Environment variable names.
const (
	BungieToken = "NFLBOT_BUNGIETOKEN"
	ClanID      = "NFLBOT_CLANID"
	ProjectID   = "NFLBOT_PROJECTID"
	Environment = "ENVIRONMENT"
	SeasonStart = "NFLBOT_SEASONSTART"
	CurrentWeek = "NFLBOT_CURRENTWEEK"
)

const (
	ProductionEnv = "production"
	DevEnv        = "dev"

	// Season 10 start; the default tracking cutoff.
	defaultSeasonStart = "2020-06-09T18:00:00Z"
)

type Env struct {
	ApiKey      string
	ClanID      int64
	ProjectID   string
	Environment string
	SeasonStart time.Time
	CurrentWeek int64
}

// GetEnv reads and validates the process environment.
func GetEnv() Env {
	apiKey, ok := os.LookupEnv(BungieToken)
	if !ok {
		log.Fatalf("%s required", BungieToken)
	}
	clanRaw, ok := os.LookupEnv(ClanID)
	if !ok {
		log.Fatalf("%s required", ClanID)
	}
	clanID, err := strconv.ParseInt(clanRaw, 10, 64)
	if err != nil {
		log.Fatalf("%s must be a numeric group id: %v", ClanID, err)
	}
	projectID, ok := os.LookupEnv(ProjectID)
	if !ok {
		log.Fatalf("%s required", ProjectID)
	}
	environment, ok := os.LookupEnv(Environment)
	if !ok {
		environment = DevEnv
	}

	seasonRaw, ok := os.LookupEnv(SeasonStart)
	if !ok {
		seasonRaw = defaultSeasonStart
	}
	seasonStart, err := time.Parse(time.RFC3339, seasonRaw)
	if err != nil {
		log.Fatalf("%s must be RFC3339: %v", SeasonStart, err)
	}

	week := int64(1)
	if weekRaw, ok := os.LookupEnv(CurrentWeek); ok {
		week, err = strconv.ParseInt(weekRaw, 10, 64)
		if err != nil {
			log.Fatalf("%s must be numeric: %v", CurrentWeek, err)
		}
	}

	return Env{
		ApiKey:      apiKey,
		ClanID:      clanID,
		ProjectID:   projectID,
		Environment: environment,
		SeasonStart: seasonStart,
		CurrentWeek: week,
	}
}

func IsProd(e Env) bool {
	return e.Environment == ProductionEnv
}

func IsDev(e Env) bool {
	return e.Environment == DevEnv
}
