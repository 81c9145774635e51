package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/clients/gcp"
	"github.com/KiaArmani/NFLBot/envvars"
	"github.com/KiaArmani/NFLBot/scheduler"
	"github.com/KiaArmani/NFLBot/server"
	"github.com/KiaArmani/NFLBot/services/blitz"
	"github.com/KiaArmani/NFLBot/services/cache"
	"github.com/KiaArmani/NFLBot/services/challenge"
	"github.com/KiaArmani/NFLBot/services/destiny"
	"github.com/KiaArmani/NFLBot/services/ingest"
	"github.com/KiaArmani/NFLBot/services/leaderboard"
	"github.com/KiaArmani/NFLBot/services/manifest"
	"github.com/KiaArmani/NFLBot/services/nightfall"
	"github.com/KiaArmani/NFLBot/store"
)

const (
	manifestDir    = "./manifest"
	manifestBucket = "nflbot-manifest"
)

func main() {
	env := envvars.GetEnv()
	if envvars.IsProd(env) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := context.Background()
	firestore := gcp.CreateFirestore(ctx, env.ProjectID)
	defer firestore.Close()
	db := store.NewFirestore(firestore)

	client := bungie.NewClient(env.ApiKey)
	destinyService := destiny.NewService(client)

	activityCache := cache.NewService(db)
	if err := activityCache.Rebuild(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to build activity cache")
	}
	log.Info().Int("entries", activityCache.Size()).Msg("activity cache ready")

	bucket := ""
	if envvars.IsProd(env) {
		bucket = manifestBucket
	}
	manifestService := manifest.NewService(client, manifest.Config{
		Dir:    manifestDir,
		Bucket: bucket,
	})
	if err := manifestService.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load the content manifest")
	}
	defer manifestService.Close()
	log.Info().Str("version", manifestService.Version()).Msg("content manifest ready")

	definitions := challenge.Catalogue(env.CurrentWeek)

	ingestService := ingest.NewService(destinyService, activityCache, db, ingest.Config{
		GroupID:     env.ClanID,
		SeasonStart: env.SeasonStart,
	})
	challengeService := challenge.NewService(destinyService, manifestService, db, definitions, challenge.Config{
		GroupID: env.ClanID,
		Since:   env.SeasonStart,
	})
	nightfallService := nightfall.NewService(destinyService, manifestService, db, nightfall.Config{
		GroupID: env.ClanID,
		Since:   env.SeasonStart,
	})
	blitzService := blitz.NewService(destinyService, db, blitz.Config{
		GroupID: env.ClanID,
	})
	leaderboardService := leaderboard.NewService(db, definitions, leaderboard.Config{
		Since: env.SeasonStart,
	})

	runner := scheduler.New(
		scheduler.Task{
			Name:       "activity-sweep",
			Interval:   15 * time.Minute,
			RunAtStart: true,
			Run: func(ctx context.Context) error {
				_, err := ingestService.Sweep(ctx)
				return err
			},
		},
		scheduler.Task{
			Name:     "challenge-sweep",
			Interval: 10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := challengeService.Sweep(ctx)
				return err
			},
		},
		scheduler.Task{
			Name:     "nightfall-sweep",
			Interval: 10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := nightfallService.Sweep(ctx)
				return err
			},
		},
		scheduler.Task{
			Name:       "blitz-rotation",
			Interval:   blitz.RotationPeriod,
			RunAtStart: true,
			Run: func(ctx context.Context) error {
				rotation := blitzService.Rotate()
				log.Info().
					Str("mission", rotation.Mission.Name).
					Float64("target", rotation.Target).
					Time("end", rotation.End()).
					Msg("blitz mission rotated")
				return nil
			},
		},
		scheduler.Task{
			Name:     "blitz-progress",
			Interval: 10 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := blitzService.CheckProgress(ctx)
				return err
			},
		},
		scheduler.Task{
			Name:     "manifest-refresh",
			Interval: 24 * time.Hour,
			Run: func(ctx context.Context) error {
				return manifestService.Refresh(ctx)
			},
		},
	)
	runner.Start(ctx)
	defer runner.Stop()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		runner.Stop()
		os.Exit(0)
	}()

	srv := server.New(leaderboardService, blitzService, db, definitions)
	srv.Run("0.0.0.0:8080")
}
