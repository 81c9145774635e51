// Package server exposes the leaderboard, challenge and blitz queries
// over HTTP for the Discord bot to consume.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/services/blitz"
	"github.com/KiaArmani/NFLBot/services/challenge"
	"github.com/KiaArmani/NFLBot/services/leaderboard"
	"github.com/KiaArmani/NFLBot/store"
)

// Server wires the query services into an HTTP API.
type Server struct {
	Leaderboard leaderboard.Service
	Blitz       blitz.Service
	Store       store.Store
	Definitions []challenge.Definition
}

// New builds a server over the given services.
func New(lb leaderboard.Service, bz blitz.Service, s store.Store, definitions []challenge.Definition) *Server {
	return &Server{
		Leaderboard: lb,
		Blitz:       bz,
		Store:       s,
		Definitions: definitions,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	quest := r.Group("/api/quest")
	quest.GET("/challenges", s.listChallenges)
	quest.GET("/challenges/:id", s.challengeStatus)
	quest.GET("/score/clan", s.clanScore)
	quest.GET("/score/:id", s.playerScore)
	quest.GET("/stats/kills", s.clanKills)

	nfl := r.Group("/api/nfl")
	nfl.GET("/scores/top/:topX", s.topOrdealScores)
	nfl.GET("/scores/position/:instanceid", s.scorePosition)

	bz := r.Group("/api/blitz")
	bz.GET("/currentmission", s.currentMission)
	bz.GET("/currentmissionend", s.currentMissionEnd)
	bz.GET("/completed/:id", s.blitzCompleted)

	return r
}

// Run serves the API until the process dies.
func (s *Server) Run(addr string) {
	srv := &http.Server{
		Handler: s.Router(),
		Addr:    addr,
	}
	log.Info().Str("addr", addr).Msg("starting HTTP server")
	log.Fatal().Err(srv.ListenAndServe()).Msg("HTTP server stopped")
}

// publicChallenge is the listing shape: hidden challenges arrive here
// already redacted, the rules never leave the process.
type publicChallenge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Week        int64  `json:"week"`
	Tier        int64  `json:"tier"`
	Difficulty  string `json:"difficulty"`
	Score       int64  `json:"score"`
	Hidden      bool   `json:"hidden"`
}

func (s *Server) listChallenges(c *gin.Context) {
	out := make([]publicChallenge, 0, len(s.Definitions))
	for _, d := range s.Definitions {
		p := d.Public()
		out = append(out, publicChallenge{
			Name:        p.Name,
			Description: p.Description,
			Week:        p.Week,
			Tier:        p.Tier,
			Difficulty:  string(p.Difficulty),
			Score:       p.Score,
			Hidden:      p.Hidden,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) challengeStatus(c *gin.Context) {
	accountID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	status, err := s.Leaderboard.ChallengeStatus(c.Request.Context(), accountID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) playerScore(c *gin.Context) {
	accountID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	score, err := s.Leaderboard.PlayerScore(c.Request.Context(), accountID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

func (s *Server) clanScore(c *gin.Context) {
	score, err := s.Leaderboard.ClanScore(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

func (s *Server) clanKills(c *gin.Context) {
	kills, err := s.Leaderboard.ClanKills(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kills": kills})
}

func (s *Server) topOrdealScores(c *gin.Context) {
	topX, ok := pathInt(c, "topX")
	if !ok {
		return
	}
	scores, err := s.Leaderboard.TopOrdealScores(c.Request.Context(), topX)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (s *Server) scorePosition(c *gin.Context) {
	instanceID, ok := pathInt64(c, "instanceid")
	if !ok {
		return
	}
	position, err := s.Leaderboard.PositionOfScore(c.Request.Context(), instanceID)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"position": position})
}

func (s *Server) currentMission(c *gin.Context) {
	rotation, ok := s.Blitz.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active mission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        rotation.Mission.Name,
		"description": rotation.Mission.DescriptionText(rotation.Target),
		"score":       rotation.Mission.Score,
		"start":       rotation.Start.Format(time.RFC3339),
		"end":         rotation.End().Format(time.RFC3339),
	})
}

func (s *Server) currentMissionEnd(c *gin.Context) {
	rotation, ok := s.Blitz.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active mission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"end": rotation.End().Format(time.RFC3339)})
}

func (s *Server) blitzCompleted(c *gin.Context) {
	accountID, ok := pathInt64(c, "id")
	if !ok {
		return
	}
	rotation, active := s.Blitz.Current()
	if !active {
		c.JSON(http.StatusOK, gin.H{"completed": false})
		return
	}
	completed, err := s.Store.HasBlitz(
		c.Request.Context(),
		accountID,
		rotation.Start,
		rotation.Mission.Mode,
		rotation.Mission.StatField,
		rotation.Target,
	)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

func pathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func pathInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func serverError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
