package models

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty of a weekly challenge.
type Difficulty string

const (
	DifficultyNormal Difficulty = "Normal"
	DifficultyHeroic Difficulty = "Heroic"
)

// ChallengeEntry records that a player finished a weekly challenge for
// the first time. At most one entry exists per (accountId, week, tier,
// difficulty); the store is only appended to after an existence check.
type ChallengeEntry struct {
	ID         string     `firestore:"id" json:"id"`
	PlayerName string     `firestore:"playerName" json:"playerName"`
	AccountID  int64      `firestore:"accountId" json:"accountId"`
	InstanceID int64      `firestore:"instanceId" json:"instanceId"`
	Week       int64      `firestore:"week" json:"week"`
	Tier       int64      `firestore:"tier" json:"tier"`
	Difficulty Difficulty `firestore:"difficulty" json:"difficulty"`
	Score      int64      `firestore:"score" json:"score"`
	RecordedAt time.Time  `firestore:"recordedAt" json:"recordedAt"`
}

// NewChallengeEntry builds an entry with a fresh document ID.
func NewChallengeEntry(playerName string, accountID, instanceID, week, tier int64, difficulty Difficulty, score int64) ChallengeEntry {
	return ChallengeEntry{
		ID:         uuid.NewString(),
		PlayerName: playerName,
		AccountID:  accountID,
		InstanceID: instanceID,
		Week:       week,
		Tier:       tier,
		Difficulty: difficulty,
		Score:      score,
		RecordedAt: time.Now().UTC(),
	}
}

// ScoreEntry is one player's result in a scored nightfall, keyed by
// (instanceId, accountId).
type ScoreEntry struct {
	ID           string    `firestore:"id" json:"id"`
	PlayerName   string    `firestore:"playerName" json:"playerName"`
	AccountID    int64     `firestore:"accountId" json:"accountId"`
	DirectorHash int64     `firestore:"directorHash" json:"directorHash"`
	InstanceID   int64     `firestore:"instanceId" json:"instanceId"`
	ActivityName string    `firestore:"activityName" json:"activityName"`
	ActivityDate time.Time `firestore:"activityDate" json:"activityDate"`
	Score        float64   `firestore:"score" json:"score"`
}

// NewScoreEntry builds a score entry with a fresh document ID.
func NewScoreEntry(playerName string, accountID, directorHash, instanceID int64, activityName string, activityDate time.Time, score float64) ScoreEntry {
	return ScoreEntry{
		ID:           uuid.NewString(),
		PlayerName:   playerName,
		AccountID:    accountID,
		DirectorHash: directorHash,
		InstanceID:   instanceID,
		ActivityName: activityName,
		ActivityDate: activityDate,
		Score:        score,
	}
}

// BlitzEntry records a finished blitz mission, keyed by
// (accountId, missionStart, mode, statField, target).
type BlitzEntry struct {
	ID           string       `firestore:"id" json:"id"`
	PlayerName   string       `firestore:"playerName" json:"playerName"`
	AccountID    int64        `firestore:"accountId" json:"accountId"`
	InstanceID   int64        `firestore:"instanceId" json:"instanceId"`
	MissionStart time.Time    `firestore:"missionStart" json:"missionStart"`
	Mode         ActivityMode `firestore:"mode" json:"mode"`
	StatField    string       `firestore:"statField" json:"statField"`
	Target       float64      `firestore:"target" json:"target"`
	Score        int64        `firestore:"score" json:"score"`
}

// NewBlitzEntry builds a blitz entry with a fresh document ID.
func NewBlitzEntry(playerName string, accountID, instanceID int64, missionStart time.Time, mode ActivityMode, statField string, target float64, score int64) BlitzEntry {
	return BlitzEntry{
		ID:           uuid.NewString(),
		PlayerName:   playerName,
		AccountID:    accountID,
		InstanceID:   instanceID,
		MissionStart: missionStart,
		Mode:         mode,
		StatField:    statField,
		Target:       target,
		Score:        score,
	}
}
