package models

import "time"

// ActivityMode mirrors Bungie's DestinyActivityModeType values for the
// modes this bot cares about.
type ActivityMode int

const (
	ModeNone                  ActivityMode = 0
	ModeStory                 ActivityMode = 2
	ModeStrike                ActivityMode = 3
	ModeRaid                  ActivityMode = 4
	ModeAllPvP                ActivityMode = 5
	ModeNightfall             ActivityMode = 16
	ModeHeroicNightfall       ActivityMode = 17
	ModeAllStrikes            ActivityMode = 18
	ModeScoredNightfall       ActivityMode = 46
	ModeScoredHeroicNightfall ActivityMode = 47
	ModeGambit                ActivityMode = 63
	ModeGambitPrime           ActivityMode = 75
	ModeVexOffensive          ActivityMode = 78
)

// StatScope selects which tier of an activity's statistics a field is
// read from. Bungie reports a flat "values" map plus an "extended"
// map with additional per-mode fields.
type StatScope int

const (
	StatBasic StatScope = iota
	StatExtended
)

// StatValue is one reported statistic. DisplayValue carries Bungie's
// formatted form, which some fields (completionReason) are matched on.
type StatValue struct {
	Value        float64 `firestore:"value" json:"value"`
	DisplayValue string  `firestore:"displayValue" json:"displayValue"`
}

// ActivityRecord is the persisted copy of one completed activity
// occurrence for one character. InstanceID is the dedup key: the same
// instance observed again must never produce a second record.
type ActivityRecord struct {
	ID                string               `firestore:"id" json:"id"`
	InstanceID        int64                `firestore:"instanceId" json:"instanceId"`
	OwnerMembershipID int64                `firestore:"ownerMembershipId" json:"ownerMembershipId"`
	PlayerName        string               `firestore:"playerName" json:"playerName"`
	Mode              ActivityMode         `firestore:"mode" json:"mode"`
	DirectorHash      int64                `firestore:"directorHash" json:"directorHash"`
	Period            time.Time            `firestore:"period" json:"period"`
	Values            map[string]StatValue `firestore:"values" json:"values"`
	Extended          map[string]StatValue `firestore:"extended" json:"extended"`
}

// Stat returns the numeric value of a statistic in the given scope.
func (r *ActivityRecord) Stat(scope StatScope, field string) (float64, bool) {
	var m map[string]StatValue
	switch scope {
	case StatExtended:
		m = r.Extended
	default:
		m = r.Values
	}
	v, ok := m[field]
	if !ok {
		return 0, false
	}
	return v.Value, true
}

// Completed reports whether the activity finished with its objective
// done, as opposed to being abandoned or failed.
func (r *ActivityRecord) Completed() bool {
	v, ok := r.Values["completionReason"]
	return ok && v.DisplayValue == "Objective Completed"
}

// TeamScore returns the reported team score, zero when absent. The API
// is known to report zero for aborted scored runs.
func (r *ActivityRecord) TeamScore() float64 {
	v, ok := r.Values["teamScore"]
	if !ok {
		return 0
	}
	return v.Value
}
