package bungie

import "time"

// envelope is the wrapper Bungie puts around every Platform response.
type envelope struct {
	ErrorCode   int    `json:"ErrorCode"`
	ErrorStatus string `json:"ErrorStatus"`
	Message     string `json:"Message"`
}

// ManifestInfo is the subset of Destiny2/Manifest we consume.
type ManifestInfo struct {
	Version                 string            `json:"version"`
	MobileWorldContentPaths map[string]string `json:"mobileWorldContentPaths"`
}

// Character is one character on a Destiny profile.
type Character struct {
	CharacterID    string    `json:"characterId"`
	MembershipType int       `json:"membershipType"`
	Light          int       `json:"light"`
	DateLastPlayed time.Time `json:"dateLastPlayed"`
}

type profileResponse struct {
	Characters struct {
		Data map[string]Character `json:"data"`
	} `json:"characters"`
}

// HistoricalStatsValuePair carries the raw and formatted form of a stat.
type HistoricalStatsValuePair struct {
	Value        float64 `json:"value"`
	DisplayValue string  `json:"displayValue"`
}

// HistoricalStatsValue is one statistic entry in an activity report.
type HistoricalStatsValue struct {
	Basic HistoricalStatsValuePair `json:"basic"`
}

// ActivityDetails identifies the activity an entry belongs to.
// Bungie serializes 64-bit identifiers as JSON strings.
type ActivityDetails struct {
	ReferenceID          uint32 `json:"referenceId"`
	DirectorActivityHash uint32 `json:"directorActivityHash"`
	InstanceID           int64  `json:"instanceId,string"`
	Mode                 int    `json:"mode"`
	Modes                []int  `json:"modes"`
}

// HistoricalStatsPeriodGroup is one row of a character's activity
// history: when it happened, what it was, and the reported stats.
type HistoricalStatsPeriodGroup struct {
	Period          time.Time                       `json:"period"`
	ActivityDetails ActivityDetails                 `json:"activityDetails"`
	Values          map[string]HistoricalStatsValue `json:"values"`
}

type activityHistoryResponse struct {
	Activities []HistoricalStatsPeriodGroup `json:"activities"`
}

// UserInfo identifies a Destiny account.
type UserInfo struct {
	MembershipType int    `json:"membershipType"`
	MembershipID   int64  `json:"membershipId,string"`
	DisplayName    string `json:"displayName"`
}

// Player is the player block of a carnage-report entry.
type Player struct {
	DestinyUserInfo *UserInfo `json:"destinyUserInfo"`
	CharacterClass  string    `json:"characterClass"`
	LightLevel      int       `json:"lightLevel"`
}

// WeaponStats reports per-weapon usage within one activity.
type WeaponStats struct {
	ReferenceID uint32                          `json:"referenceId"`
	Values      map[string]HistoricalStatsValue `json:"values"`
}

// PostGameEntryExtended holds the mode-specific stat tier and weapon
// breakdown of a carnage-report entry.
type PostGameEntryExtended struct {
	Values  map[string]HistoricalStatsValue `json:"values"`
	Weapons []WeaponStats                   `json:"weapons"`
}

// PostGameEntry is one participant of a post game carnage report.
type PostGameEntry struct {
	CharacterID string                          `json:"characterId"`
	Standing    int                             `json:"standing"`
	Player      Player                          `json:"player"`
	Values      map[string]HistoricalStatsValue `json:"values"`
	Extended    *PostGameEntryExtended          `json:"extended"`
}

// PostGameCarnageReport is the detailed per-player report of a single
// activity instance.
type PostGameCarnageReport struct {
	Period          time.Time       `json:"period"`
	ActivityDetails ActivityDetails `json:"activityDetails"`
	Entries         []PostGameEntry `json:"entries"`
}

// GroupMember is one clan roster row.
type GroupMember struct {
	DestinyUserInfo UserInfo `json:"destinyUserInfo"`
	IsOnline        bool     `json:"isOnline"`
	JoinDate        string   `json:"joinDate"`
}

// GroupMemberPage is one page of a clan roster.
type GroupMemberPage struct {
	Results []GroupMember `json:"results"`
	HasMore bool          `json:"hasMore"`
}
