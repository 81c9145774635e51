// Package manifest serves static Destiny definitions out of Bungie's
// mobile world content database, a SQLite file shipped inside a zip.
// Definition hashes arrive as unsigned 32-bit values but the database
// keys them as signed 32-bit integers, so every lookup reinterprets
// the hash bits before querying.
package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/KiaArmani/NFLBot/clients/bungie"
)

// TierType mirrors Bungie's item quality tiers.
type TierType int

const (
	TierUnknown  TierType = 0
	TierCurrency TierType = 1
	TierBasic    TierType = 2
	TierCommon   TierType = 3
	TierRare     TierType = 4
	TierSuperior TierType = 5
	TierExotic   TierType = 6
)

// DisplayProperties is the name and description of a definition. The
// zero value means the hash is unknown to the manifest.
type DisplayProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Service answers definition lookups against the current manifest.
type Service interface {
	// Init downloads and opens the current manifest database. It must
	// succeed before any lookup is made.
	Init(ctx context.Context) error
	// Refresh re-downloads the database when Bungie reports a newer
	// version. A no-op when the loaded version is current.
	Refresh(ctx context.Context) error
	// Version returns the loaded manifest version, empty before Init.
	Version() string
	// ActivityDisplay returns the display properties for an activity
	// hash. Unknown hashes yield the zero value, not an error.
	ActivityDisplay(hash uint32) (DisplayProperties, error)
	// NightfallName normalizes an activity's name for the leaderboard.
	// Returns "" for activities that should not be scored, such as the
	// quest variants Bungie files under the nightfall modes.
	NightfallName(hash uint32) (string, error)
	// WeaponTier returns the quality tier of an inventory item hash.
	WeaponTier(hash uint32) (TierType, error)
	// WeaponType returns the item type display name, like "Pulse Rifle".
	WeaponType(hash uint32) (string, error)
	Close() error
}

// Config controls where the manifest database comes from and where the
// downloaded copy is kept.
type Config struct {
	// Dir is the working directory for the zip and extracted database.
	Dir string
	// Bucket, when set, mirrors the downloaded zip to cloud storage so
	// restarts in production do not depend on Bungie being up.
	Bucket string
}

type service struct {
	Client *bungie.Client
	Config Config

	mu      sync.RWMutex
	db      *sql.DB
	version string
}

var _ Service = (*service)(nil)

// NewService returns an uninitialized manifest service.
func NewService(client *bungie.Client, config Config) Service {
	return &service{
		Client: client,
		Config: config,
	}
}

func (s *service) Init(ctx context.Context) error {
	info, err := s.Client.GetDestinyManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to get manifest information: %w", err)
	}
	return s.load(ctx, info)
}

func (s *service) Refresh(ctx context.Context) error {
	info, err := s.Client.GetDestinyManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to get manifest information: %w", err)
	}
	s.mu.RLock()
	current := s.version
	s.mu.RUnlock()
	if current == info.Version {
		log.Info().Str("version", current).Msg("manifest already current")
		return nil
	}
	log.Info().Str("from", current).Str("to", info.Version).Msg("updating manifest")
	return s.load(ctx, info)
}

func (s *service) load(ctx context.Context, info *bungie.ManifestInfo) error {
	contentPath, ok := info.MobileWorldContentPaths["en"]
	if !ok {
		return errors.New("manifest has no english world content")
	}

	dbPath, err := fetchWorldContent(ctx, s.Client, contentPath, s.Config)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open manifest database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("manifest database unreadable: %w", err)
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.version = info.Version
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	log.Info().Str("version", info.Version).Str("path", dbPath).Msg("manifest database loaded")
	return nil
}

func (s *service) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// definitionJSON reads the raw definition blob for a hash out of the
// given table. Returns nil when the hash is not present.
func (s *service) definitionJSON(table string, hash uint32) ([]byte, error) {
	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return nil, errors.New("manifest not initialized")
	}

	signed := int32(hash)
	row := db.QueryRow("SELECT json FROM "+table+" WHERE id = ?", signed)

	var blob []byte
	err := row.Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

type activityDefinition struct {
	DisplayProperties DisplayProperties `json:"displayProperties"`
}

type itemDefinition struct {
	Inventory struct {
		TierType *TierType `json:"tierType"`
	} `json:"inventory"`
	ItemTypeDisplayName string `json:"itemTypeDisplayName"`
}

func (s *service) ActivityDisplay(hash uint32) (DisplayProperties, error) {
	blob, err := s.definitionJSON("DestinyActivityDefinition", hash)
	if err != nil {
		return DisplayProperties{}, err
	}
	if blob == nil {
		return DisplayProperties{}, nil
	}
	var def activityDefinition
	if err := json.Unmarshal(blob, &def); err != nil {
		return DisplayProperties{}, fmt.Errorf("bad activity definition for hash %d: %w", hash, err)
	}
	return def.DisplayProperties, nil
}

// Bungie's naming scheme got inconsistent with Ordeals, so strip the
// mode prefixes down to the strike name the leaderboard is keyed on.
func (s *service) NightfallName(hash uint32) (string, error) {
	display, err := s.ActivityDisplay(hash)
	if err != nil {
		return "", err
	}
	if display.Name == "" {
		return "", nil
	}
	if strings.Contains(display.Name, "QUEST") {
		return "", nil
	}
	if strings.Contains(display.Name, "Nightfall: The Ordeal") {
		_, suffix, _ := strings.Cut(display.Name, "Ordeal: ")
		return fmt.Sprintf("%s (%s)", display.Description, strings.ToUpper(suffix)), nil
	}
	return strings.TrimPrefix(display.Name, "Nightfall: "), nil
}

func (s *service) WeaponTier(hash uint32) (TierType, error) {
	blob, err := s.definitionJSON("DestinyInventoryItemDefinition", hash)
	if err != nil {
		return TierUnknown, err
	}
	if blob == nil {
		return TierUnknown, nil
	}
	var def itemDefinition
	if err := json.Unmarshal(blob, &def); err != nil {
		return TierUnknown, fmt.Errorf("bad item definition for hash %d: %w", hash, err)
	}
	if def.Inventory.TierType == nil {
		return TierUnknown, nil
	}
	return *def.Inventory.TierType, nil
}

func (s *service) WeaponType(hash uint32) (string, error) {
	blob, err := s.definitionJSON("DestinyInventoryItemDefinition", hash)
	if err != nil {
		return "", err
	}
	if blob == nil {
		return "", nil
	}
	var def itemDefinition
	if err := json.Unmarshal(blob, &def); err != nil {
		return "", fmt.Errorf("bad item definition for hash %d: %w", hash, err)
	}
	return def.ItemTypeDisplayName, nil
}
