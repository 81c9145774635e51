// Package bungie is a hand-written client for the subset of the
// Bungie.net Platform API this bot consumes. Every response arrives in
// the standard envelope; a non-success ErrorCode is surfaced as *Error.
package bungie

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://www.bungie.net/Platform"
	contentBaseURL = "https://www.bungie.net"
)

// ContentURL resolves a content path from a manifest response, which
// is rooted at bungie.net rather than the Platform API.
func ContentURL(contentPath string) string {
	return contentBaseURL + contentPath
}

// Client talks to the Bungie.net Platform API.
type Client struct {
	http *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different Platform root. Used by
// tests to target a local server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(url)
	}
}

// NewClient builds a client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	hc := resty.New()
	hc.SetBaseURL(defaultBaseURL)
	hc.SetHeader("X-API-Key", apiKey)
	hc.SetHeader("Accept", "application/json")
	hc.SetHeaders(map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   "NFLBot",
	})

	c := &Client{http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a Platform GET, unwraps the envelope, and decodes the
// Response payload into out.
func (c *Client) get(ctx context.Context, endpoint string, query map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("bungie: request %s failed: %w", endpoint, err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("bungie: %s returned status %s", endpoint, resp.Status())
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("bungie: decoding envelope from %s failed: %w", endpoint, err)
	}
	if env.ErrorCode != CodeSuccess {
		return &Error{
			Code:     env.ErrorCode,
			Status:   env.ErrorStatus,
			Message:  env.Message,
			Endpoint: endpoint,
		}
	}

	var payload struct {
		Response json.RawMessage `json:"Response"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return fmt.Errorf("bungie: decoding response from %s failed: %w", endpoint, err)
	}
	if out == nil || payload.Response == nil {
		return nil
	}
	if err := json.Unmarshal(payload.Response, out); err != nil {
		return fmt.Errorf("bungie: decoding payload from %s failed: %w", endpoint, err)
	}
	return nil
}

// GetDestinyManifest returns the current content-manifest locations.
func (c *Client) GetDestinyManifest(ctx context.Context) (*ManifestInfo, error) {
	var info ManifestInfo
	if err := c.get(ctx, "/Destiny2/Manifest/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetProfileCharacters returns the characters of the given account.
func (c *Client) GetProfileCharacters(ctx context.Context, membershipType int, membershipID int64) ([]Character, error) {
	endpoint := fmt.Sprintf("/Destiny2/%d/Profile/%d/", membershipType, membershipID)
	var profile profileResponse
	err := c.get(ctx, endpoint, map[string]string{"components": "200"}, &profile)
	if err != nil {
		return nil, err
	}
	characters := make([]Character, 0, len(profile.Characters.Data))
	for id, character := range profile.Characters.Data {
		character.CharacterID = id
		characters = append(characters, character)
	}
	return characters, nil
}

// GetActivityHistory returns one page of a character's activity
// history, most recent first.
func (c *Client) GetActivityHistory(ctx context.Context, membershipType int, membershipID int64, characterID string, count int, mode int, page int) ([]HistoricalStatsPeriodGroup, error) {
	endpoint := fmt.Sprintf(
		"/Destiny2/%d/Account/%d/Character/%s/Stats/Activities/",
		membershipType, membershipID, characterID,
	)
	var history activityHistoryResponse
	err := c.get(ctx, endpoint, map[string]string{
		"count": strconv.Itoa(count),
		"mode":  strconv.Itoa(mode),
		"page":  strconv.Itoa(page),
	}, &history)
	if err != nil {
		return nil, err
	}
	return history.Activities, nil
}

// GetPostGameCarnageReport returns the detailed per-player report of a
// single activity instance, or nil when the upstream has no entries
// for it yet.
func (c *Client) GetPostGameCarnageReport(ctx context.Context, instanceID int64) (*PostGameCarnageReport, error) {
	endpoint := fmt.Sprintf("/Destiny2/Stats/PostGameCarnageReport/%d/", instanceID)
	var report PostGameCarnageReport
	if err := c.get(ctx, endpoint, nil, &report); err != nil {
		return nil, err
	}
	if report.Entries == nil {
		return nil, nil
	}
	return &report, nil
}

// GetMembersOfGroup returns one page of a clan's roster.
func (c *Client) GetMembersOfGroup(ctx context.Context, groupID int64, page int) (*GroupMemberPage, error) {
	endpoint := fmt.Sprintf("/GroupV2/%d/Members/", groupID)
	var members GroupMemberPage
	err := c.get(ctx, endpoint, map[string]string{
		"currentpage": strconv.Itoa(page),
	}, &members)
	if err != nil {
		return nil, err
	}
	return &members, nil
}
