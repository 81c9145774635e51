package bungie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL))
}

func envelopeJSON(response string) string {
	return fmt.Sprintf(`{"ErrorCode":1,"ErrorStatus":"Success","Message":"Ok","Response":%s}`, response)
}

func TestGetDestinyManifest(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Destiny2/Manifest/", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, envelopeJSON(`{
			"version": "96699.25.05.01.1200-1",
			"mobileWorldContentPaths": {"en": "/common/destiny2_content/sqlite/en/world.content"}
		}`))
	})

	info, err := client.GetDestinyManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "96699.25.05.01.1200-1", info.Version)
	assert.Equal(t, "/common/destiny2_content/sqlite/en/world.content", info.MobileWorldContentPaths["en"])
}

func TestGetActivityHistoryQueryParams(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Destiny2/3/Account/4611686018467238913/Character/2305843009301040757/Stats/Activities/", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("count"))
		assert.Equal(t, "0", r.URL.Query().Get("mode"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		fmt.Fprint(w, envelopeJSON(`{"activities": [
			{
				"period": "2026-08-20T18:00:00Z",
				"activityDetails": {"directorActivityHash": 3232506937, "instanceId": "13897934200", "mode": 46},
				"values": {"kills": {"basic": {"value": 21, "displayValue": "21"}}}
			}
		]}`))
	})

	history, err := client.GetActivityHistory(context.Background(), 3, 4611686018467238913, "2305843009301040757", 30, 0, 2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, uint32(3232506937), history[0].ActivityDetails.DirectorActivityHash)
	assert.Equal(t, int64(13897934200), history[0].ActivityDetails.InstanceID)
	assert.Equal(t, float64(21), history[0].Values["kills"].Basic.Value)
}

func TestGetActivityHistoryPrivacyError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ErrorCode":1665,"ErrorStatus":"DestinyPrivacyRestriction","Message":"This user has chosen for this data to be private."}`)
	})

	_, err := client.GetActivityHistory(context.Background(), 3, 1, "c1", 30, 0, 0)
	require.Error(t, err)

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, CodeDestinyPrivacyRestriction, be.Code)
	assert.True(t, be.PrivacyRestricted())
	assert.True(t, IsPrivacyRestricted(err))
	assert.False(t, be.SystemDisabled())
}

func TestGetPostGameCarnageReportEmpty(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Destiny2/Stats/PostGameCarnageReport/13897934200/", r.URL.Path)
		fmt.Fprint(w, envelopeJSON(`{"period": "2026-08-20T18:00:00Z", "activityDetails": {"instanceId": "13897934200"}}`))
	})

	report, err := client.GetPostGameCarnageReport(context.Background(), 13897934200)
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestGetPostGameCarnageReport(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelopeJSON(`{
			"period": "2026-08-20T18:00:00Z",
			"activityDetails": {"directorActivityHash": 548750096, "instanceId": "13897934200", "mode": 4},
			"entries": [
				{
					"characterId": "2305843009301040757",
					"standing": 0,
					"player": {
						"destinyUserInfo": {"membershipType": 3, "membershipId": "4611686018467238913", "displayName": "Kia"},
						"characterClass": "Hunter"
					},
					"values": {"kills": {"basic": {"value": 12, "displayValue": "12"}}},
					"extended": {
						"values": {"motesDeposited": {"basic": {"value": 15, "displayValue": "15"}}},
						"weapons": [{"referenceId": 3524313097, "values": {"uniqueWeaponKills": {"basic": {"value": 90, "displayValue": "90"}}}}]
					}
				}
			]
		}`))
	})

	report, err := client.GetPostGameCarnageReport(context.Background(), 13897934200)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.Equal(t, int64(4611686018467238913), entry.Player.DestinyUserInfo.MembershipID)
	assert.Equal(t, "Hunter", entry.Player.CharacterClass)
	require.NotNil(t, entry.Extended)
	assert.Equal(t, float64(15), entry.Extended.Values["motesDeposited"].Basic.Value)
	require.Len(t, entry.Extended.Weapons, 1)
	assert.Equal(t, float64(90), entry.Extended.Weapons[0].Values["uniqueWeaponKills"].Basic.Value)
}

func TestGetMembersOfGroupPaging(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/GroupV2/3916519/Members/", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("currentpage"))
		fmt.Fprint(w, envelopeJSON(`{
			"results": [
				{"destinyUserInfo": {"membershipType": 3, "membershipId": "4611686018467238913", "displayName": "Kia"}},
				{"destinyUserInfo": {"membershipType": 2, "membershipId": "4611686018429999999", "displayName": "Vex"}}
			],
			"hasMore": false
		}`))
	})

	page, err := client.GetMembersOfGroup(context.Background(), 3916519, 1)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "Kia", page.Results[0].DestinyUserInfo.DisplayName)
	assert.Equal(t, int64(4611686018429999999), page.Results[1].DestinyUserInfo.MembershipID)
}

func TestServerErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.GetDestinyManifest(context.Background())
	require.Error(t, err)
	var be *Error
	assert.False(t, errors.As(err, &be))
}
