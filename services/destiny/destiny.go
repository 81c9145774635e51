// Package destiny wraps the Bungie client with the clan-level
// operations the sweeps are built on.
package destiny

import (
	"context"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/set"
)

// Service is the surface the sweeps consume. Kept narrow so tests can
// substitute a fake.
type Service interface {
	// Characters returns the characters of one account.
	Characters(ctx context.Context, membershipType int, membershipID int64) ([]bungie.Character, error)
	// ActivityHistory returns one page of a character's history, most
	// recent first.
	ActivityHistory(ctx context.Context, membershipType int, membershipID int64, characterID string, count, mode, page int) ([]bungie.HistoricalStatsPeriodGroup, error)
	// PostGameCarnageReport returns the per-player report for one
	// activity instance, nil when the upstream has none.
	PostGameCarnageReport(ctx context.Context, instanceID int64) (*bungie.PostGameCarnageReport, error)
	// ClanMembers returns the full clan roster, following pagination.
	ClanMembers(ctx context.Context, groupID int64) ([]bungie.GroupMember, error)
	// ClanMembershipIDs returns the roster as a membership id set, the
	// shape the fireteam closure checks want.
	ClanMembershipIDs(ctx context.Context, groupID int64) (*set.Set[int64], error)
}

type service struct {
	Client *bungie.Client
}

var _ Service = (*service)(nil)

// NewService wraps the given Bungie client.
func NewService(client *bungie.Client) Service {
	return &service{Client: client}
}

func (s *service) Characters(ctx context.Context, membershipType int, membershipID int64) ([]bungie.Character, error) {
	return s.Client.GetProfileCharacters(ctx, membershipType, membershipID)
}

func (s *service) ActivityHistory(ctx context.Context, membershipType int, membershipID int64, characterID string, count, mode, page int) ([]bungie.HistoricalStatsPeriodGroup, error) {
	return s.Client.GetActivityHistory(ctx, membershipType, membershipID, characterID, count, mode, page)
}

func (s *service) PostGameCarnageReport(ctx context.Context, instanceID int64) (*bungie.PostGameCarnageReport, error) {
	return s.Client.GetPostGameCarnageReport(ctx, instanceID)
}

func (s *service) ClanMembers(ctx context.Context, groupID int64) ([]bungie.GroupMember, error) {
	var members []bungie.GroupMember
	for page := 1; ; page++ {
		result, err := s.Client.GetMembersOfGroup(ctx, groupID, page)
		if err != nil {
			return nil, err
		}
		members = append(members, result.Results...)
		if !result.HasMore {
			break
		}
	}
	return members, nil
}

func (s *service) ClanMembershipIDs(ctx context.Context, groupID int64) (*set.Set[int64], error) {
	members, err := s.ClanMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := set.New[int64]()
	for _, member := range members {
		ids.Add(member.DestinyUserInfo.MembershipID)
	}
	return ids, nil
}
