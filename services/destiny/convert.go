package destiny

import (
	"github.com/google/uuid"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/models"
)

// ActivityRecordFromHistory flattens one activity-history row into the
// persisted record shape, stamping the owning account onto it.
func ActivityRecordFromHistory(group bungie.HistoricalStatsPeriodGroup, ownerID int64, playerName string) models.ActivityRecord {
	values := make(map[string]models.StatValue, len(group.Values))
	for field, value := range group.Values {
		values[field] = models.StatValue{
			Value:        value.Basic.Value,
			DisplayValue: value.Basic.DisplayValue,
		}
	}
	return models.ActivityRecord{
		ID:                uuid.NewString(),
		InstanceID:        group.ActivityDetails.InstanceID,
		OwnerMembershipID: ownerID,
		PlayerName:        playerName,
		Mode:              models.ActivityMode(group.ActivityDetails.Mode),
		DirectorHash:      int64(group.ActivityDetails.DirectorActivityHash),
		Period:            group.Period,
		Values:            values,
	}
}
