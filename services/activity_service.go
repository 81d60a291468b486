package services

import (
	"encoding/json"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity actions
const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
	ActionAssign        = "assign"
	ActionImport        = "import"
	ActionArchive       = "archive"
	ActionDuplicate     = "duplicate"
	ActionAddMember     = "team_add"
	ActionRemoveMember  = "team_remove"
	ActionRestoreMember = "team_restore"
	ActionStatus        = "status_update"
)

// ActivityService appends audit records for mutations
type ActivityService struct {
	activityRepo *repositories.ActivityRepository
}

// NewActivityService creates a new activity service instance
func NewActivityService() *ActivityService {
	return &ActivityService{activityRepo: repositories.NewActivityRepository()}
}

// Record appends an activity entry inside tx, so it commits or rolls back
// with the mutation it describes
func (s *ActivityService) Record(tx *gorm.DB, actor dto.Actor, action, entityType, entityID string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return s.activityRepo.WithTx(tx).Create(&models.ActivityLog{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON(raw),
	})
}

// History returns the most recent entries for an entity
func (s *ActivityService) History(entityType, entityID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.activityRepo.FindByEntity(entityType, entityID, limit)
}
