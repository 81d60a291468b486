package services

import (
	"fmt"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// TimeLogService records hours worked on projects
type TimeLogService struct {
	timeLogRepo *repositories.TimeLogRepository
	teamRepo    *repositories.TeamRepository
	pageRepo    *repositories.PageRepository
	access      projectAccess
	activity    *ActivityService
}

// NewTimeLogService creates a new time log service instance
func NewTimeLogService() *TimeLogService {
	return &TimeLogService{
		timeLogRepo: repositories.NewTimeLogRepository(),
		teamRepo:    repositories.NewTeamRepository(),
		pageRepo:    repositories.NewPageRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
	}
}

// LogTime records hours by the actor against a project and optionally a page
func (s *TimeLogService) LogTime(actor dto.Actor, projectID string, req dto.TimeLogRequest) (models.TimeLog, error) {
	if _, err := s.access.require(actor, projectID, models.PermLogTime); err != nil {
		return models.TimeLog{}, err
	}
	if req.Hours <= 0 || req.Hours > 24 {
		return models.TimeLog{}, validationError("hours must be between 0 and 24")
	}
	if req.PageID != nil {
		pages, err := s.pageRepo.FindByIDsInProject(projectID, []string{*req.PageID})
		if err != nil {
			return models.TimeLog{}, fmt.Errorf("failed to load page: %w", err)
		}
		if len(pages) == 0 {
			return models.TimeLog{}, validationError("page does not belong to this project")
		}
	}
	logDate := req.LogDate
	if logDate.IsZero() {
		logDate = time.Now()
	}

	entry := models.TimeLog{
		ProjectID:   projectID,
		UserID:      actor.UserID,
		PageID:      req.PageID,
		Hours:       req.Hours,
		Description: req.Description,
		LogDate:     logDate,
	}
	err := transaction(func(tx *gorm.DB) error {
		if err := s.timeLogRepo.WithTx(tx).Create(&entry); err != nil {
			return fmt.Errorf("failed to log time: %w", err)
		}
		return s.activity.Record(tx, actor, ActionCreate, "time_log", entry.ID, map[string]interface{}{
			"project_id": projectID,
			"hours":      req.Hours,
		})
	})
	return entry, err
}

// ListTimeLogs lists the time logs of a project. Only users who manage the
// project see everyone's entries.
func (s *TimeLogService) ListTimeLogs(actor dto.Actor, projectID string) ([]models.TimeLog, error) {
	project, err := s.access.view(actor, projectID)
	if err != nil {
		return nil, err
	}
	userID := actor.UserID
	if actor.IsAdmin() || project.IsLedBy(actor.UserID) {
		userID = ""
	}
	return s.timeLogRepo.FindByProject(projectID, userID)
}

// ProjectHours compares logged hours with the project budget and team allocation
func (s *TimeLogService) ProjectHours(actor dto.Actor, projectID string) (dto.ProjectHoursResponse, error) {
	project, err := s.access.view(actor, projectID)
	if err != nil {
		return dto.ProjectHoursResponse{}, err
	}
	return projectHours(project, s.teamRepo, s.timeLogRepo)
}

func projectHours(project models.Project, teamRepo *repositories.TeamRepository, timeLogRepo *repositories.TimeLogRepository) (dto.ProjectHoursResponse, error) {
	allocated, err := teamRepo.AllocatedHours(project.ID)
	if err != nil {
		return dto.ProjectHoursResponse{}, fmt.Errorf("failed to sum allocated hours: %w", err)
	}
	byUser, err := timeLogRepo.HoursByUser(project.ID)
	if err != nil {
		return dto.ProjectHoursResponse{}, fmt.Errorf("failed to sum logged hours: %w", err)
	}
	var logged float64
	for _, h := range byUser {
		logged += h
	}
	return dto.ProjectHoursResponse{
		Budget:    project.TotalHours,
		Allocated: allocated,
		Logged:    logged,
		Remaining: project.TotalHours - logged,
		ByUser:    byUser,
	}, nil
}
