package services

import (
	"time"

	"github.com/qatrack/database"
	"github.com/qatrack/logger"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"github.com/qatrack/status"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bestEffortSummaries runs fn against the optional page_summaries table inside
// a savepoint. A missing table or a failure is logged and never aborts tx.
func bestEffortSummaries(tx *gorm.DB, what string, fn func(repo *repositories.PageSummaryRepository) error) {
	if tx == nil {
		tx = database.DB
	}
	repo := repositories.NewPageSummaryRepository().WithTx(tx)
	if !repo.Available() {
		return
	}
	err := tx.Transaction(func(sp *gorm.DB) error {
		return fn(repo.WithTx(sp))
	})
	if err != nil {
		logger.L().Warn("page summary cleanup skipped", zap.String("operation", what), zap.Error(err))
	}
}

func summaryRows(projectID string, pages []models.Page, labels []status.Label, issueCounts map[string]int) []models.PageSummary {
	now := time.Now()
	rows := make([]models.PageSummary, 0, len(pages))
	for i, p := range pages {
		rows = append(rows, models.PageSummary{
			PageID:      p.ID,
			ProjectID:   projectID,
			StatusLabel: string(labels[i]),
			IssueCount:  issueCounts[p.ID],
			UpdatedAt:   now,
		})
	}
	return rows
}
