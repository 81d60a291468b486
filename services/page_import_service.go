package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// ImportColumns is the CSV header accepted by ImportCSV
var ImportColumns = []string{"page_name", "url", "screen_name", "project_id", "at_testers", "ft_testers", "environments", "status"}

// PageImportService creates pages in bulk from CSV
type PageImportService struct {
	pageRepo    *repositories.PageRepository
	pageEnvRepo *repositories.PageEnvironmentRepository
	envRepo     *repositories.EnvironmentRepository
	userRepo    *repositories.UserRepository
	access      projectAccess
	activity    *ActivityService
}

// NewPageImportService creates a new page import service instance
func NewPageImportService() *PageImportService {
	return &PageImportService{
		pageRepo:    repositories.NewPageRepository(),
		pageEnvRepo: repositories.NewPageEnvironmentRepository(),
		envRepo:     repositories.NewEnvironmentRepository(),
		userRepo:    repositories.NewUserRepository(),
		access:      newProjectAccess(),
		activity:    NewActivityService(),
	}
}

type importRow struct {
	line       int
	page       models.Page
	envIDs     []string
	status     models.TestingStatus
	atTesters  []string
	ftTesters  []string
}

// ImportCSV creates one page per row of r. Rows whose column count differs
// from the header are skipped whole. Every created page commits in a single
// transaction.
func (s *PageImportService) ImportCSV(actor dto.Actor, projectID string, r io.Reader) (dto.ImportResult, error) {
	result := dto.ImportResult{Skipped: []dto.ImportRowError{}}
	if _, err := s.access.require(actor, projectID, models.PermManagePages); err != nil {
		return result, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, validationError("the CSV file is empty")
	}
	if err != nil {
		return result, validationError("invalid CSV header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	if _, ok := columns["page_name"]; !ok {
		return result, validationError("the CSV header must contain a page_name column")
	}

	envs, err := s.environmentIndex()
	if err != nil {
		return result, err
	}

	var rows []importRow
	var candidates []string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Skipped = append(result.Skipped, dto.ImportRowError{Line: line, Reason: err.Error()})
			continue
		}
		if len(record) != len(header) {
			result.Skipped = append(result.Skipped, dto.ImportRowError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(header), len(record)),
			})
			continue
		}
		field := func(name string) string {
			if i, ok := columns[name]; ok {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		name := field("page_name")
		if name == "" {
			result.Skipped = append(result.Skipped, dto.ImportRowError{Line: line, Reason: "page_name is empty"})
			continue
		}
		if pid := field("project_id"); pid != "" && pid != projectID {
			result.Skipped = append(result.Skipped, dto.ImportRowError{Line: line, Reason: "row belongs to another project"})
			continue
		}

		row := importRow{
			line: line,
			page: models.Page{
				ProjectID:  projectID,
				Name:       name,
				URL:        field("url"),
				ScreenName: field("screen_name"),
				CreatedBy:  actor.UserID,
			},
			status: parseTestingStatus(field("status")),
		}
		row.atTesters = splitIDs(field("at_testers"))
		row.ftTesters = splitIDs(field("ft_testers"))
		candidates = append(append(candidates, row.atTesters...), row.ftTesters...)
		for _, ref := range splitList(field("environments")) {
			if id, ok := envs[strings.ToLower(ref)]; ok && !contains(row.envIDs, id) {
				row.envIDs = append(row.envIDs, id)
			}
		}
		rows = append(rows, row)
	}

	existing, err := s.userRepo.ExistingIDs(uniqueIDs(candidates))
	if err != nil {
		return result, fmt.Errorf("failed to check testers: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	err = transaction(func(tx *gorm.DB) error {
		pageRepo := s.pageRepo.WithTx(tx)
		pageEnvRepo := s.pageEnvRepo.WithTx(tx)
		for _, row := range rows {
			page := row.page
			page.AtTesterID = firstKnown(row.atTesters, known)
			page.FtTesterID = firstKnown(row.ftTesters, known)
			if err := pageRepo.Create(&page); err != nil {
				return fmt.Errorf("line %d: failed to create page: %w", row.line, err)
			}
			links := make([]models.PageEnvironment, 0, len(row.envIDs))
			for _, envID := range row.envIDs {
				links = append(links, models.PageEnvironment{
					PageID:        page.ID,
					EnvironmentID: envID,
					AtTesterID:    page.AtTesterID,
					FtTesterID:    page.FtTesterID,
					Status:        row.status,
				})
			}
			if err := pageEnvRepo.Upsert(links); err != nil {
				return fmt.Errorf("line %d: failed to link environments: %w", row.line, err)
			}
		}
		return s.activity.Record(tx, actor, ActionImport, "project", projectID, map[string]interface{}{
			"created": len(rows),
			"skipped": len(result.Skipped),
		})
	})
	if err != nil {
		return dto.ImportResult{Skipped: []dto.ImportRowError{}}, err
	}
	result.Created = len(rows)
	return result, nil
}

// environmentIndex maps environment IDs and lower-cased names to IDs
func (s *PageImportService) environmentIndex() (map[string]string, error) {
	envs, err := s.envRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load environments: %w", err)
	}
	index := make(map[string]string, len(envs)*2)
	for _, env := range envs {
		index[strings.ToLower(env.Name)] = env.ID
	}
	for _, env := range envs {
		index[strings.ToLower(env.ID)] = env.ID
	}
	return index, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitIDs splits a comma-separated list and keeps only well-formed IDs
func splitIDs(s string) []string {
	var out []string
	for _, part := range splitList(s) {
		if _, err := uuid.Parse(part); err == nil {
			out = append(out, part)
		}
	}
	return out
}

// firstKnown returns the first id that names an existing user
func firstKnown(ids []string, known map[string]bool) *string {
	for i := range ids {
		if known[ids[i]] {
			return &ids[i]
		}
	}
	return nil
}

func parseTestingStatus(s string) models.TestingStatus {
	ts := models.TestingStatus(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if !ts.IsValid() {
		return models.TestingNotStarted
	}
	return ts
}
