package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IssueFilter narrows an issue listing
type IssueFilter struct {
	ProjectID string
	PageID    string
	Status    string
}

// IssueRepository handles database operations for issues and their page links
type IssueRepository struct {
	tx *gorm.DB
}

// NewIssueRepository creates a new issue repository instance
func NewIssueRepository() *IssueRepository {
	return &IssueRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *IssueRepository) WithTx(tx *gorm.DB) *IssueRepository {
	return &IssueRepository{tx: tx}
}

// FindByID retrieves an issue with its page links
func (r *IssueRepository) FindByID(id string) (models.Issue, error) {
	var issue models.Issue
	result := conn(r.tx).Preload("PageLinks").First(&issue, "id = ?", id)
	return issue, result.Error
}

// FindByIDForUpdate retrieves an issue and locks its row until the
// surrounding transaction ends. SQLite has no row locks and ignores the clause.
func (r *IssueRepository) FindByIDForUpdate(id string) (models.Issue, error) {
	var issue models.Issue
	result := forUpdate(conn(r.tx)).Preload("PageLinks").First(&issue, "id = ?", id)
	return issue, result.Error
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Find lists issues matching the filter, newest first
func (r *IssueRepository) Find(filter IssueFilter) ([]models.Issue, error) {
	var issues []models.Issue
	db := conn(r.tx).Preload("PageLinks").Where("project_id = ?", filter.ProjectID)
	if filter.PageID != "" {
		db = db.Where("page_id = ? OR id IN (?)", filter.PageID,
			conn(r.tx).Model(&models.IssuePage{}).Select("issue_id").Where("page_id = ?", filter.PageID))
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	result := db.Order("created_at desc").Find(&issues)
	return issues, result.Error
}

// Create inserts an issue without touching its links
func (r *IssueRepository) Create(issue *models.Issue) error {
	return conn(r.tx).Omit("PageLinks").Create(issue).Error
}

// Save writes every column of an existing issue
func (r *IssueRepository) Save(issue *models.Issue) error {
	return conn(r.tx).Omit("PageLinks").Save(issue).Error
}

// AddLinks links an issue to pages, ignoring links that already exist
func (r *IssueRepository) AddLinks(issueID string, pageIDs []string) error {
	if len(pageIDs) == 0 {
		return nil
	}
	links := make([]models.IssuePage, 0, len(pageIDs))
	for _, pageID := range pageIDs {
		links = append(links, models.IssuePage{IssueID: issueID, PageID: pageID})
	}
	return conn(r.tx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

// ReplaceLinks sets the issue's page links to exactly pageIDs
func (r *IssueRepository) ReplaceLinks(issueID string, pageIDs []string) error {
	db := conn(r.tx).Where("issue_id = ?", issueID)
	if len(pageIDs) > 0 {
		db = db.Where("page_id NOT IN ?", pageIDs)
	}
	if err := db.Delete(&models.IssuePage{}).Error; err != nil {
		return err
	}
	return r.AddLinks(issueID, pageIDs)
}

// OrphanedByPage returns the IDs of issues attached to pageID, through the
// primary page or a link, that are attached to no other page
func (r *IssueRepository) OrphanedByPage(pageID string) ([]string, error) {
	var ids []string
	db := conn(r.tx)
	result := db.Model(&models.Issue{}).
		Where("page_id = ? OR id IN (?)", pageID,
			db.Model(&models.IssuePage{}).Select("issue_id").Where("page_id = ?", pageID)).
		Where("NOT EXISTS (?)",
			db.Model(&models.IssuePage{}).Select("1").
				Where("issue_pages.issue_id = issues.id AND issue_pages.page_id <> ?", pageID)).
		Where("(page_id IS NULL OR page_id = ?)", pageID).
		Pluck("id", &ids)
	return ids, result.Error
}

// RepointPrimaryPage moves the primary page of surviving issues off a deleted page
// onto one of their remaining linked pages
func (r *IssueRepository) RepointPrimaryPage(pageID string) error {
	db := conn(r.tx)
	return db.Model(&models.Issue{}).
		Where("page_id = ?", pageID).
		Update("page_id", db.Model(&models.IssuePage{}).Select("MIN(page_id)").
			Where("issue_pages.issue_id = issues.id AND issue_pages.page_id <> ?", pageID)).Error
}

// DeleteLinksForPage removes every link to a page
func (r *IssueRepository) DeleteLinksForPage(pageID string) error {
	return conn(r.tx).Where("page_id = ?", pageID).Delete(&models.IssuePage{}).Error
}

// DeleteByIDs removes the given issues and their links
func (r *IssueRepository) DeleteByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := conn(r.tx).Where("issue_id IN ?", ids).Delete(&models.IssuePage{}).Error; err != nil {
		return err
	}
	return conn(r.tx).Where("id IN ?", ids).Delete(&models.Issue{}).Error
}

// DeleteByProject removes every issue of a project and their links
func (r *IssueRepository) DeleteByProject(projectID string) error {
	db := conn(r.tx)
	if err := db.Where("issue_id IN (?)", db.Model(&models.Issue{}).Select("id").Where("project_id = ?", projectID)).
		Delete(&models.IssuePage{}).Error; err != nil {
		return err
	}
	return db.Where("project_id = ?", projectID).Delete(&models.Issue{}).Error
}

// CountByPage counts issues per page for the given project, keyed by page ID
func (r *IssueRepository) CountByPage(projectID string) (map[string]int, error) {
	type row struct {
		PageID string
		Count  int
	}
	var rows []row
	result := conn(r.tx).Model(&models.IssuePage{}).
		Select("issue_pages.page_id AS page_id, COUNT(*) AS count").
		Joins("JOIN issues ON issues.id = issue_pages.issue_id").
		Where("issues.project_id = ?", projectID).
		Group("issue_pages.page_id").
		Scan(&rows)
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.PageID] = r.Count
	}
	return counts, result.Error
}
