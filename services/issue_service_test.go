package services

import (
	"testing"
	"time"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssue(t *testing.T) {
	f := newFixture(t)
	svc := NewIssueService()
	project, other := f.project("Portal"), f.project("Other")
	home, cart := f.page(project.ID, "Home"), f.page(project.ID, "Cart")
	foreign := f.page(other.ID, "X")

	issue, err := svc.CreateIssue(f.adminActor(), project.ID, dto.CreateIssueRequest{
		Title:        "Button misaligned",
		PageIDs:      []string{home.ID, cart.ID, home.ID},
		QAStatuses:   []string{"pending"},
		CustomFields: map[string]interface{}{"browser": "firefox"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusOpen, issue.Status)
	require.NotNil(t, issue.PageID)
	assert.Equal(t, home.ID, *issue.PageID, "first page is primary")
	assert.Len(t, issue.PageLinks, 2)
	assert.Equal(t, "firefox", issue.CustomFields["browser"])

	_, err = svc.CreateIssue(f.adminActor(), project.ID, dto.CreateIssueRequest{Title: "x", PageID: &foreign.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateIssue(f.adminActor(), project.ID, dto.CreateIssueRequest{Title: "x", Status: "maybe"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := svc.ListIssues(f.adminActor(), repositories.IssueFilter{ProjectID: project.ID, PageID: cart.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1, "issue is found through a secondary page")
}

func TestUpdateIssue_OptimisticConcurrency(t *testing.T) {
	f := newFixture(t)
	svc := NewIssueService()
	project := f.project("Portal")
	home, cart := f.page(project.ID, "Home"), f.page(project.ID, "Cart")
	issue, err := svc.CreateIssue(f.adminActor(), project.ID, dto.CreateIssueRequest{Title: "Broken", PageID: &home.ID})
	require.NoError(t, err)

	fixed := models.IssueStatusFixed
	updated, err := svc.UpdateIssue(f.adminActor(), issue.ID, dto.UpdateIssueRequest{
		Status:            &fixed,
		PageIDs:           []string{cart.ID},
		ExpectedUpdatedAt: issue.UpdatedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusFixed, updated.Status)
	assert.Equal(t, cart.ID, *updated.PageID, "primary page follows the new links")
	require.Len(t, updated.PageLinks, 1)

	// A second writer holding the original timestamp loses.
	title := "Stale edit"
	_, err = svc.UpdateIssue(f.adminActor(), issue.ID, dto.UpdateIssueRequest{
		Title:             &title,
		ExpectedUpdatedAt: issue.UpdatedAt,
	})
	assert.ErrorIs(t, err, ErrConflict)

	current, err := svc.GetIssue(f.adminActor(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Broken", current.Title)
}

func TestLinkPagesAndDeleteIssue(t *testing.T) {
	f := newFixture(t)
	svc := NewIssueService()
	project := f.project("Portal")
	home, cart := f.page(project.ID, "Home"), f.page(project.ID, "Cart")
	issue, err := svc.CreateIssue(f.adminActor(), project.ID, dto.CreateIssueRequest{Title: "Unplaced"})
	require.NoError(t, err)
	assert.Nil(t, issue.PageID)

	linked, err := svc.LinkPages(f.adminActor(), issue.ID, []string{cart.ID, home.ID})
	require.NoError(t, err)
	assert.Equal(t, cart.ID, *linked.PageID)
	assert.Len(t, linked.PageLinks, 2)

	_, err = svc.LinkPages(f.adminActor(), issue.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)

	client := f.user(models.RoleClient)
	f.member(project.ID, client, models.TeamRoleQA)
	assert.ErrorIs(t, svc.DeleteIssue(f.actor(client), issue.ID), ErrForbidden)

	require.NoError(t, svc.DeleteIssue(f.adminActor(), issue.ID))
	assert.Zero(t, f.count(&models.IssuePage{}, "issue_id = ?", issue.ID))
	_, err = svc.GetIssue(f.adminActor(), issue.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSameInstant(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	assert.True(t, sameInstant(base, base.Truncate(time.Microsecond)))
	assert.True(t, sameInstant(base, base.In(time.FixedZone("x", 3600))))
	assert.False(t, sameInstant(base, base.Add(time.Millisecond)))
}
