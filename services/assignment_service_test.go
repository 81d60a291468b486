package services

import (
	"testing"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignPage_UpsertKeepsOneRowWithLatestRoles(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	env := f.env("Staging")
	u1, u2 := f.user(models.RoleATTester), f.user(models.RoleATTester)

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{AtTesterID: &u1.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	completed := models.TestingCompleted
	_, err = svc.UpdateEnvironmentStatus(f.adminActor(), page.ID, env.ID, dto.EnvironmentStatusRequest{Status: &completed})
	require.NoError(t, err)

	_, err = svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{AtTesterID: &u2.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	rows := f.pageEnvs(page.ID)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].AtTesterID)
	assert.Equal(t, u2.ID, *rows[0].AtTesterID)
	assert.Equal(t, models.TestingCompleted, rows[0].Status, "reassignment keeps the recorded status")
}

func TestAssignPage_OverwritesDefaultsAndDropsUncheckedEnvironments(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	staging, prod := f.env("Staging"), f.env("Prod")
	at, ft, qa := f.user(models.RoleATTester), f.user(models.RoleFTTester), f.user(models.RoleQA)

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{AtTesterID: &at.ID, FtTesterID: &ft.ID, QAID: &qa.ID},
		EnvironmentIDs: []string{staging.ID, prod.ID},
	})
	require.NoError(t, err)
	require.Len(t, f.pageEnvs(page.ID), 2)

	result, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{QAID: &qa.ID},
		EnvironmentIDs: []string{staging.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.EnvironmentsRemoved)

	reloaded := f.reloadPage(page.ID)
	assert.Nil(t, reloaded.AtTesterID, "roles not supplied are nulled")
	assert.Nil(t, reloaded.FtTesterID)
	require.NotNil(t, reloaded.QAID)
	assert.Equal(t, qa.ID, *reloaded.QAID)

	rows := f.pageEnvs(page.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, staging.ID, rows[0].EnvironmentID)
}

func TestAssignPage_PerEnvironmentOverrides(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	staging, prod := f.env("Staging"), f.env("Prod")
	def, override := f.user(models.RoleATTester), f.user(models.RoleATTester)

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:          dto.RoleSet{AtTesterID: &def.ID},
		EnvironmentIDs:   []string{staging.ID, prod.ID},
		EnvironmentRoles: map[string]dto.RoleSet{prod.ID: {AtTesterID: &override.ID}},
	})
	require.NoError(t, err)

	byEnv := map[string]models.PageEnvironment{}
	for _, row := range f.pageEnvs(page.ID) {
		byEnv[row.EnvironmentID] = row
	}
	assert.Equal(t, def.ID, *byEnv[staging.ID].AtTesterID)
	assert.Equal(t, override.ID, *byEnv[prod.ID].AtTesterID)
}

func TestAssignPage_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	env := f.env("Staging")

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
			RoleSet:        dto.RoleSet{AtTesterID: ptr("6b0f7c1e-5a43-4a8e-9f59-3e8c0b7d9a11")},
			EnvironmentIDs: []string{env.ID},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
			EnvironmentIDs: []string{"6b0f7c1e-5a43-4a8e-9f59-3e8c0b7d9a11"},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("override for unselected environment", func(t *testing.T) {
		_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
			EnvironmentRoles: map[string]dto.RoleSet{env.ID: {}},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing page", func(t *testing.T) {
		_, err := svc.AssignPage(f.adminActor(), "6b0f7c1e-5a43-4a8e-9f59-3e8c0b7d9a11", dto.AssignPageRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.Empty(t, f.pageEnvs(page.ID))
}

func TestAssignPage_Permissions(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")

	tester := f.user(models.RoleATTester)
	f.member(project.ID, tester, models.TeamRoleATTester)
	_, err := svc.AssignPage(f.actor(tester), page.ID, dto.AssignPageRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	otherLead := f.user(models.RoleProjectLead)
	f.member(project.ID, otherLead, models.TeamRoleProjectLead)
	_, err = svc.AssignPage(f.actor(otherLead), page.ID, dto.AssignPageRequest{})
	assert.ErrorIs(t, err, ErrForbidden, "only the lead of the project may assign")

	lead := f.user(models.RoleProjectLead)
	require.NoError(t, f.db.Model(&project).Update("lead_id", lead.ID).Error)
	_, err = svc.AssignPage(f.actor(lead), page.ID, dto.AssignPageRequest{})
	assert.NoError(t, err)
}

func TestBulkAssign_CrossProduct(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	p1, p2 := f.page(project.ID, "P1"), f.page(project.ID, "P2")
	e1, e2 := f.env("E1"), f.env("E2")
	u2 := f.user(models.RoleQA)
	at := f.user(models.RoleATTester)
	require.NoError(t, f.db.Model(&p1).Update("at_tester_id", at.ID).Error)

	result, err := svc.BulkAssign(f.adminActor(), project.ID, dto.BulkAssignRequest{
		RoleSet:        dto.RoleSet{QAID: &u2.ID},
		PageIDs:        []string{p1.ID, p2.ID},
		EnvironmentIDs: []string{e1.ID, e2.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.EnvironmentsLinked)

	assert.Equal(t, int64(4), f.count(&models.PageEnvironment{}, ""))
	for _, pageID := range []string{p1.ID, p2.ID} {
		rows := f.pageEnvs(pageID)
		require.Len(t, rows, 2)
		for _, row := range rows {
			require.NotNil(t, row.QAID)
			assert.Equal(t, u2.ID, *row.QAID)
			assert.Nil(t, row.FtTesterID)
			if pageID == p1.ID {
				require.NotNil(t, row.AtTesterID, "new rows take the page-level tester")
				assert.Equal(t, at.ID, *row.AtTesterID)
			} else {
				assert.Nil(t, row.AtTesterID)
			}
		}
	}

	reloaded := f.reloadPage(p1.ID)
	require.NotNil(t, reloaded.AtTesterID, "page-level roles not supplied are kept")
	assert.Equal(t, at.ID, *reloaded.AtTesterID)
	assert.Equal(t, u2.ID, *reloaded.QAID)
}

func TestBulkAssign_PartialUpdateKeepsOtherEnvironmentRoles(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	env := f.env("Staging")
	at, qa := f.user(models.RoleATTester), f.user(models.RoleQA)

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{AtTesterID: &at.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	_, err = svc.BulkAssign(f.adminActor(), project.ID, dto.BulkAssignRequest{
		RoleSet:        dto.RoleSet{QAID: &qa.ID},
		PageIDs:        []string{page.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	rows := f.pageEnvs(page.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, at.ID, *rows[0].AtTesterID)
	assert.Equal(t, qa.ID, *rows[0].QAID)
}

func TestBulkAssign_RejectsForeignPagesWithoutWriting(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project, other := f.project("Portal"), f.project("Other")
	p1, foreign := f.page(project.ID, "P1"), f.page(other.ID, "X")
	env := f.env("E1")
	qa := f.user(models.RoleQA)

	_, err := svc.BulkAssign(f.adminActor(), project.ID, dto.BulkAssignRequest{
		RoleSet:        dto.RoleSet{QAID: &qa.ID},
		PageIDs:        []string{p1.ID, foreign.ID},
		EnvironmentIDs: []string{env.ID},
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.count(&models.PageEnvironment{}, ""))
	assert.Nil(t, f.reloadPage(p1.ID).QAID)
}

func TestBulkAssign_RequiresSomething(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "P1")

	_, err := svc.BulkAssign(f.adminActor(), project.ID, dto.BulkAssignRequest{PageIDs: []string{page.ID}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestQuickAssignAll_WithoutEnvironmentsTouchesOnlyDefaults(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	p1, p2 := f.page(project.ID, "P1"), f.page(project.ID, "P2")
	env := f.env("Staging")
	old, ft := f.user(models.RoleFTTester), f.user(models.RoleFTTester)

	_, err := svc.AssignPage(f.adminActor(), p1.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{FtTesterID: &old.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	result, err := svc.QuickAssignAll(f.adminActor(), project.ID, dto.QuickAssignRequest{
		RoleSet: dto.RoleSet{FtTesterID: &ft.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.PagesUpdated)
	assert.Zero(t, result.EnvironmentsLinked)

	for _, id := range []string{p1.ID, p2.ID} {
		assert.Equal(t, ft.ID, *f.reloadPage(id).FtTesterID)
	}
	rows := f.pageEnvs(p1.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, old.ID, *rows[0].FtTesterID, "environment rows are untouched")
	assert.Empty(t, f.pageEnvs(p2.ID))
}

func TestQuickAssignAll_WithEnvironments(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	f.page(project.ID, "P1")
	f.page(project.ID, "P2")
	f.page(project.ID, "P3")
	env := f.env("Staging")
	qa := f.user(models.RoleQA)

	result, err := svc.QuickAssignAll(f.adminActor(), project.ID, dto.QuickAssignRequest{
		RoleSet:        dto.RoleSet{QAID: &qa.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.EnvironmentsLinked)
	assert.Equal(t, int64(3), f.count(&models.PageEnvironment{}, "qa_id = ?", qa.ID))
}

func TestQuickAssignAll_EmptyProject(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Empty")
	qa := f.user(models.RoleQA)

	result, err := svc.QuickAssignAll(f.adminActor(), project.ID, dto.QuickAssignRequest{RoleSet: dto.RoleSet{QAID: &qa.ID}})
	require.NoError(t, err)
	assert.Zero(t, result.PagesUpdated)
}

func TestUpdateEnvironmentStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	env, unlinked := f.env("Staging"), f.env("Prod")
	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{EnvironmentIDs: []string{env.ID}})
	require.NoError(t, err)

	tester := f.user(models.RoleATTester)
	f.member(project.ID, tester, models.TeamRoleATTester)

	inFixing, na := models.TestingInFixing, models.QANA
	row, err := svc.UpdateEnvironmentStatus(f.actor(tester), page.ID, env.ID, dto.EnvironmentStatusRequest{Status: &inFixing, QAStatus: &na})
	require.NoError(t, err)
	assert.Equal(t, models.TestingInFixing, row.Status)
	assert.Equal(t, models.QANA, row.QAStatus)

	bogus := models.TestingStatus("done")
	_, err = svc.UpdateEnvironmentStatus(f.actor(tester), page.ID, env.ID, dto.EnvironmentStatusRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateEnvironmentStatus(f.actor(tester), page.ID, env.ID, dto.EnvironmentStatusRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateEnvironmentStatus(f.actor(tester), page.ID, unlinked.ID, dto.EnvironmentStatusRequest{Status: &inFixing})
	assert.ErrorIs(t, err, ErrNotFound)

	outsider := f.user(models.RoleATTester)
	_, err = svc.UpdateEnvironmentStatus(f.actor(outsider), page.ID, env.ID, dto.EnvironmentStatusRequest{Status: &inFixing})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPageStatuses_ReportsGapsAndSummary(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(status.Policy{RequireATTester: true}, nil)
	project := f.project("Portal")
	p, empty := f.page(project.ID, "P"), f.page(project.ID, "Empty")
	staging, prod := f.env("Staging"), f.env("Prod")
	u1 := f.user(models.RoleATTester)

	_, err := svc.AssignPage(f.adminActor(), p.ID, dto.AssignPageRequest{
		EnvironmentIDs:   []string{staging.ID, prod.ID},
		EnvironmentRoles: map[string]dto.RoleSet{staging.ID: {AtTesterID: &u1.ID}},
	})
	require.NoError(t, err)
	completed, qaDone := models.TestingCompleted, models.QACompleted
	_, err = svc.UpdateEnvironmentStatus(f.adminActor(), p.ID, staging.ID, dto.EnvironmentStatusRequest{Status: &completed, QAStatus: &qaDone})
	require.NoError(t, err)

	resp, err := svc.PageStatuses(f.adminActor(), project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Pages, 2)

	byID := map[string]dto.PageStatusItem{}
	for _, item := range resp.Pages {
		byID[item.PageID] = item
	}
	assert.Equal(t, string(status.TesterNotAssigned), byID[p.ID].Status)
	assert.Equal(t, "Tester Not Assigned", byID[p.ID].StatusLabel)
	assert.Equal(t, string(status.NeedAssignment), byID[empty.ID].Status)
	assert.Equal(t, 1, resp.Summary[string(status.TesterNotAssigned)])
	assert.Equal(t, 1, resp.Summary[string(status.NeedAssignment)])

	assert.Equal(t, int64(2), f.count(&models.PageSummary{}, "project_id = ?", project.ID))
}

func TestPageStatuses_PolicyFollowsTeam(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(status.Policy{RequireATTester: true, RequireQA: true}, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	env := f.env("Staging")
	ft := f.user(models.RoleFTTester)
	f.member(project.ID, ft, models.TeamRoleFTTester)

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{FtTesterID: &ft.ID},
		EnvironmentIDs: []string{env.ID},
	})
	require.NoError(t, err)

	resp, err := svc.PageStatuses(f.adminActor(), project.ID)
	require.NoError(t, err)
	require.Len(t, resp.Pages, 1)
	assert.Equal(t, string(status.NotStarted), resp.Pages[0].Status, "only the FT role is staffed on this team")
}

func TestAssignPage_RecordsActivity(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(defaultPolicy, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")

	_, err := svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{})
	require.NoError(t, err)

	history, err := NewActivityService().History("page", page.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ActionAssign, history[0].Action)
	assert.Equal(t, f.admin.ID, history[0].ActorID)
}

func TestPageSummaries_RefreshedByMutationsOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewAssignmentService(status.Policy{RequireATTester: true}, nil)
	project := f.project("Portal")
	page := f.page(project.ID, "Home")
	staging := f.env("Staging")
	u1 := f.user(models.RoleATTester)

	_, err := svc.PageStatuses(f.adminActor(), project.ID)
	require.NoError(t, err)
	assert.Zero(t, f.count(&models.PageSummary{}, "project_id = ?", project.ID), "reads leave the summaries alone")

	_, err = svc.AssignPage(f.adminActor(), page.ID, dto.AssignPageRequest{
		RoleSet:        dto.RoleSet{AtTesterID: &u1.ID},
		EnvironmentIDs: []string{staging.ID},
	})
	require.NoError(t, err)
	var stored models.PageSummary
	require.NoError(t, f.db.First(&stored, "page_id = ?", page.ID).Error)
	assert.Equal(t, string(status.NotStarted), stored.StatusLabel)

	completed := models.TestingCompleted
	_, err = svc.UpdateEnvironmentStatus(f.adminActor(), page.ID, staging.ID, dto.EnvironmentStatusRequest{Status: &completed})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&stored, "page_id = ?", page.ID).Error)
	assert.Equal(t, string(status.QAPending), stored.StatusLabel)
}
