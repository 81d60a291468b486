package services

import (
	"testing"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssets(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService()
	project := f.project("Portal")

	link, err := svc.CreateAsset(f.adminActor(), project.ID, "Figma", LinkAsset{URL: "https://figma.example/file", LinkType: "design"})
	require.NoError(t, err)
	assert.Equal(t, models.AssetKindLink, link.Kind)
	assert.Equal(t, LinkAsset{URL: "https://figma.example/file", LinkType: "design"}, link.Content)

	_, err = svc.CreateAsset(f.adminActor(), project.ID, "Test plan", FileAsset{Path: "uploads/test-plan.pdf", Name: "test-plan.pdf", Size: 2048})
	require.NoError(t, err)
	_, err = svc.CreateAsset(f.adminActor(), project.ID, "Login", TextAsset{Content: "user / pass", Category: "credentials"})
	require.NoError(t, err)

	all, err := svc.ListAssets(f.adminActor(), project.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	files, err := svc.ListAssets(f.adminActor(), project.ID, models.AssetKindFile)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, FileAsset{Path: "uploads/test-plan.pdf", Name: "test-plan.pdf", Size: 2048}, files[0].Content)

	require.NoError(t, svc.DeleteAsset(f.adminActor(), project.ID, link.ID))
	assert.ErrorIs(t, svc.DeleteAsset(f.adminActor(), project.ID, link.ID), ErrNotFound)
}

func TestAssets_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService()
	project, other := f.project("Portal"), f.project("Other")

	for name, content := range map[string]AssetContent{
		"relative url": LinkAsset{URL: "/docs"},
		"no path":      FileAsset{Name: "a.txt"},
		"blank text":   TextAsset{Content: "  "},
		"none":         nil,
	} {
		_, err := svc.CreateAsset(f.adminActor(), project.ID, "x", content)
		assert.ErrorIs(t, err, ErrValidation, name)
	}

	_, err := svc.CreateAsset(f.adminActor(), project.ID, " ", TextAsset{Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	tester := f.user(models.RoleATTester)
	f.member(project.ID, tester, models.TeamRoleATTester)
	_, err = svc.CreateAsset(f.actor(tester), project.ID, "x", TextAsset{Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	asset, err := svc.CreateAsset(f.adminActor(), project.ID, "x", TextAsset{Content: "x"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteAsset(f.adminActor(), other.ID, asset.ID), ErrNotFound)
}

func TestContentFromRequest(t *testing.T) {
	content, err := ContentFromRequest(dto.AssetRequest{Kind: "text", Content: "hello", Category: "notes"})
	require.NoError(t, err)
	assert.Equal(t, TextAsset{Content: "hello", Category: "notes"}, content)

	_, err = ContentFromRequest(dto.AssetRequest{Kind: "video"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = AssetFromRow(models.Asset{Kind: "video"})
	assert.Error(t, err)
}
