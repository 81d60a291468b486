package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/repositories"
	"gorm.io/gorm"
)

// AssetContent is one of LinkAsset, FileAsset or TextAsset
type AssetContent interface {
	Kind() models.AssetKind
	validate() error
	apply(row *models.Asset)
}

// LinkAsset is an external URL
type LinkAsset struct {
	URL      string `json:"url"`
	LinkType string `json:"linkType"`
}

// FileAsset is a stored upload. Storing the bytes is handled elsewhere.
type FileAsset struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// TextAsset is an inline text entry
type TextAsset struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (LinkAsset) Kind() models.AssetKind { return models.AssetKindLink }
func (FileAsset) Kind() models.AssetKind { return models.AssetKindFile }
func (TextAsset) Kind() models.AssetKind { return models.AssetKindText }

func (a LinkAsset) validate() error {
	u, err := url.Parse(a.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return validationError("a valid URL is required")
	}
	return nil
}

func (a FileAsset) validate() error {
	if a.Path == "" {
		return validationError("file path is required")
	}
	if a.Size < 0 {
		return validationError("file size cannot be negative")
	}
	return nil
}

func (a TextAsset) validate() error {
	if strings.TrimSpace(a.Content) == "" {
		return validationError("text content is required")
	}
	return nil
}

func (a LinkAsset) apply(row *models.Asset) {
	row.MainURL = &a.URL
	row.LinkType = optional(a.LinkType)
}

func (a FileAsset) apply(row *models.Asset) {
	row.FilePath = &a.Path
	row.FileName = optional(a.Name)
	row.FileSize = &a.Size
}

func (a TextAsset) apply(row *models.Asset) {
	row.TextContent = &a.Content
	row.Category = optional(a.Category)
}

// Asset is the application view of an asset row
type Asset struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	Kind      models.AssetKind `json:"kind"`
	Title     string           `json:"title"`
	Content   AssetContent     `json:"content"`
	CreatedBy string           `json:"createdBy"`
}

// AssetFromRow converts a physical row into its variant
func AssetFromRow(row models.Asset) (Asset, error) {
	asset := Asset{ID: row.ID, ProjectID: row.ProjectID, Kind: row.Kind, Title: row.Title, CreatedBy: row.CreatedBy}
	switch row.Kind {
	case models.AssetKindLink:
		asset.Content = LinkAsset{URL: deref(row.MainURL), LinkType: deref(row.LinkType)}
	case models.AssetKindFile:
		var size int64
		if row.FileSize != nil {
			size = *row.FileSize
		}
		asset.Content = FileAsset{Path: deref(row.FilePath), Name: deref(row.FileName), Size: size}
	case models.AssetKindText:
		asset.Content = TextAsset{Content: deref(row.TextContent), Category: deref(row.Category)}
	default:
		return Asset{}, fmt.Errorf("unknown asset kind %q", row.Kind)
	}
	return asset, nil
}

// ContentFromRequest builds the variant named by req.Kind
func ContentFromRequest(req dto.AssetRequest) (AssetContent, error) {
	switch models.AssetKind(req.Kind) {
	case models.AssetKindLink:
		return LinkAsset{URL: req.URL, LinkType: req.LinkType}, nil
	case models.AssetKindFile:
		return FileAsset{Path: req.Path, Name: req.FileName, Size: req.Size}, nil
	case models.AssetKindText:
		return TextAsset{Content: req.Content, Category: req.Category}, nil
	}
	return nil, validationError("unknown asset kind %q", req.Kind)
}

// AssetService manages project assets
type AssetService struct {
	assetRepo *repositories.AssetRepository
	access    projectAccess
	activity  *ActivityService
}

// NewAssetService creates a new asset service instance
func NewAssetService() *AssetService {
	return &AssetService{
		assetRepo: repositories.NewAssetRepository(),
		access:    newProjectAccess(),
		activity:  NewActivityService(),
	}
}

// CreateAsset stores an asset on a project
func (s *AssetService) CreateAsset(actor dto.Actor, projectID, title string, content AssetContent) (Asset, error) {
	if _, err := s.access.require(actor, projectID, models.PermManageAssets); err != nil {
		return Asset{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Asset{}, validationError("title is required")
	}
	if content == nil {
		return Asset{}, validationError("asset content is required")
	}
	if err := content.validate(); err != nil {
		return Asset{}, err
	}

	row := models.Asset{ProjectID: projectID, Kind: content.Kind(), Title: title, CreatedBy: actor.UserID}
	content.apply(&row)

	err := transaction(func(tx *gorm.DB) error {
		if err := s.assetRepo.WithTx(tx).Create(&row); err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}
		return s.activity.Record(tx, actor, ActionCreate, "asset", row.ID, map[string]interface{}{
			"project_id": projectID,
			"kind":       row.Kind,
		})
	})
	if err != nil {
		return Asset{}, err
	}
	return AssetFromRow(row)
}

// ListAssets lists the assets of a project, optionally of one kind
func (s *AssetService) ListAssets(actor dto.Actor, projectID string, kind models.AssetKind) ([]Asset, error) {
	if _, err := s.access.view(actor, projectID); err != nil {
		return nil, err
	}
	rows, err := s.assetRepo.FindByProject(projectID, kind)
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, 0, len(rows))
	for _, row := range rows {
		asset, err := AssetFromRow(row)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// DeleteAsset removes an asset
func (s *AssetService) DeleteAsset(actor dto.Actor, projectID, assetID string) error {
	row, err := s.assetRepo.FindByID(assetID)
	if err != nil {
		return notFoundOr(err, "asset")
	}
	if row.ProjectID != projectID {
		return newError(ErrNotFound, "asset not found")
	}
	if _, err := s.access.require(actor, projectID, models.PermManageAssets); err != nil {
		return err
	}
	return transaction(func(tx *gorm.DB) error {
		if err := s.assetRepo.WithTx(tx).Delete(assetID); err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
		return s.activity.Record(tx, actor, ActionDelete, "asset", assetID, nil)
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
