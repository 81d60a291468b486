package repositories

import (
	"github.com/qatrack/models"
	"gorm.io/gorm"
)

// AssetRepository handles database operations for project assets
type AssetRepository struct {
	tx *gorm.DB
}

// NewAssetRepository creates a new asset repository instance
func NewAssetRepository() *AssetRepository {
	return &AssetRepository{}
}

// WithTx returns a repository bound to the given transaction
func (r *AssetRepository) WithTx(tx *gorm.DB) *AssetRepository {
	return &AssetRepository{tx: tx}
}

// FindByProject lists the assets of a project, optionally of one kind
func (r *AssetRepository) FindByProject(projectID string, kind models.AssetKind) ([]models.Asset, error) {
	var assets []models.Asset
	db := conn(r.tx).Where("project_id = ?", projectID)
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	result := db.Order("created_at desc").Find(&assets)
	return assets, result.Error
}

// FindByID retrieves an asset by its ID
func (r *AssetRepository) FindByID(id string) (models.Asset, error) {
	var asset models.Asset
	result := conn(r.tx).First(&asset, "id = ?", id)
	return asset, result.Error
}

// Create inserts a new asset
func (r *AssetRepository) Create(asset *models.Asset) error {
	return conn(r.tx).Create(asset).Error
}

// Delete removes an asset
func (r *AssetRepository) Delete(id string) error {
	return conn(r.tx).Delete(&models.Asset{}, "id = ?", id).Error
}

// DeleteByProject removes every asset of a project
func (r *AssetRepository) DeleteByProject(projectID string) error {
	return conn(r.tx).Where("project_id = ?", projectID).Delete(&models.Asset{}).Error
}
