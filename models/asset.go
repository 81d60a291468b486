package models

import (
	"time"

	"gorm.io/gorm"
)

// AssetKind discriminates the three asset variants
type AssetKind string

const (
	AssetKindLink AssetKind = "link"
	AssetKindFile AssetKind = "file"
	AssetKindText AssetKind = "text"
)

// Asset is the physical row shared by all asset variants. Only the columns
// of its Kind are populated; services convert it to a typed variant.
type Asset struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID   string    `json:"projectId" gorm:"type:uuid;not null;index"`
	Kind        AssetKind `json:"kind" gorm:"type:varchar(10);not null"`
	Title       string    `json:"title" gorm:"not null"`
	MainURL     *string   `json:"mainUrl"`
	LinkType    *string   `json:"linkType" gorm:"type:varchar(30)"`
	FilePath    *string   `json:"filePath"`
	FileName    *string   `json:"fileName"`
	FileSize    *int64    `json:"fileSize"`
	TextContent *string   `json:"textContent" gorm:"type:text"`
	Category    *string   `json:"category" gorm:"type:varchar(50)"`
	CreatedBy   string    `json:"createdBy" gorm:"type:uuid;default:null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was provided
func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
