package dto

// AssetRequest is the wire form of an asset. Kind selects which fields apply.
type AssetRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=link file text"`
	Title    string `json:"title" binding:"required"`
	URL      string `json:"url"`
	LinkType string `json:"linkType"`
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
	Category string `json:"category"`
}
