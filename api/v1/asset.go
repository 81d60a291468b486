package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/models"
	"github.com/qatrack/services"
)

// AssetController handles project assets
type AssetController struct {
	assetService *services.AssetService
}

// NewAssetController creates a new asset controller
func NewAssetController() *AssetController {
	return &AssetController{assetService: services.NewAssetService()}
}

// RegisterRoutes registers asset routes
func (ac *AssetController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/assets", ac.ListAssets)
		projects.POST("/:id/assets", ac.CreateAsset)
		projects.DELETE("/:id/assets/:assetId", ac.DeleteAsset)
	}
}

// ListAssets lists the assets of a project, optionally ?kind=link|file|text
func (ac *AssetController) ListAssets(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	assets, err := ac.assetService.ListAssets(a, c.Param("id"), models.AssetKind(c.Query("kind")))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, assets)
}

// CreateAsset stores a link, file reference or text entry
func (ac *AssetController) CreateAsset(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.AssetRequest
	if !bind(c, &req) {
		return
	}
	content, err := services.ContentFromRequest(req)
	if err != nil {
		handleError(c, err)
		return
	}
	asset, err := ac.assetService.CreateAsset(a, c.Param("id"), req.Title, content)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, asset)
}

// DeleteAsset removes an asset
func (ac *AssetController) DeleteAsset(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := ac.assetService.DeleteAsset(a, c.Param("id"), c.Param("assetId")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Asset deleted successfully",
	})
}
