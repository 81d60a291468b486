package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qatrack/dto"
	"github.com/qatrack/services"
)

// PageController handles pages and CSV page import
type PageController struct {
	pageService   *services.PageService
	importService *services.PageImportService
}

// NewPageController creates a new page controller
func NewPageController() *PageController {
	return &PageController{
		pageService:   services.NewPageService(),
		importService: services.NewPageImportService(),
	}
}

// RegisterRoutes registers page routes
func (pc *PageController) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("/:id/pages", pc.ListPages)
		projects.POST("/:id/pages", pc.CreatePage)
		projects.POST("/:id/pages/import", pc.ImportPages)
	}

	pages := router.Group("/pages")
	{
		pages.GET("/:id", pc.GetPage)
		pages.PUT("/:id", pc.UpdatePage)
		pages.DELETE("/:id", pc.DeletePage)
	}
}

// ListPages lists the pages of a project
func (pc *PageController) ListPages(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	pages, err := pc.pageService.ListPages(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, pages)
}

// GetPage retrieves one page
func (pc *PageController) GetPage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page, err := pc.pageService.GetPage(a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, page)
}

// CreatePage adds a page to a project
func (pc *PageController) CreatePage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !bind(c, &req) {
		return
	}
	page, err := pc.pageService.CreatePage(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusCreated, page)
}

// UpdatePage edits a page
func (pc *PageController) UpdatePage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !bind(c, &req) {
		return
	}
	page, err := pc.pageService.UpdatePage(a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, page)
}

// DeletePage removes a page and its dependent rows
func (pc *PageController) DeletePage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := pc.pageService.DeletePage(a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Page deleted successfully",
	})
}

// ImportPages creates pages from a CSV sent either as the multipart field
// "file" or as a text/csv body
func (pc *PageController) ImportPages(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			failure(c, http.StatusBadRequest, "A CSV file is required in the \"file\" field")
			return
		}
		file, err := header.Open()
		if err != nil {
			failure(c, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := pc.importService.ImportCSV(a, c.Param("id"), body)
	if err != nil {
		handleError(c, err)
		return
	}
	success(c, http.StatusOK, result)
}
