package controller

import (
	"strconv"
	"time"

	"assesspro_backend/internal/service"
	"assesspro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController serves the tester-facing listing of published tests,
// including per-test cooldown availability.
type CatalogController struct {
	TestService     *service.TestService
	CooldownService *service.CooldownService
}

func NewCatalogController(testService *service.TestService, cooldownService *service.CooldownService) *CatalogController {
	return &CatalogController{
		TestService:     testService,
		CooldownService: cooldownService,
	}
}

// @Summary List published tests
// @Tags catalog
// @Security ApiKeyAuth
// @Produce json
// @Param category query int false "Category ID"
// @Param search query string false "Title search"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/catalog/tests [get]
func (c *CatalogController) ListTests(ctx *gin.Context) {
	page, limit := pagination(ctx)

	categoryID := 0
	if v := ctx.Query("category"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			categoryID = parsed
		}
	}

	tests, total, err := c.TestService.ListPublished(ctx.Request.Context(), uint(categoryID), ctx.Query("search"), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}

// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/catalog/categories [get]
func (c *CatalogController) ListCategories(ctx *gin.Context) {
	categories, err := c.TestService.ListCategories()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// @Summary Cooldown status for a test
// @Tags catalog
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/catalog/tests/{id}/cooldown [get]
func (c *CatalogController) CooldownStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	testID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid test id")
		return
	}

	test, err := c.TestService.FindPublished(uint(testID))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	now := time.Now()
	status, err := c.CooldownService.CooldownStatus(test, user.UserID, now)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	nextAvailable, err := c.CooldownService.NextAvailableTime(test, user.UserID, now)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"status":          status,
		"nextAvailableAt": nextAvailable,
	})
}
