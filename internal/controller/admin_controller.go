package controller

import (
	"strconv"

	"assesspro_backend/internal/service"
	"assesspro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

// @Summary List all users
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, limit := pagination(ctx)
	users, total, err := c.AdminService.ListUsers(page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// @Summary Enable or disable a user account
// @Tags admin
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body SetDisabledRequest true "Disabled flag"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *AdminController) SetUserDisabled(ctx *gin.Context) {
	userID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AdminService.SetUserDisabled(uint(userID), req.Disabled); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Cancel a running attempt
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/admin/attempts/{id}/cancel [post]
func (c *AdminController) CancelAttempt(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	if err := c.AdminService.CancelAttempt(uint(attemptID)); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Platform-wide statistics
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/statistics [get]
func (c *AdminController) GetStatistics(ctx *gin.Context) {
	stats, err := c.AdminService.GetStatistics()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
