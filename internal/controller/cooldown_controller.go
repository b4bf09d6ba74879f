package controller

import (
	"strconv"

	"assesspro_backend/internal/service"
	"assesspro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CooldownController manages retry-cooldown exceptions. Only the test's
// creator (or an admin, via role middleware) may grant or revoke them.
type CooldownController struct {
	CooldownService *service.CooldownService
	TestService     *service.TestService
}

func NewCooldownController(cooldownService *service.CooldownService, testService *service.TestService) *CooldownController {
	return &CooldownController{
		CooldownService: cooldownService,
		TestService:     testService,
	}
}

type CreateExceptionRequest struct {
	UserID    uint   `json:"userId" binding:"required"`
	Hours     int    `json:"hours" binding:"min=0"`
	Permanent bool   `json:"permanent"`
	Reason    string `json:"reason" binding:"max=1000"`
}

// @Summary Grant a cooldown exception
// @Tags cooldown
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param request body CreateExceptionRequest true "Exception"
// @Success 201 {object} util.Response
// @Router /api/creator/tests/{id}/cooldown-exceptions [post]
func (c *CooldownController) CreateException(ctx *gin.Context) {
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

	var req CreateExceptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// A temporary exception with no duration would be born expired.
	if !req.Permanent && req.Hours <= 0 {
		util.BadRequest(ctx, "hours must be positive for a temporary exception")
		return
	}

	if err := c.TestService.OwnsTest(user.UserID, uint(testID)); err != nil {
		util.RespondError(ctx, err)
		return
	}

	exception, err := c.CooldownService.CreateException(uint(testID), req.UserID, user.UserID, req.Hours, req.Permanent, req.Reason)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, exception)
}

// @Summary Revoke a cooldown exception
// @Tags cooldown
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Test ID"
// @Param userId path int true "Tester ID"
// @Success 200 {object} util.Response
// @Router /api/creator/tests/{id}/cooldown-exceptions/{userId} [delete]
func (c *CooldownController) RemoveException(ctx *gin.Context) {
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
	userID, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	if err := c.TestService.OwnsTest(user.UserID, uint(testID)); err != nil {
		util.RespondError(ctx, err)
		return
	}

	if err := c.CooldownService.RemoveException(uint(testID), uint(userID)); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary List cooldown exceptions for a test
// @Tags cooldown
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/creator/tests/{id}/cooldown-exceptions [get]
func (c *CooldownController) ListExceptions(ctx *gin.Context) {
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

	if err := c.TestService.OwnsTest(user.UserID, uint(testID)); err != nil {
		util.RespondError(ctx, err)
		return
	}

	exceptions, err := c.CooldownService.ListExceptions(uint(testID))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, exceptions)
}
