package controller

import (
	"strconv"

	"assesspro_backend/internal/service"
	"assesspro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AttemptController exposes the tester-facing attempt lifecycle. The tester
// identity always comes from the authenticated claims and is passed into the
// service explicitly.
type AttemptController struct {
	PassingService *service.TestPassingService
}

func NewAttemptController(passingService *service.TestPassingService) *AttemptController {
	return &AttemptController{PassingService: passingService}
}

type SubmitAnswerRequest struct {
	QuestionID     uint  `json:"questionId" binding:"required"`
	ChosenOptionID *uint `json:"chosenOptionId"`
}

// @Summary Start or resume an attempt
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id}/start [post]
func (c *AttemptController) Start(ctx *gin.Context) {
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

	view, err := c.PassingService.Start(uint(testID), user.Username)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary Submit or change an answer
// @Tags attempts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param request body SubmitAnswerRequest true "Answer"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.PassingService.SubmitAnswer(uint(attemptID), user.Username, req.QuestionID, req.ChosenOptionID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Finish an attempt
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/finish [post]
func (c *AttemptController) Finish(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	results, err := c.PassingService.Finish(uint(attemptID), user.Username)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// @Summary Attempt results, partial or final
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/results [get]
func (c *AttemptController) GetResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	results, err := c.PassingService.GetResults(uint(attemptID), user.Username)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// @Summary Attempt history, most recent first
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/attempts/history [get]
func (c *AttemptController) GetHistory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	summaries, total, err := c.PassingService.GetHistory(user.Username, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: summaries, Total: total, Page: page, Limit: limit})
}

// @Summary Tester attempt statistics
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/attempts/statistics [get]
func (c *AttemptController) GetStatistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.PassingService.GetUserStatistics(user.Username)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

func pagination(ctx *gin.Context) (page, limit int) {
	page = 1
	limit = 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
