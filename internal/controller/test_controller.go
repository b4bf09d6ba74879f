package controller

import (
	"strconv"

	"assesspro_backend/internal/service"
	"assesspro_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TestController is the creator-side authoring surface.
type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// @Summary Create a test
// @Tags tests
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body service.TestCreateRequest true "Test definition"
// @Success 201 {object} util.Response
// @Router /api/creator/tests [post]
func (c *TestController) CreateTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TestCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.CreateTest(user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// @Summary Update a test and its questions
// @Tags tests
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param request body service.TestCreateRequest true "Test definition"
// @Success 200 {object} util.Response
// @Router /api/creator/tests/{id} [put]
func (c *TestController) UpdateTest(ctx *gin.Context) {
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

	var req service.TestCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test, err := c.TestService.UpdateTest(user.UserID, uint(testID), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

type PublishRequest struct {
	Publish bool `json:"publish"`
}

// @Summary Publish or unpublish a test
// @Tags tests
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param request body PublishRequest true "Publish flag"
// @Success 200 {object} util.Response
// @Router /api/creator/tests/{id}/publish [post]
func (c *TestController) PublishTest(ctx *gin.Context) {
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

	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.TestService.PublishTest(user.UserID, uint(testID), req.Publish); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Get an owned test with questions and keys
// @Tags tests
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/creator/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
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

	test, err := c.TestService.GetTestForCreator(user.UserID, uint(testID))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// @Summary List own tests
// @Tags tests
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/creator/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	tests, total, err := c.TestService.ListByCreator(user.UserID, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}
