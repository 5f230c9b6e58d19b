package controller

import (
	"school_lms_backend/internal/service"
	"school_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Service *service.UserService
}

func NewUserController(svc *service.UserService) *UserController {
	return &UserController{Service: svc}
}

// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.UpdateProfileRequest true "profile fields"
// @Success 200 {object} util.Response
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.Service.UpdateProfile(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, user)
}

// @Summary List students (teacher view)
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param class query string false "class code, e.g. P4/2"
// @Param year query int false "year level"
// @Success 200 {object} util.Response
// @Router /api/teacher/students [get]
func (c *UserController) ListStudents(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	year := int(util.MustParseUint(ctx.Query("year")))

	students, total, err := c.Service.ListStudents(ctx.Query("class"), year, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: students, Total: total, Page: page, Limit: limit})
}
