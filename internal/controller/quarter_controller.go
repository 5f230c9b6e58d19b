package controller

import (
	"errors"

	"school_lms_backend/internal/service"
	"school_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuarterController struct {
	Service *service.QuarterService
}

func NewQuarterController(svc *service.QuarterService) *QuarterController {
	return &QuarterController{Service: svc}
}

// @Summary Current active quarter
// @Tags config
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/config/active-quarter [get]
func (c *QuarterController) GetActive(ctx *gin.Context) {
	quarter, err := c.Service.GetActive(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"activeQuarter": quarter})
}

type setQuarterRequest struct {
	Quarter string `json:"quarter" binding:"required"`
}

// @Summary Set the active quarter
// @Tags config
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body setQuarterRequest true "quarter, one of Q1-Q4"
// @Success 200 {object} util.Response
// @Router /api/admin/config/active-quarter [put]
func (c *QuarterController) SetActive(ctx *gin.Context) {
	var req setQuarterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SetActive(ctx.Request.Context(), req.Quarter); err != nil {
		if errors.Is(err, util.ErrInvalidQuarter) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"activeQuarter": req.Quarter})
}
