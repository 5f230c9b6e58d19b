package controller

import (
	"errors"

	"school_lms_backend/internal/grading"
	"school_lms_backend/internal/model"
	"school_lms_backend/internal/repository"
	"school_lms_backend/internal/service"
	"school_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
	Storage *service.StorageService
	Users   *service.UserService
}

func NewAssessmentController(svc *service.AssessmentService, storage *service.StorageService, users *service.UserService) *AssessmentController {
	return &AssessmentController{Service: svc, Storage: storage, Users: users}
}

// @Summary Submit an assessment attempt
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubmitRequest true "submission"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "answers cannot be interpreted"
// @Failure 403 {object} util.Response "attempt limit reached"
// @Failure 404 {object} util.Response "assessment not found"
// @Router /api/assessments/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	// Caller-supplied scores are reserved for teacher-driven manual flows.
	if req.Score != nil && claims.Role == model.Student {
		req.Score = nil
	}

	result, err := c.Service.Submit(claims.UserID, req)
	if err != nil {
		var quota *util.QuotaExceededError
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.As(err, &quota):
			util.Forbidden(ctx, quota.Error())
		case errors.Is(err, grading.ErrInvalidAnswerFormat), errors.Is(err, util.ErrInvalidScore):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{
		"attemptId":   result.Attempt.ID,
		"score":       result.Score,
		"submittedAt": result.Attempt.SubmittedAt,
	})
}

// @Summary Upload speaking/writing media for a submission
// @Tags assessments
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "recording or photo"
// @Success 200 {object} util.Response
// @Router /api/assessments/media [post]
func (c *AssessmentController) UploadMedia(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	result, err := c.Storage.UploadAttemptMedia(ctx.Request.Context(), claims.UserID, file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type manualGradeRequest struct {
	Score   *int   `json:"score" binding:"required"`
	Comment string `json:"comment"`
}

// @Summary Manually grade an attempt
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "attempt id"
// @Param body body manualGradeRequest true "score and comment"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/grade [post]
func (c *AssessmentController) GradeManually(ctx *gin.Context) {
	var req manualGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Service.GradeManually(ctx.Param("id"), *req.Score, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrInvalidScore):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"attemptId": attempt.ID, "score": attempt.Score})
}

// @Summary Student's own progress across assessments
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *AssessmentController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.Service.StudentProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary Status for one assessment (attempts used, best score)
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/status [get]
func (c *AssessmentController) GetStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Service.StatusFor(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary Published assessments for the student's year and active quarter
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/assessments [get]
func (c *AssessmentController) ListForStudent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.Users.GetProfile(claims.UserID)
	if err != nil {
		util.NotFound(ctx, "")
		return
	}

	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	assessments, total, err := c.Service.ListForStudent(ctx.Request.Context(), user.Year, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// Answer keys stay server-side.
	views := make([]gin.H, len(assessments))
	for i, a := range assessments {
		views[i] = gin.H{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"type":        a.Type,
			"maxAttempts": a.MaxAttempts,
			"quarter":     a.Quarter,
		}
	}
	util.Success(ctx, util.PageResponse{List: views, Total: total, Page: page, Limit: limit})
}

// @Summary Create an assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssessmentRequest true "assessment"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.CreateAssessment(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, a)
}

// @Summary Update an assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Param body body service.AssessmentRequest true "assessment"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [put]
func (c *AssessmentController) Update(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.UpdateAssessment(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrAttemptsReferenced):
			util.Forbidden(ctx, err.Error())
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, a)
}

// @Summary Publish or unpublish an assessment
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Param publish query bool true "publish flag"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/publish [patch]
func (c *AssessmentController) Publish(ctx *gin.Context) {
	publish := ctx.Query("publish") != "false"
	a, err := c.Service.PublishAssessment(util.MustParseUint(ctx.Param("id")), publish)
	if err != nil {
		util.NotFound(ctx, "assessment not found")
		return
	}
	util.Success(ctx, a)
}

// @Summary Assessment detail with answer keys (teacher view)
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	a, err := c.Service.GetAssessment(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx, "assessment not found")
		return
	}
	util.Success(ctx, a)
}

// @Summary List assessments (teacher view)
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments [get]
func (c *AssessmentController) ListForTeacher(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	filter := repository.AssessmentFilter{
		Quarter:   ctx.Query("quarter"),
		Year:      int(util.MustParseUint(ctx.Query("year"))),
		SubjectID: util.MustParseUint(ctx.Query("subjectId")),
		Type:      ctx.Query("type"),
	}

	assessments, total, err := c.Service.ListForTeacher(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assessments, Total: total, Page: page, Limit: limit})
}

// @Summary Attempts for an assessment (teacher view)
// @Tags assessments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/attempts [get]
func (c *AssessmentController) ListAttempts(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	attempts, total, err := c.Service.AttemptsForAssessment(util.MustParseUint(ctx.Param("id")), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// @Summary Delete an assessment
// @Tags assessments
// @Security ApiKeyAuth
// @Param id path int true "assessment id"
// @Param cascade query bool false "also delete attempts and media"
// @Success 200 {object} util.Response
// @Router /api/admin/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	cascade := ctx.Query("cascade") == "true"
	err := c.Service.DeleteAssessment(ctx.Request.Context(), util.MustParseUint(ctx.Param("id")), cascade)
	if err != nil {
		if errors.Is(err, util.ErrAttemptsReferenced) {
			util.Forbidden(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Delete an attempt and its media
// @Tags assessments
// @Security ApiKeyAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/admin/attempts/{id} [delete]
func (c *AssessmentController) DeleteAttempt(ctx *gin.Context) {
	if err := c.Service.DeleteAttempt(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
