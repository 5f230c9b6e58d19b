package controller

import (
	"school_lms_backend/internal/repository"
	"school_lms_backend/internal/service"
	"school_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	Service *service.ContentService
	Storage *service.StorageService
	Users   *service.UserService
}

func NewContentController(svc *service.ContentService, storage *service.StorageService, users *service.UserService) *ContentController {
	return &ContentController{Service: svc, Storage: storage, Users: users}
}

// @Summary Create a subject
// @Tags content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubjectRequest true "subject"
// @Success 201 {object} util.Response
// @Router /api/teacher/subjects [post]
func (c *ContentController) CreateSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.CreateSubject(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, subject)
}

// @Summary List subjects
// @Tags content
// @Produce json
// @Security ApiKeyAuth
// @Param year query int false "year level"
// @Success 200 {object} util.Response
// @Router /api/subjects [get]
func (c *ContentController) ListSubjects(ctx *gin.Context) {
	year := int(util.MustParseUint(ctx.Query("year")))
	subjects, err := c.Service.ListSubjects(year)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subjects)
}

// @Summary Subject detail with topic tree
// @Tags content
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "subject id"
// @Success 200 {object} util.Response
// @Router /api/subjects/{id} [get]
func (c *ContentController) GetSubject(ctx *gin.Context) {
	subject, err := c.Service.GetSubject(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx, "subject not found")
		return
	}
	util.Success(ctx, subject)
}

// @Summary Update a subject
// @Tags content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "subject id"
// @Param body body service.SubjectRequest true "subject"
// @Success 200 {object} util.Response
// @Router /api/teacher/subjects/{id} [put]
func (c *ContentController) UpdateSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.UpdateSubject(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.NotFound(ctx, "subject not found")
		return
	}
	util.Success(ctx, subject)
}

// @Summary Delete a subject
// @Tags content
// @Security ApiKeyAuth
// @Param id path int true "subject id"
// @Success 200 {object} util.Response
// @Router /api/teacher/subjects/{id} [delete]
func (c *ContentController) DeleteSubject(ctx *gin.Context) {
	if err := c.Service.DeleteSubject(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Create a topic
// @Tags content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.TopicRequest true "topic"
// @Success 201 {object} util.Response
// @Router /api/teacher/topics [post]
func (c *ContentController) CreateTopic(ctx *gin.Context) {
	var req service.TopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	topic, err := c.Service.CreateTopic(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, topic)
}

// @Summary Delete a topic
// @Tags content
// @Security ApiKeyAuth
// @Param id path int true "topic id"
// @Success 200 {object} util.Response
// @Router /api/teacher/topics/{id} [delete]
func (c *ContentController) DeleteTopic(ctx *gin.Context) {
	if err := c.Service.DeleteTopic(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Create a subtopic
// @Tags content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubtopicRequest true "subtopic"
// @Success 201 {object} util.Response
// @Router /api/teacher/subtopics [post]
func (c *ContentController) CreateSubtopic(ctx *gin.Context) {
	var req service.SubtopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subtopic, err := c.Service.CreateSubtopic(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, subtopic)
}

// @Summary Create a resource
// @Tags content
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ResourceRequest true "resource"
// @Success 201 {object} util.Response
// @Router /api/teacher/resources [post]
func (c *ContentController) CreateResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.Service.CreateResource(claims.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, resource)
}

// @Summary Upload a resource file
// @Tags content
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "file"
// @Success 200 {object} util.Response
// @Router /api/teacher/resources/upload [post]
func (c *ContentController) UploadResourceFile(ctx *gin.Context) {
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

	result, err := c.Storage.UploadResourceFile(ctx.Request.Context(), claims.UserID, file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary Publish or unpublish a resource
// @Tags content
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "resource id"
// @Param publish query bool true "publish flag"
// @Success 200 {object} util.Response
// @Router /api/teacher/resources/{id}/publish [patch]
func (c *ContentController) PublishResource(ctx *gin.Context) {
	publish := ctx.Query("publish") != "false"
	resource, err := c.Service.PublishResource(util.MustParseUint(ctx.Param("id")), publish)
	if err != nil {
		util.NotFound(ctx, "resource not found")
		return
	}
	util.Success(ctx, resource)
}

// @Summary Delete a resource
// @Tags content
// @Security ApiKeyAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /api/teacher/resources/{id} [delete]
func (c *ContentController) DeleteResource(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	resource, err := c.Service.GetResource(id)
	if err != nil {
		util.NotFound(ctx, "resource not found")
		return
	}
	if resource.FileURL != "" {
		if err := c.Storage.DeleteByURL(ctx.Request.Context(), resource.FileURL); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}
	if err := c.Service.DeleteResource(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Student resource listing for the active quarter
// @Tags content
// @Produce json
// @Security ApiKeyAuth
// @Param subjectId query int false "subject id"
// @Param topicId query int false "topic id"
// @Success 200 {object} util.Response
// @Router /api/resources [get]
func (c *ContentController) GetStudentResources(ctx *gin.Context) {
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
	resources, total, err := c.Service.ListForStudent(ctx.Request.Context(), user.Year,
		util.MustParseUint(ctx.Query("subjectId")), util.MustParseUint(ctx.Query("topicId")), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: resources, Total: total, Page: page, Limit: limit})
}

// @Summary Teacher resource listing, unscoped
// @Tags content
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/resources [get]
func (c *ContentController) GetTeacherResources(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))
	filter := repository.ResourceFilter{
		SubjectID: util.MustParseUint(ctx.Query("subjectId")),
		TopicID:   util.MustParseUint(ctx.Query("topicId")),
		Type:      ctx.Query("type"),
		Year:      int(util.MustParseUint(ctx.Query("year"))),
		Quarter:   ctx.Query("quarter"),
	}
	if _, ok := ctx.GetQuery("published"); ok {
		published := ctx.Query("published") == "true"
		filter.Published = &published
	}

	resources, total, err := c.Service.ListForTeacher(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: resources, Total: total, Page: page, Limit: limit})
}
