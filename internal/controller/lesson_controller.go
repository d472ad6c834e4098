package controller

import (
	"anchor_lms_backend/internal/service"
	"anchor_lms_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	CourseService  *service.CourseService
	ContentService *service.ContentService
}

func NewLessonController(courseService *service.CourseService, contentService *service.ContentService) *LessonController {
	return &LessonController{
		CourseService:  courseService,
		ContentService: contentService,
	}
}

// Get godoc
// @Summary 课时详情
// @Tags 课时
// @Produce  json
// @Param   lessonId path string true "课时 id"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.CourseService.GetLesson(ctx.Param("lessonId"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// ListResources godoc
// @Summary 课时附件列表
// @Tags 课时
// @Produce  json
// @Param   lessonId path string true "课时 id"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/resources [get]
func (c *LessonController) ListResources(ctx *gin.Context) {
	resources, err := c.CourseService.ListLessonResources(ctx.Param("lessonId"))
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, resources)
}

// Create godoc
// @Summary 新建课时（管理员）
// @Tags 课时
// @Accept  json
// @Produce  json
// @Param   moduleId path string            true "模块 id"
// @Param   body     body service.LessonReq true "课时"
// @Success 201 {object} util.Response
// @Router /api/admin/modules/{moduleId}/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.CreateLesson(ctx.Param("moduleId"), req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, lesson)
}

// Update godoc
// @Summary 更新课时（管理员）
// @Tags 课时
// @Accept  json
// @Produce  json
// @Param   lessonId path string            true "课时 id"
// @Param   body     body service.LessonReq true "课时"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{lessonId} [put]
func (c *LessonController) Update(ctx *gin.Context) {
	var req service.LessonReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.CourseService.UpdateLesson(ctx.Param("lessonId"), req)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// Delete godoc
// @Summary 删除课时及其附件（管理员）
// @Tags 课时
// @Param   lessonId path string true "课时 id"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{lessonId} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	if err := c.CourseService.DeleteLesson(ctx.Param("lessonId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadVideo godoc
// @Summary 上传课时视频（管理员）
// @Description 自动探测时长并生成缩略图
// @Tags 课时
// @Accept  multipart/form-data
// @Produce  json
// @Param   lessonId path     string true "课时 id"
// @Param   video    formData file   true "视频文件"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{lessonId}/video [post]
func (c *LessonController) UploadVideo(ctx *gin.Context) {
	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "缺少视频文件")
		return
	}

	lesson, err := c.ContentService.UploadLessonVideo(ctx.Request.Context(), ctx.Param("lessonId"), file)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, lesson)
}

// UploadResource godoc
// @Summary 上传课时附件（管理员）
// @Tags 课时
// @Accept  multipart/form-data
// @Produce  json
// @Param   lessonId path     string true "课时 id"
// @Param   file     formData file   true "附件"
// @Param   title    formData string false "附件标题"
// @Success 201 {object} util.Response
// @Router /api/admin/lessons/{lessonId}/resources [post]
func (c *LessonController) UploadResource(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少附件")
		return
	}
	title := ctx.PostForm("title")
	if title == "" {
		title = file.Filename
	}

	res, err := c.ContentService.UploadLessonResource(ctx.Request.Context(), claims.UserID, ctx.Param("lessonId"), title, file)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, res)
}

// DeleteResource godoc
// @Summary 删除课时附件（管理员）
// @Tags 课时
// @Param   resourceId path string true "附件 id"
// @Success 200 {object} util.Response
// @Router /api/admin/resources/{resourceId} [delete]
func (c *LessonController) DeleteResource(ctx *gin.Context) {
	if err := c.CourseService.DeleteLessonResource(ctx.Param("resourceId")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
