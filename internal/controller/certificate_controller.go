package controller

import (
	"anchor_lms_backend/internal/service"
	"anchor_lms_backend/internal/util"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
	CourseService      *service.CourseService
	AuthService        *service.AuthService
}

func NewCertificateController(
	certService *service.CertificateService,
	courseService *service.CourseService,
	authService *service.AuthService,
) *CertificateController {
	return &CertificateController{
		CertificateService: certService,
		CourseService:      courseService,
		AuthService:        authService,
	}
}

// Generate godoc
// @Summary 生成结业证书
// @Description 要求本人已通过该课程内的测验；生成流程为取模板、绘制、上传、落库，任一步失败整体失败
// @Tags 证书
// @Produce  json
// @Param   id path string true "课程 id"
// @Success 201 {object} util.Response
// @Failure 403 {object} util.Response "尚未通过课程测验"
// @Failure 502 {object} util.Response "模板或存储不可用"
// @Router /api/courses/{id}/certificate [post]
func (c *CertificateController) Generate(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID := ctx.Param("id")

	course, err := c.CourseService.Get(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if err := c.CourseService.EnsureEnrolled(user.ID, courseID); err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.Error(ctx, http.StatusForbidden, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	passed, err := c.CourseService.HasPassedQuizInCourse(user.ID, courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !passed {
		util.Error(ctx, http.StatusForbidden, util.ErrQuizNotPassed.Error())
		return
	}

	cert, err := c.CertificateService.Generate(ctx.Request.Context(), service.CertificateRequest{
		UserID:         user.ID,
		CourseID:       courseID,
		NameText:       user.Name,
		CompletionLine: fmt.Sprintf("has successfully completed the %s course", course.Title),
		CompletionDate: time.Now().Format(util.CertificateDateFormat),
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTemplateUnavailable), errors.Is(err, util.ErrStorageUploadFailed):
			util.Error(ctx, http.StatusBadGateway, err.Error())
		case errors.Is(err, util.ErrRecordPersistFailed):
			util.InternalServerError(ctx)
		case errors.Is(err, util.ErrEmptyCertificateField):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, cert)
}

// GetForCourse godoc
// @Summary 查询本人在某课程的证书
// @Tags 证书
// @Produce  json
// @Param   id path string true "课程 id"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/certificate [get]
func (c *CertificateController) GetForCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	cert, err := c.CertificateService.GetForUserAndCourse(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cert)
}

// ListMine godoc
// @Summary 我的全部证书
// @Tags 证书
// @Produce  json
// @Success 200 {object} util.Response
// @Router /api/my/certificates [get]
func (c *CertificateController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertificateService.ListForUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}
