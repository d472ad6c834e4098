package controller

import (
	"anchor_lms_backend/internal/service"
	"anchor_lms_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Overview godoc
// @Summary 平台学习数据总览（管理员）
// @Tags 报表
// @Produce  json
// @Success 200 {object} util.Response
// @Router /api/admin/reports/overview [get]
func (c *ReportController) Overview(ctx *gin.Context) {
	report, err := c.ReportService.Overview(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// Activity godoc
// @Summary 近 7 天学习活跃度（管理员）
// @Description 每日完成/报名时间线，外加近 30 天活跃学员数
// @Tags 报表
// @Produce  json
// @Success 200 {object} util.Response
// @Router /api/admin/reports/activity [get]
func (c *ReportController) Activity(ctx *gin.Context) {
	report, err := c.ReportService.Activity(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// CourseDetail godoc
// @Summary 单门课程报表（管理员）
// @Tags 报表
// @Produce  json
// @Param   courseId path string true "课程 id"
// @Success 200 {object} util.Response
// @Router /api/admin/reports/courses/{courseId} [get]
func (c *ReportController) CourseDetail(ctx *gin.Context) {
	report, err := c.ReportService.CourseDetail(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}
