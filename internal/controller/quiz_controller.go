package controller

import (
	"anchor_lms_backend/internal/service"
	"anchor_lms_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetForLesson godoc
// @Summary 获取课时测验
// @Description 返回题目与选项，不含正确答案标记
// @Tags 测验
// @Produce  json
// @Param   lessonId path string true "课时 id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课时无测验"
// @Router /api/lessons/{lessonId}/quiz [get]
func (c *QuizController) GetForLesson(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuizForLesson(ctx.Param("lessonId"))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// Submit godoc
// @Summary 提交测验答案
// @Description 所有题目必须作答，否则整体拒绝且不计分
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   lessonId path string                 true "课时 id"
// @Param   body     body service.QuizSubmission true "题目 id 到所选选项 id 的映射"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "有题目未作答"
// @Router /api/lessons/{lessonId}/quiz/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var submission service.QuizSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.Submit(claims.UserID, ctx.Param("lessonId"), submission)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrIncompleteSubmission):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuizHasNoQuestions):
			util.Error(ctx, http.StatusUnprocessableEntity, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// ListAttempts godoc
// @Summary 我的答题记录
// @Tags 测验
// @Produce  json
// @Param   quizId path string true "测验 id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.QuizService.ListAttempts(claims.UserID, ctx.Param("quizId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Upsert godoc
// @Summary 创建或整体更新课时测验（管理员）
// @Description 按请求内容对题目和选项做增删改对账
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   lessonId path string          true "课时 id"
// @Param   body     body service.QuizReq true "测验定义"
// @Success 200 {object} util.Response
// @Router /api/admin/lessons/{lessonId}/quiz [put]
func (c *QuizController) Upsert(ctx *gin.Context) {
	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpsertForLesson(ctx.Param("lessonId"), req)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, quiz)
}
