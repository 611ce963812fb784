package controller

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/service"
	"algo_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProblemController struct {
	CatalogService  *service.CatalogService
	ProgressService *service.ProgressService
}

func NewProblemController(catalogService *service.CatalogService, progressService *service.ProgressService) *ProblemController {
	return &ProblemController{
		CatalogService:  catalogService,
		ProgressService: progressService,
	}
}

// @Summary 题目列表
// @Description 按 order 排序的题目列表，登录用户合并个人进度；支持难度/分类/套路/状态/搜索过滤
// @Tags 题库
// @Produce json
// @Param difficulty query string false "难度 easy/medium/hard"
// @Param category query string false "分类"
// @Param pattern query string false "套路"
// @Param status query string false "进度状态 not-started/attempted/solved"
// @Param search query string false "标题搜索"
// @Success 200 {object} util.Response
// @Router /api/problems [get]
func (c *ProblemController) ListProblems(ctx *gin.Context) {
	filter := service.ListFilter{
		Difficulty: ctx.Query("difficulty"),
		Category:   ctx.Query("category"),
		Pattern:    ctx.Query("pattern"),
		Status:     ctx.Query("status"),
		Search:     ctx.Query("search"),
	}

	callerID := ""
	if claims := util.GetUserFromContext(ctx); claims != nil {
		callerID = claims.UserID
	}

	problems, err := c.CatalogService.ListProblems(ctx.Request.Context(), filter, callerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, problems)
}

// @Summary 题目详情
// @Description 按调用方订阅等级解析可见性：付费题对非付费用户隐藏题解并截断测试用例；返回个人进度和前后题导航
// @Tags 题库
// @Produce json
// @Param slug path string true "题目 slug"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/{slug} [get]
func (c *ProblemController) GetProblem(ctx *gin.Context) {
	callerID := ""
	tier := util.CallerTier(ctx)
	if claims := util.GetUserFromContext(ctx); claims != nil {
		callerID = claims.UserID
	}

	detail, err := c.CatalogService.GetProblem(ctx.Param("slug"), callerID, tier)
	if err == util.ErrProblemNotFound {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary 更新做题进度
// @Description upsert 语义：首次创建 attempts=1，之后每次调用 +1；solved 提交刷新 solvedAt
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "题目 slug"
// @Param body body object true "进度信息"
// @Success 200 {object} util.Response
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/problems/{slug}/progress [put]
func (c *ProblemController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		Status   model.ProgressStatus `json:"status" binding:"required"`
		LastCode string               `json:"lastCode"`
		Language string               `json:"language"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.Record(claims.UserID, ctx.Param("slug"), req.Status, req.LastCode, req.Language)
	switch err {
	case nil:
	case util.ErrProblemNotFound:
		util.NotFound(ctx)
		return
	case util.ErrInvalidStatus:
		util.BadRequest(ctx, err.Error())
		return
	case util.ErrUnauthenticated:
		util.Unauthorized(ctx)
		return
	default:
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}
