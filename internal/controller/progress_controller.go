package controller

import (
	"algo_prep_backend/internal/service"
	"algo_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	StatsService *service.StatsService
}

func NewProgressController(statsService *service.StatsService) *ProgressController {
	return &ProgressController{StatsService: statsService}
}

// @Summary 进度统计
// @Description 按难度/分类/套路分组的已解/总数统计，附最近活动
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/stats [get]
func (c *ProgressController) GetStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.Stats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	recent, err := c.StatsService.RecentActivity(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"stats":          stats,
		"recentActivity": recent,
	})
}
