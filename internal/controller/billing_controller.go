package controller

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/service"
	"algo_prep_backend/internal/util"
	"algo_prep_backend/pkg/logger"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
	"go.uber.org/zap"
)

type BillingController struct {
	BillingService *service.BillingService
	Cfg            *config.Config
}

func NewBillingController(billingService *service.BillingService, cfg *config.Config) *BillingController {
	return &BillingController{
		BillingService: billingService,
		Cfg:            cfg,
	}
}

// @Summary 套餐列表
// @Tags 计费
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/billing/plans [get]
func (c *BillingController) GetPlans(ctx *gin.Context) {
	util.Success(ctx, c.BillingService.Plans())
}

// @Summary 创建 Checkout 会话
// @Description 为指定套餐创建 Stripe Checkout 会话，返回跳转 URL
// @Tags 计费
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body object true "套餐 key"
// @Success 200 {object} util.Response
// @Router /api/billing/checkout [post]
func (c *BillingController) CreateCheckout(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		PlanKey string `json:"planKey" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	url, err := c.BillingService.CreateCheckoutSession(claims.UserID, req.PlanKey)
	switch err {
	case nil:
	case util.ErrPlanNotFound, util.ErrPlanNotCheckoutable:
		util.BadRequest(ctx, err.Error())
		return
	default:
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// @Summary 打开计费自助门户
// @Tags 计费
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/billing/portal [post]
func (c *BillingController) CreatePortal(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	url, err := c.BillingService.CreatePortalSession(claims.UserID)
	if err == util.ErrNoBillingCustomer {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// @Summary Stripe Webhook
// @Description 接收计费事件。签名校验失败返回 400；语义空操作（查无用户、未知事件种类）一律 2xx，避免提供方无意义重试
// @Tags 计费
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/billing/webhook [post]
func (c *BillingController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		util.BadRequest(ctx, "read payload failed")
		return
	}

	// 签名校验在进入处理器之前完成；校验失败的事件不会到达 Apply
	event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), c.Cfg.Billing.WebhookSecret)
	if err != nil {
		logger.Log.Warn("webhook signature verification failed", zap.Error(err))
		util.Error(ctx, http.StatusBadRequest, "invalid signature")
		return
	}

	billingEvent, err := translateEvent(event)
	if err != nil {
		util.BadRequest(ctx, "invalid payload")
		return
	}

	outcome, err := c.BillingService.Apply(ctx.Request.Context(), billingEvent)
	if err != nil {
		// 真正的存储故障才 5xx，让提供方重试；处理器幂等，重投无副作用
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"received": true, "outcome": outcome})
}

// translateEvent 把 Stripe 事件翻译成处理器消费的中立事件值
func translateEvent(event stripe.Event) (model.BillingEvent, error) {
	out := model.BillingEvent{
		ID:   event.ID,
		Kind: model.BillingEventKind(event.Type),
	}

	switch out.Kind {
	case model.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return out, err
		}
		out.UserID = sess.Metadata["user_id"]
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}

	case model.EventSubscriptionUpdated, model.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, err
		}
		out.SubscriptionID = sub.ID
		out.Status = string(sub.Status)

	case model.EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return out, err
		}
		if inv.Subscription != nil {
			out.SubscriptionID = inv.Subscription.ID
		}
	}

	return out, nil
}
