package service

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/util"
	"algo_prep_backend/pkg/logger"
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v72"
	portalsession "github.com/stripe/stripe-go/v72/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/customer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BillingService struct {
	UserRepo  *repository.UserRepository
	EventRepo *repository.WebhookEventRepository
	Session   *SessionService
	Cfg       *config.Config
}

func NewBillingService(userRepo *repository.UserRepository, eventRepo *repository.WebhookEventRepository, session *SessionService, cfg *config.Config) *BillingService {
	stripe.Key = cfg.Billing.SecretKey
	return &BillingService{
		UserRepo:  userRepo,
		EventRepo: eventRepo,
		Session:   session,
		Cfg:       cfg,
	}
}

// Apply 处理一条已验证的计费事件并返回处理结果。
// 所有分支都是绝对赋值（设定终态而非增量），同一事件重复投递落到同一状态；
// 订阅引用查不到用户按静默 no-op 处理并返回成功——提供方对非 2xx 会无限重试，
// 这里绝不能用错误去回应一次语义上合法的空操作。
func (s *BillingService) Apply(ctx context.Context, event model.BillingEvent) (model.BillingOutcome, error) {
	outcome, err := s.apply(ctx, event)
	if err != nil {
		return outcome, err
	}

	if s.EventRepo != nil && event.ID != "" {
		payload, _ := json.Marshal(event)
		if auditErr := s.EventRepo.Record(&model.WebhookEvent{
			EventID: event.ID,
			Kind:    string(event.Kind),
			Outcome: outcome,
			Payload: payload,
		}); auditErr != nil {
			logger.Log.Error("webhook audit record failed",
				zap.String("event_id", event.ID), zap.Error(auditErr))
		}
	}

	return outcome, nil
}

func (s *BillingService) apply(ctx context.Context, event model.BillingEvent) (model.BillingOutcome, error) {
	switch event.Kind {
	case model.EventCheckoutCompleted:
		if event.UserID == "" || event.SubscriptionID == "" {
			return model.OutcomeNoOp, nil
		}
		if err := s.UserRepo.SetSubscription(event.UserID, model.TierPremium, event.SubscriptionID); err != nil {
			return model.OutcomeNoOp, err
		}
		s.Session.Invalidate(ctx, event.UserID)
		return model.OutcomeApplied, nil

	case model.EventSubscriptionUpdated:
		user, err := s.findBySubscription(event.SubscriptionID)
		if err != nil {
			return model.OutcomeNoOp, err
		}
		if user == nil {
			return model.OutcomeNoOp, nil
		}
		tier := model.TierFree
		if event.Status == "active" {
			tier = model.TierPremium
		}
		if err := s.UserRepo.SetTier(user.ID, tier); err != nil {
			return model.OutcomeNoOp, err
		}
		s.Session.Invalidate(ctx, user.ID)
		return model.OutcomeApplied, nil

	case model.EventSubscriptionDeleted:
		user, err := s.findBySubscription(event.SubscriptionID)
		if err != nil {
			return model.OutcomeNoOp, err
		}
		if user == nil {
			return model.OutcomeNoOp, nil
		}
		if err := s.UserRepo.ClearSubscription(user.ID); err != nil {
			return model.OutcomeNoOp, err
		}
		s.Session.Invalidate(ctx, user.ID)
		return model.OutcomeApplied, nil

	case model.EventPaymentFailed:
		user, err := s.findBySubscription(event.SubscriptionID)
		if err != nil {
			return model.OutcomeNoOp, err
		}
		if user == nil {
			return model.OutcomeNoOp, nil
		}
		// 不改等级，只发通知信号，后续动作（催款邮件等）由外部系统消费
		logger.Log.Warn("payment failed for user",
			zap.String("user_id", user.ID),
			zap.String("subscription_id", event.SubscriptionID))
		return model.OutcomeSignal, nil

	default:
		// 闭集之外的事件种类：确认但不处理
		return model.OutcomeNoOp, nil
	}
}

// findBySubscription 查无用户时返回 (nil, nil)：事件可能过期或乱序到达
func (s *BillingService) findBySubscription(subscriptionID string) (*model.User, error) {
	if subscriptionID == "" {
		return nil, nil
	}
	user, err := s.UserRepo.FindBySubscriptionID(subscriptionID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Plans 静态套餐表；price id 来自配置
func (s *BillingService) Plans() []model.Plan {
	return []model.Plan{
		{
			Key:         "free",
			Name:        "Free",
			Description: "Access to the core problem set with basic solutions",
			Price:       0,
			Features: []string{
				"15 core problems",
				"Basic solutions",
				"Code editor",
				"Progress tracking",
			},
			ProblemLimit: 15,
		},
		{
			Key:         "premium_monthly",
			Name:        "Premium Monthly",
			Description: "Full access to all 75 problems",
			Price:       12,
			PriceID:     s.Cfg.Billing.MonthlyPriceID,
			Features: []string{
				"All 75 problems",
				"Detailed explanations",
				"Pattern recognition guides",
				"Priority support",
			},
			ProblemLimit: 75,
		},
		{
			Key:         "premium_yearly",
			Name:        "Premium Yearly",
			Description: "Full access with 2 months free",
			Price:       99,
			PriceID:     s.Cfg.Billing.YearlyPriceID,
			Features: []string{
				"All 75 problems",
				"Detailed explanations",
				"Pattern recognition guides",
				"Priority support",
				"2 months free",
			},
			ProblemLimit: 75,
		},
	}
}

func (s *BillingService) planByKey(key string) (*model.Plan, error) {
	for _, p := range s.Plans() {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, util.ErrPlanNotFound
}

// CreateCheckoutSession 为指定套餐创建 Stripe Checkout 会话，
// 必要时先创建 Stripe customer 并回写引用。返回跳转 URL。
func (s *BillingService) CreateCheckoutSession(userID, planKey string) (string, error) {
	plan, err := s.planByKey(planKey)
	if err != nil {
		return "", err
	}
	if plan.PriceID == "" {
		return "", util.ErrPlanNotCheckoutable
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		custParams := &stripe.CustomerParams{
			Email: stripe.String(user.Email),
		}
		custParams.AddMetadata("user_id", user.ID)
		cust, err := customer.New(custParams)
		if err != nil {
			return "", err
		}
		customerID = cust.ID
		if err := s.UserRepo.SetCustomerID(user.ID, customerID); err != nil {
			return "", err
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.Cfg.Billing.SuccessURL),
		CancelURL:  stripe.String(s.Cfg.Billing.CancelURL),
	}
	params.AddMetadata("user_id", user.ID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreatePortalSession 打开计费自助门户（改卡、取消订阅等）
func (s *BillingService) CreatePortalSession(userID string) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == "" {
		return "", util.ErrNoBillingCustomer
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.Cfg.Billing.PortalReturn),
	})
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
