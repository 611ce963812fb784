package service

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/testutil"
	"context"
	"testing"

	"gorm.io/gorm"
)

func newBillingFixture(t *testing.T) (*BillingService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)
	session := NewSessionService(userRepo, nil)
	svc := NewBillingService(userRepo, eventRepo, session, &config.Config{})
	return svc, db
}

func createUser(t *testing.T, db *gorm.DB, tier model.SubscriptionTier, subscriptionID string) *model.User {
	t.Helper()
	user := &model.User{
		Name:                 "tester",
		Email:                model.GenerateUUID() + "@example.com",
		Password:             "hashed",
		Tier:                 tier,
		StripeSubscriptionID: subscriptionID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	var user model.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}

func TestApplyCheckoutCompleted(t *testing.T) {
	svc, db := newBillingFixture(t)
	user := createUser(t, db, model.TierFree, "")

	event := model.BillingEvent{
		ID:             "evt_1",
		Kind:           model.EventCheckoutCompleted,
		UserID:         user.ID,
		SubscriptionID: "sub_abc",
	}
	outcome, err := svc.Apply(context.Background(), event)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome != model.OutcomeApplied {
		t.Fatalf("expected applied, got %s", outcome)
	}

	got := reloadUser(t, db, user.ID)
	if got.Tier != model.TierPremium {
		t.Fatalf("expected premium tier, got %s", got.Tier)
	}
	if got.StripeSubscriptionID != "sub_abc" {
		t.Fatalf("expected subscription reference stored, got %q", got.StripeSubscriptionID)
	}

	// 审计记录落库
	audit, err := svc.EventRepo.FindByEventID("evt_1")
	if err != nil {
		t.Fatalf("find audit row: %v", err)
	}
	if audit.Outcome != model.OutcomeApplied {
		t.Fatalf("expected audit outcome applied, got %s", audit.Outcome)
	}

	// 重复投递：状态不变，审计仍是一行
	if _, err := svc.Apply(context.Background(), event); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	got = reloadUser(t, db, user.ID)
	if got.Tier != model.TierPremium || got.StripeSubscriptionID != "sub_abc" {
		t.Fatalf("redelivery changed state: tier=%s sub=%s", got.Tier, got.StripeSubscriptionID)
	}
	var auditCount int64
	if err := db.Model(&model.WebhookEvent{}).Where("event_id = ?", "evt_1").Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected 1 audit row, got %d", auditCount)
	}
}

func TestApplyCheckoutMissingReferences(t *testing.T) {
	svc, _ := newBillingFixture(t)

	outcome, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:   "evt_2",
		Kind: model.EventCheckoutCompleted,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome != model.OutcomeNoOp {
		t.Fatalf("expected noop for missing references, got %s", outcome)
	}
}

func TestApplySubscriptionUpdated(t *testing.T) {
	svc, db := newBillingFixture(t)
	user := createUser(t, db, model.TierFree, "sub_upd")

	outcome, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:             "evt_3",
		Kind:           model.EventSubscriptionUpdated,
		SubscriptionID: "sub_upd",
		Status:         "active",
	})
	if err != nil {
		t.Fatalf("apply active: %v", err)
	}
	if outcome != model.OutcomeApplied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	if got := reloadUser(t, db, user.ID); got.Tier != model.TierPremium {
		t.Fatalf("active status should set premium, got %s", got.Tier)
	}

	// active 以外的提供方状态一律回落 free
	if _, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:             "evt_4",
		Kind:           model.EventSubscriptionUpdated,
		SubscriptionID: "sub_upd",
		Status:         "past_due",
	}); err != nil {
		t.Fatalf("apply past_due: %v", err)
	}
	if got := reloadUser(t, db, user.ID); got.Tier != model.TierFree {
		t.Fatalf("non-active status should set free, got %s", got.Tier)
	}
}

func TestApplySubscriptionDeleted(t *testing.T) {
	svc, db := newBillingFixture(t)
	user := createUser(t, db, model.TierPremium, "sub_del")

	event := model.BillingEvent{
		ID:             "evt_5",
		Kind:           model.EventSubscriptionDeleted,
		SubscriptionID: "sub_del",
	}
	outcome, err := svc.Apply(context.Background(), event)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome != model.OutcomeApplied {
		t.Fatalf("expected applied, got %s", outcome)
	}
	got := reloadUser(t, db, user.ID)
	if got.Tier != model.TierFree {
		t.Fatalf("expected free after deletion, got %s", got.Tier)
	}
	if got.StripeSubscriptionID != "" {
		t.Fatalf("expected subscription reference cleared, got %q", got.StripeSubscriptionID)
	}

	// 二次投递：订阅引用已清空，查无用户 → 静默 no-op，最终状态相同
	outcome, err = svc.Apply(context.Background(), event)
	if err != nil {
		t.Fatalf("redeliver: %v", err)
	}
	if outcome != model.OutcomeNoOp {
		t.Fatalf("expected noop on redelivery, got %s", outcome)
	}
	got = reloadUser(t, db, user.ID)
	if got.Tier != model.TierFree || got.StripeSubscriptionID != "" {
		t.Fatalf("redelivery changed state: tier=%s sub=%q", got.Tier, got.StripeSubscriptionID)
	}
}

func TestApplyUnknownSubscription(t *testing.T) {
	svc, _ := newBillingFixture(t)

	for _, kind := range []model.BillingEventKind{
		model.EventSubscriptionUpdated,
		model.EventSubscriptionDeleted,
		model.EventPaymentFailed,
	} {
		outcome, err := svc.Apply(context.Background(), model.BillingEvent{
			ID:             "evt_" + string(kind),
			Kind:           kind,
			SubscriptionID: "sub_nobody",
		})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if outcome != model.OutcomeNoOp {
			t.Fatalf("%s: expected noop for unknown subscription, got %s", kind, outcome)
		}
	}
}

func TestApplyPaymentFailed(t *testing.T) {
	svc, db := newBillingFixture(t)
	user := createUser(t, db, model.TierPremium, "sub_pay")

	outcome, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:             "evt_6",
		Kind:           model.EventPaymentFailed,
		SubscriptionID: "sub_pay",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome != model.OutcomeSignal {
		t.Fatalf("expected signal, got %s", outcome)
	}
	// 扣款失败不改等级，宽限期交给 subscription.updated
	if got := reloadUser(t, db, user.ID); got.Tier != model.TierPremium {
		t.Fatalf("payment failure must not change tier, got %s", got.Tier)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	svc, _ := newBillingFixture(t)

	outcome, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:   "evt_7",
		Kind: "customer.created",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome != model.OutcomeNoOp {
		t.Fatalf("expected noop for unknown kind, got %s", outcome)
	}
}

// 端到端：免费用户看删减视图，checkout 完成后同一题解析为完整视图
func TestCheckoutFlipsEntitlement(t *testing.T) {
	svc, db := newBillingFixture(t)
	entitlement := NewEntitlementService()
	user := createUser(t, db, model.TierFree, "")
	problem := premiumProblem(t)

	if got := entitlement.Resolve(user.Tier, problem); got != EntitlementRedacted {
		t.Fatalf("free user should get redacted view, got %s", got)
	}

	if _, err := svc.Apply(context.Background(), model.BillingEvent{
		ID:             "evt_8",
		Kind:           model.EventCheckoutCompleted,
		UserID:         user.ID,
		SubscriptionID: "sub_flip",
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	upgraded := reloadUser(t, db, user.ID)
	if got := entitlement.Resolve(upgraded.Tier, problem); got != EntitlementFull {
		t.Fatalf("premium user should get full view, got %s", got)
	}
}

func TestPlans(t *testing.T) {
	svc, _ := newBillingFixture(t)
	svc.Cfg.Billing.MonthlyPriceID = "price_m"
	svc.Cfg.Billing.YearlyPriceID = "price_y"

	plans := svc.Plans()
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
	if plans[0].Key != "free" || plans[0].Price != 0 || plans[0].PriceID != "" {
		t.Fatalf("unexpected free plan: %+v", plans[0])
	}
	if plans[1].Key != "premium_monthly" || plans[1].Price != 12 || plans[1].PriceID != "price_m" {
		t.Fatalf("unexpected monthly plan: %+v", plans[1])
	}
	if plans[2].Key != "premium_yearly" || plans[2].Price != 99 || plans[2].PriceID != "price_y" {
		t.Fatalf("unexpected yearly plan: %+v", plans[2])
	}

	if _, err := svc.planByKey("enterprise"); err == nil {
		t.Fatalf("expected error for unknown plan key")
	}
}
