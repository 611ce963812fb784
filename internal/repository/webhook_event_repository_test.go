package repository

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/testutil"
	"testing"
	"time"
)

func TestRecordKeepsFirstDelivery(t *testing.T) {
	repo := NewWebhookEventRepository(testutil.NewDB(t))

	if err := repo.Record(&model.WebhookEvent{
		EventID: "evt_1", Kind: "checkout.session.completed", Outcome: model.OutcomeApplied,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// 同一事件重投：静默忽略，首次记录保留
	if err := repo.Record(&model.WebhookEvent{
		EventID: "evt_1", Kind: "checkout.session.completed", Outcome: model.OutcomeNoOp,
	}); err != nil {
		t.Fatalf("record redelivery: %v", err)
	}

	event, err := repo.FindByEventID("evt_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if event.Outcome != model.OutcomeApplied {
		t.Fatalf("redelivery overwrote the first record: %s", event.Outcome)
	}

	var count int64
	if err := repo.DB.Model(&model.WebhookEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestPruneBefore(t *testing.T) {
	repo := NewWebhookEventRepository(testutil.NewDB(t))

	old := &model.WebhookEvent{EventID: "evt_old", Kind: "invoice.payment_failed"}
	if err := repo.Record(old); err != nil {
		t.Fatalf("record old: %v", err)
	}
	if err := repo.DB.Model(old).Update("created_at", time.Now().AddDate(0, 0, -100)).Error; err != nil {
		t.Fatalf("age row: %v", err)
	}
	if err := repo.Record(&model.WebhookEvent{EventID: "evt_new", Kind: "invoice.payment_failed"}); err != nil {
		t.Fatalf("record new: %v", err)
	}

	pruned, err := repo.PruneBefore(time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned row, got %d", pruned)
	}
	if _, err := repo.FindByEventID("evt_new"); err != nil {
		t.Fatalf("recent row must survive pruning: %v", err)
	}
}
