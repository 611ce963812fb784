package model

import "encoding/json"

// BillingEventKind 计费事件类型（闭集，其余种类一律按 no-op 确认）
type BillingEventKind string

const (
	EventCheckoutCompleted   BillingEventKind = "checkout.session.completed"
	EventSubscriptionUpdated BillingEventKind = "customer.subscription.updated"
	EventSubscriptionDeleted BillingEventKind = "customer.subscription.deleted"
	EventPaymentFailed       BillingEventKind = "invoice.payment_failed"
)

// BillingEvent 已通过上游签名校验的计费事件。
// 字段均为可选：不同事件种类携带的引用不同。
type BillingEvent struct {
	ID             string           // 提供方事件ID，用于审计去重
	Kind           BillingEventKind // 事件种类
	UserID         string           // checkout 场景由 metadata 携带
	SubscriptionID string           // 订阅引用
	Status         string           // subscription updated 时的提供方状态
}

// BillingOutcome 事件处理结果（审计用）
type BillingOutcome string

const (
	OutcomeApplied BillingOutcome = "applied" // 完成了一次用户变更
	OutcomeNoOp    BillingOutcome = "noop"    // 语义空操作（查无用户/未知事件种类）
	OutcomeSignal  BillingOutcome = "signal"  // 仅产生通知信号（扣款失败）
)

// swagger:model WebhookEvent
// WebhookEvent 已处理事件的审计记录。事件ID唯一索引，
// 提供方重投时可据此定位重复投递。
type WebhookEvent struct {
	UUIDBase
	EventID string          `gorm:"size:64;uniqueIndex;not null" json:"eventId"`
	Kind    string          `gorm:"size:64;index" json:"kind"`
	Outcome BillingOutcome  `gorm:"size:16" json:"outcome"`
	Payload json.RawMessage `gorm:"type:json" json:"payload,omitempty"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// Plan 订阅套餐（静态定义，不入库）
type Plan struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        int      `json:"price"` // 美元/计费周期
	PriceID      string   `json:"-"`     // Stripe price id，来自配置
	Features     []string `json:"features"`
	ProblemLimit int      `json:"problemLimit"`
}
