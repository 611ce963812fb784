package model

// SubscriptionTier 用户订阅等级
type SubscriptionTier string

const (
	// TierNone 匿名访客（无会话），权限上等同于 free
	TierNone    SubscriptionTier = "none"
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// swagger:model User
type User struct {
	UUIDBase
	Name     string           `gorm:"size:100;not null" json:"name"`
	Email    string           `gorm:"size:100;unique;not null" json:"email"`
	Password string           `gorm:"size:100;not null" json:"-"`
	Avatar   string           `gorm:"size:255" json:"avatar"`
	Tier     SubscriptionTier `gorm:"type:enum('free','premium');default:'free'" json:"tier"`

	// Stripe 侧标识，仅由计费事件处理器和 checkout 流程写入
	StripeCustomerID     string `gorm:"size:64;index" json:"-"`
	StripeSubscriptionID string `gorm:"size:64;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsPremium 当前是否处于付费档
func (u *User) IsPremium() bool {
	return u.Tier == TierPremium
}
