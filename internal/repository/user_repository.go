package repository

import (
	"algo_prep_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBySubscriptionID 按计费订阅引用查找用户。
// 计费事件可能晚于用户删除到达，查不到属于正常情况，由调用方判定 ErrRecordNotFound。
func (r *UserRepository) FindBySubscriptionID(subscriptionID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("stripe_subscription_id = ?", subscriptionID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetSubscription 绝对赋值：单条 UPDATE 语句保证按用户行原子，
// 重复投递的事件落到同一终态。
func (r *UserRepository) SetSubscription(userID string, tier model.SubscriptionTier, subscriptionID string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"tier":                   tier,
		"stripe_subscription_id": subscriptionID,
	}).Error
}

// SetTier 仅变更订阅等级
func (r *UserRepository) SetTier(userID string, tier model.SubscriptionTier) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).
		Update("tier", tier).Error
}

// ClearSubscription 订阅注销：降为 free 并清空订阅引用
func (r *UserRepository) ClearSubscription(userID string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"tier":                   model.TierFree,
		"stripe_subscription_id": "",
	}).Error
}

func (r *UserRepository) SetCustomerID(userID, customerID string) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}

func (r *UserRepository) UpdateProfile(userID string, updates map[string]interface{}) error {
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}
