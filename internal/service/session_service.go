package service

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const tierCacheTTL = 24 * time.Hour

// SessionService 维护会话层的订阅等级缓存。
// JWT 里带的 tier 在令牌有效期内可能过期（计费事件改库），
// 每次令牌刷新都以缓存→数据库的顺序取最新值；
// 计费变更通过显式失效让下一次刷新立即看到新等级。
type SessionService struct {
	UserRepo *repository.UserRepository
	Redis    *redis.Client
}

func NewSessionService(userRepo *repository.UserRepository, rdb *redis.Client) *SessionService {
	return &SessionService{UserRepo: userRepo, Redis: rdb}
}

func tierCacheKey(userID string) string {
	return fmt.Sprintf("user:tier:%s", userID)
}

// CurrentTier 取用户当前订阅等级，优先走缓存
func (s *SessionService) CurrentTier(ctx context.Context, userID string) (model.SubscriptionTier, error) {
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, tierCacheKey(userID)).Result()
		if err == nil && val != "" {
			return model.SubscriptionTier(val), nil
		}
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return model.TierNone, err
	}

	if s.Redis != nil {
		s.Redis.Set(ctx, tierCacheKey(userID), string(user.Tier), tierCacheTTL)
	}
	return user.Tier, nil
}

// Invalidate 计费变更后的失效触发点
func (s *SessionService) Invalidate(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(ctx, tierCacheKey(userID))
}
