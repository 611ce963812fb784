package service

import (
	"algo_prep_backend/internal/config"
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/util"
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Session  *SessionService
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, session *SessionService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Session:  session,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	user.Tier = model.TierFree
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// RefreshToken 会话刷新：从等级缓存/数据库取最新 tier 重签令牌，
// 计费驱动的等级变化由此生效，无需重新登录。
func (s *AuthService) RefreshToken(ctx context.Context, userID string) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", err
	}

	tier, err := s.Session.CurrentTier(ctx, userID)
	if err == nil {
		user.Tier = tier
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
