package util

import "errors"

var (
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrProblemNotFound     = errors.New("problem not found")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrInvalidStatus       = errors.New("invalid progress status")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrPlanNotCheckoutable = errors.New("this plan does not support checkout")
	ErrNoBillingCustomer   = errors.New("user has no billing customer")
)
