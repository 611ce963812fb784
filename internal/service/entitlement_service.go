package service

import (
	"algo_prep_backend/internal/model"
	"encoding/json"
)

// Entitlement 解析结果：完整内容或删减视图
type Entitlement string

const (
	EntitlementFull     Entitlement = "full"
	EntitlementRedacted Entitlement = "redacted"
)

// RedactedTestCaseLimit 删减视图保留的测试用例条数
const RedactedTestCaseLimit = 2

// EntitlementService 纯函数式的访问控制解析：
// 不读库、不写库，只由 (订阅等级, 题目付费标记) 决定可见性。
type EntitlementService struct{}

func NewEntitlementService() *EntitlementService {
	return &EntitlementService{}
}

// Resolve 访问级别判定。非付费题对任何人（含匿名）完整可见；
// 付费题仅对 premium 完整可见，free 与匿名一视同仁拿删减视图。
func (s *EntitlementService) Resolve(tier model.SubscriptionTier, problem *model.Problem) Entitlement {
	if !problem.IsPremium {
		return EntitlementFull
	}
	if tier == model.TierPremium {
		return EntitlementFull
	}
	return EntitlementRedacted
}

// ProblemView 带锁定标记的题目视图
type ProblemView struct {
	model.Problem
	IsLocked bool `json:"isLocked"`
}

// View 按访问级别产出视图。删减是确定性的：
// 题解整体移除，测试用例截断为前 RedactedTestCaseLimit 条（保持原有顺序），
// 其余字段原样保留。
func (s *EntitlementService) View(tier model.SubscriptionTier, problem *model.Problem) (*ProblemView, error) {
	view := &ProblemView{Problem: *problem}

	if s.Resolve(tier, problem) == EntitlementFull {
		return view, nil
	}

	view.IsLocked = true
	view.Solution = nil

	if len(problem.TestCases) > 0 {
		var cases []model.TestCase
		if err := json.Unmarshal(problem.TestCases, &cases); err != nil {
			return nil, err
		}
		if len(cases) > RedactedTestCaseLimit {
			cases = cases[:RedactedTestCaseLimit]
		}
		truncated, err := json.Marshal(cases)
		if err != nil {
			return nil, err
		}
		view.TestCases = truncated
	}

	return view, nil
}
