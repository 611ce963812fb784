package model

import "time"

// ProgressStatus 做题状态。只是标签，不做状态机校验：
// 客户端可以任意写入集合内的值，缺省（无记录）即 not-started。
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusAttempted  ProgressStatus = "attempted"
	StatusSolved     ProgressStatus = "solved"
)

// ValidProgressStatus 是否为合法状态值
func ValidProgressStatus(s ProgressStatus) bool {
	switch s {
	case StatusNotStarted, StatusAttempted, StatusSolved:
		return true
	}
	return false
}

// swagger:model Progress
type Progress struct {
	UUIDBase
	UserID    string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_problem" json:"userId"`
	ProblemID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_problem" json:"problemId"`

	Status   ProgressStatus `gorm:"size:20;not null" json:"status"`
	Attempts int            `gorm:"not null;default:1" json:"attempts"` // 每次提交 +1，存储层原子递增
	LastCode string         `gorm:"type:text" json:"lastCode,omitempty"`
	Language string         `gorm:"size:20" json:"language"`
	SolvedAt *time.Time     `json:"solvedAt,omitempty"` // 每次 solved 提交都会刷新
}

func (Progress) TableName() string {
	return "progress"
}
