package model

import "encoding/json"

// Difficulty 题目难度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// 题目分类（固定枚举集合，随题库数据一起下发）
const (
	CategoryArray              = "array"
	CategoryString             = "string"
	CategoryLinkedList         = "linked-list"
	CategoryTree               = "tree"
	CategoryGraph              = "graph"
	CategoryDynamicProgramming = "dynamic-programming"
	CategoryBinarySearch       = "binary-search"
	CategoryHeap               = "heap"
	CategoryBacktracking       = "backtracking"
	CategoryMath               = "math"
)

// swagger:model Problem
type Problem struct {
	UUIDBase
	Slug        string     `gorm:"size:100;unique;not null" json:"slug"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Difficulty  Difficulty `gorm:"type:enum('easy','medium','hard');index" json:"difficulty"`
	Category    string     `gorm:"size:50;index" json:"category"`
	Pattern     string     `gorm:"size:50;index" json:"pattern"`
	IsPremium   bool       `gorm:"default:false;index" json:"isPremium"`
	Order       int        `gorm:"uniqueIndex;not null" json:"order"` // 全序，决定上一题/下一题导航
	Description string     `gorm:"type:text" json:"description"`
	Constraints string     `gorm:"type:text" json:"constraints"`

	Examples    json.RawMessage `gorm:"type:json" json:"examples"`           // JSON: []Example
	StarterCode json.RawMessage `gorm:"type:json" json:"starterCode"`        // JSON: language -> code
	Solution    json.RawMessage `gorm:"type:json" json:"solution,omitempty"` // JSON: Solution，受权限裁剪
	TestCases   json.RawMessage `gorm:"type:json" json:"testCases"`          // JSON: []TestCase
	Hints       json.RawMessage `gorm:"type:json" json:"hints,omitempty"`    // JSON: []string
}

func (Problem) TableName() string {
	return "problems"
}

// Example 题面示例
type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// TestCase 单条测试用例
type TestCase struct {
	Input       string `json:"input"`
	Expected    string `json:"expected"`
	Description string `json:"description,omitempty"`
}

// Solution 官方题解
type Solution struct {
	Approach   string            `json:"approach"`
	Complexity Complexity        `json:"complexity"`
	Code       map[string]string `json:"code"` // language -> code
}

type Complexity struct {
	Time  string `json:"time"`
	Space string `json:"space"`
}
