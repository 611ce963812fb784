package model

import "time"

// PartitionStat 按维度分组的 已解/总数
type PartitionStat struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}

// Percent 派生百分比；total 为 0 时返回 0 而不是 NaN
func (p PartitionStat) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Solved) / float64(p.Total) * 100
}

// swagger:model ProgressStats
type ProgressStats struct {
	Total     int `json:"total"`
	Solved    int `json:"solved"`
	Attempted int `json:"attempted"`

	SolvedPercent float64 `json:"solvedPercent"`

	ByDifficulty map[string]PartitionStat `json:"byDifficulty"`
	ByCategory   map[string]PartitionStat `json:"byCategory"`
	ByPattern    map[string]PartitionStat `json:"byPattern"`
}

// RecentActivity 最近一次进度变动及其题目维度信息（只读联结）
type RecentActivity struct {
	ProblemID  string         `json:"problemId"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Difficulty Difficulty     `json:"difficulty"`
	Category   string         `json:"category"`
	Pattern    string         `json:"pattern"`
	Status     ProgressStatus `json:"status"`
	Attempts   int            `json:"attempts"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
