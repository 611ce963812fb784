package repository

import (
	"algo_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (user_id, problem_id) 为键做原子插入或更新。
// attempts 的递增放在存储层表达式里完成，并发提交不会丢失计数；
// solved_at 仅在本次状态为 solved 时写入（非 solved 更新保留旧值）。
func (r *ProgressRepository) Upsert(p *model.Progress, now time.Time) (*model.Progress, error) {
	assignments := map[string]interface{}{
		"status":     p.Status,
		"last_code":  p.LastCode,
		"language":   p.Language,
		"attempts":   gorm.Expr("attempts + 1"),
		"updated_at": now,
	}
	if p.Status == model.StatusSolved {
		assignments["solved_at"] = now
	}

	p.Attempts = 1
	if p.Status == model.StatusSolved {
		p.SolvedAt = &now
	}

	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}

	// 冲突路径下 Create 不回填已有行，重新读取最终状态
	return r.FindByUserAndProblem(p.UserID, p.ProblemID)
}

func (r *ProgressRepository) FindByUserAndProblem(userID, problemID string) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("user_id = ? AND problem_id = ?", userID, problemID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByUser(userID string) ([]model.Progress, error) {
	var records []model.Progress
	err := r.DB.Where("user_id = ?", userID).Find(&records).Error
	return records, err
}

// RecentByUser 最近更新的进度记录，按更新时间倒序
func (r *ProgressRepository) RecentByUser(userID string, limit int) ([]model.Progress, error) {
	var records []model.Progress
	err := r.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
