package service

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
)

// RecentActivityLimit 仪表盘最近活动条数
const RecentActivityLimit = 10

type StatsService struct {
	ProblemRepo  *repository.ProblemRepository
	ProgressRepo *repository.ProgressRepository
}

func NewStatsService(problemRepo *repository.ProblemRepository, progressRepo *repository.ProgressRepository) *StatsService {
	return &StatsService{
		ProblemRepo:  problemRepo,
		ProgressRepo: progressRepo,
	}
}

// Stats 联结题库与用户进度，按难度/分类/套路分组统计。
// 纯读侧派生，不产生任何写入。
func (s *StatsService) Stats(userID string) (*model.ProgressStats, error) {
	problems, err := s.ProblemRepo.FindAll(repository.ProblemFilter{})
	if err != nil {
		return nil, err
	}

	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	byProblem := make(map[string]*model.Progress, len(records))
	for i := range records {
		byProblem[records[i].ProblemID] = &records[i]
	}

	stats := &model.ProgressStats{
		Total: len(problems),
		// 难度维度固定三档，没有题的档位也要出现（占比显示为 0）
		ByDifficulty: map[string]model.PartitionStat{
			string(model.DifficultyEasy):   {},
			string(model.DifficultyMedium): {},
			string(model.DifficultyHard):   {},
		},
		ByCategory: map[string]model.PartitionStat{},
		ByPattern:  map[string]model.PartitionStat{},
	}

	bump := func(m map[string]model.PartitionStat, key string, solved bool) {
		entry := m[key]
		entry.Total++
		if solved {
			entry.Solved++
		}
		m[key] = entry
	}

	for _, problem := range problems {
		progress := byProblem[problem.ID]
		solved := progress != nil && progress.Status == model.StatusSolved

		bump(stats.ByDifficulty, string(problem.Difficulty), solved)
		bump(stats.ByCategory, problem.Category, solved)
		bump(stats.ByPattern, problem.Pattern, solved)

		if progress == nil {
			continue
		}
		switch progress.Status {
		case model.StatusSolved:
			stats.Solved++
		case model.StatusAttempted:
			stats.Attempted++
		}
	}

	stats.SolvedPercent = model.PartitionStat{Solved: stats.Solved, Total: stats.Total}.Percent()

	return stats, nil
}

// RecentActivity 最近更新的进度记录与题目维度的只读联结
func (s *StatsService) RecentActivity(userID string) ([]model.RecentActivity, error) {
	records, err := s.ProgressRepo.RecentByUser(userID, RecentActivityLimit)
	if err != nil {
		return nil, err
	}

	activities := make([]model.RecentActivity, 0, len(records))
	for _, record := range records {
		problem, err := s.ProblemRepo.FindByID(record.ProblemID)
		if err != nil {
			// 题目被下架属于异常数据，跳过而不是整体失败
			continue
		}
		activities = append(activities, model.RecentActivity{
			ProblemID:  problem.ID,
			Slug:       problem.Slug,
			Title:      problem.Title,
			Difficulty: problem.Difficulty,
			Category:   problem.Category,
			Pattern:    problem.Pattern,
			Status:     record.Status,
			Attempts:   record.Attempts,
			UpdatedAt:  record.UpdatedAt,
		})
	}
	return activities, nil
}
