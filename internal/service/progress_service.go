package service

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	ProblemRepo  *repository.ProblemRepository
}

func NewProgressService(progressRepo *repository.ProgressRepository, problemRepo *repository.ProblemRepository) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		ProblemRepo:  problemRepo,
	}
}

// Record 登记一次做题进度（upsert 语义）。
// 状态只校验取值集合，不做状态机约束：UI 只会发 solved，
// 但契约上三个值都接受，乱序写入不报错。
// attempts 首次为 1，之后每次调用 +1（与状态是否变化无关）；
// solved 提交每次都刷新 solvedAt。
func (s *ProgressService) Record(userID, slug string, status model.ProgressStatus, lastCode, language string) (*model.Progress, error) {
	if userID == "" {
		return nil, util.ErrUnauthenticated
	}
	if !model.ValidProgressStatus(status) {
		return nil, util.ErrInvalidStatus
	}

	problem, err := s.ProblemRepo.FindBySlug(slug)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrProblemNotFound
	}
	if err != nil {
		return nil, err
	}

	progress := &model.Progress{
		UserID:    userID,
		ProblemID: problem.ID,
		Status:    status,
		LastCode:  lastCode,
		Language:  language,
	}

	return s.ProgressRepo.Upsert(progress, time.Now())
}

// Find 查询某题的进度记录；无记录即 not-started，返回 nil
func (s *ProgressService) Find(userID, problemID string) (*model.Progress, error) {
	if userID == "" {
		return nil, nil
	}
	progress, err := s.ProgressRepo.FindByUserAndProblem(userID, problemID)
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}
