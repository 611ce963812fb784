package service

import (
	"algo_prep_backend/internal/model"
	"algo_prep_backend/internal/repository"
	"algo_prep_backend/internal/util"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "catalog:problems:v1"
	catalogCacheTTL = 10 * time.Minute
)

type CatalogService struct {
	ProblemRepo  *repository.ProblemRepository
	ProgressRepo *repository.ProgressRepository
	Entitlement  *EntitlementService
	Redis        *redis.Client
}

func NewCatalogService(problemRepo *repository.ProblemRepository, progressRepo *repository.ProgressRepository, entitlement *EntitlementService, rdb *redis.Client) *CatalogService {
	return &CatalogService{
		ProblemRepo:  problemRepo,
		ProgressRepo: progressRepo,
		Entitlement:  entitlement,
		Redis:        rdb,
	}
}

// ProblemSummary 列表项：题面元数据 + 调用方进度，不含内容包
type ProblemSummary struct {
	ID         string           `json:"id"`
	Slug       string           `json:"slug"`
	Title      string           `json:"title"`
	Difficulty model.Difficulty `json:"difficulty"`
	Category   string           `json:"category"`
	Pattern    string           `json:"pattern"`
	IsPremium  bool             `json:"isPremium"`
	Order      int              `json:"order"`

	Progress *ProgressBrief `json:"progress,omitempty"`
}

type ProgressBrief struct {
	Status   model.ProgressStatus `json:"status"`
	Attempts int                  `json:"attempts"`
	SolvedAt *time.Time           `json:"solvedAt,omitempty"`
}

// ListFilter 列表查询条件；Status 依赖调用方进度，在合并后过滤
type ListFilter struct {
	Difficulty string
	Category   string
	Pattern    string
	Search     string
	Status     string
}

// ListProblems 按 order 全序返回题目列表并合并调用方进度。
// 无条件查询走 Redis 缓存（题库只读，缓存无需失效逻辑，TTL 兜底）。
func (s *CatalogService) ListProblems(ctx context.Context, filter ListFilter, callerID string) ([]ProblemSummary, error) {
	summaries, err := s.loadSummaries(ctx, repository.ProblemFilter{
		Difficulty: filter.Difficulty,
		Category:   filter.Category,
		Pattern:    filter.Pattern,
		Search:     filter.Search,
	})
	if err != nil {
		return nil, err
	}

	if callerID != "" {
		records, err := s.ProgressRepo.FindByUser(callerID)
		if err != nil {
			return nil, err
		}
		byProblem := make(map[string]*model.Progress, len(records))
		for i := range records {
			byProblem[records[i].ProblemID] = &records[i]
		}
		for i := range summaries {
			if record := byProblem[summaries[i].ID]; record != nil {
				summaries[i].Progress = &ProgressBrief{
					Status:   record.Status,
					Attempts: record.Attempts,
					SolvedAt: record.SolvedAt,
				}
			}
		}
	}

	if filter.Status != "" {
		summaries = filterByStatus(summaries, model.ProgressStatus(filter.Status))
	}

	return summaries, nil
}

func filterByStatus(summaries []ProblemSummary, status model.ProgressStatus) []ProblemSummary {
	filtered := summaries[:0]
	for _, summary := range summaries {
		switch {
		case status == model.StatusNotStarted && summary.Progress == nil:
			filtered = append(filtered, summary)
		case summary.Progress != nil && summary.Progress.Status == status:
			filtered = append(filtered, summary)
		}
	}
	return filtered
}

func (s *CatalogService) loadSummaries(ctx context.Context, filter repository.ProblemFilter) ([]ProblemSummary, error) {
	cacheable := filter == (repository.ProblemFilter{})

	if cacheable && s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
			var summaries []ProblemSummary
			if err := json.Unmarshal(cached, &summaries); err == nil {
				return summaries, nil
			}
		}
	}

	problems, err := s.ProblemRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProblemSummary, 0, len(problems))
	for _, p := range problems {
		summaries = append(summaries, ProblemSummary{
			ID:         p.ID,
			Slug:       p.Slug,
			Title:      p.Title,
			Difficulty: p.Difficulty,
			Category:   p.Category,
			Pattern:    p.Pattern,
			IsPremium:  p.IsPremium,
			Order:      p.Order,
		})
	}

	if cacheable && s.Redis != nil {
		if data, err := json.Marshal(summaries); err == nil {
			s.Redis.Set(ctx, catalogCacheKey, data, catalogCacheTTL)
		}
	}

	return summaries, nil
}

// ProblemDetail 详情：按权限解析后的题目视图 + 调用方进度 + 前后导航
type ProblemDetail struct {
	*ProblemView
	Progress *model.Progress `json:"progress,omitempty"`
	PrevSlug string          `json:"prevSlug,omitempty"`
	NextSlug string          `json:"nextSlug,omitempty"`
}

// GetProblem 取单题详情。付费内容按 (tier, isPremium) 解析为完整或删减视图；
// 匿名访问合法（callerID 为空），只是拿不到进度。
func (s *CatalogService) GetProblem(slug string, callerID string, tier model.SubscriptionTier) (*ProblemDetail, error) {
	problem, err := s.ProblemRepo.FindBySlug(strings.TrimSpace(slug))
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrProblemNotFound
	}
	if err != nil {
		return nil, err
	}

	view, err := s.Entitlement.View(tier, problem)
	if err != nil {
		return nil, err
	}

	prev, next, err := s.ProblemRepo.NeighborSlugs(problem.Order)
	if err != nil {
		return nil, err
	}

	detail := &ProblemDetail{
		ProblemView: view,
		PrevSlug:    prev,
		NextSlug:    next,
	}

	if callerID != "" {
		record, err := s.ProgressRepo.FindByUserAndProblem(callerID, problem.ID)
		if err == nil {
			detail.Progress = record
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	return detail, nil
}
