package repository

import (
	"algo_prep_backend/internal/model"

	"gorm.io/gorm"
)

type ProblemRepository struct {
	DB *gorm.DB
}

func NewProblemRepository(db *gorm.DB) *ProblemRepository {
	return &ProblemRepository{DB: db}
}

// ProblemFilter 列表过滤条件；零值表示不过滤
type ProblemFilter struct {
	Difficulty string
	Category   string
	Pattern    string
	Search     string // 标题模糊匹配
}

func (r *ProblemRepository) FindAll(filter ProblemFilter) ([]model.Problem, error) {
	query := r.DB.Model(&model.Problem{}).Order("`order` ASC")

	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Pattern != "" {
		query = query.Where("pattern = ?", filter.Pattern)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var problems []model.Problem
	err := query.Find(&problems).Error
	return problems, err
}

func (r *ProblemRepository) FindBySlug(slug string) (*model.Problem, error) {
	var problem model.Problem
	err := r.DB.Where("slug = ?", slug).First(&problem).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (r *ProblemRepository) FindByID(id string) (*model.Problem, error) {
	var problem model.Problem
	err := r.DB.First(&problem, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

// NeighborSlugs 按 order 全序取前后相邻题的 slug；位于端点时对应值为空串
func (r *ProblemRepository) NeighborSlugs(order int) (prev string, next string, err error) {
	var p model.Problem

	errPrev := r.DB.Select("slug").Where("`order` < ?", order).
		Order("`order` DESC").First(&p).Error
	if errPrev == nil {
		prev = p.Slug
	} else if errPrev != gorm.ErrRecordNotFound {
		return "", "", errPrev
	}

	p = model.Problem{}
	errNext := r.DB.Select("slug").Where("`order` > ?", order).
		Order("`order` ASC").First(&p).Error
	if errNext == nil {
		next = p.Slug
	} else if errNext != gorm.ErrRecordNotFound {
		return "", "", errNext
	}

	return prev, next, nil
}
