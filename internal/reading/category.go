package reading

import (
	"errors"

	"github.com/tartampluch/go-saju/internal/config"
)

// ErrCategoryNotFound is returned for unknown or inactive category slugs,
// before any pillar calculation is attempted.
var ErrCategoryNotFound = errors.New(config.ErrCategoryNotFound)

// Category describes one reading product. Price is in KRW.
type Category struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
	IsActive    bool    `json:"isActive"`
	SortOrder   int     `json:"sortOrder"`
}

// Registry resolves category slugs. Implementations must be safe for
// concurrent use.
type Registry interface {
	Lookup(slug string) (Category, bool)
}

// StaticRegistry is the in-process category registry seeded with the product
// catalog. Read-only after construction.
type StaticRegistry struct {
	bySlug map[string]Category
}

// NewStaticRegistry builds a registry from a category list.
func NewStaticRegistry(categories []Category) *StaticRegistry {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Slug] = c
	}
	return &StaticRegistry{bySlug: m}
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(slug string) (Category, bool) {
	c, ok := r.bySlug[slug]
	return c, ok
}

// DefaultCategories is the production catalog.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:          "1",
			Slug:        "doha-sal",
			Name:        "도화살 알아보기",
			Description: "나에게 도화살이 있는지, 연애운과 매력이 어떤지 분석해드립니다.",
			Price:       3900,
			AvgRating:   4.8,
			IsActive:    true,
			SortOrder:   1,
		},
		{
			ID:          "2",
			Slug:        "name-score",
			Name:        "나의 이름 점수",
			Description: "성명학을 기반으로 이름이 운명에 미치는 영향을 분석합니다.",
			Price:       2900,
			AvgRating:   4.7,
			IsActive:    true,
			SortOrder:   2,
		},
		{
			ID:          "3",
			Slug:        "reunion",
			Name:        "재회 가능성",
			Description: "헤어진 연인과의 재회 가능성과 인연의 깊이를 분석합니다.",
			Price:       4900,
			AvgRating:   4.9,
			IsActive:    true,
			SortOrder:   3,
		},
		{
			ID:          "4",
			Slug:        "compatibility",
			Name:        "궁합 분석",
			Description: "두 사람의 사주로 알아보는 깊이 있는 궁합 분석입니다.",
			Price:       5900,
			AvgRating:   4.8,
			IsActive:    true,
			SortOrder:   4,
		},
		{
			ID:          "5",
			Slug:        "yearly-fortune",
			Name:        "올해 종합 운세",
			Description: "올해 전반적인 운의 흐름과 연애, 재물, 건강, 직업운을 분석합니다.",
			Price:       5900,
			AvgRating:   4.9,
			IsActive:    true,
			SortOrder:   5,
		},
	}
}
