package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ErrArticleNotFound is returned for an unknown knowledge article id.
var ErrArticleNotFound = errors.New("knowledge article not found")

// ArticleFilter narrows a knowledge base listing. Search covers title,
// content and tags.
type ArticleFilter struct {
	SearchTerm string
	Category   domain.TicketCategory
	// TagsSearchable turns off tag matching when false.
	TagsSearchable bool
}

// CategoryGroup is one category and its articles.
type CategoryGroup struct {
	Category domain.TicketCategory
	Articles []domain.KnowledgeArticle
}

// KnowledgeRepository serves the knowledge base.
type KnowledgeRepository interface {
	List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error)
	Get(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	GroupByCategory(ctx context.Context) ([]CategoryGroup, error)
	RecordView(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	RecordHelpful(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
}

type knowledgeRepository struct {
	mu       sync.RWMutex
	articles []domain.KnowledgeArticle
}

// NewKnowledgeRepository keeps articles in memory.
func NewKnowledgeRepository(articles []domain.KnowledgeArticle) KnowledgeRepository {
	copied := make([]domain.KnowledgeArticle, len(articles))
	for i, a := range articles {
		copied[i] = a.Clone()
	}
	return &knowledgeRepository{articles: copied}
}

func (r *knowledgeRepository) List(_ context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.KnowledgeArticle{}
	for _, a := range r.articles {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if !a.Matches(filter.SearchTerm, filter.TagsSearchable) {
			continue
		}
		out = append(out, a.Clone())
	}
	return out, nil
}

func (r *knowledgeRepository) Get(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.index(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	a := r.articles[idx].Clone()
	return &a, nil
}

func (r *knowledgeRepository) GroupByCategory(_ context.Context) ([]CategoryGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byCategory := map[domain.TicketCategory][]domain.KnowledgeArticle{}
	for _, a := range r.articles {
		byCategory[a.Category] = append(byCategory[a.Category], a.Clone())
	}
	groups := make([]CategoryGroup, 0, len(byCategory))
	for category, articles := range byCategory {
		groups = append(groups, CategoryGroup{Category: category, Articles: articles})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups, nil
}

func (r *knowledgeRepository) RecordView(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	return r.bump(id, func(a *domain.KnowledgeArticle) { a.Views++ })
}

func (r *knowledgeRepository) RecordHelpful(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	return r.bump(id, func(a *domain.KnowledgeArticle) { a.Helpful++ })
}

func (r *knowledgeRepository) bump(id string, fn func(*domain.KnowledgeArticle)) (*domain.KnowledgeArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	fn(&r.articles[idx])
	a := r.articles[idx].Clone()
	return &a, nil
}

func (r *knowledgeRepository) index(id string) int {
	for i := range r.articles {
		if r.articles[i].ID == id {
			return i
		}
	}
	return -1
}
