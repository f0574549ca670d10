package service

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DefaultSuggestionLimit caps the articles suggested for a ticket.
const DefaultSuggestionLimit = 3

// KnowledgeService serves the self-service knowledge base.
type KnowledgeService struct {
	articles repository.KnowledgeRepository
}

// NewKnowledgeService creates the service.
func NewKnowledgeService(articles repository.KnowledgeRepository) *KnowledgeService {
	return &KnowledgeService{articles: articles}
}

// Search lists articles matching the query in title, content or tags,
// optionally limited to one category.
func (s *KnowledgeService) Search(ctx context.Context, query string, category domain.TicketCategory) ([]domain.KnowledgeArticle, error) {
	if category != "" && !category.Valid() {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"category": "Please select a category"})
	}
	articles, err := s.articles.List(ctx, repository.ArticleFilter{
		SearchTerm:     strings.TrimSpace(query),
		Category:       category,
		TagsSearchable: true,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return articles, nil
}

// Categories groups every article by category.
func (s *KnowledgeService) Categories(ctx context.Context) ([]repository.CategoryGroup, error) {
	groups, err := s.articles.GroupByCategory(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return groups, nil
}

// View returns an article and counts the view.
func (s *KnowledgeService) View(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	article, err := s.articles.RecordView(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return article, nil
}

// MarkHelpful counts a helpful vote.
func (s *KnowledgeService) MarkHelpful(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	article, err := s.articles.RecordHelpful(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id)
	}
	return article, nil
}

// SuggestArticles returns up to limit articles related to t: same
// category, or a tag that occurs in the subject or description. The most
// helpful come first.
func SuggestArticles(articles []domain.KnowledgeArticle, t domain.Ticket, limit int) []domain.KnowledgeArticle {
	text := strings.ToLower(t.Subject + " " + t.Description)
	out := []domain.KnowledgeArticle{}
	for _, a := range articles {
		if a.Category == t.Category || tagMentioned(a.Tags, text) {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Helpful > out[j].Helpful })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tagMentioned(tags []string, text string) bool {
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" && strings.Contains(text, tag) {
			return true
		}
	}
	return false
}
