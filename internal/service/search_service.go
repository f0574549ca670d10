package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// SearchResults holds the global search hits.
type SearchResults struct {
	Query    string                    `json:"query"`
	Tickets  []domain.Ticket           `json:"tickets"`
	Articles []domain.KnowledgeArticle `json:"articles"`
}

// SearchService runs one query over tickets and the knowledge base.
type SearchService struct {
	tickets   *TicketService
	knowledge *KnowledgeService
}

// NewSearchService creates the service.
func NewSearchService(tickets *TicketService, knowledge *KnowledgeService) *SearchService {
	return &SearchService{tickets: tickets, knowledge: knowledge}
}

// Search matches tickets on id, subject and description and articles on
// title, content and tags. A blank query finds nothing.
func (s *SearchService) Search(ctx context.Context, principal *domain.Principal, query string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	results := &SearchResults{
		Query:    query,
		Tickets:  []domain.Ticket{},
		Articles: []domain.KnowledgeArticle{},
	}
	if query == "" {
		return results, nil
	}

	tickets, _, err := s.tickets.List(ctx, principal, repository.TicketFilter{SearchTerm: query})
	if err != nil {
		return nil, err
	}
	results.Tickets = tickets

	articles, err := s.knowledge.Search(ctx, query, "")
	if err != nil {
		return nil, err
	}
	results.Articles = articles
	return results, nil
}
