package domain

import (
	"strings"
	"time"
)

// KnowledgeArticle is a self-service help article.
type KnowledgeArticle struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Category  TicketCategory `json:"category"`
	Tags      []string       `json:"tags"`
	Views     int            `json:"views"`
	Helpful   int            `json:"helpful"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Matches reports whether the lower-cased query occurs in the title,
// content or, when withTags is set, any tag.
func (a KnowledgeArticle) Matches(query string, withTags bool) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(strings.ToLower(a.Content), q) {
		return true
	}
	if withTags {
		for _, tag := range a.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy.
func (a KnowledgeArticle) Clone() KnowledgeArticle {
	out := a
	out.Tags = append([]string(nil), a.Tags...)
	return out
}
