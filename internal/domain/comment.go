package domain

import "time"

// Author is either a User or an Agent. Agents carry a specialization,
// users a department.
type Author struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Avatar         string   `json:"avatar,omitempty"`
	Department     string   `json:"department,omitempty"`
	Specialization []string `json:"specialization,omitempty"`
}

// IsAgent reports whether the author is IT staff.
func (a Author) IsAgent() bool {
	return a.Specialization != nil
}

// Comment is a message in a ticket thread.
type Comment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	Author     Author    `json:"author"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	IsInternal bool      `json:"isInternal"`
}

func (c Comment) clone() Comment {
	out := c
	if c.Author.Specialization != nil {
		out.Author.Specialization = append([]string{}, c.Author.Specialization...)
	}
	return out
}

// Attachment is a file attached to a ticket. URL holds a data URI.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}
