package domain

// User is an employee who raises tickets.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Avatar     string `json:"avatar,omitempty"`
}

// Agent is an IT staff member who works tickets.
type Agent struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Avatar         string   `json:"avatar,omitempty"`
	Specialization []string `json:"specialization"`
}

// Handles reports whether the agent specializes in the category.
func (a Agent) Handles(category TicketCategory) bool {
	for _, s := range a.Specialization {
		if s == string(category) {
			return true
		}
	}
	return false
}

func (a Agent) clone() Agent {
	out := a
	out.Specialization = append([]string(nil), a.Specialization...)
	return out
}

// AsAuthor converts the user into a comment author.
func (u User) AsAuthor() Author {
	return Author{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, Department: u.Department}
}

// AsAuthor converts the agent into a comment author.
func (a Agent) AsAuthor() Author {
	return Author{ID: a.ID, Name: a.Name, Email: a.Email, Avatar: a.Avatar, Specialization: append([]string(nil), a.Specialization...)}
}
