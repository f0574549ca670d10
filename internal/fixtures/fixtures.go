// Package fixtures holds the seed data used to initialize empty storage.
// Every accessor returns a fresh copy.
package fixtures

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Users returns the employee directory.
func Users() []domain.User {
	return []domain.User{
		{ID: "user-1", Name: "John Smith", Email: "john.smith@company.com", Department: "Marketing"},
		{ID: "user-2", Name: "Sarah Johnson", Email: "sarah.johnson@company.com", Department: "Sales"},
		{ID: "user-3", Name: "Mike Chen", Email: "mike.chen@company.com", Department: "Engineering"},
		{ID: "user-4", Name: "Emily Davis", Email: "emily.davis@company.com", Department: "HR"},
		{ID: "user-5", Name: "Robert Wilson", Email: "robert.wilson@company.com", Department: "Finance"},
	}
}

// Agents returns the IT staff directory.
func Agents() []domain.Agent {
	return []domain.Agent{
		{ID: "agent-1", Name: "Alex Turner", Email: "alex.turner@it.company.com", Specialization: []string{"hardware", "network"}},
		{ID: "agent-2", Name: "Jessica Lee", Email: "jessica.lee@it.company.com", Specialization: []string{"software", "email"}},
		{ID: "agent-3", Name: "David Kim", Email: "david.kim@it.company.com", Specialization: []string{"security", "access"}},
	}
}

func comment(id, ticketID string, author domain.Author, content, createdAt string, internal bool) domain.Comment {
	return domain.Comment{
		ID:         id,
		TicketID:   ticketID,
		Author:     author,
		Content:    content,
		CreatedAt:  at(createdAt),
		IsInternal: internal,
	}
}

// Tickets returns the eight seed tickets, newest collection order first.
func Tickets() []domain.Ticket {
	users := Users()
	agents := Agents()
	agent := func(i int) *domain.Agent {
		a := agents[i]
		return &a
	}

	return []domain.Ticket{
		{
			ID:          "TKT-001",
			Subject:     "Unable to connect to VPN",
			Description: `I have been trying to connect to the company VPN from home but keep getting a "Connection timed out" error. I have tried restarting my computer and router but the issue persists.`,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityHigh,
			Category:    domain.CategoryNetwork,
			CreatedAt:   at("2026-01-27T08:30:00Z"),
			UpdatedAt:   at("2026-01-27T08:30:00Z"),
			CreatedBy:   users[0],
			AssignedTo:  agent(0),
			Comments: []domain.Comment{
				comment("comment-1", "TKT-001", agents[0].AsAuthor(),
					"Hi John, I will look into this issue. Can you please confirm which VPN client version you are using?",
					"2026-01-27T09:00:00Z", false),
			},
		},
		{
			ID:          "TKT-002",
			Subject:     "Laptop screen flickering",
			Description: "My laptop screen has been flickering intermittently for the past two days. It happens randomly and sometimes the screen goes black for a second.",
			Status:      domain.TicketStatusInProgress,
			Priority:    domain.TicketPriorityMedium,
			Category:    domain.CategoryHardware,
			CreatedAt:   at("2026-01-26T14:20:00Z"),
			UpdatedAt:   at("2026-01-27T10:15:00Z"),
			CreatedBy:   users[1],
			AssignedTo:  agent(0),
			Comments: []domain.Comment{
				comment("comment-2", "TKT-002", agents[0].AsAuthor(),
					"This could be a graphics driver issue. I have scheduled a remote session for 2 PM today to diagnose.",
					"2026-01-27T10:15:00Z", false),
			},
		},
		{
			ID:          "TKT-003",
			Subject:     "Cannot access shared drive",
			Description: `I am unable to access the Marketing shared drive (M: drive). Getting an "Access Denied" error message.`,
			Status:      domain.TicketStatusResolved,
			Priority:    domain.TicketPriorityMedium,
			Category:    domain.CategoryAccess,
			CreatedAt:   at("2026-01-25T11:00:00Z"),
			UpdatedAt:   at("2026-01-26T09:30:00Z"),
			CreatedBy:   users[2],
			AssignedTo:  agent(2),
			Comments: []domain.Comment{
				comment("comment-3", "TKT-003", agents[2].AsAuthor(),
					"Your access permissions have been updated. Please log out and log back in to see the changes.",
					"2026-01-26T09:30:00Z", false),
			},
		},
		{
			ID:          "TKT-004",
			Subject:     "Email not syncing on mobile",
			Description: `My work email stopped syncing on my iPhone yesterday. I can still access it through the web portal but the Outlook app shows "Cannot connect to server".`,
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityLow,
			Category:    domain.CategoryEmail,
			CreatedAt:   at("2026-01-27T07:45:00Z"),
			UpdatedAt:   at("2026-01-27T07:45:00Z"),
			CreatedBy:   users[3],
			AssignedTo:  agent(1),
			Comments:    []domain.Comment{},
		},
		{
			ID:          "TKT-005",
			Subject:     "Suspicious email received",
			Description: "I received an email claiming to be from IT support asking for my password. The email address looks suspicious. I have not clicked any links.",
			Status:      domain.TicketStatusInProgress,
			Priority:    domain.TicketPriorityCritical,
			Category:    domain.CategorySecurity,
			CreatedAt:   at("2026-01-27T09:15:00Z"),
			UpdatedAt:   at("2026-01-27T09:45:00Z"),
			CreatedBy:   users[4],
			AssignedTo:  agent(2),
			Comments: []domain.Comment{
				comment("comment-4", "TKT-005", agents[2].AsAuthor(),
					"Thank you for reporting this. This is indeed a phishing attempt. I am investigating and will send a company-wide alert.",
					"2026-01-27T09:45:00Z", false),
				comment("comment-5", "TKT-005", agents[2].AsAuthor(),
					"Internal note: Need to check if any other employees received this email and block the sender domain.",
					"2026-01-27T09:50:00Z", true),
			},
		},
		{
			ID:          "TKT-006",
			Subject:     "Request for new software installation",
			Description: "I need Adobe Creative Suite installed on my workstation for upcoming design projects. I have manager approval attached.",
			Status:      domain.TicketStatusOpen,
			Priority:    domain.TicketPriorityLow,
			Category:    domain.CategorySoftware,
			CreatedAt:   at("2026-01-27T10:00:00Z"),
			UpdatedAt:   at("2026-01-27T10:00:00Z"),
			CreatedBy:   users[0],
			Comments:    []domain.Comment{},
		},
		{
			ID:          "TKT-007",
			Subject:     "Printer not printing color",
			Description: "The HP printer on the 3rd floor is only printing in black and white. Color printing was working yesterday.",
			Status:      domain.TicketStatusClosed,
			Priority:    domain.TicketPriorityLow,
			Category:    domain.CategoryHardware,
			CreatedAt:   at("2026-01-24T15:30:00Z"),
			UpdatedAt:   at("2026-01-25T11:00:00Z"),
			CreatedBy:   users[1],
			AssignedTo:  agent(0),
			Comments: []domain.Comment{
				comment("comment-6", "TKT-007", agents[0].AsAuthor(),
					"The color cartridges were empty. I have replaced them and color printing is now working.",
					"2026-01-25T11:00:00Z", false),
			},
		},
		{
			ID:          "TKT-008",
			Subject:     "Two-factor authentication not working",
			Description: "My authenticator app is not generating the correct codes. I cannot log into any company systems that require 2FA.",
			Status:      domain.TicketStatusInProgress,
			Priority:    domain.TicketPriorityHigh,
			Category:    domain.CategorySecurity,
			CreatedAt:   at("2026-01-27T08:00:00Z"),
			UpdatedAt:   at("2026-01-27T08:30:00Z"),
			CreatedBy:   users[2],
			AssignedTo:  agent(2),
			Comments: []domain.Comment{
				comment("comment-7", "TKT-008", agents[2].AsAuthor(),
					"This usually happens when the time on your phone is not synced correctly. Please check your phone time settings. If that does not work, we can reset your 2FA.",
					"2026-01-27T08:30:00Z", false),
			},
		},
	}
}
