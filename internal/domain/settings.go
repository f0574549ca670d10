package domain

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// NotificationSettings toggles notification channels.
type NotificationSettings struct {
	Email     bool `json:"email"`
	Push      bool `json:"push"`
	NewTicket bool `json:"newTicket"`
}

// Settings holds user preferences.
type Settings struct {
	Notifications NotificationSettings `json:"notifications"`
	Theme         Theme                `json:"theme"`
}

// DefaultSettings mirrors a fresh profile: everything on, system theme.
func DefaultSettings() Settings {
	return Settings{
		Notifications: NotificationSettings{Email: true, Push: true, NewTicket: true},
		Theme:         ThemeSystem,
	}
}
