package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestSettingsService(t *testing.T) {
	svc := service.NewSettingsService(repository.NewSettingsRepository(storage.NewMemory(), nil), nil)
	ctx := context.Background()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	_, err = svc.Save(ctx, service.SettingsInput{Theme: "neon"})
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Equal(t, "Theme must be light, dark or system", de.Details["theme"])

	saved, err := svc.Save(ctx, service.SettingsInput{
		Notifications: domain.NotificationSettings{Email: true},
		Theme:         domain.ThemeDark,
	})
	require.NoError(t, err)

	got, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.False(t, got.Notifications.Push)
}

func TestSessionService(t *testing.T) {
	directory := repository.NewDirectory(fixtures.Users(), fixtures.Agents())
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := service.NewSessionService(directory, tokens, nil)
	ctx := context.Background()

	session, principal, err := svc.Issue(ctx, service.SessionInput{SubjectType: "agent", SubjectID: "agent-2"})
	require.NoError(t, err)
	assert.True(t, principal.IsAgent())
	assert.Equal(t, "Jessica Lee", principal.Name())

	claims, err := tokens.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "agent-2", claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeAgent, claims.Subject)

	_, _, err = svc.Issue(ctx, service.SessionInput{SubjectType: domain.SubjectTypeUser, SubjectID: "user-99"})
	requireCode(t, err, apperrors.CodeNotFound)

	_, _, err = svc.Issue(ctx, service.SessionInput{SubjectType: "ROBOT", SubjectID: "user-1"})
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Equal(t, "Subject type must be USER or AGENT", de.Details["subjectType"])
}

type sentLog struct {
	mu   sync.Mutex
	sent []service.Notification
}

func (l *sentLog) add(n service.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, n)
}

func (l *sentLog) channels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.sent))
	for i, n := range l.sent {
		out[i] = n.Channel
	}
	return out
}

func TestNotificationServiceHonoursSettings(t *testing.T) {
	ctx := context.Background()
	settings := repository.NewSettingsRepository(storage.NewMemory(), nil)
	dispatcher := events.NewInMemoryDispatcher()
	notifier := service.NewNotificationService(dispatcher, settings, nil, config.NotificationConfig{
		EmailFrom:  "helpdesk@company.com",
		WebhookURL: "https://hooks.example.com/helpdesk",
	})
	log := &sentLog{}
	notifier.OnSend(log.add)
	notifier.RegisterHandlers()

	created := events.New(events.EventTicketCreated, "TKT-009", "Current User", testStart, events.TicketCreatedPayload{Subject: "Printer jam"})
	require.NoError(t, dispatcher.Publish(ctx, created))
	assert.Equal(t, []string{service.ChannelEmail, service.ChannelPush}, log.channels())

	require.NoError(t, settings.Save(ctx, domain.Settings{
		Notifications: domain.NotificationSettings{Email: true, Push: false, NewTicket: false},
		Theme:         domain.ThemeLight,
	}))
	log.sent = nil

	require.NoError(t, dispatcher.Publish(ctx, created))
	assert.Empty(t, log.channels(), "new ticket notifications are off")

	status := events.New(events.EventTicketStatusChanged, "TKT-001", "Alex Turner", testStart, events.TicketStatusChangedPayload{})
	require.NoError(t, dispatcher.Publish(ctx, status))
	assert.Equal(t, []string{service.ChannelEmail}, log.channels())

	log.sent = nil
	note := events.New(events.EventTicketCommentAdded, "TKT-001", "Alex Turner", testStart, events.TicketCommentAddedPayload{Internal: true})
	require.NoError(t, dispatcher.Publish(ctx, note))
	assert.Empty(t, log.channels(), "internal notes are not announced")
}
