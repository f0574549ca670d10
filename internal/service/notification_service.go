package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Notification channels.
const (
	ChannelEmail = "email"
	ChannelPush  = "push"
)

// Notification is one message handed to a channel.
type Notification struct {
	Channel  string
	Event    events.EventType
	TicketID string
	Summary  string
}

// NotificationService turns domain events into notifications, honouring
// the user's notification settings.
type NotificationService struct {
	dispatcher events.Dispatcher
	settings   repository.SettingsRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
	sent       func(Notification)
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, settings repository.SettingsRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
		cfg:        cfg,
	}
}

// OnSend registers a hook called for every notification sent.
func (n *NotificationService) OnSend(fn func(Notification)) {
	n.sent = fn
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
	n.dispatcher.Subscribe(events.EventApprovalDecided, n.handleTicketUpdated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	settings := n.currentSettings(ctx)
	if !settings.Notifications.NewTicket {
		n.logger.Debug("new ticket notifications disabled", zap.String("ticket_id", event.TicketID))
		return nil
	}
	summary := "New ticket " + event.TicketID
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok {
		summary += ": " + p.Subject
	}
	n.fanOut(settings, event, summary)
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	n.fanOut(n.currentSettings(ctx), event, "Ticket "+event.TicketID+" updated by "+event.Actor)
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	if p, ok := event.Payload.(events.TicketCommentAddedPayload); ok && p.Internal {
		return nil
	}
	n.fanOut(n.currentSettings(ctx), event, "New reply on "+event.TicketID)
	return nil
}

func (n *NotificationService) currentSettings(ctx context.Context) domain.Settings {
	if n.settings == nil {
		return domain.DefaultSettings()
	}
	settings, err := n.settings.Get(ctx)
	if err != nil {
		n.logger.Warn("load settings failed, using defaults", zap.Error(err))
		return domain.DefaultSettings()
	}
	return settings
}

func (n *NotificationService) fanOut(settings domain.Settings, event events.Event, summary string) {
	if settings.Notifications.Email {
		n.sendEmailNotificationStub(event, summary)
	}
	if settings.Notifications.Push {
		n.sendWebhookNotificationStub(event, summary)
	}
}

func (n *NotificationService) sendEmailNotificationStub(event events.Event, summary string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	n.record(ChannelEmail, event, summary)
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event, summary string) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	n.record(ChannelPush, event, summary)
}

func (n *NotificationService) record(channel string, event events.Event, summary string) {
	if n.sent == nil {
		return
	}
	n.sent(Notification{Channel: channel, Event: event.Type, TicketID: event.TicketID, Summary: summary})
}
