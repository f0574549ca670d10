package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/report"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RecentTicketCount is how many tickets the dashboard lists.
const RecentTicketCount = 5

// DashboardService computes dashboard and analytics figures over the
// stored collection.
type DashboardService struct {
	tickets  repository.TicketRepository
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	TicketRepo repository.TicketRepository
	Logger     *zap.Logger
	Clock      func() time.Time
	// Location decides which calendar day counts as today. Nil means UTC.
	Location *time.Location
}

// NewDashboardService creates the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DashboardService{
		tickets:  deps.TicketRepo,
		logger:   logger,
		now:      now,
		location: deps.Location,
	}
}

// Stats returns the headline figures. The location in opts is replaced by
// the configured one when unset.
func (s *DashboardService) Stats(ctx context.Context, opts analytics.StatsOptions) (analytics.DashboardStats, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return analytics.DashboardStats{}, apperrors.MapError(err)
	}
	return analytics.Stats(tickets, s.now(), s.withLocation(opts)), nil
}

// Volume returns the creation histogram over the trailing days.
func (s *DashboardService) Volume(ctx context.Context, days int) ([]analytics.VolumePoint, error) {
	if days < 0 || days > 366 {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"days": "days must be between 1 and 366"})
	}
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return analytics.Volume(tickets, days, s.now()), nil
}

// Recent returns the newest tickets in collection order.
func (s *DashboardService) Recent(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(tickets) > RecentTicketCount {
		tickets = tickets[:RecentTicketCount]
	}
	return tickets, nil
}

// Analytics gathers the analytics page figures.
func (s *DashboardService) Analytics(ctx context.Context, opts analytics.StatsOptions) (report.Report, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return report.Report{}, apperrors.MapError(err)
	}
	return report.Compute(tickets, s.now(), s.withLocation(opts)), nil
}

// WriteReport renders the analytics workbook into w and returns the
// suggested file name.
func (s *DashboardService) WriteReport(ctx context.Context, w io.Writer, opts analytics.StatsOptions) (string, error) {
	r, err := s.Analytics(ctx, opts)
	if err != nil {
		return "", err
	}
	if err := report.Write(w, r); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	s.logger.Info("analytics report generated", zap.Int("tickets", r.Summary.Total))
	return report.Filename(r.GeneratedAt), nil
}

func (s *DashboardService) withLocation(opts analytics.StatsOptions) analytics.StatsOptions {
	if opts.Location == nil {
		opts.Location = s.location
	}
	return opts
}
