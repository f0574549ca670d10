// Package report renders the analytics workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetStatus   = "Status"
	SheetPriority = "Priority"
	SheetCategory = "Category"
	SheetVolume   = "Volume"
)

// VolumeDays is the histogram window included in the report.
const VolumeDays = 7

// Report is everything the workbook shows.
type Report struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Summary     analytics.Summary        `json:"summary"`
	Stats       analytics.DashboardStats `json:"stats"`
	Breakdowns  analytics.Breakdowns     `json:"breakdowns"`
	Volume      []analytics.VolumePoint  `json:"volume"`
}

// Compute gathers the report figures at now.
func Compute(tickets []domain.Ticket, now time.Time, opts analytics.StatsOptions) Report {
	return Report{
		GeneratedAt: now,
		Summary:     analytics.Analytics(tickets),
		Stats:       analytics.Stats(tickets, now, opts),
		Breakdowns:  analytics.Breakdown(tickets),
		Volume:      analytics.Volume(tickets, VolumeDays, now),
	}
}

// Filename is the suggested download name.
func Filename(now time.Time) string {
	return fmt.Sprintf("analytics-report-%s.xlsx", now.UTC().Format("2006-01-02"))
}

// Write renders r as an XLSX workbook into w.
func Write(w io.Writer, r Report) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("name summary sheet: %w", err)
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Generated At", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Total Tickets", r.Summary.Total},
		{"Open", r.Summary.Open},
		{"In Progress", r.Summary.InProgress},
		{"Resolved", r.Summary.Resolved},
		{"Critical Issues", r.Summary.Critical},
		{"Resolution Rate", fmt.Sprintf("%d%%", r.Summary.ResolutionRate)},
		{"Resolved Today", r.Stats.ResolvedToday},
		{"Avg Response Time", r.Stats.AvgResponseTime},
	}
	if err := writeRows(xl, SheetSummary, summary); err != nil {
		return err
	}

	for _, sheet := range []struct {
		name   string
		slices []analytics.Slice
	}{
		{SheetStatus, r.Breakdowns.Status},
		{SheetPriority, r.Breakdowns.Priority},
		{SheetCategory, r.Breakdowns.Category},
	} {
		rows := [][]any{{sheet.name, "Tickets"}}
		for _, s := range sheet.slices {
			rows = append(rows, []any{s.Name, s.Value})
		}
		if err := addSheet(xl, sheet.name, rows); err != nil {
			return err
		}
	}

	volume := [][]any{{"Date", "Tickets"}}
	for _, p := range r.Volume {
		volume = append(volume, []any{p.Date, p.Tickets})
	}
	if err := addSheet(xl, SheetVolume, volume); err != nil {
		return err
	}

	if _, err := xl.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addSheet(xl *excelize.File, name string, rows [][]any) error {
	if _, err := xl.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(xl, name, rows)
}

func writeRows(xl *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
