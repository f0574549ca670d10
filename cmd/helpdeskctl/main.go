// helpdeskctl runs maintenance and reporting commands against the
// configured help desk storage backend.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/app"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

const usage = `Usage: helpdeskctl <command> [flags]

Commands:
  reset                       restore the fixture tickets
  stats [--critical all|active] [--resolved resolved_or_closed|resolved_only]
  volume [--days N]           tickets created per day
  export [--out FILE]         write the analytics workbook
`

var errUsage = errors.New("usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	switch command {
	case "reset", "stats", "volume", "export":
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}

	flags := pflag.NewFlagSet("helpdeskctl "+command, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	critical := flags.String("critical", "all", "critical ticket rule: all or active")
	resolved := flags.String("resolved", "resolved_or_closed", "resolved today rule: resolved_or_closed or resolved_only")
	days := flags.Int("days", analytics.DefaultVolumeDays, "volume window in days")
	out := flags.StringP("out", "o", "", "report file (default analytics-report-<date>.xlsx)")
	if err := flags.Parse(rest); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(config.LoggerConfig{Level: "warn", File: cfg.Logger.File, MaxSizeMB: cfg.Logger.MaxSizeMB, MaxBackups: cfg.Logger.MaxBackups})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	backend, err := app.OpenBackend(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer backend.Close()

	location, err := cfg.Helpdesk.Location()
	if err != nil {
		return err
	}
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		TicketRepo: backend.Tickets,
		Logger:     logger,
		Location:   location,
	})

	switch command {
	case "reset":
		tickets := service.NewTicketService(service.TicketDependencies{
			TicketRepo: backend.Tickets,
			Logger:     logger,
			Config:     cfg.Helpdesk,
			Seed:       backend.Seed.Tickets,
		})
		if err := tickets.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "restored %d tickets\n", len(backend.Seed.Tickets))
		return nil
	case "stats":
		opts, err := statsOptions(*critical, *resolved)
		if err != nil {
			return err
		}
		stats, err := dashboard.Stats(ctx, opts)
		if err != nil {
			return err
		}
		return printJSON(stdout, stats)
	case "volume":
		points, err := dashboard.Volume(ctx, *days)
		if err != nil {
			return err
		}
		return printJSON(stdout, points)
	}
	return export(ctx, dashboard, *out, stdout, logger)
}

func statsOptions(critical, resolved string) (analytics.StatsOptions, error) {
	var opts analytics.StatsOptions
	switch critical {
	case "all":
		opts.Critical = analytics.CriticalAll
	case "active":
		opts.Critical = analytics.CriticalExcludingClosed
	default:
		return opts, fmt.Errorf("--critical must be all or active, got %q", critical)
	}
	switch resolved {
	case "resolved_or_closed":
		opts.ResolvedToday = analytics.ResolvedOrClosed
	case "resolved_only":
		opts.ResolvedToday = analytics.ResolvedOnly
	default:
		return opts, fmt.Errorf("--resolved must be resolved_or_closed or resolved_only, got %q", resolved)
	}
	return opts, nil
}

func export(ctx context.Context, dashboard *service.DashboardService, path string, stdout io.Writer, logger *zap.Logger) error {
	var buf bytes.Buffer
	name, err := dashboard.WriteReport(ctx, &buf, analytics.StatsOptions{})
	if err != nil {
		return err
	}
	if path == "" {
		path = name
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("report exported", zap.String("path", path), zap.Int("bytes", buf.Len()))
	fmt.Fprintln(stdout, path)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
