package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"screenusage/entity"
	"screenusage/launch"
	"screenusage/query"
	"screenusage/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "screenusage",
		Short:         "Screen usage analytics over the screenpipe recording database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional)")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newUsageCmd(&configPath))
	root.AddCommand(newBreakdownCmd(&configPath))
	root.AddCommand(newGoalsCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var tray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := web.NewServer(web.Deps{
				Usage:           a.agg,
				Breakdown:       a.composer,
				Analyst:         a.analyzer,
				Goals:           a.goals,
				Metrics:         a.metrics,
				Log:             a.log,
				RecorderRunning: launch.RecorderProbe(a.cfg.Screenpipe.ProcessName, a.log),
				StoreMode:       a.cfg.Screenpipe.Mode,
			})
			serve := func(ctx context.Context) error {
				return srv.ListenAndServe(ctx, a.cfg.BindAddr)
			}
			if !tray {
				return serve(ctx)
			}
			return launch.RunTray(ctx, launch.TrayOptions{
				DashboardURL: dashboardURL(a.cfg.BindAddr),
				IconPath:     "icon.ico",
				Log:          a.log,
			}, serve)
		},
	}
	cmd.Flags().BoolVar(&tray, "tray", false, "run from the system tray")
	return cmd
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func newUsageCmd(configPath *string) *cobra.Command {
	var rangeFlag, app string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print time per application, or per window with --app",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			tr := query.ParseTimeRange(rangeFlag)
			out := cmd.OutOrStdout()
			if app != "" {
				windows := a.agg.WindowUsage(cmd.Context(), app, tr)
				if len(windows) == 0 {
					_, _ = fmt.Fprintln(out, "no windows")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, w := range windows {
					_, _ = fmt.Fprintf(tw, "%s\t%s\n", formatSeconds(w.Duration), w.Title)
				}
				return tw.Flush()
			}

			summary, apps := a.agg.Summary(cmd.Context(), tr)
			_, _ = fmt.Fprintf(out, "range=%s total=%s apps=%d\n", tr, formatSeconds(summary.TotalScreenTime), summary.ActiveApps)
			printApps(out, apps)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(query.Today), "time range: today|yesterday|week|month")
	cmd.Flags().StringVar(&app, "app", "", "list windows of this application")
	return cmd
}

func printApps(out io.Writer, apps []entity.AppUsage) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, u := range apps {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", u.Name, formatSeconds(u.Duration), u.Percentage)
	}
	_ = tw.Flush()
}

func newBreakdownCmd(configPath *string) *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "breakdown <app>",
		Short: "Print a browser's time per site and content category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			domains := a.composer.DomainBreakdown(cmd.Context(), args[0], query.ParseTimeRange(rangeFlag))
			if len(domains) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no windows")
				return nil
			}
			printBreakdown(cmd.OutOrStdout(), domains)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(query.Today), "time range: today|yesterday|week|month")
	return cmd
}

func printBreakdown(out io.Writer, domains []entity.DomainBreakdown) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, d := range domains {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%d windows\n", d.Domain, formatSeconds(d.Duration), d.Percentage, d.WindowCount)
		for _, s := range d.Subcategories {
			_, _ = fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\t%d windows\n", s.Name, formatSeconds(s.Duration), s.Percentage, s.WindowCount)
		}
	}
	_ = tw.Flush()
}

func newGoalsCmd(configPath *string) *cobra.Command {
	goals := &cobra.Command{Use: "goals", Short: "Manage usage goals"}

	goals.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			list := a.goals.List()
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no goals")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, g := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.1fh/%s\t%s\n", g.ID, g.Type, g.Priority, g.Target, g.Period, g.Description)
			}
			return tw.Flush()
		},
	})

	var (
		goalType, period, priority string
		target                     float64
		apps, categories           []string
	)
	addCmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			g, err := a.goals.Add(entity.UserGoal{
				Type:        entity.GoalType(goalType),
				Description: strings.Join(args, " "),
				Target:      target,
				Period:      entity.GoalPeriod(period),
				Priority:    entity.Priority(priority),
				Apps:        apps,
				Categories:  categories,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal added: %s\n", g.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&goalType, "type", string(entity.GoalScreenTime), "screen_time|app_limit|focus_time|content_limit|custom")
	addCmd.Flags().Float64Var(&target, "target", 0, "target hours per period")
	addCmd.Flags().StringVar(&period, "period", string(entity.PeriodDaily), "daily|weekly|monthly")
	addCmd.Flags().StringVar(&priority, "priority", string(entity.PriorityMedium), "high|medium|low")
	addCmd.Flags().StringSliceVar(&apps, "apps", nil, "applications the goal covers")
	addCmd.Flags().StringSliceVar(&categories, "categories", nil, "content categories the goal covers")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.goals.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("goal %s not found", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal removed: %s\n", args[0])
			return nil
		},
	}

	goals.AddCommand(addCmd, removeCmd)
	return goals
}

func formatSeconds(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
