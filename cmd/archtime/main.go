// Command archtime is the ArchTime client: clock in/out against the server
// when reachable, queue events durably when not, and reconcile the queue on
// demand.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	v1 "github.com/johnlaff/ArchTime/archtime/v1"
	"github.com/johnlaff/ArchTime/client"
	"github.com/johnlaff/ArchTime/utils"
)

type app struct {
	api        *v1.ArchtimeClient
	queue      client.PendingStore
	session    *client.Session
	reconciler *client.Reconciler
	notifier   client.Notifier
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	root := &cobra.Command{
		Use:           "archtime",
		Short:         "Clock in and out, offline-safe",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to client config")

	root.AddCommand(
		newInCmd(a),
		newOutCmd(a),
		newStatusCmd(a),
		newSyncCmd(a),
		newSummaryCmd(a),
		newHistoryCmd(a),
		newResolveCmd(a),
		newProjectsCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context, configPath string) error {
	cfg, err := loadClientConfig(configPath)
	if err != nil {
		return err
	}

	a.api = v1.NewArchtimeClient(cfg.ServerURL, cfg.Token)

	queue, err := client.OpenQueue(cfg.QueuePath)
	if err != nil {
		// Degraded mode: online-only; offline actions will be rejected
		// instead of lost.
		log.Printf("offline queue unavailable: %v", err)
		a.queue = client.UnavailableQueue{}
	} else {
		a.queue = queue
	}

	a.notifier = client.NewTerminalNotifier()
	if cfg.DesktopNotify {
		a.notifier = client.MultiNotifier{a.notifier, client.DesktopNotifier{}}
	}

	a.session = client.NewSession(a.api, a.queue, client.WithNotifier(a.notifier))
	a.reconciler = client.NewReconciler(a.api, a.queue)
	a.reconciler.OnApplied(func(*client.PendingEntry) { a.session.Confirm() })

	return a.bootstrap(ctx)
}

// bootstrap mirrors the web app's load sequence: drain the queue if the
// server is reachable, then rebuild session state from the server's view
// plus whatever is still queued.
func (a *app) bootstrap(ctx context.Context) error {
	var server *v1.ActiveSessionDTO
	if a.api.Ping() {
		if n, err := a.reconciler.Sync(ctx); err != nil {
			log.Printf("sync stopped after %d entries: %v", n, err)
		}
		active, err := a.api.Clock.Active()
		if err != nil {
			return fmt.Errorf("fetching active session: %w", err)
		}
		server = active
	}

	pending, err := a.queue.ListAll(ctx)
	if err != nil {
		return err
	}
	return a.session.Bootstrap(server, pending)
}

func newInCmd(a *app) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "in",
		Short: "Clock in, optionally against a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var project *string
			if projectID != "" {
				project = &projectID
			}
			return a.session.ClockIn(cmd.Context(), project)
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id to allocate time to")
	return cmd
}

func newOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "out",
		Short: "Clock out of the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.ClockOut(cmd.Context())
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session and pending queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			active := a.session.Active()
			if active == nil {
				fmt.Println("Not clocked in.")
			} else {
				fmt.Printf("Clocked in since %s (%s)\n",
					active.ClockIn.In(utils.BrasiliaTZ).Format("2006-01-02 15:04"), a.session.Phase())
				if active.ProjectName != nil {
					fmt.Printf("Project: %s\n", *active.ProjectName)
				}
				if a.session.IsOrphaned() {
					fmt.Println("Warning: this session was opened on a previous day. Run 'archtime resolve' to close it.")
				}
			}

			pending, err := a.queue.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) > 0 {
				fmt.Printf("%d event(s) queued for sync.\n", len(pending))
			}
			if !a.queue.Available() {
				fmt.Println("Offline queue storage is unavailable; offline actions are disabled.")
			}
			return nil
		},
	}
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued offline events against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := a.reconciler.Sync(cmd.Context())
			if err != nil {
				return fmt.Errorf("synced %d entrie(s), then stopped: %w", applied, err)
			}
			fmt.Printf("Synced %d entrie(s).\n", applied)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's closed entries and total",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.api.Clock.Summary()
			if err != nil {
				return err
			}
			for _, e := range summary.Entries {
				printEntryLine(e.ClockIn, e.ClockOut, e.TotalMinutes, e.ProjectName)
			}
			fmt.Printf("Total: %s over %d session(s)\n",
				utils.FormatMinutes(summary.TotalMinutes), summary.SessionCount)
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show closed entries for a month (YYYY-MM)",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.api.Clock.History(month)
			if err != nil {
				return err
			}
			for _, e := range history.Entries {
				printEntryLine(e.ClockIn, &e.ClockOut, e.TotalMinutes, e.ProjectName)
			}
			fmt.Printf("Total: %s over %d session(s)\n",
				utils.FormatMinutes(history.TotalMinutes), history.SessionCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to list, e.g. 2026-02 (default: current)")
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Force-close a session left open across a day boundary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session.ResolveOrphan(cmd.Context())
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	projects := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.api.Projects.List()
			if err != nil {
				return err
			}
			for _, p := range all {
				state := ""
				if !p.IsActive {
					state = " (archived)"
				}
				fmt.Printf("%s  %s%s\n", p.ID, p.Name, state)
			}
			return nil
		},
	}

	var name, clientName string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cn *string
			if clientName != "" {
				cn = &clientName
			}
			p, err := a.api.Projects.Create(name, cn, nil, nil)
			if err != nil {
				return err
			}
			fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "project name")
	add.Flags().StringVar(&clientName, "client", "", "client name")
	_ = add.MarkFlagRequired("name")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project (blocked when it has recorded hours)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.api.Projects.Delete(args[0])
		},
	}

	projects.AddCommand(list, add, rm)
	return projects
}

func printEntryLine(clockIn string, clockOut *string, totalMinutes *int, projectName *string) {
	in, err := utils.ParseISOTime(clockIn)
	if err != nil {
		return
	}
	line := in.In(utils.BrasiliaTZ).Format("2006-01-02 15:04")
	if clockOut != nil {
		if out, err := utils.ParseISOTime(*clockOut); err == nil {
			line += " - " + out.In(utils.BrasiliaTZ).Format("15:04")
		}
	}
	if totalMinutes != nil {
		line += "  " + utils.FormatMinutes(*totalMinutes)
	}
	if projectName != nil {
		line += "  [" + *projectName + "]"
	}
	fmt.Println(line)
}
