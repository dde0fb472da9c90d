package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pathlight/internal/bootstrap"
	accountdto "pathlight/internal/modules/account/dto"
	"pathlight/internal/modules/paths/dto"
	"pathlight/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var homeDir string

	root := &cobra.Command{
		Use:           "pathlight",
		Short:         "Learning path companion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default ~/.pathlight)")

	root.AddCommand(newTUICmd(&homeDir))
	root.AddCommand(newGenerateCmd(&homeDir))
	root.AddCommand(newPathCmd(&homeDir))
	root.AddCommand(newMilestoneCmd(&homeDir))
	root.AddCommand(newAccountCmds(&homeDir)...)
	root.AddCommand(newInsightCmd(&homeDir))
	root.AddCommand(newHealthCmd(&homeDir))
	return root
}

func loadApp(homeDir string) (*bootstrap.App, error) {
	cfg, err := config.New(homeDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// loadSession wires the app and restores the persisted session so path
// commands act on the right user's partition.
func loadSession(ctx context.Context, homeDir string) (*bootstrap.App, error) {
	app, err := loadApp(homeDir)
	if err != nil {
		return nil, err
	}
	app.AccountCLI.Restore(ctx)
	return app, nil
}

func newTUICmd(homeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the pathlight terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadSession(context.Background(), *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app)
		},
	}
}

func newGenerateCmd(homeDir *string) *cobra.Command {
	var expertise, commitment, style string
	var weeks int
	var goals []string
	var save bool

	generate := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate a learning path and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			out, err := app.PathsCLI.Generate(ctx, args[0], expertise, weeks, commitment, style, goals)
			if err != nil {
				return err
			}
			if !out.Immediate {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task %s accepted\n", out.TaskID)
				if err := waitForResult(ctx, cmd, app); err != nil {
					return err
				}
			}
			detail, ok := app.PathsCLI.CurrentPath()
			if !ok {
				return fmt.Errorf("generation finished without a result")
			}
			printDetail(cmd, detail)
			if save {
				saved, err := app.PathsCLI.SaveCurrent(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved as %s (remote=%v)\n", saved.PathID, saved.RemoteSaved)
			}
			return nil
		},
	}
	generate.Flags().StringVar(&expertise, "expertise", "beginner", "expertise level")
	generate.Flags().IntVar(&weeks, "weeks", 4, "duration in weeks")
	generate.Flags().StringVar(&commitment, "commitment", "", "time commitment, e.g. '5 hours/week'")
	generate.Flags().StringVar(&style, "style", "", "learning style")
	generate.Flags().StringSliceVar(&goals, "goals", nil, "goals")
	generate.Flags().BoolVar(&save, "save", false, "save the result when done")
	return generate
}

func waitForResult(ctx context.Context, cmd *cobra.Command, app *bootstrap.App) error {
	lastStatus := ""
	for {
		select {
		case <-ctx.Done():
			app.PathsCLI.CancelGeneration()
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
		state := app.PathsCLI.GenerationState()
		if state.Status != lastStatus && state.Status != "" {
			lastStatus = state.Status
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d/%d)\n", state.Status, state.Step+1, state.StepCount)
		}
		if state.Error != "" {
			return fmt.Errorf("%s", state.Error)
		}
		if !state.Generating {
			return nil
		}
	}
}

func newPathCmd(homeDir *string) *cobra.Command {
	path := &cobra.Command{Use: "path", Short: "Saved path commands"}

	path.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			paths := app.PathsCLI.ListPaths(ctx)
			if len(paths) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no saved paths")
				return nil
			}
			for _, p := range paths {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s  %d milestones  %.0f%%\n",
					p.ID, p.Topic, p.Milestones, p.Progress*100)
			}
			return nil
		},
	})

	path.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			detail, err := app.PathsCLI.GetPath(ctx, args[0])
			if err != nil {
				return err
			}
			printDetail(cmd, detail)
			return nil
		},
	})

	path.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.PathsCLI.DeletePath(ctx, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	})

	path.AddCommand(&cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved path to markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.PathsCLI.ExportPath(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "exported to", out.FilePath)
			return nil
		},
	})

	return path
}

func newMilestoneCmd(homeDir *string) *cobra.Command {
	milestone := &cobra.Command{Use: "milestone", Short: "Milestone completion commands"}

	set := func(done bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 1 {
				return fmt.Errorf("milestone number must be a positive integer")
			}
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.PathsCLI.SetMilestoneDone(ctx, args[0], index-1, done); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "milestone %d done=%v\n", index, done)
			return nil
		}
	}

	milestone.AddCommand(&cobra.Command{
		Use:   "done <path-id> <n>",
		Short: "Mark milestone n as completed",
		Args:  cobra.ExactArgs(2),
		RunE:  set(true),
	})
	milestone.AddCommand(&cobra.Command{
		Use:   "undone <path-id> <n>",
		Short: "Mark milestone n as not completed",
		Args:  cobra.ExactArgs(2),
		RunE:  set(false),
	})
	return milestone
}

func newAccountCmds(homeDir *string) []*cobra.Command {
	var name, email, password string

	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and sync saved paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			session, err := app.AccountCLI.Login(ctx, email, password)
			if err != nil {
				return err
			}
			printSession(cmd, session)
			return nil
		},
	}
	login.Flags().StringVar(&email, "email", "", "account email")
	login.Flags().StringVar(&password, "password", "", "account password")

	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			session, err := app.AccountCLI.Register(ctx, name, email, password)
			if err != nil {
				return err
			}
			printSession(cmd, session)
			return nil
		},
	}
	register.Flags().StringVar(&name, "name", "", "display name")
	register.Flags().StringVar(&email, "email", "", "account email")
	register.Flags().StringVar(&password, "password", "", "account password")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			session, err := app.AccountCLI.Logout(ctx)
			if err != nil {
				return err
			}
			printSession(cmd, session)
			return nil
		},
	}

	guest := &cobra.Command{
		Use:   "guest",
		Short: "Browse with device-local storage only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			printSession(cmd, app.AccountCLI.ContinueAsGuest(ctx))
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadSession(ctx, *homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			printSession(cmd, app.AccountCLI.Current())
			return nil
		},
	}

	return []*cobra.Command{login, register, logout, guest, whoami}
}

func newInsightCmd(homeDir *string) *cobra.Command {
	insight := &cobra.Command{Use: "insight", Short: "Topic insight provider commands"}

	insight.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			providers, err := app.InsightCLI.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no providers configured")
				return nil
			}
			for _, p := range providers {
				state := "disabled"
				if p.Enabled {
					state = "enabled"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  caps=%v\n", p.Name, p.Version, state, p.Capabilities)
			}
			return nil
		},
	})

	insight.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check provider binaries and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			results, err := app.InsightCLI.Doctor(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%v binary=%v lifecycle=%v",
					r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  (%s)", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	insight.AddCommand(&cobra.Command{
		Use:   "probes <provider>",
		Short: "List a provider's probes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			probes, err := app.InsightCLI.ListProbes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, p := range probes {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s [%s]  %s\n", p.ID, p.Title, p.Capability, p.Description)
			}
			return nil
		},
	})

	var probe string
	lookup := &cobra.Command{
		Use:   "lookup <provider> <topic>",
		Short: "Ask a provider about a topic",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			topic := args[1]
			for _, extra := range args[2:] {
				topic += " " + extra
			}
			out, err := app.InsightCLI.Lookup(cmd.Context(), args[0], probe, topic)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s/%s on %q:\n", out.Provider, out.Probe, out.Topic)
			for _, s := range out.Signals {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %.2f  %s\n", s.Label, s.Score, s.Summary)
				if s.URL != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", s.URL)
				}
			}
			return nil
		},
	}
	lookup.Flags().StringVar(&probe, "probe", "", "probe id (defaults to the provider's only probe)")
	insight.AddCommand(lookup)

	return insight
}

func newHealthCmd(homeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the remote service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*homeDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.API.Health(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func printDetail(cmd *cobra.Command, d dto.PathDetail) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s\n", d.Topic)
	if d.Description != "" {
		_, _ = fmt.Fprintf(w, "%s\n", d.Description)
	}
	_, _ = fmt.Fprintf(w, "progress: %.0f%%\n\n", d.Progress*100)
	for i, m := range d.Milestones {
		mark := " "
		if m.Done {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "[%s] %d. %s", mark, i+1, m.Title)
		if m.Estimate != "" {
			_, _ = fmt.Fprintf(w, " (%s)", m.Estimate)
		}
		_, _ = fmt.Fprintln(w)
		for _, r := range m.Resources {
			_, _ = fmt.Fprintf(w, "      %s: %s\n", r.Type, r.Title)
		}
	}
}

func printSession(cmd *cobra.Command, s accountdto.SessionOutput) {
	w := cmd.OutOrStdout()
	if s.Guest {
		_, _ = fmt.Fprintln(w, "guest session (device-local storage)")
	} else {
		name := s.Name
		if name == "" {
			name = s.Email
		}
		_, _ = fmt.Fprintf(w, "signed in as %s (%s)\n", name, s.UserID)
	}
	source := "local"
	if s.FromRemote {
		source = "remote"
	}
	_, _ = fmt.Fprintf(w, "%d paths loaded (%s)\n", s.PathsLoaded, source)
	if s.Warning != "" {
		_, _ = fmt.Fprintln(w, "warning:", s.Warning)
	}
}
