package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/scheduler"
	"github.com/user/llmbench/internal/telegram"
	"github.com/user/llmbench/internal/web"
)

var serveOpts struct {
	addr     string
	telegram bool
}

func init() {
	rootCmd.AddCommand(serveCmd, stopCmd)
	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveOpts.telegram, "telegram", false, "also run the Telegram bot when a token is configured")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func pidPath(dir string) string {
	return filepath.Join(dir, "llmbench.pid")
}

func writePIDFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := pidPath(dir)
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return path, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := writePIDFile(a.cfg.History.Dir)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	opts := []web.Option{web.WithTitle(a.cfg.Agent.Title)}
	if a.store != nil {
		opts = append(opts, web.WithHistory(a.store))
	}

	var services []func(context.Context) error

	ag, err := newAgent(a)
	if err != nil {
		a.log.Warnw("agent endpoints disabled", "error", err)
	} else {
		limits := agent.LimitsFrom(a.cfg.Agent)
		opts = append(opts, web.WithAgent(ag, limits))

		if serveOpts.telegram && a.cfg.Telegram.Token != "" {
			bot, err := telegram.New(a.cfg.Telegram.Token, ag, limits, a.log)
			if err != nil {
				return fmt.Errorf("create telegram adapter: %w", err)
			}
			services = append(services, func(ctx context.Context) error {
				a.log.Infow("telegram adapter started")
				bot.Start(ctx)
				return nil
			})
		}
	}

	jobs, err := scheduler.ParseJobs(a.cfg.Schedules)
	if err != nil {
		return err
	}
	if len(jobs) > 0 {
		sched := scheduler.New(jobs, func(ctx context.Context, job scheduler.Job) {
			cmp, err := a.svc.CompareAll(ctx, job.Query, job.Providers, job.ModelTypes)
			if err != nil {
				a.log.Errorw("scheduled comparison failed", "name", job.Name, "error", err)
				return
			}
			a.log.Infow("scheduled comparison finished", "name", job.Name,
				"results", len(cmp.Results), "warnings", len(cmp.Warnings))
		}, a.log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	addr := serveOpts.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := web.NewServer(a.svc, a.log, opts...)
	services = append(services, func(ctx context.Context) error {
		return srv.Run(ctx, addr)
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "Serving on %s (PID file %s)\n", addr, path)
	return runServices(ctx, services...)
}

// runServices runs every service until ctx is canceled or one fails, and
// returns once all of them have stopped.
func runServices(ctx context.Context, services ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range services {
		g.Go(func() error { return run(gctx) })
	}
	return g.Wait()
}

// readPID reads the PID written by serve and checks the process exists
// by sending signal 0.
func readPID() (int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(pidPath(cfg.History.Dir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("no running server (PID file not found)")
		}
		return 0, fmt.Errorf("read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, fmt.Errorf("no running server (process %d not found)", pid)
	}
	return pid, nil
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := readPID()
		if err != nil {
			return err
		}
		proc, err := os.FindProcess(pid)
		if err != nil {
			return fmt.Errorf("find process: %w", err)
		}
		if err := proc.Signal(syscall.SIGTERM); err != nil {
			return fmt.Errorf("send SIGTERM: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGTERM to server (PID %d).\n", pid)
		return nil
	},
}
