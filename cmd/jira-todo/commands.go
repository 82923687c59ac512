package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hochfrequenz/jira-todo/internal/config"
	"github.com/hochfrequenz/jira-todo/internal/logging"
	"github.com/hochfrequenz/jira-todo/internal/notify"
	"github.com/hochfrequenz/jira-todo/internal/observer"
	"github.com/hochfrequenz/jira-todo/internal/pipeline"
	"github.com/hochfrequenz/jira-todo/internal/report"
)

var (
	checkInputFormat string
	checkFormat      string
	checkWatch       bool
	checkDesktop     bool
)

func init() {
	// check command
	checkCmd := &cobra.Command{
		Use:   "check [FILE]",
		Short: "Check TODO records read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	checkCmd.Flags().StringVar(&checkInputFormat, "input-format", "", "input format: json or yaml (default from file extension)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "text", "report format: text or json")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "re-run the check whenever FILE changes")
	checkCmd.Flags().BoolVar(&checkDesktop, "desktop", false, "show desktop notifications in watch mode")
	rootCmd.AddCommand(checkCmd)

	// config command
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without contacting Jira",
		RunE:  runConfigValidate,
	}
	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	config.LoadDotEnv(envFile)

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK: %d project(s), tracker %s\n",
		len(cfg.Check.Projects), cfg.Tracker.URL)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := logging.New(cmd.ErrOrStderr(), verbose)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter, err := pipeline.NewFilter(cfg, nil, logger)
	if err != nil {
		return err
	}

	outFormat, err := report.ParseFormat(checkFormat)
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
	}

	inFormat := pipeline.FormatFromPath(path)
	if checkInputFormat != "" {
		if inFormat, err = pipeline.ParseFormat(checkInputFormat); err != nil {
			return err
		}
	}

	notifiers := []notify.Notifier{notify.NewSlackNotifier(cfg.Notifications.SlackWebhook)}
	if checkWatch && checkDesktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}

	r := &checkRunner{
		filter:    filter,
		path:      path,
		inFormat:  inFormat,
		outFormat: outFormat,
		out:       cmd.OutOrStdout(),
		stdin:     cmd.InOrStdin(),
		notifier:  notify.NewMultiNotifier(notifiers...),
		logger:    logger,
	}

	if !checkWatch {
		return r.run(cmd.Context())
	}
	if path == "" {
		return fmt.Errorf("--watch requires a FILE argument")
	}
	return r.watch(cmd.Context())
}

type checkRunner struct {
	filter    *pipeline.Filter
	path      string
	inFormat  pipeline.Format
	outFormat report.Format
	out       io.Writer
	stdin     io.Reader
	notifier  notify.Notifier
	logger    *slog.Logger

	failing bool
}

func (r *checkRunner) openInput() (*os.File, error) {
	if r.path == "" {
		return nil, nil
	}
	return os.Open(r.path)
}

func (r *checkRunner) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var in io.Reader = r.stdin
	f, err := r.openInput()
	if err != nil {
		return err
	}
	if f != nil {
		defer f.Close()
		in = f
	}

	records, err := pipeline.ReadRecords(in, r.inFormat)
	if err != nil {
		return err
	}

	res, err := r.filter.Run(ctx, records)
	if err != nil {
		return err
	}

	if err := report.Write(r.out, res, r.outFormat); err != nil {
		return err
	}

	r.notify(res)
	return res.Err()
}

func (r *checkRunner) notify(res *pipeline.Result) {
	var n *notify.Notification
	switch {
	case res.Failed():
		msg := notify.CheckFailed(report.Summary(res), res.Failures)
		n = &msg
	case r.failing:
		msg := notify.CheckRecovered(report.Summary(res))
		n = &msg
	}
	r.failing = res.Failed()

	if n == nil {
		return
	}
	if err := r.notifier.Send(*n); err != nil {
		r.logger.Warn("failed to send notification", "err", err)
	}
}

func (r *checkRunner) watch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	changed := make(chan struct{}, 1)
	fw, err := observer.NewFileWatcher(func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, r.logger)
	if err != nil {
		return err
	}
	if err := fw.Add(r.path); err != nil {
		return err
	}
	fw.Start(ctx)
	defer fw.Stop()

	r.runAndLog(ctx)
	r.logger.Info("watching for changes", "file", r.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			r.runAndLog(ctx)
		}
	}
}

// runAndLog keeps watch mode alive across failing checks.
func (r *checkRunner) runAndLog(ctx context.Context) {
	if err := r.run(ctx); err != nil {
		r.logger.Error("check failed", "err", err)
	}
}
