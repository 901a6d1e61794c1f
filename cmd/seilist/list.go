package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/database"
	seilog "github.com/automatizamg/seilist/internal/log"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/pipeline"
	"github.com/automatizamg/seilist/internal/portal"
	"github.com/automatizamg/seilist/internal/report"
	"github.com/automatizamg/seilist/internal/session"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [saida]",
		Short: "List every process of the unit and export them",
		Long: `List signs in, opens the process control screen of the configured unit and
walks every page of the Recebidos and Gerados groups. The result is written
to an .xlsx file with one row per process.

Required settings: SEI_USER, SEI_PASS, SEI_ORGAO and SEI_UNIDADE.

Examples:
  # Write ./saida/processos.xlsx
  seilist list

  # Write into a directory, also print a console table
  seilist list -o ./relatorios/ --table

  # Keep the raw pages for troubleshooting
  seilist list --debug --save-debug-html --data-dir ./tmp

  # Also export JSON and a Markdown summary
  seilist list --json run.json --markdown run.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runListCmd,
	}

	addListFlags(cmd)

	return cmd
}

// addListFlags registers the listing flags. The root command shares them.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("saida", "o", "",
		"Output .xlsx path or directory (default: SEI_SAIDA or "+config.DefaultOutputPath+")")
	cmd.Flags().String("env-file", "",
		"dotenv file with SEI_* variables (default: "+config.DefaultEnvFile+" if present)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")
	cmd.Flags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.Flags().Bool("log-json", false, "Write logs as JSON")
	cmd.Flags().Bool("save-debug-html", false, "Save every fetched page under <data-dir>/debug")
	cmd.Flags().String("data-dir", "", "Scratch directory for debug pages (default: SEI_DATA_DIR or "+config.DefaultDataDir+")")
	cmd.Flags().String("json", "", "Also write the run as JSON to this path")
	cmd.Flags().String("markdown", "", "Also write a Markdown summary to this path")
	cmd.Flags().Bool("table", false, "Print the listing as a console table")
	cmd.Flags().Bool("no-history", false, "Do not record the run in the history database")
}

// listOptions holds the parsed flags of a listing.
type listOptions struct {
	output        string
	envFile       string
	envFileSet    bool
	configPath    string
	debug         bool
	logJSON       bool
	saveDebugHTML bool
	dataDir       string
	jsonPath      string
	markdownPath  string
	table         bool
	noHistory     bool
}

// parseListOptions reads the listing flags and the optional output argument.
func parseListOptions(cmd *cobra.Command, args []string) (*listOptions, error) {
	flags := cmd.Flags()
	opts := &listOptions{}

	var err error
	if opts.output, err = flags.GetString("saida"); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		opts.output = args[0]
	}
	if opts.envFile, err = flags.GetString("env-file"); err != nil {
		return nil, err
	}
	opts.envFileSet = flags.Changed("env-file")
	if opts.configPath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if opts.debug, err = flags.GetBool("debug"); err != nil {
		return nil, err
	}
	if opts.logJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	if opts.saveDebugHTML, err = flags.GetBool("save-debug-html"); err != nil {
		return nil, err
	}
	if opts.dataDir, err = flags.GetString("data-dir"); err != nil {
		return nil, err
	}
	if opts.jsonPath, err = flags.GetString("json"); err != nil {
		return nil, err
	}
	if opts.markdownPath, err = flags.GetString("markdown"); err != nil {
		return nil, err
	}
	if opts.table, err = flags.GetBool("table"); err != nil {
		return nil, err
	}
	if opts.noHistory, err = flags.GetBool("no-history"); err != nil {
		return nil, err
	}
	return opts, nil
}

// loadOptions turns the flags into config.Load options.
func (o *listOptions) loadOptions(logger *slog.Logger) []config.LoadOption {
	loadOpts := []config.LoadOption{config.WithLogger(logger)}
	if o.configPath != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configPath))
	}
	if o.envFileSet {
		loadOpts = append(loadOpts, config.WithEnvFile(o.envFile))
	}
	loadOpts = append(loadOpts, config.WithOverride(func(s *config.Settings) {
		if o.output != "" {
			s.OutputPath = o.output
		}
		if o.debug {
			s.Debug = true
		}
		if o.saveDebugHTML {
			s.SaveDebugHTML = true
		}
		if o.dataDir != "" {
			s.DataDir = o.dataDir
		}
		if o.noHistory {
			s.HistoryDir = ""
		}
	}))
	return loadOpts
}

func (o *listOptions) newLogger(w io.Writer, verbose bool) *slog.Logger {
	if o.logJSON {
		return seilog.NewSecureJSONLogger(w, verbose)
	}
	return seilog.NewSecureLogger(w, verbose)
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseListOptions(cmd, args)
	if err != nil {
		return err
	}

	_, err = runListing(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return err
}

// runListing loads the configuration, runs the listing pipeline and
// exports the result. Logs go to stderr, the console table to stdout.
// Every error it returns has been logged. extra options are applied after
// the flag-derived ones.
func runListing(ctx context.Context, opts *listOptions, stdout, stderr io.Writer, extra ...config.LoadOption) (*model.Run, error) {
	logger := opts.newLogger(stderr, opts.debug)

	settings, creds, err := config.Load(append(opts.loadOptions(logger), extra...)...)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return nil, &loggedError{err: err}
	}
	if settings.Debug && !opts.debug {
		logger = opts.newLogger(stderr, true)
	}

	run := model.NewRun(settings.OrgCode, settings.TargetUnit)
	logger.Info("starting listing",
		"run", run.ID,
		"org", settings.OrgCode,
		"unit", settings.TargetUnit,
		"user", creds.Username,
	)

	err = listProcesses(ctx, settings, creds, run, logger)
	run.Finish(err)

	if err == nil {
		if err = exportRun(run, settings, opts, stdout, logger); err != nil {
			run.Finish(err)
		}
	}

	saveHistory(context.WithoutCancel(ctx), settings, run, logger)

	if err != nil {
		switch {
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			logger.Error("interrupted by user", "records", run.RecordCount())
		case model.IsDomainError(err):
			logger.Error("listing failed", "error", err)
		default:
			logger.Error("unexpected error", "run", run.ID, "error", err)
		}
		return run, &loggedError{err: err}
	}

	logger.Info("listing finished",
		"records", run.RecordCount(),
		"received", run.Records.CountByCategory(model.CategoryReceived),
		"generated", run.Records.CountByCategory(model.CategoryGenerated),
		"duration", run.Duration().Round(time.Millisecond),
	)
	return run, nil
}

// listProcesses owns the HTTP session for the whole run. The session is
// closed on every exit path.
func listProcesses(ctx context.Context, settings *config.Settings, creds config.Credentials, run *model.Run, logger *slog.Logger) error {
	sess, err := session.Open(settings, session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("failed to close session", "error", cerr)
		}
	}()

	p := portal.New(sess, settings, portal.WithLogger(logger))
	return pipeline.NewListing(p, creds, logger).Execute(ctx, run)
}

// exportRun writes the spreadsheet and the optional extra outputs
// concurrently.
func exportRun(run *model.Run, settings *config.Settings, opts *listOptions, stdout io.Writer, logger *slog.Logger) error {
	path, err := report.ResolveOutputPath(settings.OutputPath)
	if err != nil {
		return err
	}

	writers := []report.Writer{
		report.NewFileWriter(path, func(w io.Writer) report.Writer {
			return report.NewXLSXWriter(w, report.WithXLSXLogger(logger))
		}),
	}
	if opts.jsonPath != "" {
		writers = append(writers, report.NewFileWriter(opts.jsonPath, func(w io.Writer) report.Writer {
			return report.NewJSONWriter(w, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		}))
	}
	if opts.markdownPath != "" {
		writers = append(writers, report.NewFileWriter(opts.markdownPath, func(w io.Writer) report.Writer {
			return report.NewMarkdownWriter(w)
		}))
	}
	if opts.table {
		writers = append(writers, report.NewTableWriter(stdout))
	}

	if _, err := report.NewMultiWriter(writers...).Write(run); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	logger.Info("spreadsheet written", "path", path, "records", run.RecordCount())
	if opts.jsonPath != "" {
		logger.Info("json written", "path", opts.jsonPath)
	}
	if opts.markdownPath != "" {
		logger.Info("markdown written", "path", opts.markdownPath)
	}
	return nil
}

// saveHistory records the run. History is auxiliary: failures are logged
// and never change the outcome of the run.
func saveHistory(ctx context.Context, settings *config.Settings, run *model.Run, logger *slog.Logger) {
	if settings.HistoryDir == "" {
		return
	}
	db, err := database.Open(settings.HistoryDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", settings.HistoryDir, "error", err)
		return
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		logger.Warn("failed to record run in history", "error", err)
		return
	}
	logger.Debug("run recorded in history", "run", run.ID, "db", db.Path())
}
