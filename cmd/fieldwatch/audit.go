// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/audit"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/config"
	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/ledger"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/notify"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/report"
)

// auditOptions collects every flag of the audit command.
type auditOptions struct {
	configFile string
	token      string
	owner      string
	ownerType  string
	project    int
	dryRun     bool
	channel    string
	outputFile string
	pageSize   int
	logJSON    bool
	timeout    time.Duration
}

// auditCmd represents the audit command
func newAuditCommand() *cobra.Command {
	opts := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a project board and notify assignees of missing fields",
		Long: `Audit a GitHub Projects V2 board for closed issues that are missing
required custom field values and post a reminder comment to each.

The project board can be identified via flags, environment variables, or a
configuration file. Authentication is required via GitHub token:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN environment variable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			return runAudit(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&opts.owner, "owner", "", "Project owner login (organization or user)")
	cmd.Flags().StringVar(&opts.ownerType, "owner-type", "", "Project owner type: organization or user")
	cmd.Flags().IntVar(&opts.project, "project", 0, "Project board number")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would be posted without posting")
	cmd.Flags().StringVar(&opts.channel, "channel", "", "Notification channel (default: comment)")
	cmd.Flags().StringVar(&opts.outputFile, "output", "", "Audit report file path (default: stdout)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Items per page when fetching (max 100)")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON instead of text")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall run timeout")

	return cmd
}

// runAudit executes the audit command
func runAudit(ctx context.Context, cmd *cobra.Command, opts *auditOptions) error {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("%v: %w", err, fwerrors.ErrConfig)
	}
	applyFlagOverrides(cfg, cmd, opts)

	if err := cfg.Validate(); err != nil {
		return err
	}

	token := opts.token
	if token == "" {
		token = os.Getenv(cfg.GitHub.TokenEnv)
	}
	if token == "" {
		return fmt.Errorf("GitHub token not found. Set %s or use --token flag: %w",
			cfg.GitHub.TokenEnv, fwerrors.ErrConfig)
	}

	logger := newLogger(opts.logJSON)
	ref := cfg.ProjectRef()
	client := github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint)

	fields, err := buildFieldSpecs(cfg)
	if err != nil {
		return err
	}

	dedup, err := buildDeduplicator(cfg, client, ref)
	if err != nil {
		return err
	}

	dispatcher, err := notify.NewDispatcher(notify.Channel(cfg.Notify.Channel), client, cfg.Notify.DryRun, logger)
	if err != nil {
		return err
	}

	var writer report.Writer
	if opts.outputFile == "" {
		writer = report.NewWriter(os.Stdout)
	} else {
		fileWriter, fErr := report.NewFileWriter(opts.outputFile)
		if fErr != nil {
			return fmt.Errorf("failed to create report file: %w", fErr)
		}
		writer = fileWriter
	}
	defer writer.Close()

	logger.Info("starting audit",
		"project", ref.String(),
		"fields", len(fields),
		"dry_run", cfg.Notify.DryRun)

	pipeline := &audit.Pipeline{
		Client:     client,
		Ref:        ref,
		Fields:     fields,
		PageSize:   cfg.Defaults.PageSize,
		Dedup:      dedup,
		Dispatcher: dispatcher,
		Report:     writer,
		Logger:     logger,
	}

	summary, runErr := pipeline.Run(ctx)
	if summary != nil {
		logger.Info("audit complete",
			"issues_flagged", summary.IssuesFlagged,
			"posted", summary.Posted,
			"suppressed", summary.Suppressed,
			"dry_run_skipped", summary.DryRunSkipped,
			"failed", summary.Failed,
			"failed_field_passes", summary.FailedFieldPasses(),
			"duration", summary.Duration)
	}
	// Per-issue notification failures are logged and reported but never fail
	// the process; only startup, configuration, and whole-run fetch errors do.
	return runErr
}

// applyFlagOverrides lays command-line flags over the loaded configuration.
// Boolean and numeric flags only override when explicitly set, so a config
// file value survives an unset flag.
func applyFlagOverrides(cfg *config.Config, cmd *cobra.Command, opts *auditOptions) {
	if opts.owner != "" {
		cfg.Project.Owner = opts.owner
	}
	if opts.ownerType != "" {
		cfg.Project.OwnerType = opts.ownerType
	}
	if opts.project > 0 {
		cfg.Project.Number = opts.project
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Notify.DryRun = opts.dryRun
	}
	if opts.channel != "" {
		cfg.Notify.Channel = opts.channel
	}
	if opts.pageSize > 0 {
		cfg.Defaults.PageSize = opts.pageSize
	}
}

// buildFieldSpecs converts the configured field declarations, dropping the
// ignore list and applying display-name overrides.
func buildFieldSpecs(cfg *config.Config) ([]audit.FieldSpec, error) {
	ignored := make(map[string]bool, len(cfg.IgnoreFields))
	for _, name := range cfg.IgnoreFields {
		ignored[name] = true
	}

	var fields []audit.FieldSpec
	for _, f := range cfg.Fields {
		if ignored[f.Name] {
			continue
		}
		fieldType, err := github.ParseFieldType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		display := f.DisplayName
		if display == "" {
			display = cfg.DisplayNames[f.Name]
		}
		fields = append(fields, audit.FieldSpec{
			Name:        f.Name,
			Type:        fieldType,
			DisplayName: display,
		})
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("every declared field is ignored: %w", fwerrors.ErrConfig)
	}
	return fields, nil
}

// buildDeduplicator selects the configured deduplication strategy.
func buildDeduplicator(cfg *config.Config, client github.Client, ref github.ProjectRef) (notify.Deduplicator, error) {
	switch cfg.Notify.Dedup {
	case "comments":
		return notify.NewCommentScan(client), nil
	case "ledger":
		dir := cfg.Notify.LedgerDir
		if dir == "" {
			dir = ledger.DefaultDir()
		}
		l, err := ledger.Open(ledger.FilePath(dir, ref), ref)
		if err != nil {
			return nil, fmt.Errorf("opening notification ledger: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown dedup strategy %q: %w", cfg.Notify.Dedup, fwerrors.ErrConfig)
	}
}

// newLogger builds the run logger. Logs go to stderr so the NDJSON report on
// stdout stays machine-readable.
func newLogger(jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, fwerrors.ErrInvalidToken) ||
		errors.Is(err, fwerrors.ErrProjectNotFound) ||
		errors.Is(err, fwerrors.ErrRateLimit) ||
		errors.Is(err, fwerrors.ErrConfig) ||
		errors.Is(err, fwerrors.ErrUnsupportedFieldType) {
		return 2 // Authentication/authorization/configuration errors
	}

	if errors.Is(err, fwerrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
