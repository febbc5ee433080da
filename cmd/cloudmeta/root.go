package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kompox/cloudmeta/internal/logging"
)

const envPrefix = "CLOUDMETA_"

// envOr returns the CLOUDMETA_<name> environment variable or def.
func envOr(name, def string) string {
	if v := os.Getenv(envPrefix + name); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cloudmeta",
		Short:   "Cross-tenant cloud administration",
		Long:    "cloudmeta runs administrative operations (listing, occupancy, bulk stop/destroy, image metadata) across every tenant of an AWS, Eucalyptus or OpenStack provider.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("db-url", envOr("DB_URL", "file:cloudmeta.yml"), "Database URL (env CLOUDMETA_DB_URL) (file:/path/to/cloudmeta.yml | sqlite:/path/to.db)")
	pf.String("config", envOr("CONFIG", ""), "Admin settings file used with sqlite: db-url (env CLOUDMETA_CONFIG)")
	pf.String("log-format", "human", "Log format (human|text|json) (env CLOUDMETA_LOG_FORMAT)")
	pf.String("log-level", "info", "Log level (debug|info|warn|error) (env CLOUDMETA_LOG_LEVEL)")
	pf.String("log-file", envOr("LOG_FILE", "-"), "Log destination (-: stderr, none, auto, or path) (env CLOUDMETA_LOG_FILE)")
	pf.Int("log-retention-days", 7, "Days to keep auto-named log files")
	pf.String("metrics-file", envOr("METRICS_FILE", ""), "Write Prometheus textfile metrics to this path after the command (env CLOUDMETA_METRICS_FILE)")
	pf.Duration("timeout", 10*time.Minute, "Timeout for the whole command")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		format, _ := c.Flags().GetString("log-format")
		if env := os.Getenv(envPrefix + "LOG_FORMAT"); env != "" { // env overrides flag
			format = env
		}
		levelStr, _ := c.Flags().GetString("log-level")
		if env := os.Getenv(envPrefix + "LOG_LEVEL"); env != "" {
			levelStr = env
		}
		level, err := logging.ParseLevel(levelStr)
		if err != nil {
			return err
		}

		output, _ := c.Flags().GetString("log-file")
		retention, _ := c.Flags().GetInt("log-retention-days")
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		now := time.Now()
		cfg := &logging.LogConfig{Output: output, Dir: wd, RetentionDays: retention}
		lf, err := logging.NewLogFile(cfg, now)
		if err != nil {
			return err
		}
		if output == "auto" {
			_ = logging.CleanupOldLogFiles(wd, retention, now)
		}
		l, err := logging.NewWithWriter(format, level, lf.Writer())
		if err != nil {
			_ = lf.Close()
			return err
		}
		l = l.With("runId", uuid.NewString())

		st := newCLIState(lf)
		ctx := logging.WithLogger(c.Context(), l)
		ctx = withCLIState(ctx, st)
		c.SetContext(ctx)
		return nil
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdAdmin())
	cmd.AddCommand(newCmdInstances())
	cmd.AddCommand(newCmdVolumes())
	cmd.AddCommand(newCmdOccupancy())
	cmd.AddCommand(newCmdStopAll())
	cmd.AddCommand(newCmdDestroyAll())
	cmd.AddCommand(newCmdImage())
	cmd.AddCommand(newCmdOps())
	cmd.AddCommand(newCmdMetas())
	return cmd
}

// execute runs root and then, whether or not the command failed, logs the
// failure, writes the metrics file and closes the log file.
func execute(root *cobra.Command) (*cobra.Command, error) {
	executed, err := root.ExecuteC()
	if executed == nil {
		return nil, err
	}
	ctx := executed.Context()
	if ctx == nil {
		ctx = root.Context()
	}
	st := cliStateFrom(ctx)
	if st != nil {
		defer st.close()
		if f := findFlag(executed, "metrics-file"); f != nil && f.Value.String() != "" {
			if werr := st.metrics.WriteTextfile(f.Value.String()); werr != nil {
				err = errors.Join(err, fmt.Errorf("writing metrics file: %w", werr))
			}
		}
	}
	if err != nil && ctx != nil {
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
	}
	return executed, err
}
