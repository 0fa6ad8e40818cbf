package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"libinstall/internal/config"
	"libinstall/internal/constants"
	"libinstall/internal/installer"
	"libinstall/internal/logger"
	apperrors "libinstall/pkg/errors"
	"libinstall/pkg/logging"
)

type options struct {
	configFile string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "libinstall",
		Short: "Download and unpack the libraries archive named in package.json",
		Long: "libinstall reads the archive URL stored under libraries.all in package.json, " +
			"downloads the zip, extracts it into the destination directory and removes the download.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to config file (optional, or CONFIG_FILE)")
	flags.String(config.FlagManifest, constants.DefaultManifestPath, "Manifest holding the archive URL")
	flags.String(config.FlagField, constants.DefaultManifestField, "Dotted path of the URL field in the manifest")
	flags.String(config.FlagDest, constants.DefaultDestination, "Directory to extract the archive into")
	flags.String(config.FlagLogLevel, "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(installCmd(opts))
	rootCmd.AddCommand(urlCmd(opts))

	return rootCmd
}

func installCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download the archive and extract it into the destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
	}
}

func urlCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the archive URL configured in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer recoverInto(&err)

			app, ctx, err := setup(cmd, opts, "url")
			if err != nil {
				return err
			}
			defer shutdown(ctx, app)

			url, err := app.ResolveURL(ctx)
			if err != nil {
				report(cmd.OutOrStdout(), app.Config, nil, err)
				return unreported(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func runInstall(cmd *cobra.Command, opts *options) (err error) {
	defer recoverInto(&err)

	app, ctx, err := setup(cmd, opts, "install")
	if err != nil {
		return err
	}
	defer shutdown(ctx, app)

	app.Logger.InfowCtx(ctx, "Starting install",
		"manifest", app.Config.Manifest.Path,
		"destination", app.Config.Install.Destination,
	)

	outcome, err := app.Install(ctx)
	report(cmd.OutOrStdout(), app.Config, outcome, err)
	return unreported(err)
}

func setup(cmd *cobra.Command, opts *options, command string) (*App, context.Context, error) {
	earlyLog := logging.NewEarlyLogTo(cmd.OutOrStdout(), cmd.ErrOrStderr())

	configFile := opts.configFile
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}

	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	app := NewApp(cfg, log, command)
	ctx := logging.WithCommand(app.Context(cmd.Context()), command)

	if err := app.Initialize(ctx); err != nil {
		log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
		return nil, nil, err
	}

	return app, ctx, nil
}

func shutdown(ctx context.Context, app *App) {
	// The run context may already be cancelled by a signal; metrics and
	// spans are still worth flushing.
	if err := app.Shutdown(context.WithoutCancel(ctx)); err != nil {
		app.Logger.WarnwCtx(ctx, "Shutdown incomplete", "error", err)
	}
	_ = app.Logger.Sync()
}

// report prints the user-facing outcome line. Archive and filesystem errors
// print nothing here and surface through cobra's error output instead.
func report(w io.Writer, cfg *config.Config, outcome *installer.Outcome, err error) {
	switch {
	case err == nil && outcome != nil:
		fmt.Fprintf(w, "Download and unzip completed successfully to %s\n", outcome.Destination)
	case apperrors.IsNotFound(err):
		fmt.Fprintf(w, "URL not found in %s.\n", cfg.Manifest.Path)
	case apperrors.IsDownloadFailed(err):
		if status, ok := apperrors.StatusCode(err); ok {
			fmt.Fprintf(w, "Failed to download the file. Status code: %d\n", status)
			return
		}
		fmt.Fprintf(w, "Failed to download the file: %v\n", err)
	}
}

// unreported drops the errors report has already printed as an outcome line.
// Only archive, filesystem and setup errors leave the process with status 1.
func unreported(err error) error {
	if apperrors.IsNotFound(err) || apperrors.IsDownloadFailed(err) {
		return nil
	}
	return err
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = apperrors.RecoverPanic(r)
	}
}
