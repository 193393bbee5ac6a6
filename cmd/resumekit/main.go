// Command resumekit renders a résumé record to HTML on stdout.
//
//	resumekit resume.yaml > resume.html
//
// Diagnostics go to stderr; set RESUMEKIT_LOG=debug|info|warn|error to
// change their verbosity.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vinayprograms/resumekit/cache"
	"github.com/vinayprograms/resumekit/config"
	"github.com/vinayprograms/resumekit/credentials"
	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/fetch"
	"github.com/vinayprograms/resumekit/github"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/pipeline"
	"github.com/vinayprograms/resumekit/projects"
	"github.com/vinayprograms/resumekit/render"
	"github.com/vinayprograms/resumekit/shutdown"
	"github.com/vinayprograms/resumekit/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	configPath string
	noCache    bool
	template   string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "resumekit:", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "resumekit <input.yaml>",
		Short:         "Render a résumé record with imported projects and resolved citations",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default: "+config.EnvPath+" or resumekit.toml)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore and do not write the resolved-record cache")
	cmd.Flags().StringVar(&opts.template, "template", "", "template file to use instead of the built-in one")
	return cmd
}

func run(ctx context.Context, inputPath string, opts options, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := shutdown.Signals(ctx)
	defer stop()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	logger := logging.New()
	if _, set := os.LookupEnv(logging.EnvLevel); !set {
		if level, ok := logging.ParseLevel(cfg.Log.Level); ok {
			logger.SetLevel(level)
		}
	}

	coord := shutdown.New(logger)
	defer coord.Close(shutdown.DefaultTimeout)

	tcfg := telemetry.ProviderConfig{
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Insecure: cfg.Telemetry.Insecure,
		Debug:    cfg.Telemetry.Debug,
		Version:  version,
	}
	if telemetry.Enabled(tcfg) {
		provider, err := telemetry.InitProvider(ctx, tcfg)
		if err != nil {
			logger.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			coord.Register("telemetry", shutdown.PhaseFlush, provider.Shutdown)
		}
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "reading input")
	}

	// A .env file in the working directory may carry source tokens. Variables
	// already set in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("ignoring .env", map[string]interface{}{"error": err.Error()})
	}

	creds, credPath, err := credentials.Load()
	if err != nil {
		return err
	}
	if credPath != "" {
		logger.Debug("credentials loaded", map[string]interface{}{"path": credPath})
	}

	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return err
	}
	client := fetch.New(fetch.Config{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           timeout,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})

	renderer, err := newRenderer(opts.template, logger)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Sources: map[string]projects.Source{
			github.SourceName: github.New(client.HTTPClient(), logger),
		},
		Tokens:   creds,
		Fetcher:  client,
		Renderer: renderer,
		Logger:   logger,
	}

	if path := cfg.CachePath(inputPath); path != "" && !opts.noCache {
		store, err := cache.OpenBolt(path)
		if err != nil {
			// A locked or unreadable cache only costs a refetch.
			logger.Warn("cache disabled", map[string]interface{}{"path": path, "error": err.Error()})
		} else {
			p.Cache = store
			coord.Register("cache", shutdown.PhaseStorage, func(context.Context) error {
				return store.Close()
			})
		}
	}

	return p.Build(ctx, input, out)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, _, err := config.Load()
	return cfg, err
}

func newRenderer(path string, logger *logging.Logger) (*render.Renderer, error) {
	if path == "" {
		return render.New(logger)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "reading template")
	}
	return render.NewWithTemplate(path, string(text), logger)
}
