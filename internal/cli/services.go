package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/mrz1836/svnbridge/internal/config"
	"github.com/mrz1836/svnbridge/internal/encoding"
	"github.com/mrz1836/svnbridge/internal/reconcile"
	"github.com/mrz1836/svnbridge/internal/state"
	"github.com/mrz1836/svnbridge/internal/svn"
	"github.com/mrz1836/svnbridge/internal/wcroot"
)

// services is the object graph behind every command.
type services struct {
	cfg        *config.Config
	client     *svn.Client
	resolver   *wcroot.Resolver
	reconciler *reconcile.Reconciler
}

// serviceFactory builds services. overrides carries CLI flag values and
// w receives side-by-side viewer output.
type serviceFactory func(ctx context.Context, logger zerolog.Logger, overrides *config.Config, w io.Writer) (*services, error)

// newServices wires configuration, state, runner, resolver, client and
// reconciler for production use.
func newServices(ctx context.Context, logger zerolog.Logger, overrides *config.Config, w io.Writer) (*services, error) {
	cfg, err := config.LoadWithOverrides(logger.WithContext(ctx), overrides)
	if err != nil {
		return nil, err
	}

	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	store, err := state.NewFileStore(statePath)
	if err != nil {
		return nil, err
	}

	runner := svn.NewCLIRunner(svn.RunnerOptions{
		Binary:         cfg.SVN.Binary,
		Locale:         cfg.SVN.Locale,
		Timeout:        cfg.SVN.Timeout,
		MaxOutputBytes: cfg.SVN.MaxOutputBytes,
		Credentials:    credentialsFrom(cfg.SVN),
		Logger:         logger,
	})
	return assembleServices(ctx, cfg, runner, store, logger, w)
}

// assembleServices builds everything above the runner and state store.
func assembleServices(ctx context.Context, cfg *config.Config, runner svn.Runner, store wcroot.RootStore, logger zerolog.Logger, w io.Writer) (*services, error) {
	resolver := wcroot.NewResolver(ctx, svn.NewInfoProber(runner), store, wcroot.WithLogger(logger))
	client := svn.NewClient(runner, resolver, svn.WithClientLogger(logger))

	detector, err := newDetector(cfg.Encoding, logger)
	if err != nil {
		return nil, err
	}

	reconciler := reconcile.New(client, reconcile.Options{
		DiffBinary:       cfg.SVN.DiffBinary,
		Detector:         detector,
		ShowEncodingInfo: cfg.Encoding.ShowEncodingInfo,
		Timeout:          cfg.SVN.Timeout,
		Viewer: &reconcile.DiffViewer{
			Binary:   cfg.SVN.DiffBinary,
			Executor: svn.ExecExecutor{},
			Timeout:  cfg.SVN.Timeout,
			Out:      w,
		},
		Logger:           logger,
	})

	return &services{
		cfg:        cfg,
		client:     client,
		resolver:   resolver,
		reconciler: reconciler,
	}, nil
}

// credentialsFrom reads the password from the configured environment variable.
func credentialsFrom(cfg config.SVNConfig) svn.Credentials {
	creds := svn.Credentials{Username: cfg.Username}
	if cfg.Username != "" && cfg.PasswordEnvVar != "" {
		creds.Password = os.Getenv(cfg.PasswordEnvVar)
	}
	return creds
}

// newDetector converts the encoding section into detector options.
func newDetector(cfg config.EncodingConfig, logger zerolog.Logger) (*encoding.Detector, error) {
	opts := encoding.Options{
		EnableDetection: cfg.EnableDetection,
		ForceUTF8Output: cfg.ForceUTF8Output,
	}

	if cfg.DefaultFileEncoding != "" {
		tag, err := encoding.ParseTag(cfg.DefaultFileEncoding)
		if err != nil {
			return nil, fmt.Errorf("encoding.default_file_encoding: %w", err)
		}
		opts.DefaultEncoding = tag
	}

	for _, name := range cfg.Fallbacks {
		tag, err := encoding.ParseTag(name)
		if err != nil {
			return nil, fmt.Errorf("encoding.fallbacks: %w", err)
		}
		opts.Fallbacks = append(opts.Fallbacks, tag)
	}

	return encoding.NewDetector(opts, logger), nil
}
