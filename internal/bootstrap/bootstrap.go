// Package bootstrap turns loaded configuration into the logger and analysis
// services the commands run on.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/LegacyCodeHQ/codegraph/internal/analysis"
	"github.com/LegacyCodeHQ/codegraph/internal/cache"
	"github.com/LegacyCodeHQ/codegraph/internal/config"
	"github.com/LegacyCodeHQ/codegraph/internal/logging"
	"github.com/LegacyCodeHQ/codegraph/vcs/git"
)

// ConfigFlag is the persistent flag naming an explicit config file.
const ConfigFlag = "config"

// HandlerFunc builds an extra log sink once the configured level is known.
type HandlerFunc func(level slog.Leveler) slog.Handler

// Runtime is the configuration and logger shared by one command invocation.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger
}

// Load reads configuration from flags and configFile, then installs a logger
// writing to logOut (plus any extra sinks) as the slog default.
func Load(flags *pflag.FlagSet, configFile string, logOut io.Writer, extra ...HandlerFunc) (*Runtime, error) {
	cfg, err := config.Load(flags, configFile)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOut, logging.Format(cfg.Log.Format), level)
	if err != nil {
		return nil, err
	}
	if len(extra) > 0 {
		handlers := []slog.Handler{logger.Handler()}
		for _, build := range extra {
			handlers = append(handlers, build(level))
		}
		logger = slog.New(logging.Tee(handlers...))
	}
	slog.SetDefault(logger)

	return &Runtime{Config: cfg, Logger: logger}, nil
}

// FromCommand loads the runtime for cmd, honouring an inherited --config flag.
// Logs go to the command's error stream.
func FromCommand(cmd *cobra.Command, extra ...HandlerFunc) (*Runtime, error) {
	configFile := ""
	if f := cmd.Flags().Lookup(ConfigFlag); f != nil {
		configFile = f.Value.String()
	}
	rt, err := Load(cmd.Flags(), configFile, cmd.ErrOrStderr(), extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return rt, nil
}

// Policy is the URL policy remote acquisitions run under.
func (r *Runtime) Policy() git.URLPolicy {
	return git.URLPolicy{AllowedHosts: r.Config.Acquire.AllowedHosts}
}

// RemoteService clones repositories under the configured policy and limits,
// caching responses.
func (r *Runtime) RemoteService() *analysis.Service {
	policy := r.Policy()
	acquire := r.Config.Acquire
	svc := r.service(&git.CloneAcquirer{
		Policy: policy,
		Limits: git.Limits{
			MaxBytes: acquire.MaxRepoMB << 20,
			MaxFiles: acquire.MaxRepoFiles,
		},
		Timeout: acquire.CloneTimeout,
	})
	svc.Policy = &policy
	svc.Cache = cache.New(r.Config.Cache.Size, r.Config.Cache.TTL)
	svc.Cache.Timeout = acquire.CloneTimeout
	return svc
}

// LocalService analyzes directories already on disk.
func (r *Runtime) LocalService() *analysis.Service {
	return r.service(git.LocalAcquirer{})
}

// ServiceFor returns LocalService when target is an existing directory and
// RemoteService otherwise.
func (r *Runtime) ServiceFor(target string) *analysis.Service {
	if IsLocalDir(target) {
		return r.LocalService()
	}
	return r.RemoteService()
}

// Request builds an analysis request for target from the configured defaults.
func (r *Runtime) Request(target string) analysis.Request {
	return analysis.Request{
		RepoURL:      target,
		MaxFiles:     r.Config.Analysis.MaxFiles,
		IncludeTests: r.Config.Analysis.IncludeTests,
	}
}

func (r *Runtime) service(acquirer git.Acquirer) *analysis.Service {
	return &analysis.Service{
		Acquirer:      acquirer,
		Workers:       r.Config.Analysis.Workers,
		SourceRoots:   r.Config.Analysis.SourceRoots,
		MostConnected: r.Config.Analysis.MostConnected,
		Logger:        r.Logger,
	}
}

// IsLocalDir reports whether target names an existing directory.
func IsLocalDir(target string) bool {
	info, err := os.Stat(target)
	return err == nil && info.IsDir()
}
