package main

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-trustforge"
	"github.com/alnah/go-trustforge/internal/config"
	"github.com/alnah/go-trustforge/internal/logging"
)

// loadConfig resolves the config file and environment. An explicit config
// (flag or TRUSTFORGE_CONFIG) must exist; the default name is optional.
func loadConfig(common *commonFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	var cfg *config.Config
	if name != "" {
		cfg, err = config.LoadConfig(name)
	} else {
		cfg, err = config.LoadConfig(config.DefaultName)
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// finishConfig validates cfg once flags are merged.
func finishConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w (after flags and environment)", err)
	}
	return nil
}

// newLogger builds the run logger. -v wins over -q, both over the config.
func newLogger(common *commonFlags, cfg *config.Config, env *Environment) (*zap.Logger, error) {
	level := cfg.Log.Level
	switch {
	case common.verbose:
		level = "debug"
	case common.quiet:
		level = "error"
	}
	format := cfg.Log.Format
	if common.logFormat != "" {
		format = common.logFormat
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: env.Stderr})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return logger, nil
}

// pipelineOptions maps cfg onto pipeline options. The PDF compiler is only
// built for commands that print.
func pipelineOptions(cfg *config.Config, logger *zap.Logger, env *Environment, pdf bool) ([]trustforge.Option, error) {
	opts := []trustforge.Option{
		trustforge.WithTheme(cfg.Theme.Name),
		trustforge.WithThemeDirs(cfg.Theme.Dirs...),
		trustforge.WithAssetPath(cfg.Assets.BasePath),
		trustforge.WithOutDir(cfg.Output.Dir),
		trustforge.WithGeneratedAt(cfg.Render.GeneratedAt),
		trustforge.WithLang(cfg.Render.Lang),
		trustforge.WithClock(env.Now),
		trustforge.WithKeepSource(cfg.PDF.KeepSource),
		trustforge.WithStrict(cfg.Export.Strict),
		trustforge.WithWorkers(cfg.Workers),
		trustforge.WithSources(cfg.Sources.Include, cfg.Sources.Exclude),
		trustforge.WithLogger(logger),
	}
	if cfg.Render.TOC {
		opts = append(opts, trustforge.WithTOC(cfg.Render.TOCTitle))
	}
	if pdf {
		compiler, err := newCompiler(cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, trustforge.WithCompiler(compiler))
	}
	return opts, nil
}

// newCompiler builds the configured PDF toolchain. Chrome gets a pool of
// browsers sized for the machine; xelatex processes need no pooling.
func newCompiler(cfg *config.Config, logger *zap.Logger) (trustforge.Compiler, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if timeout == 0 {
		timeout = trustforge.DefaultTimeout
	}

	switch strings.ToLower(cfg.PDF.Engine) {
	case config.EngineChrome:
		size := trustforge.ResolvePoolSize(cfg.Workers, trustforge.SourceHTML)
		logger.Debug("browser pool", zap.Int("size", size))
		return trustforge.NewCompilerPool(size, trustforge.SourceHTML, func() trustforge.Compiler {
			return &trustforge.Chrome{
				Bin:       cfg.PDF.ChromeBin,
				NoSandbox: cfg.PDF.NoSandbox,
				Timeout:   timeout,
				Logger:    logger,
			}
		}), nil
	case config.EngineXeLaTeX, "":
		return &trustforge.XeLaTeX{
			Binary:  cfg.PDF.XeLaTeX,
			Passes:  cfg.PDF.Passes,
			Timeout: timeout,
			Logger:  logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", config.ErrInvalidValue, cfg.PDF.Engine)
	}
}

// setup is the shared prologue of commands that build a pipeline.
func setup(common *commonFlags, cfg *config.Config, env *Environment, pdf bool) (*trustforge.Pipeline, error) {
	if err := finishConfig(cfg); err != nil {
		return nil, err
	}
	logger, err := newLogger(common, cfg, env)
	if err != nil {
		return nil, err
	}
	opts, err := pipelineOptions(cfg, logger, env, pdf)
	if err != nil {
		return nil, err
	}
	return trustforge.New(opts...)
}
