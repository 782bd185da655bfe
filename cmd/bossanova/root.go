package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/cache"
	"github.com/MrEthical07/bossanova/internal/logging"
	"github.com/MrEthical07/bossanova/metrics"
	"github.com/MrEthical07/bossanova/translate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand once the root pre-run loaded
// the configuration.
type app struct {
	envFiles []string
	logLevel string
	logFile  string

	cfg     bossanova.Config
	metrics *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "bossanova",
		Short:         "Session tokens and response translation",
		Long:          "bossanova issues and verifies signed session tokens and translates ^^[marked]^^ phrases in text.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (panic, fatal, error, warn, info, debug, trace); overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "log file path or \"console\"; overrides LOG_FILE")

	cmd.AddCommand(
		newServeCmd(a),
		newTokenCmd(a),
		newTranslateCmd(a),
		newBenchCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := bossanova.LoadConfig(a.envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}

	if err := logging.InitLog(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("init log: %w", err)
	}

	a.cfg = cfg
	a.metrics = metrics.New(metrics.Config{
		Enabled:                 cfg.Metrics.Enabled,
		EnableLatencyHistograms: cfg.Metrics.EnableLatencyHistograms,
	})
	return nil
}

// translator builds the translator and locale matcher from the loaded
// configuration. The returned close function is never nil.
func (a *app) translator(ctx context.Context) (*translate.Translator, *translate.LocaleMatcher, func() error, error) {
	store, closeStore, err := cache.Open(ctx, a.cfg.Cache)
	if err != nil {
		return nil, nil, closeStore, err
	}

	tc := a.cfg.Translate
	locales, err := translate.NewLocaleMatcher(tc.DefaultLocale, tc.Locales, tc.LocaleCookie)
	if err != nil {
		_ = closeStore()
		return nil, nil, func() error { return nil }, err
	}

	if _, err := os.Stat(tc.LocaleDir); err != nil {
		log.WithField("dir", tc.LocaleDir).WithError(err).Warn("translate: locale directory not readable, phrases stay untranslated")
	}

	loader := translate.NewLoader(os.DirFS(tc.LocaleDir),
		translate.WithCache(store, a.cfg.Cache.Key),
		translate.WithLoaderMetrics(a.metrics),
	)
	t := translate.NewTranslator(loader, translate.WithTranslatorMetrics(a.metrics))
	return t, locales, closeStore, nil
}
