package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/MrEthical07/bossanova/audit"
	"github.com/MrEthical07/bossanova/internal/server"
	"github.com/MrEthical07/bossanova/session"
	"github.com/MrEthical07/bossanova/translate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo HTTP application",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen-address", "l", ":8080", "listen address")
	return cmd
}

func (a *app) serve(ctx context.Context, listen string) error {
	opts := server.Options{
		Token:   a.cfg.Token,
		Metrics: a.metrics,
	}

	if a.cfg.Translate.Enabled {
		t, locales, closeStore, err := a.translator(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				log.WithError(err).Warn("cache: close")
			}
		}()
		opts.Translator = t
		opts.Locales = locales
		warmDictionaries(ctx, t, locales)

		if a.cfg.Translate.Watch {
			go func() {
				if err := t.Watch(ctx, a.cfg.Translate.LocaleDir); err != nil {
					log.WithError(err).Warn("translate: locale watcher stopped")
				}
			}()
		}
	}

	if dispatcher := a.auditDispatcher(); dispatcher != nil {
		defer dispatcher.Close()
		opts.SessionOptions = append(opts.SessionOptions, session.WithAudit(dispatcher))
	}

	if len(a.cfg.Token.SigningKey()) == 0 {
		log.Warn("serve: JWT_SECRET is not set, every session request will be rejected with 403")
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           server.NewHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", listen).Info("serve: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// auditDispatcher returns nil when auditing is disabled.
func (a *app) auditDispatcher() *audit.Dispatcher {
	ac := a.cfg.Audit
	if !ac.Enabled {
		return nil
	}

	var sink audit.Sink = audit.NewLogSink(nil)
	if ac.File != "" {
		sink = audit.NewJSONWriterSink(&lumberjack.Logger{
			Filename:   filepath.ToSlash(ac.File),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	return audit.NewDispatcher(audit.Config{
		Enabled:    true,
		BufferSize: ac.BufferSize,
		DropIfFull: ac.DropIfFull,
		Events:     ac.Events,
	}, sink)
}

// warmDictionaries loads every configured locale once so the first requests
// do not pay for parsing.
func warmDictionaries(ctx context.Context, t *translate.Translator, locales *translate.LocaleMatcher) {
	for _, locale := range locales.Locales() {
		n := len(t.Dictionary(ctx, locale, false))
		log.WithFields(log.Fields{"locale": locale, "phrases": n}).Debug("translate: dictionary warmed")
	}
}
