// cmd/tenderec/app.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tenderec/internal/api"
	"tenderec/internal/common/config"
	apperrors "tenderec/internal/common/errors"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/observability"
	"tenderec/internal/common/storage"
	"tenderec/internal/query"
	"tenderec/internal/ranking"
	"tenderec/internal/service"
	"tenderec/internal/store"
	"tenderec/internal/swipe"

	"go.uber.org/zap"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      *config.Config
	zap      *zap.Logger
	log      logger.Logger
	backend  storage.Backend
	service  *service.Service
	feedback *store.FeedbackStore
	swipes   *store.SwipeStore
	obs      *observability.Observability
	errors   *apperrors.ErrorHandler
	ranking  ranking.Adjustments
	swipe    swipe.Config
	in       io.Reader
	out      io.Writer
	jsonOut  bool
}

func newApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.NewZapAdapter(zapLog)

	client, err := api.NewFromConfig(cfg.Backend, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build api client: %w", err)
	}
	cache := query.NewClient(query.OptionsFromConfig(cfg.Query), log)

	backend, err := storage.New(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	feedback, err := store.OpenFeedbackStore(ctx, backend, cfg.Storage.Key(store.FeedbackStoreName), log)
	if err != nil {
		backend.Close()
		return nil, err
	}
	swipes, err := store.OpenSwipeStore(ctx, backend, cfg.Storage.Key(store.SwipeStoreName), log)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		zap:      zapLog,
		log:      log,
		backend:  backend,
		service:  service.New(client, cache, cfg.Company.DefaultName, log),
		feedback: feedback,
		swipes:   swipes,
		obs:      observability.NewNoop(),
		errors:   apperrors.NewErrorHandler(log),
		ranking:  ranking.AdjustmentsFromConfig(cfg.Ranking),
		swipe:    swipe.ConfigFromSettings(cfg.Swipe),
		in:       in,
		out:      out,
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn("Failed to close storage", map[string]interface{}{"error": err.Error()})
	}
	a.zap.Sync()
}

// report prints what the view should show for err and returns the error the
// command exits with. Skipped requests are silent and succeed.
func (a *app) report(view string, err error) error {
	p := a.errors.Handle(view, err)
	if p.Silent {
		return nil
	}
	if p.Retry {
		return fmt.Errorf("%s: %s (try again)", view, p.Message)
	}
	return fmt.Errorf("%s: %s", view, p.Message)
}

func (a *app) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
