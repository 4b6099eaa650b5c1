package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/travel-finances-bot/internal/clients/gemini"
	"max.ks1230/travel-finances-bot/internal/clients/ratesapi"
	"max.ks1230/travel-finances-bot/internal/clients/tg"
	"max.ks1230/travel-finances-bot/internal/config"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/assistant"
	"max.ks1230/travel-finances-bot/internal/model/conversion"
	"max.ks1230/travel-finances-bot/internal/model/ledger"
	"max.ks1230/travel-finances-bot/internal/model/messages"
	"max.ks1230/travel-finances-bot/internal/model/rates"
	"max.ks1230/travel-finances-bot/internal/model/reports"
	"max.ks1230/travel-finances-bot/internal/model/settings"
	"max.ks1230/travel-finances-bot/internal/model/storage"
	"max.ks1230/travel-finances-bot/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func main() {
	defer logger.Sync()
	logger.Info("Bot init - start")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	closer, err := tracing.Init(conf.Tracing())
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closer.Close()

	db, err := storage.New(ctx, conf.Storage())
	if err != nil {
		logger.Fatal("failed to init storage:", zap.Error(err))
	}
	defer db.Close()

	anchor := conf.App().AnchorCurrency()
	if err = db.EnsureSettings(ctx, anchor); err != nil {
		logger.Fatal("failed to init settings:", zap.Error(err))
	}

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init telegram client:", zap.Error(err))
	}

	rateStore := rates.NewStore(db, anchor)
	updater := rates.NewUpdater(rateStore, ratesapi.New(conf.RatesAPI()), conf.App())
	reportGenerator := reports.NewGenerator(conf.App(), db)
	helper := assistant.New(conf.Assistant(), reportGenerator, gemini.New(conf.Assistant()))

	handler := messages.NewHandlerService(
		conf.App(),
		ledger.New(db, anchor),
		settings.New(db),
		reportGenerator,
		rateStore,
		conversion.NewConverter(db, anchor),
	)
	msgService := messages.NewService(client, handler, helper, updater, conf.Assistant().HistoryTurns())

	logger.Info("Bot init - end")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		updater.Pull(ctx)
		return nil
	})
	g.Go(func() error {
		client.ListenUpdates(ctx, msgService)
		cancel()
		return nil
	})
	if addr := conf.Metrics().Addr(); addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(), ReadHeaderTimeout: shutdownTimeout}
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
