package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/config"
	"github.com/tdex-network/merchantd/internal/core/application"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	webhookpubsub "github.com/tdex-network/merchantd/internal/infrastructure/pubsub/webhook"
	dbbadger "github.com/tdex-network/merchantd/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/merchantd/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/tdex-network/merchantd/internal/interfaces/http"
	"github.com/tdex-network/merchantd/pkg/crawler"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to init config")
	}
	cfg := config.Get()
	log.SetLevel(log.Level(cfg.LogLevel))

	repoManager, err := newRepoManager(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}
	defer repoManager.Close()

	backends, err := newBackendRegistry(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to init asset backends")
	}

	rateSource, err := newRateSource(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to init price source")
	}

	pubsub, err := webhookpubsub.NewService(
		repoManager.WebhookRepository(), cfg.WebhookTimeout,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init webhook service")
	}

	metrics, err := application.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	crawlerSvc := crawler.NewService(crawler.Opts{
		IntervalInMilliseconds: cfg.CrawlInterval,
		RateLimit:              cfg.ExplorerRateLimit,
		ErrorHandler: func(err error) {
			log.WithError(err).Warn("crawler")
		},
	})

	paymentSvc, err := application.NewPaymentService(application.Opts{
		Backends:       backends,
		RepoManager:    repoManager,
		RateSource:     rateSource,
		Crawler:        crawlerSvc,
		PubSub:         pubsub,
		Metrics:        metrics,
		DefaultPolicy:  defaultPolicy(cfg),
		DerivationPath: cfg.DerivationPath,
		OrderTTL:       cfg.OrderTTL,
		FetchRetries:   cfg.FetchRetries,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init payment service")
	}

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:    fmt.Sprintf(":%d", cfg.ListenPort),
		PaymentSvc: paymentSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to init http interface")
	}

	log.Infof("accepting payments in %v", backends.Assets())

	if err := paymentSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start payment service")
	}
	defer paymentSvc.Stop()

	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	defer httpSvc.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down merchantd")
}

func newRepoManager(cfg config.Config) (ports.RepoManager, error) {
	if cfg.DBType == config.DBInMemory {
		return inmemory.NewRepoManager(), nil
	}
	dbDir := filepath.Join(cfg.Datadir, config.DbLocation)
	logger := log.New()
	logger.SetLevel(log.WarnLevel)
	return dbbadger.NewRepoManager(dbDir, logger)
}

func defaultPolicy(cfg config.Config) domain.ConfirmationPolicy {
	if cfg.StrictMode {
		if cfg.EthXpub != "" {
			log.Warnf(
				"strict mode: ETH orders must set a positive "+
					"accept_without_hash_window_minutes, %s is ignored",
				config.AcceptWithoutHashWindowKey,
			)
		}
		return domain.StrictPolicy(cfg.RequiredConfirmations)
	}
	return domain.ConfirmationPolicy{
		RequiredConfirmations:          cfg.RequiredConfirmations,
		AcceptWithoutHashWindowMinutes: cfg.AcceptWithoutHashWindow,
	}
}
