package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const (
	ordersDir   = "orders"
	webhooksDir = "webhooks"

	gcInterval = 30 * time.Minute
)

type repoManager struct {
	orderStore   *badgerhold.Store
	webhookStore *badgerhold.Store

	orderRepository   domain.OrderRepository
	webhookRepository domain.WebhookRepository

	quitChan chan struct{}
}

// NewRepoManager opens (or creates if not exists) the badger stores on disk.
// It expects a base data dir and an optional logger. If the base dir is empty
// the stores are kept in memory.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var ordersDbDir, webhooksDbDir string
	if len(baseDbDir) > 0 {
		ordersDbDir = filepath.Join(baseDbDir, ordersDir)
		webhooksDbDir = filepath.Join(baseDbDir, webhooksDir)
	}

	orderStore, err := createDb(ordersDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening orders db: %w", err)
	}

	webhookStore, err := createDb(webhooksDbDir, logger)
	if err != nil {
		orderStore.Close()
		return nil, fmt.Errorf("opening webhooks db: %w", err)
	}

	rm := &repoManager{
		orderStore:        orderStore,
		webhookStore:      webhookStore,
		orderRepository:   NewOrderRepositoryImpl(orderStore),
		webhookRepository: NewWebhookRepositoryImpl(webhookStore),
		quitChan:          make(chan struct{}),
	}

	if len(baseDbDir) > 0 {
		go rm.runValueLogGC()
	}

	return rm, nil
}

func (d *repoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *repoManager) WebhookRepository() domain.WebhookRepository {
	return d.webhookRepository
}

func (d *repoManager) Close() {
	close(d.quitChan)
	d.orderStore.Close()
	d.webhookStore.Close()
}

func (d *repoManager) runValueLogGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.quitChan:
			return
		case <-ticker.C:
			for _, store := range []*badgerhold.Store{d.orderStore, d.webhookStore} {
				if err := store.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.WithError(err).Warn("badger value log gc failed")
				}
			}
		}
	}
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	err := en.Encode(value)
	if err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewReader(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
