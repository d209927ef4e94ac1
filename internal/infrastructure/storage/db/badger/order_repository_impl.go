package dbbadger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const maxTxRetries = 5

// derivationIndex is the next unused derivation index of a key.
type derivationIndex struct {
	KeyID string
	Next  uint32
}

type orderRepositoryImpl struct {
	store *badgerhold.Store
	lock  *sync.Mutex
}

// NewOrderRepositoryImpl initialize a badger implementation of the
// domain.OrderRepository
func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store, &sync.Mutex{}}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	if err := r.store.Insert(order.ID, *order); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrOrderAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(id, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.withTx(func(tx *badger.Txn) error {
		var order domain.Order
		if err := r.store.TxGet(tx, id, &order); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		updatedOrder, err := updateFn(&order)
		if err != nil {
			return err
		}

		return r.store.TxUpdate(tx, id, *updatedOrder)
	})
}

func (r *orderRepositoryImpl) ListOrders(
	_ context.Context, filter domain.OrderFilter, page domain.Page,
) ([]domain.Order, error) {
	orders, err := r.findOrders(filterQuery(filter))
	if err != nil {
		return nil, err
	}

	from, to := page.Bounds(len(orders))
	return orders[from:to], nil
}

func (r *orderRepositoryImpl) ListPendingOrders(
	_ context.Context,
) ([]domain.Order, error) {
	return r.findOrders(badgerhold.Where("Status").Eq(domain.OrderPending))
}

func (r *orderRepositoryImpl) NextDerivationIndex(
	_ context.Context, keyID string,
) (uint32, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	var index uint32
	err := r.withTx(func(tx *badger.Txn) error {
		counter := derivationIndex{KeyID: keyID}
		if err := r.store.TxGet(tx, keyID, &counter); err != nil &&
			!errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}

		index = counter.Next
		counter.Next++
		return r.store.TxUpsert(tx, keyID, counter)
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// findOrders returns the orders matching the query, most recent first.
func (r *orderRepositoryImpl) findOrders(
	query *badgerhold.Query,
) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.store.Find(&orders, query); err != nil {
		return nil, err
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// withTx runs fn in a read-write transaction, retrying on conflicts.
func (r *orderRepositoryImpl) withTx(fn func(tx *badger.Txn) error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.store.Badger().Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func filterQuery(filter domain.OrderFilter) *badgerhold.Query {
	var query *badgerhold.Query
	if filter.Status != "" {
		query = badgerhold.Where("Status").Eq(filter.Status)
	}
	if filter.Asset != "" {
		if query == nil {
			query = badgerhold.Where("Asset").Eq(filter.Asset)
		} else {
			query = query.And("Asset").Eq(filter.Asset)
		}
	}
	return query
}
