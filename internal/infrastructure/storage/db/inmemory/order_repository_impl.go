package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/merchantd/internal/core/domain"
)

type orderRepositoryImpl struct {
	locker *sync.RWMutex

	orders              map[string]domain.Order
	nextIndexesByKeyIDs map[string]uint32
}

// NewOrderRepositoryImpl returns a new empty in-memory OrderRepository.
func NewOrderRepositoryImpl() domain.OrderRepository {
	return &orderRepositoryImpl{
		locker:              &sync.RWMutex{},
		orders:              make(map[string]domain.Order),
		nextIndexesByKeyIDs: make(map[string]uint32),
	}
}

func (r *orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return domain.ErrOrderAlreadyExists
	}
	r.orders[order.ID] = copyOrder(*order)
	return nil
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o := copyOrder(order)
	return &o, nil
}

func (r *orderRepositoryImpl) UpdateOrder(
	_ context.Context,
	id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}

	current := copyOrder(order)
	updatedOrder, err := updateFn(&current)
	if err != nil {
		return err
	}

	r.orders[id] = copyOrder(*updatedOrder)
	return nil
}

func (r *orderRepositoryImpl) ListOrders(
	_ context.Context, filter domain.OrderFilter, page domain.Page,
) ([]domain.Order, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	orders := r.findOrders(filter.Match)
	from, to := page.Bounds(len(orders))
	return orders[from:to], nil
}

func (r *orderRepositoryImpl) ListPendingOrders(
	_ context.Context,
) ([]domain.Order, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	return r.findOrders(func(o domain.Order) bool {
		return !o.IsTerminal()
	}), nil
}

func (r *orderRepositoryImpl) NextDerivationIndex(
	_ context.Context, keyID string,
) (uint32, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	index := r.nextIndexesByKeyIDs[keyID]
	r.nextIndexesByKeyIDs[keyID] = index + 1
	return index, nil
}

func (r *orderRepositoryImpl) findOrders(
	match func(o domain.Order) bool,
) []domain.Order {
	orders := make([]domain.Order, 0)
	for _, order := range r.orders {
		if match(order) {
			orders = append(orders, copyOrder(order))
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	return orders
}

// copyOrder returns a copy of the order not sharing the stored outcome.
func copyOrder(order domain.Order) domain.Order {
	if order.Outcome != nil {
		outcome := *order.Outcome
		if outcome.TransactionHashes != nil {
			outcome.TransactionHashes = append([]string(nil), outcome.TransactionHashes...)
		}
		order.Outcome = &outcome
	}
	return order
}
