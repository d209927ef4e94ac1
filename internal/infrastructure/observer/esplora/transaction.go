package esplora

import (
	"context"
	"encoding/json"
	"fmt"
)

// getTransactionsForAddress returns mempool and confirmed txs of the address,
// following esplora pagination of the confirmed ones.
func (e *esplora) getTransactionsForAddress(
	ctx context.Context, address string,
) ([]tx, error) {
	txs, err := e.getTransactionPage(ctx, fmt.Sprintf("/address/%s/txs", address))
	if err != nil {
		return nil, err
	}

	confirmedCount := 0
	for _, t := range txs {
		if t.Status.Confirmed {
			confirmedCount++
		}
	}
	if confirmedCount < chainPageSize {
		return txs, nil
	}

	lastSeen := txs[len(txs)-1].TxID
	for i := 0; i < maxChainPages; i++ {
		page, err := e.getTransactionPage(
			ctx, fmt.Sprintf("/address/%s/txs/chain/%s", address, lastSeen),
		)
		if err != nil {
			return nil, err
		}
		txs = append(txs, page...)
		if len(page) < chainPageSize {
			return txs, nil
		}
		lastSeen = page[len(page)-1].TxID
	}
	return nil, fmt.Errorf("address %s has too many transactions", address)
}

func (e *esplora) getTransactionPage(ctx context.Context, path string) ([]tx, error) {
	resp, err := e.get(ctx, path)
	if err != nil {
		return nil, err
	}

	txs := make([]tx, 0)
	if err := json.Unmarshal([]byte(resp), &txs); err != nil {
		return nil, fmt.Errorf("invalid transactions JSON: %w", err)
	}
	return txs, nil
}
