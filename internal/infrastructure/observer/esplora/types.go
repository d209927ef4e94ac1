package esplora

type txStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
	BlockTime   int64 `json:"block_time"`
}

type txOutput struct {
	Address string `json:"scriptpubkey_address"`
	// Value and Asset are missing for confidential Liquid outputs.
	Value uint64 `json:"value"`
	Asset string `json:"asset"`
}

type tx struct {
	TxID    string     `json:"txid"`
	Outputs []txOutput `json:"vout"`
	Status  txStatus   `json:"status"`
}

// receivedBy returns the sum of the explicit outputs paying the address, in
// the given asset if any.
func (t tx) receivedBy(address, assetID string) uint64 {
	var total uint64
	for _, out := range t.Outputs {
		if out.Address != address {
			continue
		}
		if assetID != "" && out.Asset != assetID {
			continue
		}
		total += out.Value
	}
	return total
}

func (t tx) confirmations(tip int64) int64 {
	if !t.Status.Confirmed {
		return 0
	}
	if confs := tip - t.Status.BlockHeight + 1; confs > 0 {
		return confs
	}
	// The tip was fetched before the tx got mined.
	return 1
}
