package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// NetworkFromString returns the chain params for mainnet, testnet or regtest.
func NetworkFromString(name string) (*chaincfg.Params, error) {
	switch name {
	case "mainnet", "bitcoin", "":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown bitcoin network %q", name)
	}
}
