package liquid

import (
	"fmt"

	"github.com/vulpemventures/go-elements/network"
)

// NetworkFromString returns the Liquid network for mainnet, testnet or
// regtest.
func NetworkFromString(name string) (*network.Network, error) {
	switch name {
	case "mainnet", "liquid", "":
		return &network.Liquid, nil
	case "testnet":
		return &network.Testnet, nil
	case "regtest":
		return &network.Regtest, nil
	default:
		return nil, fmt.Errorf("unknown liquid network %q", name)
	}
}
