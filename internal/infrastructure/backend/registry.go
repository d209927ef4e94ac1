package backend

import (
	"sort"
	"strings"

	"github.com/tdex-network/merchantd/internal/core/domain"
	"github.com/tdex-network/merchantd/internal/core/ports"
)

// Registry holds the backends of the enabled assets.
type Registry struct {
	backends map[string]ports.Backend
}

func NewRegistry(backends ...ports.Backend) *Registry {
	r := &Registry{make(map[string]ports.Backend)}
	for _, b := range backends {
		r.backends[b.Asset().Ticker] = b
	}
	return r
}

// Get returns the backend for the given asset ticker or ErrUnknownAsset.
func (r *Registry) Get(ticker string) (ports.Backend, error) {
	b, ok := r.backends[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return nil, domain.ErrUnknownAsset
	}
	return b, nil
}

// Assets returns the tickers of the enabled assets, sorted.
func (r *Registry) Assets() []string {
	tickers := make([]string, 0, len(r.backends))
	for t := range r.backends {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
