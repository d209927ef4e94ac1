package esplora

import (
	"context"
	"strconv"
	"strings"
)

func (e *esplora) getBlockHeight(ctx context.Context) (int64, error) {
	resp, err := e.get(ctx, "/blocks/tip/height")
	if err != nil {
		return -1, err
	}

	return strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
}
