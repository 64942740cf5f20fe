package usecase

import (
	"context"

	"github.com/riskibarqy/socli/internal/domain/player"
)

// RemoteDataSource is the market data provider. An empty cursor requests the
// first roster page; an empty next cursor means there are no more pages.
type RemoteDataSource interface {
	PageRoster(ctx context.Context, cursor string, size int) ([]player.Player, string, error)
	// GetPrices returns sales newest first.
	GetPrices(ctx context.Context, slug string) ([]player.Price, error)
	GetStats(ctx context.Context, slugs []string) ([]player.Stats, error)
	GetInjuries(ctx context.Context, slugs []string) ([]player.Injury, error)
}
