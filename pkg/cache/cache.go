package cache

import (
	"context"
	"time"

	"github.com/amirasaad/accounts/pkg/domain/account"
)

// AccountCache stores read snapshots of accounts keyed by number.
// Get returns (nil, nil) on a miss.
type AccountCache interface {
	Get(ctx context.Context, number string) (*account.Account, error)
	Set(ctx context.Context, a *account.Account, ttl time.Duration) error
	Delete(ctx context.Context, number string) error
}
