// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
)

// TransactionStore retrieves an account's transaction history. All listings
// return transactions sorted ascending by date.
type TransactionStore interface {
	ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error)
	ListTransactionsInRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
