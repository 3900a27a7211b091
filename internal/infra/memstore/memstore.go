// Package memstore provides an in-memory transaction store, seedable from a
// CSV export. It backs local development and tests where no ledger API is
// available.
package memstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("memstore")

// Store holds transactions per account. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	txs map[string][]domain.Transaction
}

// New creates an empty store.
func New() *Store {
	return &Store{txs: make(map[string][]domain.Transaction)}
}

// Add appends transactions to an account, keeping the account's history
// sorted ascending by date.
func (s *Store) Add(accountID string, txs ...domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[accountID] = append(s.txs[accountID], txs...)
	domain.SortByDate(s.txs[accountID])
}

// ListTransactions returns an account's full history, sorted ascending by
// date. Unknown accounts yield ErrNotFound.
func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	_, span := tracer.Start(ctx, "Store.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	s.mu.RLock()
	defer s.mu.RUnlock()

	txs, ok := s.txs[accountID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "account", ID: accountID}
	}
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

// ListTransactionsInRange returns transactions with from <= date < to,
// sorted ascending by date.
func (s *Store) ListTransactionsInRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	txs, err := s.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return domain.FilterByDateRange(txs, from, to), nil
}

// SeedCSV loads transactions for an account from a CSV file with the header
// id,date,amount,merchant,category,description. Empty ids are assigned
// fresh UUIDs.
func (s *Store) SeedCSV(accountID, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	n, err := s.seed(accountID, f)
	if err != nil {
		return n, fmt.Errorf("seed %s: %w", path, err)
	}
	return n, nil
}

func (s *Store) seed(accountID string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"date", "amount", "merchant", "category"} {
		if _, ok := col[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}

		date, err := time.Parse("2006-01-02", field(record, "date"))
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}
		amount, err := strconv.ParseFloat(field(record, "amount"), 64)
		if err != nil {
			return count, fmt.Errorf("row %d: %w", count+2, err)
		}

		id := field(record, "id")
		if id == "" {
			id = uuid.NewString()
		}

		s.Add(accountID, domain.Transaction{
			ID:          id,
			Date:        date,
			Amount:      amount,
			Merchant:    field(record, "merchant"),
			Category:    field(record, "category"),
			Description: field(record, "description"),
		})
		count++
	}
	return count, nil
}
