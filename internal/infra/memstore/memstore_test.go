package memstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/memstore"
)

func TestListTransactions_SortedAndCopied(t *testing.T) {
	store := memstore.New()
	store.Add("demo",
		domain.Transaction{ID: "b", Date: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), Amount: -20, Merchant: "Chipotle", Category: "Restaurants"},
		domain.Transaction{ID: "a", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Amount: -10, Merchant: "Starbucks", Category: "Coffee"},
	)

	txs, err := store.ListTransactions(context.Background(), "demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "a" || txs[1].ID != "b" {
		t.Errorf("txs not sorted by date: %+v", txs)
	}

	// Mutating the returned slice must not affect the store.
	txs[0].Merchant = "changed"
	again, _ := store.ListTransactions(context.Background(), "demo")
	if again[0].Merchant != "Starbucks" {
		t.Error("store returned an aliased slice")
	}
}

func TestListTransactions_UnknownAccount(t *testing.T) {
	store := memstore.New()

	_, err := store.ListTransactions(context.Background(), "ghost")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want *domain.ErrNotFound", err)
	}
	if notFound.ID != "ghost" {
		t.Errorf("notFound.ID = %s", notFound.ID)
	}
}

func TestListTransactionsInRange(t *testing.T) {
	store := memstore.New()
	store.Add("demo",
		domain.Transaction{ID: "april", Date: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), Amount: -10, Merchant: "Starbucks", Category: "Coffee"},
		domain.Transaction{ID: "may", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Amount: -10, Merchant: "Starbucks", Category: "Coffee"},
		domain.Transaction{ID: "june", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Amount: -10, Merchant: "Starbucks", Category: "Coffee"},
	)

	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	txs, err := store.ListTransactionsInRange(context.Background(), "demo", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "may" {
		t.Errorf("range [from, to) returned %+v, want only the May transaction", txs)
	}
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeedCSV(t *testing.T) {
	path := writeSeedFile(t, `id,date,amount,merchant,category,description
tx-1,2025-05-01,-15.99,Netflix,Subscriptions,Monthly plan
,2025-05-02,-6.50,Starbucks,Coffee,
`)

	store := memstore.New()
	n, err := store.SeedCSV("demo", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d rows, want 2", n)
	}

	txs, err := store.ListTransactions(context.Background(), "demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txs[0].ID != "tx-1" || txs[0].Amount != -15.99 {
		t.Errorf("first row = %+v", txs[0])
	}
	// Blank ids get generated ones.
	if txs[1].ID == "" {
		t.Error("expected a generated id for the blank-id row")
	}
}

func TestSeedCSV_Errors(t *testing.T) {
	store := memstore.New()

	if _, err := store.SeedCSV("demo", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for a missing file")
	}

	noDate := writeSeedFile(t, "id,amount,merchant,category\n1,-5,Starbucks,Coffee\n")
	if _, err := store.SeedCSV("demo", noDate); err == nil {
		t.Error("expected error for a missing date column")
	}

	badAmount := writeSeedFile(t, "id,date,amount,merchant,category\n1,2025-05-01,lots,Starbucks,Coffee\n")
	if _, err := store.SeedCSV("demo", badAmount); err == nil {
		t.Error("expected error for an unparseable amount")
	}
}
