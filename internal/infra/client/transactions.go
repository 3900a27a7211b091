// Package client implements HTTP adapters for upstream data services.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/domain"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/observability"
	"github.com/Harun-F-Ahmed/smart-financial-coach/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// TransactionsClient fetches transaction data from an upstream ledger API.
type TransactionsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	metrics    *observability.Metrics
}

// NewTransactionsClient creates a new TransactionsClient.
func NewTransactionsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics) *TransactionsClient {
	return &TransactionsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		metrics:    metrics,
	}
}

// ListTransactions fetches an account's full transaction history with retry,
// circuit breaker, and tracing. Results are sorted ascending by date.
func (c *TransactionsClient) ListTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	url := fmt.Sprintf("%s/v1/accounts/%s/transactions", c.baseURL, accountID)
	txs, err := c.fetch(ctx, url, accountID)
	if err != nil {
		return nil, err
	}
	domain.SortByDate(txs)
	return txs, nil
}

// ListTransactionsInRange fetches transactions with from <= date < to,
// sorted ascending by date.
func (c *TransactionsClient) ListTransactionsInRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.ListTransactionsInRange")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", accountID),
		attribute.String("range.from", from.Format("2006-01-02")),
		attribute.String("range.to", to.Format("2006-01-02")),
	)

	url := fmt.Sprintf("%s/v1/accounts/%s/transactions?from=%s&to=%s",
		c.baseURL, accountID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	txs, err := c.fetch(ctx, url, accountID)
	if err != nil {
		return nil, err
	}
	txs = domain.FilterByDateRange(txs, from, to)
	domain.SortByDate(txs)
	return txs, nil
}

func (c *TransactionsClient) fetch(ctx context.Context, url, accountID string) ([]domain.Transaction, error) {
	var transactions []domain.Transaction

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "account", ID: accountID}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("ledger API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&transactions)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return transactions, nil
	})

	if err != nil {
		c.metrics.IncrExternalError("ledger")
		return nil, &domain.ErrExternalService{Service: "ledger", Err: err}
	}

	return result.([]domain.Transaction), nil
}
