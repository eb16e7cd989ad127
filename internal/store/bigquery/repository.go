// Package bigquery is the read side of the ledger: transactions, budgets and
// categories live in BigQuery and this core only queries them.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const dateFormat = "2006-01-02"

// Repository reads ledger data scoped to a single owner per call.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// NewRepository creates a repository with its own BigQuery client. Close it
// when done.
func NewRepository(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: bigquery client: %w", err)
	}
	return NewRepositoryWithClient(client, dataset), nil
}

// NewRepositoryWithClient wraps an existing client; the caller owns the
// client's lifecycle.
func NewRepositoryWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

func (r *Repository) Close() error {
	return r.client.Close()
}

// ListTransactionsByOwner returns the owner's transactions on or after the
// given date, joined with their category, oldest first.
func (r *Repository) ListTransactionsByOwner(ctx context.Context, ownerID string, since time.Time) ([]TransactionRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.owner_id,
			t.transaction_date,
			t.amount,
			t.category_id,
			c.category_name,
			c.category_kind
		FROM %s.transactions t
		LEFT JOIN %s.categories c
		  ON t.category_id = c.category_id
		WHERE t.owner_id = @owner_id
		  AND t.transaction_date >= @since
		ORDER BY t.transaction_date, t.transaction_id
	`, r.dataset, r.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "owner_id", Value: ownerID},
		{Name: "since", Value: since.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByOwner: query read: %w", err)
	}

	var rows []TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByOwner: iter next: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListBudgetsByOwner returns every budget of the owner.
func (r *Repository) ListBudgetsByOwner(ctx context.Context, ownerID string) ([]BudgetRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			b.budget_id,
			b.owner_id,
			b.category_id,
			c.category_name,
			b.amount_limit,
			b.period_start,
			b.period_end
		FROM %s.budgets b
		LEFT JOIN %s.categories c
		  ON b.category_id = c.category_id
		WHERE b.owner_id = @owner_id
		ORDER BY c.category_name
	`, r.dataset, r.dataset))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "owner_id", Value: ownerID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetsByOwner: query read: %w", err)
	}

	var rows []BudgetRow
	for {
		var row BudgetRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBudgetsByOwner: iter next: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListActiveCategories returns the active category taxonomy ordered by name.
func (r *Repository) ListActiveCategories(ctx context.Context) ([]CategoryRow, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			category_id,
			category_name,
			category_kind,
			is_active
		FROM %s.categories
		WHERE is_active = TRUE
		ORDER BY category_name
	`, r.dataset))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActiveCategories: query read: %w", err)
	}

	var rows []CategoryRow
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActiveCategories: iter next: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
