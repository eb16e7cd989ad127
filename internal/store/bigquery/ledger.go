package bigquery

import (
	"context"
	"fmt"
	"time"

	"github.com/tdnguyen/moneymanager/internal/domain"
)

// Ledger exposes the repository in domain terms. The analysis service
// consumes this instead of raw rows.
type Ledger struct {
	repo *Repository
}

func NewLedger(repo *Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) ListTransactionsByOwner(ctx context.Context, ownerID string, since time.Time) ([]domain.Transaction, error) {
	rows, err := l.repo.ListTransactionsByOwner(ctx, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("Ledger: %w", err)
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, rows[i].ToDomain())
	}
	return txs, nil
}

func (l *Ledger) ListBudgetsByOwner(ctx context.Context, ownerID string) ([]domain.Budget, error) {
	rows, err := l.repo.ListBudgetsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("Ledger: %w", err)
	}
	budgets := make([]domain.Budget, 0, len(rows))
	for i := range rows {
		budgets = append(budgets, rows[i].ToDomain())
	}
	return budgets, nil
}

func (l *Ledger) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := l.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("Ledger: %w", err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, rows[i].ToDomain())
	}
	return categories, nil
}
