package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/saas-admin/internal/analytics"
)

const (
	liveUsersQuery = `SELECT id, package, automations_count, is_affiliate, onboarding_sales_id
FROM users
WHERE deleted_at IS NULL`

	liveSalesPeopleQuery = `SELECT id, name
FROM sales_people
WHERE deleted_at IS NULL`
)

// Repository reads rollup inputs with plain SQL.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// LoadInputs fetches live users and sales people concurrently.
func (r *Repository) LoadInputs(ctx context.Context) ([]analytics.UserRow, []analytics.SalesPersonRow, error) {
	var (
		users       []analytics.UserRow
		salesPeople []analytics.SalesPersonRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &users, liveUsersQuery); err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.db.SelectContext(gctx, &salesPeople, liveSalesPeopleQuery); err != nil {
			return fmt.Errorf("load sales people: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, salesPeople, nil
}
