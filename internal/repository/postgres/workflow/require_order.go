package workflow

import (
	"context"
	"fmt"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/workflow"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"
	"campusdrive/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRequireOrderRepository implements the RequireOrderRepository interface
type PostgresRequireOrderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewRequireOrderRepository creates a new require-order repository
func NewRequireOrderRepository(config *postgres.RepositoryConfig) workflowRepo.RequireOrderRepository {
	return &PostgresRequireOrderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the user's order
func (r *PostgresRequireOrderRepository) Get(ctx context.Context, userID string) (*models.RequireOrder, error) {
	query := fmt.Sprintf(`
		SELECT user_id, waiting, processing, done, cancel FROM %s WHERE user_id = $1
	`, r.tables.RequireOrders)

	var order models.RequireOrder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&order.UserID,
		&order.Waiting,
		&order.Processing,
		&order.Done,
		&order.Cancel,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("require order %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get require order: %w", err)
	}
	return &order, nil
}

// Save upserts all four columns
func (r *PostgresRequireOrderRepository) Save(ctx context.Context, order *models.RequireOrder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, waiting, processing, done, cancel)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			waiting = EXCLUDED.waiting,
			processing = EXCLUDED.processing,
			done = EXCLUDED.done,
			cancel = EXCLUDED.cancel
	`, r.tables.RequireOrders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		order.UserID,
		postgres.NonNil(order.Waiting),
		postgres.NonNil(order.Processing),
		postgres.NonNil(order.Done),
		postgres.NonNil(order.Cancel),
	)
	if err != nil {
		return fmt.Errorf("save require order: %w", err)
	}
	return nil
}

// AppendWaiting appends requirementID to the waiting column of every user.
// The batch is sent as one pipeline and commits as a unit.
func (r *PostgresRequireOrderRepository) AppendWaiting(ctx context.Context, userIDs []string, requirementID string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (user_id, waiting) VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (user_id) DO UPDATE SET
			waiting = array_append(array_remove(%[1]s.waiting, $2::text), $2::text)
	`, r.tables.RequireOrders)

	batch := &pgx.Batch{}
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		batch.Queue(query, id, requirementID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	results := executor.SendBatch(ctx, batch)
	for range seen {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("append to waiting: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("append to waiting: %w", err)
	}
	return nil
}

// RemoveEverywhere pulls requirementID from all columns of every user
func (r *PostgresRequireOrderRepository) RemoveEverywhere(ctx context.Context, userIDs []string, requirementID string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET
			waiting = array_remove(waiting, $2),
			processing = array_remove(processing, $2),
			done = array_remove(done, $2),
			cancel = array_remove(cancel, $2)
		WHERE user_id = ANY($1)
	`, r.tables.RequireOrders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userIDs, requirementID); err != nil {
		return fmt.Errorf("remove from orders: %w", err)
	}
	return nil
}
