package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/workflow"
	workflowRepo "campusdrive/internal/domain/repositories/workflow"
	"campusdrive/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requirementColumns = `id, title, author_id, recipients, folder_id, file_type, max_size,
	message, note, status, start_date, end_date, created_at, modified_at`

// PostgresRequirementRepository implements the RequirementRepository interface
type PostgresRequirementRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewRequirementRepository creates a new requirement repository
func NewRequirementRepository(config *postgres.RepositoryConfig) workflowRepo.RequirementRepository {
	return &PostgresRequirementRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanRequirement(row pgx.Row) (*models.Requirement, error) {
	var req models.Requirement
	var recipients []byte
	err := row.Scan(
		&req.ID,
		&req.Title,
		&req.AuthorID,
		&recipients,
		&req.FolderID,
		&req.FileType,
		&req.MaxSize,
		&req.Message,
		&req.Note,
		&req.Status,
		&req.StartDate,
		&req.EndDate,
		&req.CreatedAt,
		&req.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipients, &req.To); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	return &req, nil
}

// Create inserts a requirement
func (r *PostgresRequirementRepository) Create(ctx context.Context, req *models.Requirement) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now()
	req.CreatedAt = now
	req.ModifiedAt = now

	recipients, err := json.Marshal(req.To)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (`+requirementColumns+`)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		req.ID,
		req.Title,
		req.AuthorID,
		string(recipients),
		req.FolderID,
		string(req.FileType),
		req.MaxSize,
		req.Message,
		req.Note,
		string(req.Status),
		req.StartDate,
		req.EndDate,
		req.CreatedAt,
		req.ModifiedAt,
	)
	if err != nil {
		return postgres.InsertError(err, "requirement", req.ID)
	}
	return nil
}

// GetByID retrieves a requirement by ID
func (r *PostgresRequirementRepository) GetByID(ctx context.Context, id string) (*models.Requirement, error) {
	query := fmt.Sprintf(`SELECT `+requirementColumns+` FROM %s WHERE id = $1`, r.tables.Requirements)
	return r.getOne(ctx, query, id)
}

// GetByFolderID finds the requirement owning a submission folder
func (r *PostgresRequirementRepository) GetByFolderID(ctx context.Context, folderID string) (*models.Requirement, error) {
	query := fmt.Sprintf(`SELECT `+requirementColumns+` FROM %s WHERE folder_id = $1 LIMIT 1`, r.tables.Requirements)
	return r.getOne(ctx, query, folderID)
}

func (r *PostgresRequirementRepository) getOne(ctx context.Context, query, key string) (*models.Requirement, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanRequirement(executor.QueryRow(ctx, query, key))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("requirement %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get requirement: %w", err)
	}
	return req, nil
}

// Update writes the whole document (last writer wins)
func (r *PostgresRequirementRepository) Update(ctx context.Context, req *models.Requirement) error {
	req.ModifiedAt = time.Now()
	recipients, err := json.Marshal(req.To)
	if err != nil {
		return fmt.Errorf("encode recipients: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			title = $2, recipients = $3::jsonb, file_type = $4, max_size = $5, message = $6,
			note = $7, status = $8, start_date = $9, end_date = $10, modified_at = $11
		WHERE id = $1
	`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		req.ID,
		req.Title,
		string(recipients),
		string(req.FileType),
		req.MaxSize,
		req.Message,
		req.Note,
		string(req.Status),
		req.StartDate,
		req.EndDate,
		req.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update requirement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("requirement %s: %w", req.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a requirement
func (r *PostgresRequirementRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("requirement %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListForAccount returns requirements authored by or addressed to accountID
func (r *PostgresRequirementRepository) ListForAccount(ctx context.Context, accountID string) ([]models.Requirement, error) {
	query := fmt.Sprintf(`
		SELECT `+requirementColumns+` FROM %s
		WHERE author_id = $1
		   OR recipients @> jsonb_build_array(jsonb_build_object('account_id', $1::text))
		ORDER BY created_at DESC
	`, r.tables.Requirements)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	reqs := []models.Requirement{}
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}
	return reqs, nil
}
