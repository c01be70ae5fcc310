package drive

import (
	"context"
	"fmt"
	"time"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/drive"
	driveRepo "campusdrive/internal/domain/repositories/drive"
	"campusdrive/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = `id, name, type, size, folder_id, author_id, owner_id, blob_key,
	shared_to, permissions, is_starred, is_trashed, trashed_by, created_at, modified_at, last_opened_at`

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) driveRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	var perms []string
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Type,
		&f.Size,
		&f.FolderID,
		&f.AuthorID,
		&f.OwnerID,
		&f.BlobKey,
		&f.SharedTo,
		&perms,
		&f.IsStarred,
		&f.IsTrashed,
		&f.TrashedBy,
		&f.CreatedAt,
		&f.ModifiedAt,
		&f.LastOpenedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Permissions = postgres.StringsToCaps(perms)
	return &f, nil
}

func collectFiles(rows pgx.Rows) ([]models.File, error) {
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Create creates a new file
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	now := time.Now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.ModifiedAt = now
	file.LastOpenedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (`+fileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		file.ID,
		file.Name,
		string(file.Type),
		file.Size,
		file.FolderID,
		file.AuthorID,
		file.OwnerID,
		file.BlobKey,
		postgres.NonNil(file.SharedTo),
		postgres.CapsToStrings(file.Permissions),
		file.IsStarred,
		file.IsTrashed,
		file.TrashedBy,
		file.CreatedAt,
		file.ModifiedAt,
		file.LastOpenedAt,
	)
	if err != nil {
		return postgres.InsertError(err, "file", file.ID)
	}
	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT `+fileColumns+` FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// Update writes name, blob key, flags and last-opened time
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	if file.ModifiedAt.IsZero() {
		file.ModifiedAt = time.Now()
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, blob_key = $3, is_starred = $4, last_opened_at = $5, modified_at = $6
		WHERE id = $1
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		file.ID,
		file.Name,
		file.BlobKey,
		file.IsStarred,
		file.LastOpenedAt,
		file.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteMany removes files by ID
func (r *PostgresFileRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	return nil
}

// SetParent moves a file and sets its owner
func (r *PostgresFileRepository) SetParent(ctx context.Context, id string, folderID *string, ownerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET folder_id = $2, owner_id = $3, modified_at = NOW()
		WHERE id = $1
	`, r.tables.Files)
	return r.execOne(ctx, "set file parent", id, query, id, folderID, ownerID)
}

// SetOwnerByFolders overwrites owner on every file in the listed folders
func (r *PostgresFileRepository) SetOwnerByFolders(ctx context.Context, folderIDs []string, ownerID string) error {
	if len(folderIDs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET owner_id = $2 WHERE folder_id = ANY($1)`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderIDs, ownerID); err != nil {
		return fmt.Errorf("set file owner: %w", err)
	}
	return nil
}

// SetTrashed tags every listed file with trashedBy, or restores them when it is nil
func (r *PostgresFileRepository) SetTrashed(ctx context.Context, ids []string, trashedBy *string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET is_trashed = ($2::text IS NOT NULL), trashed_by = $2::text, modified_at = NOW()
		WHERE id = ANY($1)
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids, trashedBy); err != nil {
		return fmt.Errorf("set files trashed: %w", err)
	}
	return nil
}

// AddShares merges emails and capabilities into the share state
func (r *PostgresFileRepository) AddShares(ctx context.Context, id string, emails []string, caps []models.Capability) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			shared_to = ARRAY(
				SELECT x FROM unnest(shared_to || $2::text[]) WITH ORDINALITY AS t(x, n)
				GROUP BY x ORDER BY min(n)),
			permissions = ARRAY(
				SELECT x FROM unnest(permissions || $3::text[]) WITH ORDINALITY AS t(x, n)
				GROUP BY x ORDER BY min(n)),
			modified_at = NOW()
		WHERE id = $1
	`, r.tables.Files)
	return r.execOne(ctx, "share file", id, query, id, postgres.NonNil(emails), postgres.CapsToStrings(caps))
}

// RemoveShares pulls emails from the share list
func (r *PostgresFileRepository) RemoveShares(ctx context.Context, id string, emails []string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			shared_to = ARRAY(SELECT x FROM unnest(shared_to) AS x WHERE x <> ALL($2::text[])),
			modified_at = NOW()
		WHERE id = $1
	`, r.tables.Files)
	return r.execOne(ctx, "unshare file", id, query, id, postgres.NonNil(emails))
}

// ListByFolders returns every file whose folder is in folderIDs
func (r *PostgresFileRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return []models.File{}, nil
	}
	query := fmt.Sprintf(`SELECT `+fileColumns+` FROM %s WHERE folder_id = ANY($1)`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list files by folders: %w", err)
	}
	return collectFiles(rows)
}

// SiblingNames returns names of files directly under folderID
func (r *PostgresFileRepository) SiblingNames(ctx context.Context, folderID *string, ownerID string) ([]string, error) {
	var query string
	var args []interface{}
	if folderID == nil {
		query = fmt.Sprintf(`SELECT name FROM %s WHERE folder_id IS NULL AND owner_id = $1`, r.tables.Files)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`SELECT name FROM %s WHERE folder_id = $1`, r.tables.Files)
		args = append(args, *folderID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list file names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan file names: %w", err)
	}
	return names, nil
}

// List runs a filtered listing
func (r *PostgresFileRepository) List(ctx context.Context, q *models.ListQuery) ([]models.File, error) {
	q.ApplyDefaults()
	where, args := postgres.ListFilter(q, "folder_id")
	order, args := postgres.OrderClause(q, args)
	query := fmt.Sprintf(`SELECT `+fileColumns+` FROM %s WHERE %s %s`, r.tables.Files, where, order)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return collectFiles(rows)
}

func (r *PostgresFileRepository) execOne(ctx context.Context, op, id, query string, args ...interface{}) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
