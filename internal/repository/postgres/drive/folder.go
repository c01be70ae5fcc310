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

const folderColumns = `id, name, author_id, owner_id, parent_id, sub_folder_ids, file_ids, size,
	is_starred, is_trashed, trashed_by, quick_access, is_submission, shared_to, permissions,
	created_at, modified_at, last_opened_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) driveRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	var perms []string
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.AuthorID,
		&f.OwnerID,
		&f.ParentID,
		&f.SubFolderIDs,
		&f.FileIDs,
		&f.Size,
		&f.IsStarred,
		&f.IsTrashed,
		&f.TrashedBy,
		&f.QuickAccess,
		&f.IsSubmission,
		&f.SharedTo,
		&perms,
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

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.ModifiedAt = now
	folder.LastOpenedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (`+folderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.AuthorID,
		folder.OwnerID,
		folder.ParentID,
		postgres.NonNil(folder.SubFolderIDs),
		postgres.NonNil(folder.FileIDs),
		folder.Size,
		folder.IsStarred,
		folder.IsTrashed,
		folder.TrashedBy,
		folder.QuickAccess,
		folder.IsSubmission,
		postgres.NonNil(folder.SharedTo),
		postgres.CapsToStrings(folder.Permissions),
		folder.CreatedAt,
		folder.ModifiedAt,
		folder.LastOpenedAt,
	)
	if err != nil {
		return postgres.InsertError(err, "folder", folder.ID)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT `+folderColumns+` FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// Update writes name, flags and last-opened time
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if folder.ModifiedAt.IsZero() {
		folder.ModifiedAt = time.Now()
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, is_starred = $3, quick_access = $4, last_opened_at = $5, modified_at = $6
		WHERE id = $1
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ID,
		folder.Name,
		folder.IsStarred,
		folder.QuickAccess,
		folder.LastOpenedAt,
		folder.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteMany removes folders by ID
func (r *PostgresFolderRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}
	return nil
}

// IncrementSize atomically adds delta and returns the parent id
func (r *PostgresFolderRepository) IncrementSize(ctx context.Context, id string, delta int64) (*string, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET size = size + $2 WHERE id = $1
		RETURNING parent_id
	`, r.tables.Folders)

	var parentID *string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, delta).Scan(&parentID); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("increment folder size: %w", err)
	}
	return parentID, nil
}

// SetSize overwrites the stored size
func (r *PostgresFolderRepository) SetSize(ctx context.Context, id string, size int64) error {
	query := fmt.Sprintf(`UPDATE %s SET size = $2 WHERE id = $1`, r.tables.Folders)
	return r.execOne(ctx, "set folder size", id, query, id, size)
}

// AddSubFolder pushes childID into the parent's sub-folder set
func (r *PostgresFolderRepository) AddSubFolder(ctx context.Context, parentID, childID string) error {
	return r.pushID(ctx, "sub_folder_ids", parentID, childID)
}

// RemoveSubFolder pulls childID from the parent's sub-folder set
func (r *PostgresFolderRepository) RemoveSubFolder(ctx context.Context, parentID, childID string) error {
	return r.pullID(ctx, "sub_folder_ids", parentID, childID)
}

// AddFile pushes fileID into the parent's file set
func (r *PostgresFolderRepository) AddFile(ctx context.Context, parentID, fileID string) error {
	return r.pushID(ctx, "file_ids", parentID, fileID)
}

// RemoveFile pulls fileID from the parent's file set
func (r *PostgresFolderRepository) RemoveFile(ctx context.Context, parentID, fileID string) error {
	return r.pullID(ctx, "file_ids", parentID, fileID)
}

func (r *PostgresFolderRepository) pushID(ctx context.Context, column, id, value string) error {
	query := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = array_append(array_remove(%[2]s, $2), $2), modified_at = NOW()
		WHERE id = $1
	`, r.tables.Folders, column)
	return r.execOne(ctx, "push "+column, id, query, id, value)
}

func (r *PostgresFolderRepository) pullID(ctx context.Context, column, id, value string) error {
	query := fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = array_remove(%[2]s, $2), modified_at = NOW()
		WHERE id = $1
	`, r.tables.Folders, column)
	return r.execOne(ctx, "pull "+column, id, query, id, value)
}

// SetParent moves a folder under parentID
func (r *PostgresFolderRepository) SetParent(ctx context.Context, id string, parentID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET parent_id = $2, modified_at = NOW() WHERE id = $1`, r.tables.Folders)
	return r.execOne(ctx, "set folder parent", id, query, id, parentID)
}

// SetOwner overwrites owner on every listed folder
func (r *PostgresFolderRepository) SetOwner(ctx context.Context, ids []string, ownerID string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`UPDATE %s SET owner_id = $2 WHERE id = ANY($1)`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids, ownerID); err != nil {
		return fmt.Errorf("set folder owner: %w", err)
	}
	return nil
}

// SetTrashed tags every listed folder with trashedBy, or restores them when it is nil
func (r *PostgresFolderRepository) SetTrashed(ctx context.Context, ids []string, trashedBy *string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`
		UPDATE %s SET is_trashed = ($2::text IS NOT NULL), trashed_by = $2::text, modified_at = NOW()
		WHERE id = ANY($1)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids, trashedBy); err != nil {
		return fmt.Errorf("set folders trashed: %w", err)
	}
	return nil
}

// AddShares merges emails and capabilities into the share state
func (r *PostgresFolderRepository) AddShares(ctx context.Context, id string, emails []string, caps []models.Capability) error {
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
	`, r.tables.Folders)
	return r.execOne(ctx, "share folder", id, query, id, postgres.NonNil(emails), postgres.CapsToStrings(caps))
}

// RemoveShares pulls emails from the share list
func (r *PostgresFolderRepository) RemoveShares(ctx context.Context, id string, emails []string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			shared_to = ARRAY(SELECT x FROM unnest(shared_to) AS x WHERE x <> ALL($2::text[])),
			modified_at = NOW()
		WHERE id = $1
	`, r.tables.Folders)
	return r.execOne(ctx, "unshare folder", id, query, id, postgres.NonNil(emails))
}

// ListByParents returns every folder whose parent is in parentIDs
func (r *PostgresFolderRepository) ListByParents(ctx context.Context, parentIDs []string) ([]models.Folder, error) {
	if len(parentIDs) == 0 {
		return []models.Folder{}, nil
	}
	query := fmt.Sprintf(`SELECT `+folderColumns+` FROM %s WHERE parent_id = ANY($1)`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list folders by parents: %w", err)
	}
	return collectFolders(rows)
}

// SiblingNames returns names of folders directly under parentID
func (r *PostgresFolderRepository) SiblingNames(ctx context.Context, parentID *string, ownerID string) ([]string, error) {
	var query string
	var args []interface{}
	if parentID == nil {
		query = fmt.Sprintf(`SELECT name FROM %s WHERE parent_id IS NULL AND owner_id = $1`, r.tables.Folders)
		args = append(args, ownerID)
	} else {
		query = fmt.Sprintf(`SELECT name FROM %s WHERE parent_id = $1`, r.tables.Folders)
		args = append(args, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan folder names: %w", err)
	}
	return names, nil
}

// List runs a filtered listing
func (r *PostgresFolderRepository) List(ctx context.Context, q *models.ListQuery) ([]models.Folder, error) {
	q.ApplyDefaults()
	where, args := postgres.ListFilter(q, "parent_id")
	order, args := postgres.OrderClause(q, args)
	query := fmt.Sprintf(`SELECT `+folderColumns+` FROM %s WHERE %s %s`, r.tables.Folders, where, order)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return collectFolders(rows)
}

func (r *PostgresFolderRepository) execOne(ctx context.Context, op, id, query string, args ...interface{}) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
