package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/cmcs/claimserver/types"
)

// ClaimRepository handles persistence for claims. Reads eagerly load
// the owning user, status name, and document metadata so callers get a
// complete projection in one call; the database is the single source
// of truth and every call re-reads it.
type ClaimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimSelect = `
	SELECT c.id, c.user_id, c.status_id, c.hours_worked, c.hourly_rate, c.total_amount, c.submission_date, c.notes,
	       s.name,
	       u.id, u.first_name, u.last_name, u.email, u.phone_number, u.role, u.hourly_rate, u.created_at, u.updated_at
	FROM claims c
	JOIN claim_statuses s ON s.id = c.status_id
	JOIN users u ON u.id = c.user_id`

func scanClaim(row interface{ Scan(dest ...any) error }) (types.Claim, error) {
	var claim types.Claim
	var owner types.User
	err := row.Scan(
		&claim.ID,
		&claim.UserID,
		&claim.StatusID,
		&claim.HoursWorked,
		&claim.HourlyRate,
		&claim.TotalAmount,
		&claim.SubmissionDate,
		&claim.Notes,
		&claim.StatusName,
		&owner.ID,
		&owner.FirstName,
		&owner.LastName,
		&owner.Email,
		&owner.PhoneNumber,
		&owner.Role,
		&owner.HourlyRate,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return types.Claim{}, err
	}
	claim.User = &owner
	return claim, nil
}

func (r *ClaimRepository) List(ctx context.Context) ([]types.Claim, error) {
	return r.queryClaims(ctx, claimSelect+` ORDER BY c.id`)
}

// ListByUser returns the claims owned by one user.
func (r *ClaimRepository) ListByUser(ctx context.Context, userID int) ([]types.Claim, error) {
	return r.queryClaims(ctx, claimSelect+` WHERE c.user_id = $1 ORDER BY c.id`, userID)
}

// ListByStatus returns claims whose status is in the given set.
func (r *ClaimRepository) ListByStatus(ctx context.Context, statusIDs ...int) ([]types.Claim, error) {
	ids := make([]int64, len(statusIDs))
	for i, id := range statusIDs {
		ids[i] = int64(id)
	}
	return r.queryClaims(ctx, claimSelect+` WHERE c.status_id = ANY($1) ORDER BY c.id`, pq.Array(ids))
}

func (r *ClaimRepository) queryClaims(ctx context.Context, query string, args ...any) ([]types.Claim, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []types.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachDocuments(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *ClaimRepository) Get(ctx context.Context, id int) (types.Claim, error) {
	claim, err := scanClaim(r.db.QueryRowContext(ctx, claimSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Claim{}, ErrNotFound
		}
		return types.Claim{}, err
	}

	const query = `
		SELECT id, claim_id, file_name, upload_date, file_type, file_size
		FROM documents
		WHERE claim_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return types.Claim{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.ClaimID, &doc.FileName, &doc.UploadDate, &doc.FileType, &doc.FileSize); err != nil {
			return types.Claim{}, err
		}
		claim.Documents = append(claim.Documents, doc)
	}
	if err := rows.Err(); err != nil {
		return types.Claim{}, err
	}
	return claim, nil
}

// Create persists a new claim. The submission timestamp, initial
// status, and derived total are assigned here; the caller's values for
// those fields are ignored. Unknown owners surface as ErrForeignKey.
func (r *ClaimRepository) Create(ctx context.Context, claim types.Claim) (types.Claim, error) {
	claim.SubmissionDate = time.Now()
	claim.StatusID = types.StatusSubmitted
	claim.TotalAmount = claim.HoursWorked * claim.HourlyRate

	const query = `
		INSERT INTO claims (user_id, status_id, hours_worked, hourly_rate, total_amount, submission_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		claim.UserID,
		claim.StatusID,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.TotalAmount,
		claim.SubmissionDate,
		claim.Notes,
	).Scan(&claim.ID); err != nil {
		return types.Claim{}, mapError(err)
	}
	return claim, nil
}

// Update overwrites the mutable fields of a claim. The total is
// recomputed from the stored hours and rate on every write, status-only
// edits included.
func (r *ClaimRepository) Update(ctx context.Context, claim types.Claim) (types.Claim, error) {
	claim.TotalAmount = claim.HoursWorked * claim.HourlyRate

	const query = `
		UPDATE claims
		SET status_id = $1,
			hours_worked = $2,
			hourly_rate = $3,
			total_amount = $4,
			notes = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		claim.StatusID,
		claim.HoursWorked,
		claim.HourlyRate,
		claim.TotalAmount,
		claim.Notes,
		claim.ID,
	)
	if err != nil {
		return types.Claim{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Claim{}, err
	}
	if affected == 0 {
		return types.Claim{}, ErrNotFound
	}
	return claim, nil
}

// Delete removes a claim; its document rows go with it via the cascade
// constraint. Blob content is not touched here.
func (r *ClaimRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM claims WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ClaimRepository) attachDocuments(ctx context.Context, claims []types.Claim) error {
	if len(claims) == 0 {
		return nil
	}

	ids := make([]int64, len(claims))
	index := make(map[int]*types.Claim, len(claims))
	for i := range claims {
		ids[i] = int64(claims[i].ID)
		index[claims[i].ID] = &claims[i]
	}

	const query = `
		SELECT id, claim_id, file_name, upload_date, file_type, file_size
		FROM documents
		WHERE claim_id = ANY($1)
		ORDER BY claim_id, id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.ClaimID, &doc.FileName, &doc.UploadDate, &doc.FileType, &doc.FileSize); err != nil {
			return err
		}
		if claim, ok := index[doc.ClaimID]; ok {
			claim.Documents = append(claim.Documents, doc)
		}
	}
	return rows.Err()
}
