package repository

import (
	"context"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

const swapColumns = `
	id, shift_id, company_id, from_user_id, to_user_id, accepted_by,
	type, status, deadline, approved_by, manager_notes, manager_responded_at, requested_at
`

func scanSwap(scan func(dst ...any) error) (*domain.ShiftSwap, error) {
	swap := &domain.ShiftSwap{}
	dst := []any{
		&swap.ID,
		&swap.ShiftID,
		&swap.CompanyID,
		&swap.FromUserID,
		&swap.ToUserID,
		&swap.AcceptedBy,
		&swap.Type,
		&swap.Status,
		&swap.Deadline,
		&swap.ApprovedBy,
		&swap.ManagerNotes,
		&swap.ManagerRespondedAt,
		&swap.RequestedAt,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return swap, nil
}

func (r *Repository) GetSwapByID(id int64) (*domain.ShiftSwap, error) {
	query := `SELECT ` + swapColumns + ` FROM shift_swaps WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return scanSwap(r.dbpool.QueryRowContext(ctx, query, id).Scan)
}

// GetActiveSwapByShiftID returns the one non-terminal swap of a shift, or
// sql.ErrNoRows. This is the pre-insert existence check behind the
// single-active-swap invariant.
func (r *Repository) GetActiveSwapByShiftID(shiftID int64) (*domain.ShiftSwap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM shift_swaps
		WHERE shift_id = $1 AND status IN ($2, $3)
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{shiftID, domain.SwapStatusPendingEmployee, domain.SwapStatusAcceptedByEmployee}
	return scanSwap(r.dbpool.QueryRowContext(ctx, query, args...).Scan)
}

func (r *Repository) CreateSwap(swap *domain.ShiftSwap) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_swaps (
			shift_id, company_id, from_user_id, to_user_id, type, status, deadline, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	args := []any{
		swap.ShiftID,
		swap.CompanyID,
		swap.FromUserID,
		swap.ToUserID,
		swap.Type,
		swap.Status,
		swap.Deadline,
		swap.RequestedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&swap.ID); err != nil {
		return err
	}

	return nil
}

// SetSwapStatus is the engine's compare-and-swap: the transition happens only
// if the row still holds the expected status, and the affected-row count is
// the one source of truth for whether it did.
func (r *Repository) SetSwapStatus(id int64, expected, next domain.SwapStatus) (bool, error) {
	query := `
		UPDATE shift_swaps
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// ClaimSwap marks a public swap as taken by the claimant. Concurrent claims
// race on the status predicate; only one update affects the row.
func (r *Repository) ClaimSwap(id, claimantID int64) (bool, error) {
	query := `
		UPDATE shift_swaps
		SET accepted_by = $1, status = $2
		WHERE id = $3 AND status = $4 AND type = $5 AND accepted_by IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{
		claimantID,
		domain.SwapStatusAcceptedByEmployee,
		id,
		domain.SwapStatusPendingEmployee,
		domain.SwapTypePublic,
	}
	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// ApproveSwapAndReassignShift closes the swap and hands the shift over inside
// one transaction. The shift update touches assigned_to and modified_by only,
// so concurrently edited notes or extra hours survive. If the swap left the
// accepted state in the meantime, nothing is committed and false is returned.
func (r *Repository) ApproveSwapAndReassignShift(swapID, shiftID, newAssignee, approvedBy int64, respondedAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shift_swaps
		SET status = $1, approved_by = $2, manager_responded_at = $3
		WHERE id = $4 AND status = $5
	`

	args := []any{domain.SwapStatusApproved, approvedBy, respondedAt, swapID, domain.SwapStatusAcceptedByEmployee}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected != 1 {
		return false, nil
	}

	query = `
		UPDATE shifts
		SET assigned_to = $1, modified_by = $2, version = version + 1
		WHERE id = $3
	`

	if _, err := tx.ExecContext(ctx, query, newAssignee, approvedBy, shiftID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *Repository) RejectSwapByManager(swapID, managerID int64, notes string, respondedAt time.Time) (bool, error) {
	query := `
		UPDATE shift_swaps
		SET status = $1, approved_by = $2, manager_notes = $3, manager_responded_at = $4
		WHERE id = $5 AND status = $6
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{domain.SwapStatusRejectedByManager, managerID, notes, respondedAt, swapID, domain.SwapStatusAcceptedByEmployee}
	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// CancelActiveSwapsForShift terminates whatever hand-off is still in flight
// when a manager deletes the shift itself.
func (r *Repository) CancelActiveSwapsForShift(shiftID int64) error {
	query := `
		UPDATE shift_swaps
		SET status = $1
		WHERE shift_id = $2 AND status IN ($3, $4)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{domain.SwapStatusCancelled, shiftID, domain.SwapStatusPendingEmployee, domain.SwapStatusAcceptedByEmployee}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

// GetSwapsByUser lists swaps the user is a party to, newest first.
func (r *Repository) GetSwapsByUser(userID int64) ([]*domain.ShiftSwap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM shift_swaps
		WHERE from_user_id = $1 OR to_user_id = $1 OR accepted_by = $1
		ORDER BY requested_at DESC
	`

	return r.querySwaps(query, userID)
}

// GetPublicSwapsForUser lists claimable board entries: pending public swaps
// on shifts in the user's groups, excluding the user's own requests.
func (r *Repository) GetPublicSwapsForUser(userID int64) ([]*domain.ShiftSwap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM shift_swaps sw
		WHERE sw.type = 'public'
			AND sw.status = 'pending_employee'
			AND sw.from_user_id <> $1
			AND EXISTS (
				SELECT 1 FROM shifts s
				JOIN group_members gm ON gm.group_id = s.group_id
				WHERE s.id = sw.shift_id AND gm.user_id = $1
			)
		ORDER BY sw.deadline
	`

	return r.querySwaps(query, userID)
}

func (r *Repository) GetSwapsByGroup(groupID int64) ([]*domain.ShiftSwap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM shift_swaps sw
		WHERE EXISTS (SELECT 1 FROM shifts s WHERE s.id = sw.shift_id AND s.group_id = $1)
		ORDER BY sw.requested_at DESC
	`

	return r.querySwaps(query, groupID)
}

func (r *Repository) querySwaps(query string, args ...any) ([]*domain.ShiftSwap, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	swaps := make([]*domain.ShiftSwap, 0)
	for rows.Next() {
		swap, err := scanSwap(rows.Scan)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, swap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return swaps, nil
}
