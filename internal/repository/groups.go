package repository

import (
	"context"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

func (r *Repository) GetGroupByID(id int64) (*domain.Group, error) {
	query := `
		SELECT company_id, name, manager_id, created_at, version
		FROM groups WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	group := &domain.Group{
		ID: id,
	}

	dst := []any{&group.CompanyID, &group.Name, &group.ManagerID, &group.CreatedAt, &group.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return group, nil
}

func (r *Repository) CreateGroup(group *domain.Group) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO groups (company_id, name, manager_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{group.CompanyID, group.Name, group.ManagerID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&group.ID, &group.CreatedAt, &group.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) AddGroupMember(groupID, userID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.dbpool.ExecContext(ctx, query, groupID, userID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) IsGroupMember(groupID, userID int64) (bool, error) {
	isMember := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, groupID, userID).Scan(&isMember); err != nil {
		return false, err
	}

	return isMember, nil
}

func (r *Repository) GetGroupMembers(groupID int64) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT u.id, u.company_id, u.username, u.full_name, u.email, u.role, u.is_active, u.created_at, u.version
		FROM users u
		JOIN group_members gm ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY u.full_name, u.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.CompanyID, &user.Username, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) GetGroupIDsByMember(userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT group_id FROM group_members WHERE user_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
