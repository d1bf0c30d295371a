package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/battulga/naiznet/internal/models"
)

var (
	ErrGroupValidation = errors.New("group name and creator are required")
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotGroupAdmin   = errors.New("only a group admin can do this")
	ErrCannotKickAdmin = errors.New("only the group creator can kick an admin")
)

const maxGroupListLimit = 100

// GroupService owns group membership state. Members, admins and join
// requests are independent sets keyed by normalized username; set semantics
// come from ON CONFLICT DO NOTHING inserts and keyed deletes.
type GroupService struct {
	db DB
}

func NewGroupService(db DB) *GroupService {
	return &GroupService{db: db}
}

// Create makes a new group with the creator seeded as both member and admin.
func (s *GroupService) Create(ctx context.Context, name, description, creator string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	creator = strings.TrimSpace(creator)
	creatorKey := models.UsernameKey(creator)
	if name == "" || creatorKey == "" {
		return nil, ErrGroupValidation
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin group creation: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	group := &models.Group{}
	err = tx.QueryRow(ctx,
		`INSERT INTO groups (name, description, created_by, created_by_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, description, created_by, created_by_key, created_at`,
		name, description, creator, creatorKey,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedByKey, &group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting group: %w", err)
	}

	for _, table := range []string{"group_members", "group_admins"} {
		_, err = tx.Exec(ctx,
			`INSERT INTO `+table+` (group_id, username, username_key) VALUES ($1, $2, $3)`,
			group.ID, creator, creatorKey,
		)
		if err != nil {
			return nil, fmt.Errorf("seeding creator into %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit group creation: %w", err)
	}
	committed = true
	return group, nil
}

// GetByID loads a group with its member, admin and join-request sets.
func (s *GroupService) GetByID(ctx context.Context, id uuid.UUID) (*models.GroupDetail, error) {
	detail := &models.GroupDetail{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_by_key, created_at
		 FROM groups WHERE id = $1`,
		id,
	).Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedBy, &detail.CreatedByKey, &detail.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	if detail.Members, err = s.usernameSet(ctx, "group_members", id); err != nil {
		return nil, err
	}
	if detail.Admins, err = s.usernameSet(ctx, "group_admins", id); err != nil {
		return nil, err
	}
	if detail.JoinRequests, err = s.usernameSet(ctx, "group_join_requests", id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *GroupService) usernameSet(ctx context.Context, table string, groupID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT username FROM `+table+` WHERE group_id = $1 ORDER BY added_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return usernames, nil
}

// List returns the newest groups, capped at 100.
func (s *GroupService) List(ctx context.Context, limit int) ([]models.Group, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxGroupListLimit {
		limit = maxGroupListLimit
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, created_by, created_by_key, created_at
		 FROM groups ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedByKey, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading groups: %w", err)
	}
	return groups, nil
}

// ListForUser returns the groups username belongs to.
func (s *GroupService) ListForUser(ctx context.Context, username string) ([]models.GroupSummary, error) {
	key := models.UsernameKey(username)
	if key == "" {
		return []models.GroupSummary{}, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT g.id, g.name FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.username_key = $1
		 ORDER BY g.name`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user groups: %w", err)
	}
	defer rows.Close()

	groups := []models.GroupSummary{}
	for rows.Next() {
		var g models.GroupSummary
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning user group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading user groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) IsMember(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	return s.inSet(ctx, "group_members", groupID, username)
}

func (s *GroupService) IsAdmin(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	return s.inSet(ctx, "group_admins", groupID, username)
}

func (s *GroupService) IsPending(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	return s.inSet(ctx, "group_join_requests", groupID, username)
}

func (s *GroupService) inSet(ctx context.Context, table string, groupID uuid.UUID, username string) (bool, error) {
	var in bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE group_id = $1 AND username_key = $2)`,
		groupID, models.UsernameKey(username),
	).Scan(&in)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", table, err)
	}
	return in, nil
}

// Join records a join request. Existing members succeed idempotently with no
// pending state; duplicate joins collapse into one request.
func (s *GroupService) Join(ctx context.Context, groupID uuid.UUID, username string) (*models.JoinResult, error) {
	if err := s.mustExist(ctx, groupID); err != nil {
		return nil, err
	}
	member, err := s.IsMember(ctx, groupID, username)
	if err != nil {
		return nil, err
	}
	if member {
		return &models.JoinResult{}, nil
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO group_join_requests (group_id, username, username_key)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		groupID, username, models.UsernameKey(username),
	)
	if err != nil {
		return nil, fmt.Errorf("recording join request: %w", err)
	}
	return &models.JoinResult{Pending: true}, nil
}

// Approve moves target from the join-request set into the member set.
// Repeat approvals are no-ops.
func (s *GroupService) Approve(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	if err := s.requireAdmin(ctx, groupID, admin); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	targetKey := models.UsernameKey(target)
	_, err = tx.Exec(ctx,
		`DELETE FROM group_join_requests WHERE group_id = $1 AND username_key = $2`,
		groupID, targetKey,
	)
	if err != nil {
		return fmt.Errorf("clearing join request: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, username, username_key)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		groupID, target, targetKey,
	)
	if err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit approve: %w", err)
	}
	committed = true
	return nil
}

// Reject clears target's join request without admitting them.
func (s *GroupService) Reject(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	if err := s.requireAdmin(ctx, groupID, admin); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM group_join_requests WHERE group_id = $1 AND username_key = $2`,
		groupID, models.UsernameKey(target),
	)
	if err != nil {
		return fmt.Errorf("rejecting join request: %w", err)
	}
	return nil
}

// Leave removes username from the member set and, separately, from the
// admin set; a departing admin loses admin status.
func (s *GroupService) Leave(ctx context.Context, groupID uuid.UUID, username string) error {
	if err := s.mustExist(ctx, groupID); err != nil {
		return err
	}
	key := models.UsernameKey(username)
	if _, err := s.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND username_key = $2`,
		groupID, key,
	); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	if _, err := s.db.Exec(ctx,
		`DELETE FROM group_admins WHERE group_id = $1 AND username_key = $2`,
		groupID, key,
	); err != nil {
		return fmt.Errorf("removing admin: %w", err)
	}
	return nil
}

// Kick removes target from the group. Admins can kick ordinary members;
// only the creator can kick another admin.
func (s *GroupService) Kick(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	group := &models.Group{}
	err := s.db.QueryRow(ctx,
		`SELECT id, created_by, created_by_key FROM groups WHERE id = $1`,
		groupID,
	).Scan(&group.ID, &group.CreatedBy, &group.CreatedByKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("getting group: %w", err)
	}

	isAdmin, err := s.IsAdmin(ctx, groupID, admin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotGroupAdmin
	}

	targetIsAdmin, err := s.IsAdmin(ctx, groupID, target)
	if err != nil {
		return err
	}
	if targetIsAdmin && group.CreatedByKey != models.UsernameKey(admin) {
		return ErrCannotKickAdmin
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin kick: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	targetKey := models.UsernameKey(target)
	for _, table := range []string{"group_members", "group_admins"} {
		if _, err := tx.Exec(ctx,
			`DELETE FROM `+table+` WHERE group_id = $1 AND username_key = $2`,
			groupID, targetKey,
		); err != nil {
			return fmt.Errorf("removing target from %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit kick: %w", err)
	}
	committed = true
	return nil
}

func (s *GroupService) Exists(ctx context.Context, groupID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking group existence: %w", err)
	}
	return exists, nil
}

func (s *GroupService) mustExist(ctx context.Context, groupID uuid.UUID) error {
	exists, err := s.Exists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrGroupNotFound
	}
	return nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID uuid.UUID, admin string) error {
	if err := s.mustExist(ctx, groupID); err != nil {
		return err
	}
	isAdmin, err := s.IsAdmin(ctx, groupID, admin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotGroupAdmin
	}
	return nil
}
