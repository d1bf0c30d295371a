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
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

const maxUserSearchLimit = 50

// UserService is the identity store. Uniqueness is enforced on the
// normalized username key, never on the display form, so lookups are
// case-insensitive without pattern matching.
type UserService struct {
	db DBConn
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	key := models.UsernameKey(params.Username)

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username_key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking username existence: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	var avatar any
	if params.AvatarURL != "" {
		avatar = params.AvatarURL
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (username, username_key, email, password_hash, avatar_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, username, username_key, email, password_hash, COALESCE(avatar_url, ''), created_at, updated_at`,
		params.Username, key, strings.ToLower(strings.TrimSpace(params.Email)), params.PasswordHash, avatar,
	).Scan(&user.ID, &user.Username, &user.UsernameKey, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

// GetByUsername looks a user up case-insensitively.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `WHERE username_key = $1`, models.UsernameKey(username))
}

func (s *UserService) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, username, username_key, email, password_hash, COALESCE(avatar_url, ''), created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(&user.ID, &user.Username, &user.UsernameKey, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// Search finds users by partial username, case-insensitively.
func (s *UserService) Search(ctx context.Context, term string, limit int) ([]models.UserSearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.UserSearchResult{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxUserSearchLimit {
		limit = maxUserSearchLimit
	}

	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.db.Query(ctx,
		`SELECT username, COALESCE(avatar_url, '') FROM users
		 WHERE username_key LIKE $1
		 ORDER BY username
		 LIMIT $2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSearchResult{}
	for rows.Next() {
		var r models.UserSearchResult
		if err := rows.Scan(&r.Username, &r.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	return results, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		newPasswordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
