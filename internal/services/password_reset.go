package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/battulga/naiznet/internal/models"
)

const resetTokenDuration = 15 * time.Minute

var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// PasswordResetService issues and consumes short-lived reset tokens. Token
// delivery (email) happens outside this service; Start hands the plain
// token back to the caller and stores only its hash.
type PasswordResetService struct {
	db    DBConn
	users *UserService
}

func NewPasswordResetService(db DBConn, users *UserService) *PasswordResetService {
	return &PasswordResetService{db: db, users: users}
}

// Start creates a reset token for username. An unknown username reports
// success with an empty token so callers cannot probe for accounts.
func (s *PasswordResetService) Start(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	token := hex.EncodeToString(bytes)
	tokenHash := hashResetToken(token)

	// One live reset per user: earlier tokens are invalidated.
	if _, err := s.db.Exec(ctx,
		`DELETE FROM password_resets WHERE username_key = $1`, user.UsernameKey,
	); err != nil {
		return "", fmt.Errorf("clearing earlier resets: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`INSERT INTO password_resets (username_key, token_hash, expires_at) VALUES ($1, $2, $3)`,
		user.UsernameKey, tokenHash, time.Now().Add(resetTokenDuration),
	); err != nil {
		return "", fmt.Errorf("storing reset token: %w", err)
	}

	return token, nil
}

// Verify checks that a token exists and has not expired.
func (s *PasswordResetService) Verify(ctx context.Context, token string) error {
	_, err := s.getValid(ctx, token)
	return err
}

// Finish consumes the token and installs the new password hash.
func (s *PasswordResetService) Finish(ctx context.Context, token, newPasswordHash string) error {
	reset, err := s.getValid(ctx, token)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE username_key = $2`,
		newPasswordHash, reset.UsernameKey,
	); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`DELETE FROM password_resets WHERE id = $1`, reset.ID,
	); err != nil {
		return fmt.Errorf("consuming reset token: %w", err)
	}
	return nil
}

func (s *PasswordResetService) getValid(ctx context.Context, token string) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	err := s.db.QueryRow(ctx,
		`SELECT id, username_key, token_hash, expires_at, created_at
		 FROM password_resets WHERE token_hash = $1`,
		hashResetToken(token),
	).Scan(&reset.ID, &reset.UsernameKey, &reset.TokenHash, &reset.ExpiresAt, &reset.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("looking up reset token: %w", err)
	}
	if time.Now().After(reset.ExpiresAt) {
		return nil, ErrResetTokenInvalid
	}
	return reset, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
