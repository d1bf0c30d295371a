package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/battulga/naiznet/internal/models"
)

const (
	bcryptCost       = 12
	sessionDuration  = 30 * 24 * time.Hour // 30 days
	sessionKeyPrefix = "session:"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

type AuthService struct {
	db    DBConn
	redis RedisConn
	users *UserService
}

func NewAuthService(db DBConn, redis RedisConn, users *UserService) *AuthService {
	return &AuthService{db: db, redis: redis, users: users}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login checks credentials and reports the verified user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) GenerateSessionToken() (token string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	token = hex.EncodeToString(bytes)
	hashBytes := sha256.Sum256([]byte(token))
	hash = hex.EncodeToString(hashBytes[:])

	return token, hash, nil
}

func (s *AuthService) hashToken(token string) string {
	hashBytes := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hashBytes[:])
}

func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error) {
	token, tokenHash, err := s.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(sessionDuration)

	// Redis is the primary session store; fall back to Postgres when it
	// is unavailable.
	redisKey := sessionKeyPrefix + tokenHash
	err = s.redis.Set(ctx, redisKey, userID.String(), sessionDuration)
	if err != nil {
		_, err = s.db.Exec(ctx,
			`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
			userID, tokenHash, expiresAt,
		)
		if err != nil {
			return "", fmt.Errorf("creating session in database: %w", err)
		}
	}

	return token, nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	tokenHash := s.hashToken(token)

	redisKey := sessionKeyPrefix + tokenHash
	userIDStr, err := s.redis.Get(ctx, redisKey)
	if err == nil {
		// Found in Redis, extend the session
		_ = s.redis.Expire(ctx, redisKey, sessionDuration)

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parsing user id: %w", err)
		}
		return s.users.GetByID(ctx, userID)
	}

	var session models.Session
	err = s.db.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		_, _ = s.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", session.ID)
		return nil, ErrSessionExpired
	}

	return s.users.GetByID(ctx, session.UserID)
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	tokenHash := s.hashToken(token)

	_ = s.redis.Del(ctx, sessionKeyPrefix+tokenHash)

	_, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
