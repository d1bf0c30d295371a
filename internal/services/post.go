package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/battulga/naiznet/internal/models"
)

var (
	ErrPostValidation = errors.New("title and body are required")
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostAuthor  = errors.New("only the author can modify this post")
	ErrOwnPost        = errors.New("cannot share your own post")
	ErrFriendIsAuthor = errors.New("target friend wrote the original post")
	ErrSelfShare      = errors.New("cannot target a share at yourself")
)

const maxFeedLimit = 100

const postColumns = `id, title, body, author, author_key, created_at,
	shared_original_id, shared_original_author, shared_original_created_at, shared_at, shared_to`

// PostService owns authored posts and shares. A share is a new post row
// carrying a snapshot of the original's title and body plus the shared
// sub-record; edits to the original never reach existing shares.
type PostService struct {
	db DBConn
}

func NewPostService(db DBConn) *PostService {
	return &PostService{db: db}
}

func (s *PostService) Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	author := strings.TrimSpace(params.Author)
	if title == "" || body == "" || author == "" {
		return nil, ErrPostValidation
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO posts (title, body, author, author_key)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+postColumns,
		title, body, author, models.UsernameKey(author),
	)
	post, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return post, nil
}

// Update edits title and body. Only the author may edit.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, username string, params models.UpdatePostParams) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorKey != models.UsernameKey(username) {
		return ErrNotPostAuthor
	}

	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	if title == "" || body == "" {
		return ErrPostValidation
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE posts SET title = $1, body = $2 WHERE id = $3`,
		title, body, id,
	); err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return nil
}

// Delete removes a post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID, username string) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorKey != models.UsernameKey(username) {
		return ErrNotPostAuthor
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// Share reposts an original to the sharer's own profile. Sharing your own
// post is rejected; a repeat share of the same original by the same user is
// an idempotent success. The duplicate probe deliberately ignores the
// targeted-share field, so a prior targeted share also satisfies it.
func (s *PostService) Share(ctx context.Context, originalID uuid.UUID, sharingUser string) (*models.ShareResult, error) {
	original, err := s.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	sharerKey := models.UsernameKey(sharingUser)
	if original.AuthorKey == sharerKey {
		return nil, ErrOwnPost
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM posts WHERE shared_original_id = $1 AND author_key = $2
		)`,
		originalID, sharerKey,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking for existing share: %w", err)
	}
	if exists {
		return &models.ShareResult{Already: true}, nil
	}

	return s.insertShare(ctx, original, sharingUser, "")
}

// ShareToFriend reposts an original onto a specific friend's profile.
// Idempotent per (original, sharer, target) triple.
func (s *PostService) ShareToFriend(ctx context.Context, originalID uuid.UUID, sharingUser, friend string) (*models.ShareResult, error) {
	original, err := s.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	sharerKey := models.UsernameKey(sharingUser)
	friendKey := models.UsernameKey(friend)
	if original.AuthorKey == friendKey {
		return nil, ErrFriendIsAuthor
	}
	if friendKey == sharerKey {
		return nil, ErrSelfShare
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM posts
			WHERE shared_original_id = $1 AND author_key = $2 AND shared_to_key = $3
		)`,
		originalID, sharerKey, friendKey,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking for existing targeted share: %w", err)
	}
	if exists {
		return &models.ShareResult{Already: true}, nil
	}

	return s.insertShare(ctx, original, sharingUser, friend)
}

func (s *PostService) insertShare(ctx context.Context, original *models.Post, sharingUser, friend string) (*models.ShareResult, error) {
	var sharedTo, sharedToKey any
	if friend != "" {
		sharedTo = friend
		sharedToKey = models.UsernameKey(friend)
	}

	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		`INSERT INTO posts (title, body, author, author_key,
		                    shared_original_id, shared_original_author, shared_original_created_at,
		                    shared_at, shared_to, shared_to_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		original.Title, original.Body, sharingUser, models.UsernameKey(sharingUser),
		original.ID, original.Author, original.CreatedAt, time.Now(), sharedTo, sharedToKey,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("inserting share: %w", err)
	}
	return &models.ShareResult{ID: id}, nil
}

// Feed returns recent posts, optionally excluding one author (the home feed
// hides the viewer's own posts).
func (s *PostService) Feed(ctx context.Context, excludeUser string, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	return s.listPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE $1 = '' OR author_key <> $1
		 ORDER BY created_at DESC LIMIT $2`,
		models.UsernameKey(excludeUser), limit,
	)
}

func (s *PostService) FindByAuthor(ctx context.Context, username string) ([]models.Post, error) {
	return s.listPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE author_key = $1 ORDER BY created_at DESC`,
		models.UsernameKey(username),
	)
}

// ProfileFeed is the union of posts username authored and shares targeted at
// them, in mixed chronology: a share sorts by its share date, an authored
// original by its creation date.
func (s *PostService) ProfileFeed(ctx context.Context, username string) ([]models.Post, error) {
	key := models.UsernameKey(username)
	return s.listPosts(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE author_key = $1 OR shared_to_key = $1
		 ORDER BY COALESCE(shared_at, created_at) DESC`,
		key,
	)
}

func (s *PostService) CountByAuthor(ctx context.Context, username string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE author_key = $1`,
		models.UsernameKey(username),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting posts: %w", err)
	}
	return count, nil
}

func (s *PostService) listPosts(ctx context.Context, sql string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading posts: %w", err)
	}
	return posts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row Row) (*models.Post, error) {
	return scanPostRow(row)
}

func scanPostRow(sc scanner) (*models.Post, error) {
	post := &models.Post{}
	var (
		origID      *uuid.UUID
		origAuthor  *string
		origCreated *time.Time
		sharedAt    *time.Time
		sharedTo    *string
	)
	err := sc.Scan(&post.ID, &post.Title, &post.Body, &post.Author, &post.AuthorKey, &post.CreatedAt,
		&origID, &origAuthor, &origCreated, &sharedAt, &sharedTo)
	if err != nil {
		return nil, err
	}
	if origID != nil {
		post.Shared = &models.SharedInfo{OriginalID: *origID}
		if sharedAt != nil {
			post.Shared.SharedAt = *sharedAt
		}
		if origAuthor != nil {
			post.Shared.OriginalAuthor = *origAuthor
		}
		if origCreated != nil {
			post.Shared.OriginalCreatedAt = *origCreated
		}
		if sharedTo != nil {
			post.Shared.To = *sharedTo
		}
	}
	return post, nil
}
