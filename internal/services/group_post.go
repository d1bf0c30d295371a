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
	ErrGroupPostNotFound = errors.New("group post not found")
	ErrNotGroupMember    = errors.New("only group members can post here")
)

// GroupPostService owns posts inside groups and their like sets. Authoring a
// fresh group post requires membership; sharing an existing post into a
// group does not, and callers rely on that.
type GroupPostService struct {
	db     DBConn
	groups GroupChecker
}

func NewGroupPostService(db DBConn, groups GroupChecker) *GroupPostService {
	return &GroupPostService{db: db, groups: groups}
}

func (s *GroupPostService) Create(ctx context.Context, groupID uuid.UUID, title, body, author string) (*models.GroupPost, error) {
	exists, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}
	member, err := s.groups.IsMember(ctx, groupID, author)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotGroupMember
	}

	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, ErrPostValidation
	}

	post := &models.GroupPost{Likes: []string{}}
	err = s.db.QueryRow(ctx,
		`INSERT INTO group_posts (group_id, title, body, author, author_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, group_id, title, body, author, author_key, original_post_id, created_at`,
		groupID, title, body, author, models.UsernameKey(author),
	).Scan(&post.ID, &post.GroupID, &post.Title, &post.Body, &post.Author, &post.AuthorKey, &post.OriginalPostID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating group post: %w", err)
	}
	return post, nil
}

// Share copies an existing post into a group, snapshotting title and body.
// Idempotent per (group, original, sharer) triple.
func (s *GroupPostService) Share(ctx context.Context, groupID, postID uuid.UUID, sharingUser string) (*models.ShareResult, error) {
	exists, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	var title, body string
	err = s.db.QueryRow(ctx,
		`SELECT title, body FROM posts WHERE id = $1`, postID,
	).Scan(&title, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting original post: %w", err)
	}

	sharerKey := models.UsernameKey(sharingUser)
	var already bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM group_posts
			WHERE group_id = $1 AND original_post_id = $2 AND author_key = $3
		)`,
		groupID, postID, sharerKey,
	).Scan(&already)
	if err != nil {
		return nil, fmt.Errorf("checking for existing group share: %w", err)
	}
	if already {
		return &models.ShareResult{Already: true}, nil
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO group_posts (group_id, title, body, author, author_key, original_post_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		groupID, title, body, sharingUser, sharerKey, postID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("sharing into group: %w", err)
	}
	return &models.ShareResult{ID: id}, nil
}

// ListByGroup returns the newest posts in a group with their like sets.
func (s *GroupPostService) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]models.GroupPost, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}
	rows, err := s.db.Query(ctx,
		`SELECT gp.id, gp.group_id, gp.title, gp.body, gp.author, gp.author_key, gp.original_post_id, gp.created_at,
		        COALESCE(array_agg(l.username ORDER BY l.created_at) FILTER (WHERE l.username IS NOT NULL), '{}')
		 FROM group_posts gp
		 LEFT JOIN group_post_likes l ON l.group_post_id = gp.id
		 WHERE gp.group_id = $1
		 GROUP BY gp.id
		 ORDER BY gp.created_at DESC
		 LIMIT $2`,
		groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing group posts: %w", err)
	}
	defer rows.Close()

	posts := []models.GroupPost{}
	for rows.Next() {
		var p models.GroupPost
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Title, &p.Body, &p.Author, &p.AuthorKey, &p.OriginalPostID, &p.CreatedAt, &p.Likes); err != nil {
			return nil, fmt.Errorf("scanning group post: %w", err)
		}
		if p.Likes == nil {
			p.Likes = []string{}
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading group posts: %w", err)
	}
	return posts, nil
}

// Like adds username to the post's like set; repeat likes collapse.
func (s *GroupPostService) Like(ctx context.Context, groupPostID uuid.UUID, username string) error {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_posts WHERE id = $1)`, groupPostID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking group post: %w", err)
	}
	if !exists {
		return ErrGroupPostNotFound
	}

	if _, err := s.db.Exec(ctx,
		`INSERT INTO group_post_likes (group_post_id, username, username_key)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		groupPostID, username, models.UsernameKey(username),
	); err != nil {
		return fmt.Errorf("liking group post: %w", err)
	}
	return nil
}

// Unlike removes username from the like set; unliking something never liked
// is a no-op.
func (s *GroupPostService) Unlike(ctx context.Context, groupPostID uuid.UUID, username string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM group_post_likes WHERE group_post_id = $1 AND username_key = $2`,
		groupPostID, models.UsernameKey(username),
	); err != nil {
		return fmt.Errorf("unliking group post: %w", err)
	}
	return nil
}
