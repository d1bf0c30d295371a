package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/battulga/naiznet/internal/models"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrNoPendingRequest   = errors.New("no pending friend request")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// FriendshipService owns the friendship edge state machine. There is at most
// one record per unordered username pair (enforced by a unique index on the
// normalized pair), so crossed requests collapse into a single accepted edge
// via a conditional update instead of reconciliation logic.
type FriendshipService struct {
	db DBConn
}

func NewFriendshipService(db DBConn) *FriendshipService {
	return &FriendshipService{db: db}
}

// StatusBetween reports the relationship from a's perspective.
func (s *FriendshipService) StatusBetween(ctx context.Context, a, b string) (models.RelationshipStatus, error) {
	aKey := models.UsernameKey(a)
	bKey := models.UsernameKey(b)
	if aKey == "" || bKey == "" {
		return models.RelationshipNone, nil
	}

	var requesterKey string
	var status models.FriendshipStatus
	err := s.db.QueryRow(ctx,
		`SELECT requester_key, status FROM friendships
		 WHERE (requester_key = $1 AND recipient_key = $2)
		    OR (requester_key = $2 AND recipient_key = $1)`,
		aKey, bKey,
	).Scan(&requesterKey, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RelationshipNone, nil
	}
	if err != nil {
		return models.RelationshipNone, fmt.Errorf("querying friendship status: %w", err)
	}

	switch status {
	case models.FriendshipStatusAccepted:
		return models.RelationshipFriends, nil
	case models.FriendshipStatusPending:
		if requesterKey == aKey {
			return models.RelationshipPendingOutgoing, nil
		}
		return models.RelationshipPendingIncoming, nil
	}
	return models.RelationshipNone, nil
}

// Request records a pending edge from from to to. A self-request is a no-op
// success. If the reverse pending request already exists the two requests
// collapse into one accepted edge. Repeat requests are idempotent.
func (s *FriendshipService) Request(ctx context.Context, from, to string) (*models.FriendRequestResult, error) {
	fromKey := models.UsernameKey(from)
	toKey := models.UsernameKey(to)
	if fromKey == "" || toKey == "" {
		return nil, ErrUsernameRequired
	}
	if fromKey == toKey {
		return &models.FriendRequestResult{}, nil
	}

	// Crossed requests: a pending edge in the other direction flips to
	// accepted atomically. RowsAffected == 0 means there was none.
	tag, err := s.db.Exec(ctx,
		`UPDATE friendships SET status = 'accepted'
		 WHERE requester_key = $1 AND recipient_key = $2 AND status = 'pending'`,
		toKey, fromKey,
	)
	if err != nil {
		return nil, fmt.Errorf("collapsing crossed requests: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return &models.FriendRequestResult{Accepted: true}, nil
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE (requester_key = $1 AND recipient_key = $2)
			   OR (requester_key = $2 AND recipient_key = $1)
		)`,
		fromKey, toKey,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking friendship existence: %w", err)
	}
	if exists {
		return &models.FriendRequestResult{}, nil
	}

	// ON CONFLICT covers the race where both sides insert simultaneously;
	// the loser reports a plain no-op success.
	tag, err = s.db.Exec(ctx,
		`INSERT INTO friendships (requester, requester_key, recipient, recipient_key, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 ON CONFLICT DO NOTHING`,
		from, fromKey, to, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}
	return &models.FriendRequestResult{Created: tag.RowsAffected() == 1}, nil
}

// Accept transitions a pending request sent by from to me into an accepted
// edge. Only the recipient side matches the filter, so anyone else calling
// this is a no-op reported as ErrNoPendingRequest.
func (s *FriendshipService) Accept(ctx context.Context, me, from string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE friendships SET status = 'accepted'
		 WHERE requester_key = $1 AND recipient_key = $2 AND status = 'pending'`,
		models.UsernameKey(from), models.UsernameKey(me),
	)
	if err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// Decline deletes a pending request sent by from to me.
func (s *FriendshipService) Decline(ctx context.Context, me, from string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM friendships
		 WHERE requester_key = $1 AND recipient_key = $2 AND status = 'pending'`,
		models.UsernameKey(from), models.UsernameKey(me),
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoPendingRequest
	}
	return nil
}

// Unfriend deletes an accepted edge between a and b, whichever side
// requested it originally.
func (s *FriendshipService) Unfriend(ctx context.Context, a, b string) error {
	aKey := models.UsernameKey(a)
	bKey := models.UsernameKey(b)
	tag, err := s.db.Exec(ctx,
		`DELETE FROM friendships
		 WHERE ((requester_key = $1 AND recipient_key = $2)
		     OR (requester_key = $2 AND recipient_key = $1))
		   AND status = 'accepted'`,
		aKey, bKey,
	)
	if err != nil {
		return fmt.Errorf("removing friendship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// FriendsOf returns the display usernames on the other side of every
// accepted edge touching username.
func (s *FriendshipService) FriendsOf(ctx context.Context, username string) ([]string, error) {
	key := models.UsernameKey(username)
	rows, err := s.db.Query(ctx,
		`SELECT requester, requester_key, recipient FROM friendships
		 WHERE status = 'accepted' AND (requester_key = $1 OR recipient_key = $1)
		 ORDER BY created_at DESC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	friends := []string{}
	for rows.Next() {
		var requester, requesterKey, recipient string
		if err := rows.Scan(&requester, &requesterKey, &recipient); err != nil {
			return nil, fmt.Errorf("scanning friendship: %w", err)
		}
		if requesterKey == key {
			friends = append(friends, recipient)
		} else {
			friends = append(friends, requester)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friendships: %w", err)
	}
	return friends, nil
}

// PendingIncoming returns the requesters of pending edges addressed to
// username.
func (s *FriendshipService) PendingIncoming(ctx context.Context, username string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT requester FROM friendships
		 WHERE status = 'pending' AND recipient_key = $1
		 ORDER BY created_at DESC`,
		models.UsernameKey(username),
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	requesters := []string{}
	for rows.Next() {
		var requester string
		if err := rows.Scan(&requester); err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		requesters = append(requesters, requester)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading pending requests: %w", err)
	}
	return requesters, nil
}
