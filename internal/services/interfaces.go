package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/battulga/naiznet/internal/models"
)

// UserServiceInterface defines the contract for identity operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Search(ctx context.Context, term string, limit int) ([]models.UserSearchResult, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	Login(ctx context.Context, username, password string) (*models.User, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// PasswordResetServiceInterface defines the contract for reset-token operations.
type PasswordResetServiceInterface interface {
	Start(ctx context.Context, username string) (string, error)
	Verify(ctx context.Context, token string) error
	Finish(ctx context.Context, token, newPasswordHash string) error
}

// FriendshipServiceInterface defines the contract for the friendship state machine.
type FriendshipServiceInterface interface {
	StatusBetween(ctx context.Context, a, b string) (models.RelationshipStatus, error)
	Request(ctx context.Context, from, to string) (*models.FriendRequestResult, error)
	Accept(ctx context.Context, me, from string) error
	Decline(ctx context.Context, me, from string) error
	Unfriend(ctx context.Context, a, b string) error
	FriendsOf(ctx context.Context, username string) ([]string, error)
	PendingIncoming(ctx context.Context, username string) ([]string, error)
}

// GroupServiceInterface defines the contract for group membership operations.
type GroupServiceInterface interface {
	Create(ctx context.Context, name, description, creator string) (*models.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GroupDetail, error)
	List(ctx context.Context, limit int) ([]models.Group, error)
	ListForUser(ctx context.Context, username string) ([]models.GroupSummary, error)
	Exists(ctx context.Context, groupID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	IsAdmin(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	IsPending(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	Join(ctx context.Context, groupID uuid.UUID, username string) (*models.JoinResult, error)
	Approve(ctx context.Context, groupID uuid.UUID, admin, target string) error
	Reject(ctx context.Context, groupID uuid.UUID, admin, target string) error
	Leave(ctx context.Context, groupID uuid.UUID, username string) error
	Kick(ctx context.Context, groupID uuid.UUID, admin, target string) error
}

// GroupChecker is the slice of group state the group-post service needs.
type GroupChecker interface {
	Exists(ctx context.Context, groupID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
}

// GroupPostServiceInterface defines the contract for posts inside groups.
type GroupPostServiceInterface interface {
	Create(ctx context.Context, groupID uuid.UUID, title, body, author string) (*models.GroupPost, error)
	Share(ctx context.Context, groupID, postID uuid.UUID, sharingUser string) (*models.ShareResult, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]models.GroupPost, error)
	Like(ctx context.Context, groupPostID uuid.UUID, username string) error
	Unlike(ctx context.Context, groupPostID uuid.UUID, username string) error
}

// PostServiceInterface defines the contract for authored posts and shares.
type PostServiceInterface interface {
	Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, username string, params models.UpdatePostParams) error
	Delete(ctx context.Context, id uuid.UUID, username string) error
	Share(ctx context.Context, originalID uuid.UUID, sharingUser string) (*models.ShareResult, error)
	ShareToFriend(ctx context.Context, originalID uuid.UUID, sharingUser, friend string) (*models.ShareResult, error)
	Feed(ctx context.Context, excludeUser string, limit int) ([]models.Post, error)
	FindByAuthor(ctx context.Context, username string) ([]models.Post, error)
	ProfileFeed(ctx context.Context, username string) ([]models.Post, error)
	CountByAuthor(ctx context.Context, username string) (int, error)
}

// MessageServiceInterface defines the contract for direct messages.
type MessageServiceInterface interface {
	Send(ctx context.Context, from, to, body string) (*models.Message, error)
	Conversation(ctx context.Context, a, b string) ([]models.Message, error)
}
