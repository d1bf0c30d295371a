package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/battulga/naiznet/internal/models"
)

// Service fakes with function fields, stubbing only what each test needs.
// Unstubbed calls error so tests notice unexpected interactions.

type fakeUserService struct {
	CreateFunc         func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
	SearchFunc         func(ctx context.Context, term string, limit int) ([]models.UserSearchResult, error)
	UpdatePasswordFunc func(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
}

func (f *fakeUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if f.CreateFunc == nil {
		return nil, errors.New("unexpected Create")
	}
	return f.CreateFunc(ctx, params)
}

func (f *fakeUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.GetByIDFunc == nil {
		return nil, errors.New("unexpected GetByID")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.GetByUsernameFunc == nil {
		return nil, errors.New("unexpected GetByUsername")
	}
	return f.GetByUsernameFunc(ctx, username)
}

func (f *fakeUserService) Search(ctx context.Context, term string, limit int) ([]models.UserSearchResult, error) {
	if f.SearchFunc == nil {
		return nil, errors.New("unexpected Search")
	}
	return f.SearchFunc(ctx, term, limit)
}

func (f *fakeUserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	if f.UpdatePasswordFunc == nil {
		return errors.New("unexpected UpdatePassword")
	}
	return f.UpdatePasswordFunc(ctx, userID, newPasswordHash)
}

type fakeAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	VerifyPasswordFunc  func(hash, password string) bool
	LoginFunc           func(ctx context.Context, username, password string) (*models.User, error)
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (f *fakeAuthService) HashPassword(password string) (string, error) {
	if f.HashPasswordFunc == nil {
		return "hashed:" + password, nil
	}
	return f.HashPasswordFunc(password)
}

func (f *fakeAuthService) VerifyPassword(hash, password string) bool {
	if f.VerifyPasswordFunc == nil {
		return false
	}
	return f.VerifyPasswordFunc(hash, password)
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if f.LoginFunc == nil {
		return nil, errors.New("unexpected Login")
	}
	return f.LoginFunc(ctx, username, password)
}

func (f *fakeAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if f.CreateSessionFunc == nil {
		return "", errors.New("unexpected CreateSession")
	}
	return f.CreateSessionFunc(ctx, userID)
}

func (f *fakeAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if f.ValidateSessionFunc == nil {
		return nil, errors.New("unexpected ValidateSession")
	}
	return f.ValidateSessionFunc(ctx, token)
}

func (f *fakeAuthService) DeleteSession(ctx context.Context, token string) error {
	if f.DeleteSessionFunc == nil {
		return errors.New("unexpected DeleteSession")
	}
	return f.DeleteSessionFunc(ctx, token)
}

type fakeResetService struct {
	StartFunc  func(ctx context.Context, username string) (string, error)
	VerifyFunc func(ctx context.Context, token string) error
	FinishFunc func(ctx context.Context, token, newPasswordHash string) error
}

func (f *fakeResetService) Start(ctx context.Context, username string) (string, error) {
	if f.StartFunc == nil {
		return "", errors.New("unexpected Start")
	}
	return f.StartFunc(ctx, username)
}

func (f *fakeResetService) Verify(ctx context.Context, token string) error {
	if f.VerifyFunc == nil {
		return errors.New("unexpected Verify")
	}
	return f.VerifyFunc(ctx, token)
}

func (f *fakeResetService) Finish(ctx context.Context, token, newPasswordHash string) error {
	if f.FinishFunc == nil {
		return errors.New("unexpected Finish")
	}
	return f.FinishFunc(ctx, token, newPasswordHash)
}

type fakeFriendshipService struct {
	StatusBetweenFunc   func(ctx context.Context, a, b string) (models.RelationshipStatus, error)
	RequestFunc         func(ctx context.Context, from, to string) (*models.FriendRequestResult, error)
	AcceptFunc          func(ctx context.Context, me, from string) error
	DeclineFunc         func(ctx context.Context, me, from string) error
	UnfriendFunc        func(ctx context.Context, a, b string) error
	FriendsOfFunc       func(ctx context.Context, username string) ([]string, error)
	PendingIncomingFunc func(ctx context.Context, username string) ([]string, error)
}

func (f *fakeFriendshipService) StatusBetween(ctx context.Context, a, b string) (models.RelationshipStatus, error) {
	if f.StatusBetweenFunc == nil {
		return models.RelationshipNone, errors.New("unexpected StatusBetween")
	}
	return f.StatusBetweenFunc(ctx, a, b)
}

func (f *fakeFriendshipService) Request(ctx context.Context, from, to string) (*models.FriendRequestResult, error) {
	if f.RequestFunc == nil {
		return nil, errors.New("unexpected Request")
	}
	return f.RequestFunc(ctx, from, to)
}

func (f *fakeFriendshipService) Accept(ctx context.Context, me, from string) error {
	if f.AcceptFunc == nil {
		return errors.New("unexpected Accept")
	}
	return f.AcceptFunc(ctx, me, from)
}

func (f *fakeFriendshipService) Decline(ctx context.Context, me, from string) error {
	if f.DeclineFunc == nil {
		return errors.New("unexpected Decline")
	}
	return f.DeclineFunc(ctx, me, from)
}

func (f *fakeFriendshipService) Unfriend(ctx context.Context, a, b string) error {
	if f.UnfriendFunc == nil {
		return errors.New("unexpected Unfriend")
	}
	return f.UnfriendFunc(ctx, a, b)
}

func (f *fakeFriendshipService) FriendsOf(ctx context.Context, username string) ([]string, error) {
	if f.FriendsOfFunc == nil {
		return nil, errors.New("unexpected FriendsOf")
	}
	return f.FriendsOfFunc(ctx, username)
}

func (f *fakeFriendshipService) PendingIncoming(ctx context.Context, username string) ([]string, error) {
	if f.PendingIncomingFunc == nil {
		return nil, errors.New("unexpected PendingIncoming")
	}
	return f.PendingIncomingFunc(ctx, username)
}

type fakeGroupService struct {
	CreateFunc      func(ctx context.Context, name, description, creator string) (*models.Group, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.GroupDetail, error)
	ListFunc        func(ctx context.Context, limit int) ([]models.Group, error)
	ListForUserFunc func(ctx context.Context, username string) ([]models.GroupSummary, error)
	ExistsFunc      func(ctx context.Context, groupID uuid.UUID) (bool, error)
	IsMemberFunc    func(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	IsAdminFunc     func(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	IsPendingFunc   func(ctx context.Context, groupID uuid.UUID, username string) (bool, error)
	JoinFunc        func(ctx context.Context, groupID uuid.UUID, username string) (*models.JoinResult, error)
	ApproveFunc     func(ctx context.Context, groupID uuid.UUID, admin, target string) error
	RejectFunc      func(ctx context.Context, groupID uuid.UUID, admin, target string) error
	LeaveFunc       func(ctx context.Context, groupID uuid.UUID, username string) error
	KickFunc        func(ctx context.Context, groupID uuid.UUID, admin, target string) error
}

func (f *fakeGroupService) Create(ctx context.Context, name, description, creator string) (*models.Group, error) {
	if f.CreateFunc == nil {
		return nil, errors.New("unexpected Create")
	}
	return f.CreateFunc(ctx, name, description, creator)
}

func (f *fakeGroupService) GetByID(ctx context.Context, id uuid.UUID) (*models.GroupDetail, error) {
	if f.GetByIDFunc == nil {
		return nil, errors.New("unexpected GetByID")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeGroupService) List(ctx context.Context, limit int) ([]models.Group, error) {
	if f.ListFunc == nil {
		return nil, errors.New("unexpected List")
	}
	return f.ListFunc(ctx, limit)
}

func (f *fakeGroupService) ListForUser(ctx context.Context, username string) ([]models.GroupSummary, error) {
	if f.ListForUserFunc == nil {
		return nil, errors.New("unexpected ListForUser")
	}
	return f.ListForUserFunc(ctx, username)
}

func (f *fakeGroupService) Exists(ctx context.Context, groupID uuid.UUID) (bool, error) {
	if f.ExistsFunc == nil {
		return false, errors.New("unexpected Exists")
	}
	return f.ExistsFunc(ctx, groupID)
}

func (f *fakeGroupService) IsMember(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	if f.IsMemberFunc == nil {
		return false, errors.New("unexpected IsMember")
	}
	return f.IsMemberFunc(ctx, groupID, username)
}

func (f *fakeGroupService) IsAdmin(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	if f.IsAdminFunc == nil {
		return false, errors.New("unexpected IsAdmin")
	}
	return f.IsAdminFunc(ctx, groupID, username)
}

func (f *fakeGroupService) IsPending(ctx context.Context, groupID uuid.UUID, username string) (bool, error) {
	if f.IsPendingFunc == nil {
		return false, errors.New("unexpected IsPending")
	}
	return f.IsPendingFunc(ctx, groupID, username)
}

func (f *fakeGroupService) Join(ctx context.Context, groupID uuid.UUID, username string) (*models.JoinResult, error) {
	if f.JoinFunc == nil {
		return nil, errors.New("unexpected Join")
	}
	return f.JoinFunc(ctx, groupID, username)
}

func (f *fakeGroupService) Approve(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	if f.ApproveFunc == nil {
		return errors.New("unexpected Approve")
	}
	return f.ApproveFunc(ctx, groupID, admin, target)
}

func (f *fakeGroupService) Reject(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	if f.RejectFunc == nil {
		return errors.New("unexpected Reject")
	}
	return f.RejectFunc(ctx, groupID, admin, target)
}

func (f *fakeGroupService) Leave(ctx context.Context, groupID uuid.UUID, username string) error {
	if f.LeaveFunc == nil {
		return errors.New("unexpected Leave")
	}
	return f.LeaveFunc(ctx, groupID, username)
}

func (f *fakeGroupService) Kick(ctx context.Context, groupID uuid.UUID, admin, target string) error {
	if f.KickFunc == nil {
		return errors.New("unexpected Kick")
	}
	return f.KickFunc(ctx, groupID, admin, target)
}

type fakeGroupPostService struct {
	CreateFunc      func(ctx context.Context, groupID uuid.UUID, title, body, author string) (*models.GroupPost, error)
	ShareFunc       func(ctx context.Context, groupID, postID uuid.UUID, sharingUser string) (*models.ShareResult, error)
	ListByGroupFunc func(ctx context.Context, groupID uuid.UUID, limit int) ([]models.GroupPost, error)
	LikeFunc        func(ctx context.Context, groupPostID uuid.UUID, username string) error
	UnlikeFunc      func(ctx context.Context, groupPostID uuid.UUID, username string) error
}

func (f *fakeGroupPostService) Create(ctx context.Context, groupID uuid.UUID, title, body, author string) (*models.GroupPost, error) {
	if f.CreateFunc == nil {
		return nil, errors.New("unexpected Create")
	}
	return f.CreateFunc(ctx, groupID, title, body, author)
}

func (f *fakeGroupPostService) Share(ctx context.Context, groupID, postID uuid.UUID, sharingUser string) (*models.ShareResult, error) {
	if f.ShareFunc == nil {
		return nil, errors.New("unexpected Share")
	}
	return f.ShareFunc(ctx, groupID, postID, sharingUser)
}

func (f *fakeGroupPostService) ListByGroup(ctx context.Context, groupID uuid.UUID, limit int) ([]models.GroupPost, error) {
	if f.ListByGroupFunc == nil {
		return nil, errors.New("unexpected ListByGroup")
	}
	return f.ListByGroupFunc(ctx, groupID, limit)
}

func (f *fakeGroupPostService) Like(ctx context.Context, groupPostID uuid.UUID, username string) error {
	if f.LikeFunc == nil {
		return errors.New("unexpected Like")
	}
	return f.LikeFunc(ctx, groupPostID, username)
}

func (f *fakeGroupPostService) Unlike(ctx context.Context, groupPostID uuid.UUID, username string) error {
	if f.UnlikeFunc == nil {
		return errors.New("unexpected Unlike")
	}
	return f.UnlikeFunc(ctx, groupPostID, username)
}

type fakePostService struct {
	CreateFunc        func(ctx context.Context, params models.CreatePostParams) (*models.Post, error)
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.Post, error)
	UpdateFunc        func(ctx context.Context, id uuid.UUID, username string, params models.UpdatePostParams) error
	DeleteFunc        func(ctx context.Context, id uuid.UUID, username string) error
	ShareFunc         func(ctx context.Context, originalID uuid.UUID, sharingUser string) (*models.ShareResult, error)
	ShareToFriendFunc func(ctx context.Context, originalID uuid.UUID, sharingUser, friend string) (*models.ShareResult, error)
	FeedFunc          func(ctx context.Context, excludeUser string, limit int) ([]models.Post, error)
	FindByAuthorFunc  func(ctx context.Context, username string) ([]models.Post, error)
	ProfileFeedFunc   func(ctx context.Context, username string) ([]models.Post, error)
	CountByAuthorFunc func(ctx context.Context, username string) (int, error)
}

func (f *fakePostService) Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
	if f.CreateFunc == nil {
		return nil, errors.New("unexpected Create")
	}
	return f.CreateFunc(ctx, params)
}

func (f *fakePostService) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if f.GetByIDFunc == nil {
		return nil, errors.New("unexpected GetByID")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakePostService) Update(ctx context.Context, id uuid.UUID, username string, params models.UpdatePostParams) error {
	if f.UpdateFunc == nil {
		return errors.New("unexpected Update")
	}
	return f.UpdateFunc(ctx, id, username, params)
}

func (f *fakePostService) Delete(ctx context.Context, id uuid.UUID, username string) error {
	if f.DeleteFunc == nil {
		return errors.New("unexpected Delete")
	}
	return f.DeleteFunc(ctx, id, username)
}

func (f *fakePostService) Share(ctx context.Context, originalID uuid.UUID, sharingUser string) (*models.ShareResult, error) {
	if f.ShareFunc == nil {
		return nil, errors.New("unexpected Share")
	}
	return f.ShareFunc(ctx, originalID, sharingUser)
}

func (f *fakePostService) ShareToFriend(ctx context.Context, originalID uuid.UUID, sharingUser, friend string) (*models.ShareResult, error) {
	if f.ShareToFriendFunc == nil {
		return nil, errors.New("unexpected ShareToFriend")
	}
	return f.ShareToFriendFunc(ctx, originalID, sharingUser, friend)
}

func (f *fakePostService) Feed(ctx context.Context, excludeUser string, limit int) ([]models.Post, error) {
	if f.FeedFunc == nil {
		return nil, errors.New("unexpected Feed")
	}
	return f.FeedFunc(ctx, excludeUser, limit)
}

func (f *fakePostService) FindByAuthor(ctx context.Context, username string) ([]models.Post, error) {
	if f.FindByAuthorFunc == nil {
		return nil, errors.New("unexpected FindByAuthor")
	}
	return f.FindByAuthorFunc(ctx, username)
}

func (f *fakePostService) ProfileFeed(ctx context.Context, username string) ([]models.Post, error) {
	if f.ProfileFeedFunc == nil {
		return nil, errors.New("unexpected ProfileFeed")
	}
	return f.ProfileFeedFunc(ctx, username)
}

func (f *fakePostService) CountByAuthor(ctx context.Context, username string) (int, error) {
	if f.CountByAuthorFunc == nil {
		return 0, errors.New("unexpected CountByAuthor")
	}
	return f.CountByAuthorFunc(ctx, username)
}

type fakeMessageService struct {
	SendFunc         func(ctx context.Context, from, to, body string) (*models.Message, error)
	ConversationFunc func(ctx context.Context, a, b string) ([]models.Message, error)
}

func (f *fakeMessageService) Send(ctx context.Context, from, to, body string) (*models.Message, error) {
	if f.SendFunc == nil {
		return nil, errors.New("unexpected Send")
	}
	return f.SendFunc(ctx, from, to, body)
}

func (f *fakeMessageService) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	if f.ConversationFunc == nil {
		return nil, errors.New("unexpected Conversation")
	}
	return f.ConversationFunc(ctx, a, b)
}

func testUser(username string) *models.User {
	return &models.User{
		ID:          uuid.New(),
		Username:    username,
		UsernameKey: models.UsernameKey(username),
		Email:       models.UsernameKey(username) + "@example.com",
	}
}

// asUser attaches an authenticated user to the request context.
func asUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(SetUserInContext(r.Context(), user))
}
