package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/battulga/naiznet/internal/models"
	"github.com/battulga/naiznet/internal/services"
	"github.com/battulga/naiznet/internal/testutil"
)

func TestPostHandler_Create_Success(t *testing.T) {
	posts := &fakePostService{
		CreateFunc: func(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
			testutil.AssertEqual(t, "Bold", params.Author, "author")
			return &models.Post{ID: uuid.New(), Title: params.Title, Body: params.Body, Author: params.Author}, nil
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	req := asUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/posts", CreatePostRequest{
		Title: "hi", Body: "body",
	}), testUser("Bold"))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusCreated)
}

func TestPostHandler_Create_Validation(t *testing.T) {
	posts := &fakePostService{
		CreateFunc: func(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
			return nil, services.ErrPostValidation
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	req := asUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/posts", CreatePostRequest{}), testUser("Bold"))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
}

func TestPostHandler_Get_NotFound(t *testing.T) {
	posts := &fakePostService{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Post, error) {
			return nil, services.ErrPostNotFound
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	postID := uuid.New()
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/posts/"+postID.String(), nil), testUser("Bold"))
	req.SetPathValue("id", postID.String())
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusNotFound)
}

func TestPostHandler_Update_OnlyAuthor(t *testing.T) {
	posts := &fakePostService{
		UpdateFunc: func(ctx context.Context, id uuid.UUID, username string, params models.UpdatePostParams) error {
			return services.ErrNotPostAuthor
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	postID := uuid.New()
	req := asUser(testutil.NewTestRequestWithJSON(t, http.MethodPut, "/api/posts/"+postID.String(), UpdatePostRequest{
		Title: "x", Body: "y",
	}), testUser("Saraa"))
	req.SetPathValue("id", postID.String())
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusForbidden)
}

func TestPostHandler_Delete_Success(t *testing.T) {
	posts := &fakePostService{
		DeleteFunc: func(ctx context.Context, id uuid.UUID, username string) error {
			testutil.AssertEqual(t, "Bold", username, "caller")
			return nil
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	postID := uuid.New()
	req := asUser(testutil.NewTestRequest(http.MethodDelete, "/api/posts/"+postID.String(), nil), testUser("Bold"))
	req.SetPathValue("id", postID.String())
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
}

func TestPostHandler_Share_Outcomes(t *testing.T) {
	postID := uuid.New()

	tests := []struct {
		name       string
		result     *models.ShareResult
		err        error
		wantStatus int
	}{
		{"shared", &models.ShareResult{ID: uuid.New()}, nil, http.StatusCreated},
		{"repeat share", &models.ShareResult{Already: true}, nil, http.StatusOK},
		{"own post", nil, services.ErrOwnPost, http.StatusBadRequest},
		{"missing post", nil, services.ErrPostNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &fakePostService{
				ShareFunc: func(ctx context.Context, id uuid.UUID, sharingUser string) (*models.ShareResult, error) {
					return tt.result, tt.err
				},
			}

			h := NewPostHandler(posts, &fakeUserService{})
			req := asUser(testutil.NewTestRequest(http.MethodPost, "/api/posts/"+postID.String()+"/share", nil), testUser("Bold"))
			req.SetPathValue("id", postID.String())
			rr := httptest.NewRecorder()
			h.Share(rr, req)

			testutil.AssertStatusCode(t, rr, tt.wantStatus)
		})
	}
}

func TestPostHandler_ShareToFriend_UnknownTarget(t *testing.T) {
	h := NewPostHandler(&fakePostService{}, lookupUsers())
	postID := uuid.New()
	req := asUser(testutil.NewTestRequest(http.MethodPost, "/api/posts/"+postID.String()+"/share/ghost", nil), testUser("Bold"))
	req.SetPathValue("id", postID.String())
	req.SetPathValue("username", "ghost")
	rr := httptest.NewRecorder()
	h.ShareToFriend(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusNotFound)
}

func TestPostHandler_ShareToFriend_ErrorMapping(t *testing.T) {
	postID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"self target", services.ErrSelfShare, http.StatusBadRequest},
		{"target is author", services.ErrFriendIsAuthor, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &fakePostService{
				ShareToFriendFunc: func(ctx context.Context, id uuid.UUID, sharingUser, friend string) (*models.ShareResult, error) {
					return nil, tt.err
				},
			}

			h := NewPostHandler(posts, lookupUsers("Saraa"))
			req := asUser(testutil.NewTestRequest(http.MethodPost, "/api/posts/"+postID.String()+"/share/Saraa", nil), testUser("Bold"))
			req.SetPathValue("id", postID.String())
			req.SetPathValue("username", "Saraa")
			rr := httptest.NewRecorder()
			h.ShareToFriend(rr, req)

			testutil.AssertStatusCode(t, rr, tt.wantStatus)
		})
	}
}

func TestPostHandler_Search_EmptyTermReturnsNothing(t *testing.T) {
	h := NewPostHandler(&fakePostService{}, &fakeUserService{})
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/posts/search?term=+++", nil), testUser("Bold"))
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	body := testutil.ParseJSONResponse(t, rr.Body.Bytes())
	posts, ok := body["posts"].([]interface{})
	if !ok || len(posts) != 0 {
		t.Errorf("expected empty posts list, got %v", body["posts"])
	}
}

func TestPostHandler_Search_FindsByAuthor(t *testing.T) {
	posts := &fakePostService{
		FindByAuthorFunc: func(ctx context.Context, username string) ([]models.Post, error) {
			testutil.AssertEqual(t, "Saraa", username, "search term")
			return []models.Post{{ID: uuid.New(), Title: "trail notes", Author: "Saraa"}}, nil
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/posts/search?term=Saraa", nil), testUser("Bold"))
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertContains(t, rr.Body.String(), "trail notes", "post title")
}

func TestPostHandler_Feed_PassesCallerAndLimit(t *testing.T) {
	posts := &fakePostService{
		FeedFunc: func(ctx context.Context, excludeUser string, limit int) ([]models.Post, error) {
			testutil.AssertEqual(t, "Bold", excludeUser, "excluded user")
			testutil.AssertEqual(t, 5, limit, "limit")
			return []models.Post{}, nil
		},
	}

	h := NewPostHandler(posts, &fakeUserService{})
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/posts/feed?limit=5", nil), testUser("Bold"))
	rr := httptest.NewRecorder()
	h.Feed(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
}

func TestPostHandler_Profile(t *testing.T) {
	posts := &fakePostService{
		ProfileFeedFunc: func(ctx context.Context, username string) ([]models.Post, error) {
			return []models.Post{{ID: uuid.New(), Title: "hi", Author: "Saraa"}}, nil
		},
		CountByAuthorFunc: func(ctx context.Context, username string) (int, error) {
			return 7, nil
		},
	}

	h := NewPostHandler(posts, lookupUsers("Saraa"))
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/users/Saraa/posts", nil), testUser("Bold"))
	req.SetPathValue("username", "Saraa")
	rr := httptest.NewRecorder()
	h.Profile(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "post_count", float64(7))
}

func TestPostHandler_Profile_UnknownUser(t *testing.T) {
	h := NewPostHandler(&fakePostService{}, lookupUsers())
	req := asUser(testutil.NewTestRequest(http.MethodGet, "/api/users/ghost/posts", nil), testUser("Bold"))
	req.SetPathValue("username", "ghost")
	rr := httptest.NewRecorder()
	h.Profile(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusNotFound)
}
