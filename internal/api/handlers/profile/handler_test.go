package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/paging"
	"github.com/wilber023/poust-microservicio/internal/core/profiles"
)

// fakeService overrides the methods a test needs. Calling any other method panics.
type fakeService struct {
	profiles.Service
	createFunc      func(ctx context.Context, req profiles.CreateProfileRequest) (*profiles.ProfileView, error)
	updateFunc      func(ctx context.Context, req profiles.UpdateProfileRequest) (*profiles.ProfileView, error)
	addFriendFunc   func(ctx context.Context, userID, friendID string) (*profiles.RelationshipResult, error)
	suggestionsFunc func(ctx context.Context, userID string, limit int) ([]*profiles.Suggestion, error)
	friendsFunc     func(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error)
	availableFunc   func(ctx context.Context, username string) (bool, error)
}

func (f *fakeService) CreateProfile(ctx context.Context, req profiles.CreateProfileRequest) (*profiles.ProfileView, error) {
	return f.createFunc(ctx, req)
}

func (f *fakeService) UpdateProfile(ctx context.Context, req profiles.UpdateProfileRequest) (*profiles.ProfileView, error) {
	return f.updateFunc(ctx, req)
}

func (f *fakeService) AddFriend(ctx context.Context, userID, friendID string) (*profiles.RelationshipResult, error) {
	return f.addFriendFunc(ctx, userID, friendID)
}

func (f *fakeService) GetFriendSuggestions(ctx context.Context, userID string, limit int) ([]*profiles.Suggestion, error) {
	return f.suggestionsFunc(ctx, userID, limit)
}

func (f *fakeService) GetFriends(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
	return f.friendsFunc(ctx, userID, page)
}

func (f *fakeService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return f.availableFunc(ctx, username)
}

func newTestRouter(svc profiles.Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Post("/profiles", h.HandleCreate)
	r.Get("/profiles/username/{username}/available", h.HandleUsernameAvailable)
	r.Put("/profiles/{userId}", h.HandleUpdate)
	r.Get("/profiles/{userId}/friends", h.HandleGetFriends)
	r.Post("/profiles/{userId}/friends", h.HandleAddFriend)
	r.Get("/profiles/{userId}/suggestions", h.HandleSuggestions)
	return r
}

func serve(handler http.Handler, req *http.Request, userID string) *httptest.ResponseRecorder {
	if userID != "" {
		req = req.WithContext(middleware.SetTestUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleCreate(t *testing.T) {
	svc := &fakeService{createFunc: func(ctx context.Context, req profiles.CreateProfileRequest) (*profiles.ProfileView, error) {
		assert.Equal(t, "user-1", req.UserID)
		assert.Equal(t, []string{"go"}, req.Interests)
		if req.Username == "taken" {
			return nil, profiles.ErrUsernameTaken
		}
		return &profiles.ProfileView{ID: req.UserID, Username: req.Username}, nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/profiles",
		strings.NewReader(`{"username":"alice","interests":["go"]}`)), "user-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodPost, "/profiles",
		strings.NewReader(`{"username":"taken","interests":["go"]}`)), "user-1")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"username":"al"}`)), "user-1")
	assert.Equal(t, http.StatusBadRequest, w.Code, "schema enforces the minimum length")

	w = serve(router, httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"username":"alice"}`)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleUpdate_OwnerOnly(t *testing.T) {
	svc := &fakeService{updateFunc: func(ctx context.Context, req profiles.UpdateProfileRequest) (*profiles.ProfileView, error) {
		require.NotNil(t, req.Bio)
		assert.Equal(t, "", *req.Bio, "an empty bio clears it")
		assert.Nil(t, req.Username)
		return &profiles.ProfileView{ID: req.UserID}, nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodPut, "/profiles/user-1", strings.NewReader(`{"bio":""}`)), "user-1")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodPut, "/profiles/user-1", strings.NewReader(`{"bio":"x"}`)), "user-2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodPut, "/profiles/user-1", strings.NewReader(`{}`)), "user-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAddFriend(t *testing.T) {
	svc := &fakeService{addFriendFunc: func(ctx context.Context, userID, friendID string) (*profiles.RelationshipResult, error) {
		switch friendID {
		case "missing":
			return nil, profiles.ErrProfileNotFound
		case userID:
			return nil, profiles.ErrSelfFriend
		}
		return &profiles.RelationshipResult{UserID: userID, FriendsCount: 1}, nil
	}}
	router := newTestRouter(svc)

	post := func(body string) int {
		return serve(router, httptest.NewRequest(http.MethodPost, "/profiles/user-1/friends", strings.NewReader(body)), "user-1").Code
	}
	assert.Equal(t, http.StatusOK, post(`{"friendId":"user-2"}`))
	assert.Equal(t, http.StatusNotFound, post(`{"friendId":"missing"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"friendId":"user-1"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{}`))
}

func TestHandleSuggestions(t *testing.T) {
	svc := &fakeService{suggestionsFunc: func(ctx context.Context, userID string, limit int) ([]*profiles.Suggestion, error) {
		assert.Equal(t, profiles.DefaultSuggestionLimit, limit)
		return []*profiles.Suggestion{{ProfileSummary: profiles.ProfileSummary{ID: "user-3"}, MutualFriends: 2}}, nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/profiles/user-1/suggestions", nil), "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Suggestions []*profiles.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, 2, body.Suggestions[0].MutualFriends)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/profiles/user-1/suggestions?limit=zero", nil), "user-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetFriends_Public(t *testing.T) {
	svc := &fakeService{friendsFunc: func(ctx context.Context, userID string, page paging.Request) (*profiles.ProfilePage, error) {
		assert.Equal(t, "user-1", userID)
		return &profiles.ProfilePage{Profiles: []*profiles.ProfileSummary{}}, nil
	}}
	w := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/profiles/user-1/friends", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleUsernameAvailable(t *testing.T) {
	svc := &fakeService{availableFunc: func(ctx context.Context, username string) (bool, error) {
		return username != "alice", nil
	}}
	w := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/profiles/username/alice/available", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, false, body["available"])
}
