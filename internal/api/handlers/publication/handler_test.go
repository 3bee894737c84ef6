package publication

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilber023/poust-microservicio/internal/api/middleware"
	"github.com/wilber023/poust-microservicio/internal/core/media"
	"github.com/wilber023/poust-microservicio/internal/core/publications"
)

// fakeService overrides the methods a test needs. Calling any other method panics.
type fakeService struct {
	publications.Service
	createFunc     func(ctx context.Context, req publications.CreatePublicationRequest) (*publications.PublicationView, error)
	getFunc        func(ctx context.Context, id, viewerID string) (*publications.PublicationView, error)
	listFunc       func(ctx context.Context, req publications.ListPublicationsRequest) (*publications.PublicationPage, error)
	likeFunc       func(ctx context.Context, id, userID string) (*publications.LikeResult, error)
	addCommentFunc func(ctx context.Context, req publications.AddCommentRequest) (*publications.CommentResult, error)
	getCommentsFn  func(ctx context.Context, req publications.GetCommentsRequest) (*publications.CommentsResponse, error)
	deleteFunc     func(ctx context.Context, id, userID string) error
}

func (f *fakeService) CreatePublication(ctx context.Context, req publications.CreatePublicationRequest) (*publications.PublicationView, error) {
	return f.createFunc(ctx, req)
}

func (f *fakeService) GetPublication(ctx context.Context, id, viewerID string) (*publications.PublicationView, error) {
	return f.getFunc(ctx, id, viewerID)
}

func (f *fakeService) ListPublications(ctx context.Context, req publications.ListPublicationsRequest) (*publications.PublicationPage, error) {
	return f.listFunc(ctx, req)
}

func (f *fakeService) LikePublication(ctx context.Context, id, userID string) (*publications.LikeResult, error) {
	return f.likeFunc(ctx, id, userID)
}

func (f *fakeService) AddComment(ctx context.Context, req publications.AddCommentRequest) (*publications.CommentResult, error) {
	return f.addCommentFunc(ctx, req)
}

func (f *fakeService) GetComments(ctx context.Context, req publications.GetCommentsRequest) (*publications.CommentsResponse, error) {
	return f.getCommentsFn(ctx, req)
}

func (f *fakeService) DeletePublication(ctx context.Context, id, userID string) error {
	return f.deleteFunc(ctx, id, userID)
}

func newTestRouter(svc publications.Service) http.Handler {
	h := NewHandler(svc, media.Limits{MaxFileBytes: 1 << 20, MaxFiles: 2})
	r := chi.NewRouter()
	r.Get("/publications", h.HandleList)
	r.Post("/publications", h.HandleCreate)
	r.Get("/publications/{id}", h.HandleGet)
	r.Delete("/publications/{id}", h.HandleDelete)
	r.Post("/publications/{id}/like", h.HandleLike)
	r.Get("/publications/{id}/comments", h.HandleGetComments)
	r.Post("/publications/{id}/comments", h.HandleAddComment)
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

func TestHandleCreate_JSON(t *testing.T) {
	var got publications.CreatePublicationRequest
	svc := &fakeService{createFunc: func(ctx context.Context, req publications.CreatePublicationRequest) (*publications.PublicationView, error) {
		got = req
		return &publications.PublicationView{ID: "pub-1", AuthorID: req.AuthorID, Text: req.Text}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/publications", strings.NewReader(`{"text":"hello","visibility":"friends"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(newTestRouter(svc), req, "user-1")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "user-1", got.AuthorID, "author comes from auth, not the body")
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "friends", got.Visibility)

	var view publications.PublicationView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, "pub-1", view.ID)
}

func TestHandleCreate_RejectsBadBodies(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	for _, body := range []string{
		`{"text":"hi","visibility":"everyone"}`,
		`{"text":"hi","authorId":"someone-else"}`,
		`{"text":`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/publications", strings.NewReader(body))
		w := serve(router, req, "user-1")
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestHandleCreate_RequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/publications", strings.NewReader(`{"text":"hello"}`))
	w := serve(newTestRouter(&fakeService{}), req, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartBody(t *testing.T, text string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", text))
	for name, contentType := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("data-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleCreate_Multipart(t *testing.T) {
	var got publications.CreatePublicationRequest
	var contents []string
	svc := &fakeService{createFunc: func(ctx context.Context, req publications.CreatePublicationRequest) (*publications.PublicationView, error) {
		got = req
		for _, f := range req.Files {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			contents = append(contents, string(data))
		}
		return &publications.PublicationView{ID: "pub-1"}, nil
	}}

	body, contentType := multipartBody(t, "with photo", map[string]string{"a.png": "image/png"})
	req := httptest.NewRequest(http.MethodPost, "/publications", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(newTestRouter(svc), req, "user-1")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "with photo", got.Text)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "a.png", got.Files[0].Filename)
	assert.Equal(t, "image/png", got.Files[0].ContentType)
	assert.Equal(t, []string{"data-a.png"}, contents)
}

func TestHandleCreate_TooManyFiles(t *testing.T) {
	body, contentType := multipartBody(t, "", map[string]string{
		"a.png": "image/png", "b.png": "image/png", "c.png": "image/png",
	})
	req := httptest.NewRequest(http.MethodPost, "/publications", body)
	req.Header.Set("Content-Type", contentType)
	w := serve(newTestRouter(&fakeService{}), req, "user-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGet_MapsErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want int
	}{
		{name: "not found", err: publications.ErrPublicationNotFound, want: http.StatusNotFound},
		{name: "not visible", err: publications.ErrNotVisible, want: http.StatusForbidden},
		{name: "bad id", err: publications.ErrInvalidPublicationID, want: http.StatusBadRequest},
		{name: "conflict", err: publications.ErrConcurrentModification, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{getFunc: func(ctx context.Context, id, viewerID string) (*publications.PublicationView, error) {
				return nil, tt.err
			}}
			w := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/publications/abc", nil), "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandleGet_PassesViewer(t *testing.T) {
	svc := &fakeService{getFunc: func(ctx context.Context, id, viewerID string) (*publications.PublicationView, error) {
		assert.Equal(t, "pub-9", id)
		assert.Equal(t, "viewer-1", viewerID)
		return &publications.PublicationView{ID: id}, nil
	}}
	w := serve(newTestRouter(svc), httptest.NewRequest(http.MethodGet, "/publications/pub-9", nil), "viewer-1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleList_Pagination(t *testing.T) {
	svc := &fakeService{listFunc: func(ctx context.Context, req publications.ListPublicationsRequest) (*publications.PublicationPage, error) {
		assert.Equal(t, "author-1", req.AuthorID)
		assert.Equal(t, 2, req.Page.Page)
		assert.Equal(t, 5, req.Page.Limit)
		return &publications.PublicationPage{Publications: []*publications.PublicationSummary{}}, nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/publications?authorId=author-1&page=2&limit=5", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/publications?page=0", nil), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLike(t *testing.T) {
	svc := &fakeService{likeFunc: func(ctx context.Context, id, userID string) (*publications.LikeResult, error) {
		if userID == "author-1" {
			return nil, publications.ErrSelfLike
		}
		return &publications.LikeResult{PublicationID: id, LikesCount: 1, HasLiked: true}, nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodPost, "/publications/pub-1/like", nil), "user-2")
	require.Equal(t, http.StatusOK, w.Code)
	var result publications.LikeResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.True(t, result.HasLiked)

	w = serve(router, httptest.NewRequest(http.MethodPost, "/publications/pub-1/like", nil), "author-1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleComments(t *testing.T) {
	svc := &fakeService{
		addCommentFunc: func(ctx context.Context, req publications.AddCommentRequest) (*publications.CommentResult, error) {
			assert.Equal(t, "pub-1", req.PublicationID)
			assert.Equal(t, "parent-1", req.ParentCommentID)
			return &publications.CommentResult{CommentsCount: 2}, nil
		},
		getCommentsFn: func(ctx context.Context, req publications.GetCommentsRequest) (*publications.CommentsResponse, error) {
			assert.True(t, req.Hierarchical)
			assert.Equal(t, "viewer-1", req.ViewerID)
			return &publications.CommentsResponse{PublicationID: req.PublicationID}, nil
		},
	}
	router := newTestRouter(svc)

	body := strings.NewReader(`{"text":"reply","parentCommentId":"parent-1"}`)
	w := serve(router, httptest.NewRequest(http.MethodPost, "/publications/pub-1/comments", body), "user-2")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodPost, "/publications/pub-1/comments", strings.NewReader(`{"text":""}`)), "user-2")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/publications/pub-1/comments?hierarchical=true", nil), "viewer-1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/publications/pub-1/comments?hierarchical=maybe", nil), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDelete(t *testing.T) {
	svc := &fakeService{deleteFunc: func(ctx context.Context, id, userID string) error {
		if userID != "author-1" {
			return publications.ErrNotAuthorized
		}
		return nil
	}}
	router := newTestRouter(svc)

	w := serve(router, httptest.NewRequest(http.MethodDelete, "/publications/pub-1", nil), "author-1")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodDelete, "/publications/pub-1", nil), "intruder")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
