package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldads/adwatch/internal/common"
	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/internal/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(config.APIConfig{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		PageLimit: 10,
	})
	return c, srv
}

func TestListAdvertisementsResolvesCreatives(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/advertisements", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]domain.Advertisement{
			{ID: "ad1", AdsName: "clip", CreativeType: "Video", CreativeURL: "https://cdn.example.com/a.mp4"},
			{ID: "ad2", AdsName: "banner", CreativeType: "Image", CreativeURL: "https://cdn.example.com/b.png"},
		})
	}))
	defer srv.Close()

	ads, err := c.ListAdvertisements(context.Background())
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, domain.CreativeVideo, ads[0].Creative.Kind)
	assert.Equal(t, domain.CreativeImage, ads[1].Creative.Kind)
}

func TestListCommentsPagination(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/comments/advertisement/ad1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(domain.CommentPage{
			Comments: []domain.Comment{{ID: "c1", AdvertisementID: "ad1", Content: "hi"}},
			Total:    6, Page: 2, Limit: 5,
		})
	}))
	defer srv.Close()

	page, err := c.ListComments(context.Background(), "ad1", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Comments, 1)
	assert.Equal(t, "c1", page.Comments[0].ID)
}

func TestCreateCommentBody(t *testing.T) {
	var got map[string]any
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(domain.Comment{ID: "c9", Content: "hello"})
	}))
	defer srv.Close()

	comment, err := c.CreateComment(context.Background(), domain.CreateCommentRequest{
		AdvertisementID: "ad1",
		WorldID:         "w1",
		Content:         "hello",
		CommentType:     domain.ContentText,
	})
	require.NoError(t, err)
	assert.Equal(t, "c9", comment.ID)
	assert.Equal(t, "ad1", got["advertisementId"])
	assert.Equal(t, "hello", got["content"])
	assert.Equal(t, "Text", got["commentType"])
	assert.Equal(t, "w1", got["worldId"])
}

func TestDeleteReactionByTargetKey(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/comments/reaction", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("targetId"))
		assert.Equal(t, "Comment", r.URL.Query().Get("targetType"))
		assert.Equal(t, "w1", r.URL.Query().Get("worldId"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := c.DeleteReaction(context.Background(), "c1", domain.TargetComment, "w1")
	assert.NoError(t, err)
}

func TestGetUserReactionNotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	reaction, err := c.GetUserReaction(context.Background(), "c1", domain.TargetComment, "w1")
	require.NoError(t, err)
	assert.Nil(t, reaction)
}

func TestStatusErrorMapping(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := c.ListAdvertisements(context.Background())
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestCreateCommentWithMediaMultipart(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/comments/with-media", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ad1", r.FormValue("advertisementId"))
		assert.Equal(t, "Image", r.FormValue("commentType"))

		file, header, err := r.FormFile("media")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pic.png", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "fake-png", string(data))

		_ = json.NewEncoder(w).Encode(domain.Comment{ID: "c2", MediaURL: "https://cdn/pic.png"})
	}))
	defer srv.Close()

	comment, err := c.CreateCommentWithMedia(context.Background(), domain.CreateCommentRequest{
		AdvertisementID: "ad1",
		WorldID:         "w1",
		Content:         "look",
		CommentType:     domain.ContentImage,
	}, "pic.png", strings.NewReader("fake-png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/pic.png", comment.MediaURL)
}

func TestBearerTokenAttached(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]domain.Reward{})
	}))
	defer srv.Close()

	c.SetToken("tok-123")
	_, err := c.ListUserRewards(context.Background(), "w1")
	assert.NoError(t, err)
}
