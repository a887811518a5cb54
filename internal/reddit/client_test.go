package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findyourn/reddit-listener/internal/retry"
	"github.com/findyourn/reddit-listener/internal/storage"
	"github.com/findyourn/reddit-listener/internal/types"
)

func searchListingJSON(after string, titles ...string) string {
	children := ""
	for i, title := range titles {
		if i > 0 {
			children += ","
		}
		children += fmt.Sprintf(`{"kind":"t3","data":{"id":"p%d","title":%q,"selftext":"body of %s","score":%d,"num_comments":3,"subreddit":"testing"}}`,
			i, title, title, (i+1)*10)
	}
	return fmt.Sprintf(`{"data":{"after":%q,"children":[%s]}}`, after, children)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		UserAgent:    "reddit-listener-test/1.0",
		RedirectURI:  "http://localhost/callback",
		AuthBaseURL:  srv.URL,
		APIBaseURL:   srv.URL,
	})
	require.NoError(t, err)
	// Keep tests fast: no backoff sleeps worth noticing.
	client.retry = retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, ExponentialBase: 2.0}
	return client, srv
}

func tokenHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"access_token":"app-token","token_type":"bearer","expires_in":3600,"scope":"read"}`)
}

func TestSearchPostsParsesListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		assert.Equal(t, "electric cars", r.URL.Query().Get("q"))
		assert.Equal(t, "month", r.URL.Query().Get("t"))
		fmt.Fprint(w, searchListingJSON("", "first post", "second post"))
	})

	client, _ := newTestClient(t, mux)
	posts, err := client.SearchPosts(context.Background(), SearchOptions{Query: "electric cars", Limit: 2})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "first post", posts[0].Title)
	assert.Equal(t, "body of first post", posts[0].Body)
	assert.Equal(t, 10, posts[0].Score)
	assert.Equal(t, "testing", posts[0].Subreddit)
}

func TestSearchPostsSkipDiscardsPrefix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		assert.Equal(t, 7, limit, "one page should cover skip+limit")
		fmt.Fprint(w, searchListingJSON("", "a", "b", "c", "d", "e", "f", "g"))
	})

	client, _ := newTestClient(t, mux)
	posts, err := client.SearchPosts(context.Background(), SearchOptions{Query: "q", Limit: 2, Skip: 5})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "f", posts[0].Title)
	assert.Equal(t, "g", posts[1].Title)
}

func TestSearchPostsExhaustedListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchListingJSON("", "only"))
	})

	client, _ := newTestClient(t, mux)
	posts, err := client.SearchPosts(context.Background(), SearchOptions{Query: "q", Limit: 5, Skip: 5})
	require.NoError(t, err)
	assert.Empty(t, posts, "skip beyond the listing yields an empty batch")
}

func TestSearchPostsRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, searchListingJSON("", "recovered"))
	})

	client, _ := newTestClient(t, mux)
	posts, err := client.SearchPosts(context.Background(), SearchOptions{Query: "q", Limit: 1})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchPostsUserWithoutTokenFails(t *testing.T) {
	store, err := storage.NewSQLiteTokenStore(t.TempDir()+"/tokens.db",
		"0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	defer store.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)

	srv := httptest.NewServer(mux)
	defer srv.Close()
	client, cerr := NewClient(Config{
		ClientID: "cid", ClientSecret: "secret", UserAgent: "ua",
		AuthBaseURL: srv.URL, APIBaseURL: srv.URL, TokenStore: store,
	})
	require.NoError(t, cerr)

	_, err = client.SearchPosts(context.Background(), SearchOptions{Query: "q", TeamID: "T1", UserID: "U1"})
	assert.ErrorIs(t, err, ErrAuthorizationRequired)
}

func TestGetPostCommentsParsesSecondListing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/comments/abc", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"data":{"children":[{"kind":"t3","data":{"id":"abc","title":"post"}}]}},
			{"data":{"children":[
				{"kind":"t1","data":{"body":"great point","score":42}},
				{"kind":"t1","data":{"body":"disagree","score":7}},
				{"kind":"more","data":{}}
			]}}
		]`)
	})

	client, _ := newTestClient(t, mux)
	comments := client.GetPostComments(context.Background(), &types.Post{ID: "abc"}, 10)
	require.Len(t, comments, 2)
	assert.Equal(t, "great point", comments[0].Body)
	assert.Equal(t, 42, comments[0].Score)
}

func TestGetPostCommentsAbsorbsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", tokenHandler)
	mux.HandleFunc("/comments/abc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, _ := newTestClient(t, mux)
	comments := client.GetPostComments(context.Background(), &types.Post{ID: "abc"}, 10)
	assert.Empty(t, comments, "comment fetch failures must yield an empty list, not an error")
}

func TestAuthURLContainsOAuthParams(t *testing.T) {
	client, err := NewClient(Config{
		ClientID: "cid", ClientSecret: "secret", UserAgent: "ua",
		RedirectURI: "https://example.com/cb",
	})
	require.NoError(t, err)

	u := client.AuthURL("state-123")
	assert.Contains(t, u, "client_id=cid")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "duration=permanent")
	assert.Contains(t, u, "response_type=code")
}
