package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/neuralmap-cli/internal/core/domain"
)

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

// fakeGitHub serves the subset of the REST API the source uses.
type fakeGitHub struct {
	t         *testing.T
	branch    string
	entries   []treeEntry
	blobs     map[string]string
	blobCalls atomic.Int32
	auth      atomic.Value
}

func (f *fakeGitHub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop", func(w http.ResponseWriter, r *http.Request) {
		f.auth.Store(r.Header.Get("Authorization"))
		writeJSON(w, map[string]any{"name": "shop", "default_branch": f.branch})
	})
	mux.HandleFunc("/repos/acme/shop/git/trees/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "1", r.URL.Query().Get("recursive"))
		ref := strings.TrimPrefix(r.URL.Path, "/repos/acme/shop/git/trees/")
		if ref != f.branch && ref != "v1" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set(HeaderRateRemaining, "4999")
		w.Header().Set(HeaderRateLimit, "5000")
		writeJSON(w, map[string]any{"sha": "tree", "tree": f.entries, "truncated": false})
	})
	mux.HandleFunc("/repos/acme/shop/git/blobs/", func(w http.ResponseWriter, r *http.Request) {
		f.blobCalls.Add(1)
		sha := strings.TrimPrefix(r.URL.Path, "/repos/acme/shop/git/blobs/")
		content, ok := f.blobs[sha]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"sha":      sha,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	})
	mux.HandleFunc("/repos/acme/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"message": "Not Found"})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newFake(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()
	f := &fakeGitHub{
		t:      t,
		branch: "main",
		entries: []treeEntry{
			{Path: "src", Type: "tree", SHA: "d1"},
			{Path: "src/main.ts", Type: "blob", SHA: "b1", Size: 15},
			{Path: "src/util.ts", Type: "blob", SHA: "b2", Size: 10},
			{Path: "index.html", Type: "blob", SHA: "b3", Size: 20},
			{Path: "logo.png", Type: "blob", SHA: "b4", Size: 100},
			{Path: "node_modules/x/index.js", Type: "blob", SHA: "b5", Size: 5},
			{Path: ".github/workflows/ci.yml", Type: "blob", SHA: "b6", Size: 5},
			{Path: "big.ts", Type: "blob", SHA: "b7", Size: 1 << 20},
		},
		blobs: map[string]string{
			"b1": "import './util'",
			"b2": "export {}",
			"b3": `<div id="app">`,
		},
	}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestSource(srv *httptest.Server, opts ...Option) *Source {
	base := []Option{WithBaseURL(srv.URL), WithRateLimit(rate.Inf, 1), WithMaxFileBytes(1024)}
	return New(append(base, opts...)...)
}

func TestSource_Scan(t *testing.T) {
	f, srv := newFake(t)
	src := newTestSource(srv)

	files, err := src.Scan(context.Background(), "github://acme/shop")
	require.NoError(t, err)

	got := make([]string, len(files))
	for i, file := range files {
		got[i] = file.Path
	}
	assert.Equal(t, []string{"shop/big.ts", "shop/index.html", "shop/logo.png", "shop/src/main.ts", "shop/src/util.ts"}, got)

	byPath := map[string]domain.NeuralFile{}
	for _, file := range files {
		byPath[file.Path] = file
	}

	t.Run("content decoded", func(t *testing.T) {
		assert.Equal(t, "import './util'", byPath["shop/src/main.ts"].Content)
		assert.Equal(t, "ts", byPath["shop/src/main.ts"].Type)
		assert.Equal(t, "main.ts", byPath["shop/src/main.ts"].Name)
	})

	t.Run("binary and oversized blobs not fetched", func(t *testing.T) {
		assert.Empty(t, byPath["shop/logo.png"].Content)
		assert.Empty(t, byPath["shop/big.ts"].Content)
		assert.Equal(t, int32(3), f.blobCalls.Load())
	})

	t.Run("anonymous without token", func(t *testing.T) {
		assert.Empty(t, f.auth.Load())
	})

	t.Run("rate headers observed", func(t *testing.T) {
		assert.Equal(t, 4999, src.limiter.Remaining())
		assert.Equal(t, 5000, src.limiter.Limit())
	})
}

func TestSource_ScanWithRefSkipsRepoLookup(t *testing.T) {
	f, srv := newFake(t)
	src := newTestSource(srv, WithToken("secret"))

	files, err := src.Scan(context.Background(), "github://acme/shop@v1")
	require.NoError(t, err)
	assert.Len(t, files, 5)
	assert.Nil(t, f.auth.Load(), "repository endpoint not called when ref is given")
}

func TestSource_Token(t *testing.T) {
	f, srv := newFake(t)
	src := newTestSource(srv, WithToken("secret"))

	_, err := src.Scan(context.Background(), "github://acme/shop")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", f.auth.Load())
}

func TestSource_Errors(t *testing.T) {
	_, srv := newFake(t)
	src := newTestSource(srv)

	t.Run("missing repository", func(t *testing.T) {
		_, err := src.Scan(context.Background(), "github://acme/missing")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("invalid location", func(t *testing.T) {
		_, err := src.Scan(context.Background(), "github://acme")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := src.Scan(ctx, "github://acme/shop")
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSource_TooManyRequests(t *testing.T) {
	reset := time.Unix(1900000000, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRateLimit, "5000")
		w.Header().Set(HeaderRateRemaining, "12")
		w.Header().Set(HeaderRateReset, "1900000000")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"too many requests"}`))
	}))
	t.Cleanup(srv.Close)
	src := newTestSource(srv)

	_, err := src.Scan(context.Background(), "github://acme/shop")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.True(t, reset.Equal(rlErr.ResetAt))
	assert.Equal(t, 12, rlErr.Remaining)
	assert.Equal(t, 5000, rlErr.Limit)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{"github://acme/shop", Location{Owner: "acme", Repo: "shop"}, false},
		{"github://acme/shop/", Location{Owner: "acme", Repo: "shop"}, false},
		{"github://acme/shop@dev", Location{Owner: "acme", Repo: "shop", Ref: "dev"}, false},
		{"github://acme/shop@", Location{}, true},
		{"github://acme", Location{}, true},
		{"github://a/b/c", Location{}, true},
		{"https://github.com/acme/shop", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_Location(t *testing.T) {
	src := New()
	assert.Equal(t, SourceType, src.Type())
	assert.True(t, src.Accepts("github://acme/shop"))
	assert.False(t, src.Accepts("/tmp/shop"))
	assert.Equal(t, "shop", src.ProjectName("github://acme/shop@main"))
	assert.Empty(t, src.ProjectName("github://bad"))
}

func TestRateLimiter(t *testing.T) {
	t.Run("waits for reset when quota is low", func(t *testing.T) {
		rl := NewRateLimiter(rate.Inf, 1)
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set(HeaderRateRemaining, "1")
		resp.Header.Set(HeaderRateReset, "9999999999")
		rl.UpdateFromResponse(resp)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
	})

	t.Run("unknown quota does not block", func(t *testing.T) {
		rl := NewRateLimiter(rate.Inf, 1)
		assert.Equal(t, -1, rl.Remaining())
		assert.NoError(t, rl.Wait(context.Background()))
	})
}
