package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"graphkit/pkg/config"
	"graphkit/pkg/graph"
	"graphkit/pkg/logger"
	"graphkit/pkg/tokenstore"
	"graphkit/pkg/ui"
)

// testApp returns an app whose clients talk to srv and whose tokens live in memory.
func testApp(t *testing.T, srv *httptest.Server) (*app, *tokenstore.MockStore) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GRAPHKIT_APP_SECRET", "shh")

	manager, store := tokenstore.NewMockManager()
	a := newApp()
	a.newManager = func(*config.Config, logger.Logger) (*tokenstore.Manager, error) {
		return manager, nil
	}
	if srv != nil {
		a.newClient = func(cfg *config.Config, log logger.Logger) (graph.TokenClient, error) {
			cfg.Graph.Endpoints = config.EndpointsConfig{
				Graph:          srv.URL,
				Facebook:       srv.URL,
				InstagramAPI:   srv.URL,
				InstagramGraph: srv.URL,
			}
			return graph.NewClientFromConfig(cfg, log)
		}
	}
	return a, store
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	old := ui.Output
	ui.Output = &buf
	t.Cleanup(func() { ui.Output = old })

	root := newRootCmd(a)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestLoginURL(t *testing.T) {
	a, _ := testApp(t, nil)

	out, err := run(t, a, "login-url",
		"--app-id", "123",
		"--redirect-uri", "https://example.com/cb",
		"--scope", "email,public_profile",
		"--state", "xyz",
	)
	require.NoError(t, err)

	start := strings.Index(out, "https://www.facebook.com/")
	require.GreaterOrEqual(t, start, 0, out)
	raw := strings.Fields(out[start:])[0]
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/v20.0/dialog/oauth", u.Path)
	assert.Equal(t, "123", u.Query().Get("client_id"))
	assert.Equal(t, "https://example.com/cb", u.Query().Get("redirect_uri"))
	assert.Equal(t, "email,public_profile", u.Query().Get("scope"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
}

func TestLoginURL_GeneratesState(t *testing.T) {
	a, _ := testApp(t, nil)

	out, err := run(t, a, "login-url", "--variant", "instagram", "--app-id", "123", "--redirect-uri", "https://example.com/cb")
	require.NoError(t, err)
	assert.Contains(t, out, "https://api.instagram.com/oauth/authorize")
	assert.Contains(t, out, "response_type=code")
	assert.Contains(t, out, "State")
}

func TestLoginURL_MissingAppID(t *testing.T) {
	a, _ := testApp(t, nil)

	_, err := run(t, a, "login-url", "--redirect-uri", "https://example.com/cb")
	assert.Error(t, err)
}

func TestTokenExchangeAndList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/oauth/access_token", r.URL.Path)
		assert.Equal(t, "the-code", r.URL.Query().Get("code"))
		assert.Equal(t, "shh", r.URL.Query().Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"EAAexchangedtoken","token_type":"bearer","expires_in":5183944}`))
	}))
	defer srv.Close()

	a, store := testApp(t, srv)

	out, err := run(t, a, "token", "exchange", "the-code", "--app-id", "123", "--redirect-uri", "https://example.com/cb")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved token 'default'")

	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "EAAexchangedtoken", saved.AccessToken)
	assert.Equal(t, "123", saved.AppID)
	assert.False(t, saved.Expires.IsZero())

	out, err = run(t, a, "token", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "facebook")
	assert.NotContains(t, out, "EAAexchangedtoken")
}

func TestTokenRefresh_UnsupportedOnFacebook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	a, store := testApp(t, srv)
	require.NoError(t, store.Save(&tokenstore.StoredToken{Name: "default", Variant: "facebook", AccessToken: "EAAold"}))

	_, err := run(t, a, "token", "refresh")
	assert.Error(t, err)
}

func TestTokenRefresh_Instagram(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/refresh_access_token", r.URL.Path)
		assert.Equal(t, "ig_refresh_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "IGQVJold", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"access_token":"IGQVJnew","token_type":"bearer","expires_in":5183944}`))
	}))
	defer srv.Close()

	a, store := testApp(t, srv)
	require.NoError(t, store.Save(&tokenstore.StoredToken{Name: "default", Variant: "instagram", AccessToken: "IGQVJold"}))

	_, err := run(t, a, "--variant", "instagram", "token", "refresh")
	require.NoError(t, err)

	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "IGQVJnew", saved.AccessToken)
}

func TestTokenShowAndForget(t *testing.T) {
	a, store := testApp(t, nil)
	require.NoError(t, store.Save(&tokenstore.StoredToken{Name: "main", Variant: "facebook", AccessToken: "EAAsecretvalue123"}))

	out, err := run(t, a, "token", "show", "main")
	require.NoError(t, err)
	assert.NotContains(t, out, "EAAsecretvalue123")
	assert.Contains(t, out, "never")

	out, err = run(t, a, "token", "show", "main", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "EAAsecretvalue123")

	_, err = run(t, a, "token", "forget", "main")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())
}

func TestRatings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/1234/ratings", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("fields"), "recommendation_type")
		w.Write([]byte(`{"data":[
			{"created_time":"2024-03-01T10:00:00+0000","rating":4,"has_rating":true,"reviewer":{"id":"1","name":"Ada"}},
			{"created_time":"2024-03-02T10:00:00+0000","recommendation_type":"positive","review_text":"Great coffee"}
		]}`))
	}))
	defer srv.Close()

	a, _ := testApp(t, srv)
	t.Setenv("GRAPHKIT_ACCESS_TOKEN", "EAApage")

	out, err := run(t, a, "ratings", "1234")
	require.NoError(t, err)
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "recommendation")
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "Great coffee")
}

func TestGuideSkipsConfig(t *testing.T) {
	a, _ := testApp(t, nil)
	a.configFile = "/nonexistent/graphkit.yaml"

	out, err := run(t, a, "guide", "--config", "/nonexistent/graphkit.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "redirect URI")
}

func TestConfigShowMasksSecrets(t *testing.T) {
	a, _ := testApp(t, nil)
	t.Setenv("GRAPHKIT_APP_SECRET", "supersecretvalue")

	out, err := run(t, a, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "supersecretvalue")
	assert.Contains(t, out, "variant: facebook")
}
