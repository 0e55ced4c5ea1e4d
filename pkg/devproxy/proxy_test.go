package devproxy_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authfold/authfold/pkg/devproxy"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts absolute http and https origins", func(t *testing.T) {
		t.Parallel()

		for _, origin := range []string{"http://localhost:3000", "https://auth.example.com"} {
			cfg := devproxy.Config{BackendOrigin: origin}
			require.NoError(t, cfg.Validate(), origin)
		}
	})

	t.Run("rejects missing origin", func(t *testing.T) {
		t.Parallel()

		cfg := devproxy.Config{}
		require.ErrorIs(t, cfg.Validate(), devproxy.ErrMissingOrigin)
	})

	t.Run("rejects malformed origins", func(t *testing.T) {
		t.Parallel()

		for _, origin := range []string{"localhost:3000", "ftp://example.com", "https://", "not a url"} {
			cfg := devproxy.Config{BackendOrigin: origin}
			require.ErrorIs(t, cfg.Validate(), devproxy.ErrInvalidOrigin, origin)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads the origin from the environment", func(t *testing.T) {
		t.Setenv("AUTH_BACKEND_ORIGIN", "https://auth.example.com")

		cfg, err := devproxy.Load()
		require.NoError(t, err)
		require.Equal(t, "https://auth.example.com", cfg.BackendOrigin)
		require.Equal(t, "/api", cfg.PathPrefix)
	})

	t.Run("fails fast when the origin is missing", func(t *testing.T) {
		t.Setenv("AUTH_BACKEND_ORIGIN", "")

		_, err := devproxy.Load()
		require.Error(t, err)
	})
}

func TestProxy(t *testing.T) {
	t.Parallel()

	t.Run("forwards the request path and rewrites the host", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotHost string
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotHost = r.Host
			w.Write([]byte("backend"))
		}))
		t.Cleanup(backend.Close)

		proxy, err := devproxy.New(devproxy.Config{BackendOrigin: backend.URL, PathPrefix: "/api"})
		require.NoError(t, err)

		front := httptest.NewServer(proxy)
		t.Cleanup(front.Close)

		resp, err := http.Get(front.URL + "/api/auth/get-session")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/api/auth/get-session", gotPath)
		require.Equal(t, backend.Listener.Addr().String(), gotHost)
	})

	t.Run("passes cookies both ways", func(t *testing.T) {
		t.Parallel()

		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie("session"); err == nil {
				w.Header().Set("X-Got-Cookie", c.Value)
			}
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret", Path: "/"})
		}))
		t.Cleanup(backend.Close)

		proxy, err := devproxy.New(devproxy.Config{BackendOrigin: backend.URL})
		require.NoError(t, err)

		front := httptest.NewServer(proxy)
		t.Cleanup(front.Close)

		req, err := http.NewRequest(http.MethodGet, front.URL+"/api/auth/sign-in/email", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "session", Value: "existing"})

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, "existing", resp.Header.Get("X-Got-Cookie"))

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "session", cookies[0].Name)
		require.Equal(t, "s3cret", cookies[0].Value)
	})

	t.Run("strips the mount prefix when configured", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
		}))
		t.Cleanup(backend.Close)

		proxy, err := devproxy.New(devproxy.Config{
			BackendOrigin: backend.URL,
			PathPrefix:    "/api",
			StripPrefix:   true,
		})
		require.NoError(t, err)

		front := httptest.NewServer(proxy)
		t.Cleanup(front.Close)

		resp, err := http.Get(front.URL + "/api/auth/get-session")
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, "/auth/get-session", gotPath)
	})

	t.Run("answers 502 when the backend is down", func(t *testing.T) {
		t.Parallel()

		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		origin := backend.URL
		backend.Close()

		proxy, err := devproxy.New(devproxy.Config{BackendOrigin: origin})
		require.NoError(t, err)

		front := httptest.NewServer(proxy)
		t.Cleanup(front.Close)

		resp, err := http.Get(front.URL + "/api/auth/get-session")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("rejects invalid configuration", func(t *testing.T) {
		t.Parallel()

		_, err := devproxy.New(devproxy.Config{BackendOrigin: "nope"})
		require.ErrorIs(t, err, devproxy.ErrInvalidOrigin)
	})
}
