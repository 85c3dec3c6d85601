package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/aussiebroadwan/totpenroll/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func newReq(ip, account string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = ip + ":12345"
	if account != "" {
		req.SetPathValue("account", account)
	}
	return req
}

// withTrustedProxies swaps the package-level proxy list for the test.
func withTrustedProxies(t *testing.T, cidrs string) {
	t.Helper()
	prev := httpx.TrustedProxies
	proxies, err := httpx.ParseTrustedProxies(cidrs)
	require.NoError(t, err)
	httpx.TrustedProxies = proxies
	t.Cleanup(func() { httpx.TrustedProxies = prev })
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		withTrustedProxies(t, "")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(newReq("192.168.1.1", "")))
	})

	t.Run("ignores forwarding headers from untrusted peers", func(t *testing.T) {
		withTrustedProxies(t, "")
		req := newReq("192.168.1.1", "")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("takes the nearest untrusted hop behind a trusted proxy", func(t *testing.T) {
		withTrustedProxies(t, "10.0.0.0/8")
		req := newReq("10.0.0.5", "")
		req.Header.Set("X-Forwarded-For", "198.51.100.9, 203.0.113.1, 10.0.0.7")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP behind a trusted proxy", func(t *testing.T) {
		withTrustedProxies(t, "10.0.0.1")
		req := newReq("10.0.0.1", "")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies(" 10.0.0.0/8, 192.0.2.1 ,,::1")
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, proxies)

	proxies, err = httpx.ParseTrustedProxies("10.0.0.0/8,not-an-ip")
	require.ErrorContains(t, err, "not-an-ip")
	require.Len(t, proxies, 1)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	withTrustedProxies(t, "")
	limited := httpx.RateLimitByIPAndPathValue(httpx.RateLimitConfig{
		RequestsPerWindow: 5,
		Window:            time.Minute,
		Burst:             5,
	}, "account")(okHandler)

	var rejected int
	for i := range 20 {
		req := newReq("192.168.1.1", "alice")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			rejected++
		}
	}
	require.Equal(t, 15, rejected)
}

func TestRateLimitByPathValue(t *testing.T) {
	limited := httpx.RateLimitByPathValue(httpx.RateLimitConfig{
		RequestsPerWindow: 3,
		Window:            time.Minute,
		Burst:             3,
	}, "account")(okHandler)

	for i := range 3 {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq(fmt.Sprintf("192.168.1.%d", i), "alice"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, newReq("192.168.1.99", "alice"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "a fresh address must not reset the account budget")

	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, newReq("192.168.1.99", "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.PathValueKeyExtractor("account"),
	)

	require.Equal(t, "192.168.1.1:alice", extractor(newReq("192.168.1.1", "alice")))
	require.Equal(t, "192.168.1.1", extractor(newReq("192.168.1.1", "")))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		limited := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		})(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, newReq("192.168.1.1", ""))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq("192.168.1.1", ""))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		limited := httpx.RateLimitByIP(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		})(okHandler)

		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq("192.168.1.1", ""))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq("192.168.1.1", ""))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq("192.168.1.2", ""))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		limited := httpx.RateLimitMiddleware(
			httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" },
		)(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, newReq("192.168.1.1", ""))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPAndPathValue(t *testing.T) {
	limited := httpx.RateLimitByIPAndPathValue(httpx.RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}, "account")(okHandler)

	for range 2 {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, newReq("192.168.1.1", "alice"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, newReq("192.168.1.1", "alice"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// same IP, other account
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, newReq("192.168.1.1", "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "7")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_TEST_BURST", "-1")

	cfg := httpx.ParseRateLimitFromEnv("TEST", httpx.StrictLimit)
	require.Equal(t, 7, cfg.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.Window)
	require.Equal(t, httpx.StrictLimit.Burst, cfg.Burst)
}

func TestRateLimitProfiles(t *testing.T) {
	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
	require.Greater(t, httpx.AccountLimit.Burst, httpx.StrictLimit.Burst)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	httpx.Chain(okHandler, mw("outer"), mw("inner")).ServeHTTP(httptest.NewRecorder(), newReq("10.0.0.1", ""))
	require.Equal(t, []string{"outer", "inner"}, order)
}
