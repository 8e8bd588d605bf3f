package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "10.0.0.0/8", got[0].String())
	assert.Equal(t, "192.168.1.5/32", got[1].String())
	assert.Equal(t, "::1/128", got[2].String())

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

// loginLimited chains the forwarded-header handling in front of a limiter
// that admits a single request per client.
func loginLimited(t *testing.T, trusted []string) http.Handler {
	t.Helper()
	prefixes, err := ParseTrustedProxies(trusted)
	require.NoError(t, err)
	rl := NewRateLimiter(0.0001, 1, zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	return TrustedRealIP(prefixes)(rl.Handler(ok))
}

func TestTrustedRealIP_RotatingForwardedForIsIgnored(t *testing.T) {
	h := loginLimited(t, nil)

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "198.51.100."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestTrustedRealIP_UntrustedPeerIgnoresHeaders(t *testing.T) {
	h := loginLimited(t, []string{"10.0.0.0/8"})

	allowed := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestTrustedRealIP_TrustedProxyForwardsClient(t *testing.T) {
	h := loginLimited(t, []string{"10.0.0.0/8"})

	hit := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("198.51.100.1"))
	assert.Equal(t, http.StatusOK, hit("198.51.100.2"), "distinct clients behind the proxy get their own bucket")
}
