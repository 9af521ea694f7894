// internal/requestinfo/requestinfo_test.go
//
// Unit-tests for Enrich and its helpers.

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/125.0.6422.113 Mobile Safari/537.36"

func TestEnrichAttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/booking", nil)
	req.Header.Set("User-Agent", chromeAndroid)
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "Mobile", got.UA.Device)
	assert.False(t, got.UA.IsBot)
	assert.Equal(t, "en-in", got.UA.PrimaryLang)
	assert.Equal(t, "203.0.113.7", got.Geo.IP.String())
	assert.Empty(t, got.Geo.CountryISO, "no GeoLite2 database loaded")
	assert.False(t, got.Timestamp.IsZero())
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:52100"
	assert.Equal(t, "198.51.100.4", clientIP(req).String())

	req.Header.Set("X-Real-Ip", "192.0.2.9")
	assert.Equal(t, "192.0.2.9", clientIP(req).String())
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	assert.Nil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestInitGeo(t *testing.T) {
	assert.NoError(t, InitGeo(""), "empty path disables lookup")
	assert.Error(t, InitGeo("/nonexistent/GeoLite2-City.mmdb"))
	assert.NoError(t, CloseGeo())
}

func TestLogFields(t *testing.T) {
	var ri *RequestInfo
	assert.Nil(t, ri.LogFields())

	ri = &RequestInfo{UA: UA{Device: "Desktop"}}
	assert.Contains(t, ri.LogFields(), "Desktop")
}
