package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGPSValid(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.True(t, GPSValid(f(30), 50))
	assert.True(t, GPSValid(f(50), 50), "boundary is inclusive")
	assert.True(t, GPSValid(f(0), 50))
	assert.False(t, GPSValid(f(50.01), 50))
	assert.False(t, GPSValid(f(80), 50))
	assert.False(t, GPSValid(nil, 50), "absent accuracy is invalid")
	assert.True(t, GPSValid(f(-5), 50), "negative readings are compared as reported")
}

func TestDistanceMeters(t *testing.T) {
	assert.InDelta(t, 0, DistanceMeters(35.5, 129.3, 35.5, 129.3), 1e-6)
	// Seoul City Hall to Busan City Hall is roughly 325 km.
	assert.InDelta(t, 325000, DistanceMeters(37.5665, 126.9780, 35.1796, 129.0756), 5000)
}

func TestGeoLocatorLocate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/8.8.8.8" {
			w.Write([]byte(`{"status":"success","country":"United States","city":"Mountain View"}`))
			return
		}
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer srv.Close()

	g := NewGeoLocator(srv.URL + "/")

	assert.Equal(t, "Mountain View, United States", g.Locate("8.8.8.8"))
	assert.Equal(t, "Unknown", g.Locate("1.1.1.1"))
	assert.Equal(t, "Local", g.Locate("127.0.0.1"))
	assert.Equal(t, "Local", g.Locate("192.168.1.10"))
	assert.Equal(t, "Unknown", g.Locate("not-an-ip"))
}
