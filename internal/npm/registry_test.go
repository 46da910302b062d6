package npm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchPackageInfo(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/@acme/core", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "@acme/core",
			"versions": {"17.0.0": {}, "17.0.1": {}},
			"dist-tags": {"latest": "17.0.1", "v16-lts": "16.2.9"},
			"time": {"17.0.0": "2026-01-10T00:00:00.000Z"}
		}`))
	}))
	defer server.Close()

	info, err := FetchPackageInfo(context.Background(), server.URL+"/", "@acme/core")
	require.NoError(t, err)
	require.Equal(t, "@acme/core", info.Name)
	require.True(t, info.HasVersion("17.0.0"))
	require.False(t, info.HasVersion("17.0.2"))
	require.Equal(t, "17.0.1", info.DistTags["latest"])
	require.Equal(t, "16.2.9", info.DistTags["v16-lts"])
	require.Equal(t, 2026, info.Time["17.0.0"].Year())
}

func TestFetchPackageInfoNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FetchPackageInfo(context.Background(), server.URL, "@acme/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}
