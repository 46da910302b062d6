package versioning

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relkit.dev/relkit/internal/config"
)

func TestGetLtsNpmDistTagOfMajor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "v16-lts", GetLtsNpmDistTagOfMajor(16))
}

func TestFetchLongTermSupportBranches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "@acme/core",
			"versions": {},
			"dist-tags": {
				"latest": "17.1.2",
				"next": "17.2.0-next.0",
				"v16-lts": "16.2.11",
				"v15-lts": "15.2.9"
			},
			"time": {
				"16.0.0": "2026-01-01T00:00:00.000Z",
				"15.0.0": "2024-06-01T00:00:00.000Z"
			}
		}`))
	}))
	defer server.Close()

	cfg := &config.ReleaseConfig{
		RepresentativeNpmPackage: "@acme/core",
		NpmPackages:              []config.NpmPackage{{Name: "@acme/core"}},
		PublishRegistry:          server.URL,
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	branches, err := FetchLongTermSupportBranches(context.Background(), cfg, now)
	require.NoError(t, err)

	require.Len(t, branches.Active, 1)
	require.Equal(t, "16.2.x", branches.Active[0].Name)
	require.Equal(t, "v16-lts", branches.Active[0].NpmDistTag)
	require.Equal(t, "16.2.11", branches.Active[0].Version.String())

	require.Len(t, branches.Inactive, 1)
	require.Equal(t, "15.2.x", branches.Inactive[0].Name)
}
