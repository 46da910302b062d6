package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PackageInfo holds the registry metadata of a package that the release engine
// reasons about: published versions, dist-tags, and publish times.
type PackageInfo struct {
	Name     string                     `json:"name"`
	Versions map[string]json.RawMessage `json:"versions"`
	DistTags map[string]string          `json:"dist-tags"`
	// Time maps version (plus "created"/"modified") to publish timestamps.
	Time map[string]time.Time `json:"time"`
}

// HasVersion reports whether the given version has been published.
func (i *PackageInfo) HasVersion(version string) bool {
	_, ok := i.Versions[version]
	return ok
}

// FetchPackageInfo queries the registry for a package's metadata.
func FetchPackageInfo(ctx context.Context, registry, packageName string) (*PackageInfo, error) {
	// Scoped package names must keep the scope slash encoded.
	escaped := strings.ReplaceAll(url.PathEscape(packageName), "%2F", "/")
	requestURL := strings.TrimSuffix(registry, "/") + "/" + escaped

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry for %s: %w", packageName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, packageName)
	}

	var info PackageInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to parse registry response for %s: %w", packageName, err)
	}

	return &info, nil
}
