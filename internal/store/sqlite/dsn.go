package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const dsnScheme = "sqlite://"

// parseDSN turns sqlite://<path>[?query] into a modernc data source name.
// Bare relative paths get an explicit ./ prefix.
func parseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, dsnScheme)
	if !ok {
		return "", fmt.Errorf("invalid sqlite DSN %q: expected %s scheme", dsn, dsnScheme)
	}
	if rest == ":memory:" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "./") {
		return rest, nil
	}

	path, query, hasQuery := strings.Cut(rest, "?")
	path, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping sqlite path: %w", err)
	}
	if !filepath.IsAbs(path) {
		path = "./" + path
	}
	if hasQuery {
		return path + "?" + query, nil
	}
	return path, nil
}
