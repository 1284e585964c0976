package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL opts the league database connection out of binary results
// on prepared statements when asked to. A value already pinned in the DSN
// wins; unparseable DSNs pass through untouched.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if !query.Has("disable_prepared_binary_result") {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// dbNameFromURL pulls the database name out of either DSN form, the URL path
// or a dbname key=value field, for tagging DB spans.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := url.Parse(trimmed); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(trimmed) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != "dbname" {
			continue
		}
		if name := strings.Trim(strings.TrimSpace(value), `"'`); name != "" {
			return name
		}
	}

	return ""
}
