package domain

import (
	"strconv"
	"strings"
)

// FormatVersion renders a revision as the quoted ETag value, e.g. "3".
func FormatVersion(v int) string {
	return `"` + strconv.Itoa(v) + `"`
}

// ParseVersion extracts the revision from an If-Match value. It accepts
// "3", W/"3" and a bare 3.
func ParseVersion(token string) (int, error) {
	raw := strings.TrimSpace(token)
	if raw == "" {
		return 0, &VersionError{Kind: ErrVersionMissing}
	}

	s := strings.TrimPrefix(raw, "W/")
	if strings.HasPrefix(s, `"`) || strings.HasSuffix(s, `"`) {
		if len(s) < 3 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
			return 0, &VersionError{Kind: ErrVersionMalformed, Token: raw}
		}
		s = s[1 : len(s)-1]
	}

	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, &VersionError{Kind: ErrVersionMalformed, Token: raw}
	}
	return v, nil
}
