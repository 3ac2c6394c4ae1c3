package server

import (
	"net/http"
	"regexp"
	"strconv"
)

// phoneRe matches phone user agents. Tablets get the full wheel.
var phoneRe = regexp.MustCompile(`(?i)iphone|ipod|android.*mobile|windows phone|blackberry|bb10|opera mini|iemobile|mobile.*firefox`)

// IsPhone reports whether userAgent belongs to a phone.
func IsPhone(userAgent string) bool {
	return phoneRe.MatchString(userAgent)
}

// compactFor decides the wheel size: an explicit compact query parameter
// wins, then the body's choice, then the user agent.
func compactFor(r *http.Request, fromBody bool) bool {
	if v := r.URL.Query().Get("compact"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fromBody || IsPhone(r.UserAgent())
}
