package auth

import (
	"net/url"
	"strings"
)

// SafeNext returns next when it is a same-origin relative path and "/"
// otherwise. Scheme-relative ("//host"), absolute and backslash forms are
// all rejected.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	if strings.ContainsAny(next, "\\\r\n\t") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return next
}
