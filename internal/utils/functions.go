package utils

import (
	"net/url"
	"path"
	"strings"
)

// MatchUrl reports whether targetUrl equals one of patternUrls or matches its
// path pattern (path.Match syntax) on the same scheme and host.
func MatchUrl(patternUrls []string, targetUrl string) bool {
	for _, patternUrl := range patternUrls {
		if patternUrl == targetUrl {
			return true
		}
		parsedPatternUrl, err := url.Parse(patternUrl)
		if err != nil {
			return false
		}
		parsedTargetUrl, err := url.Parse(targetUrl)
		if err != nil {
			return false
		}

		matched, err := path.Match(parsedPatternUrl.Path, parsedTargetUrl.Path)
		if err != nil {
			return false
		}

		if matched {
			if parsedPatternUrl.Scheme == parsedTargetUrl.Scheme && parsedPatternUrl.Host == parsedTargetUrl.Host {
				return true
			}
		}
	}
	return false
}

// IsTruthy applies the keyword argument truth rules: the strings false, no,
// none, off and 0 (any case) and the empty string are false, everything else
// is true.
func IsTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "no", "none", "off", "0":
		return false
	}
	return true
}

// IsNoneValue reports whether value means "not given".
func IsNoneValue(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "none" || v == "${none}"
}
