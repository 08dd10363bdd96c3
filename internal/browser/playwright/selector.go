package playwright

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	pw "github.com/playwright-community/playwright-go"
)

// markAttribute tags the elements a custom strategy returned so that a
// Playwright selector can find them again.
const markAttribute = "data-keyword-locator"

// selector maps a built-in locator to a Playwright selector.
func selector(loc locator.Locator) (string, error) {
	switch loc.Strategy {
	case locator.XPath, locator.Link, locator.PartialLink:
		xpath, err := locator.ToXPath(loc)
		if err != nil {
			return "", err
		}
		return "xpath=" + xpath, nil
	}
	css, err := locator.ToCSS(loc)
	if err != nil {
		return "", fmt.Errorf("unsupported locator strategy '%s'", loc.Strategy)
	}
	return "css=" + css, nil
}

// markScript runs a custom strategy and sets markAttribute to mark on every
// element it returns.
func markScript(loc locator.Locator, mark string) string {
	value, _ := json.Marshal(loc.Value)
	quotedMark, _ := json.Marshal(mark)
	return fmt.Sprintf("() => { var r = (function(){%s}).call(null, %s); if (!r) { return 0; } if (r.length === undefined) { r = [r]; } Array.prototype.forEach.call(r, function(el) { el.setAttribute(%q, %s); }); return r.length; }", loc.Script, value, markAttribute, quotedMark)
}

// markSelector selects the elements markScript tagged with mark.
func markSelector(mark string) string {
	return fmt.Sprintf(`css=[%s="%s"]`, markAttribute, mark)
}

// scriptFunction wraps a function body so that Playwright calls it with the
// argument list spread, and yields null instead of undefined.
func scriptFunction(script string) string {
	return fmt.Sprintf("(args) => { var r = (function(){%s}).apply(null, args); return r === undefined ? null : r; }", script)
}

// scriptArgs turns keyword arguments into a value Playwright serializes.
func scriptArgs(args []any) []any {
	if args == nil {
		return make([]any, 0)
	}
	return args
}

// decode converts an evaluation result into out.
func decode(value any, out any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func fromCookie(c pw.Cookie) browser.Cookie {
	cookie := browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
	}
	if c.Expires > 0 {
		cookie.Expiry = time.Unix(int64(c.Expires), 0).UTC()
	}
	return cookie
}

// toOptionalCookie fills in what Playwright needs to scope a cookie: a URL,
// or a domain and a path. Missing parts come from pageURL.
func toOptionalCookie(c browser.Cookie, pageURL string) (pw.OptionalCookie, error) {
	cookie := pw.OptionalCookie{
		Name:     c.Name,
		Value:    c.Value,
		Secure:   pw.Bool(c.Secure),
		HttpOnly: pw.Bool(c.HTTPOnly),
	}
	switch {
	case c.Domain != "":
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookie.Domain = pw.String(c.Domain)
		cookie.Path = pw.String(path)
	case c.Path != "":
		parsed, err := url.Parse(pageURL)
		if err != nil || parsed.Hostname() == "" {
			return cookie, fmt.Errorf("cannot set cookie '%s' without a domain on page '%s'", c.Name, pageURL)
		}
		cookie.Domain = pw.String(parsed.Hostname())
		cookie.Path = pw.String(c.Path)
	default:
		cookie.URL = pw.String(pageURL)
	}
	if !c.Expiry.IsZero() {
		cookie.Expires = pw.Float(float64(c.Expiry.Unix()))
	}
	return cookie, nil
}
