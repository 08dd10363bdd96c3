package playwright

import (
	"context"
	"testing"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	pw "github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineFor(t *testing.T) {
	cases := []struct {
		name     string
		engine   string
		headless bool
	}{
		{"", engineFirefox, false},
		{"Firefox", engineFirefox, false},
		{"headless firefox", engineFirefox, true},
		{"gc", engineChromium, false},
		{"HeadlessChrome", engineChromium, true},
		{"chromium", engineChromium, false},
		{"safari", engineWebKit, false},
		{"webkit", engineWebKit, false},
	}
	for _, c := range cases {
		engine, headless, err := engineFor(c.name, false)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.engine, engine, c.name)
		assert.Equal(t, c.headless, headless, c.name)
	}

	_, headless, err := engineFor("webkit", true)
	require.NoError(t, err)
	assert.True(t, headless, "configured headless applies to every engine")

	_, _, err = engineFor("ie", false)
	assert.EqualError(t, err, "ie is not supported by the playwright driver")
}

func TestNewOpener(t *testing.T) {
	_, err := NewOpener(nil)
	assert.Error(t, err)

	o, err := NewOpener(&config.AppConfig{})
	require.NoError(t, err)
	assert.NoError(t, o.Close(), "closing before the first Open is a no-op")

	_, err = o.Open(context.Background(), "netscape", "")
	assert.Error(t, err)
}

func TestLaunchOptions(t *testing.T) {
	o, err := NewOpener(&config.AppConfig{Browser: config.AppConfigBrowser{
		ChromePath: "/opt/chrome",
		ProxyURL:   "socks5://127.0.0.1:1080",
		Args:       []string{"--lang=en"},
	}})
	require.NoError(t, err)

	options := o.launchOptions(engineChromium, true)
	require.NotNil(t, options.Headless)
	assert.True(t, *options.Headless)
	require.NotNil(t, options.ExecutablePath)
	assert.Equal(t, "/opt/chrome", *options.ExecutablePath)
	require.NotNil(t, options.Proxy)
	assert.Equal(t, "socks5://127.0.0.1:1080", options.Proxy.Server)
	assert.Equal(t, []string{"--lang=en"}, options.Args)

	options = o.launchOptions(engineFirefox, false)
	assert.Nil(t, options.ExecutablePath, "chrome-path only applies to chromium")
	assert.False(t, *options.Headless)
}

func TestContextOptions(t *testing.T) {
	o, err := NewOpener(&config.AppConfig{})
	require.NoError(t, err)
	options := o.contextOptions()
	assert.Nil(t, options.UserAgent)
	assert.Nil(t, options.Viewport)

	o.appConfig.Browser.UserAgent = "kw-agent"
	o.appConfig.Browser.WindowSize = []int{1280, 720}
	options = o.contextOptions()
	require.NotNil(t, options.UserAgent)
	assert.Equal(t, "kw-agent", *options.UserAgent)
	assert.Equal(t, &pw.Size{Width: 1280, Height: 720}, options.Viewport)
}

func TestSelector(t *testing.T) {
	sel, err := selector(locator.Locator{Strategy: locator.ID, Value: "login"})
	require.NoError(t, err)
	assert.Equal(t, `css=[id="login"]`, sel)

	sel, err = selector(locator.Locator{Strategy: locator.XPath, Value: "//div[1]"})
	require.NoError(t, err)
	assert.Equal(t, "xpath=//div[1]", sel)

	sel, err = selector(locator.Locator{Strategy: locator.Link, Value: "Home"})
	require.NoError(t, err)
	assert.Equal(t, `xpath=//a[normalize-space(.)="Home"]`, sel)

	_, err = selector(locator.Locator{Strategy: "dom", Value: "x"})
	assert.EqualError(t, err, "unsupported locator strategy 'dom'")
}

func TestMarkScript(t *testing.T) {
	script := markScript(locator.Locator{Strategy: "qa", Value: `a"b`, Script: "return [];"}, "3")
	assert.Contains(t, script, `(function(){return [];}).call(null, "a\"b")`)
	assert.Contains(t, script, `el.setAttribute("data-keyword-locator", "3")`)
	assert.Equal(t, `css=[data-keyword-locator="3"]`, markSelector("3"))
}

func TestScriptFunction(t *testing.T) {
	assert.Equal(t,
		"(args) => { var r = (function(){return arguments[0];}).apply(null, args); return r === undefined ? null : r; }",
		scriptFunction("return arguments[0];"))
	assert.Equal(t, []any{}, scriptArgs(nil))
	assert.Equal(t, []any{1, "a"}, scriptArgs([]any{1, "a"}))
}

func TestDecode(t *testing.T) {
	var options []browser.Option
	require.NoError(t, decode([]any{map[string]any{"label": "Finland", "value": "fi"}}, &options))
	assert.Equal(t, []browser.Option{{Label: "Finland", Value: "fi"}}, options)

	var missing []string
	require.NoError(t, decode(nil, &missing))
	assert.Empty(t, missing)
}

func TestCookieConversion(t *testing.T) {
	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	c := fromCookie(pw.Cookie{Name: "sid", Value: "1", Domain: "example.com", Path: "/", Expires: float64(expiry.Unix()), HttpOnly: true})
	assert.Equal(t, browser.Cookie{Name: "sid", Value: "1", Domain: "example.com", Path: "/", HTTPOnly: true, Expiry: expiry}, c)
	assert.True(t, fromCookie(pw.Cookie{Name: "s", Expires: -1}).Expiry.IsZero(), "session cookie")

	opt, err := toOptionalCookie(browser.Cookie{Name: "a", Value: "b"}, "https://example.com/app")
	require.NoError(t, err)
	require.NotNil(t, opt.URL)
	assert.Equal(t, "https://example.com/app", *opt.URL)
	assert.Nil(t, opt.Domain)
	assert.Nil(t, opt.Expires)

	opt, err = toOptionalCookie(browser.Cookie{Name: "a", Path: "/app", Expiry: expiry}, "https://example.com/app")
	require.NoError(t, err)
	assert.Nil(t, opt.URL)
	assert.Equal(t, "example.com", *opt.Domain)
	assert.Equal(t, "/app", *opt.Path)
	assert.Equal(t, float64(expiry.Unix()), *opt.Expires)

	opt, err = toOptionalCookie(browser.Cookie{Name: "a", Domain: ".example.com", Secure: true}, "")
	require.NoError(t, err)
	assert.Equal(t, "/", *opt.Path)
	assert.True(t, *opt.Secure)

	_, err = toOptionalCookie(browser.Cookie{Name: "a", Path: "/x"}, "about:blank")
	assert.Error(t, err)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, float64(30000), *millis(context.Background(), navigationTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	timeout := *millis(ctx, navigationTimeout)
	assert.LessOrEqual(t, timeout, float64(2000))
	assert.Greater(t, timeout, float64(0))
}

func TestPageAlertsWithoutDialog(t *testing.T) {
	p := &Page{}
	_, err := p.AlertText(context.Background())
	assert.ErrorIs(t, err, browser.ErrNoAlert)
	assert.ErrorIs(t, p.HandleAlert(context.Background(), true), browser.ErrNoAlert)

	p.dialogs.Opened("Leave?", nil)
	message, err := p.AlertText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Leave?", message)

	_, err = p.ExecuteScript(context.Background(), "return 1;")
	var unexpected *browser.UnexpectedAlertError
	assert.ErrorAs(t, err, &unexpected)
}
