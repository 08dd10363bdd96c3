package selenium

import (
	"errors"
	"testing"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sel "github.com/tebeka/selenium"
)

func TestByFor(t *testing.T) {
	cases := []struct {
		loc   locator.Locator
		by    string
		value string
	}{
		{locator.Locator{Strategy: locator.ID, Value: "a"}, sel.ByID, "a"},
		{locator.Locator{Strategy: locator.Name, Value: "q"}, sel.ByName, "q"},
		{locator.Locator{Strategy: locator.CSS, Value: "div > a"}, sel.ByCSSSelector, "div > a"},
		{locator.Locator{Strategy: locator.PartialLink, Value: "Sign"}, sel.ByPartialLinkText, "Sign"},
		{locator.Locator{Strategy: locator.Class, Value: "btn"}, sel.ByClassName, "btn"},
		{locator.Locator{Strategy: locator.Identifier, Value: "q"}, sel.ByXPATH, `//*[@id="q" or @name="q"]`},
	}
	for _, c := range cases {
		by, value, err := byFor(c.loc)
		require.NoError(t, err)
		assert.Equal(t, c.by, by)
		assert.Equal(t, c.value, value)
	}

	_, _, err := byFor(locator.Locator{Strategy: "dom", Value: "x"})
	assert.Error(t, err)
}

func TestCustomScript(t *testing.T) {
	script := customScript(locator.Locator{Strategy: "qa", Value: "x", Script: "return [arguments[0]];"})
	assert.Equal(t, "return (function(){return [arguments[0]];}).apply(null, arguments);", script)
}

func TestCapabilities(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.Args = []string{"--lang=en"}
	o, err := NewOpener(cfg)
	require.NoError(t, err)

	caps, err := o.capabilities("Google Chrome")
	require.NoError(t, err)
	assert.Equal(t, "chrome", caps["browserName"])

	caps, err = o.capabilities("ff")
	require.NoError(t, err)
	assert.Equal(t, "firefox", caps["browserName"])

	caps, err = o.capabilities("headlesschrome")
	require.NoError(t, err)
	assert.Equal(t, "chrome", caps["browserName"])

	caps, err = o.capabilities("")
	require.NoError(t, err)
	assert.Equal(t, "firefox", caps["browserName"])

	_, err = o.capabilities("netscape")
	assert.ErrorContains(t, err, "not a supported browser")

	_, err = NewOpener(nil)
	assert.Error(t, err)
}

func TestCookieConversion(t *testing.T) {
	expiry := time.Unix(1900000000, 0).UTC()
	c := browser.Cookie{Name: "n", Value: "v", Path: "/", Secure: true, Expiry: expiry}

	sc := toSeleniumCookie(c)
	assert.Equal(t, uint(1900000000), sc.Expiry)
	assert.Equal(t, c, fromSeleniumCookie(*sc))

	session := fromSeleniumCookie(sel.Cookie{Name: "s", Value: "1"})
	assert.True(t, session.Expiry.IsZero())
}

func TestProxyClientIsSetOnce(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.ProxyURL = "http://127.0.0.1:3128"
	_, err := NewOpener(cfg)
	require.NoError(t, err)
	first := sel.HTTPClient
	require.NotNil(t, first)

	other := config.Default()
	other.Browser.ProxyURL = "socks5://127.0.0.1:1080"
	_, err = NewOpener(other)
	require.NoError(t, err)
	assert.Same(t, first, sel.HTTPClient)

	bad := config.Default()
	bad.Browser.ProxyURL = "ftp://127.0.0.1"
	_, err = NewOpener(bad)
	assert.Error(t, err)
	assert.Same(t, first, sel.HTTPClient)
}

func TestAlertError(t *testing.T) {
	assert.NoError(t, alertError(nil))

	err := alertError(errors.New("no such alert: no such alert"))
	assert.ErrorIs(t, err, browser.ErrNoAlert)

	other := errors.New("invalid session id")
	assert.Equal(t, other, alertError(other))
}

func TestOptionKey(t *testing.T) {
	o := option{Option: browser.Option{Label: "Finland", Value: "fi"}}
	assert.Equal(t, "fi", o.key(false))
	assert.Equal(t, "Finland", o.key(true))
}
