package chrome

import (
	"context"
	"testing"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	sel, opts, err := query(locator.Locator{Strategy: locator.ID, Value: "login"}, false)
	require.NoError(t, err)
	assert.Equal(t, `[id="login"]`, sel)
	assert.Len(t, opts, 1)

	sel, _, err = query(locator.Locator{Strategy: locator.Link, Value: "Home"}, true)
	require.NoError(t, err)
	assert.Equal(t, `//a[normalize-space(.)="Home"]`, sel)

	sel, _, err = query(locator.Locator{Strategy: locator.CSS, Value: "ul > li"}, true)
	require.NoError(t, err)
	assert.Equal(t, "ul > li", sel)

	sel, _, err = query(locator.Locator{Strategy: "qa", Value: "go", Script: "return [];"}, false)
	require.NoError(t, err)
	assert.Contains(t, sel, `(function(){return [];}).call(null, "go")`)

	_, _, err = query(locator.Locator{Strategy: "dom", Value: "x"}, false)
	assert.Error(t, err)
}

func TestScriptExpression(t *testing.T) {
	expr, err := scriptExpression("return arguments[0] + arguments[1];", []any{1, "a"})
	require.NoError(t, err)
	assert.Equal(t, `(function(){var r = (function(){return arguments[0] + arguments[1];}).apply(null, [1,"a"]); return r === undefined ? null : r;})()`, expr)

	expr, err = scriptExpression("document.title = 'x';", nil)
	require.NoError(t, err)
	assert.Contains(t, expr, ".apply(null, [])")

	_, err = scriptExpression("return 1;", []any{make(chan int)})
	assert.Error(t, err)
}

func TestCustomCountScript(t *testing.T) {
	script := customCountScript(locator.Locator{Strategy: "qa", Value: `a"b`, Script: "return [];"})
	assert.Contains(t, script, `.call(null, "a\"b")`)
	assert.Contains(t, script, "r.length")
}

func TestElementExpression(t *testing.T) {
	expr, err := elementExpression(locator.Locator{Strategy: locator.ID, Value: "login"})
	require.NoError(t, err)
	assert.Equal(t, `document.querySelector("[id=\"login\"]")`, expr)

	expr, err = elementExpression(locator.Locator{Strategy: locator.Link, Value: "Home"})
	require.NoError(t, err)
	assert.Equal(t, `document.evaluate("//a[normalize-space(.)=\"Home\"]", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`, expr)

	expr, err = elementExpression(locator.Locator{Strategy: "qa", Value: "go", Script: "return [];"})
	require.NoError(t, err)
	assert.Contains(t, expr, `(function(){return [];}).call(null, "go")`)

	_, err = elementExpression(locator.Locator{Strategy: "dom", Value: "x"})
	assert.Error(t, err)
}

func TestElementCall(t *testing.T) {
	expr, err := elementCall(locator.Locator{Strategy: locator.CSS, Value: "select"}, browser.SelectOptionsScript, browser.SelectArg{Values: []string{"fi"}, ByLabel: true})
	require.NoError(t, err)
	assert.Contains(t, expr, `var el = document.querySelector("select");`)
	assert.Contains(t, expr, `{"values":["fi"],"byLabel":true}`)
	assert.Contains(t, expr, "return {found: false};")

	expr, err = elementCall(locator.Locator{Strategy: locator.CSS, Value: "p"}, browser.VisibleScript, nil)
	require.NoError(t, err)
	assert.Contains(t, expr, "(el, null)")

	_, err = elementCall(locator.Locator{Strategy: locator.CSS, Value: "p"}, browser.VisibleScript, make(chan int))
	assert.Error(t, err)
}

func TestParseFlag(t *testing.T) {
	name, value, ok := parseFlag("--lang=en")
	assert.True(t, ok)
	assert.Equal(t, "lang", name)
	assert.Equal(t, "en", value)

	name, value, ok = parseFlag("--mute-audio")
	assert.True(t, ok)
	assert.Equal(t, "mute-audio", name)
	assert.Equal(t, true, value)

	_, _, ok = parseFlag("")
	assert.False(t, ok)
	_, _, ok = parseFlag("--")
	assert.False(t, ok)
}

func TestManagerRejectsOtherBrowsers(t *testing.T) {
	m, err := NewManager(config.Default())
	require.NoError(t, err)

	_, err = m.Open(context.Background(), "firefox", "")
	assert.ErrorContains(t, err, "not supported by the chrome driver")

	_, err = NewManager(nil)
	assert.Error(t, err)
}

func flagMap(flags []flag) map[string]any {
	m := make(map[string]any, len(flags))
	for _, f := range flags {
		m[f.name] = f.value
	}
	return m
}

func TestAllocatorFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Browser.Args = []string{"--lang=en", ""}
	cfg.Browser.UserAgent = "agent"
	cfg.Browser.ProxyURL = "http://127.0.0.1:3128"
	cfg.Browser.ChromePath = "/opt/chrome"
	m, err := NewManager(cfg)
	require.NoError(t, err)

	plain := flagMap(m.flags(false))
	assert.Equal(t, "agent", plain["user-agent"])
	assert.Equal(t, "http://127.0.0.1:3128", plain["proxy-server"])
	assert.Equal(t, "en", plain["lang"])
	assert.Equal(t, true, plain["no-first-run"])
	assert.NotContains(t, plain, "headless")
	assert.NotContains(t, plain, "window-size")

	headless := flagMap(m.flags(true))
	assert.Equal(t, true, headless["headless"])
	assert.Equal(t, "1920,1080", headless["window-size"])

	cfg.Browser.WindowSize = []int{800, 600}
	sized := flagMap(m.flags(true))
	assert.Equal(t, "800,600", sized["window-size"])

	assert.Len(t, m.allocatorOptions(false), len(m.flags(false))+1, "exec path comes first")
}

func TestClosedPage(t *testing.T) {
	p := &Page{}
	require.NoError(t, p.Close())
	_, err := p.Title(context.Background())
	assert.Error(t, err)
	assert.NoError(t, p.Close())
}

func TestPageAlertsWithoutDialog(t *testing.T) {
	p := &Page{}
	_, err := p.AlertText(context.Background())
	assert.ErrorIs(t, err, browser.ErrNoAlert)
	assert.ErrorIs(t, p.HandleAlert(context.Background(), true), browser.ErrNoAlert)

	p.dialogs.Opened("Leave?", nil)
	text, err := p.AlertText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Leave?", text)

	var unexpected *browser.UnexpectedAlertError
	_, err = p.ExecuteScript(context.Background(), "return 1;")
	assert.ErrorAs(t, err, &unexpected)
}
