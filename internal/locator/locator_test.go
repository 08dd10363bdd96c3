package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	f := NewFinder()
	cases := map[string]Locator{
		"//div[@id='a']":         {Strategy: XPath, Value: "//div[@id='a']"},
		"(//a)[2]":               {Strategy: XPath, Value: "(//a)[2]"},
		"id=login":               {Strategy: ID, Value: "login"},
		"id:login":               {Strategy: ID, Value: "login"},
		"ID = login":             {Strategy: ID, Value: "login"},
		"css=div.a > span":       {Strategy: CSS, Value: "div.a > span"},
		"css:a[href='x=y']":      {Strategy: CSS, Value: "a[href='x=y']"},
		"partial link=Sign":      {Strategy: PartialLink, Value: "Sign"},
		"link:Sign in":           {Strategy: Link, Value: "Sign in"},
		"username":               {Strategy: Identifier, Value: "username"},
		"foo=bar":                {Strategy: Identifier, Value: "foo=bar"},
		"xpath=//input[@name=q]": {Strategy: XPath, Value: "//input[@name=q]"},
	}
	for input, want := range cases {
		got, err := f.Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := f.Parse("  ")
	assert.Error(t, err)
}

func TestCustomStrategies(t *testing.T) {
	f := NewFinder()

	require.NoError(t, f.Register("data", "return document.querySelectorAll('[data-qa=\"'+arguments[0]+'\"]');", false))
	require.NoError(t, f.Register("Persistent", "return [];", true))

	l, err := f.Parse("data=submit")
	require.NoError(t, err)
	assert.Equal(t, "data", l.Strategy)
	assert.Equal(t, "submit", l.Value)
	assert.True(t, l.IsCustom())

	assert.Error(t, f.Register("data", "return [];", false))
	assert.Error(t, f.Register("css", "return [];", false))
	assert.Error(t, f.Register("empty", " ", false))
	assert.Contains(t, f.Strategies(), "persistent")

	f.ClearTransient()
	l, err = f.Parse("data=submit")
	require.NoError(t, err)
	assert.Equal(t, Identifier, l.Strategy)
	assert.Contains(t, f.Strategies(), "persistent")

	require.NoError(t, f.Unregister("persistent"))
	assert.Error(t, f.Unregister("persistent"))
	assert.Error(t, f.Unregister("xpath"))
}

func TestToXPath(t *testing.T) {
	x, err := ToXPath(Locator{Strategy: Identifier, Value: "q"})
	require.NoError(t, err)
	assert.Equal(t, `//*[@id="q" or @name="q"]`, x)

	x, err = ToXPath(Locator{Strategy: Link, Value: `say "hi"`})
	require.NoError(t, err)
	assert.Equal(t, `//a[normalize-space(.)='say "hi"']`, x)

	_, err = ToXPath(Locator{Strategy: CSS, Value: "div"})
	assert.Error(t, err)
}

func TestToCSS(t *testing.T) {
	c, err := ToCSS(Locator{Strategy: Name, Value: `a"b`})
	require.NoError(t, err)
	assert.Equal(t, `[name="a\"b"]`, c)

	c, err = ToCSS(Locator{Strategy: Class, Value: "btn"})
	require.NoError(t, err)
	assert.Equal(t, `[class~="btn"]`, c)

	_, err = ToCSS(Locator{Strategy: Link, Value: "x"})
	assert.Error(t, err)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"abc"`, XPathLiteral("abc"))
	assert.Equal(t, `'a"b'`, XPathLiteral(`a"b`))
	assert.Equal(t, `concat("it's ", '"', "x", '"')`, XPathLiteral(`it's "x"`))
}
