package chrome

import (
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
)

// query maps a locator to a chromedp selector. With all set the CSS form
// selects every match, otherwise only the first.
func query(loc locator.Locator, all bool) (string, []chromedp.QueryOption, error) {
	if loc.IsCustom() {
		return customElementScript(loc), []chromedp.QueryOption{chromedp.ByJSPath}, nil
	}
	switch loc.Strategy {
	case locator.XPath, locator.Link, locator.PartialLink:
		xpath, err := locator.ToXPath(loc)
		if err != nil {
			return "", nil, err
		}
		return xpath, []chromedp.QueryOption{chromedp.BySearch}, nil
	case locator.ID, locator.Name, locator.Identifier, locator.CSS, locator.Tag, locator.Class:
		css, err := locator.ToCSS(loc)
		if err != nil {
			return "", nil, err
		}
		if all {
			return css, []chromedp.QueryOption{chromedp.ByQueryAll}, nil
		}
		return css, []chromedp.QueryOption{chromedp.ByQuery}, nil
	}
	return "", nil, fmt.Errorf("unsupported locator strategy '%s'", loc.Strategy)
}

// elementExpression evaluates to the first element loc matches, or null.
func elementExpression(loc locator.Locator) (string, error) {
	if loc.IsCustom() {
		return customElementScript(loc), nil
	}
	switch loc.Strategy {
	case locator.XPath, locator.Link, locator.PartialLink:
		xpath, err := locator.ToXPath(loc)
		if err != nil {
			return "", err
		}
		quoted, _ := json.Marshal(xpath)
		return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", quoted), nil
	}
	css, err := locator.ToCSS(loc)
	if err != nil {
		return "", fmt.Errorf("unsupported locator strategy '%s'", loc.Strategy)
	}
	quoted, _ := json.Marshal(css)
	return fmt.Sprintf("document.querySelector(%s)", quoted), nil
}

// elementResult is what elementCall evaluates to.
type elementResult struct {
	Found bool            `json:"found"`
	Value json.RawMessage `json:"value"`
}

// elementCall wraps a function expression so that it is called with the
// element loc matches and arg. The expression evaluates to an elementResult.
func elementCall(loc locator.Locator, script string, arg any) (string, error) {
	element, err := elementExpression(loc)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(arg)
	if err != nil {
		return "", fmt.Errorf("cannot pass script argument: %w", err)
	}
	return fmt.Sprintf("(function(){var el = %s; if (!el) { return {found: false}; } var v = (%s)(el, %s); return {found: true, value: v === undefined ? null : v};})()", element, script, encoded), nil
}

func customCall(loc locator.Locator) string {
	value, _ := json.Marshal(loc.Value)
	return fmt.Sprintf("(function(){%s}).call(null, %s)", loc.Script, value)
}

// customElementScript evaluates to the first element a custom strategy
// returns.
func customElementScript(loc locator.Locator) string {
	return fmt.Sprintf("(function(){var r = %s; return (r && r.length !== undefined) ? r[0] : r;})()", customCall(loc))
}

// customCountScript evaluates to the number of elements a custom strategy
// returns.
func customCountScript(loc locator.Locator) string {
	return fmt.Sprintf("(function(){var r = %s; if (!r) { return 0; } return r.length !== undefined ? r.length : 1;})()", customCall(loc))
}

// scriptExpression wraps a function body so that it runs with args as its
// arguments and yields null instead of undefined.
func scriptExpression(script string, args []any) (string, error) {
	if args == nil {
		args = make([]any, 0)
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("cannot pass script arguments: %w", err)
	}
	return fmt.Sprintf("(function(){var r = (function(){%s}).apply(null, %s); return r === undefined ? null : r;})()", script, encoded), nil
}
