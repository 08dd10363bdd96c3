package locator

import (
	"fmt"
	"strings"
)

// XPathLiteral quotes s for use inside an xpath expression.
func XPathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if p != "" {
			quoted = append(quoted, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// CSSString quotes s for use as a CSS attribute value.
func CSSString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// ToXPath expresses a built-in locator as xpath. CSS locators have no
// xpath form and return an error.
func ToXPath(l Locator) (string, error) {
	switch l.Strategy {
	case XPath:
		return l.Value, nil
	case ID:
		return fmt.Sprintf("//*[@id=%s]", XPathLiteral(l.Value)), nil
	case Name:
		return fmt.Sprintf("//*[@name=%s]", XPathLiteral(l.Value)), nil
	case Identifier:
		lit := XPathLiteral(l.Value)
		return fmt.Sprintf("//*[@id=%s or @name=%s]", lit, lit), nil
	case Link:
		return fmt.Sprintf("//a[normalize-space(.)=%s]", XPathLiteral(l.Value)), nil
	case PartialLink:
		return fmt.Sprintf("//a[contains(normalize-space(.), %s)]", XPathLiteral(l.Value)), nil
	case Tag:
		return "//" + l.Value, nil
	case Class:
		return fmt.Sprintf("//*[contains(concat(' ', normalize-space(@class), ' '), %s)]", XPathLiteral(" "+l.Value+" ")), nil
	}
	return "", fmt.Errorf("strategy '%s' has no xpath form", l.Strategy)
}

// ToCSS expresses a built-in locator as a CSS selector. Strategies that need
// xpath (xpath, link, partial link) return an error.
func ToCSS(l Locator) (string, error) {
	switch l.Strategy {
	case CSS:
		return l.Value, nil
	case ID:
		return fmt.Sprintf("[id=%s]", CSSString(l.Value)), nil
	case Name:
		return fmt.Sprintf("[name=%s]", CSSString(l.Value)), nil
	case Identifier:
		lit := CSSString(l.Value)
		return fmt.Sprintf("[id=%s],[name=%s]", lit, lit), nil
	case Tag:
		return l.Value, nil
	case Class:
		return fmt.Sprintf("[class~=%s]", CSSString(l.Value)), nil
	}
	return "", fmt.Errorf("strategy '%s' has no css form", l.Strategy)
}
