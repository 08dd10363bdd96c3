package selenium

import (
	"fmt"

	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	sel "github.com/tebeka/selenium"
)

func byFor(loc locator.Locator) (string, string, error) {
	switch loc.Strategy {
	case locator.ID:
		return sel.ByID, loc.Value, nil
	case locator.Name:
		return sel.ByName, loc.Value, nil
	case locator.XPath:
		return sel.ByXPATH, loc.Value, nil
	case locator.CSS:
		return sel.ByCSSSelector, loc.Value, nil
	case locator.Link:
		return sel.ByLinkText, loc.Value, nil
	case locator.PartialLink:
		return sel.ByPartialLinkText, loc.Value, nil
	case locator.Tag:
		return sel.ByTagName, loc.Value, nil
	case locator.Class:
		return sel.ByClassName, loc.Value, nil
	case locator.Identifier:
		xpath, err := locator.ToXPath(loc)
		if err != nil {
			return "", "", err
		}
		return sel.ByXPATH, xpath, nil
	}
	return "", "", fmt.Errorf("unsupported locator strategy '%s'", loc.Strategy)
}

// customScript wraps a strategy body so the element lookup runs with the
// locator value as arguments[0].
func customScript(loc locator.Locator) string {
	return "return (function(){" + loc.Script + "}).apply(null, arguments);"
}
