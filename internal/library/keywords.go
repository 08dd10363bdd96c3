package library

import (
	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
)

// Keywords holds the keyword implementations. Every exported method is a
// keyword; its first parameter is the context the keyword runs under.
type Keywords struct {
	lib *Library
}

type keywordSpec struct {
	name string
	args []string
	doc  string
}

// keywordSpecs documents the keyword methods. Argument entries are "name",
// "name=default" or "*name" for the variadic tail and must match the method
// parameters after the context.
var keywordSpecs = map[string]keywordSpec{
	"OpenBrowser": {
		args: []string{"url=None", "browser=firefox", "alias=None"},
		doc:  "Opens a new browser and navigates it to url. The browser becomes current. Returns its index, or the alias when one is given.",
	},
	"CloseBrowser": {
		doc: "Closes the current browser. Does nothing when no browser is open.",
	},
	"CloseAllBrowsers": {
		doc: "Closes every open browser. Indices are not reset.",
	},
	"SwitchBrowser": {
		args: []string{"index_or_alias"},
		doc:  "Makes the browser with the given index or alias current.",
	},
	"GetBrowserAliases": {
		doc: "Returns the aliases of the open browsers.",
	},
	"GetBrowserIds": {
		doc: "Returns the keys of the open browsers in the order they were opened.",
	},
	"GoTo": {
		args: []string{"url"},
		doc:  "Navigates the current browser to url.",
	},
	"GoBack": {
		doc: "Simulates the browser back button.",
	},
	"ReloadPage": {
		doc: "Reloads the current page.",
	},
	"GetTitle": {
		doc: "Returns the title of the current page.",
	},
	"GetLocation": {
		doc: "Returns the current URL.",
	},
	"GetSource": {
		doc: "Returns the HTML of the current page.",
	},
	"TitleShouldBe": {
		args: []string{"title", "message=None"},
		doc:  "Fails unless the page title is title.",
	},
	"LocationShouldBe": {
		args: []string{"url", "message=None"},
		doc:  "Fails unless the current URL is url.",
	},
	"LocationShouldContain": {
		args: []string{"expected", "message=None"},
		doc:  "Fails unless the current URL contains expected.",
	},
	"LocationShouldMatch": {
		args: []string{"*patterns"},
		doc:  "Fails unless the current URL matches one of the URL patterns. Paths accept shell wildcards.",
	},
	"ClickElement": {
		args: []string{"locator"},
		doc:  "Clicks the element identified by locator.",
	},
	"InputText": {
		args: []string{"locator", "text", "clear=True"},
		doc:  "Types text into the element identified by locator, clearing it first unless clear is false.",
	},
	"GetText": {
		args: []string{"locator"},
		doc:  "Returns the text of the element identified by locator.",
	},
	"GetElementAttribute": {
		args: []string{"locator", "attribute"},
		doc:  "Returns the value of attribute of the element identified by locator.",
	},
	"GetElementCount": {
		args: []string{"locator"},
		doc:  "Returns the number of elements matching locator.",
	},
	"ElementShouldBeVisible": {
		args: []string{"locator", "message=None"},
		doc:  "Fails unless the element identified by locator is visible.",
	},
	"PageShouldContainElement": {
		args: []string{"locator", "message=None", "limit=None"},
		doc:  "Fails unless the page contains the element. With limit the number of matches must be exactly limit.",
	},
	"WaitUntilPageContainsElement": {
		args: []string{"locator", "timeout=None", "error=None"},
		doc:  "Waits until the element appears on the page. The default timeout is the Selenium timeout.",
	},
	"WaitUntilElementIsVisible": {
		args: []string{"locator", "timeout=None", "error=None"},
		doc:  "Waits until the element is visible. The default timeout is the Selenium timeout.",
	},
	"ExecuteJavaScript": {
		name: "Execute JavaScript",
		args: []string{"*code"},
		doc:  "Executes the given JavaScript in the current page and returns its result. Parts of code are joined with spaces.",
	},
	"HandleAlert": {
		args: []string{"action=ACCEPT", "timeout=None"},
		doc:  "Waits for an alert, handles it with action ACCEPT, DISMISS or LEAVE and returns its message. The default timeout is the Selenium timeout.",
	},
	"AlertShouldBePresent": {
		args: []string{"text=None", "action=ACCEPT", "timeout=None"},
		doc:  "Fails unless an alert opens within timeout. With text the alert message must be text. The alert is handled with action.",
	},
	"AlertShouldNotBePresent": {
		args: []string{"action=ACCEPT", "timeout=0"},
		doc:  "Fails if an alert opens within timeout. An alert that opens is handled with action.",
	},
	"SubmitForm": {
		args: []string{"locator=None"},
		doc:  "Submits the form identified by locator, or the first form on the page.",
	},
	"SelectCheckbox": {
		args: []string{"locator"},
		doc:  "Selects the checkbox identified by locator. Does nothing when it is already selected.",
	},
	"UnselectCheckbox": {
		args: []string{"locator"},
		doc:  "Unselects the checkbox identified by locator. Does nothing when it is not selected.",
	},
	"CheckboxShouldBeSelected": {
		args: []string{"locator"},
		doc:  "Fails unless the checkbox identified by locator is selected.",
	},
	"CheckboxShouldNotBeSelected": {
		args: []string{"locator"},
		doc:  "Fails if the checkbox identified by locator is selected.",
	},
	"SelectRadioButton": {
		args: []string{"group_name", "value"},
		doc:  "Selects the radio button of group group_name whose value or id is value.",
	},
	"RadioButtonShouldBeSetTo": {
		args: []string{"group_name", "value"},
		doc:  "Fails unless the selected radio button of group group_name has value.",
	},
	"RadioButtonShouldNotBeSelected": {
		args: []string{"group_name"},
		doc:  "Fails if a radio button of group group_name is selected.",
	},
	"SelectFromListByValue": {
		args: []string{"locator", "*values"},
		doc:  "Selects the options with the given values from the select list identified by locator.",
	},
	"SelectFromListByLabel": {
		args: []string{"locator", "*labels"},
		doc:  "Selects the options with the given labels from the select list identified by locator.",
	},
	"GetSelectedListLabel": {
		args: []string{"locator"},
		doc:  "Returns the label of the selected option of the select list. With several selected options the first is returned.",
	},
	"GetSelectedListLabels": {
		args: []string{"locator"},
		doc:  "Returns the labels of the selected options of the select list.",
	},
	"GetSelectedListValue": {
		args: []string{"locator"},
		doc:  "Returns the value of the selected option of the select list. With several selected options the first is returned.",
	},
	"GetSelectedListValues": {
		args: []string{"locator"},
		doc:  "Returns the values of the selected options of the select list.",
	},
	"ListSelectionShouldBe": {
		args: []string{"locator", "*expected"},
		doc:  "Fails unless exactly the expected options are selected. Options are given by label or by value.",
	},
	"ListShouldHaveNoSelections": {
		args: []string{"locator"},
		doc:  "Fails if any option of the select list is selected.",
	},
	"GetTableCell": {
		args: []string{"locator", "row", "column"},
		doc:  "Returns the text of a table cell. Rows and columns count from 1 and include header cells; negative indices count from the end.",
	},
	"TableCellShouldContain": {
		args: []string{"locator", "row", "column", "expected"},
		doc:  "Fails unless the table cell contains expected.",
	},
	"TableShouldContain": {
		args: []string{"locator", "expected"},
		doc:  "Fails unless a cell of the table contains expected.",
	},
	"GetCookies": {
		doc: "Returns all cookies of the current page as 'name=value; name2=value2'.",
	},
	"GetCookieValue": {
		args: []string{"name"},
		doc:  "Returns the value of the cookie called name.",
	},
	"AddCookie": {
		args: []string{"name", "value", "path=None", "domain=None", "secure=False", "expiry=None"},
		doc:  "Adds a cookie to the current page. expiry is a Unix timestamp or a 'YYYY-MM-DD hh:mm:ss' time.",
	},
	"DeleteAllCookies": {
		doc: "Deletes all cookies.",
	},
	"CapturePageScreenshot": {
		args: []string{"filename=selenium-screenshot-{index}.png"},
		doc:  "Saves a screenshot of the current page and returns the path. {index} in filename is replaced with the first free number.",
	},
	"SetScreenshotDirectory": {
		args: []string{"path"},
		doc:  "Sets the directory screenshots are saved to and returns the previous one. None restores the default.",
	},
	"SetSeleniumTimeout": {
		args: []string{"value"},
		doc:  "Sets the timeout used by the waiting keywords and returns the previous value.",
	},
	"GetSeleniumTimeout": {
		doc: "Returns the timeout used by the waiting keywords.",
	},
	"SetSeleniumImplicitWait": {
		args: []string{"value"},
		doc:  "Sets the implicit wait of every open and future browser and returns the previous value.",
	},
	"SetSeleniumSpeed": {
		args: []string{"value"},
		doc:  "Sets the delay after each keyword and returns the previous value.",
	},
	"GetSeleniumSpeed": {
		doc: "Returns the delay after each keyword.",
	},
	"RegisterKeywordToRunOnFailure": {
		args: []string{"keyword"},
		doc:  "Sets the keyword run when another keyword fails and returns the previous one. Nothing disables it.",
	},
	"AddLocationStrategy": {
		args: []string{"strategy_name", "script", "persist=False"},
		doc:  "Adds a locator strategy. script is a JavaScript function body receiving the locator value as arguments[0] and returning the matching elements. Strategies not persisted are dropped at the end of the suite.",
	},
	"RemoveLocationStrategy": {
		args: []string{"strategy_name"},
		doc:  "Removes a custom locator strategy.",
	},
}

func (k *Keywords) current() (browser.Browser, error) {
	return k.lib.Browser()
}

// element returns the current browser together with the parsed locator.
func (k *Keywords) element(text string) (browser.Browser, locator.Locator, error) {
	b, err := k.current()
	if err != nil {
		return nil, locator.Locator{}, err
	}
	loc, err := k.lib.finder.Parse(text)
	if err != nil {
		return nil, locator.Locator{}, err
	}
	return b, loc, nil
}
