package selenium

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	log "github.com/sirupsen/logrus"
	sel "github.com/tebeka/selenium"
)

// Session is a remote WebDriver session. The WebDriver client has no
// context support, so contexts are only checked before each call.
type Session struct {
	wd sel.WebDriver
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Debugf("Navigating to: %s", url)
	return s.wd.Get(url)
}

func (s *Session) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.Back()
}

func (s *Session) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.Refresh()
}

func (s *Session) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.Title()
}

func (s *Session) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.CurrentURL()
}

func (s *Session) Source(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.wd.PageSource()
}

func (s *Session) Count(ctx context.Context, loc locator.Locator) (int, error) {
	elements, err := s.find(ctx, loc)
	if err != nil {
		return 0, err
	}
	return len(elements), nil
}

func (s *Session) IsVisible(ctx context.Context, loc locator.Locator) (bool, error) {
	elements, err := s.find(ctx, loc)
	if err != nil {
		return false, err
	}
	if len(elements) == 0 {
		return false, nil
	}
	return elements[0].IsDisplayed()
}

func (s *Session) Click(ctx context.Context, loc locator.Locator) error {
	element, err := s.first(ctx, loc)
	if err != nil {
		return err
	}
	return element.Click()
}

func (s *Session) InputText(ctx context.Context, loc locator.Locator, text string, clear bool) error {
	element, err := s.first(ctx, loc)
	if err != nil {
		return err
	}
	if clear {
		if err = element.Clear(); err != nil {
			return err
		}
	}
	return element.SendKeys(text)
}

func (s *Session) Text(ctx context.Context, loc locator.Locator) (string, error) {
	element, err := s.first(ctx, loc)
	if err != nil {
		return "", err
	}
	return element.Text()
}

func (s *Session) Attribute(ctx context.Context, loc locator.Locator, name string) (string, error) {
	element, err := s.first(ctx, loc)
	if err != nil {
		return "", err
	}
	return element.GetAttribute(name)
}

func (s *Session) Submit(ctx context.Context, loc locator.Locator) error {
	element, err := s.first(ctx, loc)
	if err != nil {
		return err
	}
	return element.Submit()
}

func (s *Session) IsSelected(ctx context.Context, loc locator.Locator) (bool, error) {
	element, err := s.first(ctx, loc)
	if err != nil {
		return false, err
	}
	return element.IsSelected()
}

// SelectOptions clicks every matching option that is not selected yet.
func (s *Session) SelectOptions(ctx context.Context, loc locator.Locator, values []string, byLabel bool) error {
	options, err := s.options(ctx, loc)
	if err != nil {
		return err
	}
	missing := make([]string, 0)
	for _, value := range values {
		hit := false
		for _, o := range options {
			if o.key(byLabel) != value {
				continue
			}
			hit = true
			selected, errSelected := o.element.IsSelected()
			if errSelected != nil {
				return errSelected
			}
			if !selected {
				if err = o.element.Click(); err != nil {
					return err
				}
			}
		}
		if !hit {
			missing = append(missing, value)
		}
	}
	if len(missing) > 0 {
		return &browser.OptionNotFoundError{Locator: loc.String(), Values: missing, ByLabel: byLabel}
	}
	return nil
}

func (s *Session) SelectedOptions(ctx context.Context, loc locator.Locator) ([]browser.Option, error) {
	options, err := s.options(ctx, loc)
	if err != nil {
		return nil, err
	}
	selected := make([]browser.Option, 0, 1)
	for _, o := range options {
		ok, errSelected := o.element.IsSelected()
		if errSelected != nil {
			return nil, errSelected
		}
		if ok {
			selected = append(selected, o.Option)
		}
	}
	return selected, nil
}

type option struct {
	browser.Option
	element sel.WebElement
}

func (o option) key(byLabel bool) string {
	if byLabel {
		return o.Label
	}
	return o.Value
}

func (s *Session) options(ctx context.Context, loc locator.Locator) ([]option, error) {
	list, err := s.first(ctx, loc)
	if err != nil {
		return nil, err
	}
	tag, err := list.TagName()
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tag, "select") {
		return nil, fmt.Errorf("element '%s' is not a select list but %s", loc, tag)
	}
	elements, err := list.FindElements(sel.ByTagName, "option")
	if err != nil {
		return nil, err
	}
	options := make([]option, 0, len(elements))
	for _, element := range elements {
		label, errText := element.Text()
		if errText != nil {
			return nil, errText
		}
		value, errValue := element.GetAttribute("value")
		if errValue != nil {
			return nil, errValue
		}
		options = append(options, option{
			Option:  browser.Option{Label: strings.TrimSpace(label), Value: value},
			element: element,
		})
	}
	return options, nil
}

func (s *Session) AlertText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.wd.AlertText()
	return text, alertError(err)
}

func (s *Session) HandleAlert(ctx context.Context, accept bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if accept {
		return alertError(s.wd.AcceptAlert())
	}
	return alertError(s.wd.DismissAlert())
}

// alertError maps the WebDriver "no such alert" error to browser.ErrNoAlert.
func alertError(err error) error {
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "no such alert") {
		return fmt.Errorf("%w: %v", browser.ErrNoAlert, err)
	}
	return err
}

func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		args = make([]any, 0)
	}
	return s.wd.ExecuteScript(script, args)
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.Screenshot()
}

func (s *Session) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cookies, err := s.wd.GetCookies()
	if err != nil {
		return nil, err
	}
	result := make([]browser.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, fromSeleniumCookie(c))
	}
	return result, nil
}

func (s *Session) AddCookie(ctx context.Context, cookie browser.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.AddCookie(toSeleniumCookie(cookie))
}

func (s *Session) DeleteAllCookies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.DeleteAllCookies()
}

func (s *Session) SetImplicitWait(d time.Duration) error {
	return s.wd.SetImplicitWaitTimeout(d)
}

// Close quits the remote session.
func (s *Session) Close() error {
	log.Debug("Quitting WebDriver session...")
	return s.wd.Quit()
}

func (s *Session) find(ctx context.Context, loc locator.Locator) ([]sel.WebElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc.IsCustom() {
		raw, err := s.wd.ExecuteScriptRaw(customScript(loc), []any{loc.Value})
		if err != nil {
			return nil, err
		}
		return s.wd.DecodeElements(raw)
	}
	by, value, err := byFor(loc)
	if err != nil {
		return nil, err
	}
	return s.wd.FindElements(by, value)
}

func (s *Session) first(ctx context.Context, loc locator.Locator) (sel.WebElement, error) {
	elements, err := s.find(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, &browser.ElementNotFoundError{Locator: loc.String()}
	}
	return elements[0], nil
}

func fromSeleniumCookie(c sel.Cookie) browser.Cookie {
	cookie := browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if c.Expiry > 0 {
		cookie.Expiry = time.Unix(int64(c.Expiry), 0).UTC()
	}
	return cookie
}

func toSeleniumCookie(c browser.Cookie) *sel.Cookie {
	cookie := &sel.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if !c.Expiry.IsZero() {
		cookie.Expiry = uint(c.Expiry.Unix())
	}
	return cookie
}
