package playwright

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	pw "github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"
)

const (
	// minActionTimeout bounds how long an element action waits for the
	// element to become actionable when no implicit wait is set.
	minActionTimeout  = time.Second
	navigationTimeout = 30 * time.Second
)

// Page is one browser with a single context and page.
type Page struct {
	browser      pw.Browser
	context      pw.BrowserContext
	page         pw.Page
	implicitWait time.Duration
	dialogs      browser.Dialogs
	marks        int
}

// listen tracks JavaScript dialogs of the page.
func (p *Page) listen() {
	p.page.OnDialog(func(dialog pw.Dialog) {
		log.Debugf("JavaScript %s dialog opened: %s", dialog.Type(), dialog.Message())
		p.dialogs.Opened(dialog.Message(), dialog)
	})
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Debugf("Navigating to: %s", url)
	_, err := p.page.Goto(url, pw.PageGotoOptions{Timeout: millis(ctx, navigationTimeout)})
	return err
}

func (p *Page) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.GoBack(pw.PageGoBackOptions{Timeout: millis(ctx, navigationTimeout)})
	return err
}

func (p *Page) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Reload(pw.PageReloadOptions{Timeout: millis(ctx, navigationTimeout)})
	return err
}

func (p *Page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *Page) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) Source(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *Page) Count(ctx context.Context, loc locator.Locator) (int, error) {
	elements, err := p.locator(ctx, loc)
	if err != nil {
		return 0, err
	}
	count, err := elements.Count()
	if err != nil {
		return 0, fmt.Errorf("error finding element with locator '%s': %v", loc, err)
	}
	return count, nil
}

func (p *Page) IsVisible(ctx context.Context, loc locator.Locator) (bool, error) {
	elements, err := p.locator(ctx, loc)
	if err != nil {
		return false, err
	}
	count, err := elements.Count()
	if err != nil || count == 0 {
		return false, err
	}
	visible, err := elements.First().Evaluate(browser.VisibleScript, nil)
	if err != nil {
		return false, err
	}
	v, _ := visible.(bool)
	return v, nil
}

func (p *Page) Click(ctx context.Context, loc locator.Locator) error {
	element, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	err = p.dialogs.Interruptible(func() error {
		return element.Click()
	})
	if err != nil {
		return fmt.Errorf("error clicking element '%s': %v", loc, err)
	}
	log.Debugf("Successfully clicked element '%s'.", loc)
	return nil
}

func (p *Page) InputText(ctx context.Context, loc locator.Locator, text string, clear bool) error {
	element, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	if clear {
		err = element.Fill(text)
	} else {
		err = element.PressSequentially(text)
	}
	if err != nil {
		return fmt.Errorf("error input element '%s': %v", loc, err)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc locator.Locator) (string, error) {
	element, err := p.locate(ctx, loc)
	if err != nil {
		return "", err
	}
	return element.InnerText()
}

func (p *Page) Attribute(ctx context.Context, loc locator.Locator, name string) (string, error) {
	element, err := p.locate(ctx, loc)
	if err != nil {
		return "", err
	}
	return element.GetAttribute(name)
}

func (p *Page) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result any
	err := p.dialogs.Interruptible(func() error {
		var errEvaluate error
		result, errEvaluate = p.page.Evaluate(scriptFunction(script), scriptArgs(args))
		return errEvaluate
	})
	return result, err
}

func (p *Page) Submit(ctx context.Context, loc locator.Locator) error {
	_, err := p.evaluate(ctx, loc, browser.SubmitScript, nil)
	return err
}

func (p *Page) IsSelected(ctx context.Context, loc locator.Locator) (bool, error) {
	result, err := p.evaluate(ctx, loc, browser.SelectedScript, nil)
	if err != nil {
		return false, err
	}
	selected, _ := result.(bool)
	return selected, nil
}

func (p *Page) SelectOptions(ctx context.Context, loc locator.Locator, values []string, byLabel bool) error {
	wanted := make([]any, 0, len(values))
	for _, v := range values {
		wanted = append(wanted, v)
	}
	result, err := p.evaluate(ctx, loc, browser.SelectOptionsScript, map[string]any{"values": wanted, "byLabel": byLabel})
	if err != nil {
		return err
	}
	var missing []string
	if err = decode(result, &missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return &browser.OptionNotFoundError{Locator: loc.String(), Values: missing, ByLabel: byLabel}
	}
	return nil
}

func (p *Page) SelectedOptions(ctx context.Context, loc locator.Locator) ([]browser.Option, error) {
	result, err := p.evaluate(ctx, loc, browser.SelectedOptionsScript, nil)
	if err != nil {
		return nil, err
	}
	options := make([]browser.Option, 0)
	if err = decode(result, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (p *Page) AlertText(_ context.Context) (string, error) {
	message, _, ok := p.dialogs.Current()
	if !ok {
		return "", browser.ErrNoAlert
	}
	return message, nil
}

func (p *Page) HandleAlert(ctx context.Context, accept bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, handle, ok := p.dialogs.Current()
	dialog, isDialog := handle.(pw.Dialog)
	if !ok || !isDialog {
		return browser.ErrNoAlert
	}
	var err error
	if accept {
		err = dialog.Accept()
	} else {
		err = dialog.Dismiss()
	}
	if err != nil {
		return fmt.Errorf("failed to handle alert: %w", err)
	}
	p.dialogs.Closed()
	return nil
}

// Screenshot captures the whole page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Screenshot(pw.PageScreenshotOptions{FullPage: pw.Bool(true)})
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cookies, err := p.context.Cookies(p.page.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}
	result := make([]browser.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, fromCookie(c))
	}
	return result, nil
}

func (p *Page) AddCookie(ctx context.Context, cookie browser.Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := toOptionalCookie(cookie, p.page.URL())
	if err != nil {
		return err
	}
	if err = p.context.AddCookies([]pw.OptionalCookie{c}); err != nil {
		return fmt.Errorf("failed to set cookie: %w", err)
	}
	return nil
}

func (p *Page) DeleteAllCookies(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.context.ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear browser cookies: %w", err)
	}
	return nil
}

// SetImplicitWait also becomes the page's default action timeout, with a
// floor so that actions can wait for an element to become actionable.
func (p *Page) SetImplicitWait(d time.Duration) error {
	p.implicitWait = d
	p.page.SetDefaultTimeout(float64(max(d, minActionTimeout) / time.Millisecond))
	return nil
}

// Close closes the context and the browser and returns the first error.
func (p *Page) Close() error {
	var firstErr error
	if p.context != nil {
		if err := p.context.Close(); err != nil {
			log.Debugf("Error closing browser context: %v", err)
			firstErr = err
		}
		p.context = nil
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			log.Debugf("Error closing browser: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		p.browser = nil
	}
	if firstErr == nil {
		log.Info("Playwright browser closed.")
	}
	return firstErr
}

// locator maps loc to a Playwright locator over every match. Custom
// strategies run first and tag what they return.
func (p *Page) locator(ctx context.Context, loc locator.Locator) (pw.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if loc.IsCustom() {
		p.marks++
		mark := strconv.Itoa(p.marks)
		if _, err := p.page.Evaluate(markScript(loc, mark)); err != nil {
			return nil, fmt.Errorf("error running locator strategy '%s': %v", loc.Strategy, err)
		}
		return p.page.Locator(markSelector(mark)), nil
	}
	sel, err := selector(loc)
	if err != nil {
		return nil, err
	}
	return p.page.Locator(sel), nil
}

// locate resolves loc to its first match. Without an implicit wait a
// missing element fails right away instead of waiting for the timeout.
func (p *Page) locate(ctx context.Context, loc locator.Locator) (pw.Locator, error) {
	elements, err := p.locator(ctx, loc)
	if err != nil {
		return nil, err
	}
	if p.implicitWait <= 0 {
		count, errCount := elements.Count()
		if errCount != nil {
			return nil, fmt.Errorf("error finding element with locator '%s': %v", loc, errCount)
		}
		if count == 0 {
			return nil, &browser.ElementNotFoundError{Locator: loc.String()}
		}
	}
	return elements.First(), nil
}

// evaluate calls one of the shared element scripts with the first match of
// loc and arg.
func (p *Page) evaluate(ctx context.Context, loc locator.Locator, script string, arg any) (any, error) {
	element, err := p.locate(ctx, loc)
	if err != nil {
		return nil, err
	}
	result, err := element.Evaluate(script, arg)
	if err != nil {
		return nil, fmt.Errorf("error evaluating script on element '%s': %v", loc, err)
	}
	return result, nil
}

// millis converts the time left for ctx, capped at limit, into a Playwright
// timeout.
func millis(ctx context.Context, limit time.Duration) *float64 {
	timeout := limit
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = max(left, time.Millisecond)
		}
	}
	return pw.Float(float64(timeout / time.Millisecond))
}
