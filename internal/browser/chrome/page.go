package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	log "github.com/sirupsen/logrus"
)

// Page is one Chrome process with a single tab.
type Page struct {
	ctx          context.Context
	cancel       context.CancelFunc
	allocCancel  context.CancelFunc
	implicitWait time.Duration
	dialogs      browser.Dialogs
}

// listen tracks JavaScript dialogs of the tab.
func (p *Page) listen() {
	chromedp.ListenTarget(p.ctx, func(ev any) {
		switch e := ev.(type) {
		case *page.EventJavascriptDialogOpening:
			log.Debugf("JavaScript %s dialog opened: %s", e.Type, e.Message)
			p.dialogs.Opened(e.Message, nil)
		case *page.EventJavascriptDialogClosed:
			p.dialogs.Closed()
		}
	})
}

// run executes actions on the page. The caller's deadline and cancellation
// apply on top of the page context.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.ctx == nil {
		return fmt.Errorf("browser context not initialized")
	}
	opCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		opCtx, cancelDeadline = context.WithDeadline(opCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	log.Debugf("Navigating to: %s", url)
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) Back(ctx context.Context) error {
	return p.run(ctx, chromedp.NavigateBack())
}

func (p *Page) Reload(ctx context.Context) error {
	return p.run(ctx, chromedp.Reload())
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

func (p *Page) Location(ctx context.Context) (string, error) {
	var currentURL string
	err := p.run(ctx, chromedp.Location(&currentURL))
	return currentURL, err
}

func (p *Page) Source(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *Page) Count(ctx context.Context, loc locator.Locator) (int, error) {
	if loc.IsCustom() {
		var count int
		err := p.run(ctx, chromedp.Evaluate(customCountScript(loc), &count))
		return count, err
	}
	sel, opts, err := query(loc, true)
	if err != nil {
		return 0, err
	}
	var nodes []*cdp.Node
	opts = append(opts, chromedp.AtLeast(0))
	if err = p.run(ctx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return 0, fmt.Errorf("error finding element with locator '%s': %v", loc, err)
	}
	return len(nodes), nil
}

func (p *Page) IsVisible(ctx context.Context, loc locator.Locator) (bool, error) {
	var visible bool
	err := p.evalOnElement(ctx, loc, false, browser.VisibleScript, nil, &visible)
	if err != nil {
		var notFound *browser.ElementNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return visible, nil
}

func (p *Page) Click(ctx context.Context, loc locator.Locator) error {
	sel, opts, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	waitCtx, cancel := p.waitContext(ctx)
	defer cancel()
	err = p.dialogs.Interruptible(func() error {
		return p.run(waitCtx, chromedp.Click(sel, opts...))
	})
	if err != nil {
		return fmt.Errorf("error clicking element '%s': %v", loc, err)
	}
	log.Debugf("Successfully clicked element '%s'.", loc)
	return nil
}

func (p *Page) InputText(ctx context.Context, loc locator.Locator, text string, clear bool) error {
	sel, opts, err := p.locate(ctx, loc)
	if err != nil {
		return err
	}
	actions := make([]chromedp.Action, 0, 2)
	if clear {
		actions = append(actions, chromedp.Clear(sel, opts...))
	}
	actions = append(actions, chromedp.SendKeys(sel, text, opts...))
	waitCtx, cancel := p.waitContext(ctx)
	defer cancel()
	if err = p.run(waitCtx, actions...); err != nil {
		return fmt.Errorf("error input element '%s': %v", loc, err)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc locator.Locator) (string, error) {
	sel, opts, err := p.locate(ctx, loc)
	if err != nil {
		return "", err
	}
	var text string
	waitCtx, cancel := p.waitContext(ctx)
	defer cancel()
	err = p.run(waitCtx, chromedp.Text(sel, &text, opts...))
	return text, err
}

func (p *Page) Attribute(ctx context.Context, loc locator.Locator, name string) (string, error) {
	sel, opts, err := p.locate(ctx, loc)
	if err != nil {
		return "", err
	}
	var value string
	var ok bool
	waitCtx, cancel := p.waitContext(ctx)
	defer cancel()
	err = p.run(waitCtx, chromedp.AttributeValue(sel, name, &value, &ok, opts...))
	return value, err
}

func (p *Page) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	expression, err := scriptExpression(script, args)
	if err != nil {
		return nil, err
	}
	var result any
	err = p.dialogs.Interruptible(func() error {
		return p.run(ctx, chromedp.Evaluate(expression, &result))
	})
	return result, err
}

func (p *Page) Submit(ctx context.Context, loc locator.Locator) error {
	return p.evalOnElement(ctx, loc, true, browser.SubmitScript, nil, nil)
}

func (p *Page) IsSelected(ctx context.Context, loc locator.Locator) (bool, error) {
	var selected bool
	err := p.evalOnElement(ctx, loc, true, browser.SelectedScript, nil, &selected)
	return selected, err
}

func (p *Page) SelectOptions(ctx context.Context, loc locator.Locator, values []string, byLabel bool) error {
	var missing []string
	arg := browser.SelectArg{Values: values, ByLabel: byLabel}
	if err := p.evalOnElement(ctx, loc, true, browser.SelectOptionsScript, arg, &missing); err != nil {
		return err
	}
	if len(missing) > 0 {
		return &browser.OptionNotFoundError{Locator: loc.String(), Values: missing, ByLabel: byLabel}
	}
	return nil
}

func (p *Page) SelectedOptions(ctx context.Context, loc locator.Locator) ([]browser.Option, error) {
	options := make([]browser.Option, 0)
	err := p.evalOnElement(ctx, loc, true, browser.SelectedOptionsScript, nil, &options)
	return options, err
}

func (p *Page) AlertText(_ context.Context) (string, error) {
	message, _, ok := p.dialogs.Current()
	if !ok {
		return "", browser.ErrNoAlert
	}
	return message, nil
}

func (p *Page) HandleAlert(ctx context.Context, accept bool) error {
	if _, _, ok := p.dialogs.Current(); !ok {
		return browser.ErrNoAlert
	}
	if err := p.run(ctx, page.HandleJavaScriptDialog(accept)); err != nil {
		return fmt.Errorf("failed to handle alert: %w", err)
	}
	p.dialogs.Closed()
	return nil
}

// Screenshot captures the whole page as PNG.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

func (p *Page) Cookies(ctx context.Context) ([]browser.Cookie, error) {
	var cookies []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var errGetCookies error
		cookies, errGetCookies = network.GetCookies().Do(ctx)
		return errGetCookies
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get cookies: %w", err)
	}
	result := make([]browser.Cookie, 0, len(cookies))
	for _, c := range cookies {
		result = append(result, fromNetworkCookie(c))
	}
	return result, nil
}

func (p *Page) AddCookie(ctx context.Context, cookie browser.Cookie) error {
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		set := network.SetCookie(cookie.Name, cookie.Value).
			WithSecure(cookie.Secure).
			WithHTTPOnly(cookie.HTTPOnly)
		if cookie.Path != "" {
			set = set.WithPath(cookie.Path)
		}
		if cookie.Domain != "" {
			set = set.WithDomain(cookie.Domain)
		} else {
			var currentURL string
			if errLocation := chromedp.Location(&currentURL).Do(ctx); errLocation != nil {
				return errLocation
			}
			set = set.WithURL(currentURL)
		}
		if !cookie.Expiry.IsZero() {
			expires := cdp.TimeSinceEpoch(cookie.Expiry)
			set = set.WithExpires(&expires)
		}
		return set.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("failed to set cookie: %w", err)
	}
	return nil
}

func (p *Page) DeleteAllCookies(ctx context.Context) error {
	if err := p.run(ctx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear browser cookies: %w", err)
	}
	return nil
}

func (p *Page) SetImplicitWait(d time.Duration) error {
	p.implicitWait = d
	return nil
}

// Close shuts the tab and the browser process down.
func (p *Page) Close() error {
	if p.cancel != nil {
		log.Debug("Cancelling Chromedp browser context...")
		p.cancel()
		p.cancel = nil
		p.ctx = nil
	}
	if p.allocCancel != nil {
		log.Debug("Cancelling Chromedp allocator context...")
		p.allocCancel()
		p.allocCancel = nil
		log.Info("Chromedp allocator context cancelled and browser process shut down.")
	}
	return nil
}

// locate resolves loc to a chromedp query. Without an implicit wait a
// missing element fails right away instead of blocking until the deadline.
func (p *Page) locate(ctx context.Context, loc locator.Locator) (string, []chromedp.QueryOption, error) {
	sel, opts, err := query(loc, false)
	if err != nil {
		return "", nil, err
	}
	if p.implicitWait > 0 {
		return sel, opts, nil
	}
	count, err := p.Count(ctx, loc)
	if err != nil {
		return "", nil, err
	}
	if count == 0 {
		return "", nil, &browser.ElementNotFoundError{Locator: loc.String()}
	}
	return sel, opts, nil
}

// evalOnElement calls script with the element loc points at and arg, and
// decodes the result into out. With wait set the implicit wait applies
// before the element counts as missing.
func (p *Page) evalOnElement(ctx context.Context, loc locator.Locator, wait bool, script string, arg any, out any) error {
	expression, err := elementCall(loc, script, arg)
	if err != nil {
		return err
	}
	if wait && p.implicitWait > 0 {
		sel, opts, errQuery := query(loc, false)
		if errQuery != nil {
			return errQuery
		}
		waitCtx, cancel := p.waitContext(ctx)
		errWait := p.run(waitCtx, chromedp.WaitReady(sel, opts...))
		cancel()
		if errWait != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &browser.ElementNotFoundError{Locator: loc.String()}
		}
	}

	var result elementResult
	if err = p.run(ctx, chromedp.Evaluate(expression, &result)); err != nil {
		return fmt.Errorf("error evaluating script on element '%s': %v", loc, err)
	}
	if !result.Found {
		return &browser.ElementNotFoundError{Locator: loc.String()}
	}
	if out == nil || len(result.Value) == 0 {
		return nil
	}
	return json.Unmarshal(result.Value, out)
}

// waitContext bounds element waits by the implicit wait unless the caller's
// deadline is sooner.
func (p *Page) waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.implicitWait <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < p.implicitWait {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.implicitWait)
}

func fromNetworkCookie(c *network.Cookie) browser.Cookie {
	cookie := browser.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	if !c.Session && c.Expires > 0 {
		sec := int64(c.Expires)
		cookie.Expiry = time.Unix(sec, 0).UTC()
	}
	return cookie
}
