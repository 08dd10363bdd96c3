// Package browser defines the interface the keyword library uses to drive a
// browser. Backends live in the selenium, chrome and playwright subpackages.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/locator"
)

// Cookie is a browser cookie. A zero Expiry means a session cookie.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"httpOnly"`
	Expiry   time.Time `json:"expiry,omitempty"`
}

// Browser is one open browser session. Close is the teardown the session
// registry calls; the rest are forwarded by keywords.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Back(ctx context.Context) error
	Reload(ctx context.Context) error
	Title(ctx context.Context) (string, error)
	Location(ctx context.Context) (string, error)
	Source(ctx context.Context) (string, error)

	Count(ctx context.Context, loc locator.Locator) (int, error)
	IsVisible(ctx context.Context, loc locator.Locator) (bool, error)
	Click(ctx context.Context, loc locator.Locator) error
	InputText(ctx context.Context, loc locator.Locator, text string, clear bool) error
	Text(ctx context.Context, loc locator.Locator) (string, error)
	Attribute(ctx context.Context, loc locator.Locator, name string) (string, error)

	// Submit submits the form containing the element, or the form itself.
	Submit(ctx context.Context, loc locator.Locator) error
	// IsSelected reports whether a checkbox, radio button or option is
	// selected.
	IsSelected(ctx context.Context, loc locator.Locator) (bool, error)
	// SelectOptions selects the options of a select list by value, or by
	// label when byLabel is set. Values matching no option fail with
	// OptionNotFoundError after the others were selected.
	SelectOptions(ctx context.Context, loc locator.Locator, values []string, byLabel bool) error
	SelectedOptions(ctx context.Context, loc locator.Locator) ([]Option, error)

	// AlertText returns the message of the open JavaScript dialog or
	// ErrNoAlert.
	AlertText(ctx context.Context) (string, error)
	// HandleAlert accepts or dismisses the open dialog.
	HandleAlert(ctx context.Context, accept bool) error

	ExecuteScript(ctx context.Context, script string, args ...any) (any, error)
	Screenshot(ctx context.Context) ([]byte, error)

	Cookies(ctx context.Context) ([]Cookie, error)
	AddCookie(ctx context.Context, cookie Cookie) error
	DeleteAllCookies(ctx context.Context) error

	SetImplicitWait(d time.Duration) error
	Close() error
}

// Option is one entry of a select list.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ErrNoAlert is returned by AlertText and HandleAlert when no dialog is open.
var ErrNoAlert = errors.New("no alert is open")

// Opener starts new browser sessions.
type Opener interface {
	Open(ctx context.Context, browserName, url string) (Browser, error)
}

// ElementNotFoundError is returned when a locator matches no element.
type ElementNotFoundError struct {
	Locator string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element with locator '%s' not found", e.Locator)
}

// OptionNotFoundError is returned by SelectOptions for values that match no
// option of the list.
type OptionNotFoundError struct {
	Locator string
	Values  []string
	ByLabel bool
}

func (e *OptionNotFoundError) Error() string {
	kind := "values"
	if e.ByLabel {
		kind = "labels"
	}
	return fmt.Sprintf("list '%s' has no options with %s '%s'", e.Locator, kind, strings.Join(e.Values, "', '"))
}
