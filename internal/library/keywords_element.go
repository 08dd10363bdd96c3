package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
)

const pollInterval = 200 * time.Millisecond

func (k *Keywords) ClickElement(ctx context.Context, locatorText string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Clicking element '%s'.", loc)
	return b.Click(ctx, loc)
}

func (k *Keywords) InputText(ctx context.Context, locatorText, text string, clear bool) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Typing text '%s' into text field '%s'.", text, loc)
	return b.InputText(ctx, loc, text, clear)
}

func (k *Keywords) GetText(ctx context.Context, locatorText string) (string, error) {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return "", err
	}
	return b.Text(ctx, loc)
}

func (k *Keywords) GetElementAttribute(ctx context.Context, locatorText, attribute string) (string, error) {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return "", err
	}
	return b.Attribute(ctx, loc, attribute)
}

func (k *Keywords) GetElementCount(ctx context.Context, locatorText string) (int, error) {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return 0, err
	}
	return b.Count(ctx, loc)
}

func (k *Keywords) ElementShouldBeVisible(ctx context.Context, locatorText, message string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	visible, err := b.IsVisible(ctx, loc)
	if err != nil {
		return err
	}
	if !visible {
		return assertionf(message, fmt.Sprintf("The element '%s' should be visible, but it is not.", loc))
	}
	log.Infof("Element '%s' is displayed.", loc)
	return nil
}

func (k *Keywords) PageShouldContainElement(ctx context.Context, locatorText, message, limit string) error {
	count, err := k.GetElementCount(ctx, locatorText)
	if err != nil {
		return err
	}
	if limit == "" {
		if count == 0 {
			return assertionf(message, fmt.Sprintf("Page should have contained element '%s' but did not.", locatorText))
		}
		log.Infof("Current page contains element '%s'.", locatorText)
		return nil
	}
	expected, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		return fmt.Errorf("limit must be an integer, got '%s'", limit)
	}
	if count != expected {
		return assertionf(message, fmt.Sprintf("Page should have contained '%d' element(s), but it did contain '%d' element(s).", expected, count))
	}
	log.Infof("Current page contains %d element(s).", count)
	return nil
}

func (k *Keywords) WaitUntilPageContainsElement(ctx context.Context, locatorText, timeout, errorMessage string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	return k.waitUntil(ctx, timeout, errorMessage, "Element '"+locatorText+"' did not appear in <TIMEOUT>.", func(ctx context.Context) (bool, error) {
		count, errCount := b.Count(ctx, loc)
		return count > 0, errCount
	})
}

func (k *Keywords) WaitUntilElementIsVisible(ctx context.Context, locatorText, timeout, errorMessage string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	return k.waitUntil(ctx, timeout, errorMessage, "Element '"+locatorText+"' not visible after <TIMEOUT>.", func(ctx context.Context) (bool, error) {
		return b.IsVisible(ctx, loc)
	})
}

// waitUntil polls condition until it holds or the timeout passes. An empty
// timeout means the library timeout. <TIMEOUT> in the messages is replaced
// with the formatted timeout.
func (k *Keywords) waitUntil(ctx context.Context, timeout, errorMessage, defaultMessage string, condition func(context.Context) (bool, error)) error {
	wait := k.lib.timeout
	if timeout != "" {
		d, err := utils.ParseTimeString(timeout)
		if err != nil {
			return err
		}
		wait = d
	}

	timedOut := func(lastErr error) error {
		message := errorMessage
		if message == "" {
			message = defaultMessage
		}
		message = strings.ReplaceAll(message, "<TIMEOUT>", utils.FormatDuration(wait))
		if lastErr != nil {
			log.Debugf("Last error while waiting: %v", lastErr)
		}
		return &AssertionError{Message: message}
	}

	// a zero timeout still checks once
	if wait <= 0 {
		ok, err := condition(ctx)
		if err == nil && ok {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return timedOut(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	var lastErr error
	for {
		ok, err := condition(waitCtx)
		if err == nil && ok {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-waitCtx.Done():
			return timedOut(lastErr)
		case <-time.After(pollInterval):
		}
	}
}
