package browser

import (
	"fmt"
	"sync"
)

// UnexpectedAlertError is returned when an action is attempted while a
// JavaScript dialog blocks the page.
type UnexpectedAlertError struct {
	Message string
}

func (e *UnexpectedAlertError) Error() string {
	return fmt.Sprintf("unexpected alert open: %s", e.Message)
}

// Dialogs tracks the JavaScript dialog of a page for backends that learn
// about dialogs through events. While a dialog is open the page's actions
// block, so actions that may open one run through Interruptible.
type Dialogs struct {
	mu      sync.Mutex
	open    bool
	message string
	handle  any
	opened  chan struct{}
}

// Opened records a dialog. handle is whatever the backend needs to answer
// it later.
func (d *Dialogs) Opened(message string, handle any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.message = message
	d.handle = handle
	if d.opened != nil {
		close(d.opened)
		d.opened = nil
	}
}

// Closed forgets the open dialog.
func (d *Dialogs) Closed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	d.message = ""
	d.handle = nil
}

// Current returns the open dialog.
func (d *Dialogs) Current() (string, any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.message, d.handle, d.open
}

// Interruptible runs action. It returns the action's result, or nil as soon
// as a dialog opens while the action is still running; the action then
// completes in the background once the dialog is handled. An already open
// dialog fails with UnexpectedAlertError without running action.
func (d *Dialogs) Interruptible(action func() error) error {
	d.mu.Lock()
	if d.open {
		message := d.message
		d.mu.Unlock()
		return &UnexpectedAlertError{Message: message}
	}
	if d.opened == nil {
		d.opened = make(chan struct{})
	}
	opened := d.opened
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- action()
	}()
	select {
	case err := <-done:
		return err
	case <-opened:
		return nil
	}
}
