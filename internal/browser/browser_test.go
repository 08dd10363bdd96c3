package browser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogsInterruptible(t *testing.T) {
	d := &Dialogs{}

	err := d.Interruptible(func() error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")

	release := make(chan struct{})
	finished := make(chan struct{})
	err = d.Interruptible(func() error {
		d.Opened("Are you sure?", 7)
		<-release
		close(finished)
		return nil
	})
	require.NoError(t, err, "returns once the dialog opens")

	message, handle, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, "Are you sure?", message)
	assert.Equal(t, 7, handle)

	ran := false
	err = d.Interruptible(func() error {
		ran = true
		return nil
	})
	var unexpected *UnexpectedAlertError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "Are you sure?", unexpected.Message)
	assert.False(t, ran)

	d.Closed()
	close(release)
	<-finished
	_, _, ok = d.Current()
	assert.False(t, ok)
	assert.NoError(t, d.Interruptible(func() error { return nil }))
}

func TestErrorMessages(t *testing.T) {
	err := &OptionNotFoundError{Locator: "id=country", Values: []string{"xx", "yy"}}
	assert.Equal(t, "list 'id=country' has no options with values 'xx', 'yy'", err.Error())

	err.ByLabel = true
	assert.Equal(t, "list 'id=country' has no options with labels 'xx', 'yy'", err.Error())

	assert.Equal(t, "element with locator 'id=x' not found", (&ElementNotFoundError{Locator: "id=x"}).Error())
}

func TestVisibleScriptUsesComputedStyle(t *testing.T) {
	for _, check := range []string{
		"window.getComputedStyle(n)",
		"s.display === 'none'",
		"parseFloat(s.opacity) === 0",
		"n = n.parentElement",
		"style.visibility === 'hidden'",
		"getBoundingClientRect()",
	} {
		assert.Contains(t, VisibleScript, check)
	}
}
