package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	name   string
	closed int
	err    error
}

func (f *fakeSession) Close() error {
	f.closed++
	return f.err
}

func TestRegisterAssignsSequentialIndices(t *testing.T) {
	r := New[*fakeSession]()

	k1, err := r.Register(&fakeSession{}, "")
	require.NoError(t, err)
	k2, err := r.Register(&fakeSession{}, "")
	require.NoError(t, err)
	assert.Equal(t, Index(1), k1)
	assert.Equal(t, Index(2), k2)

	require.NoError(t, r.Close(k2))
	k3, err := r.Register(&fakeSession{}, "")
	require.NoError(t, err)
	assert.Equal(t, Index(3), k3, "closed index must not be reused")

	require.NoError(t, r.CloseAll())
	k4, err := r.Register(&fakeSession{}, "")
	require.NoError(t, err)
	assert.Equal(t, Index(4), k4, "close all must not reset the counter")
}

func TestRegisterDuplicateAlias(t *testing.T) {
	r := New[*fakeSession]()

	_, err := r.Register(&fakeSession{}, "a")
	require.NoError(t, err)

	_, err = r.Register(&fakeSession{}, "a")
	var dup *DuplicateAliasError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Alias)
	assert.Equal(t, 1, r.Count())

	require.NoError(t, r.CloseCurrent())
	_, err = r.Register(&fakeSession{}, "a")
	assert.NoError(t, err, "alias is free again once its session is closed")
}

func TestCurrentAndSwitch(t *testing.T) {
	r := New[*fakeSession]()
	s1 := &fakeSession{name: "s1"}
	s2 := &fakeSession{name: "s2"}

	k1, err := r.Register(s1, "")
	require.NoError(t, err)
	_, err = r.Register(s2, "")
	require.NoError(t, err)

	current, ok := r.Current()
	require.True(t, ok)
	assert.Same(t, s2, current)

	switched, err := r.Switch(k1)
	require.NoError(t, err)
	assert.Same(t, s1, switched)

	current, ok = r.Current()
	require.True(t, ok)
	assert.Same(t, s1, current)
}

func TestSwitchUnknown(t *testing.T) {
	r := New[*fakeSession]()

	_, err := r.Switch(Alias("missing"))
	var unknown *UnknownSessionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, Alias("missing"), unknown.Key)

	_, err = r.Switch(Index(1))
	assert.ErrorAs(t, err, &unknown)
}

func TestCloseCurrentWithoutSession(t *testing.T) {
	r := New[*fakeSession]()
	assert.NoError(t, r.CloseCurrent())
	assert.True(t, r.IsEmpty())
}

func TestCloseCurrentDoesNotSelectReplacement(t *testing.T) {
	r := New[*fakeSession]()
	s1 := &fakeSession{}
	s2 := &fakeSession{}
	_, _ = r.Register(s1, "")
	_, _ = r.Register(s2, "")

	require.NoError(t, r.CloseCurrent())
	assert.Equal(t, 1, s2.closed)
	assert.Equal(t, 0, s1.closed)

	_, ok := r.Current()
	assert.False(t, ok)
	_, err := r.MustCurrent()
	assert.ErrorIs(t, err, ErrNoCurrentSession)
	assert.False(t, r.IsEmpty())
}

func TestCloseCurrentReportsTeardownFailure(t *testing.T) {
	r := New[*fakeSession]()
	boom := errors.New("boom")
	s := &fakeSession{err: boom}
	_, _ = r.Register(s, "")

	err := r.CloseCurrent()
	assert.ErrorIs(t, err, boom)
	assert.True(t, r.IsEmpty(), "entry is removed even when teardown fails")

	assert.NoError(t, r.CloseCurrent())
	assert.Equal(t, 1, s.closed)
}

func TestCloseAllCollectsFailures(t *testing.T) {
	r := New[*fakeSession]()
	boom := errors.New("boom")
	s1 := &fakeSession{}
	s2 := &fakeSession{err: boom}
	s3 := &fakeSession{}
	_, _ = r.Register(s1, "")
	k2, _ := r.Register(s2, "")
	_, _ = r.Register(s3, "")

	err := r.CloseAll()
	var teardown *TeardownError
	require.ErrorAs(t, err, &teardown)
	require.Len(t, teardown.Failures, 1)
	assert.Equal(t, k2, teardown.Failures[0].Key)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, 1, s1.closed)
	assert.Equal(t, 1, s2.closed)
	assert.Equal(t, 1, s3.closed)
	assert.True(t, r.IsEmpty())
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestCloseAllTwice(t *testing.T) {
	r := New[*fakeSession]()
	s := &fakeSession{}
	_, _ = r.Register(s, "x")

	require.NoError(t, r.CloseAll())
	require.NoError(t, r.CloseAll())
	assert.Equal(t, 1, s.closed)
}

func TestAliasAndIndexScenario(t *testing.T) {
	r := New[*fakeSession]()
	main := &fakeSession{name: "main"}
	other := &fakeSession{name: "other"}

	mainKey, err := r.Register(main, "main")
	require.NoError(t, err)
	current, _ := r.Current()
	assert.Same(t, main, current)

	otherKey, err := r.Register(other, "")
	require.NoError(t, err)
	assert.Equal(t, Index(1), otherKey)

	_, err = r.Switch(mainKey)
	require.NoError(t, err)
	require.NoError(t, r.Close(mainKey))

	assert.False(t, r.IsEmpty())
	_, ok := r.Current()
	assert.False(t, ok)

	switched, err := r.Switch(Index(1))
	require.NoError(t, err)
	assert.Same(t, other, switched)
}

func TestCloseUnknownKey(t *testing.T) {
	r := New[*fakeSession]()
	var unknown *UnknownSessionError
	assert.ErrorAs(t, r.Close(Index(7)), &unknown)
}

func TestKeysAndResolve(t *testing.T) {
	r := New[*fakeSession]()
	_, _ = r.Register(&fakeSession{}, "")
	_, _ = r.Register(&fakeSession{}, "2")
	_, _ = r.Register(&fakeSession{}, "")

	assert.Equal(t, []Key{Index(1), Alias("2"), Index(2)}, r.Keys())
	assert.Len(t, r.Sessions(), 3)
	assert.Equal(t, 3, r.Count())

	key, ok := r.Resolve("2")
	require.True(t, ok)
	assert.True(t, key.IsAlias(), "live alias wins over index")

	key, ok = r.Resolve("1")
	require.True(t, ok)
	assert.Equal(t, Index(1), key)

	_, ok = r.Resolve("9")
	assert.False(t, ok)
	_, ok = r.Resolve("")
	assert.False(t, ok)

	assert.True(t, r.Contains(Alias("2")))
	assert.True(t, r.Contains(Index(2)))
	assert.False(t, r.Contains(Index(3)))
	assert.False(t, r.Contains(Alias("1")))

	current, ok := r.CurrentKey()
	require.True(t, ok)
	assert.Equal(t, Index(2), current)
}

func TestKeyFormatting(t *testing.T) {
	assert.Equal(t, "main", Alias("main").String())
	assert.Equal(t, "3", Index(3).String())
	assert.Equal(t, 3, Index(3).Value())
	assert.Equal(t, "main", Alias("main").Value())

	_, ok := ParseIndex("0")
	assert.False(t, ok)
	_, ok = ParseIndex("abc")
	assert.False(t, ok)
	key, ok := ParseIndex(" 4 ")
	assert.True(t, ok)
	assert.Equal(t, 4, key.Number())
}

func TestTeardownErrorMessage(t *testing.T) {
	err := &TeardownError{Failures: []KeyError{
		{Key: Index(1), Err: errors.New("gone")},
		{Key: Alias("b"), Err: errors.New("hung")},
	}}
	assert.Equal(t, "closing 2 browser(s) failed: 1: gone; b: hung", err.Error())
}
