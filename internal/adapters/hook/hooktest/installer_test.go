package hooktest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yagt/internal/domain"
)

func TestReplaceDetachesPrevious(t *testing.T) {
	ctx := context.Background()
	in := New()

	first, err := in.Install(ctx, 10, domain.HookDescriptor{Code: "/HA@1000"})
	require.NoError(t, err)
	second, err := in.Install(ctx, 10, domain.HookDescriptor{Code: "/HA@2000"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDetached, first.Status())
	assert.Equal(t, domain.StatusActive, second.Status())

	_, open := <-first.Captures()
	assert.False(t, open)

	require.True(t, in.Push(10, []byte("x"), ""))
	c := <-second.Captures()
	assert.Equal(t, uint64(1), c.Seq)
}

func TestRejectPolicy(t *testing.T) {
	ctx := context.Background()
	in := New()
	in.Reject = true

	_, err := in.Install(ctx, 10, domain.HookDescriptor{Code: "a"})
	require.NoError(t, err)
	_, err = in.Install(ctx, 10, domain.HookDescriptor{Code: "b"})
	assert.ErrorIs(t, err, domain.ErrAlreadyActive)
}

func TestUninstallIdempotent(t *testing.T) {
	ctx := context.Background()
	in := New()
	s, err := in.Install(ctx, 3, domain.HookDescriptor{Code: "a"})
	require.NoError(t, err)

	require.NoError(t, in.Uninstall(ctx, s))
	require.NoError(t, in.Uninstall(ctx, s))
	assert.False(t, in.Push(3, []byte("late"), ""))
	assert.Nil(t, in.Active(3))
}

func TestFailThenUninstall(t *testing.T) {
	ctx := context.Background()
	in := New()
	s, err := in.Install(ctx, 11, domain.HookDescriptor{Code: "HS0@0"})
	require.NoError(t, err)

	s.(*Session).Fail()
	assert.Equal(t, domain.StatusFailed, s.Status())
	_, open := <-s.Captures()
	assert.False(t, open)
	assert.False(t, in.Push(11, []byte("x"), ""))

	require.NoError(t, in.Uninstall(ctx, s))
	assert.Equal(t, domain.StatusDetached, s.Status())
	assert.Nil(t, in.Active(11))
}
