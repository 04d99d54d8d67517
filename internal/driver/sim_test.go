package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimDriverLifecycle(t *testing.T) {
	d := NewSimDriver()
	ctx := t.Context()

	assert.False(t, d.IsLive(ctx))

	_, err := d.ReadPoint(ctx, "a")
	require.Error(t, err, "reads must fail while disconnected")

	require.NoError(t, d.Connect(ctx))
	assert.True(t, d.IsLive(ctx))

	d.SetValue("a", 42)
	v, err := d.ReadPoint(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = d.ReadPoint(ctx, "missing")
	assert.Error(t, err)
}

func TestSimDriverFailureInjection(t *testing.T) {
	d := NewSimDriver()
	ctx := t.Context()
	require.NoError(t, d.Connect(ctx))

	boom := errors.New("io timeout")
	d.SetValue("a", 1)
	d.FailPoint("a", boom)

	_, err := d.ReadPoint(ctx, "a")
	require.ErrorIs(t, err, boom)

	// SetValue clears the scripted failure.
	d.SetValue("a", 2)
	v, err := d.ReadPoint(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSimDriverConnectFailure(t *testing.T) {
	d := NewSimDriver()
	ctx := t.Context()

	d.FailConnect(errors.New("refused"))
	require.Error(t, d.Connect(ctx))
	assert.False(t, d.IsLive(ctx))

	d.FailConnect(nil)
	require.NoError(t, d.Connect(ctx))
	assert.True(t, d.IsLive(ctx))
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Equal(1, 1))
	assert.False(t, Equal(1, 2))
	assert.False(t, Equal(1, 1.0))
	assert.True(t, Equal("on", "on"))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, 0))
}

func TestVersionInfoTracksLiveness(t *testing.T) {
	d := NewSimDriver()
	ctx := t.Context()

	info, err := d.VersionInfo(ctx)
	require.NoError(t, err)
	assert.False(t, info.Connected)
	assert.True(t, info.Simulated)

	require.NoError(t, d.Connect(ctx))
	info, err = d.VersionInfo(ctx)
	require.NoError(t, err)
	assert.True(t, info.Connected)
}
