package accel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoDevices(raw bool) HostConfig {
	return HostConfig{
		Devices: []HostDevice{
			{Name: "a", Major: 8, Minor: 0, Arch: "sm_80", WarpSize: 32},
			{Name: "b", Major: 9, Minor: 0, Arch: "sm_90", WarpSize: 32},
		},
		RawStreams: raw,
	}
}

func TestHostRuntime_Devices(t *testing.T) {
	rt := NewHostRuntime(twoDevices(false))

	assert.Equal(t, "host", rt.Name())
	n, err := rt.DeviceCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dev, err := rt.CurrentDevice()
	require.NoError(t, err)
	assert.Equal(t, 0, dev)

	require.NoError(t, rt.SetDevice(1))
	dev, err = rt.CurrentDevice()
	require.NoError(t, err)
	assert.Equal(t, 1, dev)

	cap1, err := rt.DeviceCapability(1)
	require.NoError(t, err)
	assert.Equal(t, "9.0", cap1.String())
	assert.Equal(t, "b", cap1.Name)
}

func TestHostRuntime_InvalidIndex(t *testing.T) {
	rt := NewHostRuntime(twoDevices(true))

	var idxErr *DeviceIndexError

	err := rt.SetDevice(2)
	require.ErrorAs(t, err, &idxErr)
	assert.Equal(t, 2, idxErr.Index)
	assert.Equal(t, 2, idxErr.Count)

	_, err = rt.DeviceCapability(-1)
	assert.ErrorAs(t, err, &idxErr)

	_, err = rt.CurrentStream(5)
	assert.ErrorAs(t, err, &idxErr)

	_, err = rt.(RawStreamer).CurrentRawStream(5)
	assert.ErrorAs(t, err, &idxErr)

	assert.ErrorAs(t, rt.Synchronize(3), &idxErr)

	// a failed SetDevice leaves the current device untouched
	dev, err := rt.CurrentDevice()
	require.NoError(t, err)
	assert.Equal(t, 0, dev)
}

func TestHostRuntime_NoDevices(t *testing.T) {
	rt := NewHostRuntime(HostConfig{})
	_, err := rt.CurrentDevice()
	var idxErr *DeviceIndexError
	assert.ErrorAs(t, err, &idxErr)
}

func TestHostRuntime_RawStreams(t *testing.T) {
	_, ok := NewHostRuntime(twoDevices(false)).(RawStreamer)
	assert.False(t, ok)

	rt := NewHostRuntime(twoDevices(true))
	raw, ok := rt.(RawStreamer)
	require.True(t, ok)

	for idx := 0; idx < 2; idx++ {
		h, err := raw.CurrentRawStream(idx)
		require.NoError(t, err)
		s, err := rt.CurrentStream(idx)
		require.NoError(t, err)
		assert.Equal(t, s.Handle(), h)
	}

	h0, _ := raw.CurrentRawStream(0)
	h1, _ := raw.CurrentRawStream(1)
	assert.NotEqual(t, h0, h1)
}

func TestHostRuntime_ConcurrentStreamReads(t *testing.T) {
	rt := NewHostRuntime(twoDevices(true))
	raw := rt.(RawStreamer)

	const readers = 8
	handles := make([]StreamHandle, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := raw.CurrentRawStream(1)
			assert.NoError(t, err)
			handles[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Equal(t, handles[0], h)
	}
}

func TestHostRuntime_Synchronize(t *testing.T) {
	rt := newHostRuntime(twoDevices(false))
	require.NoError(t, rt.Synchronize(1))
	require.NoError(t, rt.Synchronize(1))
	assert.Equal(t, uint64(0), rt.Syncs(0))
	assert.Equal(t, uint64(2), rt.Syncs(1))

	assert.Equal(t, uint64(0), rt.Syncs(-1))
	assert.Equal(t, uint64(0), rt.Syncs(2))
}
