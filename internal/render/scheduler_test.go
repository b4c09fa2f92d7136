package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sized(w int, calls *int32) Func {
	return func() (*image.RGBA, error) {
		atomic.AddInt32(calls, 1)
		return image.NewRGBA(image.Rect(0, 0, w, 1)), nil
	}
}

func TestSchedulerSmallGridImmediate(t *testing.T) {
	s := NewScheduler(time.Hour)
	var calls int32
	s.Trigger(LargeGridCells, sized(1, &calls))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.False(t, s.Pending())

	img, err := s.Latest()
	require.NoError(t, err)
	require.Equal(t, 1, img.Bounds().Dx())
}

func TestSchedulerCoalescesLargeGrid(t *testing.T) {
	s := NewScheduler(time.Hour)
	defer s.Stop()

	var calls int32
	for i := 1; i <= 5; i++ {
		s.Trigger(LargeGridCells+1, sized(i, &calls))
	}
	require.True(t, s.Pending())
	require.Equal(t, int32(0), atomic.LoadInt32(&calls))

	img, err := s.Latest()
	require.NoError(t, err)
	require.Equal(t, 5, img.Bounds().Dx())
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Equal(t, 1, s.Renders())
	require.False(t, s.Pending())
}

func TestSchedulerTimerFires(t *testing.T) {
	s := NewScheduler(5 * time.Millisecond)
	var calls int32
	s.Trigger(LargeGridCells*2, sized(3, &calls))
	require.Eventually(t, func() bool { return s.Renders() == 1 }, time.Second, time.Millisecond)

	img, err := s.Latest()
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())
}

func TestSchedulerSmallTriggerDropsPending(t *testing.T) {
	s := NewScheduler(time.Hour)
	var calls int32
	s.Trigger(LargeGridCells+1, sized(9, &calls))
	s.Trigger(1, sized(2, &calls))

	img, err := s.Latest()
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSchedulerLatestBeforeRender(t *testing.T) {
	img, err := NewScheduler(DefaultDelay).Latest()
	require.NoError(t, err)
	require.Nil(t, img)
}

func TestEncode(t *testing.T) {
	res, err := Encode(image.NewRGBA(image.Rect(0, 0, 7, 3)), 4)
	require.NoError(t, err)
	require.Equal(t, "image/png", res.MimeType)
	require.Equal(t, 7, res.Width)
	require.Equal(t, 3, res.Height)
	require.Equal(t, 4, res.CellSize)

	raw, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 7, 3), decoded.Bounds())
}
