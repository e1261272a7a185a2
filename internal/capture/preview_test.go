package capture

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestPreview_SkipsEncodingWithoutViewers(t *testing.T) {
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p := NewPreview()
	require.NoError(t, p.Update(&frame))

	_, seq := p.Latest()
	assert.Zero(t, seq)
}

func TestPreview_EncodesJPEGWhileWatched(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV encoding")
	}

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	p := NewPreview()
	release := p.Watch()
	require.True(t, p.Watching())

	require.NoError(t, p.Update(&frame))
	jpeg, seq := p.Latest()
	assert.Equal(t, uint64(1), seq)
	assert.True(t, bytes.HasPrefix(jpeg, []byte{0xFF, 0xD8}), "JPEG start marker")

	release()
	release()
	assert.False(t, p.Watching())
}

func TestPreview_Next(t *testing.T) {
	p := NewPreview()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan []byte, 1)
	go func() {
		jpeg, _, err := p.Next(ctx, 0)
		if err == nil {
			got <- jpeg
		}
	}()

	p.Set([]byte("one"))

	select {
	case jpeg := <-got:
		assert.Equal(t, []byte("one"), jpeg)
	case <-ctx.Done():
		t.Fatal("Next did not return after Set")
	}

	jpeg, seq, err := p.Next(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), jpeg)
	assert.Equal(t, uint64(1), seq)
}

func TestPreview_NextCancelled(t *testing.T) {
	p := NewPreview()
	p.Set([]byte("old"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, seq, err := p.Next(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(1), seq)
}
