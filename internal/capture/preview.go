package capture

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview holds the most recent camera frame as JPEG for the settings page
// stream. Frames are only encoded while at least one viewer is watching.
type Preview struct {
	mu       sync.Mutex
	jpeg     []byte
	seq      uint64
	watchers int
	updated  chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{updated: make(chan struct{})}
}

// Watch registers a viewer. The returned func unregisters it.
func (p *Preview) Watch() (release func()) {
	p.mu.Lock()
	p.watchers++
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			p.watchers--
			p.mu.Unlock()
		})
	}
}

// Watching reports whether any viewer is registered.
func (p *Preview) Watching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watchers > 0
}

// Update encodes frame as the latest preview image. It does nothing when
// nobody is watching.
func (p *Preview) Update(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || !p.Watching() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	p.Set(data)
	return nil
}

// Set stores an already encoded JPEG and wakes every waiting viewer.
func (p *Preview) Set(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jpeg = jpeg
	p.seq++
	close(p.updated)
	p.updated = make(chan struct{})
}

// Latest returns the last stored image and its sequence number. seq is 0
// until the first image arrives.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq
}

// Next blocks until an image newer than after is available or ctx is done.
func (p *Preview) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		p.mu.Lock()
		if p.seq > after {
			jpeg, seq := p.jpeg, p.seq
			p.mu.Unlock()
			return jpeg, seq, nil
		}
		wait := p.updated
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}
