package game

import "sync"

// FrameBuffer is a RenderTarget that keeps a copy of the most recent frame
// for a consumer on another goroutine, such as the main-thread renderer.
// Older frames are overwritten, never queued.
type FrameBuffer struct {
	mu      sync.Mutex
	latest  Frame
	version uint64
}

// Draw copies f into the buffer, reusing its slices.
func (b *FrameBuffer) Draw(f *Frame) {
	b.mu.Lock()
	copyFrame(&b.latest, f)
	b.version++
	b.mu.Unlock()
}

// CopyTo copies the latest frame into dst if it is newer than seen and
// returns the new version. It returns seen unchanged when nothing new arrived.
func (b *FrameBuffer) CopyTo(dst *Frame, seen uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.version == seen {
		return seen
	}
	copyFrame(dst, &b.latest)
	return b.version
}

// Version returns the number of frames drawn so far.
func (b *FrameBuffer) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

func copyFrame(dst, src *Frame) {
	creatures, food := dst.Creatures[:0], dst.Food[:0]
	*dst = *src
	dst.Creatures = append(creatures, src.Creatures...)
	dst.Food = append(food, src.Food...)
}
