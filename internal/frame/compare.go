// Package frame compares captured screen frames by sparse pixel sampling
package frame

import "time"

// Buffer is an immutable RGBA frame. Pix holds 4 bytes per pixel in
// row-major order; alpha is carried but never compared.
type Buffer struct {
	Width  int
	Height int
	Pix    []byte
}

// readable reports whether the buffer's pixel data covers its dimensions.
func (b *Buffer) readable() bool {
	return b != nil && len(b.Pix) >= b.Width*b.Height*bytesPerPixel
}

// empty reports a zero-area buffer.
func (b *Buffer) empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// DiffResult is the outcome of comparing two frames.
type DiffResult struct {
	ChangeRatio float64
	Timestamp   time.Time
	Significant bool
}

// Comparator computes change ratios between frames. All methods are pure
// and safe for concurrent use on independent buffers.
type Comparator struct {
	SampleStride     int
	ChannelTolerance uint8
	BlankStride      int
	BlankTolerance   uint8
}

// NewComparator returns a comparator with default sampling parameters.
func NewComparator() *Comparator {
	return &Comparator{
		SampleStride:     DefaultSampleStride,
		ChannelTolerance: DefaultChannelTolerance,
		BlankStride:      DefaultBlankStride,
		BlankTolerance:   DefaultBlankTolerance,
	}
}

// Compare samples a regular grid over both frames and returns the fraction
// of sampled positions whose color differs beyond the channel tolerance.
// Dimension mismatches and unreadable pixel data count as a full scene
// change; zero-area buffers degrade to no change.
func (c *Comparator) Compare(a, b *Buffer, threshold float64) DiffResult {
	now := time.Now()

	if a.empty() || b.empty() {
		if a == nil || b == nil {
			return DiffResult{ChangeRatio: 1.0, Timestamp: now, Significant: true}
		}
		return DiffResult{ChangeRatio: 0, Timestamp: now, Significant: false}
	}
	if a.Width != b.Width || a.Height != b.Height {
		return DiffResult{ChangeRatio: 1.0, Timestamp: now, Significant: true}
	}
	if !a.readable() || !b.readable() {
		return DiffResult{ChangeRatio: 1.0, Timestamp: now, Significant: true}
	}

	stride := c.SampleStride
	if stride <= 0 {
		stride = DefaultSampleStride
	}

	total := 0
	differing := 0
	for y := 0; y < a.Height; y += stride {
		row := y * a.Width
		for x := 0; x < a.Width; x += stride {
			idx := (row + x) * bytesPerPixel
			total++
			if channelDiffers(a.Pix[idx], b.Pix[idx], c.ChannelTolerance) ||
				channelDiffers(a.Pix[idx+1], b.Pix[idx+1], c.ChannelTolerance) ||
				channelDiffers(a.Pix[idx+2], b.Pix[idx+2], c.ChannelTolerance) {
				differing++
			}
		}
	}

	if total == 0 {
		return DiffResult{ChangeRatio: 0, Timestamp: now, Significant: false}
	}

	ratio := float64(differing) / float64(total)
	return DiffResult{
		ChangeRatio: ratio,
		Timestamp:   now,
		Significant: ratio >= threshold,
	}
}

// IsBlank reports whether the frame is near-uniform (lock screen, empty
// desktop). It reads the top-left pixel as reference and samples a coarse
// grid; the frame is blank when more than BlankSameFraction of samples sit
// within the blank tolerance of the reference.
func (c *Comparator) IsBlank(f *Buffer) bool {
	if f.empty() || !f.readable() {
		return false
	}

	stride := c.BlankStride
	if stride <= 0 {
		stride = DefaultBlankStride
	}

	refR, refG, refB := f.Pix[0], f.Pix[1], f.Pix[2]

	total := 0
	same := 0
	for y := 0; y < f.Height; y += stride {
		row := y * f.Width
		for x := 0; x < f.Width; x += stride {
			idx := (row + x) * bytesPerPixel
			total++
			if !channelDiffers(f.Pix[idx], refR, c.BlankTolerance) &&
				!channelDiffers(f.Pix[idx+1], refG, c.BlankTolerance) &&
				!channelDiffers(f.Pix[idx+2], refB, c.BlankTolerance) {
				same++
			}
		}
	}

	if total == 0 {
		return false
	}
	return float64(same)/float64(total) > BlankSameFraction
}

// channelDiffers reports whether two channel values differ by more than tol.
func channelDiffers(a, b, tol uint8) bool {
	if a > b {
		return a-b > tol
	}
	return b-a > tol
}
