package frame

import (
	"math/rand"
	"testing"
)

// makeBuffer creates a solid-color RGBA buffer.
func makeBuffer(w, h int, r, g, b uint8) *Buffer {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = 255
	}
	return &Buffer{Width: w, Height: h, Pix: pix}
}

// paintRegion overwrites a rectangular region with a color.
func paintRegion(buf *Buffer, x0, y0, x1, y1 int, r, g, b uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			idx := (y*buf.Width + x) * 4
			buf.Pix[idx] = r
			buf.Pix[idx+1] = g
			buf.Pix[idx+2] = b
		}
	}
}

func TestCompareIdenticalFrames(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(128, 128, 100, 150, 200)
	b := makeBuffer(128, 128, 100, 150, 200)

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 0 {
		t.Errorf("ChangeRatio = %f, want 0", d.ChangeRatio)
	}
	if d.Significant {
		t.Error("identical frames should not be significant")
	}
}

func TestCompareSameBuffer(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(64, 64, 10, 20, 30)

	if d := c.Compare(a, a, 0.01); d.ChangeRatio != 0 {
		t.Errorf("ChangeRatio = %f, want 0", d.ChangeRatio)
	}
}

func TestCompareDimensionMismatch(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(64, 64, 0, 0, 0)
	b := makeBuffer(128, 64, 0, 0, 0)

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 1.0 {
		t.Errorf("ChangeRatio = %f, want 1.0", d.ChangeRatio)
	}
	if !d.Significant {
		t.Error("dimension mismatch should be significant")
	}
}

func TestCompareNilBuffer(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(64, 64, 0, 0, 0)

	d := c.Compare(a, nil, 0.05)
	if d.ChangeRatio != 1.0 || !d.Significant {
		t.Errorf("nil frame: ratio = %f significant = %v, want full change", d.ChangeRatio, d.Significant)
	}
}

func TestCompareMalformedPixels(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(64, 64, 0, 0, 0)
	b := &Buffer{Width: 64, Height: 64, Pix: make([]byte, 16)}

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 1.0 || !d.Significant {
		t.Error("truncated pixel data should count as full change")
	}
}

func TestCompareZeroAreaBuffer(t *testing.T) {
	c := NewComparator()
	a := &Buffer{Width: 0, Height: 0}
	b := &Buffer{Width: 0, Height: 0}

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 0 || d.Significant {
		t.Error("zero-area buffers should degrade to no change")
	}
}

func TestCompareFullChange(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(128, 128, 0, 0, 0)
	b := makeBuffer(128, 128, 255, 255, 255)

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 1.0 {
		t.Errorf("ChangeRatio = %f, want 1.0", d.ChangeRatio)
	}
	if !d.Significant {
		t.Error("fully changed frame should be significant")
	}
}

func TestComparePartialChange(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(128, 128, 0, 0, 0)
	b := makeBuffer(128, 128, 0, 0, 0)
	// Repaint the top half: half the sampled positions should differ.
	paintRegion(b, 0, 0, 128, 64, 255, 255, 255)

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio < 0.4 || d.ChangeRatio > 0.6 {
		t.Errorf("ChangeRatio = %f, want ~0.5", d.ChangeRatio)
	}
	if !d.Significant {
		t.Error("half-changed frame should exceed a 0.05 threshold")
	}
}

func TestCompareBelowChannelTolerance(t *testing.T) {
	c := NewComparator()
	a := makeBuffer(64, 64, 100, 100, 100)
	b := makeBuffer(64, 64, 105, 105, 105)

	d := c.Compare(a, b, 0.05)
	if d.ChangeRatio != 0 {
		t.Errorf("sub-tolerance shift: ChangeRatio = %f, want 0", d.ChangeRatio)
	}
}

func TestCompareRatioBounds(t *testing.T) {
	c := NewComparator()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		a := makeBuffer(96, 96, 0, 0, 0)
		b := makeBuffer(96, 96, 0, 0, 0)
		for j := range b.Pix {
			if j%4 != 3 {
				b.Pix[j] = byte(rng.Intn(256))
			}
		}

		d := c.Compare(a, b, 0.05)
		if d.ChangeRatio < 0 || d.ChangeRatio > 1 {
			t.Fatalf("ChangeRatio = %f, out of [0,1]", d.ChangeRatio)
		}
	}
}

func TestIsBlankUniform(t *testing.T) {
	c := NewComparator()
	for _, shade := range []uint8{0, 128, 255} {
		if !c.IsBlank(makeBuffer(128, 128, shade, shade, shade)) {
			t.Errorf("uniform buffer (shade %d) should be blank", shade)
		}
	}
}

func TestIsBlankMixedContent(t *testing.T) {
	c := NewComparator()
	buf := makeBuffer(128, 128, 20, 20, 20)
	// Paint a large bright region so well over 5% of samples diverge.
	paintRegion(buf, 0, 32, 128, 128, 240, 240, 240)

	if c.IsBlank(buf) {
		t.Error("mixed-content buffer should not be blank")
	}
}

func TestIsBlankNearUniform(t *testing.T) {
	c := NewComparator()
	buf := makeBuffer(128, 128, 50, 50, 50)
	// A sliver of different content that falls between sample rows.
	paintRegion(buf, 0, 126, 128, 128, 255, 0, 0)

	if !c.IsBlank(buf) {
		t.Error("near-uniform buffer should still be blank")
	}
}

func TestIsBlankDegenerate(t *testing.T) {
	c := NewComparator()
	if c.IsBlank(nil) {
		t.Error("nil buffer should not be blank")
	}
	if c.IsBlank(&Buffer{Width: 0, Height: 0}) {
		t.Error("zero-area buffer should not be blank")
	}
	if c.IsBlank(&Buffer{Width: 64, Height: 64, Pix: []byte{1, 2}}) {
		t.Error("unreadable buffer should not be blank")
	}
}
