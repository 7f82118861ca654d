// Package frame compares captured screen frames by sparse pixel sampling
package frame

// Frame comparison constants
const (
	// Sampling grid stride for Compare (every Nth row and column)
	DefaultSampleStride = 8

	// Per-channel absolute difference before a sample counts as changed
	DefaultChannelTolerance = 16

	// Coarser sampling grid stride for blank-screen detection
	DefaultBlankStride = 16

	// Per-channel distance to the reference pixel still considered "same"
	DefaultBlankTolerance = 12

	// Fraction of samples matching the reference for a frame to be blank
	BlankSameFraction = 0.95

	// Bytes per pixel in Buffer (RGBA)
	bytesPerPixel = 4
)
