// Package capture drives periodic screen and app-metadata sampling
package capture

const (
	// ChangeHashBytes is how much of the encoded image feeds the cheap
	// change-detection hash.
	ChangeHashBytes = 4096

	// MaxHashDistance is the perceptual-hash Hamming distance at or below
	// which two frames count as visually identical, gating text extraction.
	MaxHashDistance = 5

	// MinTextLength is the shortest extracted-text snippet worth attaching
	// to a frame update.
	MinTextLength = 3
)
