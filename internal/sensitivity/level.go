// Package sensitivity classifies screen content for privacy filtering
package sensitivity

// Level is an ordered content-sensitivity classification. Blocked content
// must never be persisted beyond a redaction placeholder.
type Level int

const (
	None Level = iota
	Low
	High
	Blocked
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Low:
		return "low"
	case High:
		return "high"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}
