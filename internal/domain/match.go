package domain

// MatchResult is the matcher's verdict for one probe descriptor. A zero
// MatchResult means no roster entry cleared the threshold, which is a normal
// outcome, not an error.
type MatchResult struct {
	Matched    bool     `json:"matched"`
	Identity   Identity `json:"identity,omitempty"`
	Distance   float64  `json:"distance,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// NoMatch returns the "nobody recognized" result.
func NoMatch() MatchResult {
	return MatchResult{}
}

// Matched builds a positive result. Confidence is derived as 1 - distance;
// it is a display value, not a probability.
func Matched(identity Identity, distance float64) MatchResult {
	return MatchResult{
		Matched:    true,
		Identity:   identity,
		Distance:   distance,
		Confidence: 1 - distance,
	}
}
