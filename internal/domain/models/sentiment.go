package models

// SentimentLabel is one label/score pair from the classifier's output
// distribution for a single input text.
type SentimentLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentResult is the reduced polarity signal for a batch of texts.
// Score is in [-1, 1]: sign is polarity, magnitude is the classifier's
// confidence on its top label, averaged across the batch. Unavailable is
// set when the classifier call failed; Score stays 0.0 in that case so the
// numeric decision path is identical to genuine neutrality.
type SentimentResult struct {
	Score       float64 `json:"score"`
	Unavailable bool    `json:"unavailable,omitempty"`
}
