package members

// Feedback labels for one site's run. The scale is deliberately inverted
// relative to intuition: it measures how much the extractor had to add on top
// of the existing dataset, so finding nothing new means the dataset was
// already complete.
const (
	FeedbackGood    = "GOOD"
	FeedbackAverage = "AVERAGE"
	FeedbackPoor    = "POOR"
)

// Score maps a new-member count to a feedback label: 0 is GOOD, 1-5 AVERAGE,
// more than 5 POOR.
func Score(newMemberCount int) string {
	switch {
	case newMemberCount > 5:
		return FeedbackPoor
	case newMemberCount > 0:
		return FeedbackAverage
	default:
		return FeedbackGood
	}
}
