package game

const (
	DailyChallenge          = "Score 5 points with at least 3 gravity well activations"
	ChallengeMinActivations = 3
)

// EvaluateChallenge reports whether a finished match met the daily challenge:
// the player won and the ball was caught by at least ChallengeMinActivations wells.
func EvaluateChallenge(s Snapshot) bool {
	return s.Status == StatusFinished &&
		s.Winner == SidePlayer &&
		s.Score.Player >= WinningScore &&
		s.WellActivations >= ChallengeMinActivations
}

// OutcomeText is the headline shown once a match is over.
func OutcomeText(s Snapshot) string {
	switch {
	case s.Status != StatusFinished:
		return ""
	case s.Score.Player > s.Score.AI:
		return "You Win!"
	default:
		return "AI Wins!"
	}
}
