package game

// AIStep moves the AI paddle toward targetX by at most AIMaxStep.
// There is no lookahead, which keeps the AI beatable.
func AIStep(aiPosition, targetX float64) float64 {
	step := clamp(targetX-aiPosition, -AIMaxStep, AIMaxStep)
	return ClampPaddle(aiPosition + step)
}

// ClampPaddle limits a paddle center to the playable range.
func ClampPaddle(x float64) float64 {
	return clamp(x, PaddleMin, PaddleMax)
}
