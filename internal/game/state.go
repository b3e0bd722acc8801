package game

// GameStatus represents where a match is in its lifecycle
type GameStatus string

const (
	StatusNotStarted GameStatus = "NOT_STARTED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinished   GameStatus = "FINISHED"
)

// Side identifies one of the two paddles.
type Side string

const (
	SidePlayer Side = "player"
	SideAI     Side = "ai"
)
