package main

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	boardRows = 6
	boardCols = 7
	connectN  = 4
)

const (
	statusPlaying  = "playing"
	statusFinished = "finished"
)

// Winner values 1 and 2 are the player numbers; 0 means undecided.
const winnerDraw = 3

var errInvalidColumn = errors.New("invalid column")

// gameBoard cells hold 0 (empty) or the owning player number.
type gameBoard [boardRows][boardCols]int

// Game is a single Connect Four match. All mutable fields are guarded by mu;
// the *Locked methods assume it is held.
type Game struct {
	id        string
	player1   string
	player2   string // empty until matched, and always empty for bot games
	isBotGame bool

	mu           sync.Mutex
	board        gameBoard
	currentTurn  int
	status       string
	winner       int
	turnDeadline time.Time

	// Scheduled continuations, cancelled on finish or disconnect.
	clockGen   uint64
	clockTimer *time.Timer
	botTimer   *time.Timer
}

func newGame(player1, player2 string, isBotGame bool, turnTimeout time.Duration) *Game {
	return &Game{
		id:           uuid.NewString(),
		player1:      player1,
		player2:      player2,
		isBotGame:    isBotGame,
		currentTurn:  1,
		status:       statusPlaying,
		turnDeadline: time.Now().Add(turnTimeout),
	}
}

// playerNumberLocked maps an identity to its slot, or 0 for strangers.
func (g *Game) playerNumberLocked(identity string) int {
	switch {
	case identity == g.player1:
		return 1
	case g.player2 != "" && identity == g.player2:
		return 2
	default:
		return 0
	}
}

func otherPlayer(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}

// dropDiscLocked places a disc in the lowest empty cell of the column and
// returns the row it landed in.
func (g *Game) dropDiscLocked(column, player int) (int, error) {
	if column < 0 || column >= boardCols {
		return -1, errInvalidColumn
	}
	for row := boardRows - 1; row >= 0; row-- {
		if g.board[row][column] == 0 {
			g.board[row][column] = player
			return row, nil
		}
	}
	return -1, errInvalidColumn
}

// checkWinLocked probes every cell owned by player along the four base
// directions, counting consecutive ownership. Origin-agnostic on purpose, so
// the result never depends on which disc was placed last.
func (g *Game) checkWinLocked(player int) bool {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

	for row := 0; row < boardRows; row++ {
		for col := 0; col < boardCols; col++ {
			if g.board[row][col] != player {
				continue
			}

			for _, dir := range dirs {
				count := 1
				for i := 1; i < connectN; i++ {
					nextRow := row + dir[0]*i
					nextCol := col + dir[1]*i
					if nextRow < 0 || nextRow >= boardRows ||
						nextCol < 0 || nextCol >= boardCols ||
						g.board[nextRow][nextCol] != player {
						break
					}
					count++
				}
				if count >= connectN {
					return true
				}
			}
		}
	}
	return false
}

// boardFullLocked only needs the top row, since discs stack bottom-up.
func (g *Game) boardFullLocked() bool {
	for col := 0; col < boardCols; col++ {
		if g.board[0][col] == 0 {
			return false
		}
	}
	return true
}

// botChooseLocked picks uniformly among columns that still have room.
func (g *Game) botChooseLocked() (int, bool) {
	valid := make([]int, 0, boardCols)
	for col := 0; col < boardCols; col++ {
		if g.board[0][col] == 0 {
			valid = append(valid, col)
		}
	}
	if len(valid) == 0 {
		return -1, false
	}
	return valid[rand.IntN(len(valid))], true
}

// gameView is the sanitized per-player projection, and the only game state
// ever sent to a client.
type gameView struct {
	GameID       string    `json:"gameId"`
	Board        gameBoard `json:"board"`
	CurrentTurn  int       `json:"currentTurn"`
	Status       string    `json:"status"`
	OpponentName string    `json:"opponentName"`
	IsBotGame    bool      `json:"isBotGame"`
	TimeLeft     *int      `json:"timeLeft"`
}

// viewLocked projects the game for one player. The turn deadline is only
// revealed to the player whose turn it is.
func (g *Game) viewLocked(forPlayer int) gameView {
	view := gameView{
		GameID:       g.id,
		Board:        g.board,
		CurrentTurn:  g.currentTurn,
		Status:       g.status,
		OpponentName: g.opponentNameLocked(forPlayer),
		IsBotGame:    g.isBotGame,
	}

	if forPlayer == g.currentTurn {
		left := int(math.Ceil(time.Until(g.turnDeadline).Seconds()))
		if left < 0 {
			left = 0
		}
		view.TimeLeft = &left
	}

	return view
}

func (g *Game) opponentNameLocked(forPlayer int) string {
	opponent := g.player2
	if forPlayer == 2 {
		opponent = g.player1
	}
	if opponent == "" {
		return "Bot"
	}
	return opponent
}
