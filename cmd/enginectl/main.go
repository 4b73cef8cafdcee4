// Command enginectl is the text protocol front end: a line-oriented loop
// over stdin/stdout accepting "position", "go", "stop", "ucinewgame", and
// "quit", grounded on the teacher's uci.go command loop and cmd/uci/main.go's
// info-line formatting.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oliverans-student/gooseline/board"
	"github.com/oliverans-student/gooseline/search"
)

func main() {
	searcher := search.NewSearcher(search.DefaultTTSizeMB)
	pos := board.ParseFen(board.Startpos)
	var history []uint64
	history = append(history, pos.Hash())

	var searching bool

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	fmt.Println("id name gooseline")
	fmt.Println("id author oliverans-student")
	fmt.Println("uciok")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "uci":
			fmt.Println("id name gooseline")
			fmt.Println("id author oliverans-student")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			searcher.NewGame()
			pos = board.ParseFen(board.Startpos)
			history = history[:0]
			history = append(history, pos.Hash())
		case "position":
			newPos, newHistory, err := parsePosition(fields)
			if err != nil {
				fmt.Println("info string", err)
				continue
			}
			pos = newPos
			history = newHistory
		case "go":
			if searching {
				continue
			}
			lim := parseGo(fields, pos)
			searchPos := pos
			searchHistory := append([]uint64(nil), history...)
			searching = true
			go func() {
				best := searcher.FindBestMove(&searchPos, searchHistory, lim, func(info search.Info) {
					fmt.Printf("info depth %d score %s nodes %d time %d pv %s\n",
						info.Depth, search.FormatScore(info.Score), info.Nodes,
						info.Time.Milliseconds(), info.PV.String())
				})
				if best == 0 {
					fmt.Println("bestmove 0000")
				} else {
					fmt.Println("bestmove", best.String())
				}
				searching = false
			}()
		case "stop":
			searcher.Stop()
		case "quit":
			return
		default:
			fmt.Println("info string unknown command", fields[0])
		}
	}
}

// parsePosition rebuilds the position and hash history from a "position"
// command's fields: either "startpos" or "fen <fen...>", optionally followed
// by "moves <uci...>".
func parsePosition(fields []string) (board.Board, []uint64, error) {
	if len(fields) < 2 {
		return board.Board{}, nil, fmt.Errorf("malformed position command")
	}

	var pos board.Board
	idx := 2
	switch fields[1] {
	case "startpos":
		pos = board.ParseFen(board.Startpos)
	case "fen":
		fenFields := fields[2:]
		movesAt := len(fenFields)
		for i, f := range fenFields {
			if f == "moves" {
				movesAt = i
				break
			}
		}
		fen := strings.Join(fenFields[:movesAt], " ")
		if fen == "" {
			return board.Board{}, nil, fmt.Errorf("invalid fen position")
		}
		p, err := board.ParseFEN(fen)
		if err != nil {
			return board.Board{}, nil, fmt.Errorf("invalid fen: %w", err)
		}
		pos = *p
		idx = 2 + movesAt
	default:
		return board.Board{}, nil, fmt.Errorf("invalid position subcommand")
	}

	history := []uint64{pos.Hash()}
	if idx < len(fields) && fields[idx] == "moves" {
		for _, moveStr := range fields[idx+1:] {
			mv, err := board.ParseUCIMove(&pos, moveStr)
			if err != nil {
				return board.Board{}, nil, fmt.Errorf("move %s: %w", moveStr, err)
			}
			if mv == 0 {
				continue
			}
			pos.Make(mv)
			history = append(history, pos.Hash())
		}
	}
	return pos, history, nil
}

// parseGo builds search.Limits from a "go" command's time-control, depth, or
// movetime tokens.
func parseGo(fields []string, pos board.Board) search.Limits {
	var lim search.Limits
	lim.Threads = 1

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "infinite":
			lim.Infinite = true
		case "wtime":
			if i+1 < len(fields) {
				lim.WhiteTime = msField(fields[i+1])
				i++
			}
		case "btime":
			if i+1 < len(fields) {
				lim.BlackTime = msField(fields[i+1])
				i++
			}
		case "winc":
			if i+1 < len(fields) {
				lim.WhiteInc = msField(fields[i+1])
				i++
			}
		case "binc":
			if i+1 < len(fields) {
				lim.BlackInc = msField(fields[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(fields) {
				lim.MoveTime = msField(fields[i+1])
				i++
			}
		case "depth":
			if i+1 < len(fields) {
				d, _ := strconv.Atoi(fields[i+1])
				lim.Depth = int8(d)
				i++
			}
		}
	}
	_ = pos
	return lim
}

func msField(s string) time.Duration {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0
	}
	return time.Duration(v) * time.Millisecond
}
