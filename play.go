package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rocketscienceinc/clipgames-backend/internal/client"
	"github.com/rocketscienceinc/clipgames-backend/internal/entity"
	"github.com/rocketscienceinc/clipgames-backend/internal/pkg"
	"github.com/rocketscienceinc/clipgames-backend/internal/rps"
	"github.com/rocketscienceinc/clipgames-backend/internal/syncer"
	"github.com/rocketscienceinc/clipgames-backend/internal/tictactoe"
)

const leaveTimeout = 5 * time.Second

type terminalGame interface {
	refresh(ctx context.Context) error
	handle(ctx context.Context, line string) error
	render()
}

func runPlay(ctx context.Context, logger *slog.Logger, opts *playOptions, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	kind, err := entity.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	api := client.New(opts.server, nil)

	userID := opts.userID
	if userID == "" {
		userID = pkg.GeneratePlayerID()
	}

	id := opts.game
	if id == "" {
		if id, err = api.Create(ctx, kind, opts.room, userID, opts.name); err != nil {
			return err
		}
		fmt.Fprintf(out, "created %s session %s, waiting for an opponent\n", kind, id)
	} else {
		symbol, err := api.Join(ctx, kind, id, userID, opts.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "joined session %s %s\n", id, symbol)
	}

	screen := &screen{out: out}

	var game terminalGame
	switch kind {
	case entity.KindTicTacToe:
		game = &ticTacToeTerminal{view: syncer.NewTicTacToeView(api, id, userID), userID: userID, screen: screen}
	case entity.KindRPS:
		game = &rpsTerminal{view: syncer.NewRPSView(api, id, userID, syncer.WithRevealDelay(opts.revealDelay)), userID: userID, screen: screen}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	terminated := make(chan struct{})
	poller := syncer.NewPoller(logger, opts.interval, game.refresh, func() {
		close(terminated)
	})
	go poller.Run(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	leave := func() error {
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), leaveTimeout)
		defer leaveCancel()

		return api.Leave(leaveCtx, kind, id, userID)
	}

	for {
		select {
		case <-ctx.Done():
			return leave()
		case <-terminated:
			fmt.Fprintln(out, "match terminated")
			return nil
		case line, ok := <-lines:
			if !ok || line == "q" {
				return leave()
			}

			if err = game.handle(ctx, line); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			game.render()
		}
	}
}

// screen prints a frame only when it differs from the previous one.
type screen struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func (s *screen) show(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame == s.last {
		return
	}
	s.last = frame
	fmt.Fprint(s.out, frame)
}

type ticTacToeTerminal struct {
	view   *syncer.TicTacToeView
	userID string
	screen *screen
}

func (that *ticTacToeTerminal) refresh(ctx context.Context) error {
	if err := that.view.Refresh(ctx); err != nil {
		return err
	}
	that.render()
	return nil
}

func (that *ticTacToeTerminal) handle(ctx context.Context, line string) error {
	cell, err := strconv.Atoi(line)
	if err != nil {
		return errors.New("enter a cell 0-8 or q to leave")
	}
	return that.view.Play(ctx, cell)
}

func (that *ticTacToeTerminal) render() {
	game := that.view.State()
	if game == nil {
		return
	}

	var b strings.Builder
	for row := range 3 {
		for col := range 3 {
			cell := row*3 + col
			mark := game.Board[cell]
			if mark == tictactoe.EmptyCell {
				mark = strconv.Itoa(cell)
			}
			b.WriteString(" " + mark + " ")
		}
		b.WriteString("\n")
	}

	symbol := game.SymbolOf(that.userID)
	switch {
	case game.Winner != "":
		fmt.Fprintf(&b, "winner: %s\n", game.Winner)
	case game.IsDraw:
		b.WriteString("draw\n")
	case game.Status == entity.StatusWaiting:
		b.WriteString("waiting for an opponent\n")
	case game.Turn == symbol:
		fmt.Fprintf(&b, "your turn (%s)\n", symbol)
	default:
		fmt.Fprintf(&b, "opponent's turn (%s)\n", game.Turn)
	}

	that.screen.show(b.String())
}

type rpsTerminal struct {
	view   *syncer.RPSView
	userID string
	screen *screen
}

func (that *rpsTerminal) refresh(ctx context.Context) error {
	if err := that.view.Refresh(ctx); err != nil {
		return err
	}
	that.render()
	return nil
}

func (that *rpsTerminal) handle(ctx context.Context, line string) error {
	if line == "n" {
		return that.view.NextRound(ctx)
	}

	choice, err := rps.ParseChoice(line)
	if err != nil {
		return errors.New("enter r, p, s, n for the next round or q to leave")
	}
	return that.view.Choose(ctx, choice)
}

func (that *rpsTerminal) render() {
	game := that.view.Visible()
	if game == nil {
		return
	}

	var b strings.Builder
	for _, player := range game.Players {
		choice := string(player.Choice)
		if player.Choice == rps.None {
			choice = "deciding"
		}
		if player.Choice == rps.Hidden {
			choice = "chosen"
		}
		fmt.Fprintf(&b, "%s: %d (%s)\n", player.Name, player.Score, choice)
	}

	switch {
	case game.Status == entity.StatusWaiting:
		b.WriteString("waiting for an opponent\n")
	case game.Result == rps.Draw:
		b.WriteString("draw, n for the next round\n")
	case game.Result == that.userID:
		b.WriteString("you win the round\n")
	case game.Result != "":
		b.WriteString("you lose the round\n")
	}

	if game.Status == entity.StatusFinished {
		b.WriteString("match over\n")
	}

	that.screen.show(b.String())
}
