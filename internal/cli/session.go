package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/cstaulbee/quickscope"
	"github.com/cstaulbee/quickscope/internal/presentation/tui"
)

// RunSession executes one interactive interview on the terminal.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && !opts.JSON

	if interactive && !opts.Plain {
		tui.PrintBanner()
	}

	engine, closer, err := CreateEngine(opts, logger)
	if err != nil {
		return err
	}
	defer closer()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.Fresh && opts.SessionID != "" {
		_ = engine.DeleteSession(sigCtx, opts.SessionID)
	}

	turn, resumed, err := openSession(sigCtx, engine, opts)
	if err != nil {
		return err
	}
	if resumed && interactive {
		printSystemMessage("Resuming session '%s'.", opts.SessionID)
	}

	render := func(s string) string { return s }
	if interactive && !opts.Plain {
		render = tui.NewRenderer()
	}

	emit := func(t *quickscope.Turn) {
		if opts.JSON {
			line, _ := json.Marshal(map[string]any{
				"session_id": t.SessionID,
				"output":     t.Output,
				"done":       t.Done,
			})
			fmt.Println(string(line))
			return
		}
		if t.Output != "" {
			fmt.Print(render(t.Output))
			if !strings.HasSuffix(t.Output, "\n") {
				fmt.Println()
			}
		}
	}
	emit(turn)

	reader := bufio.NewReader(NewInterruptibleReader(os.Stdin, sigCtx.Done()))
	for !turn.Done {
		if interactive {
			fmt.Print("> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if interactive && sigCtx.Signal() == os.Interrupt {
				fmt.Println("[CTRL+C]")
			}
			return handleExecutionError(err)
		}
		input := strings.TrimSpace(line)
		if interactive && isQuitCommand(input) {
			printSystemMessage("Session '%s' saved.", turn.SessionID)
			return nil
		}

		turn, err = engine.ProcessTurn(sigCtx, turn.SessionID, input)
		if err != nil {
			if turn == nil {
				return err
			}
			// The session survived at its pre-turn stage; show the
			// generic output and keep going.
			logger.Error("turn failed", "session_id", turn.SessionID, "err", err)
		}
		emit(turn)
	}

	if interactive {
		printSystemMessage("Interview complete.")
	}
	return nil
}

// openSession resumes the named session when it exists, otherwise
// starts a new one.
func openSession(ctx context.Context, engine *quickscope.Engine, opts RunOptions) (*quickscope.Turn, bool, error) {
	if opts.SessionID == "" {
		turn, err := engine.StartSession(ctx, opts.FlowID)
		return turn, false, err
	}

	turn, err := engine.ResumeSession(ctx, opts.SessionID)
	if err == nil {
		return turn, true, nil
	}
	if !errors.Is(err, quickscope.ErrSessionNotFound) {
		return nil, false, err
	}

	turn, err = engine.StartSessionWithID(ctx, opts.FlowID, opts.SessionID)
	return turn, false, err
}

func isQuitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
