package main

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ergochat/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/linkurious/gremlin-go/driver"
	"github.com/linkurious/gremlin-go/errors"
)

const replPrompt = "gremlin> "

func runREPL(cmd *cobra.Command) error {
	client, registry, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	err = connect(ctx, client)
	cancel()
	if err != nil {
		return err
	}
	defer client.Close()

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:      replPrompt,
		HistoryFile: historyFile(),
	})
	if err != nil {
		return errors.Wrap(err, "console", "runREPL", "init line editor")
	}
	defer rl.Close()

	pterm.DefaultBox.WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("gremlin-console")).
		Println("connected to " + client.URL() + "\ntype :help for commands, :quit to exit")

	g, gctx := errgroup.WithContext(cmd.Context())
	replDone := make(chan struct{})

	if registry != nil {
		srv := &http.Server{Addr: metricsAddr, Handler: registry.Handler()}
		g.Go(func() error {
			if err := srv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-replDone:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(replDone)
		return repl(client, rl)
	})

	return g.Wait()
}

// repl reads scripts line by line and streams each evaluation to the
// terminal. It returns when the user quits or the connection drops.
func repl(client *driver.Client, rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if err != nil {
			if stderrors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if stderrors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ":quit", ":q", ":exit":
			return nil
		case ":help":
			printHelp()
			continue
		}

		if err := evalLine(client, line); err != nil {
			return err
		}
	}
}

// evalLine runs one script and prints every streamed value. A server
// error is reported and the loop continues; a closed connection ends
// the session.
func evalLine(client *driver.Client, script string) error {
	count := 0
	for r := range client.Stream(script, nil, nil) {
		if r.Err != nil {
			if errors.IsConnectionClosed(r.Err) {
				pterm.Error.Println("connection lost:", r.Err)
				return r.Err
			}
			pterm.Error.Println(r.Err)
			return nil
		}
		pterm.Println("==> " + string(r.Data))
		count++
	}
	if count == 0 {
		pterm.Println(pterm.Gray("==> (no results)"))
	}
	return nil
}

func printHelp() {
	pterm.Println(`:help        show this help
:quit        exit the console (also :q, :exit, Ctrl-D)

Anything else is evaluated as a Gremlin script on the server.`)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gremlin_console_history")
}
