package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/linkurious/gremlin-go/driver"
	"github.com/linkurious/gremlin-go/errors"
	"github.com/linkurious/gremlin-go/protocol"
)

var (
	queryBindings string
	queryTimeout  time.Duration
	queryRaw      bool
)

var queryCmd = &cobra.Command{
	Use:   "query <script>",
	Short: "Evaluate a single Gremlin script and print the results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), args[0])
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryBindings, "bindings", "b", "", "script bindings as a JSON object")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 30*time.Second, "overall query timeout")
	queryCmd.Flags().BoolVar(&queryRaw, "raw", false, "print each server frame instead of flattened values")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(ctx context.Context, script string) error {
	var bindings map[string]any
	if queryBindings != "" {
		if err := json.Unmarshal([]byte(queryBindings), &bindings); err != nil {
			return errors.Wrap(err, "console", "runQuery", "parse bindings")
		}
	}

	client, _, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := connect(ctx, client); err != nil {
		return err
	}
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		if queryRaw {
			done <- printFrames(client.MessageStream(script, bindings, nil))
			return
		}
		done <- printResults(client.Stream(script, bindings, nil))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func printResults(results <-chan driver.Result) error {
	count := 0
	for r := range results {
		if r.Err != nil {
			return r.Err
		}
		fmt.Println(string(r.Data))
		count++
	}
	pterm.Success.Printfln("%d result(s)", count)
	return nil
}

func printFrames(frames <-chan driver.Frame) error {
	for f := range frames {
		if f.Err != nil {
			return f.Err
		}
		printFrame(f.Response)
	}
	return nil
}

func printFrame(resp *protocol.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	fmt.Println(string(raw))
}
