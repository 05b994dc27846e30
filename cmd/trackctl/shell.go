package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"github.com/xtxerr/trackrec/internal/client"
	"golang.org/x/term"
)

func newShellCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactively send samples, one per line.",
		Long: `shell reads lines of whitespace separated numbers ("1.5 2") or raw ` +
			`JSON arrays ("[1.5, 2]") and sends each as one sample. When stdin is ` +
			`not a terminal the lines are read from it without prompting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			s := &shell{ctx: cmd.Context(), client: c, out: cmd.OutOrStdout()}

			if isTerminal(cmd.InOrStdin()) {
				s.interactive()
				return s.err
			}
			return s.batch(cmd.InOrStdin())
		},
	}
}

type shell struct {
	ctx    context.Context
	client *client.Client
	out    io.Writer
	err    error
	done   bool
}

// exec handles one input line. It returns false when the shell should stop.
func (s *shell) exec(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "" || strings.HasPrefix(line, "#"):
		return true
	case line == "quit" || line == "exit":
		return false
	case line == "help":
		fmt.Fprintln(s.out, "X Y     send a sample")
		fmt.Fprintln(s.out, "[X,Y]   send a raw JSON payload")
		fmt.Fprintln(s.out, "stats   show messages sent")
		fmt.Fprintln(s.out, "quit    leave the shell")
		return true
	case line == "stats":
		fmt.Fprintf(s.out, "sent %d to %s\n", s.client.Sent(), s.client.Endpoint())
		return true
	}

	var reply []byte
	var err error
	if strings.HasPrefix(line, "[") {
		reply, err = s.client.SendRaw(s.ctx, []byte(line))
	} else {
		var values []float64
		values, err = parseValues(strings.Fields(line))
		if err != nil {
			// Nothing was sent; the socket is still usable.
			fmt.Fprintln(s.out, "error:", err)
			return true
		}
		err = s.client.Send(s.ctx, values...)
		reply = []byte("ok")
	}
	if err != nil {
		s.err = err
		return false
	}
	fmt.Fprintln(s.out, string(reply))
	return true
}

func (s *shell) batch(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if !s.exec(sc.Text()) {
			return s.err
		}
	}
	return sc.Err()
}

func (s *shell) interactive() {
	p := prompt.New(
		func(in string) {
			if !s.exec(in) {
				s.done = true
			}
		},
		completer,
		prompt.OptionPrefix("trackctl> "),
		prompt.OptionTitle("trackctl shell"),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return s.done }),
	)
	p.Run()
}

var suggestions = []prompt.Suggest{
	{Text: "help", Description: "List shell commands"},
	{Text: "stats", Description: "Show messages sent"},
	{Text: "quit", Description: "Leave the shell"},
}

func completer(d prompt.Document) []prompt.Suggest {
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
