package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"osrs_tax_columns/internal/app"
	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/config"
	"osrs_tax_columns/internal/hidden"
	"osrs_tax_columns/internal/host"
	"osrs_tax_columns/internal/kvstore"
	"osrs_tax_columns/internal/loop"

	"github.com/rs/zerolog/log"
)

const unhidePrompt = "Unhide all items?"

// openStore opens the durable preference store or exits.
func openStore(ctx context.Context, cfg app.Config) *kvstore.SQLite {
	store, err := kvstore.OpenSQLite(ctx, cfg.StorePath, config.DefaultResilienceConfig)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StorePath).Msg("Failed to open preference store")
	}
	return store
}

// openPage reads the host page from in, or from stdin when in is "-".
func openPage(in, output string, stdin io.Reader) (*host.Page, error) {
	if in != "-" {
		return host.Open(in, output)
	}
	page, err := host.Parse(stdin)
	if err != nil {
		return nil, err
	}
	page.Output = output
	return page, nil
}

func newSession(ctx context.Context, cfg app.Config, store kvstore.Store, confirm loop.ConfirmFunc) *loop.Session {
	hiddenItems := hidden.Load(ctx, store, cfg.StorageKey)
	log.Debug().Int("hidden", hiddenItems.Len()).Msg("Session ready")
	return loop.NewSession(hiddenItems, confirm)
}

// promptConfirm asks on out and reads a y/N answer from in. With assumeYes
// it answers yes without asking.
func promptConfirm(in *bufio.Reader, out io.Writer, assumeYes bool) loop.ConfirmFunc {
	return func(prompt string) bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// parseInteraction reads one interactive command:
//
//	sort margin|profit
//	hide <item name>
//	unhide-all
func parseInteraction(line string) (loop.Interaction, error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "sort":
		col, ok := columns.ParseDerived(arg)
		if !ok {
			return nil, fmt.Errorf("unknown sort column %q (want margin or profit)", arg)
		}
		return loop.HeaderClick{Column: col}, nil
	case "hide":
		if arg == "" {
			return nil, fmt.Errorf("hide needs an item name")
		}
		return loop.HideClick{Item: arg}, nil
	case "unhide-all":
		return loop.UnhideAllClick{}, nil
	case "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command %q", verb)
}

// commandReader turns stdin lines into interactions for the watch loop.
// An unhide-all command is followed by its confirmation line; the answer is
// queued before the click is delivered so the session's Confirm, running on
// the loop goroutine, never reads stdin itself.
type commandReader struct {
	in      *bufio.Reader
	prompt  io.Writer
	answers chan bool
}

func newCommandReader(in io.Reader, prompt io.Writer) *commandReader {
	return &commandReader{
		in:      bufio.NewReader(in),
		prompt:  prompt,
		answers: make(chan bool, 1),
	}
}

// confirm hands out the queued answer; without one it refuses.
func (c *commandReader) confirm(string) bool {
	select {
	case answer := <-c.answers:
		return answer
	default:
		return false
	}
}

// run reads commands until stdin is exhausted or ctx is done.
func (c *commandReader) run(ctx context.Context) <-chan loop.Interaction {
	out := make(chan loop.Interaction)
	go func() {
		defer close(out)
		for {
			line, err := c.in.ReadString('\n')
			ia, perr := parseInteraction(line)
			if perr != nil {
				log.Warn().Err(perr).Msg("Ignoring command")
			}
			if _, ok := ia.(loop.UnhideAllClick); ok {
				answer := promptConfirm(c.in, c.prompt, false)(unhidePrompt)
				select {
				case <-c.answers:
				default:
				}
				c.answers <- answer
			}
			if ia != nil {
				select {
				case out <- ia:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}
