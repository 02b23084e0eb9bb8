package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/devansh3112/product-harmony-sphere/internal/cli"
	"github.com/devansh3112/product-harmony-sphere/internal/palette"
)

// syncWriter serializes writes from the input loop and palette callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// runPaletteLoop reads one line at a time from in. Plain lines replace the
// query; lines starting with ':' are palette commands. After each query change
// it waits up to wait for the palette to settle so output follows input.
func runPaletteLoop(p *palette.Palette, in io.Reader, out io.Writer, wait time.Duration) error {
	settled := make(chan struct{}, 1)
	unsubscribe := p.Subscribe(func(snap palette.Snapshot) {
		if snap.State == palette.Debouncing || snap.Loading() {
			return
		}
		var buf strings.Builder
		cli.WriteSnapshot(&buf, snap)
		_, _ = io.WriteString(out, buf.String())
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	drain := func() {
		select {
		case <-settled:
		default:
		}
	}
	awaitSettled := func() {
		select {
		case <-settled:
		case <-time.After(wait):
			fmt.Fprintln(out, "(still searching...)")
		}
	}

	p.Open()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if !strings.HasPrefix(line, ":") {
			if !p.IsOpen() {
				p.Open()
			}
			drain()
			p.Input(line)
			awaitSettled()
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case ":quit", ":q":
			return nil
		case ":close":
			p.Close()
		case ":open":
			if len(fields) == 1 {
				p.Open()
				continue
			}
			pos, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(out, "invalid result number %q\n", fields[1])
				continue
			}
			_, err = p.Select(pos)
			reportSelection(out, err)
		case ":enter":
			_, err := p.Submit()
			reportSelection(out, err)
		case ":tab":
			drain()
			if completed, ok := p.CompleteCommand(); ok {
				fmt.Fprintf(out, "completed: %s\n", completed)
				awaitSettled()
			} else {
				fmt.Fprintln(out, "nothing to complete")
			}
		case ":use":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: :use N")
				continue
			}
			suggestions := p.Snapshot().Suggestions
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 || n >= len(suggestions) {
				fmt.Fprintf(out, "no suggestion %q\n", fields[1])
				continue
			}
			drain()
			p.ApplySuggestion(suggestions[n])
			awaitSettled()
		default:
			fmt.Fprintf(out, "unknown command %s\n", fields[0])
		}
	}
	return scanner.Err()
}

func reportSelection(out io.Writer, err error) {
	switch {
	case err == nil:
	case errors.Is(err, palette.ErrClosed):
		fmt.Fprintln(out, "palette is closed; type a query or :open")
	case errors.Is(err, palette.ErrNoResult):
		fmt.Fprintf(out, "%v\n", err)
	default:
		fmt.Fprintf(out, "selection failed: %v\n", err)
	}
}
