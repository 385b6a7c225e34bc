package main

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type actionKind int

const (
	actionTare actionKind = iota
	actionReset
	actionLoad
	actionQuit
)

// action is one line typed on stdin.
type action struct {
	kind  actionKind
	grams float64
}

const inputHelp = "commands: t (tare/calibrate), r (reset), w <grams> (set load), q (quit)"

// parseAction decodes a command line. Empty lines yield ok == false.
func parseAction(line string) (a action, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return action{}, false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "t", "tare":
		return action{kind: actionTare}, true, nil
	case "r", "reset":
		return action{kind: actionReset}, true, nil
	case "q", "quit", "exit":
		return action{kind: actionQuit}, true, nil
	case "w", "weight", "load":
		if len(fields) != 2 {
			return action{}, false, errors.New("usage: w <grams>")
		}
		g, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return action{}, false, errors.Wrapf(err, "invalid load %q", fields[1])
		}
		return action{kind: actionLoad, grams: g}, true, nil
	}
	return action{}, false, errors.Errorf("unknown command %q, %s", fields[0], inputHelp)
}

// readActions parses r line by line until EOF or ctx is done. Parse errors
// are passed to onError and reading continues.
func readActions(ctx context.Context, r io.Reader, onError func(error)) <-chan action {
	out := make(chan action)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			a, ok, err := parseAction(scanner.Text())
			if err != nil {
				onError(err)
				continue
			}
			if !ok {
				continue
			}
			select {
			case out <- a:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
