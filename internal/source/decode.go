package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/gitnostr/internal/event"
)

// Decode reads events from r, either as one JSON array or as one JSON event
// per line. Events are returned as read; nothing is validated.
func Decode(r io.Reader) ([]event.Event, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []event.Event{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		out := []event.Event{}
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode event array: %w", err)
		}
		return out, nil
	}

	out := []event.Event{}
	for {
		var ev event.Event
		err := dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode event %d: %w", len(out)+1, err)
		}
		out = append(out, ev)
	}
}

// ReadFile decodes the events stored at path. "-" reads stdin.
func ReadFile(path string) ([]event.Event, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
