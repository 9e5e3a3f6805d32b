package contentlake

import (
	"bufio"
	"io"
	"strings"
)

// maxEventSize bounds a single server-sent event. Mutation events carry the
// full document body.
const maxEventSize = 16 << 20

// sseEvent is one dispatched server-sent event.
type sseEvent struct {
	Event string
	Data  string
	ID    string
}

// readEvents parses a text/event-stream body and calls handle for each
// event. Comment lines are keepalives and are skipped. It returns handle's
// first error, a read error, or nil at end of stream.
func readEvents(r io.Reader, handle func(sseEvent) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)

	var event sseEvent
	var data []string
	dispatch := func() error {
		if len(data) == 0 && event.Event == "" {
			return nil
		}
		event.Data = strings.Join(data, "\n")
		if event.Event == "" {
			event.Event = "message"
		}
		err := handle(event)
		event, data = sseEvent{}, data[:0]
		return err
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if err := dispatch(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event.Event = value
		case "data":
			data = append(data, value)
		case "id":
			event.ID = value
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	// A final event without a trailing blank line is incomplete and dropped.
	return nil
}
