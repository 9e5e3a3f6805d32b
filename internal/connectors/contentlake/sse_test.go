package contentlake

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		": keepalive",
		"",
		"event: welcome",
		"data: {}",
		"",
		"id: 7",
		"event: mutation",
		"data: {\"a\":",
		"data: 1}",
		"",
		"data: no event name",
		"",
		"event: mutation",
		"data: incomplete",
	}, "\n")

	var got []sseEvent
	err := readEvents(strings.NewReader(stream), func(ev sseEvent) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, sseEvent{Event: "welcome", Data: "{}"}, got[0])
	assert.Equal(t, sseEvent{Event: "mutation", Data: "{\"a\":\n1}", ID: "7"}, got[1])
	assert.Equal(t, sseEvent{Event: "message", Data: "no event name"}, got[2])
}

func TestReadEvents_HandlerErrorStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := readEvents(strings.NewReader("data: 1\n\ndata: 2\n\n"), func(sseEvent) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
