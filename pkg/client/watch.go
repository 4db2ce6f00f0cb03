package client

import (
	"bufio"
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/fm-tuner/tunerd/pkg/events"
)

// WatchEvents subscribes to the daemon's event stream and calls fn for every
// event until ctx is cancelled or the daemon closes the connection.
func (c *Client) WatchEvents(ctx context.Context, fn func(events.Event)) error {
	req, err := http.NewRequestWithContext(ctx, "GET", "http://unix/events", nil)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create event stream request")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to open event stream")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Errorf("event stream returned %d", resp.StatusCode)
	}

	// Wire format per SSE: "event:" and "data:" lines, a blank line ends one
	// event.
	var name, data string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "" && name != "":
			fn(events.Event{Name: name, Data: []byte(data)})
			name, data = "", ""
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	return scanner.Err()
}
