// Package webhook posts messages to a Discord channel webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// MaxContent is Discord's per-message character limit.
const MaxContent = 2000

// ErrStatus is wrapped when the webhook answers with a non-2xx status.
var ErrStatus = errors.New("webhook returned unexpected status")

// Client posts to a single webhook URL, one message at a time.
type Client struct {
	URL     string
	HTTP    *http.Client
	limiter *rate.Limiter
}

// New creates a client allowing rps posts per second.
func New(url string, rps float64) *Client {
	return &Client{
		URL:     url,
		HTTP:    http.DefaultClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type payload struct {
	Content string `json:"content"`
}

// Post sends content, split into as many messages as the limit requires.
func (c *Client) Post(ctx context.Context, content string) error {
	for i, chunk := range Split(content, MaxContent) {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if err := c.send(ctx, chunk); err != nil {
			return fmt.Errorf("posting part %d: %w", i+1, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, content string) error {
	body, err := json.Marshal(payload{Content: content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// Split breaks content into chunks of at most limit characters, cutting at
// line boundaries. A single line longer than limit is cut mid-line. Blank
// lines travel with the line that follows them, so no chunk ends in a
// newline, and joining the chunks with "\n" restores content whenever no
// line had to be cut.
func Split(content string, limit int) []string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return nil
	}

	var (
		chunks  []string
		cur     strings.Builder
		n       int
		lines   int
		pending int
	)
	flush := func() {
		if lines > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n, lines = 0, 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		if line == "" {
			pending++
			continue
		}
		text := strings.Repeat("\n", pending) + line
		pending = 0
		size := utf8.RuneCountInString(text)

		sep := 0
		if lines > 0 {
			sep = 1
		}
		if n+sep+size > limit {
			flush()
			sep = 0
		}
		for size > limit {
			cut := byteOffset(text, limit)
			chunks = append(chunks, text[:cut])
			text = text[cut:]
			size = utf8.RuneCountInString(text)
		}
		if text == "" {
			continue
		}
		if sep > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(text)
		n += sep + size
		lines++
	}
	flush()
	return chunks
}

// byteOffset returns the byte index of the runes-th rune of s.
func byteOffset(s string, runes int) int {
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}
