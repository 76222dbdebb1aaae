package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const telegramAPI = "https://api.telegram.org"

type Telegram struct {
	apiURL   string
	botToken string
	chatIDs  []string
	client   *http.Client
}

func NewTelegram(botToken string, chatIDs []string) *Telegram {
	return &Telegram{
		apiURL:   telegramAPI,
		botToken: botToken,
		chatIDs:  chatIDs,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := formatMessage(n)

	for _, chatID := range t.chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			return err
		}
	}

	return nil
}

// send retries server errors and rate limits; other failures return at once.
func (t *Telegram) send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)

	body, err := json.Marshal(map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("telegram error: %d", resp.StatusCode))
		default:
			return fmt.Errorf("telegram error: %d", resp.StatusCode)
		}
	})
}

func formatMessage(n Notification) string {
	var labels []string
	for label, count := range n.Run.Distribution {
		labels = append(labels, fmt.Sprintf("%s: %d", strings.TrimPrefix(label, "language-"), count))
	}
	sort.Strings(labels)

	unlabeled := n.Run.Unlabeled
	if n.Report != nil {
		unlabeled = n.Report.Unlabeled
	}

	return fmt.Sprintf(`⚠️ <b>Unlabeled code blocks</b>

<b>Document:</b> %s
<b>Unlabeled:</b> %d
<b>Labeled this run:</b> %d
<b>Languages:</b> %s`,
		html.EscapeString(n.Run.Path),
		unlabeled,
		n.Run.Labeled,
		html.EscapeString(strings.Join(labels, ", ")),
	)
}
