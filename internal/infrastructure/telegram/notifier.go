package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const telegramAPIBase = "https://api.telegram.org"

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")

// Notifier sends briefs to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Publisher = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish posts the brief as a Markdown message.
func (n *Notifier) Publish(ctx context.Context, brief domain.Brief) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatMessage(brief))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatMessage(brief domain.Brief) string {
	var sb strings.Builder
	if brief.Query.Topic != "" {
		sb.WriteString("_" + markdownEscaper.Replace(brief.Query.Topic) + "_\n")
	}
	if brief.NoContent {
		sb.WriteString(domain.NoContentText)
		return sb.String()
	}
	if brief.Editorial.Title != "" {
		sb.WriteString("*" + markdownEscaper.Replace(brief.Editorial.Title) + "*\n\n")
	}
	sb.WriteString(markdownEscaper.Replace(brief.Editorial.Body))
	return sb.String()
}
