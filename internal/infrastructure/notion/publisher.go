package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

// richTextLimit is the Notion cap on a single rich text object.
const richTextLimit = 2000

// Publisher files each brief as a page in a Notion database.
type Publisher struct {
	client *notionapi.Client
	dbID   notionapi.DatabaseID
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher bound to one database.
func NewPublisher(token, databaseID string, opts ...notionapi.ClientOption) (*Publisher, error) {
	if token == "" {
		return nil, fmt.Errorf("notion token is required")
	}
	if databaseID == "" {
		return nil, fmt.Errorf("notion database id is required")
	}
	return &Publisher{
		client: notionapi.NewClient(notionapi.Token(token), opts...),
		dbID:   notionapi.DatabaseID(databaseID),
	}, nil
}

// Publish creates a page with Title, Topic, Body, Cost and Date properties.
func (p *Publisher) Publish(ctx context.Context, brief domain.Brief) error {
	title := brief.Editorial.Title
	if title == "" {
		title = brief.Query.Topic
	}
	body := brief.Editorial.Body
	if brief.NoContent {
		body = domain.NoContentText
	}

	generated := brief.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	day := notionapi.Date(generated)

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: p.dbID,
		},
		Properties: notionapi.Properties{
			"Title": notionapi.TitleProperty{
				Type:  notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: truncateText(title, richTextLimit)}}},
			},
			"Topic": notionapi.RichTextProperty{
				Type:     notionapi.PropertyTypeRichText,
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: truncateText(brief.Query.Topic, richTextLimit)}}},
			},
			"Body": notionapi.RichTextProperty{
				Type:     notionapi.PropertyTypeRichText,
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: truncateText(body, richTextLimit)}}},
			},
			"Cost": notionapi.NumberProperty{
				Type:   notionapi.PropertyTypeNumber,
				Number: brief.Usage.TotalCost,
			},
			"Date": notionapi.DateProperty{
				Type: notionapi.PropertyTypeDate,
				Date: &notionapi.DateObject{Start: &day},
			},
		},
	}

	if _, err := p.client.Page.Create(ctx, req); err != nil {
		return fmt.Errorf("create notion page: %w", err)
	}
	return nil
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
