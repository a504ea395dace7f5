package notionsync

import (
	"time"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/jomei/notionapi"
)

// TransactionToNotionProperties converts a ledger transaction to Notion
// properties. The Notion database schema:
// Name (title), Amount (number), Category (select), Note (rich text),
// Date (date), Ledger ID (rich text, used for upserts).
func TransactionToNotionProperties(t domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: t.Item,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: t.Amount,
		},
		"Category": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: t.Category,
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(t.CreatedAt.UTC().Truncate(24 * time.Hour))
					return &d
				}(),
			},
		},
		"Ledger ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: t.ID,
					},
				},
			},
		},
	}

	if t.Note != "" {
		props["Note"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: t.Note,
					},
				},
			},
		}
	}

	return props
}

// extractLedgerID reads the Ledger ID property from a Notion page.
// Returns empty string if not found.
func extractLedgerID(page notionapi.Page) string {
	if prop, ok := page.Properties["Ledger ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
