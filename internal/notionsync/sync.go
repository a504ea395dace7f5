// Package notionsync mirrors the ledger into a Notion database so the
// records can be browsed and annotated outside the bot.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/expensebot/internal/ledger"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/jomei/notionapi"
)

// SyncLedger mirrors all ledger transactions into a Notion database.
// The Ledger ID rich-text property tracks which transaction a page belongs
// to, making the sync idempotent:
//  1. Pages whose Ledger ID is missing or no longer in the ledger are
//     archived.
//  2. Transactions without a page are created; transactions with one are
//     updated in place.
//
// A failing page does not abort the sync; it is logged and skipped.
func SyncLedger(ctx context.Context, store ledger.Store, notionClient NotionService, notionDBID string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Msg("Starting ledger sync to Notion")

	transactions, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("SyncLedger: load ledger: %w", err)
	}

	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions from ledger")

	validIDs := make(map[string]bool)
	for _, t := range transactions {
		validIDs[t.ID] = true
	}

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncLedger: query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Map ledger ID -> existing Notion page ID for upserts.
	pageByLedgerID := make(map[string]string)

	var deleted int
	for _, page := range notionPages {
		ledgerID := extractLedgerID(page)
		if ledgerID != "" && validIDs[ledgerID] {
			pageByLedgerID[ledgerID] = string(page.ID)
			continue
		}

		// Stale: no Ledger ID (from a manual entry or old sync) or the
		// transaction was deleted from the ledger.
		if dryRun {
			log.Info().
				Str("ledger_id", ledgerID).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would archive stale Notion page")
			deleted++
			continue
		}
		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("ledger_id", ledgerID).
				Str("page_id", string(page.ID)).
				Msg("Failed to archive stale Notion page")
			continue
		}
		log.Info().
			Str("ledger_id", ledgerID).
			Str("page_id", string(page.ID)).
			Msg("Archived stale Notion page")
		deleted++
	}

	var created, updated int
	for _, t := range transactions {
		existingPageID := pageByLedgerID[t.ID]

		if dryRun {
			if existingPageID != "" {
				log.Info().
					Str("ledger_id", t.ID).
					Str("page_id", existingPageID).
					Msg("[DRY RUN] Would update Notion page")
				updated++
			} else {
				log.Info().
					Str("ledger_id", t.ID).
					Msg("[DRY RUN] Would create Notion page")
				created++
			}
			continue
		}

		props := TransactionToNotionProperties(t)

		if existingPageID != "" {
			if _, err := notionClient.UpdatePage(ctx, existingPageID, props); err != nil {
				log.Warn().
					Err(err).
					Str("ledger_id", t.ID).
					Str("page_id", existingPageID).
					Msg("Failed to update Notion page")
				continue
			}
			updated++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("ledger_id", t.ID).
				Msg("Failed to create Notion page")
			continue
		}
		log.Info().
			Str("ledger_id", t.ID).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("updated", updated).
		Int("total", len(transactions)).
		Msg("Ledger sync completed")

	return nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
