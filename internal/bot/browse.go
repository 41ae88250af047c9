package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bookswap/internal/i18n"
	"bookswap/internal/storage"
)

// fetchListingPage loads one page of available listings for a viewer. The
// viewer's own books are excluded in chat; the read API shows everything.
func (b *Bot) fetchListingPage(ctx context.Context, from *tgbotapi.User, query string, pageNum int) (*storage.BookPage, error) {
	viewer, err := b.ensureUser(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve viewer: %w", err)
	}

	filter := storage.BookFilter{
		Query:        query,
		ExcludeOwner: viewer.ID,
	}
	return b.db.ListAvailableBooks(ctx, pageNum, b.pageSize, filter)
}

// browsePageText renders the /browse page body
func browsePageText(page *storage.BookPage) string {
	var text strings.Builder
	text.WriteString(i18n.Tf("📚 Page %d/%d", page.Page, page.TotalPages))
	writePageItems(&text, page)
	return text.String()
}

// searchPageText renders a search results page body
func searchPageText(query string, page *storage.BookPage) string {
	var text strings.Builder
	text.WriteString(i18n.Tf("🔍 Search results for '%s' - Page %d/%d", query, page.Page, page.TotalPages))
	writePageItems(&text, page)
	return text.String()
}

func writePageItems(text *strings.Builder, page *storage.BookPage) {
	for i := range page.Items {
		text.WriteString(fmt.Sprintf("\n\n#%d\n", i+1))
		text.WriteString(formatBookSummary(&page.Items[i]))
	}
}
