package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"bookswap/internal/i18n"
	"bookswap/internal/models"
	"bookswap/internal/storage"
)

// Callback data prefixes routed in handleCallbackQuery
const (
	cbConfirm = "confirm:" // confirm:commit, confirm:cancel
	cbBrowse  = "browse:"  // browse:page:<n>, browse:contact:<book_id>
	cbSearch  = "search:"  // search:page:<n>, search:contact:<book_id>
	cbManage  = "manage:"  // manage:sold:<book_id>
)

// conditionKeyboard offers the enumerated conditions as reply buttons
// (2 columns), plus a cancel row
func conditionKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var currentRow []tgbotapi.KeyboardButton
	conditions := models.Conditions()
	for i, condition := range conditions {
		currentRow = append(currentRow, tgbotapi.NewKeyboardButton(i18n.T(condition.Label())))
		if len(currentRow) == 2 || i == len(conditions)-1 {
			rows = append(rows, currentRow)
			currentRow = nil
		}
	}
	rows = append(rows, []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(i18n.T("Cancel"))})

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	return keyboard
}

// confirmKeyboard offers the commit/discard branch of the listing flow
func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("✅ Confirm"), cbConfirm+"commit"),
			tgbotapi.NewInlineKeyboardButtonData(i18n.T("✖️ Cancel"), cbConfirm+"cancel"),
		),
	)
}

// listingKeyboard builds one contact button per listing plus pagination,
// using the given callback prefix (browse or search)
func listingKeyboard(page *storage.BookPage, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, book := range page.Items {
		title := truncateLabel(book.Title, 32)
		button := tgbotapi.NewInlineKeyboardButtonData(
			i18n.Tf("Contact: %s", title),
			fmt.Sprintf("%scontact:%d", prefix, book.ID),
		)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{button})
	}

	if page.TotalPages > 1 {
		var nav []tgbotapi.InlineKeyboardButton
		if page.Page > 1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				i18n.T("⬅️ Prev"), fmt.Sprintf("%spage:%d", prefix, page.Page-1)))
		}
		if page.Page < page.TotalPages {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(
				i18n.T("Next ➡️"), fmt.Sprintf("%spage:%d", prefix, page.Page+1)))
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// truncateLabel shortens button text to max characters. Truncation happens
// on rune boundaries; a byte slice could split a multi-byte character and
// Telegram rejects invalid UTF-8 payloads.
func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// manageKeyboard builds a mark-sold button per listing
func manageKeyboard(books []models.Book) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, book := range books {
		button := tgbotapi.NewInlineKeyboardButtonData(
			i18n.Tf("Mark #%d sold", book.ID),
			fmt.Sprintf("%ssold:%d", cbManage, book.ID),
		)
		rows = append(rows, []tgbotapi.InlineKeyboardButton{button})
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
