package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// telegramAPI is the slice of *bot.Bot the handlers use. Keeping it narrow
// lets tests drive the conversation engines with a fake transport.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

var _ telegramAPI = (*bot.Bot)(nil)

// Admin panel labels. The reply keyboards send these back verbatim, so menu
// dispatch matches on them.
const (
	labelDownload = "📊 Download Data"
	labelManage   = "❓ Manage Questions"
	labelStats    = "📈 Statistics"

	labelView   = "👀 View Questions"
	labelAdd    = "➕ Add Question"
	labelEdit   = "✏️ Edit Question"
	labelDelete = "🗑️ Delete Question"
	labelBack   = "↩️ Back"
)

// Callback data tokens for the inline edit/delete flows.
const (
	cbEditPrefix    = "edit_"
	cbDeletePrefix  = "delete_"
	cbConfirmDelete = "confirm_delete"
	cbCancelDelete  = "cancel_delete"
	cbCancelEdit    = "cancel_edit"
)

func sendText(ctx context.Context, api telegramAPI, chatID int64, text string) {
	sendMarkup(ctx, api, chatID, text, nil)
}

func sendMarkup(ctx context.Context, api telegramAPI, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
	}
}

func editText(ctx context.Context, api telegramAPI, chatID int64, messageID int, text string, markup models.ReplyMarkup) {
	_, err := api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("error editing message")
	}
}

func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}

func menuKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: labelDownload}, {Text: labelManage}, {Text: labelStats}},
		},
		ResizeKeyboard: true,
	}
}

func manageKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: labelView}, {Text: labelAdd}},
			{{Text: labelEdit}, {Text: labelDelete}},
			{{Text: labelBack}},
		},
		ResizeKeyboard: true,
	}
}

// truncateLabel caps inline button labels at 30 display characters.
func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= 30 {
		return s
	}
	return string(runes[:27]) + "..."
}
