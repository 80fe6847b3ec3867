package handler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"FeedbackBot/model"
	"FeedbackBot/repo"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type questionEditor interface {
	List(ctx context.Context) ([]string, error)
	Append(ctx context.Context, text string) error
	Replace(ctx context.Context, index int, text string) error
	RemoveAt(ctx context.Context, index int) (string, error)
}

type submissionSource interface {
	Records(ctx context.Context) ([]string, []map[string]string, error)
}

type allowList interface {
	IsAdmin(userID int64, username string) bool
	Add(userID int64, username string) error
}

// AdminBotHandler runs the admin console conversation: password
// authentication, data export, statistics, and question management.
type AdminBotHandler struct {
	questions questionEditor
	records   submissionSource
	admins    allowList
	password  string

	mu       sync.Mutex
	sessions map[int64]model.AdminState
}

func NewAdminBotHandler(questions questionEditor, records submissionSource, admins allowList, password string) *AdminBotHandler {
	return &AdminBotHandler{
		questions: questions,
		records:   records,
		admins:    admins,
		password:  password,
		sessions:  make(map[int64]model.AdminState),
	}
}

// Handler is the bot's default update handler.
func (h *AdminBotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h *AdminBotHandler) handle(ctx context.Context, api telegramAPI, update *models.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, api, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	user := update.Message.From
	text := update.Message.Text

	switch text {
	case "/start":
		sendText(ctx, api, chatID,
			"👋 Welcome!\n\n"+
				"This is the admin bot. It manages collected survey data and the question list.\n\n"+
				"Use /login to get started.")
		return
	case "/cancel":
		h.clearSession(chatID)
		sendMarkup(ctx, api, chatID, "❌ Operation cancelled.\n\nUse /login to start again.", removeKeyboard())
		return
	case "/login":
		if h.admins.IsAdmin(user.ID, user.Username) {
			h.setSession(chatID, model.Menu{})
			h.showAdminPanel(ctx, api, chatID)
			return
		}
		h.setSession(chatID, model.Authenticating{})
		sendText(ctx, api, chatID, "🔐 Please enter the admin password.")
		return
	}

	state, ok := h.session(chatID)
	if !ok {
		sendText(ctx, api, chatID, "Use /login to access the admin panel.")
		return
	}

	// Authorization is re-checked on every step, not only at entry: a user
	// can only hold a non-authenticating state while allow-listed.
	if _, authenticating := state.(model.Authenticating); !authenticating {
		if !h.admins.IsAdmin(user.ID, user.Username) {
			h.setSession(chatID, model.Authenticating{})
			sendText(ctx, api, chatID, "❌ You are not an admin!\n\n🔐 Please enter the admin password.")
			return
		}
	}

	switch st := state.(type) {
	case model.Authenticating:
		h.authenticate(ctx, api, chatID, user, text)
	case model.Menu:
		h.adminMenu(ctx, api, chatID, text)
	case model.EditingQuestions:
		h.editQuestions(ctx, api, chatID, text)
	case model.AwaitingQuestionText:
		h.applyQuestionText(ctx, api, chatID, st, text)
	}
}

func (h *AdminBotHandler) authenticate(ctx context.Context, api telegramAPI, chatID int64, user *models.User, attempt string) {
	if attempt != h.password {
		sendText(ctx, api, chatID, "❌ Wrong password!\n\nPlease try again or contact an admin.")
		return
	}

	if err := h.admins.Add(user.ID, user.Username); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("error saving admin user")
	}
	sendText(ctx, api, chatID, "✅ Welcome, new admin!\n\nYou can now use the admin panel.")
	h.setSession(chatID, model.Menu{})
	h.showAdminPanel(ctx, api, chatID)
}

func (h *AdminBotHandler) showAdminPanel(ctx context.Context, api telegramAPI, chatID int64) {
	sendMarkup(ctx, api, chatID, "🔧 Admin panel\n\nPick one of the options below:", menuKeyboard())
}

func (h *AdminBotHandler) showManageMenu(ctx context.Context, api telegramAPI, chatID int64) {
	sendMarkup(ctx, api, chatID, "❓ Question management\n\nPick the change you want to make:", manageKeyboard())
}

func (h *AdminBotHandler) adminMenu(ctx context.Context, api telegramAPI, chatID int64, text string) {
	switch text {
	case labelDownload:
		h.export(ctx, api, chatID)
	case labelManage:
		h.setSession(chatID, model.EditingQuestions{PendingDelete: model.NoPendingDelete})
		h.showManageMenu(ctx, api, chatID)
	case labelStats:
		h.statistics(ctx, api, chatID)
	default:
		h.showAdminPanel(ctx, api, chatID)
	}
}

// export sends the submission log as an xlsx document. The workbook is
// staged in a temp file that is removed on every exit path.
func (h *AdminBotHandler) export(ctx context.Context, api telegramAPI, chatID int64) {
	header, rows, err := h.records.Records(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error fetching submissions for export")
		sendText(ctx, api, chatID, "❌ No data available right now!")
		return
	}

	result, err := repo.BuildWorkbook(header, rows)
	if err != nil {
		log.Error().Err(err).Msg("error building export workbook")
		sendText(ctx, api, chatID, "❌ No data available right now!")
		return
	}
	if result == nil {
		sendText(ctx, api, chatID, "❌ No data available right now!")
		return
	}

	path := filepath.Join(os.TempDir(), result.Filename)
	if err := os.WriteFile(path, result.Data, 0o600); err != nil {
		log.Error().Err(err).Msg("error writing export file")
		sendText(ctx, api, chatID, "❌ No data available right now!")
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not delete temp export file")
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Msg("error opening export file")
		sendText(ctx, api, chatID, "❌ No data available right now!")
		return
	}
	defer f.Close()

	_, err = api.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: result.Filename, Data: f},
		Caption:  "📊 Collected survey data",
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("error sending export document")
	}
}

// statistics reports the submission count and the mean of every rating
// column. A column whose values do not all parse as numbers is skipped.
func (h *AdminBotHandler) statistics(ctx context.Context, api telegramAPI, chatID int64) {
	header, rows, err := h.records.Records(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error fetching submissions for statistics")
		sendText(ctx, api, chatID, "❌ No data has been collected yet!")
		return
	}
	if len(rows) == 0 {
		sendText(ctx, api, chatID, "❌ No data has been collected yet!")
		return
	}

	questions, err := h.questions.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error loading questions for statistics")
		questions = nil
	}

	columns := make(map[string]bool, len(header))
	for _, name := range header {
		columns[name] = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Data statistics:\n\n")
	fmt.Fprintf(&sb, "📝 Total submissions: %d\n\n", len(rows))

	for i, q := range questions {
		col := "Q" + strconv.Itoa(i+1)
		if !columns[col] {
			continue
		}
		mean, ok := columnMean(rows, col)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%d. %s\n   ⭐ Average rating: %.2f/5\n\n", i+1, q, mean)
	}

	sendText(ctx, api, chatID, sb.String())
}

func columnMean(rows []map[string]string, col string) (float64, bool) {
	var sum float64
	for _, row := range rows {
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			return 0, false
		}
		sum += v
	}
	return sum / float64(len(rows)), true
}

func (h *AdminBotHandler) editQuestions(ctx context.Context, api telegramAPI, chatID int64, text string) {
	switch text {
	case labelView:
		questions := h.listQuestions(ctx)
		if len(questions) == 0 {
			sendText(ctx, api, chatID, "❌ No questions found!")
			return
		}
		var sb strings.Builder
		sb.WriteString("📋 All questions:\n\n")
		for i, q := range questions {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
		}
		sendText(ctx, api, chatID, sb.String())

	case labelAdd:
		h.setSession(chatID, model.AwaitingQuestionText{Mode: model.EditModeAdd})
		sendMarkup(ctx, api, chatID, "➕ Add a new question\n\nPlease enter the question text:", removeKeyboard())

	case labelEdit:
		questions := h.listQuestions(ctx)
		if len(questions) == 0 {
			sendText(ctx, api, chatID, "❌ No questions found!")
			return
		}
		markup := selectionKeyboard(questions, cbEditPrefix, cbCancelEdit)
		sendMarkup(ctx, api, chatID, "✏️ Edit a question\n\nPick the question you want to change:", markup)

	case labelDelete:
		questions := h.listQuestions(ctx)
		if len(questions) == 0 {
			sendText(ctx, api, chatID, "❌ No questions found!")
			return
		}
		markup := selectionKeyboard(questions, cbDeletePrefix, cbCancelDelete)
		sendMarkup(ctx, api, chatID, "🗑️ Delete a question\n\nPick the question you want to remove:", markup)

	case labelBack:
		h.setSession(chatID, model.Menu{})
		h.showAdminPanel(ctx, api, chatID)

	default:
		sendText(ctx, api, chatID, "❗ Unknown option.")
	}
}

func selectionKeyboard(questions []string, prefix, cancelData string) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for i, q := range questions {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("%d. %s", i+1, truncateLabel(q)),
			CallbackData: prefix + strconv.Itoa(i),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{
		Text:         "❌ Cancel",
		CallbackData: cancelData,
	}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (h *AdminBotHandler) handleCallback(ctx context.Context, api telegramAPI, cq *models.CallbackQuery) {
	if _, err := api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.Error().Err(err).Msg("error answering callback query")
	}
	msg := cq.Message.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	if !h.admins.IsAdmin(cq.From.ID, cq.From.Username) {
		h.setSession(chatID, model.Authenticating{})
		sendText(ctx, api, chatID, "❌ You are not an admin!\n\n🔐 Please enter the admin password.")
		return
	}

	data := cq.Data
	switch {
	case strings.HasPrefix(data, cbEditPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(data, cbEditPrefix))
		if err != nil {
			log.Error().Err(err).Str("data", data).Msg("error parsing edit callback index")
			return
		}
		questions := h.listQuestions(ctx)
		if index < 0 || index >= len(questions) {
			editText(ctx, api, chatID, msg.ID, "❌ Invalid question data!", nil)
			h.returnToManageMenu(ctx, api, chatID)
			return
		}
		h.setSession(chatID, model.AwaitingQuestionText{Mode: model.EditModeReplace, Index: index})
		editText(ctx, api, chatID, msg.ID, fmt.Sprintf(
			"✏️ Edit question #%d\n\nCurrent text: %s\n\nPlease enter the new question text:",
			index+1, questions[index]), nil)

	case strings.HasPrefix(data, cbDeletePrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			log.Error().Err(err).Str("data", data).Msg("error parsing delete callback index")
			return
		}
		questions := h.listQuestions(ctx)
		if index < 0 || index >= len(questions) {
			editText(ctx, api, chatID, msg.ID, "❌ Invalid question data!", nil)
			h.returnToManageMenu(ctx, api, chatID)
			return
		}
		h.setSession(chatID, model.EditingQuestions{PendingDelete: index})
		editText(ctx, api, chatID, msg.ID, fmt.Sprintf(
			"🗑️ Delete question\n\nAre you sure you want to delete this question?\n\n%s",
			questions[index]), confirmDeleteKeyboard())

	case data == cbConfirmDelete:
		h.confirmDelete(ctx, api, chatID, msg.ID)

	case data == cbCancelDelete, data == cbCancelEdit:
		h.setSession(chatID, model.EditingQuestions{PendingDelete: model.NoPendingDelete})
		editText(ctx, api, chatID, msg.ID, "❌ Operation aborted.", nil)
		h.returnToManageMenu(ctx, api, chatID)
	}
}

func confirmDeleteKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{{Text: "✅ Yes, delete", CallbackData: cbConfirmDelete}},
		{{Text: "❌ No, keep it", CallbackData: cbCancelDelete}},
	}}
}

func (h *AdminBotHandler) confirmDelete(ctx context.Context, api telegramAPI, chatID int64, messageID int) {
	state, _ := h.session(chatID)
	editing, ok := state.(model.EditingQuestions)
	if !ok || editing.PendingDelete == model.NoPendingDelete {
		editText(ctx, api, chatID, messageID, "❌ Invalid question data!", nil)
		h.returnToManageMenu(ctx, api, chatID)
		return
	}

	// The list may have shrunk since the confirmation prompt was rendered;
	// RemoveAt re-validates against the current list.
	removed, err := h.questions.RemoveAt(ctx, editing.PendingDelete)
	switch {
	case errors.Is(err, model.ErrQuestionIndex):
		editText(ctx, api, chatID, messageID, "❌ Invalid question data!", nil)
	case err != nil:
		log.Error().Err(err).Int("index", editing.PendingDelete).Msg("error deleting question")
		editText(ctx, api, chatID, messageID, "❌ Something went wrong deleting the question!", nil)
	default:
		editText(ctx, api, chatID, messageID, fmt.Sprintf("✅ Question deleted:\n\n%s", removed), nil)
	}
	h.returnToManageMenu(ctx, api, chatID)
}

func (h *AdminBotHandler) applyQuestionText(ctx context.Context, api telegramAPI, chatID int64, st model.AwaitingQuestionText, text string) {
	switch st.Mode {
	case model.EditModeAdd:
		if err := h.questions.Append(ctx, text); err != nil {
			log.Error().Err(err).Msg("error adding question")
			sendText(ctx, api, chatID, "❌ Something went wrong adding the question!")
		} else {
			sendText(ctx, api, chatID, "✅ New question added!")
		}

	case model.EditModeReplace:
		err := h.questions.Replace(ctx, st.Index, text)
		switch {
		case errors.Is(err, model.ErrQuestionIndex):
			sendText(ctx, api, chatID, "❌ Invalid question data!")
		case err != nil:
			log.Error().Err(err).Int("index", st.Index).Msg("error replacing question")
			sendText(ctx, api, chatID, "❌ Something went wrong changing the question!")
		default:
			sendText(ctx, api, chatID, fmt.Sprintf("✅ Question #%d updated to:\n\n%s", st.Index+1, text))
		}
	}

	h.returnToManageMenu(ctx, api, chatID)
}

func (h *AdminBotHandler) returnToManageMenu(ctx context.Context, api telegramAPI, chatID int64) {
	h.setSession(chatID, model.EditingQuestions{PendingDelete: model.NoPendingDelete})
	h.showManageMenu(ctx, api, chatID)
}

func (h *AdminBotHandler) listQuestions(ctx context.Context) []string {
	questions, err := h.questions.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error loading questions")
		return nil
	}
	return questions
}

func (h *AdminBotHandler) session(chatID int64) (model.AdminState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.sessions[chatID]
	return state, ok
}

func (h *AdminBotHandler) setSession(chatID int64, state model.AdminState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[chatID] = state
}

func (h *AdminBotHandler) clearSession(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, chatID)
}
