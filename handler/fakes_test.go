package handler

import (
	"context"

	"FeedbackBot/model"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// fakeTelegram records every outbound call so tests can assert on what the
// user would have seen.
type fakeTelegram struct {
	messages  []*bot.SendMessageParams
	documents []*bot.SendDocumentParams
	edits     []*bot.EditMessageTextParams
	answered  []string
}

func (f *fakeTelegram) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	return &models.Message{ID: len(f.messages)}, nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	f.documents = append(f.documents, params)
	return &models.Message{ID: len(f.documents)}, nil
}

func (f *fakeTelegram) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.edits = append(f.edits, params)
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeTelegram) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.answered = append(f.answered, params.CallbackQueryID)
	return true, nil
}

func (f *fakeTelegram) lastMessage() *bot.SendMessageParams {
	if len(f.messages) == 0 {
		return nil
	}
	return f.messages[len(f.messages)-1]
}

// fakeQuestions is an in-memory question registry.
type fakeQuestions struct {
	list    []string
	listErr error
}

func (q *fakeQuestions) List(context.Context) ([]string, error) {
	if q.listErr != nil {
		return nil, q.listErr
	}
	return append([]string(nil), q.list...), nil
}

func (q *fakeQuestions) Append(_ context.Context, text string) error {
	q.list = append(q.list, text)
	return nil
}

func (q *fakeQuestions) Replace(_ context.Context, index int, text string) error {
	if index < 0 || index >= len(q.list) {
		return model.ErrQuestionIndex
	}
	q.list[index] = text
	return nil
}

func (q *fakeQuestions) RemoveAt(_ context.Context, index int) (string, error) {
	if index < 0 || index >= len(q.list) {
		return "", model.ErrQuestionIndex
	}
	removed := q.list[index]
	q.list = append(q.list[:index], q.list[index+1:]...)
	return removed, nil
}

// fakeRecords serves a canned submission table.
type fakeRecords struct {
	header []string
	rows   []map[string]string
	err    error
}

func (r *fakeRecords) Records(context.Context) ([]string, []map[string]string, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.header, r.rows, nil
}

// fakeAllowList is an in-memory admin allow-list.
type fakeAllowList struct {
	ids    map[int64]bool
	names  map[string]bool
	addErr error
	adds   int
}

func newFakeAllowList() *fakeAllowList {
	return &fakeAllowList{ids: make(map[int64]bool), names: make(map[string]bool)}
}

func (a *fakeAllowList) IsAdmin(userID int64, username string) bool {
	return a.ids[userID] || a.names[username]
}

func (a *fakeAllowList) Add(userID int64, username string) error {
	if a.addErr != nil {
		return a.addErr
	}
	a.adds++
	a.ids[userID] = true
	if username != "" {
		a.names[username] = true
	}
	return nil
}

// fakeSurveyLog records appended submissions.
type fakeSurveyLog struct {
	has       bool
	hasErr    error
	appendErr error
	appended  []model.Submission
}

func (l *fakeSurveyLog) HasSubmission(context.Context, int64) (bool, error) {
	if l.hasErr != nil {
		return false, l.hasErr
	}
	return l.has, nil
}

func (l *fakeSurveyLog) Append(_ context.Context, sub model.Submission) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.appended = append(l.appended, sub)
	return nil
}

func msgUpdate(chatID, userID int64, username, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			ID:   1,
			From: &models.User{ID: userID, Username: username, FirstName: "Test"},
			Chat: models.Chat{ID: chatID},
			Text: text,
		},
	}
}

func cbUpdate(chatID, userID int64, username, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: models.User{ID: userID, Username: username},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 7, Chat: models.Chat{ID: chatID}},
			},
			Data: data,
		},
	}
}
