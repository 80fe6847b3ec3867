package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"FeedbackBot/model"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// ratingEmojis is the survey's rating alphabet, worst to best. Position in
// the slice + 1 is the stored value.
var ratingEmojis = []string{"😠", "😞", "😐", "🙂", "😄"}

type questionLister interface {
	List(ctx context.Context) ([]string, error)
}

type surveyLog interface {
	HasSubmission(ctx context.Context, userID int64) (bool, error)
	Append(ctx context.Context, sub model.Submission) error
}

// SurveyBotHandler runs the survey intake conversation: name, phone, then
// one emoji rating per question, ending in a single submission row.
type SurveyBotHandler struct {
	questions questionLister
	log       surveyLog

	mu       sync.Mutex
	sessions map[int64]model.SurveyState
}

func NewSurveyBotHandler(questions questionLister, submissions surveyLog) *SurveyBotHandler {
	return &SurveyBotHandler{
		questions: questions,
		log:       submissions,
		sessions:  make(map[int64]model.SurveyState),
	}
}

// Handler is the bot's default update handler.
func (s *SurveyBotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	s.handle(ctx, b, update)
}

func (s *SurveyBotHandler) handle(ctx context.Context, api telegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	user := update.Message.From
	text := update.Message.Text

	switch text {
	case "/start":
		s.start(ctx, api, chatID, user.ID)
		return
	case "/cancel":
		s.clearSession(chatID)
		sendMarkup(ctx, api, chatID, "❌ The survey has been cancelled.", removeKeyboard())
		return
	}

	state, ok := s.session(chatID)
	if !ok {
		sendText(ctx, api, chatID, "Use /start to begin the survey.")
		return
	}

	switch st := state.(type) {
	case model.CollectingName:
		s.collectName(ctx, api, chatID, text)
	case model.CollectingPhone:
		s.collectPhone(ctx, api, chatID, st, text)
	case model.CollectingRating:
		s.collectRating(ctx, api, chatID, user.ID, st, text)
	}
}

func (s *SurveyBotHandler) start(ctx context.Context, api telegramAPI, chatID, userID int64) {
	submitted, err := s.log.HasSubmission(ctx, userID)
	if err != nil {
		// An unreachable store is treated like an empty one so a transient
		// outage does not lock users out of the form entirely.
		log.Error().Err(err).Int64("user_id", userID).Msg("error checking prior submission")
		submitted = false
	}
	if submitted {
		s.clearSession(chatID)
		sendMarkup(ctx, api, chatID, "🙏 Sorry! You have already completed this survey.", removeKeyboard())
		return
	}

	s.setSession(chatID, model.CollectingName{})
	sendText(ctx, api, chatID, "👋 Welcome!\nPlease enter your full name:")
}

func (s *SurveyBotHandler) collectName(ctx context.Context, api telegramAPI, chatID int64, text string) {
	name := strings.TrimSpace(text)
	if name == "" {
		sendText(ctx, api, chatID, "📋 Please enter your full name:")
		return
	}
	s.setSession(chatID, model.CollectingPhone{Name: name})
	sendText(ctx, api, chatID, "📞 Please enter your phone number:")
}

func (s *SurveyBotHandler) collectPhone(ctx context.Context, api telegramAPI, chatID int64, st model.CollectingPhone, text string) {
	// The question list is snapshotted here: a concurrent admin edit does
	// not change the question count for a form already in flight.
	questions, err := s.questions.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error loading questions")
		questions = nil
	}
	if len(questions) == 0 {
		s.clearSession(chatID)
		sendMarkup(ctx, api, chatID, "❌ No questions are available right now. Please try again later.", removeKeyboard())
		return
	}

	s.setSession(chatID, model.CollectingRating{
		Name:      st.Name,
		Phone:     text,
		Questions: questions,
	})
	s.askQuestion(ctx, api, chatID, 0, questions[0])
}

func (s *SurveyBotHandler) collectRating(ctx context.Context, api telegramAPI, chatID, userID int64, st model.CollectingRating, text string) {
	rating := ratingValue(strings.TrimSpace(text))
	if rating == 0 {
		sendText(ctx, api, chatID, "❌ Please use only the emoji buttons below.")
		s.askQuestion(ctx, api, chatID, len(st.Ratings), st.Questions[len(st.Ratings)])
		return
	}

	st.Ratings = append(st.Ratings, rating)
	if len(st.Ratings) < len(st.Questions) {
		s.setSession(chatID, st)
		s.askQuestion(ctx, api, chatID, len(st.Ratings), st.Questions[len(st.Ratings)])
		return
	}

	sub := model.Submission{
		UserID:    userID,
		Name:      st.Name,
		Phone:     st.Phone,
		Timestamp: time.Now(),
		Ratings:   st.Ratings,
	}
	s.clearSession(chatID)
	if err := s.log.Append(ctx, sub); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("error appending submission")
		sendMarkup(ctx, api, chatID, "😔 Sorry, something went wrong saving your answers. Please try again later.", removeKeyboard())
		return
	}
	sendMarkup(ctx, api, chatID, "✅ Thank you! You have completed the survey and your answers were recorded. 🎉", removeKeyboard())
}

func (s *SurveyBotHandler) askQuestion(ctx context.Context, api telegramAPI, chatID int64, index int, question string) {
	_, err := api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf("✨ <b>Q%d:</b> %s", index+1, question),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: ratingKeyboard(),
	})
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("error sending question")
	}
}

// ratingValue maps a rating emoji to its 1..5 value, 0 when the input is not
// part of the rating alphabet.
func ratingValue(text string) int {
	for i, emoji := range ratingEmojis {
		if text == emoji {
			return i + 1
		}
	}
	return 0
}

func ratingKeyboard() *models.ReplyKeyboardMarkup {
	row := make([]models.KeyboardButton, len(ratingEmojis))
	for i, emoji := range ratingEmojis {
		row[i] = models.KeyboardButton{Text: emoji}
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       [][]models.KeyboardButton{row},
		ResizeKeyboard: true,
	}
}

func (s *SurveyBotHandler) session(chatID int64) (model.SurveyState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[chatID]
	return state, ok
}

func (s *SurveyBotHandler) setSession(chatID int64, state model.SurveyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = state
}

func (s *SurveyBotHandler) clearSession(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
