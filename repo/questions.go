package repo

import (
	"context"
	"fmt"

	"FeedbackBot/model"
)

// DefaultQuestions seed the registry the first time the bots run against an
// empty Questions worksheet.
var DefaultQuestions = []string{
	"How would you rate the quality of service?",
	"How would you rate the cleanliness?",
	"How would you rate the pricing?",
}

type questionSheet interface {
	QuestionColumn(ctx context.Context) ([]string, error)
	WriteQuestionColumn(ctx context.Context, questions []string) error
}

// QuestionRegistry is the ordered question list backing both bots. Every
// read goes to the worksheet; every mutation rewrites the whole column, so
// concurrent admin edits are last-write-wins.
type QuestionRegistry struct {
	sheet questionSheet
}

func NewQuestionRegistry(sheet questionSheet) *QuestionRegistry {
	return &QuestionRegistry{sheet: sheet}
}

// List returns the current questions in order.
func (r *QuestionRegistry) List(ctx context.Context) ([]string, error) {
	questions, err := r.sheet.QuestionColumn(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing questions: %w", err)
	}
	return questions, nil
}

// Append adds a question at the end of the list.
func (r *QuestionRegistry) Append(ctx context.Context, text string) error {
	questions, err := r.sheet.QuestionColumn(ctx)
	if err != nil {
		return fmt.Errorf("error loading questions: %w", err)
	}
	return r.sheet.WriteQuestionColumn(ctx, append(questions, text))
}

// Replace overwrites the question at index. An out-of-range index leaves the
// list untouched and returns model.ErrQuestionIndex.
func (r *QuestionRegistry) Replace(ctx context.Context, index int, text string) error {
	questions, err := r.sheet.QuestionColumn(ctx)
	if err != nil {
		return fmt.Errorf("error loading questions: %w", err)
	}
	if index < 0 || index >= len(questions) {
		return model.ErrQuestionIndex
	}
	questions[index] = text
	return r.sheet.WriteQuestionColumn(ctx, questions)
}

// RemoveAt deletes the question at index and returns its text; every
// question after it shifts down by one. An out-of-range index leaves the
// list untouched and returns model.ErrQuestionIndex.
func (r *QuestionRegistry) RemoveAt(ctx context.Context, index int) (string, error) {
	questions, err := r.sheet.QuestionColumn(ctx)
	if err != nil {
		return "", fmt.Errorf("error loading questions: %w", err)
	}
	if index < 0 || index >= len(questions) {
		return "", model.ErrQuestionIndex
	}
	removed := questions[index]
	questions = append(questions[:index], questions[index+1:]...)
	if err := r.sheet.WriteQuestionColumn(ctx, questions); err != nil {
		return "", err
	}
	return removed, nil
}

// SeedDefaults writes the default questions when the worksheet holds none.
func (r *QuestionRegistry) SeedDefaults(ctx context.Context) error {
	questions, err := r.sheet.QuestionColumn(ctx)
	if err != nil {
		return fmt.Errorf("error loading questions: %w", err)
	}
	if len(questions) > 0 {
		return nil
	}
	return r.sheet.WriteQuestionColumn(ctx, DefaultQuestions)
}
