package repo

import (
	"context"
	"fmt"
	"strconv"

	"FeedbackBot/model"
)

type submissionSheet interface {
	AllRecords(ctx context.Context) ([]string, []map[string]string, error)
	Header(ctx context.Context) ([]string, error)
	AppendRow(ctx context.Context, values []string) error
	InsertHeaderRow(ctx context.Context, header []string) error
}

// SubmissionLog is the append-only record of completed surveys. There is no
// update or delete path; uniqueness per user is a best-effort pre-check, not
// a storage constraint.
type SubmissionLog struct {
	sheet submissionSheet
}

func NewSubmissionLog(sheet submissionSheet) *SubmissionLog {
	return &SubmissionLog{sheet: sheet}
}

// HasSubmission scans the UserID column for the given user. A sheet with no
// rows means no submission.
func (l *SubmissionLog) HasSubmission(ctx context.Context, userID int64) (bool, error) {
	_, rows, err := l.sheet.AllRecords(ctx)
	if err != nil {
		return false, fmt.Errorf("error checking submissions: %w", err)
	}
	want := strconv.FormatInt(userID, 10)
	for _, row := range rows {
		if row["UserID"] == want {
			return true, nil
		}
	}
	return false, nil
}

// Append writes one submission row. Before appending it verifies that row 1
// is the expected header; a missing header is inserted above existing data
// rows, an empty sheet gets the header as its first row.
func (l *SubmissionLog) Append(ctx context.Context, sub model.Submission) error {
	header := model.SubmissionHeader(len(sub.Ratings))

	first, err := l.sheet.Header(ctx)
	if err != nil {
		return fmt.Errorf("error verifying header: %w", err)
	}
	switch {
	case len(first) == 0:
		if err := l.sheet.AppendRow(ctx, header); err != nil {
			return err
		}
	case first[0] != "UserID":
		if err := l.sheet.InsertHeaderRow(ctx, header); err != nil {
			return err
		}
	}

	return l.sheet.AppendRow(ctx, sub.Row())
}

// Records returns the submission table as stored: header order plus one map
// per row.
func (l *SubmissionLog) Records(ctx context.Context) ([]string, []map[string]string, error) {
	return l.sheet.AllRecords(ctx)
}
