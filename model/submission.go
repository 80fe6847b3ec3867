package model

import (
	"strconv"
	"time"
)

// TimestampLayout is the wall-clock format written into the submission log.
const TimestampLayout = "2006-01-02 15:04:05"

// Submission is one completed survey: identity fields plus one rating per
// question, in question order.
type Submission struct {
	UserID    int64
	Name      string
	Phone     string
	Timestamp time.Time
	Ratings   []int
}

// SubmissionHeader returns the expected header row for a submission log with
// n questions: UserID, Name, Phone, Timestamp, Q1..Qn.
func SubmissionHeader(n int) []string {
	header := []string{"UserID", "Name", "Phone", "Timestamp"}
	for i := 1; i <= n; i++ {
		header = append(header, "Q"+strconv.Itoa(i))
	}
	return header
}

// Row serializes the submission in header order.
func (s Submission) Row() []string {
	row := []string{
		strconv.FormatInt(s.UserID, 10),
		s.Name,
		s.Phone,
		s.Timestamp.Format(TimestampLayout),
	}
	for _, r := range s.Ratings {
		row = append(row, strconv.Itoa(r))
	}
	return row
}
