package repo

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	questionsSheetTitle   = "Questions"
	questionHeaderLiteral = "Question"
)

// SheetStore wraps the Google Sheets API for the single spreadsheet shared
// by both bots. The first worksheet is the submission log; the Questions
// worksheet holds one question per row in column A.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string

	submissionTitle string
	submissionID    int64
	questionsTitle  string
}

// NewSheetStore authorizes against the Sheets API with a service account
// credentials file and resolves the worksheet layout once. The Questions
// worksheet is created if the spreadsheet does not have one yet.
func NewSheetStore(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}

	store := &SheetStore{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		questionsTitle: questionsSheetTitle,
	}
	if err := store.resolveWorksheets(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SheetStore) resolveWorksheets(ctx context.Context) error {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error reading spreadsheet metadata: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return fmt.Errorf("spreadsheet %s has no worksheets", s.spreadsheetID)
	}

	s.submissionTitle = meta.Sheets[0].Properties.Title
	s.submissionID = meta.Sheets[0].Properties.SheetId

	for _, sh := range meta.Sheets {
		if sh.Properties.Title == s.questionsTitle {
			return nil
		}
	}

	// No Questions worksheet yet; add one.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.questionsTitle},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error creating %s worksheet: %w", s.questionsTitle, err)
	}
	return nil
}

// AllRecords reads the whole submission worksheet and returns the header row
// plus one map per data row keyed by header. Short rows are padded with
// empty strings, long rows truncated to the header width.
func (s *SheetStore) AllRecords(ctx context.Context) ([]string, []map[string]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quoteTitle(s.submissionTitle)).Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("error reading submission rows: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil, nil
	}

	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, cellString(cell))
	}

	var rows []map[string]string
	for _, raw := range resp.Values[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(raw) {
				row[key] = cellString(raw[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// Header reads row 1 of the submission worksheet. An empty worksheet yields
// an empty slice, not an error.
func (s *SheetStore) Header(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!1:1", quoteTitle(s.submissionTitle))
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error reading header row: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	header := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		header = append(header, cellString(cell))
	}
	return header, nil
}

// AppendRow appends one row to the submission worksheet.
func (s *SheetStore) AppendRow(ctx context.Context, values []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, quoteTitle(s.submissionTitle), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error appending row: %w", err)
	}
	return nil
}

// InsertHeaderRow inserts header above row 1 of the submission worksheet
// without disturbing existing data rows.
func (s *SheetStore) InsertHeaderRow(ctx context.Context, header []string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.submissionID,
					Dimension:  "ROWS",
					StartIndex: 0,
					EndIndex:   1,
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error inserting header row: %w", err)
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{toCells(header)}}
	rng := fmt.Sprintf("%s!A1", quoteTitle(s.submissionTitle))
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing header row: %w", err)
	}
	return nil
}

// QuestionColumn reads column A of the Questions worksheet. A literal
// "Question" header in row 1 is stripped and blank cells are dropped.
func (s *SheetStore) QuestionColumn(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", quoteTitle(s.questionsTitle))
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error reading question column: %w", err)
	}

	var questions []string
	for i, raw := range resp.Values {
		if len(raw) == 0 {
			continue
		}
		cell := cellString(raw[0])
		if cell == "" {
			continue
		}
		if i == 0 && cell == questionHeaderLiteral {
			continue
		}
		questions = append(questions, cell)
	}
	return questions, nil
}

// WriteQuestionColumn clears column A of the Questions worksheet and writes
// the header literal followed by every question. Overwrite semantics: the
// caller's list is the new truth, whatever was there before.
func (s *SheetStore) WriteQuestionColumn(ctx context.Context, questions []string) error {
	rng := fmt.Sprintf("%s!A:A", quoteTitle(s.questionsTitle))
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error clearing question column: %w", err)
	}

	values := [][]interface{}{{questionHeaderLiteral}}
	for _, q := range questions {
		values = append(values, []interface{}{q})
	}
	vr := &sheets.ValueRange{Values: values}
	start := fmt.Sprintf("%s!A1", quoteTitle(s.questionsTitle))
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, start, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("error writing question column: %w", err)
	}
	return nil
}

func quoteTitle(title string) string {
	return "'" + title + "'"
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func cellString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
