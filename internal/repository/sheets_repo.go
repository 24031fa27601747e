package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore is the Google Sheets implementation of RowStore.
type SheetsStore struct {
	srv           *sheets.Service
	SpreadsheetID string
}

func NewSheetsStore(ctx context.Context, credentialsPath, spreadsheetID string) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is empty")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("service account key not found at path: %s", credentialsPath)
	}
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsStore{srv: srv, SpreadsheetID: spreadsheetID}, nil
}

func (s *SheetsStore) ReadRows(ctx context.Context, rng Range) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.SpreadsheetID, rng.A1()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rng.A1(), err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SheetsStore) WriteRows(ctx context.Context, rng Range, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: toValues(rows)}
	_, err := s.srv.Spreadsheets.Values.Update(s.SpreadsheetID, rng.A1(), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", rng.A1(), err)
	}
	return nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	resp, err := s.append(ctx, rng, [][]string{row})
	if err != nil {
		return 0, err
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("appending to %s: response carries no updated range", rng.A1())
	}
	return rowFromUpdatedRange(resp.Updates.UpdatedRange)
}

func (s *SheetsStore) AppendRows(ctx context.Context, rng Range, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := s.append(ctx, rng, rows)
	return err
}

func (s *SheetsStore) append(ctx context.Context, rng Range, rows [][]string) (*sheets.AppendValuesResponse, error) {
	vr := &sheets.ValueRange{Values: toValues(rows)}
	resp, err := s.srv.Spreadsheets.Values.Append(s.SpreadsheetID, rng.A1(), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("appending to %s: %w", rng.A1(), err)
	}
	return resp, nil
}

func (s *SheetsStore) ClearRows(ctx context.Context, rng Range) error {
	_, err := s.srv.Spreadsheets.Values.Clear(s.SpreadsheetID, rng.A1(), &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing %s: %w", rng.A1(), err)
	}
	return nil
}

func (s *SheetsStore) UpdateCell(ctx context.Context, tab string, row, col int, value string) error {
	cell := fmt.Sprintf("%s!%s%d", quoteTab(tab), ColumnLetter(col), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.srv.Spreadsheets.Values.Update(s.SpreadsheetID, cell, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", cell, err)
	}
	return nil
}

func (s *SheetsStore) EnsureTabsExist(ctx context.Context, names []string) error {
	ss, err := s.srv.Spreadsheets.Get(s.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("listing tabs: %w", err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}
	var reqs []*sheets.Request
	for _, name := range names {
		if existing[name] {
			continue
		}
		existing[name] = true
		reqs = append(reqs, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: name}},
		})
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = s.srv.Spreadsheets.BatchUpdate(s.SpreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("adding tabs: %w", err)
	}
	return nil
}

func toValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}

var updatedRangeRow = regexp.MustCompile(`![A-Z]+(\d+)`)

// rowFromUpdatedRange extracts the first row number from e.g. 'Bookings'!A5:I5.
func rowFromUpdatedRange(updated string) (int, error) {
	m := updatedRangeRow.FindStringSubmatch(updated)
	if m == nil {
		return 0, fmt.Errorf("unexpected updated range %q", updated)
	}
	return strconv.Atoi(m[1])
}

// IsRetryableSheetsError reports rate limiting and transient server failures.
func IsRetryableSheetsError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
