// Package sheets wraps the Google Sheets and Drive REST APIs behind the
// small surface the DPR services need. Every call builds its service with
// the requesting user's token source, so credentials never outlive a request.
package sheets

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

type SpreadsheetInfo struct {
	Id           string
	Name         string
	ModifiedTime string
}

// CellUpdate is one formatted status write: the cell at (Row, Column) gets
// "{status} - {qty} m3 - {date}" with a red (WIP) or green (COM) background.
type CellUpdate struct {
	Row      int    // 1-based row index as shown in the sheet
	Column   string // column letters, e.g. "AA"
	Status   string // "WIP" or "COM"
	Quantity int
	Date     string // YYYY-MM-DD
}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) sheetsService(ctx context.Context, ts oauth2.TokenSource) (*sheets.Service, error) {
	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) driveService(ctx context.Context, ts oauth2.TokenSource) (*drive.Service, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}

// ListSpreadsheets returns the user's spreadsheets, most recently modified
// first.
func (c *Client) ListSpreadsheets(ctx context.Context, ts oauth2.TokenSource) ([]SpreadsheetInfo, error) {
	svc, err := c.driveService(ctx, ts)
	if err != nil {
		return nil, err
	}

	res, err := svc.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", spreadsheetMimeType)).
		OrderBy("modifiedTime desc").
		Fields("files(id, name, modifiedTime)").
		PageSize(100).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list spreadsheets: %w", err)
	}

	out := make([]SpreadsheetInfo, 0, len(res.Files))
	for _, f := range res.Files {
		out = append(out, SpreadsheetInfo{
			Id:           f.Id,
			Name:         f.Name,
			ModifiedTime: f.ModifiedTime,
		})
	}
	return out, nil
}

func (c *Client) ReadRange(ctx context.Context, ts oauth2.TokenSource, spreadsheetId, readRange string) ([][]interface{}, error) {
	svc, err := c.sheetsService(ctx, ts)
	if err != nil {
		return nil, err
	}

	res, err := svc.Spreadsheets.Values.Get(spreadsheetId, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", readRange, err)
	}
	return res.Values, nil
}

func (c *Client) UpdateRange(ctx context.Context, ts oauth2.TokenSource, spreadsheetId, updateRange string, values [][]interface{}, majorDimension string) (int64, error) {
	svc, err := c.sheetsService(ctx, ts)
	if err != nil {
		return 0, err
	}

	if majorDimension == "" {
		majorDimension = "ROWS"
	}
	body := &sheets.ValueRange{
		Values:         values,
		MajorDimension: majorDimension,
	}

	res, err := svc.Spreadsheets.Values.Update(spreadsheetId, updateRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("update range %s: %w", updateRange, err)
	}
	return res.UpdatedCells, nil
}

func (c *Client) AppendRows(ctx context.Context, ts oauth2.TokenSource, spreadsheetId, appendRange string, values [][]interface{}) (string, int64, error) {
	svc, err := c.sheetsService(ctx, ts)
	if err != nil {
		return "", 0, err
	}

	body := &sheets.ValueRange{Values: values}
	res, err := svc.Spreadsheets.Values.Append(spreadsheetId, appendRange, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("append rows %s: %w", appendRange, err)
	}
	if res.Updates == nil {
		return "", 0, nil
	}
	return res.Updates.UpdatedRange, res.Updates.UpdatedCells, nil
}

// ApplyCellUpdates writes formatted status cells in one batchUpdate call.
func (c *Client) ApplyCellUpdates(ctx context.Context, ts oauth2.TokenSource, spreadsheetId string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	svc, err := c.sheetsService(ctx, ts)
	if err != nil {
		return err
	}

	requests := make([]*sheets.Request, 0, len(updates))
	for _, u := range updates {
		colIdx, err := ColumnIndex(u.Column)
		if err != nil {
			return err
		}

		var red, green float64
		if u.Status == "COM" {
			green = 0.95
		} else {
			red = 0.95
		}

		value := fmt.Sprintf("%s - %d m³ - %s", u.Status, u.Quantity, u.Date)
		requests = append(requests, &sheets.Request{
			UpdateCells: &sheets.UpdateCellsRequest{
				Range: &sheets.GridRange{
					SheetId:          0, // first tab, matching the original tool
					StartRowIndex:    int64(u.Row - 1),
					EndRowIndex:      int64(u.Row),
					StartColumnIndex: int64(colIdx),
					EndColumnIndex:   int64(colIdx + 1),
				},
				Rows: []*sheets.RowData{{
					Values: []*sheets.CellData{{
						UserEnteredValue: &sheets.ExtendedValue{StringValue: &value},
						UserEnteredFormat: &sheets.CellFormat{
							BackgroundColor: &sheets.Color{
								Red:   red,
								Green: green,
								Alpha: 1.0,
							},
							TextFormat:          &sheets.TextFormat{Bold: true},
							HorizontalAlignment: "CENTER",
						},
					}},
				}},
				Fields: "userEnteredValue,userEnteredFormat",
			},
		})
	}

	_, err = svc.Spreadsheets.BatchUpdate(spreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update: %w", err)
	}
	return nil
}

// ColumnIndex converts spreadsheet column letters to a 0-based index
// ("A" -> 0, "Z" -> 25, "AA" -> 26).
func ColumnIndex(column string) (int, error) {
	if column == "" {
		return 0, fmt.Errorf("empty column reference")
	}
	idx := 0
	for _, r := range column {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("invalid column reference %q", column)
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1, nil
}

// CellRef formats a cell reference like "AA12" from a 0-based column index
// and a 1-based row.
func CellRef(colIdx, row int) string {
	col := ""
	n := colIdx + 1
	for n > 0 {
		n--
		col = string(rune('A'+n%26)) + col
		n /= 26
	}
	return col + strconv.Itoa(row)
}
