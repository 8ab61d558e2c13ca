package dto

type QueryLogsRequest struct {
	SpreadsheetId string `json:"spreadsheet_id" validate:"required"`
	Query         string `json:"query" validate:"required"`
	SheetName     string `json:"sheet_name"`
}

type QueryLogsResponse struct {
	Status string `json:"status"`
	Result string `json:"result"`
}

type UpdateSheetRequest struct {
	SpreadsheetId string `json:"spreadsheet_id" validate:"required"`
	UserQuery     string `json:"user_query" validate:"required"`
	SheetName     string `json:"sheet_name"`
}

type UpdateSheetResponse struct {
	Status       string   `json:"status"`
	Feedback     []string `json:"feedback"`
	UpdatedCells []string `json:"updated_cells,omitempty"`
}

type HelloWorldRequest struct {
	SpreadsheetId string `json:"spreadsheet_id" validate:"required"`
	SheetName     string `json:"sheet_name"`
	RowCount      int    `json:"row_count" validate:"omitempty,min=1,max=1000"`
}

type HelloWorldResponse struct {
	Status       string `json:"status"`
	UpdatedCells int64  `json:"updated_cells"`
}

// UpdateExtraction is the structured result the model must return for an
// update query. The first four lists are index-aligned: position i across
// RowIndex, ColumnsIndex, Updations and Quantities describes one work item.
// Feedbacks may be longer since it also carries error messages.
type UpdateExtraction struct {
	RowIndex     []string `json:"row_index"`
	ColumnsIndex []string `json:"columns_index"`
	Updations    []string `json:"updations"`
	Quantities   []int    `json:"quantities"`
	Feedbacks    []string `json:"feedbacks"`
}
