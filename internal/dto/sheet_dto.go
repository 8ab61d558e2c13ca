package dto

type SpreadsheetResponse struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

type SheetValuesResponse struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

type AppendRowsRequest struct {
	Range  string          `json:"range" validate:"required"`
	Values [][]interface{} `json:"values" validate:"required,min=1"`
}

type AppendRowsResponse struct {
	UpdatedRange string `json:"updated_range"`
	UpdatedCells int64  `json:"updated_cells"`
}
