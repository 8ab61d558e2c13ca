package service

import (
	"testing"

	"smart-dpr-be/internal/dto"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantErr       bool
		wantUpdations int
		wantFeedbacks int
	}{
		{
			name:          "plain JSON",
			raw:           `{"row_index":["5"],"columns_index":["C"],"updations":["WIP"],"quantities":[120],"feedbacks":["Row 5 updated."]}`,
			wantUpdations: 1,
			wantFeedbacks: 1,
		},
		{
			name:          "fenced JSON",
			raw:           "```json\n{\"row_index\":[\"5\"],\"columns_index\":[\"C\"],\"updations\":[\"COM\"],\"quantities\":[80],\"feedbacks\":[]}\n```",
			wantUpdations: 1,
		},
		{
			name:    "not JSON",
			raw:     "I could not find that row.",
			wantErr: true,
		},
		{
			name:          "misaligned lists drop the batch",
			raw:           `{"row_index":["5","6"],"columns_index":["C"],"updations":["WIP","COM"],"quantities":[1,2],"feedbacks":["original feedback"]}`,
			wantUpdations: 0,
			wantFeedbacks: 2,
		},
		{
			name:          "feedbacks may be longer than the aligned lists",
			raw:           `{"row_index":["5"],"columns_index":["C"],"updations":["WIP"],"quantities":[10],"feedbacks":["done","also: row 9 not found"]}`,
			wantUpdations: 1,
			wantFeedbacks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtraction(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Updations) != tt.wantUpdations {
				t.Errorf("Updations = %d, want %d", len(got.Updations), tt.wantUpdations)
			}
			if len(got.Feedbacks) != tt.wantFeedbacks {
				t.Errorf("Feedbacks = %d, want %d", len(got.Feedbacks), tt.wantFeedbacks)
			}
		})
	}
}

func TestBuildCellUpdates(t *testing.T) {
	e := &dto.UpdateExtraction{
		RowIndex:     []string{"5", "abc", "0", "12", "7"},
		ColumnsIndex: []string{"C", "D", "E", "4", "aa"},
		Updations:    []string{"WIP", "COM", "WIP", "COM", "com"},
		Quantities:   []int{120, 1, 1, 1, 40},
		Feedbacks:    nil,
	}

	updates, errs := buildCellUpdates(e, "2025-03-15")

	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2 (%+v)", len(updates), updates)
	}
	// Invalid row, row zero and numeric column are each rejected with a note.
	if len(errs) != 3 {
		t.Fatalf("errs = %d, want 3 (%v)", len(errs), errs)
	}

	if updates[0].Row != 5 || updates[0].Column != "C" || updates[0].Status != "WIP" {
		t.Errorf("first update = %+v", updates[0])
	}
	// Lowercase inputs are normalized.
	if updates[1].Column != "AA" || updates[1].Status != "COM" {
		t.Errorf("second update = %+v", updates[1])
	}
	if updates[0].Date != "2025-03-15" {
		t.Errorf("date = %s", updates[0].Date)
	}
}

func TestFormatSheetData(t *testing.T) {
	rows := [][]interface{}{
		{"Item", "Qty", "Status"},
		{"Excavation", 120, "WIP"},
	}
	got := formatSheetData(rows)
	want := "Item\tQty\tStatus\nExcavation\t120\tWIP\n"
	if got != want {
		t.Errorf("formatSheetData = %q, want %q", got, want)
	}
}
