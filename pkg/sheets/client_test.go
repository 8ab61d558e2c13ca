package sheets

import (
	"testing"
)

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		column  string
		want    int
		wantErr bool
	}{
		{column: "A", want: 0},
		{column: "Z", want: 25},
		{column: "AA", want: 26},
		{column: "AZ", want: 51},
		{column: "BA", want: 52},
		{column: "aa", want: 26},
		{column: "", wantErr: true},
		{column: "A1", wantErr: true},
		{column: "-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := ColumnIndex(tt.column)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ColumnIndex(%q) expected error, got %d", tt.column, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ColumnIndex(%q) unexpected error: %v", tt.column, err)
			}
			if got != tt.want {
				t.Errorf("ColumnIndex(%q) = %d, want %d", tt.column, got, tt.want)
			}
		})
	}
}

func TestCellRef(t *testing.T) {
	tests := []struct {
		colIdx int
		row    int
		want   string
	}{
		{colIdx: 0, row: 1, want: "A1"},
		{colIdx: 25, row: 10, want: "Z10"},
		{colIdx: 26, row: 3, want: "AA3"},
		{colIdx: 51, row: 100, want: "AZ100"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := CellRef(tt.colIdx, tt.row); got != tt.want {
				t.Errorf("CellRef(%d, %d) = %s, want %s", tt.colIdx, tt.row, got, tt.want)
			}
		})
	}
}

func TestColumnIndexRoundTrip(t *testing.T) {
	for idx := 0; idx < 200; idx++ {
		ref := CellRef(idx, 1)
		col := ref[:len(ref)-1]
		got, err := ColumnIndex(col)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): %v", col, err)
		}
		if got != idx {
			t.Fatalf("round trip %d -> %q -> %d", idx, col, got)
		}
	}
}
