package probe

import (
	"testing"

	"salesclean/pkg/records"
)

func table(cols []string, rows ...[]string) *records.Table {
	t := &records.Table{Columns: cols}
	for i, r := range rows {
		cells := make([]records.Value, len(r))
		for j, s := range r {
			if s == "" {
				cells[j] = records.Missing()
			} else {
				cells[j] = records.Text(s)
			}
		}
		t.Rows = append(t.Rows, records.Row{Line: i + 2, Cells: cells})
	}
	return t
}

func TestProfile_Kinds(t *testing.T) {
	t.Parallel()

	tbl := table(
		[]string{"product", "price", "date", "note"},
		[]string{"Widget", "9.99", "2024-01-02", ""},
		[]string{"Gadget", "-5", "2024-01-03", ""},
		[]string{"Gizmo", "abc", "", ""},
	)
	got := Profile(tbl, nil)

	tests := []struct {
		col                     int
		kind                    string
		present, missing        int
		nonNumeric, nonPositive int
	}{
		{0, KindText, 3, 0, 3, 0},
		{1, KindText, 3, 0, 1, 1},
		{2, KindDate, 2, 1, 2, 0},
		{3, KindEmpty, 0, 3, 0, 0},
	}
	for _, tt := range tests {
		c := got[tt.col]
		if c.Kind != tt.kind || c.Present != tt.present || c.Missing != tt.missing ||
			c.NonNumeric != tt.nonNumeric || c.NonPositive != tt.nonPositive {
			t.Errorf("column %s = %+v, want kind=%s present=%d missing=%d nonNumeric=%d nonPositive=%d",
				c.Name, c, tt.kind, tt.present, tt.missing, tt.nonNumeric, tt.nonPositive)
		}
	}
	if got[2].DateLayout != "2006-01-02" || got[2].DateMatches != 2 {
		t.Fatalf("date layout = %q (%d)", got[2].DateLayout, got[2].DateMatches)
	}
}

func TestProfile_NumberColumn(t *testing.T) {
	t.Parallel()

	got := Profile(table([]string{"qty"}, []string{"1"}, []string{" 2 "}, []string{"0"}), nil)
	if got[0].Kind != KindNumber || got[0].NonPositive != 1 {
		t.Fatalf("qty = %+v", got[0])
	}
}

func TestBestLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		samples   []string
		layouts   []string
		want      string
		wantScore int
	}{
		{
			name:      "majority wins",
			samples:   []string{"31.12.2024", "01.02.2024", "2024-01-01"},
			layouts:   []string{"2006-01-02", "02.01.2006"},
			want:      "02.01.2006",
			wantScore: 2,
		},
		{
			name:      "tie keeps earlier layout",
			samples:   []string{"01/02/2024"},
			layouts:   []string{"01/02/2006", "02/01/2006"},
			want:      "01/02/2006",
			wantScore: 1,
		},
		{
			name:    "nothing parses",
			samples: []string{"soon"},
			layouts: []string{"2006-01-02"},
		},
		{
			name:    "no samples",
			layouts: []string{"2006-01-02"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, score := BestLayout(tt.samples, tt.layouts)
			if got != tt.want || score != tt.wantScore {
				t.Fatalf("BestLayout = (%q, %d), want (%q, %d)", got, score, tt.want, tt.wantScore)
			}
		})
	}
}
