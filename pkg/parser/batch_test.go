package parser

import "testing"

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "no separator",
			input: "SELECT 1",
			want:  []string{"SELECT 1"},
		},
		{
			name:  "two batches",
			input: "SELECT 1\nGO\nSELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "case insensitive",
			input: "SELECT 1\ngo\nSELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "go with count",
			input: "SELECT 1\nGO 5\nSELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "go with trailing comment",
			input: "SELECT 1\nGO -- end of batch\nSELECT 2",
			want:  []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:  "go mid line is not a separator",
			input: "SELECT GoneColumn FROM t",
			want:  []string{"SELECT GoneColumn FROM t"},
		},
		{
			name:  "goto is not a separator",
			input: "GOTO retry\nGO",
			want:  []string{"GOTO retry"},
		},
		{
			name:  "empty batches dropped",
			input: "GO\n\nGO\nSELECT 1\nGO\nGO",
			want:  []string{"SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBatches(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d batches, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("batch %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}
