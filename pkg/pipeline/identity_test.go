package pipeline

import "testing"

func TestWindowConfidence(t *testing.T) {
	tests := []struct {
		name     string
		recorded string
		live     string
		want     float64
	}{
		{"exact", "compose", "compose", confTitleExact},
		{"live appends document name", "compose", "compose - draft 3", confTitleSubstring},
		{"recorded had the longer title", "compose - draft 3", "compose", confTitleSubstring},
		{"nothing recorded", "", "compose", confNoRecordedTitle},
		{"nothing recorded, nothing live", "", "", confNoRecordedTitle},
		{"unrelated title", "compose", "preferences", confAppOnly},
		{"live untitled", "compose", "", confAppOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowConfidence(tt.recorded, tt.live); got != tt.want {
				t.Errorf("windowConfidence(%q, %q) = %v, want %v",
					tt.recorded, tt.live, got, tt.want)
			}
		})
	}
}
