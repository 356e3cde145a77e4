package artifact

import "testing"

func TestExtractFilenameMetadata(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		subject  string
		date     string
		ok       bool
	}{
		{"underscore compact", "Jane_20240715.mp4", "Jane", "2024-07-15", true},
		{"underscore dashed", "Jane_2024-07-15.mp4", "Jane", "2024-07-15", true},
		{"underscore dotted", "Jane_2024.07.15.mov", "Jane", "2024-07-15", true},
		{"hyphen compact", "Jane-20240715.mp4", "Jane", "2024-07-15", true},
		{"hyphen dashed spaced", "Jane - 2024-07-15.mp4", "Jane", "2024-07-15", true},
		{"space compact", "Jane Doe 20240715.mp4", "Jane Doe", "2024-07-15", true},
		{"parens dotted", "Jane (2024.07.15).mp4", "Jane", "2024-07-15", true},
		{"multi word subject", "Jane_Doe_20240715.mp4", "Jane_Doe", "2024-07-15", true},
		{"no date", "random.mp4", "", "", false},
		{"invalid date digits", "Jane_20241399.mp4", "", "", false},
		{"date only", "_20240715.mp4", "", "", false},
		{"no extension", "Jane_20240715", "Jane", "2024-07-15", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractFilenameMetadata(tc.filename)
			if got.ExtractedFromFilename != tc.ok {
				t.Fatalf("expected extracted=%v, got %v", tc.ok, got.ExtractedFromFilename)
			}
			if got.SubjectName != tc.subject {
				t.Errorf("expected subject %q, got %q", tc.subject, got.SubjectName)
			}
			if got.LessonDate != tc.date {
				t.Errorf("expected date %q, got %q", tc.date, got.LessonDate)
			}
		})
	}
}
