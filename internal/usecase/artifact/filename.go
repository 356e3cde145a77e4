package artifact

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lessonloop/ingest-ms-go/internal/model"
)

// Tutors name recordings in a handful of conventions ("Jane_20240715.mp4",
// "Jane - 2024-07-15.mov", "Jane (2024.07.15).mp4"). Each matcher pairs one
// delimiter variant with one date variant; the list is ordered and the
// first match wins, so extraction is deterministic.
type filenamePattern struct {
	re     *regexp.Regexp
	layout string
}

var filenamePatterns = []filenamePattern{
	// underscore
	{regexp.MustCompile(`^(.+)_(\d{8})$`), "20060102"},
	{regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})$`), "2006-01-02"},
	{regexp.MustCompile(`^(.+)_(\d{4}\.\d{2}\.\d{2})$`), "2006.01.02"},
	// hyphen
	{regexp.MustCompile(`^(.+)-(\d{8})$`), "20060102"},
	{regexp.MustCompile(`^(.+?)\s*-\s*(\d{4}-\d{2}-\d{2})$`), "2006-01-02"},
	{regexp.MustCompile(`^(.+)-(\d{4}\.\d{2}\.\d{2})$`), "2006.01.02"},
	// space
	{regexp.MustCompile(`^(.+) (\d{8})$`), "20060102"},
	{regexp.MustCompile(`^(.+) (\d{4}-\d{2}-\d{2})$`), "2006-01-02"},
	{regexp.MustCompile(`^(.+) (\d{4}\.\d{2}\.\d{2})$`), "2006.01.02"},
	// parentheses
	{regexp.MustCompile(`^(.+?)\s*\((\d{8})\)$`), "20060102"},
	{regexp.MustCompile(`^(.+?)\s*\((\d{4}-\d{2}-\d{2})\)$`), "2006-01-02"},
	{regexp.MustCompile(`^(.+?)\s*\((\d{4}\.\d{2}\.\d{2})\)$`), "2006.01.02"},
}

// ExtractFilenameMetadata infers the subject name and lesson date from an
// uploaded filename, best-effort. When nothing matches, the returned
// metadata is zero and ExtractedFromFilename stays false.
func ExtractFilenameMetadata(filename string) model.Metadata {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	for _, p := range filenamePatterns {
		m := p.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		date, err := time.Parse(p.layout, m[2])
		if err != nil {
			// eg "Jane_20241399": digits matched but not a real date
			continue
		}
		subject := strings.TrimSpace(strings.Trim(m[1], "_- "))
		if subject == "" {
			continue
		}
		return model.Metadata{
			SubjectName:           subject,
			LessonDate:            date.Format("2006-01-02"),
			ExtractedFromFilename: true,
		}
	}
	return model.Metadata{}
}
