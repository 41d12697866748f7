package report

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector classifies caption text into a language name. The
// candidate set is restricted to languages common on the platform so
// short hashtag-heavy captions still classify reasonably.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.Portuguese,
		lingua.French,
		lingua.German,
		lingua.Indonesian,
		lingua.Japanese,
		lingua.Korean,
		lingua.Arabic,
		lingua.Hindi,
	}
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns the lowercase language name, or "" when the caption
// is too thin to classify.
func (d *LanguageDetector) Detect(caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(caption)
	if !ok {
		return ""
	}
	return strings.ToLower(language.String())
}
