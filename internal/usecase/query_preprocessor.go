package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Compiled regex patterns for query preprocessing
var (
	// Matches size/quantity patterns like "12 oz", "1.5 liter", "2 lb"
	sizeQuantityPattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(fl\s*)?(oz|ounces?|lbs?|pounds?|ml|liters?|kg|grams?|g)\b`)

	// Matches pack/count patterns like "12 pack", "pack of 6", "24 count"
	packCountPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(pack|pk|count|ct)\b|\bpack\s*of\s*\d+\b`)

	orphanedPunctuationPattern = regexp.MustCompile(`\s+[,\-;:]+\s+|[,\-;:]+\s*$|^\s*[,\-;:]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

const maxExternalQueryLength = 100

// QueryPreprocessor turns a user supplied search string into a query for
// the external food database.
type QueryPreprocessor struct {
	log logrus.FieldLogger
}

func NewQueryPreprocessor(log logrus.FieldLogger) *QueryPreprocessor {
	return &QueryPreprocessor{log: log}
}

// PreprocessQuery strips package sizes and pack counts, collapses
// whitespace and caps the length at a word boundary. When cleaning leaves
// less than MinQueryLength characters the trimmed input is returned instead.
func (p *QueryPreprocessor) PreprocessQuery(query string) string {
	original := strings.TrimSpace(query)
	if original == "" {
		return ""
	}

	cleaned := sizeQuantityPattern.ReplaceAllString(original, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")
	cleaned = orphanedPunctuationPattern.ReplaceAllString(cleaned, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if tooShort(cleaned) {
		cleaned = multiSpacePattern.ReplaceAllString(original, " ")
	}

	if len(cleaned) > maxExternalQueryLength {
		cut := maxExternalQueryLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxExternalQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	if cleaned != original {
		p.log.WithFields(logrus.Fields{"input": original, "output": cleaned}).Debug("preprocessed query")
	}
	return cleaned
}
