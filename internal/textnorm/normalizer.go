package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterSpacingRunMin is the minimum run of single-character tokens that is
// treated as OCR letter spacing and rejoined into one word.
const letterSpacingRunMin = 5

// Result is the output of text normalization.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Normalize cleans raw text and tags its language. It never fails: empty or
// garbage input yields the trimmed input with language "unknown".
func Normalize(raw string, langHint string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Text: trimmed, Language: "unknown"}
	}

	lines := strings.Split(trimmed, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned := normalizeLine(line)
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	text := strings.Join(out, "\n")
	if text == "" {
		return Result{Text: trimmed, Language: "unknown"}
	}

	lang := normalizeLangTag(langHint)
	if lang == "" {
		lang = DetectLanguage(text)
	}
	return Result{Text: text, Language: lang}
}

func normalizeLine(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(rejoinLetterSpacing(tokens), " ")
}

// rejoinLetterSpacing collapses runs of single-letter tokens, typically OCR
// output that spaced every character of a header ("S K I L L S").
func rejoinLetterSpacing(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		j := i
		for j < len(tokens) && isSingleLetter(tokens[j]) {
			j++
		}
		if j-i >= letterSpacingRunMin {
			out = append(out, strings.Join(tokens[i:j], ""))
			i = j
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

func isSingleLetter(token string) bool {
	r, size := utf8.DecodeRuneInString(token)
	return size == len(token) && unicode.IsLetter(r)
}

func normalizeLangTag(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "en", "english":
		return "en"
	case "es", "spanish":
		return "es"
	default:
		return ""
	}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases a token and strips diacritics for insensitive comparison.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
