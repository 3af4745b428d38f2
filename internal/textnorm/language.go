package textnorm

import "strings"

// Stop-word lists for heuristic language scoring. Ambiguous tokens shared by
// both languages are left out so they never tip the score.
var stopWords = map[string]map[string]struct{}{
	"en": wordSet("the", "and", "with", "for", "from", "years", "year",
		"experience", "skills", "developer", "engineer", "work", "worked",
		"team", "knowledge", "level", "currently", "looking"),
	"es": wordSet("el", "la", "los", "las", "una", "con", "de", "del",
		"anos", "experiencia", "habilidades", "desarrollador", "ingeniero",
		"trabajo", "equipo", "conocimiento", "nivel", "actualmente", "busco",
		"avanzado", "basico"),
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// DetectLanguage scores folded tokens against per-language stop-word lists.
// Ties resolve to English; zero hits on every list yields "unknown".
func DetectLanguage(text string) string {
	scores := map[string]int{"en": 0, "es": 0}
	for _, token := range strings.Fields(Fold(text)) {
		token = strings.Trim(token, ".,;:()[]¿?¡!\"'")
		for lang, set := range stopWords {
			if _, ok := set[token]; ok {
				scores[lang]++
			}
		}
	}
	if scores["es"] > scores["en"] {
		return "es"
	}
	if scores["en"] > 0 {
		return "en"
	}
	return "unknown"
}
