package extractor

import "github.com/RadhiFadlillah/whatlanggo"

// detectLanguage runs whatlanggo's n-gram detector over text and
// returns the ISO 639-1 code and the detector's confidence, used both
// to populate ContentItem.Language and as an input to the language
// quality signal.
func detectLanguage(text string) (code string, confidence float64) {
	if len(text) < 20 {
		return "", 0
	}
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Und {
		return "", 0
	}
	return info.Lang.Iso6391(), info.Confidence
}
