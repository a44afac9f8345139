package script

import (
	"regexp"
	"strings"
)

// Extraction is best-effort string matching with no confidence signal.
// All functions here are total: they never fail and return between 0 and
// count items. Callers supply a fallback descriptor when a heuristic
// comes up empty.

const (
	maxCastNames      = 6
	maxCandidateLines = 40
	minSubstantialLen = 20
)

var (
	titleCaseRe = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
	allCapsRe   = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

var environmentKeywords = []string{
	"forest", "city", "village", "temple", "school", "room",
	"street", "castle", "river", "mountain", "beach", "market",
}

var natureKeywords = []string{
	"rain", "wind", "storm", "sunset", "dawn", "night",
	"tree", "leaf", "ocean", "mist", "snow", "cloud",
}

// ExtractCharacterCandidates pulls title-case word tokens out of the
// script, deduplicated in first-seen order and truncated to count.
func ExtractCharacterCandidates(text string, count int) []string {
	if count <= 0 {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, m := range titleCaseRe.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		names = append(names, m)
		if len(names) == count {
			break
		}
	}
	return names
}

// ExtractCastNames pulls fully capitalized tokens (screenplay-style
// character cues), deduplicated and capped at 6. Used for the continuity
// directive, not for asset descriptors.
func ExtractCastNames(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range allCapsRe.FindAllString(text, -1) {
		if seen[m] {
			continue
		}
		seen[m] = true
		names = append(names, m)
		if len(names) == maxCastNames {
			break
		}
	}
	return names
}

// CharacterConsistencyDirective builds the continuity text embedded in
// every storyboard frame. Falls back to a generic directive when the
// script names no cast.
func CharacterConsistencyDirective(text, notes string) string {
	var directive string
	if names := ExtractCastNames(text); len(names) > 0 {
		directive = "keep these characters on-model across frames: " + strings.Join(names, ", ")
	} else {
		directive = "keep recurring characters consistent in face, hair, and outfit"
	}
	if notes != "" {
		directive += "; " + notes
	}
	return directive
}

// ExtractEnvironmentCandidates returns up to count substantial lines of
// the script, lines mentioning an environment keyword ranked first.
func ExtractEnvironmentCandidates(text string, count int) []string {
	return extractKeywordLines(text, environmentKeywords, count)
}

// ExtractNatureCandidates returns up to count substantial lines of the
// script, lines mentioning a nature/weather keyword ranked first.
func ExtractNatureCandidates(text string, count int) []string {
	return extractKeywordLines(text, natureKeywords, count)
}

func extractKeywordLines(text string, keywords []string, count int) []string {
	if count <= 0 {
		return nil
	}

	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= minSubstantialLen {
			continue
		}
		candidates = append(candidates, trimmed)
		if len(candidates) == maxCandidateLines {
			break
		}
	}

	var matching, rest []string
	for _, line := range candidates {
		if containsAnyKeyword(line, keywords) {
			matching = append(matching, line)
		} else {
			rest = append(rest, line)
		}
	}

	ranked := append(matching, rest...)
	if len(ranked) > count {
		ranked = ranked[:count]
	}
	return ranked
}

func containsAnyKeyword(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FallbackDescriptor returns a truncated prefix of the script for use when
// an extractor yields nothing, so every category still generates at least
// one asset.
func FallbackDescriptor(text string) string {
	trimmed := strings.Join(strings.Fields(text), " ")
	const maxLen = 80
	if len(trimmed) <= maxLen {
		return trimmed
	}
	cut := trimmed[:maxLen]
	if sp := strings.LastIndex(cut, " "); sp > 0 {
		cut = cut[:sp]
	}
	return cut
}
