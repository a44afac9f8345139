// Package script holds the deterministic text heuristics that turn a raw
// script into scene and asset descriptors: segmentation, entity/keyword
// extraction, and prompt assembly. Everything here is a pure function of
// its inputs.
package script

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// minFragmentLen discards spurious micro-scenes when falling back to
// sentence splitting.
const minFragmentLen = 20

// maxTitleLen bounds derived scene headings.
const maxTitleLen = 60

var paragraphRe = regexp.MustCompile(`\n\s*\n`)

// SegmentScript splits a script into ordered, non-empty chunks. Paragraph
// boundaries are preferred; a single-paragraph script falls back to
// sentence boundaries. The chunk list is partitioned to max(2, requested)
// contiguous groups by proportional index boundaries and then truncated to
// the caller's requested count.
//
// Callers must pre-validate a minimum input length; behavior on empty
// input is undefined.
func SegmentScript(text string, requested int) []string {
	units := splitParagraphs(text)
	if len(units) < 2 {
		units = splitSentences(text)
	}
	if len(units) == 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			units = []string{trimmed}
		} else {
			return nil
		}
	}

	effective := requested
	if effective < 2 {
		effective = 2
	}

	n := len(units)
	var chunks []string
	for i := 0; i < effective; i++ {
		start := i * n / effective
		end := (i + 1) * n / effective
		if end < start+1 {
			end = start + 1
		}
		if end > n {
			end = n
		}
		chunk := strings.TrimSpace(strings.Join(units[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	if requested > 0 && requested < len(chunks) {
		chunks = chunks[:requested]
	}
	return chunks
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphRe.Split(text, -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences cuts on sentence-ending punctuation followed by
// whitespace, discarding fragments below minFragmentLen.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && (i+1 == len(runes) || isSpace(runes[i+1])) {
			if frag := strings.TrimSpace(b.String()); len(frag) >= minFragmentLen {
				sentences = append(sentences, frag)
			}
			b.Reset()
		}
	}
	if frag := strings.TrimSpace(b.String()); len(frag) >= minFragmentLen {
		sentences = append(sentences, frag)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// SceneNotes carries the caller-supplied continuity hints for a storyboard
// run. All fields are optional.
type SceneNotes struct {
	Character   string
	Environment string
	Nature      string
}

// BuildSceneDescriptors derives one descriptor per chunk: a bounded
// heading, the chunk as summary, and the continuity, composition, and
// nature directives the prompt assembler embeds per frame.
func BuildSceneDescriptors(text string, chunks []string, notes SceneNotes) []models.SceneDescriptor {
	consistency := CharacterConsistencyDirective(text, notes.Character)

	scenes := make([]models.SceneDescriptor, 0, len(chunks))
	for i, chunk := range chunks {
		scenes = append(scenes, models.SceneDescriptor{
			Index:                i + 1,
			Title:                sceneTitle(i+1, chunk),
			Summary:              chunk,
			CharacterConsistency: consistency,
			Composition:          compositionDirective(i, len(chunks), notes.Environment),
			Nature:               natureDirective(chunk, notes.Nature),
		})
	}
	return scenes
}

// sceneTitle derives a heading from the chunk's opening, truncated at a
// word boundary.
func sceneTitle(index int, chunk string) string {
	head := chunk
	if nl := strings.IndexAny(head, "\n"); nl > 0 {
		head = head[:nl]
	}
	head = strings.TrimSpace(head)
	if len(head) > maxTitleLen {
		cut := head[:maxTitleLen]
		if sp := strings.LastIndex(cut, " "); sp > 0 {
			cut = cut[:sp]
		}
		head = cut + "…"
	}
	if head == "" {
		return "Scene " + strconv.Itoa(index)
	}
	return head
}

func compositionDirective(index, total int, environmentNotes string) string {
	var directive string
	switch {
	case index == 0:
		directive = "wide establishing shot that stages the full location"
	case index == total-1:
		directive = "closing frame that visually resolves the sequence"
	case index%2 == 1:
		directive = "medium shot focused on the main action"
	default:
		directive = "close-up emphasizing character emotion"
	}
	if environmentNotes != "" {
		directive += "; " + environmentNotes
	}
	return directive
}

func natureDirective(chunk, natureNotes string) string {
	if natureNotes != "" {
		return natureNotes
	}
	lower := strings.ToLower(chunk)
	var found []string
	for _, kw := range natureKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
		if len(found) == 3 {
			break
		}
	}
	if len(found) == 0 {
		return "natural ambient light matching the scene's mood"
	}
	return "emphasize " + strings.Join(found, ", ")
}
