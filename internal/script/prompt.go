package script

import (
	"fmt"
	"strings"

	"github.com/AkhilTej3/anime-storyboard/pkg/models"
)

// DefaultStylePhrase is used when a request supplies no style preset.
const DefaultStylePhrase = "clean anime style, consistent character design, soft cinematic lighting"

// continuityInstruction is appended verbatim to every storyboard frame
// prompt. Providers are prompt-order-sensitive, so line ordering in the
// assemblers below is fixed and significant.
const continuityInstruction = "Keep continuity with prior frames: same character designs, color palette, and environment lighting."

var categorySubjects = map[string]string{
	models.CategoryCharacter:   "Character design sheet of %s: full body, expression clarity, neutral pose, front and side view.",
	models.CategoryEnvironment: "Environment concept frame of %s: layout readability, clear depth cues, establishing perspective.",
	models.CategoryNature:      "Nature mood plate of %s: weather, foliage, terrain, atmospheric detail.",
}

// AssembleAssetPrompt renders the prompt for one project-pack reference
// image. Output is deterministic: identical inputs yield byte-identical
// prompts.
func AssembleAssetPrompt(project, category, descriptor, stylePreset string) string {
	subject, ok := categorySubjects[category]
	if !ok {
		subject = "Reference image of %s."
	}

	lines := []string{
		fmt.Sprintf("Project: %s — %s reference asset.", project, category),
		fmt.Sprintf(subject, descriptor),
		styleLine(stylePreset),
	}
	return strings.Join(lines, "\n")
}

// AssembleScenePrompt renders the prompt for one storyboard frame. Line
// order: project header, subject, composition, nature, character
// consistency, style, then the fixed trailing continuity instruction.
func AssembleScenePrompt(project string, scene models.SceneDescriptor, totalScenes int, stylePreset, referenceSummary string) string {
	lines := []string{
		fmt.Sprintf("Project: %s — storyboard frame %d of %d.", project, scene.Index, totalScenes),
	}
	if referenceSummary != "" {
		lines = append(lines, "Reference assets: "+referenceSummary)
	}
	lines = append(lines,
		fmt.Sprintf("Scene: %s", scene.Summary),
		fmt.Sprintf("Composition: %s", scene.Composition),
		fmt.Sprintf("Nature: %s", scene.Nature),
		fmt.Sprintf("Character consistency: %s", scene.CharacterConsistency),
		styleLine(stylePreset),
		continuityInstruction,
	)
	return strings.Join(lines, "\n")
}

// AssembleSinglePrompt appends the optional style and negative-prompt
// annotations to a free-form prompt as extra lines.
func AssembleSinglePrompt(prompt, negativePrompt, stylePreset string) string {
	lines := []string{prompt}
	if stylePreset != "" {
		lines = append(lines, "Style: "+stylePreset)
	}
	if negativePrompt != "" {
		lines = append(lines, "Avoid: "+negativePrompt)
	}
	return strings.Join(lines, "\n")
}

// ReferenceSummary condenses previously generated project assets into one
// line for embedding in storyboard prompts.
func ReferenceSummary(assets []*models.Asset) string {
	var parts []string
	for _, a := range assets {
		label := ""
		if a.Title != nil && *a.Title != "" {
			label = *a.Title
		} else if a.Prompt != nil && *a.Prompt != "" {
			label = FallbackDescriptor(*a.Prompt)
		}
		if label == "" {
			continue
		}
		if cat, ok := a.Metadata["category"].(string); ok && cat != "" {
			label += " (" + cat + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "; ")
}

func styleLine(preset string) string {
	if preset == "" {
		return "Style: " + DefaultStylePhrase
	}
	return "Style: " + preset
}
