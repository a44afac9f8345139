package models

// SceneDescriptor is one segmented unit of a script plus the directives the
// prompt assembler derives for it. Pipeline-internal; the persisted record
// of a scene is the asset created from it.
type SceneDescriptor struct {
	Index                int    `json:"index"` // 1-based
	Title                string `json:"title"`
	Summary              string `json:"summary"`
	CharacterConsistency string `json:"character_consistency"`
	Composition          string `json:"composition"`
	Nature               string `json:"nature"`
}

// ProjectAssetDescriptor describes one reference image to generate for a
// project asset pack.
type ProjectAssetDescriptor struct {
	Category   string `json:"category"` // character | environment | nature
	Descriptor string `json:"descriptor"`
	Prompt     string `json:"prompt"`
}
