package script

import (
	"strings"
	"testing"
)

const multiParagraphScript = `Yuki walks through the school gates as dawn light cuts across the courtyard.

HARUTO waits under the old tree, kicking at fallen leaves while the wind picks up.

They argue about the festival. Yuki storms off toward the river without looking back.

Night falls over the village. Haruto finds Yuki at the bridge and they finally talk.`

func TestSegmentScript_ParagraphsPreferred(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 4)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "school gates") {
		t.Errorf("first chunk should hold the first paragraph, got %q", chunks[0])
	}
	if !strings.Contains(chunks[3], "bridge") {
		t.Errorf("last chunk should hold the last paragraph, got %q", chunks[3])
	}
}

func TestSegmentScript_CoversWholeScript(t *testing.T) {
	// Every paragraph's text must land in exactly one chunk, in order.
	chunks := SegmentScript(multiParagraphScript, 2)
	joined := strings.Join(chunks, " ")
	for _, fragment := range []string{"school gates", "old tree", "festival", "bridge"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("chunks should cover fragment %q", fragment)
		}
	}
}

func TestSegmentScript_MoreScenesThanParagraphs(t *testing.T) {
	// 4 paragraphs partitioned to 8 requested scenes: some boundaries
	// collapse, but no chunk may be empty and count never exceeds requested.
	chunks := SegmentScript(multiParagraphScript, 8)
	if len(chunks) == 0 || len(chunks) > 8 {
		t.Fatalf("expected between 1 and 8 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSegmentScript_SentenceFallback(t *testing.T) {
	single := "Yuki runs to the station before sunrise. The train is already leaving the platform. She watches it disappear into the mist."
	chunks := SegmentScript(single, 3)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks from sentence fallback, got %d", len(chunks))
	}
}

func TestSegmentScript_DiscardsTinyFragments(t *testing.T) {
	// "No." and "Go!" are below the fragment threshold and must not become
	// scenes of their own.
	text := "No. Go! The storm rolled across the mountain ridge all night long. By morning the village below was buried in snow and silence."
	chunks := SegmentScript(text, 2)
	for i, c := range chunks {
		if len(c) < 20 {
			t.Errorf("chunk %d too short: %q", i, c)
		}
	}
}

func TestSegmentScript_TinyScriptNonCrashing(t *testing.T) {
	// A single sentence below the fragment threshold survives neither the
	// paragraph nor the sentence split; the whole trimmed text becomes the
	// only unit and the partition repeats it rather than returning nothing.
	chunks := SegmentScript("Hi.", 2)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk for a tiny script")
	}
	for i, c := range chunks {
		if c != "Hi." {
			t.Errorf("chunk %d: expected the trimmed script, got %q", i, c)
		}
	}
}

func TestSegmentScript_TruncatesToRequested(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 3)
	if len(chunks) > 3 {
		t.Errorf("expected at most 3 chunks, got %d", len(chunks))
	}
}

func TestSegmentScript_Deterministic(t *testing.T) {
	a := SegmentScript(multiParagraphScript, 4)
	b := SegmentScript(multiParagraphScript, 4)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestBuildSceneDescriptors_IndexesAndTitles(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 4)
	scenes := BuildSceneDescriptors(multiParagraphScript, chunks, SceneNotes{})

	if len(scenes) != len(chunks) {
		t.Fatalf("expected %d scenes, got %d", len(chunks), len(scenes))
	}
	for i, scene := range scenes {
		if scene.Index != i+1 {
			t.Errorf("scene %d has index %d", i, scene.Index)
		}
		if scene.Title == "" {
			t.Errorf("scene %d has empty title", i)
		}
		if len(scene.Title) > 70 {
			t.Errorf("scene %d title not bounded: %q", i, scene.Title)
		}
		if scene.Summary != chunks[i] {
			t.Errorf("scene %d summary does not match chunk", i)
		}
	}
}

func TestBuildSceneDescriptors_CompositionVariesByPosition(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 4)
	scenes := BuildSceneDescriptors(multiParagraphScript, chunks, SceneNotes{})

	if !strings.Contains(scenes[0].Composition, "establishing") {
		t.Errorf("first scene should be an establishing shot, got %q", scenes[0].Composition)
	}
	if !strings.Contains(scenes[len(scenes)-1].Composition, "closing") {
		t.Errorf("last scene should be a closing frame, got %q", scenes[len(scenes)-1].Composition)
	}
}

func TestBuildSceneDescriptors_EnvironmentNotesAppended(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 2)
	scenes := BuildSceneDescriptors(multiParagraphScript, chunks, SceneNotes{
		Environment: "rural mountain village, late autumn",
	})
	for i, scene := range scenes {
		if !strings.Contains(scene.Composition, "rural mountain village") {
			t.Errorf("scene %d composition missing environment notes: %q", i, scene.Composition)
		}
	}
}

func TestBuildSceneDescriptors_NatureNotesOverride(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 2)
	scenes := BuildSceneDescriptors(multiParagraphScript, chunks, SceneNotes{
		Nature: "heavy rain, neon reflections",
	})
	for i, scene := range scenes {
		if scene.Nature != "heavy rain, neon reflections" {
			t.Errorf("scene %d nature should use caller notes, got %q", i, scene.Nature)
		}
	}
}

func TestBuildSceneDescriptors_NatureFromKeywords(t *testing.T) {
	text := "The storm breaks over the harbor at dawn. Waves slam the pier while mist swallows the lighthouse beam entirely."
	chunks := SegmentScript(text, 2)
	scenes := BuildSceneDescriptors(text, chunks, SceneNotes{})

	found := false
	for _, scene := range scenes {
		if strings.HasPrefix(scene.Nature, "emphasize ") {
			found = true
		}
	}
	if !found {
		t.Error("expected at least one scene to emphasize detected weather keywords")
	}
}

func TestBuildSceneDescriptors_NatureDefault(t *testing.T) {
	text := "Two friends meet for lunch. They talk about work for an hour and then say goodbye at the corner table."
	chunks := SegmentScript(text, 2)
	scenes := BuildSceneDescriptors(text, chunks, SceneNotes{})
	for i, scene := range scenes {
		if scene.Nature == "" {
			t.Errorf("scene %d has empty nature directive", i)
		}
	}
}

func TestBuildSceneDescriptors_ConsistencySharedAcrossScenes(t *testing.T) {
	chunks := SegmentScript(multiParagraphScript, 3)
	scenes := BuildSceneDescriptors(multiParagraphScript, chunks, SceneNotes{
		Character: "Yuki has a red scarf",
	})
	for i := 1; i < len(scenes); i++ {
		if scenes[i].CharacterConsistency != scenes[0].CharacterConsistency {
			t.Errorf("scene %d consistency differs from scene 0", i)
		}
	}
	if !strings.Contains(scenes[0].CharacterConsistency, "red scarf") {
		t.Errorf("consistency should include caller notes, got %q", scenes[0].CharacterConsistency)
	}
}
