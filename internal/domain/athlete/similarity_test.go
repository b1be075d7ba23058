package athlete

import "testing"

func TestSimilarity_ExactAndDiacritics(t *testing.T) {
	t.Parallel()

	if got := Similarity("Maria Silva", "maria silva"); got != 100 {
		t.Fatalf("expected 100 for case-folded match, got %d", got)
	}
	if got := Similarity("José Silva", "Jose Silva"); got != 95 {
		t.Fatalf("expected 95 for diacritics-only difference, got %d", got)
	}
}

func TestSimilarity_TokenOverlap(t *testing.T) {
	t.Parallel()

	// "da" is below the minimum token length and does not count.
	if got := Similarity("José da Silva", "Jose Silva"); got < SimilarityThreshold {
		t.Fatalf("expected duplicate candidate score, got %d", got)
	}

	// One shared token is not enough evidence.
	if got := Similarity("Maria Souza", "Maria Lima"); got != 0 {
		t.Fatalf("expected 0 for single-token overlap, got %d", got)
	}

	if got := Similarity("Ana Souza", "Pedro Lima"); got != 0 {
		t.Fatalf("expected 0 for unrelated names, got %d", got)
	}
}

func TestSimilarity_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := Similarity("", "Maria Silva"); got != 0 {
		t.Fatalf("expected 0 for empty name, got %d", got)
	}
	if got := Similarity("   ", "   "); got != 0 {
		t.Fatalf("expected 0 for blank names, got %d", got)
	}
}
