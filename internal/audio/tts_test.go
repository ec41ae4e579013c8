package audio

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "two sentences",
			input:    "First sentence. Second one!",
			expected: []string{"First sentence.", "Second one!"},
		},
		{
			name:     "no terminal punctuation",
			input:    "a trailing fragment",
			expected: []string{"a trailing fragment"},
		},
		{
			name:     "question mark",
			input:    "Is it? Yes.",
			expected: []string{"Is it?", "Yes."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitSentences() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestSplitForTTSRespectsLimit(t *testing.T) {
	long := strings.Repeat("This is a fairly ordinary sentence about essays. ", 20)

	chunks := splitForTTS(long)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > maxChunkLen {
			t.Errorf("chunk %d length %d exceeds limit %d", i, len(chunk), maxChunkLen)
		}
	}

	// Nothing lost: every word survives chunking
	joined := strings.Join(chunks, " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(long), " ") {
		t.Error("chunking dropped or reordered text")
	}
}

func TestSplitForTTSOversizedSentence(t *testing.T) {
	oneSentence := strings.Repeat("word ", 100) + "end."

	chunks := splitForTTS(oneSentence)
	for i, chunk := range chunks {
		if len(chunk) > maxChunkLen {
			t.Errorf("chunk %d length %d exceeds limit", i, len(chunk))
		}
	}
}
