// Package audio synthesizes spoken audio for feedback playback. The
// "improved version" text returned with an assessment can be played back;
// synthesis happens server-side and the MP3 is served as a static file.
package audio

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ttsRequestTimeout = 10 * time.Second

	// The TTS endpoint rejects long inputs; text is chunked at sentence
	// boundaries below this limit.
	maxChunkLen = 180
)

// TTSService converts text to speech via Google Translate's TTS endpoint
// (free, no API key) and caches the result on disk.
type TTSService struct {
	audioDir string
	client   *http.Client
}

// NewTTSService creates a TTS service writing MP3s into audioDir.
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Synthesize converts text to speech and returns the cached MP3 filename
// (not the full path). Feedback texts are long free text, so the filename
// is derived from a content hash rather than the text itself.
func (s *TTSService) Synthesize(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}

	sum := sha1.Sum([]byte(text))
	filename := fmt.Sprintf("speech_%s.mp3", hex.EncodeToString(sum[:]))
	outputPath := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(outputPath); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	for _, chunk := range splitForTTS(text) {
		if err := s.fetchChunk(chunk, outFile); err != nil {
			outFile.Close()
			os.Remove(outputPath)
			return "", fmt.Errorf("failed to generate audio: %w", err)
		}
	}

	return filename, nil
}

// fetchChunk streams one synthesized chunk into w.
func (s *TTSService) fetchChunk(text string, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	fullURL := "https://translate.google.com/translate_tts?" + params.Encode()

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// The endpoint requires a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// splitForTTS breaks text into chunks under the endpoint's length limit,
// preferring sentence boundaries and falling back to word boundaries for
// oversized sentences.
func splitForTTS(text string) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sentence := range splitSentences(text) {
		if current.Len()+len(sentence)+1 > maxChunkLen {
			flush()
		}
		if len(sentence) > maxChunkLen {
			for _, word := range strings.Fields(sentence) {
				if current.Len()+len(word)+1 > maxChunkLen {
					flush()
				}
				if current.Len() > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(word)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences splits on sentence-final punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
