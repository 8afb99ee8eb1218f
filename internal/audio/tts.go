package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// GoogleTTSURL is the Google Translate text-to-speech endpoint
const GoogleTTSURL = "https://translate.google.com/translate_tts"

const (
	ttsRequestTimeout = 10 * time.Second
	normalSpeed       = "1"
	slowSpeed         = "0.7"
)

// ErrInvalidText is returned for text that yields no usable file name
var ErrInvalidText = errors.New("invalid text for speech")

// TTSService converts text to speech and caches the MP3 files on disk
type TTSService struct {
	audioDir string
	baseURL  string
	client   *http.Client
}

// NewTTSService creates a TTS service writing into audioDir
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		baseURL:  GoogleTTSURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// WithEndpoint points the service at another TTS endpoint
func (s *TTSService) WithEndpoint(baseURL string, client *http.Client) *TTSService {
	s.baseURL = baseURL
	if client != nil {
		s.client = client
	}
	return s
}

// Filename returns the cache file name for text at the given speed
func Filename(text string, slow bool) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidText
	}
	if slow {
		return fmt.Sprintf("word_%s_slow.mp3", b.String()), nil
	}
	return fmt.Sprintf("word_%s.mp3", b.String()), nil
}

// Synthesize returns the path of an MP3 for text, generating it on first use
func (s *TTSService) Synthesize(ctx context.Context, text string, slow bool) (string, error) {
	filename, err := Filename(text, slow)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(s.audioDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := s.generate(ctx, text, slow, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}
	return path, nil
}

func (s *TTSService) generate(ctx context.Context, text string, slow bool, outputPath string) error {
	speed := normalSpeed
	if slow {
		speed = slowSpeed
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("ttsspeed", speed)
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}
