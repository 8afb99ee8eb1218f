package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		text    string
		slow    bool
		want    string
		wantErr bool
	}{
		{text: "Cat", want: "word_cat.mp3"},
		{text: "ice cream", slow: true, want: "word_ice_cream_slow.mp3"},
		{text: "../etc/passwd", want: "word_etcpasswd.mp3"},
		{text: "well-known", want: "word_well-known.mp3"},
		{text: "  ", wantErr: true},
		{text: "../", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Filename(tt.text, tt.slow)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Filename(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	var hits int32
	var lastSpeed atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		lastSpeed.Store(r.URL.Query().Get("ttsspeed"))
		if r.URL.Query().Get("q") == "fail" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "audio")
	tts := NewTTSService(dir).WithEndpoint(srv.URL, srv.Client())
	ctx := context.Background()

	path, err := tts.Synthesize(ctx, "cat", false)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if filepath.Base(path) != "word_cat.mp3" {
		t.Errorf("path = %s", path)
	}
	if data, _ := os.ReadFile(path); string(data) != "ID3fake" {
		t.Errorf("file contents = %q", data)
	}
	if lastSpeed.Load() != normalSpeed {
		t.Errorf("ttsspeed = %v, want %s", lastSpeed.Load(), normalSpeed)
	}

	if _, err := tts.Synthesize(ctx, "cat", false); err != nil {
		t.Fatalf("cached Synthesize() error = %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("endpoint hit %d times, want 1", hits)
	}

	if _, err := tts.Synthesize(ctx, "cat", true); err != nil {
		t.Fatalf("slow Synthesize() error = %v", err)
	}
	if lastSpeed.Load() != slowSpeed {
		t.Errorf("ttsspeed = %v, want %s", lastSpeed.Load(), slowSpeed)
	}

	if _, err := tts.Synthesize(ctx, "fail", false); err == nil {
		t.Error("Synthesize() with failing endpoint error = nil")
	}
	if _, err := os.Stat(filepath.Join(dir, "word_fail.mp3")); !os.IsNotExist(err) {
		t.Error("failed synthesis left a file behind")
	}
}

// blockingSynth blocks until released or cancelled
type blockingSynth struct {
	started chan string
	release chan struct{}
}

func (b *blockingSynth) Synthesize(ctx context.Context, text string, slow bool) (string, error) {
	b.started <- text
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-b.release:
		return "/tmp/" + text + ".mp3", nil
	}
}

func TestPlayerCancelsInFlight(t *testing.T) {
	synth := &blockingSynth{started: make(chan string, 2), release: make(chan struct{})}
	player := NewPlayer(synth)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := player.Play(ctx, "first", false)
		firstErr <- err
	}()
	<-synth.started

	secondPath := make(chan string, 1)
	go func() {
		p, _ := player.Play(ctx, "second", false)
		secondPath <- p
	}()

	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrInterrupted) || !errors.Is(err, context.Canceled) {
			t.Fatalf("first Play() error = %v, want interrupted", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first Play() was not cancelled")
	}

	<-synth.started
	close(synth.release)
	if p := <-secondPath; p != "/tmp/second.mp3" {
		t.Errorf("second Play() = %q", p)
	}
}

type staticSynth struct{}

func (staticSynth) Synthesize(ctx context.Context, text string, slow bool) (string, error) {
	return text, nil
}

func TestPlayers(t *testing.T) {
	players := NewPlayers(staticSynth{})
	a := players.For("alice")
	if players.For("alice") != a {
		t.Error("For() returned a new player for the same key")
	}
	if players.For("bob") == a {
		t.Error("For() shared a player between keys")
	}

	if got, err := a.Play(context.Background(), "cat", false); err != nil || got != "cat" {
		t.Errorf("Play() = %q, %v", got, err)
	}

	if players.Len() != 2 {
		t.Errorf("Len() = %d, want 2", players.Len())
	}

	players.Remove("alice")
	if players.Len() != 1 {
		t.Errorf("Len() after Remove() = %d, want 1", players.Len())
	}
	if players.For("alice") == a {
		t.Error("Remove() kept the player")
	}
}
