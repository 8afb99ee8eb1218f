package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInterrupted is returned by Play when a newer Play call took over
var ErrInterrupted = errors.New("playback interrupted")

// Synthesizer produces an audio file for text
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, slow bool) (string, error)
}

// Player allows at most one active utterance: starting a new one cancels
// the one in flight.
type Player struct {
	synth Synthesizer

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewPlayer(synth Synthesizer) *Player {
	return &Player{synth: synth}
}

// Play stops any in-flight utterance and synthesizes text
func (p *Player) Play(ctx context.Context, text string, slow bool) (string, error) {
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	id := p.seq
	p.cancel = cancel
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		if p.seq == id {
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}()

	path, err := p.synth.Synthesize(ctx, text, slow)
	if err != nil {
		if p.superseded(id) {
			return "", fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return "", err
	}
	if p.superseded(id) {
		return "", ErrInterrupted
	}
	return path, nil
}

// Stop cancels the in-flight utterance, if any
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.seq++
}

func (p *Player) superseded(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq != id
}

// Players keeps one Player per key, normally a username
type Players struct {
	synth Synthesizer

	mu      sync.Mutex
	players map[string]*Player
}

func NewPlayers(synth Synthesizer) *Players {
	return &Players{synth: synth, players: make(map[string]*Player)}
}

// For returns the player for key, creating it on first use
func (ps *Players) For(key string) *Player {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.players[key]
	if !ok {
		p = NewPlayer(ps.synth)
		ps.players[key] = p
	}
	return p
}

// Len returns the number of players held
func (ps *Players) Len() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.players)
}

// Remove stops and forgets the player for key
func (ps *Players) Remove(key string) {
	ps.mu.Lock()
	p, ok := ps.players[key]
	delete(ps.players, key)
	ps.mu.Unlock()
	if ok {
		p.Stop()
	}
}
