// Package playback drives the audio output. Streams play through an mpv
// subprocess; volume goes through the ALSA mixer so it also applies to a
// stream that is already running.
package playback

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// MPVPlayer implements ports.Player with one mpv process per stream.
type MPVPlayer struct {
	log      *slog.Logger
	mediaDir string

	mu     sync.Mutex
	cmd    *exec.Cmd
	volume float64
}

var _ ports.Player = (*MPVPlayer)(nil)

// New creates a player. mediaDir is where local fallback files live;
// initialVolume is applied to the mixer immediately.
func New(mediaDir string, initialVolume float64, log *slog.Logger) *MPVPlayer {
	if log == nil {
		log = slog.Default()
	}
	p := &MPVPlayer{log: log, mediaDir: mediaDir, volume: initialVolume}
	if err := p.applyMixer(initialVolume); err != nil {
		log.Warn("cannot set initial mixer volume", "error", err)
	}
	return p
}

// Play starts the effect, replacing a running stream. Effect URLs without
// a scheme are resolved against the media directory.
func (p *MPVPlayer) Play(effect domain.StreamAudioEffect) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	target := effect.Stream.URL
	if !strings.Contains(target, "://") {
		target = filepath.Join(p.mediaDir, target)
	}

	cmd := exec.Command("mpv", "--no-video", "--really-quiet", target)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start playback of %q: %w", effect.Title(), err)
	}
	p.cmd = cmd
	p.log.Info("playback started", "title", effect.Title(), "volume", effect.Volume)

	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
	}()

	p.volume = effect.Volume
	if err := p.applyMixer(effect.Volume); err != nil {
		p.log.Warn("cannot set mixer volume", "error", err)
	}
	return nil
}

// Stop kills the running stream, if any.
func (p *MPVPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *MPVPlayer) stopLocked() {
	if p.cmd == nil {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil {
		p.log.Warn("cannot kill player process", "error", err)
	}
	p.cmd = nil
}

// Playing reports whether a stream process is running.
func (p *MPVPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// Volume returns the last volume set through this player.
func (p *MPVPlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume adjusts the mixer, clamped to [0, 1].
func (p *MPVPlayer) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
	return p.applyMixer(v)
}

func (p *MPVPlayer) applyMixer(v float64) error {
	percent := fmt.Sprintf("%d%%", int(v*100+0.5))
	if err := exec.Command("amixer", "sset", "Master", percent).Run(); err != nil {
		return fmt.Errorf("set mixer to %s: %w", percent, err)
	}
	return nil
}
