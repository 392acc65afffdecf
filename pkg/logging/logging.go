// Package logging wires zerolog for the CLI and provides the hit-level event
// used to report confirmed secret findings regardless of the global level.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel switches the global level to debug when verbose is requested.
func SetLogLevel(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Verbose log output enabled")
	}
}

// HitWriter rewrites the level of marked events to "hit" in the JSON output,
// so findings stand out from operational logs and survive level filtering.
type HitWriter struct {
	out       io.Writer
	mu        sync.Mutex
	nextIsHit bool
}

// NewHitWriter wraps out.
func NewHitWriter(out io.Writer) *HitWriter {
	return &HitWriter{out: out}
}

func (w *HitWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	isHit := w.nextIsHit
	w.nextIsHit = false
	w.mu.Unlock()

	if isHit && len(p) > 0 {
		var entry map[string]interface{}
		if err := json.Unmarshal(p, &entry); err == nil {
			entry["level"] = "hit"
			delete(entry, "_hit")
			if rewritten, err := json.Marshal(entry); err == nil {
				rewritten = append(rewritten, '\n')
				return w.out.Write(rewritten)
			}
		}
	}

	return w.out.Write(p)
}

func (w *HitWriter) markNextAsHit() {
	w.mu.Lock()
	w.nextIsHit = true
	w.mu.Unlock()
}

// HitEvent is a finding-level log event.
type HitEvent struct {
	event  *zerolog.Event
	writer *HitWriter
}

func (h *HitEvent) Str(key string, val string) *HitEvent {
	h.event.Str(key, val)
	return h
}

func (h *HitEvent) Int(key string, val int) *HitEvent {
	h.event.Int(key, val)
	return h
}

func (h *HitEvent) Msg(msg string) {
	if h.writer != nil {
		h.writer.markNextAsHit()
	}
	h.event.Bool("_hit", true).Msg(msg)
}

var (
	globalHitWriter *HitWriter
	hitWriterOnce   sync.Once
)

// EnableJSONOutput switches the global logger to machine-readable JSON with
// hit-level rewriting. Without it findings still log, through whatever
// writer the root command configured.
func EnableJSONOutput() {
	hitWriterOnce.Do(func() {
		globalHitWriter = NewHitWriter(os.Stderr)
		log.Logger = zerolog.New(globalHitWriter).With().Timestamp().Logger()
	})
}

// Hit creates a finding event, always emitted regardless of global level.
// Example: logging.Hit().Str("type", "GitHub Personal Access Token").Msg("SECRET")
func Hit() *HitEvent {
	return &HitEvent{
		event:  log.WithLevel(zerolog.ErrorLevel),
		writer: globalHitWriter,
	}
}

// SetGlobalHitWriter replaces the global writer (tests only).
func SetGlobalHitWriter(writer *HitWriter) {
	globalHitWriter = writer
}
