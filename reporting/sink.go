// Package reporting is the single surface that recoverable pipeline failures
// are funneled through instead of halting a run.
package reporting

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

type Sink interface {
	Warn(msg string)
	Error(msg string)
}

// LogSink forwards diagnostics to logrus, tagged with a fixed set of fields.
type LogSink struct {
	fields log.Fields
}

func NewLogSink(fields log.Fields) *LogSink {
	return &LogSink{fields: fields}
}

func (s *LogSink) Warn(msg string) {
	log.WithFields(s.fields).Warn(msg)
}

func (s *LogSink) Error(msg string) {
	log.WithFields(s.fields).Error(msg)
}

// Recorder keeps every diagnostic in memory and optionally forwards it to
// another sink.
type Recorder struct {
	next Sink

	mu       sync.Mutex
	warnings []string
	errors   []string
}

func NewRecorder(next Sink) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Warn(msg string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Warn(msg)
	}
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	r.errors = append(r.errors, msg)
	r.mu.Unlock()
	if r.next != nil {
		r.next.Error(msg)
	}
}

func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.warnings, r.errors = nil, nil
	r.mu.Unlock()
}
