// Package audio holds the audio engine contract and a silent implementation.
package audio

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("audio engine already running")

// Engine is the audio engine lifecycle consumed at startup.
type Engine interface {
	Init() error
	Shutdown()
}

// Silent accepts the audio lifecycle without opening an output device.
type Silent struct {
	mu      sync.Mutex
	running bool
	log     *zap.Logger
}

func NewSilent(log *zap.Logger) *Silent {
	return &Silent{log: log}
}

func (s *Silent) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true
	s.log.Debug("audio engine initialized", zap.String("device", "silent"))
	return nil
}

func (s *Silent) Shutdown() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Silent) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
