// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// busySpinner animates on a terminal line while a reply is pending. It
// satisfies chat.Indicator and can be started again after Stop.
type busySpinner struct {
	out     io.Writer
	frames  spinner.Spinner
	style   lipgloss.Style
	message string

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

func newBusySpinner(out io.Writer, message string) *busySpinner {
	return &busySpinner{
		out:     out,
		frames:  spinner.MiniDot,
		style:   SpinnerStyle,
		message: message,
	}
}

// Start begins the animation. It is a no-op while already running.
func (s *busySpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.loop(s.stop, s.done)
}

// Stop ends the animation and clears its line before returning, so the
// caller can write to the terminal immediately.
func (s *busySpinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *busySpinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := s.frames.FPS
	if fps <= 0 {
		fps = 100 * time.Millisecond
	}
	ticker := time.NewTicker(fps)
	defer ticker.Stop()

	frame := 0
	s.render(frame)
	for {
		select {
		case <-stop:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			frame++
			s.render(frame)
		}
	}
}

func (s *busySpinner) render(frame int) {
	glyph := s.frames.Frames[frame%len(s.frames.Frames)]
	fmt.Fprintf(s.out, "\r\033[K%s %s", s.style.Render(glyph), DimStyle.Render(s.message))
}
