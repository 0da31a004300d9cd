package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// spinnerFrames cycles a braille dot pattern.
var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

// Spinner animates a message on stderr while a pipeline stage runs,
// appending the elapsed time so long layout searches visibly make
// progress. It stops on its own when the command's context is cancelled.
type Spinner struct {
	message string
	out     io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	halt    sync.Once
	done    chan struct{}
	started bool
}

// newSpinner creates a spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner tied to ctx.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		ctx:     sctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start begins the animation in a background goroutine.
func (s *Spinner) Start() {
	s.started = true
	begun := time.Now()
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.erase()
				return
			case <-ticker.C:
				glyph := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)])
				elapsed := time.Since(begun).Truncate(100 * time.Millisecond)
				fmt.Fprintf(s.out, "\r%s %s", glyph, StyleDim.Render(fmt.Sprintf("%s (%s)", s.message, elapsed)))
			}
		}
	}()
}

// Stop ends the animation and waits for the line to clear. Safe to call
// more than once.
func (s *Spinner) Stop() {
	s.halt.Do(func() {
		s.cancel()
		if s.started {
			<-s.done
		}
	})
}

// erase clears the spinner's line. Only the animation goroutine writes to
// out, so the erase happens there before it exits.
func (s *Spinner) erase() {
	fmt.Fprint(s.out, "\r\x1b[K")
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context ended.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
