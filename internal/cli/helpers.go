package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/aretw0/statemap/internal/config"
	"github.com/aretw0/statemap/internal/logging"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// Streams bundles the standard streams so commands can be driven from tests.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// NewLogger builds the application logger from the log settings.
// Debug forces the debug level. Logs go to Stderr so Stdout stays clean for
// documents and JSON-RPC.
func NewLogger(cfg config.LogConfig, debug bool) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(os.Stderr, level, logging.Format(cfg.Format)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// readInput reads path, or in when path is empty or "-".
func readInput(path string, in io.Reader) ([]byte, error) {
	if isStdio(path) {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or to out when path is empty or "-".
// Files are replaced through a temporary file in the same directory.
func writeOutput(path string, out io.Writer, data []byte) error {
	if isStdio(path) {
		_, err := out.Write(data)
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// resolveFormat picks the explicit format when given, else guesses from path.
func resolveFormat(explicit, path string) (codec.Format, error) {
	if explicit != "" {
		return codec.ParseFormat(explicit)
	}
	if isStdio(path) {
		return "", nil
	}
	return codec.FormatFromPath(path), nil
}

// decodeConfig parses a state configuration. Without a known format the
// content is sniffed.
func decodeConfig(data []byte, format codec.Format) (*domain.Document, error) {
	if format == "" {
		return codec.Sniff(data)
	}
	return codec.Decode(data, format)
}

// readConfig reads and parses the state configuration at path.
func readConfig(path, format string, in io.Reader) (*domain.Document, error) {
	f, err := resolveFormat(format, path)
	if err != nil {
		return nil, err
	}
	data, err := readInput(path, in)
	if err != nil {
		return nil, err
	}
	doc, err := decodeConfig(data, f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", displayName(path), err)
	}
	return doc, nil
}

func displayName(path string) string {
	if isStdio(path) {
		return "stdin"
	}
	return path
}
