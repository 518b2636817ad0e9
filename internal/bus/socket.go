package bus

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultWriteTimeout bounds a single write to a socket subscriber.
const DefaultWriteTimeout = 2 * time.Second

// DefaultSocketPath is the event socket in the user's runtime directory.
func DefaultSocketPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "x-tilewm.sock")
}

// SocketServer accepts unix socket clients and streams every event to them
// as "name>>data\n" lines. Clients that fail or stall are disconnected.
type SocketServer struct {
	b            *Broadcaster
	path         string
	writeTimeout time.Duration
}

func NewSocketServer(b *Broadcaster, path string) SocketServer {
	return SocketServer{
		b:            b,
		path:         path,
		writeTimeout: DefaultWriteTimeout,
	}
}

func (s SocketServer) String() string {
	return "bus.SocketServer"
}

func (s SocketServer) Serve(ctx context.Context) error {
	slog := slog.With("func", "bus.SocketServer.Serve", "path", s.path)

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	defer os.Remove(s.path)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("Listening for event subscribers")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			slog.Error("Failed to accept subscriber", "error", err)
			continue
		}

		if err := s.attach(ctx, conn); err != nil {
			conn.Close()
			if errors.Is(err, ErrBroadcasterClosed) {
				return err
			}
		}
	}
}

func (s SocketServer) attach(ctx context.Context, conn net.Conn) error {
	eventC, unsubscribe, err := s.b.Subscribe(ctx)
	if err != nil {
		return err
	}

	// Reads only detect the client hanging up.
	go func() {
		io.Copy(io.Discard, conn)
		unsubscribe()
	}()

	go func() {
		defer conn.Close()
		defer unsubscribe()

		for ev := range eventC {
			if s.writeTimeout > 0 {
				conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := io.WriteString(conn, ev.Wire()); err != nil {
				slog.Debug("Dropping socket subscriber", "error", err)
				return
			}
		}
	}()

	return nil
}

// ParseWire parses a line produced by Event.Wire.
func ParseWire(line string) (Event, bool) {
	line = strings.TrimSuffix(line, "\n")
	name, data, ok := strings.Cut(line, ">>")
	if !ok {
		return Event{}, false
	}
	return Event{Name: name, Data: data}, true
}

// Dial connects to a socket server and calls fn for every event until ctx is
// done or the server hangs up.
func Dial(ctx context.Context, path string, fn func(Event)) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ev, ok := ParseWire(scanner.Text()); ok {
			fn(ev)
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return scanner.Err()
}
