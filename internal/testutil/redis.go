package testutil

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-redis/redis/v8"
)

// FakeRedis answers the PING, GET, SET and DEL subset of RESP over in-memory
// pipes, so a real go-redis client can be exercised without a server.
type FakeRedis struct {
	mu     sync.Mutex
	values map[string]string
	calls  []string
}

// NewFakeRedis returns a client wired to a fresh FakeRedis. The client is
// closed when the test ends.
func NewFakeRedis(t *testing.T) (*redis.Client, *FakeRedis) {
	t.Helper()

	f := &FakeRedis{values: map[string]string{}}
	client := redis.NewClient(&redis.Options{
		Addr: "fake-redis:6379",
		Dialer: func(context.Context, string, string) (net.Conn, error) {
			server, conn := net.Pipe()
			go f.serve(server)
			return conn, nil
		},
	})
	t.Cleanup(func() { _ = client.Close() })
	return client, f
}

// Has reports whether key holds a value.
func (f *FakeRedis) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[key]
	return ok
}

// Calls returns the command names received so far, upper-cased.
func (f *FakeRedis) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeRedis) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if _, err := io.WriteString(conn, f.exec(args)); err != nil {
			return
		}
	}
}

func (f *FakeRedis) exec(args []string) string {
	if len(args) == 0 {
		return "-ERR empty command\r\n"
	}
	name := strings.ToUpper(args[0])

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)

	switch {
	case name == "PING":
		return "+PONG\r\n"
	case name == "GET" && len(args) == 2:
		v, ok := f.values[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return fmt.Sprintf("$%d\r\n%s\r\n", len(v), v)
	case name == "SET" && len(args) >= 3:
		f.values[args[1]] = args[2]
		return "+OK\r\n"
	case name == "DEL" && len(args) >= 2:
		n := 0
		for _, k := range args[1:] {
			if _, ok := f.values[k]; ok {
				delete(f.values, k)
				n++
			}
		}
		return fmt.Sprintf(":%d\r\n", n)
	}
	return fmt.Sprintf("-ERR unsupported command '%s'\r\n", name)
}

// readCommand reads one RESP array of bulk strings.
func readCommand(r *bufio.Reader) ([]string, error) {
	n, err := readHeader(r, '*')
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		size, err := readHeader(r, '$')
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func readHeader(r *bufio.Reader, prefix byte) (int, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" || line[0] != prefix {
		return 0, fmt.Errorf("unexpected RESP line %q", line)
	}
	return strconv.Atoi(line[1:])
}
