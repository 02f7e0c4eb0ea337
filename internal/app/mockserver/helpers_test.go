package mockserver

import (
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func request(t *testing.T, method, target string) RequestDescriptor {
	t.Helper()
	u, err := url.Parse(target)
	require.NoError(t, err)
	return RequestDescriptor{
		Method: method,
		Path:   u.Path,
		Query:  u.Query(),
	}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []RequestLog
}

func (l *recordingLogger) LogRequest(entry RequestLog) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *recordingLogger) all() []RequestLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RequestLog(nil), l.entries...)
}
