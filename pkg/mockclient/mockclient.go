package mockclient

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

// MockServer is a client for a running mock server.
type MockServer struct {
	client http.Client
	url    string
}

func New(url string) *MockServer {
	return &MockServer{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: strings.TrimSuffix(url, "/"),
	}
}

func (m *MockServer) Do(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, m.url+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	return m.client.Do(req)
}

func (m *MockServer) Get(path string) (*http.Response, error) {
	return m.Do(http.MethodGet, path, nil)
}

// IsReady succeeds once the server answers at all; every path belongs to the
// fixtures, so any status code will do.
func (m *MockServer) IsReady() error {
	res, err := m.Do(http.MethodHead, "/", nil)
	if err != nil {
		return err
	}
	return res.Body.Close()
}

func (m *MockServer) WaitUntilReady(attempts uint, delay time.Duration) error {
	return waitFor(m.IsReady, attempts, delay)
}

func waitFor(check retry.RetryableFunc, attempts uint, delay time.Duration) error {
	err := retry.Do(check,
		retry.Attempts(attempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errors.Wrap(err, "server not ready")
	}
	return nil
}
