package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/form3tech-oss/mock-server/internal/app/configuration"
	"github.com/form3tech-oss/mock-server/internal/app/mockserver"
	"github.com/form3tech-oss/mock-server/pkg/mockclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

type MockServerStage struct {
	t       *testing.T
	assert  *assert.Assertions
	require *require.Assertions
	dir     string

	fixtureName string
	fixtureDoc  string

	client  *mockclient.MockServer
	admin   *mockclient.Admin
	cancel  context.CancelFunc
	stopped chan error
	reloads int32

	response *http.Response
	body     []byte
	elapsed  time.Duration

	mu         sync.Mutex
	statuses   map[string][]int
	clientErrs []error
}

func NewMockServerStage(t *testing.T) (*MockServerStage, *MockServerStage, *MockServerStage, func()) {
	s := &MockServerStage{
		t:       t,
		assert:  assert.New(t),
		require: require.New(t),
		dir:     t.TempDir(),
	}

	return s, s, s, s.teardown
}

func (s *MockServerStage) and() *MockServerStage {
	return s
}

func (s *MockServerStage) teardown() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case err := <-s.stopped:
		s.assert.NoError(err)
	case <-time.After(5 * time.Second):
		s.t.Error("mock server did not stop")
	}
}

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func (s *MockServerStage) a_fixture_(name, method, path string) *MockServerStage {
	s.fixtureName = name
	s.fixtureDoc = "{}"
	s.set("request.method", method)
	s.set("request.path", path)
	return s.save()
}

func (s *MockServerStage) set(path string, value interface{}) {
	doc, err := sjson.Set(s.fixtureDoc, path, value)
	s.require.NoError(err)
	s.fixtureDoc = doc
}

func (s *MockServerStage) save() *MockServerStage {
	file := filepath.Join(s.dir, s.fixtureName)
	s.require.NoError(os.WriteFile(file, []byte(s.fixtureDoc), 0644))
	return s
}

func (s *MockServerStage) disabled() *MockServerStage {
	s.set("enabled", false)
	return s.save()
}

func (s *MockServerStage) requiring_query_param_(key, value string) *MockServerStage {
	s.set("request.queryParams."+key, value)
	return s.save()
}

func (s *MockServerStage) responding_with_status_(code int) *MockServerStage {
	s.set("response.statusCode", code)
	return s.save()
}

func (s *MockServerStage) responding_with_body_(raw string) *MockServerStage {
	doc, err := sjson.SetRaw(s.fixtureDoc, "response.body", raw)
	s.require.NoError(err)
	s.fixtureDoc = doc
	return s.save()
}

func (s *MockServerStage) responding_with_header_(name, value string) *MockServerStage {
	s.set("response.headers."+name, value)
	return s.save()
}

func (s *MockServerStage) responding_after_(seconds float64) *MockServerStage {
	s.set("response.delaySeconds", seconds)
	return s.save()
}

func (s *MockServerStage) a_malformed_fixture_(name string) *MockServerStage {
	s.require.NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(`{"invalid": json}`), 0644))
	return s
}

func (s *MockServerStage) a_running_mock_server() *MockServerStage {
	config := configuration.Defaults()
	config.Host = "127.0.0.1"
	config.Port = freePort(s.t)
	config.AdminPort = freePort(s.t)
	config.MockDir = s.dir
	config.PollInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan error, 1)

	go func() {
		for {
			reload, err := mockserver.Run(ctx, config)
			if err != nil || !reload {
				s.stopped <- err
				return
			}
			atomic.AddInt32(&s.reloads, 1)
		}
	}()

	s.client = mockclient.New(fmt.Sprintf("http://127.0.0.1:%d", config.Port))
	s.admin = mockclient.NewAdmin(fmt.Sprintf("http://127.0.0.1:%d", config.AdminPort))
	s.require.NoError(s.client.WaitUntilReady(100, 20*time.Millisecond))
	s.require.NoError(s.admin.WaitUntilReady(100, 20*time.Millisecond))
	return s
}

func (s *MockServerStage) a_request_is_sent_(method, target string) *MockServerStage {
	start := time.Now()
	res, err := s.client.Do(method, target, nil)
	s.require.NoError(err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	s.require.NoError(err)

	s.elapsed = time.Since(start)
	s.response = res
	s.body = body
	return s
}

func (s *MockServerStage) the_response_is_(code int) *MockServerStage {
	s.require.NotNil(s.response)
	s.assert.Equal(code, s.response.StatusCode)
	return s
}

func (s *MockServerStage) the_response_body_field_is_(path string, expected interface{}) *MockServerStage {
	var doc interface{}
	s.require.NoError(json.Unmarshal(s.body, &doc))

	actual, err := jsonpath.Get(path, doc)
	s.require.NoError(err)
	s.assert.Equal(expected, actual)
	return s
}

func (s *MockServerStage) the_response_body_is_(expected string) *MockServerStage {
	s.assert.Equal(expected, string(s.body))
	return s
}

func (s *MockServerStage) the_response_header_is_(name, expected string) *MockServerStage {
	s.assert.Equal(expected, s.response.Header.Get(name))
	return s
}

func (s *MockServerStage) the_request_took_at_least_(d time.Duration) *MockServerStage {
	s.assert.GreaterOrEqual(s.elapsed, d)
	return s
}

func (s *MockServerStage) eventually_a_request_to_(method, target string, code int) *MockServerStage {
	s.require.Eventually(func() bool {
		res, err := s.client.Do(method, target, nil)
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == code
	}, 5*time.Second, 20*time.Millisecond)
	return s
}

func (s *MockServerStage) the_server_has_reloaded() *MockServerStage {
	s.assert.GreaterOrEqual(atomic.LoadInt32(&s.reloads), int32(1))
	return s
}

func (s *MockServerStage) the_server_has_not_reloaded() *MockServerStage {
	s.assert.Equal(int32(0), atomic.LoadInt32(&s.reloads))
	return s
}

func (s *MockServerStage) the_admin_api_lists_(files ...string) *MockServerStage {
	fixtures, err := s.admin.Fixtures()
	s.require.NoError(err)

	var listed []string
	for _, f := range fixtures {
		listed = append(listed, filepath.Base(f.File))
	}
	s.assert.Equal(files, listed)
	return s
}

func (s *MockServerStage) x_concurrent_requests_are_sent_(x int, method, target string) *MockServerStage {
	if s.statuses == nil {
		s.statuses = map[string][]int{}
	}

	wg := sync.WaitGroup{}
	for i := 0; i < x; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.client.Do(method, target, nil)

			s.mu.Lock()
			defer s.mu.Unlock()
			if err != nil {
				s.clientErrs = append(s.clientErrs, err)
				return
			}
			res.Body.Close()
			s.statuses[target] = append(s.statuses[target], res.StatusCode)
		}()
	}
	wg.Wait()
	return s
}

func (s *MockServerStage) all_responses_for_(target string, x, code int) *MockServerStage {
	s.assert.Empty(s.clientErrs)
	s.assert.Len(s.statuses[target], x, "number of responses is not as expected")
	for _, status := range s.statuses[target] {
		s.assert.Equal(code, status, "expected status code for %s", target)
	}
	return s
}
