package mockserver

import (
	"math"
	"net/http"
	"time"

	"github.com/form3tech-oss/mock-server/internal/app/fixtures"
	"github.com/tidwall/gjson"
)

// PlannedResponse is everything needed to answer a matched request.
type PlannedResponse struct {
	StatusCode int
	Headers    []fixtures.Header
	Body       []byte
	Delay      time.Duration
}

func Plan(fixture *fixtures.Fixture) PlannedResponse {
	response := fixture.Response

	planned := PlannedResponse{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
	}
	if planned.StatusCode == 0 {
		planned.StatusCode = http.StatusOK
	}

	if response.DelaySeconds > 0 {
		planned.Delay = delay(response.DelaySeconds)
	}

	if len(response.Body) > 0 && fixtures.Truthy(gjson.ParseBytes(response.Body)) {
		planned.Body = response.Body
	}

	return planned
}

const maxDelay = time.Duration(math.MaxInt64)

// delay converts seconds to a Duration, saturating instead of overflowing.
func delay(seconds float64) time.Duration {
	nanos := seconds * float64(time.Second)
	if nanos >= float64(maxDelay) {
		return maxDelay
	}
	return time.Duration(nanos)
}

func (p PlannedResponse) hasHeader(name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	for _, h := range p.Headers {
		if http.CanonicalHeaderKey(h.Name) == canonical {
			return true
		}
	}
	return false
}
