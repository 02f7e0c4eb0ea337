package mockserver

import (
	"github.com/form3tech-oss/mock-server/internal/app/fixtures"
	"github.com/form3tech-oss/mock-server/internal/app/metrics"
	log "github.com/sirupsen/logrus"
)

type Matcher struct {
	store   *fixtures.Store
	metrics *metrics.Recorder
}

func NewMatcher(store *fixtures.Store, recorder *metrics.Recorder) *Matcher {
	return &Matcher{
		store:   store,
		metrics: recorder,
	}
}

// Match returns the first enabled fixture, in file name order, whose criteria
// accept the request. Files that fail to parse are skipped. A nil fixture
// with a nil error means nothing matched.
func (m *Matcher) Match(req RequestDescriptor) (*fixtures.Fixture, error) {
	files, err := m.store.List()
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		fixture, err := m.store.Load(file)
		if err != nil {
			log.Warnf("%s. Skipping.", err.Error())
			m.metrics.FixtureParseFailed()
			continue
		}

		if !fixture.Enabled {
			continue
		}

		if criteriaMatch(fixture.Request, req) {
			return fixture, nil
		}
	}

	return nil, nil
}

func criteriaMatch(criteria fixtures.Request, req RequestDescriptor) bool {
	if criteria.Method == nil || *criteria.Method != req.Method {
		return false
	}
	if criteria.Path == nil || *criteria.Path != req.Path {
		return false
	}

	// extra query parameters on the request are ignored
	for _, param := range criteria.QueryParams {
		if !containsValue(req.Query[param.Key], param.Value) {
			return false
		}
	}
	return true
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
