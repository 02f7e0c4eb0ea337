package mockclient

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Admin is a client for the optional admin API of a mock server.
type Admin struct {
	client http.Client
	url    string
}

func NewAdmin(url string) *Admin {
	return &Admin{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: strings.TrimSuffix(url, "/"),
	}
}

func (a *Admin) IsReady() error {
	res, err := a.client.Get(a.url + "/ready")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("admin API not ready. %d", res.StatusCode)
	}
	return nil
}

func (a *Admin) WaitUntilReady(attempts uint, delay time.Duration) error {
	return waitFor(a.IsReady, attempts, delay)
}

// Fixtures lists the fixture files the server currently sees, in match order.
func (a *Admin) Fixtures() ([]FixtureSummary, error) {
	res, err := a.client.Get(a.url + "/fixtures")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read fixtures")
	}
	if res.StatusCode != http.StatusOK {
		return nil, errors.New(strings.TrimSpace(string(body)))
	}

	var list fixtureList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.Wrap(err, "decode fixtures")
	}
	return list.Fixtures, nil
}
