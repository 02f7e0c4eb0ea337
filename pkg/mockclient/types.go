package mockclient

type FixtureSummary struct {
	File    string `json:"file"`
	Enabled bool   `json:"enabled"`
	Method  string `json:"method,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

type fixtureList struct {
	Fixtures []FixtureSummary `json:"fixtures"`
}
