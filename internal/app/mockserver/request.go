package mockserver

import (
	"net/http"
	"net/url"
)

// RequestDescriptor is the part of an inbound request used for matching.
type RequestDescriptor struct {
	Method string
	Path   string
	Query  url.Values
}

func NewRequestDescriptor(req *http.Request) RequestDescriptor {
	return RequestDescriptor{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
	}
}
