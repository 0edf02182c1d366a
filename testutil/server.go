// Package testutil provides helpers for client tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Response is one canned reply.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
	Delay   time.Duration
}

// JSON returns a response with the given status and body.
func JSON(status int, body string) Response {
	return Response{Status: status, Body: body}
}

// Problem returns an Orb-style error document.
func Problem(status int, typ, title, detail string) Response {
	doc, _ := json.Marshal(map[string]any{
		"type":   "https://docs.withorb.com/reference/error-responses#" + typ,
		"status": status,
		"title":  title,
		"detail": detail,
	})
	return Response{Status: status, Body: string(doc)}
}

// Recorded is a request the server received.
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server replays canned responses keyed by "METHOD /escaped/path" and
// records every request. When a route has several responses they are
// served in order and the last one repeats.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string][]Response
	hits     map[string]int
	requests []Recorded
}

// NewServer starts a server with no routes; unknown routes answer 404.
func NewServer() *Server {
	s := &Server{routes: map[string][]Response{}, hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// On registers responses for method and path. path is matched against the
// escaped request path, so "/customers/a%2Fb" must be written escaped.
func (s *Server) On(method, path string, responses ...Response) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = responses
	return s
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request. It panics if there is none.
func (s *Server) Last() Recorded {
	reqs := s.Requests()
	if len(reqs) == 0 {
		panic("testutil: no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.EscapedPath()

	s.mu.Lock()
	s.requests = append(s.requests, Recorded{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	responses := s.routes[key]
	idx := s.hits[key]
	s.hits[key]++
	s.mu.Unlock()

	if len(responses) == 0 {
		resp := Problem(http.StatusNotFound, "404-not-found", "Not found", fmt.Sprintf("no route for %s", key))
		writeResponse(w, resp)
		return
	}
	if idx >= len(responses) {
		idx = len(responses) - 1
	}
	resp := responses[idx]
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}
