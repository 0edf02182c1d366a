package orb

import (
	"net/http"
	"strings"
)

type authStrategy interface {
	Apply(req *http.Request)
}

type authChain []authStrategy

func (c authChain) Apply(req *http.Request) {
	for _, s := range c {
		if s == nil {
			continue
		}
		s.Apply(req)
	}
}

type bearerAuth struct {
	token string
}

func (b bearerAuth) Apply(req *http.Request) {
	if b.token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
}

// newBearerAuth accepts a raw API key or one already prefixed with "Bearer ".
func newBearerAuth(key string) bearerAuth {
	token := strings.TrimSpace(key)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return bearerAuth{token: token}
}

// headerAuth applies fixed headers configured on the client.
type headerAuth struct {
	header http.Header
}

func (h headerAuth) Apply(req *http.Request) {
	for k, vals := range h.header {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
}
