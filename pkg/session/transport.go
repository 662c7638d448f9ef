package session

import (
	"net/http"
)

// Transport is an http.RoundTripper that attaches the session's access
// token to outgoing requests. On a 401 response it attempts exactly one
// refresh and replays the original request; if the refresh itself fails the
// session is cleared and the 401 is returned to the caller.
type Transport struct {
	Controller *Controller
	Base       http.RoundTripper
}

// NewClient returns an *http.Client whose requests carry the session token
func (c *Controller) NewClient() *http.Client {
	return &http.Client{
		Transport: &Transport{Controller: c},
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.send(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A replay needs a rewindable body
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if err := t.Controller.refresh(req.Context()); err != nil {
		t.Controller.clearSession()
		return resp, nil
	}

	resp.Body.Close()
	return t.send(req)
}

// send clones the request, attaches the current token and forwards it
func (t *Transport) send(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}

	if token := t.Controller.Token(); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}

	return t.base().RoundTrip(clone)
}
