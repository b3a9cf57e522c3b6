package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDeliverStripsSuffix(t *testing.T) {
	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, time.Second, zerolog.Nop())
	if err := f.Deliver(context.Background(), "5511988887777@c.us", "Sim"); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if got.From != "5511988887777" || got.Body != "Sim" {
		t.Errorf("got %+v", got)
	}
	if !strings.HasPrefix(contentType, "application/json") {
		t.Errorf("got content type %q", contentType)
	}
}

func TestDeliverNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, time.Second, zerolog.Nop())
	err := f.Deliver(context.Background(), "1@c.us", "x")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("got %v, want 400 error", err)
	}
}

func TestDeliverUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewForwarder(url, time.Second, zerolog.Nop())
	if err := f.Deliver(context.Background(), "1@c.us", "x"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestForwardOnePostPerMessage(t *testing.T) {
	hits := make(chan Payload, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		json.NewDecoder(r.Body).Decode(&p)
		hits <- p
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, time.Second, zerolog.Nop())
	f.Forward("5511000000001@c.us", "a")
	f.Forward("5511000000002@c.us", "b")

	seen := map[string]string{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-hits:
			seen[p.From] = p.Body
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for webhook")
		}
	}
	if seen["5511000000001"] != "a" || seen["5511000000002"] != "b" {
		t.Errorf("got %v", seen)
	}

	select {
	case p := <-hits:
		t.Fatalf("unexpected extra delivery %+v", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestForwardDisabled(t *testing.T) {
	f := NewForwarder("", 0, zerolog.Nop())
	// Must not panic or block without an endpoint.
	f.Forward("1@c.us", "x")
}
