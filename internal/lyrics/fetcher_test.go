package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/the weeknd/blinding lights" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"lyrics": "I been tryna call"}`)
	}))
	defer server.Close()

	f := NewFetcher(WithBaseURL(server.URL))

	got, ok := f.Fetch(context.Background(), "Blinding Lights", "The Weeknd")
	if !ok {
		t.Fatal("expected lyrics, got absence")
	}
	if got != "I been tryna call" {
		t.Errorf("lyrics = %q", got)
	}
}

func TestFetchAbsence(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error": "No lyrics found"}`, http.StatusNotFound)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json")
			},
		},
		{
			name: "missing lyrics field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			f := NewFetcher(WithBaseURL(server.URL))

			if got, ok := f.Fetch(context.Background(), "Song", "Artist"); ok {
				t.Errorf("expected absence, got %q", got)
			}
		})
	}
}

func TestFetchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	f := NewFetcher(WithBaseURL(server.URL))

	if got, ok := f.Fetch(context.Background(), "Song", "Artist"); ok {
		t.Errorf("expected absence on transport failure, got %q", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`  Don't Stop Me Now `, "dont stop me now"},
		{`"Heroes"`, "heroes"},
		{"ALREADY LOWER", "already lower"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitize(tt.in); got != tt.want {
				t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
