package hass

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestNewClientValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{Token: "t"}},
		{"missing token", Config{URL: "http://ha.local:8123"}},
		{"bad scheme", Config{URL: "ha.local:8123", Token: "t"}},
		{"bad timeout", Config{URL: "http://ha.local:8123", Token: "t", Timeout: "soon"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewClient(c.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"message":"API running."}`))
	}))

	if _, err := client.Get(context.Background(), "/api/"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestGetStates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/states" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"entity_id":"light.bedroom","state":"on","attributes":{"friendly_name":"Bedroom Light"}},
			{"entity_id":"sensor.temp","state":"21.5"}
		]`))
	}))

	states, err := client.GetStates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}
	if states[0].FriendlyName() != "Bedroom Light" {
		t.Errorf("friendly name = %q", states[0].FriendlyName())
	}
	if states[1].FriendlyName() != "" {
		t.Errorf("friendly name = %q, want empty", states[1].FriendlyName())
	}
}

func TestGetStateNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Entity not found."}`))
	}))

	_, err := client.GetState(context.Background(), "light.nope")
	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if herr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", herr.StatusCode)
	}
	if herr.Message != "Entity not found." {
		t.Errorf("Message = %q", herr.Message)
	}
}

func TestCallServiceReturnResponseRetry(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		if r.URL.RawQuery == "return_response" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Service does not support responses"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))

	result, err := client.CallService(context.Background(), "light", "turn_on",
		map[string]any{"entity_id": "light.bedroom"})
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != `[]` {
		t.Errorf("result = %s", result)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d requests, want retry (2): %v", len(paths), paths)
	}
	if paths[0] != "/api/services/light/turn_on?return_response" {
		t.Errorf("first request = %q", paths[0])
	}
	if paths[1] != "/api/services/light/turn_on" {
		t.Errorf("second request = %q", paths[1])
	}
}

func TestCallServiceWithResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"service_response":{"weather.home":{"forecast":[]}}}`))
	}))

	result, err := client.CallService(context.Background(), "weather", "get_forecasts", nil)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(result, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, ok := decoded["service_response"]; !ok {
		t.Errorf("missing service_response in %s", result)
	}
}

func TestCallServiceNon400ErrorNotRetried(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.CallService(context.Background(), "light", "turn_on", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestParseErrorLongBodyOmitted(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write(make([]byte, 4096))
	}))

	_, err := client.Get(context.Background(), "/api/states")
	var herr *Error
	if !errors.As(err, &herr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if herr.Message != "" {
		t.Errorf("long body should not become the message, got %q", herr.Message)
	}
}

func TestIsAvailable(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"API running."}`))
	}))
	if !client.IsAvailable(context.Background()) {
		t.Error("IsAvailable = false against healthy server")
	}
	srv.Close()
	if client.IsAvailable(context.Background()) {
		t.Error("IsAvailable = true against closed server")
	}
}
