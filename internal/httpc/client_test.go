package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"names": ["wave", "walk"]}`))
	}))
	defer srv.Close()

	var out struct {
		Names []string `json:"names"`
	}
	if err := GetJSON(context.Background(), srv.URL+"/api", &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if len(out.Names) != 2 || out.Names[0] != "wave" {
		t.Errorf("Unexpected response: %+v", out)
	}

	err := GetJSON(context.Background(), srv.URL+"/missing", &out)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 StatusError, got %v", err)
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"echo": in["animation"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := PostJSON(context.Background(), srv.URL, map[string]string{"animation": "wave"}, &out)
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	if out["echo"] != "wave" {
		t.Errorf("Expected echo 'wave', got %v", out)
	}
}
