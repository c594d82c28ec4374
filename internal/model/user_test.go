package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSubmitResult_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(SubmitResult{IsFirst: true, Position: FirstPosition})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got := string(data); got != `{"isFirst":true,"position":1}` {
		t.Errorf("unexpected JSON: %s", got)
	}
}

func TestUser_JSONFieldNames(t *testing.T) {
	u := User{ID: 7, Name: "Ada", Email: "ada@example.com", Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, field := range []string{`"id":7`, `"name":"Ada"`, `"email":"ada@example.com"`, `"timestamp":"2024-01-02T03:04:05Z"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected %s in %s", field, data)
		}
	}
}

func TestIsBlank(t *testing.T) {
	tests := map[string]bool{
		"":           true,
		"   ":        true,
		"\t\n":       true,
		"ada":        false,
		" ada@x.io ": false,
	}
	for in, want := range tests {
		if got := IsBlank(in); got != want {
			t.Errorf("IsBlank(%q) = %v, want %v", in, got, want)
		}
	}
}
