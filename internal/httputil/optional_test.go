package httputil

import (
	"encoding/json"
	"testing"
)

func TestOptionalStringUnmarshal(t *testing.T) {
	type payload struct {
		Title   OptionalString `json:"title"`
		Content OptionalString `json:"content"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"title": "hello", "content": null}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !p.Title.Present || p.Title.Value == nil || *p.Title.Value != "hello" {
		t.Errorf("title = %+v, want present with value", p.Title)
	}
	if !p.Content.Present || p.Content.Value != nil {
		t.Errorf("content = %+v, want present null", p.Content)
	}

	var q payload
	if err := json.Unmarshal([]byte(`{}`), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if q.Title.Present {
		t.Errorf("absent field parsed as present: %+v", q.Title)
	}
}
