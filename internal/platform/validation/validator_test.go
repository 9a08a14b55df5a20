package validation

import (
	"errors"
	"testing"
)

type sample struct {
	ID    int    `json:"jikanId" validate:"gt=0"`
	Title string `json:"title" validate:"required"`
	Kind  string `json:"status" validate:"omitempty,oneof=A B"`
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(sample{ID: 1, Title: "x", Kind: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Kind: "C"})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	for _, f := range []string{"jikanId", "title", "status"} {
		if _, ok := verr.Fields[f]; !ok {
			t.Fatalf("expected field %q in %v", f, verr.Fields)
		}
	}
	if verr.Fields["title"] != "is required" {
		t.Fatalf("unexpected title message %q", verr.Fields["title"])
	}
	if len(verr.Details()) != 3 {
		t.Fatalf("expected 3 details, got %v", verr.Details())
	}
}

func TestError_StableMessage(t *testing.T) {
	e := &Error{Fields: map[string]string{"title": "is required", "jikanId": "must be greater than 0"}}
	if got := e.Error(); got != "jikanId: must be greater than 0; title: is required" {
		t.Fatalf("unexpected message %q", got)
	}
}
