package validation

import (
	"strings"
	"testing"
)

type ingestParams struct {
	OwnerID  string `json:"owner_id" validate:"required,uuid4"`
	MimeType string `json:"mime_type" validate:"required"`
}

func TestValidateStruct_OK(t *testing.T) {
	p := ingestParams{OwnerID: "8a1b66a2-9c3b-4f44-a27c-bf9a9f2a6c8a", MimeType: "video/mp4"}
	if err := ValidateStruct(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStruct_ReportsJsonFieldNames(t *testing.T) {
	err := ValidateStruct(ingestParams{})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	out, jsonErr := ErrorsToJson(err)
	if jsonErr != nil {
		t.Fatalf("unexpected error: %v", jsonErr)
	}
	if !strings.Contains(out, "owner_id") || !strings.Contains(out, "mime_type") {
		t.Errorf("expected JSON field names in %q", out)
	}
}
