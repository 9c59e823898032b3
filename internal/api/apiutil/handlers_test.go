package apiutil

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsUnknownAndTrailing(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Ocean"}`},
		{name: "unknown_field", body: `{"name":"Ocean","extra":1}`, wantErr: true},
		{name: "trailing_value", body: `{"name":"Ocean"}{}`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var dst payload
			err := DecodeJSONReader(strings.NewReader(test.body), &dst)
			if (err != nil) != test.wantErr {
				t.Fatalf("DecodeJSONReader error = %v, wantErr %t", err, test.wantErr)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WriteJSON(rec, 201, map[string]bool{"success": true}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if rec.Code != 201 {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	if _, err := RequiredString("  ", "themeId"); err == nil || err.Error() != "themeId is required" {
		t.Fatalf("RequiredString error = %v", err)
	}
	blank := "   "
	if OptionalString(&blank) != nil {
		t.Fatalf("expected blank optional string to be nil")
	}

	limit, err := IntInRange(nil, 20, 1, 100, "limit")
	if err != nil || limit != 20 {
		t.Fatalf("IntInRange default = %d, %v", limit, err)
	}
	tooMany := 101
	_, err = IntInRange(&tooMany, 20, 1, 100, "limit")
	var fieldErr FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "limit" {
		t.Fatalf("IntInRange error = %v", err)
	}

	negative := -1
	if _, err := NonNegativeInt(&negative, 0, "offset"); err == nil {
		t.Fatalf("expected negative offset to fail")
	}
}
