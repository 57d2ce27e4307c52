package validation

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
)

type registerPayload struct {
	Name     string `json:"name" binding:"required" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Role     string `json:"role" validate:"required,role"`
	Deadline string `json:"deadline" validate:"omitempty,date"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

func TestToDetails_FieldMessages(t *testing.T) {
	v := newValidator()
	err := v.Struct(registerPayload{Email: "nope", Password: "123", Role: "root", Deadline: "31/12/2025"})
	details := ToDetails(err)

	want := map[string]string{
		"name":     "is required",
		"email":    "must be a valid email",
		"password": "must be at least 6 characters long",
		"role":     "must be one of: user, admin",
		"deadline": "must be a date in YYYY-MM-DD format",
	}
	for field, msg := range want {
		if details[field] != msg {
			t.Errorf("details[%q] = %q, want %q", field, details[field], msg)
		}
	}
}

func TestToDetails_Valid(t *testing.T) {
	v := newValidator()
	err := v.Struct(registerPayload{Name: "A", Email: "a@b.co", Password: "secret1", Role: "admin", Deadline: "2025-12-31"})
	if err != nil {
		t.Fatalf("Struct: %v", err)
	}
	if err := v.Struct(registerPayload{Name: "A", Email: "a@b.co", Password: "secret1", Role: "user", Deadline: "2025-12-31T18:00:00Z"}); err != nil {
		t.Fatalf("Struct with RFC3339 deadline: %v", err)
	}
	if ToDetails(nil) != nil {
		t.Error("ToDetails(nil) should be nil")
	}
}

func TestToDetails_Payload(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)
	if got := ToDetails(err)["payload"]; got != "invalid json" {
		t.Errorf("payload = %q, want invalid json", got)
	}
	if got := ToDetails(io.EOF)["payload"]; got != "empty body" {
		t.Errorf("payload = %q, want empty body", got)
	}
}

func TestSummary(t *testing.T) {
	got := Summary(map[string]string{"title": "is required", "deadline": "is required"})
	if got != "deadline is required; title is required" {
		t.Errorf("Summary = %q", got)
	}
	if Summary(nil) != "invalid payload" {
		t.Errorf("Summary(nil) = %q", Summary(nil))
	}
}
