package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shearbook/salon-scheduling/internal/booking"
	redisclient "github.com/shearbook/salon-scheduling/internal/redis"
)

func newTestRouter() http.Handler {
	// Request validation runs before any service call, so the invalid-input
	// paths are exercised without backing services.
	return NewRouter(RouterConfig{Location: time.UTC, Env: "test", Version: "test"})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestAvailabilityHandlerValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name      string
		url       string
		wantError string
	}{
		{"missing params", "/availability", "invalid_argument"},
		{"missing date", "/availability?service_id=5f8fdc9a-5c1a-4a9c-9a61-111111111111", "invalid_argument"},
		{"bad service id", "/availability?service_id=nope&date=2026-03-02", "invalid_service_id"},
		{"bad date", "/availability?service_id=5f8fdc9a-5c1a-4a9c-9a61-111111111111&date=03/02/2026", "invalid_date"},
		{"bad technician id", "/availability?service_id=5f8fdc9a-5c1a-4a9c-9a61-111111111111&date=2026-03-02&technician_id=nope", "invalid_technician_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.url, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestCreateAppointmentHandlerValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"malformed json", "{", "invalid_request_body"},
		{"bad technician id", `{"technician_id":"nope"}`, "invalid_technician_id"},
		{
			"bad start time",
			`{"technician_id":"5f8fdc9a-5c1a-4a9c-9a61-111111111111",
			  "client_id":"5f8fdc9a-5c1a-4a9c-9a61-222222222222",
			  "service_id":"5f8fdc9a-5c1a-4a9c-9a61-333333333333",
			  "start_time":"tomorrow"}`,
			"invalid_start_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/appointments", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestTransitionHandlerRejectsBadID(t *testing.T) {
	router := newTestRouter()

	for _, action := range []string{"confirm", "cancel", "complete", "no-show"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/appointments/not-a-uuid/"+action, nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", action, rec.Code)
		}
	}
}

func TestHandleBookingError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantError  string
	}{
		{booking.ErrClientNotFound, http.StatusNotFound, "client_not_found"},
		{booking.ErrTechnicianNotFound, http.StatusNotFound, "technician_not_found"},
		{booking.ErrServiceNotFound, http.StatusNotFound, "service_not_found"},
		{booking.ErrAppointmentNotFound, http.StatusNotFound, "appointment_not_found"},
		{booking.ErrTechnicianInactive, http.StatusConflict, "technician_inactive"},
		{booking.ErrTimeSlotConflict, http.StatusConflict, "time_slot_conflict"},
		{booking.ErrInvalidStatusTransition, http.StatusConflict, "invalid_status_transition"},
		{booking.ErrTechnicianBeingBooked, http.StatusConflict, "technician_being_booked"},
		{redisclient.ErrLockNotAcquired, http.StatusConflict, "technician_being_booked"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handleBookingError(rec, tt.err)

		if rec.Code != tt.wantStatus {
			t.Fatalf("%v: status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
		if resp := decodeError(t, rec); resp.Error != tt.wantError {
			t.Fatalf("%v: error = %q, want %q", tt.err, resp.Error, tt.wantError)
		}
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"-5", 0},
		{"42", 42},
	}
	for _, tt := range tests {
		if got := parseIntParam(tt.in); got != tt.want {
			t.Fatalf("parseIntParam(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
