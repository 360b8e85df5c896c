package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shearbook/salon-scheduling/internal/recurrence"
)

func createTemplateHandler(svc *recurrence.Service, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTemplateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_client_id", "client_id must be a valid UUID")
			return
		}
		technicianID, err := uuid.Parse(req.TechnicianID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_technician_id", "technician_id must be a valid UUID")
			return
		}
		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}

		startDate, err := time.ParseInLocation("2006-01-02", req.StartDate, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start_date", "start_date must be YYYY-MM-DD")
			return
		}

		var endDate *time.Time
		if req.EndDate != nil && *req.EndDate != "" {
			d, err := time.ParseInLocation("2006-01-02", *req.EndDate, loc)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_end_date", "end_date must be YYYY-MM-DD")
				return
			}
			// Inclusive end date: occurrences on the last day still count.
			d = d.AddDate(0, 0, 1).Add(-time.Second)
			endDate = &d
		}

		tmpl := recurrence.Template{
			ClientID:      clientID,
			TechnicianID:  technicianID,
			ServiceID:     serviceID,
			Frequency:     recurrence.Frequency(req.Frequency),
			DayOfWeek:     req.DayOfWeek,
			DayOfMonth:    req.DayOfMonth,
			PreferredTime: req.PreferredTime,
			StartDate:     startDate,
			EndDate:       endDate,
		}

		created, err := svc.CreateTemplate(r.Context(), tmpl)
		if err != nil {
			handleTemplateError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toTemplateResponse(created))
	}
}

func listTemplatesHandler(svc *recurrence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"

		templates, err := svc.ListTemplates(r.Context(), activeOnly)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]TemplateResponse, 0, len(templates))
		for i := range templates {
			out = append(out, toTemplateResponse(&templates[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func deactivateTemplateHandler(svc *recurrence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_template_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeactivateTemplate(r.Context(), id); err != nil {
			if errors.Is(err, recurrence.ErrTemplateNotFound) {
				writeError(w, http.StatusNotFound, "template_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func generateHandler(svc *recurrence.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := GenerateRequest{DaysAhead: recurrence.DefaultHorizonDays}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
		}

		result, err := svc.Generate(r.Context(), req.DaysAhead)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := GenerateResponse{
			Generated:    result.Generated,
			Appointments: make([]GeneratedAppointmentResponse, 0, len(result.Appointments)),
		}
		for _, a := range result.Appointments {
			resp.Appointments = append(resp.Appointments, GeneratedAppointmentResponse{
				ID:        a.ID,
				StartTime: a.StartTime,
				ClientID:  a.ClientID,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleTemplateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recurrence.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, recurrence.ErrInvalidTemplate):
		writeError(w, http.StatusBadRequest, "invalid_template", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func toTemplateResponse(t *recurrence.Template) TemplateResponse {
	return TemplateResponse{
		ID:             t.ID,
		ClientID:       t.ClientID,
		TechnicianID:   t.TechnicianID,
		ServiceID:      t.ServiceID,
		Frequency:      string(t.Frequency),
		DayOfWeek:      t.DayOfWeek,
		DayOfMonth:     t.DayOfMonth,
		PreferredTime:  t.PreferredTime,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		NextOccurrence: t.NextOccurrence,
		Active:         t.Active,
	}
}
