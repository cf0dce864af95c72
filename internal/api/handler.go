package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"auditchain/internal/domain"
	"auditchain/internal/service"
)

// Handler serves the audit chain HTTP API.
type Handler struct {
	attestations *service.AttestationService
	events       *service.EventService
	logger       *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(attestations *service.AttestationService, events *service.EventService, logger *slog.Logger) *Handler {
	return &Handler{attestations: attestations, events: events, logger: logger}
}

// Routes registers all API endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tenants/{tenantID}/integrity", h.verifyIntegrity)
	r.Get("/tenants/{tenantID}/events", h.listEvents)
	r.Post("/tenants/{tenantID}/attestations", h.createAttestation)
	r.Get("/attestations", h.listAttestations)
	r.Get("/attestations/{id}", h.getAttestation)
	r.Post("/attestations/{id}/verify", h.verifyAttestation)
	r.Post("/events", h.appendEvent)
}

func (h *Handler) verifyIntegrity(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	start, end, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.attestations.VerifyIntegrity(r.Context(), tenantID, start, end)
	if err != nil {
		h.logger.Error("verify integrity failed", "tenant", tenantID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type createAttestationRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (h *Handler) createAttestation(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req createAttestationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	a, err := h.attestations.CreateManualAttestation(r.Context(), tenantID, req.Start, req.End)
	if err != nil {
		h.logger.Error("create attestation failed", "tenant", tenantID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attestationToAPI(a))
}

func (h *Handler) listAttestations(w http.ResponseWriter, r *http.Request) {
	filter := domain.AttestationFilter{Page: pageFromQuery(r)}
	if v := r.URL.Query().Get("tenantId"); v != "" {
		filter.TenantID = &v
	}

	items, total, err := h.attestations.ListAttestations(r.Context(), filter)
	if err != nil {
		h.logger.Error("list attestations failed", "error", err)
		writeDomainError(w, err)
		return
	}

	data := make([]Attestation, len(items))
	for i := range items {
		data[i] = attestationToAPI(&items[i])
	}
	writeJSON(w, http.StatusOK, paginated[Attestation]{
		Data:          data,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}

func (h *Handler) getAttestation(w http.ResponseWriter, r *http.Request) {
	a, err := h.attestations.GetAttestation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attestationToAPI(a))
}

func (h *Handler) verifyAttestation(w http.ResponseWriter, r *http.Request) {
	a, err := h.attestations.GetAttestation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	check, err := h.attestations.VerifyAttestation(r.Context(), a)
	if err != nil {
		h.logger.Error("verify attestation failed", "id", a.ID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

type appendEventRequest struct {
	TenantID      string                 `json:"tenantId"`
	UserID        *string                `json:"userId"`
	UserEmail     *string                `json:"userEmail"`
	UserRoles     []string               `json:"userRoles"`
	IPAddress     *string                `json:"ipAddress"`
	UserAgent     *string                `json:"userAgent"`
	RequestID     *string                `json:"requestId"`
	CorrelationID *string                `json:"correlationId"`
	TraceID       *string                `json:"traceId"`
	EventType     string                 `json:"eventType"`
	Severity      string                 `json:"severity"`
	Action        string                 `json:"action"`
	Description   *string                `json:"description"`
	Outcome       *string                `json:"outcome"`
	ResourceType  *string                `json:"resourceType"`
	ResourceID    *string                `json:"resourceId"`
	Metadata      map[string]interface{} `json:"metadata"`
	Compliance    map[string]interface{} `json:"compliance"`
	RiskScore     *float64               `json:"riskScore"`
	RiskFactors   []string               `json:"riskFactors"`
}

func (h *Handler) appendEvent(w http.ResponseWriter, r *http.Request) {
	var req appendEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := &domain.AuditEvent{
		TenantID:      req.TenantID,
		UserID:        req.UserID,
		UserEmail:     req.UserEmail,
		UserRoles:     req.UserRoles,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
		RequestID:     req.RequestID,
		CorrelationID: req.CorrelationID,
		TraceID:       req.TraceID,
		EventType:     req.EventType,
		Severity:      req.Severity,
		Action:        req.Action,
		Description:   req.Description,
		Outcome:       req.Outcome,
		ResourceType:  req.ResourceType,
		ResourceID:    req.ResourceID,
		Metadata:      req.Metadata,
		Compliance:    req.Compliance,
		RiskScore:     req.RiskScore,
		RiskFactors:   req.RiskFactors,
	}

	created, err := h.events.Append(r.Context(), e)
	if err != nil {
		h.logger.Error("append event failed", "tenant", req.TenantID, "error", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventToAPI(created))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := rangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := domain.EventFilter{
		TenantID: chi.URLParam(r, "tenantID"),
		Start:    start,
		End:      end,
		Page:     pageFromQuery(r),
	}

	items, total, err := h.events.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list events failed", "tenant", filter.TenantID, "error", err)
		writeDomainError(w, err)
		return
	}

	data := make([]Event, len(items))
	for i := range items {
		data[i] = eventToAPI(&items[i])
	}
	writeJSON(w, http.StatusOK, paginated[Event]{
		Data:          data,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}

// rangeParams parses optional RFC3339 start/end query parameters.
func rangeParams(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return nil, nil, domain.ErrValidation("invalid start: must be RFC3339")
		}
		start = &t
	}
	if v := q.Get("end"); v != "" {
		t, perr := time.Parse(time.RFC3339, v)
		if perr != nil {
			return nil, nil, domain.ErrValidation("invalid end: must be RFC3339")
		}
		end = &t
	}
	return start, end, nil
}

func pageFromQuery(r *http.Request) domain.PageRequest {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("pageToken")}
	if v := r.URL.Query().Get("maxResults"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.MaxResults = n
		}
	}
	return page
}

type paginated[T any] struct {
	Data          []T    `json:"data"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}
