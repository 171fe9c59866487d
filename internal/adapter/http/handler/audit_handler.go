package handler

import (
	"context"
	"net/http"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
)

// AuditLister reads audit records.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns audit records matching the query filters, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit filter", err.Error())
		return
	}
	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit filter", err.Error())
		return
	}
	if err := domain.ValidateDateRange(from, to); err != nil {
		writeDomainError(w, err, "invalid audit filter")
		return
	}

	q := r.URL.Query()
	logs, err := h.audit.List(r.Context(), domain.AuditFilter{
		UserID:       q.Get("user_id"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		StartDate:    from,
		EndDate:      to,
		Limit:        parseIntQuery(r, "limit", defaultPageLimit),
		Offset:       parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list audit logs")
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
