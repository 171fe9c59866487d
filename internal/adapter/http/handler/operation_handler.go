package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// OperationService defines the behavior needed by OperationHandler.
type OperationService interface {
	CreateOperation(ctx context.Context, input usecase.CreateOperationInput) (*domain.Operation, error)
	GetOperation(ctx context.Context, id string) (*domain.Operation, error)
	UpdateOperation(ctx context.Context, input usecase.UpdateOperationInput) (*domain.Operation, error)
	DeleteOperation(ctx context.Context, id string) error
}

// OperationHandler handles operation-related HTTP requests.
type OperationHandler struct {
	operationUC OperationService
	now         func() time.Time
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(operationUC OperationService) *OperationHandler {
	return &OperationHandler{operationUC: operationUC, now: time.Now}
}

// Create creates an operation with its entries.
func (h *OperationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOperationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.operationUC.CreateOperation(r.Context(), req.ToUseCaseInput(h.now()))
	if err != nil {
		writeDomainError(w, err, "failed to create operation")
		return
	}

	writeJSON(w, http.StatusCreated, dto.OperationFromDomain(op))
}

// Get retrieves an operation by ID.
func (h *OperationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	op, err := h.operationUC.GetOperation(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get operation")
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Update applies a partial update to an operation.
func (h *OperationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	var req dto.UpdateOperationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op, err := h.operationUC.UpdateOperation(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, err, "failed to update operation")
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Delete soft-deletes an operation.
func (h *OperationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	if err := h.operationUC.DeleteOperation(r.Context(), id); err != nil {
		writeDomainError(w, err, "failed to delete operation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
