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

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.OperationEntry, error)
	GetHistoricalBalance(ctx context.Context, walletID string, at time.Time) (domain.Balance, error)
	Recalculate(ctx context.Context, walletID string) (*domain.Wallet, error)
	Reconcile(ctx context.Context, walletID string) (*usecase.ReconciliationResult, error)
}

// AdjustmentService defines the behavior needed for balance adjustments.
type AdjustmentService interface {
	AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) (*usecase.AdjustmentResult, error)
}

// WalletHandler handles wallet-related HTTP requests.
type WalletHandler struct {
	walletUC     WalletService
	adjustmentUC AdjustmentService
	now          func() time.Time
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService, adjustmentUC AdjustmentService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC, adjustmentUC: adjustmentUC, now: time.Now}
}

// List lists wallets filtered by category.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletUC.ListWallets(r.Context(), usecase.ListWalletsInput{
		Category:       r.URL.Query().Get("category"),
		IncludeDeleted: parseBoolQuery(r, "include_deleted"),
		Limit:          parseIntQuery(r, "limit", defaultPageLimit),
		Offset:         parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list wallets")
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletsFromDomain(wallets))
}

// Get retrieves a wallet by ID.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	wallet, err := h.walletUC.GetWallet(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// ListEntries lists a wallet's entries, newest first.
func (h *WalletHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	entries, err := h.walletUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		WalletID: id,
		Limit:    parseIntQuery(r, "limit", defaultPageLimit),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// GetHistoricalBalance returns the balance derived from entries created up to ?at (default now).
func (h *WalletHandler) GetHistoricalBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	at, err := parseTimeQuery(r, "at", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid timestamp", err.Error())
		return
	}
	if at == nil {
		now := h.now().UTC()
		at = &now
	}

	balance, err := h.walletUC.GetHistoricalBalance(r.Context(), id, *at)
	if err != nil {
		writeDomainError(w, err, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(id, *at, balance))
}

// Adjust brings the wallet to a target balance with a corrective entry.
func (h *WalletHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	var req dto.AdjustBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.adjustmentUC.AdjustBalance(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, err, "failed to adjust balance")
		return
	}

	status := http.StatusCreated
	if result.Operation == nil {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.AdjustmentFromResult(result))
}

// Recalculate rewrites the cached balance from the ledger.
func (h *WalletHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	wallet, err := h.walletUC.Recalculate(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to recalculate wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Reconcile compares the cached balance with the ledger without writing.
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing wallet ID", "")
		return
	}

	result, err := h.walletUC.Reconcile(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to reconcile wallet")
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
