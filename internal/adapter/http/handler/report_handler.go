package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	GeneralReport(ctx context.Context, input usecase.ReportInput) (*domain.ReportFile, error)
	ConversionReport(ctx context.Context, input usecase.ReportInput) (*domain.ReportFile, error)
	ClosingReport(ctx context.Context, category string) (*domain.ReportFile, error)
}

// ReportHandler serves spreadsheet downloads.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// Download renders the report named by the {kind} path parameter.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	kind := domain.ReportKind(chi.URLParam(r, "kind"))
	category := r.URL.Query().Get("category")

	var (
		file *domain.ReportFile
		err  error
	)

	switch kind {
	case domain.ReportKindGeneral, domain.ReportKindConversion:
		input, perr := reportInput(r, category)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid report filter", perr.Error())
			return
		}
		if kind == domain.ReportKindGeneral {
			file, err = h.reportUC.GeneralReport(r.Context(), input)
		} else {
			file, err = h.reportUC.ConversionReport(r.Context(), input)
		}
	case domain.ReportKindClosing:
		file, err = h.reportUC.ClosingReport(r.Context(), category)
	default:
		writeError(w, http.StatusNotFound, "unknown report", string(kind))
		return
	}

	if err != nil {
		writeDomainError(w, err, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

func reportInput(r *http.Request, category string) (usecase.ReportInput, error) {
	from, err := parseTimeQuery(r, "from", false)
	if err != nil {
		return usecase.ReportInput{}, err
	}
	to, err := parseTimeQuery(r, "to", true)
	if err != nil {
		return usecase.ReportInput{}, err
	}

	return usecase.ReportInput{
		TypeIDs:  parseListQuery(r, "type_id"),
		From:     from,
		To:       to,
		Category: category,
	}, nil
}
