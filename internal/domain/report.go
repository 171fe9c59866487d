package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportKind names a report generator.
type ReportKind string

const (
	ReportKindGeneral    ReportKind = "general"
	ReportKindConversion ReportKind = "conversion"
	ReportKindClosing    ReportKind = "closing"
)

// StandaloneOperationLabel marks general report rows whose operation has no linked application.
const StandaloneOperationLabel = "Самостоятельная операция"

// XLSXContentType is the MIME type of generated report files.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// GeneralReportRow is one entry of the general ledger export.
type GeneralReportRow struct {
	OperationID   string
	CreatedAt     time.Time
	TypeName      string
	Description   string
	WalletName    string
	CurrencyCode  string
	Amount        int64
	ApplicationNo string
}

// ConversionReportRow is one side of a rate-paired conversion entry.
type ConversionReportRow struct {
	GroupNumber       int
	ConversionGroupID string
	OperationID       string
	CreatedAt         time.Time
	TypeName          string
	WalletName        string
	CurrencyCode      string
	Direction         Direction
	Amount            int64
	Rate              decimal.Decimal
}

// ClosingReportRow is one wallet of the period-closing snapshot.
type ClosingReportRow struct {
	WalletName    string
	CurrencyCode  string
	Category      WalletCategory
	Amount        int64
	BalanceStatus BalanceStatus
}
