package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/logging"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

const (
	reportTimestampLayout = "2006-01-02_15-04-05"
	reportDateLayout      = "2006-01-02 15:04:05"
	rateScale             = 6
	defaultMinorDecimals  = 2
)

var (
	generalReportHeaders = []string{
		"ID операции", "Дата", "Тип операции", "Описание", "Кошелёк", "Валюта", "Сумма", "Заявка",
	}
	conversionReportHeaders = []string{
		"№ группы", "Группа конвертации", "ID операции", "Дата", "Тип операции", "Кошелёк", "Валюта", "Направление", "Сумма", "Курс",
	}
	closingReportHeaders = []string{
		"Кошелёк", "Валюта", "Категория", "Баланс", "Статус",
	}
)

// ReportUseCase builds read-only projections of the ledger.
type ReportUseCase struct {
	reportRepo    ReportRepository
	walletRepo    WalletRepository
	referenceRepo ReferenceRepository
	renderer      ReportRenderer
	logger        *logging.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewReportUseCase creates a new ReportUseCase.
func NewReportUseCase(
	reportRepo ReportRepository,
	walletRepo WalletRepository,
	referenceRepo ReferenceRepository,
	renderer ReportRenderer,
	logger *logging.Logger,
	metrics *metrics.Metrics,
) *ReportUseCase {
	if logger == nil {
		logger = logging.Nop()
	}

	return &ReportUseCase{
		reportRepo:    reportRepo,
		walletRepo:    walletRepo,
		referenceRepo: referenceRepo,
		renderer:      renderer,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// ReportInput narrows a report.
type ReportInput struct {
	TypeIDs  []string
	From     *time.Time
	To       *time.Time
	Category string
}

func (in ReportInput) filter() (ReportFilter, domain.WalletCategoryFilter, error) {
	category, err := domain.ParseWalletCategoryFilter(in.Category)
	if err != nil {
		return ReportFilter{}, "", err
	}

	if err := domain.ValidateDateRange(in.From, in.To); err != nil {
		return ReportFilter{}, "", err
	}

	return ReportFilter{TypeIDs: in.TypeIDs, From: in.From, To: in.To}, category, nil
}

// GeneralReportRows expands every matching operation into one signed row per entry.
func (uc *ReportUseCase) GeneralReportRows(ctx context.Context, input ReportInput) ([]domain.GeneralReportRow, error) {
	filter, category, err := input.filter()
	if err != nil {
		return nil, err
	}

	ops, err := uc.reportRepo.ListOperations(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := newReferenceResolver(uc.referenceRepo)
	rows := make([]domain.GeneralReportRow, 0, len(ops))

	for _, op := range ops {
		typeName, err := names.typeName(ctx, op.TypeID)
		if err != nil {
			return nil, err
		}

		application := domain.StandaloneOperationLabel
		if op.ApplicationID != nil {
			application = strconv.FormatInt(*op.ApplicationID, 10)
		}

		description := ""
		if op.Description != nil {
			description = *op.Description
		}

		for _, entry := range op.ActiveEntries() {
			wallet := entryWallet(entry)
			if !category.Matches(wallet.Category) {
				continue
			}

			code, err := names.currencyCode(ctx, wallet.CurrencyID)
			if err != nil {
				return nil, err
			}

			rows = append(rows, domain.GeneralReportRow{
				OperationID:   op.ID,
				CreatedAt:     op.CreatedAt,
				TypeName:      typeName,
				Description:   description,
				WalletName:    wallet.Name,
				CurrencyCode:  code,
				Amount:        entry.SignedAmount(),
				ApplicationNo: application,
			})
		}
	}

	return rows, nil
}

// GeneralReport renders the general ledger export.
func (uc *ReportUseCase) GeneralReport(ctx context.Context, input ReportInput) (*domain.ReportFile, error) {
	return uc.generate(ctx, domain.ReportKindGeneral, func(ctx context.Context) ([]string, [][]any, error) {
		rows, err := uc.GeneralReportRows(ctx, input)
		if err != nil {
			return nil, nil, err
		}

		cells := make([][]any, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []any{
				r.OperationID,
				r.CreatedAt.Format(reportDateLayout),
				r.TypeName,
				r.Description,
				r.WalletName,
				r.CurrencyCode,
				MajorUnits(r.Amount, r.CurrencyCode),
				r.ApplicationNo,
			})
		}
		return generalReportHeaders, cells, nil
	})
}

// conversionSide is one entry waiting to be paired within its operation.
type conversionSide struct {
	op     *domain.Operation
	entry  *domain.OperationEntry
	amount int64
}

// ConversionReportRows pairs the credit and debit entries of each operation in every
// conversion group and infers their rate. Rows share the group sequence number.
func (uc *ReportUseCase) ConversionReportRows(ctx context.Context, input ReportInput) ([]domain.ConversionReportRow, error) {
	filter, _, err := input.filter()
	if err != nil {
		return nil, err
	}

	ops, err := uc.reportRepo.ListConversionOperations(ctx, filter)
	if err != nil {
		return nil, err
	}

	names := newReferenceResolver(uc.referenceRepo)

	var rows []domain.ConversionReportRow
	for i, group := range groupByConversion(ops) {
		for _, op := range group {
			opRows, err := uc.pairOperation(ctx, names, i+1, op)
			if err != nil {
				return nil, err
			}
			rows = append(rows, opRows...)
		}
	}

	return rows, nil
}

// pairOperation pairs the credit and debit entries of one operation positionally.
// The longer side is folded into its last retained entry first.
func (uc *ReportUseCase) pairOperation(ctx context.Context, names *referenceResolver, group int, op *domain.Operation) ([]domain.ConversionReportRow, error) {
	credits, debits := splitSides(op)

	pairs := min(len(credits), len(debits))
	if pairs == 0 {
		// One side is missing entirely; nothing to pair against.
		rows := make([]domain.ConversionReportRow, 0, len(credits)+len(debits))
		for _, side := range append(credits, debits...) {
			row, err := uc.conversionRow(ctx, names, group, side, decimal.NewFromInt(1))
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	credits = mergeTail(credits, pairs)
	debits = mergeTail(debits, pairs)

	rows := make([]domain.ConversionReportRow, 0, 2*pairs)
	for p := 0; p < pairs; p++ {
		rate := ExchangeRate(credits[p].amount, debits[p].amount)

		credit, err := uc.conversionRow(ctx, names, group, credits[p], rate)
		if err != nil {
			return nil, err
		}
		debit, err := uc.conversionRow(ctx, names, group, debits[p], rate)
		if err != nil {
			return nil, err
		}
		rows = append(rows, credit, debit)
	}

	return rows, nil
}

func (uc *ReportUseCase) conversionRow(ctx context.Context, names *referenceResolver, group int, side conversionSide, rate decimal.Decimal) (domain.ConversionReportRow, error) {
	typeName, err := names.typeName(ctx, side.op.TypeID)
	if err != nil {
		return domain.ConversionReportRow{}, err
	}

	wallet := entryWallet(side.entry)
	code, err := names.currencyCode(ctx, wallet.CurrencyID)
	if err != nil {
		return domain.ConversionReportRow{}, err
	}

	return domain.ConversionReportRow{
		GroupNumber:       group,
		ConversionGroupID: *side.op.ConversionGroupID,
		OperationID:       side.op.ID,
		CreatedAt:         side.op.CreatedAt,
		TypeName:          typeName,
		WalletName:        wallet.Name,
		CurrencyCode:      code,
		Direction:         side.entry.Direction,
		Amount:            side.entry.Direction.Signed(side.amount),
		Rate:              rate,
	}, nil
}

// ConversionReport renders the conversion-group exchange-rate report.
func (uc *ReportUseCase) ConversionReport(ctx context.Context, input ReportInput) (*domain.ReportFile, error) {
	return uc.generate(ctx, domain.ReportKindConversion, func(ctx context.Context) ([]string, [][]any, error) {
		rows, err := uc.ConversionReportRows(ctx, input)
		if err != nil {
			return nil, nil, err
		}

		cells := make([][]any, 0, len(rows))
		for _, r := range rows {
			rate, _ := r.Rate.Float64()
			cells = append(cells, []any{
				r.GroupNumber,
				r.ConversionGroupID,
				r.OperationID,
				r.CreatedAt.Format(reportDateLayout),
				r.TypeName,
				r.WalletName,
				r.CurrencyCode,
				string(r.Direction),
				MajorUnits(r.Amount, r.CurrencyCode),
				rate,
			})
		}
		return conversionReportHeaders, cells, nil
	})
}

// ClosingReportRows snapshots the current derived balance of every matching wallet, ordered by name.
func (uc *ReportUseCase) ClosingReportRows(ctx context.Context, category string) ([]domain.ClosingReportRow, error) {
	filter, err := domain.ParseWalletCategoryFilter(category)
	if err != nil {
		return nil, err
	}

	names := newReferenceResolver(uc.referenceRepo)

	var rows []domain.ClosingReportRow
	for offset := 0; ; offset += domain.MaxPageSize {
		wallets, err := uc.walletRepo.List(ctx, WalletFilter{
			Category: filter,
			Limit:    domain.MaxPageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, err
		}

		for _, w := range wallets {
			code, err := names.currencyCode(ctx, w.CurrencyID)
			if err != nil {
				return nil, err
			}

			rows = append(rows, domain.ClosingReportRow{
				WalletName:    w.Name,
				CurrencyCode:  code,
				Category:      w.Category,
				Amount:        w.Amount,
				BalanceStatus: w.BalanceStatus,
			})
		}

		if len(wallets) < domain.MaxPageSize {
			break
		}
	}

	return rows, nil
}

// ClosingReport renders the period-closing snapshot.
func (uc *ReportUseCase) ClosingReport(ctx context.Context, category string) (*domain.ReportFile, error) {
	return uc.generate(ctx, domain.ReportKindClosing, func(ctx context.Context) ([]string, [][]any, error) {
		rows, err := uc.ClosingReportRows(ctx, category)
		if err != nil {
			return nil, nil, err
		}

		cells := make([][]any, 0, len(rows))
		for _, r := range rows {
			cells = append(cells, []any{
				r.WalletName,
				r.CurrencyCode,
				string(r.Category),
				MajorUnits(r.Amount, r.CurrencyCode),
				string(r.BalanceStatus),
			})
		}
		return closingReportHeaders, cells, nil
	})
}

func (uc *ReportUseCase) generate(
	ctx context.Context,
	kind domain.ReportKind,
	build func(ctx context.Context) ([]string, [][]any, error),
) (*domain.ReportFile, error) {
	ctx, cancel := context.WithTimeout(ctx, ReportTimeout)
	defer cancel()

	start := time.Now()

	headers, cells, err := build(ctx)
	if err != nil {
		uc.logger.WarnCtx(ctx, "report generation failed", "report", string(kind), "error", err)
		return nil, err
	}

	content, err := uc.renderer.Render(string(kind), headers, cells)
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", kind, err)
	}

	if uc.metrics != nil {
		uc.metrics.ReportsGenerated.WithLabelValues(string(kind)).Inc()
		uc.metrics.ReportDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
		uc.metrics.ReportRows.WithLabelValues(string(kind)).Observe(float64(len(cells)))
	}

	uc.logger.InfoCtx(ctx, "report generated", "report", string(kind), "rows", len(cells), "bytes", len(content))

	return &domain.ReportFile{
		Filename:    ReportFilename(kind, uc.now()),
		ContentType: domain.XLSXContentType,
		Content:     content,
	}, nil
}

// ReportFilename builds the timestamped download name of a report.
func ReportFilename(kind domain.ReportKind, at time.Time) string {
	return fmt.Sprintf("%s_report_%s.xlsx", kind, at.Format(reportTimestampLayout))
}

// ExchangeRate returns max(a, b) / min(a, b) rounded to six places, or 1 when either side is zero.
func ExchangeRate(a, b int64) decimal.Decimal {
	if a == 0 || b == 0 {
		return decimal.NewFromInt(1)
	}

	x, y := decimal.NewFromInt(a).Abs(), decimal.NewFromInt(b).Abs()
	if x.LessThan(y) {
		x, y = y, x
	}

	return x.DivRound(y, rateScale)
}

// MajorUnits converts minor units to major units using the currency's fraction digits.
// Unknown codes are treated as having two fraction digits.
func MajorUnits(amount int64, code string) float64 {
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		return money.New(amount, c.Code).AsMajorUnits()
	}

	f, _ := decimal.New(amount, -defaultMinorDecimals).Float64()
	return f
}

// groupByConversion splits chronologically ordered operations by conversion group,
// keeping groups in order of their first operation.
func groupByConversion(ops []*domain.Operation) [][]*domain.Operation {
	index := make(map[string]int)
	var groups [][]*domain.Operation

	for _, op := range ops {
		if op.ConversionGroupID == nil || *op.ConversionGroupID == "" {
			continue
		}

		key := *op.ConversionGroupID
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], op)
	}

	return groups
}

func splitSides(op *domain.Operation) (credits, debits []conversionSide) {
	for _, entry := range op.ActiveEntries() {
		side := conversionSide{op: op, entry: entry, amount: entry.Amount}
		if entry.Direction == domain.DirectionCredit {
			credits = append(credits, side)
		} else {
			debits = append(debits, side)
		}
	}
	return credits, debits
}

// mergeTail shrinks sides to n items by folding the amounts of the excess
// tail into the last retained item.
func mergeTail(sides []conversionSide, n int) []conversionSide {
	if len(sides) <= n {
		return sides
	}

	merged := append([]conversionSide(nil), sides[:n]...)
	for _, extra := range sides[n:] {
		merged[n-1].amount += extra.amount
	}

	return merged
}

func entryWallet(entry *domain.OperationEntry) *domain.Wallet {
	if entry.Wallet != nil {
		return entry.Wallet
	}
	return &domain.Wallet{ID: entry.WalletID, Name: entry.WalletID}
}

// referenceResolver memoizes reference lookups for the duration of one report.
type referenceResolver struct {
	repo       ReferenceRepository
	types      map[string]string
	currencies map[string]string
}

func newReferenceResolver(repo ReferenceRepository) *referenceResolver {
	return &referenceResolver{
		repo:       repo,
		types:      make(map[string]string),
		currencies: make(map[string]string),
	}
}

// typeName resolves an operation type name. Types deleted since the operation
// was written fall back to their id.
func (r *referenceResolver) typeName(ctx context.Context, id string) (string, error) {
	if name, ok := r.types[id]; ok {
		return name, nil
	}

	name := id
	t, err := r.repo.GetOperationType(ctx, id)
	switch {
	case err == nil:
		name = t.Name
	case !domain.IsNotFound(err):
		return "", err
	}

	r.types[id] = name
	return name, nil
}

func (r *referenceResolver) currencyCode(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	if code, ok := r.currencies[id]; ok {
		return code, nil
	}

	code := id
	c, err := r.repo.GetCurrency(ctx, id)
	switch {
	case err == nil:
		code = c.Code
	case !domain.IsNotFound(err):
		return "", err
	}

	r.currencies[id] = code
	return code, nil
}
