package services

import (
	"context"
	"io"

	"loipen-tracker/internal/domain"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/export"
	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/timer"
	"loipen-tracker/internal/validation"
)

// ExportFilePrefix starts every export file name.
const ExportFilePrefix = "Arbeitszeit"

// PreparedExport holds the rows of an export so callers can announce the
// file name before writing the body.
type PreparedExport struct {
	ExportResult
	format export.Format
	rows   []export.Row
}

// Write renders the export to w.
func (p *PreparedExport) Write(w io.Writer) error {
	if p.format == export.FormatXLSX {
		return export.WriteXLSX(w, p.rows)
	}
	return export.WriteCSV(w, p.rows)
}

// exportServiceImpl implements the ExportService interface
type exportServiceImpl struct {
	repo               sqlstore.Repository
	clock              timer.Clock
	validator          *validation.Validator
	timeEntryValidator *validation.TimeEntryValidator
	log                logging.Logger
}

// NewExportService creates a new ExportService instance
func NewExportService(repo sqlstore.Repository, clock timer.Clock, v *validation.Validator, log logging.Logger) ExportService {
	if v == nil {
		v = validation.NewValidator()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &exportServiceImpl{
		repo:               repo,
		clock:              clock,
		validator:          v,
		timeEntryValidator: validation.NewTimeEntryValidator(v),
		log:                log,
	}
}

// Prepare loads the entries selected by req. Without any date filter the
// current week is exported. An empty selection is reported as not found.
func (s *exportServiceImpl) Prepare(ctx context.Context, req ExportRequest) (*PreparedExport, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("format", req.Format, "must be csv or xlsx")
	}

	filter := req.Filter
	if filter.From == "" && filter.To == "" && filter.Season == "" {
		monday, sunday := WeekRange(s.clock.Now())
		filter.From = monday.Format(domain.DateLayout)
		filter.To = sunday.Format(domain.DateLayout)
	}
	opts, err := resolveFilter(s.validator, s.timeEntryValidator, filter)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.SearchTimeEntries(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewNotFoundError("time entries for this period", "")
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	rows := export.BuildRows(entries, domain.NewEmployeeDirectory(employees), s.validator.Location())

	prepared := &PreparedExport{format: format, rows: rows}
	prepared.ContentType = format.ContentType()
	prepared.Rows = len(rows)
	if opts.From != nil {
		prepared.From = *opts.From
	}
	if opts.To != nil {
		prepared.To = *opts.To
	}
	if opts.From == nil || opts.To == nil {
		// open-ended range: name the file after the exported entries
		prepared.From = entries[len(entries)-1].Date
		prepared.To = entries[0].Date
	}
	prepared.FileName = export.FileName(ExportFilePrefix, prepared.From, prepared.To, format)
	return prepared, nil
}

// Export prepares and writes the export in one step.
func (s *exportServiceImpl) Export(ctx context.Context, req ExportRequest, w io.Writer) (*ExportResult, error) {
	prepared, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := prepared.Write(w); err != nil {
		s.log.Error(ctx, "write export failed", "file", prepared.FileName, "error", err)
		return nil, apperrors.WrapError(err, apperrors.ErrorTypeStore, "write export")
	}
	s.log.Info(ctx, "export written", "file", prepared.FileName, "rows", prepared.Rows)
	return &prepared.ExportResult, nil
}
