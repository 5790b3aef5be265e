package services

import (
	"time"

	"loipen-tracker/internal/logging"
	"loipen-tracker/internal/repository/sqlstore"
	"loipen-tracker/internal/season"
	"loipen-tracker/internal/timer"
	"loipen-tracker/internal/validation"
)

// Options configures NewServiceContainer.
type Options struct {
	Clock           timer.Clock
	Location        *time.Location
	PersistPauses   bool
	FirstSeasonYear int
	Logger          logging.Logger
	Receipts        Presigner // nil disables receipts
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Clock == nil {
		o.Clock = timer.SystemClock{Location: o.Location}
	}
	if o.FirstSeasonYear == 0 {
		o.FirstSeasonYear = season.FirstSeasonYear
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	return o
}

// NewServiceContainer wires all services on top of repo.
func NewServiceContainer(repo sqlstore.Repository, opts Options) *ServiceContainer {
	opts = opts.withDefaults()
	v := validation.NewValidatorWithLocation(opts.Location)

	entries := NewEntryService(repo, v, opts.Logger)
	return &ServiceContainer{
		TimerService:     NewTimerService(repo, opts.Clock, opts.PersistPauses, opts.Logger),
		EntryService:     entries,
		ReportingService: NewReportingService(repo, opts.Clock, opts.FirstSeasonYear),
		ExportService:    NewExportService(repo, opts.Clock, v, opts.Logger),
		ReceiptService:   NewReceiptService(opts.Receipts, opts.Logger),
		RecordService:    NewRecordService(repo, opts.Clock, v, opts.Logger),
	}
}
