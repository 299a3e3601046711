package storage

import "github.com/julianstephens/komaplan/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// Migrate brings the store's schema or layout up to date and reports how many steps ran.
	Migrate(logFn func(string)) (int, error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Targets are saved whole, six grades per fiscal year.
	// found is false when nothing has been stored for fiscalYear yet.
	GetTargets(fiscalYear int) (set models.TargetSet, found bool, err error)
	SaveTargets(models.TargetSet) error

	// Exceptions (append-only)
	AddException(models.Exception) error
	GetAllExceptions() ([]models.Exception, error)

	// Daily plan, fully replaced on every recompute
	ReplaceDailyPlan(fiscalYear int, entries []models.DailyPlanEntry) error
	GetDailyPlan(fiscalYear int) ([]models.DailyPlanEntry, error)

	// Utils
	GetConfigPath() string
}
