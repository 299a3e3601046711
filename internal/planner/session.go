// Package planner runs a full recompute: extract school days, allocate sessions,
// fold in exceptions, roll up totals and write the reports.
package planner

import (
	"fmt"
	"time"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/config"
	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/scheduler"
	"github.com/julianstephens/komaplan/internal/storage"
	"github.com/julianstephens/komaplan/internal/workbook"
)

// ReportSink receives the outputs of a recompute.
type ReportSink interface {
	Write(r workbook.Report) error
}

// Session carries the collaborators and invocation-scoped caches of one CLI run.
// Nothing here is safe for concurrent use.
type Session struct {
	Store     storage.Provider
	Config    *config.Config
	Scheduler *scheduler.Scheduler
	// Source overrides the schedule workbook named in Config.
	Source calendar.Source
	// Reports defaults to a workbook.ReportWriter over Config.
	Reports ReportSink
	Now     func() time.Time

	settings *models.Settings
}

func NewSession(store storage.Provider, cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{
		Store:     store,
		Config:    cfg,
		Scheduler: scheduler.New(),
		Reports:   workbook.NewReportWriter(cfg),
		Now:       time.Now,
	}
}

// Settings returns the memoized settings, reading the store on first use.
func (s *Session) Settings() (models.Settings, error) {
	if s.settings != nil {
		return *s.settings, nil
	}
	settings, err := s.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	s.settings = &settings
	return settings, nil
}

// SaveSettings writes settings through and refreshes the memo.
func (s *Session) SaveSettings(settings models.Settings) error {
	if err := s.Store.SaveSettings(settings); err != nil {
		s.InvalidateSettings()
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.settings = &settings
	return nil
}

// InvalidateSettings drops the memo so the next read goes to the store.
func (s *Session) InvalidateSettings() {
	s.settings = nil
}

// EnsureTargets returns the fiscal year's targets, creating the default set on
// first access and moving the year out of the uninitialized state.
func (s *Session) EnsureTargets(fiscalYear int) (models.TargetSet, error) {
	set, found, err := s.Store.GetTargets(fiscalYear)
	if err != nil {
		return models.TargetSet{}, fmt.Errorf("failed to get targets: %w", err)
	}
	if !found {
		set = models.DefaultTargetSet(fiscalYear, s.Config.DefaultAnnualUnits)
		if err := s.Store.SaveTargets(set); err != nil {
			return models.TargetSet{}, fmt.Errorf("failed to create default targets: %w", err)
		}
		logger.Info("Created default targets", "fiscal_year", fiscalYear, "units", s.Config.DefaultAnnualUnits)
	}

	settings, err := s.Settings()
	if err != nil {
		return models.TargetSet{}, err
	}
	if settings.PlanState(fiscalYear) == constants.PlanStateUninitialized {
		settings.SetPlanState(fiscalYear, constants.PlanStateDefaultTargetCreated)
		if err := s.SaveSettings(settings); err != nil {
			return models.TargetSet{}, err
		}
	}
	return set, nil
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// source returns the schedule source and a func releasing it.
func (s *Session) source() (calendar.Source, func(), error) {
	if s.Source != nil {
		return s.Source, func() {}, nil
	}
	r, err := workbook.OpenSchedule(s.Config.Schedule)
	if err != nil {
		return nil, nil, err
	}
	return r, func() {
		if err := r.Close(); err != nil {
			logger.Debug("Failed to close schedule workbook", "error", err)
		}
	}, nil
}
