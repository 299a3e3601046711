// Package workbook stores targets, exceptions, settings and the daily plan in a
// single xlsx file laid out for people to read and edit by hand.
package workbook

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/models"
)

// Store is a Provider backed by one workbook. The plan-sheet layout is memoized
// for the lifetime of the Store and must be invalidated after structural edits.
type Store struct {
	path   string
	f      *excelize.File
	layout *layout
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), constants.PlanSheetName); err != nil {
			return fmt.Errorf("failed to name plan sheet: %w", err)
		}
		s.f = f
	} else if err := s.open(); err != nil {
		return err
	}

	if _, err := s.Migrate(func(msg string) { logger.Info(msg) }); err != nil {
		return err
	}

	settings, err := s.GetSettings()
	if err != nil {
		return err
	}
	models.ApplyDefaultSettings(&settings)
	return s.SaveSettings(settings)
}

func (s *Store) open() error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	s.f = f
	return nil
}

func (s *Store) Load() error {
	if s.f != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'komaplan init' first")
	}
	if err := s.open(); err != nil {
		return err
	}
	// Loading repairs a damaged plan sheet the same way Migrate does.
	_, err := s.ensureLayout()
	return err
}

func (s *Store) Close() error {
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		s.layout = nil
		return err
	}
	return nil
}

// Migrate makes sure every sheet exists and the plan sheet has a valid layout.
// It returns 1 when something had to be created or repaired.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	if s.f == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	if logFn == nil {
		logFn = func(string) {}
	}

	changed := 0
	for _, name := range []string{constants.PlanSheetName, constants.SettingsSheetName, constants.DailyPlanSheetName} {
		created, err := s.ensureSheet(name)
		if err != nil {
			return changed, err
		}
		if created {
			logFn(fmt.Sprintf("Created sheet %s", name))
			changed = 1
		}
	}
	if created, err := s.ensureDailyHeader(); err != nil {
		return changed, err
	} else if created {
		changed = 1
	}

	repaired, err := s.ensureLayout()
	if err != nil {
		return changed, err
	}
	if repaired {
		logFn(fmt.Sprintf("Rebuilt %s layout", constants.PlanSheetName))
		changed = 1
	}
	if changed == 0 {
		logFn("Workbook layout is up to date")
	}
	return changed, s.flush()
}

func (s *Store) ensureSheet(name string) (bool, error) {
	idx, err := s.f.GetSheetIndex(name)
	if err != nil {
		return false, err
	}
	if idx >= 0 {
		return false, nil
	}
	if _, err := s.f.NewSheet(name); err != nil {
		return false, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) flush() error {
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// File exposes the open workbook, nil before Init or Load.
func (s *Store) File() *excelize.File {
	return s.f
}
