package workbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/models"
)

// GetSettings reads MODULE_ keys from column A and their values from column B.
func (s *Store) GetSettings() (models.Settings, error) {
	if s.f == nil {
		return models.Settings{}, fmt.Errorf("storage not loaded")
	}
	rows, err := s.f.GetRows(constants.SettingsSheetName)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read %s: %w", constants.SettingsSheetName, err)
	}
	values := map[string]string{}
	for _, row := range rows {
		key := cell(row, 0)
		if strings.HasPrefix(key, constants.SettingPrefix) {
			values[key] = cell(row, 1)
		}
	}
	return models.MapToSettings(values)
}

// SaveSettings updates existing key rows in place and appends new keys below.
func (s *Store) SaveSettings(settings models.Settings) error {
	if s.f == nil {
		return fmt.Errorf("storage not loaded")
	}
	sheet := constants.SettingsSheetName
	rows, err := s.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sheet, err)
	}

	existing := map[string]int{}
	for i, row := range rows {
		if key := cell(row, 0); key != "" {
			existing[key] = i + 1
		}
	}
	next := len(rows) + 1

	values := models.SettingsToMap(settings)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		row, ok := existing[key]
		if !ok {
			row = next
			next++
		}
		pair := []interface{}{key, values[key]}
		if err := s.f.SetSheetRow(sheet, cellName(1, row), &pair); err != nil {
			return fmt.Errorf("failed to write setting %s: %w", key, err)
		}
	}
	return s.flush()
}
