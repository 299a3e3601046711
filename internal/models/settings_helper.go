package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/komaplan/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys outside the MODULE_ namespace are ignored.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch {
		case key == constants.SettingPlanStart:
			settings.PlanStart = value
		case key == constants.SettingPlanEnd:
			settings.PlanEnd = value
		case key == constants.SettingWeekdays:
			set, err := ParseWeekdays(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.Weekdays = set
		case key == constants.SettingLastGeneratedAt:
			settings.LastGeneratedAt = value
		case key == constants.SettingLastPlanCount:
			if value == "" {
				continue
			}
			if _, err := fmt.Sscanf(value, "%d", &settings.LastPlanCount); err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
		case key == constants.SettingSchemaVersion:
			settings.SchemaVersion = value
		case strings.HasPrefix(key, constants.SettingPlanStatePrefix):
			fy, err := strconv.Atoi(strings.TrimPrefix(key, constants.SettingPlanStatePrefix))
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: invalid fiscal year", key)
			}
			settings.SetPlanState(fy, constants.PlanState(value))
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	m := map[string]string{
		constants.SettingPlanStart:       settings.PlanStart,
		constants.SettingPlanEnd:         settings.PlanEnd,
		constants.SettingWeekdays:        settings.Weekdays.String(),
		constants.SettingLastGeneratedAt: settings.LastGeneratedAt,
		constants.SettingLastPlanCount:   strconv.Itoa(settings.LastPlanCount),
		constants.SettingSchemaVersion:   settings.SchemaVersion,
	}
	for fy, state := range settings.PlanStates {
		m[fmt.Sprintf("%s%d", constants.SettingPlanStatePrefix, fy)] = string(state)
	}
	return m
}

// DefaultSettings returns the settings written by a fresh store.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Weekdays.IsEmpty() {
		settings.Weekdays = DefaultWeekdays()
	}
	if settings.SchemaVersion == "" {
		settings.SchemaVersion = constants.SchemaVersion
	}
}
