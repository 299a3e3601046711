package constants

const (
	// SettingPrefix namespaces every key this module writes to the shared settings store.
	SettingPrefix = "MODULE_"

	SettingPlanStart       = SettingPrefix + "PLAN_START"
	SettingPlanEnd         = SettingPrefix + "PLAN_END"
	SettingWeekdays        = SettingPrefix + "WEEKDAYS"
	SettingLastGeneratedAt = SettingPrefix + "LAST_GENERATED_AT"
	SettingLastPlanCount   = SettingPrefix + "LAST_PLAN_COUNT"
	SettingSchemaVersion   = SettingPrefix + "SCHEMA_VERSION"
	// SettingPlanStatePrefix is followed by the fiscal year, e.g. MODULE_PLAN_STATE_2025.
	SettingPlanStatePrefix = SettingPrefix + "PLAN_STATE_"

	// Default Settings Values
	DefaultWeekdays = "1,3,5"
)
