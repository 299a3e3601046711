package constants

import "time"

const (
	AppName            = "komaplan"
	DefaultKeyringUser = "database-connection"
	DefaultStorePath   = "~/.config/komaplan/komaplan.db"
	DefaultConfigFile  = "~/.config/komaplan/komaplan.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for generated-at style settings values
	TimestampFormat = time.RFC3339

	// SessionMinutes is the length of one instructional session.
	SessionMinutes = 15
	// SessionsPerUnit converts 45-minute units ("koma") to sessions.
	SessionsPerUnit = 3
	// UnitPrecision keeps six decimal digits when converting sessions to units.
	UnitPrecision = 1e6

	// FiscalYearStartMonth is April; fiscal years run Apr 1 - Mar 31.
	FiscalYearStartMonth = time.April

	// Grade bounds
	MinGrade   = 1
	MaxGrade   = 6
	GradeCount = MaxGrade - MinGrade + 1

	// UnlistedWeekdayPriority ranks weekdays outside the preference order last.
	UnlistedWeekdayPriority = 99

	// SchemaVersion is the data-schema version written to settings.
	SchemaVersion = "2"
)

// PlanMode selects how an annual target is expressed.
type PlanMode string

const (
	PlanModeAnnual  PlanMode = "annual"
	PlanModeMonthly PlanMode = "monthly"
)

// PlanState is the per-fiscal-year plan lifecycle state.
type PlanState string

const (
	PlanStateUninitialized        PlanState = "uninitialized"
	PlanStateDefaultTargetCreated PlanState = "default_target_created"
	PlanStatePlanned              PlanState = "planned"
	PlanStateRecomputed           PlanState = "recomputed"
)

// Workbook plan-store layout
const (
	PlanSheetName       = "MODULE_PLAN"
	SettingsSheetName   = "MODULE_SETTINGS"
	DailyPlanSheetName  = "MODULE_DAILY"
	PlanTableMarker     = "PLAN_TABLE"
	ExceptionsMarker    = "EXCEPTIONS_TABLE"
	DefaultPlanMarkRow  = 1
	SectionGapRows      = 1
	PlanTableColumns    = 17
	ExceptionColumns    = 6
	BrokenSheetSuffix   = "_broken"
	WorkbookStoreSuffix = ".xlsx"
)

// PlanHeader is the header row of the PLAN_TABLE section.
var PlanHeader = []string{
	"fiscal_year", "grade", "mode", "annual_units",
	"m04", "m05", "m06", "m07", "m08", "m09", "m10", "m11", "m12", "m01", "m02", "m03",
	"note",
}

// ExceptionHeader is the header row of the EXCEPTIONS_TABLE section.
var ExceptionHeader = []string{"date", "grade", "delta_sessions", "reason", "note", "id"}

// DailyPlanHeader is the header row of the generated daily plan sheet.
var DailyPlanHeader = []string{"date", "fiscal_year", "week_key", "grade", "sessions", "elapsed"}
