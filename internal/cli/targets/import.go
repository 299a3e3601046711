package targets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/komaplan/internal/cli"
	errs "github.com/julianstephens/komaplan/internal/errors"
	"github.com/julianstephens/komaplan/internal/models"
	"github.com/julianstephens/komaplan/internal/validation"
)

// ImportCmd loads targets from a YAML file. Grades missing from the file keep
// their current targets.
type ImportCmd struct {
	File string `arg:"" help:"YAML file with targets." type:"existingfile"`
	FY   int    `help:"Fiscal year, overriding the file." name:"fy"`
}

// TargetFile is the YAML import format:
//
//	fiscal_year: 2025
//	targets:
//	  - grade: 1
//	    units: 35
//	  - grade: 3
//	    monthly: {4: 3, 5: 3, 6: 2}
type TargetFile struct {
	FiscalYear int           `yaml:"fiscal_year"`
	Targets    []TargetEntry `yaml:"targets"`
}

type TargetEntry struct {
	Grade   int             `yaml:"grade"`
	Mode    string          `yaml:"mode"`
	Units   float64         `yaml:"units"`
	Monthly map[int]float64 `yaml:"monthly"`
	Note    string          `yaml:"note"`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	var file TargetFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return errs.Validation("invalid target file %s: %v", c.File, err)
	}

	fy := c.FY
	if fy == 0 {
		fy = file.FiscalYear
	}
	fy = ctx.FiscalYear(fy)

	// Validate every entry before touching the store.
	imported := make([]models.AnnualTarget, 0, len(file.Targets))
	seen := map[int]bool{}
	for _, e := range file.Targets {
		if seen[e.Grade] {
			return errs.Validation("grade %d appears more than once in %s", e.Grade, c.File)
		}
		seen[e.Grade] = true
		t, err := validation.Target(validation.TargetInput{
			FiscalYear:  fy,
			Grade:       e.Grade,
			Mode:        e.Mode,
			AnnualUnits: e.Units,
			Monthly:     e.Monthly,
			Note:        e.Note,
		})
		if err != nil {
			return fmt.Errorf("grade %d: %w", e.Grade, err)
		}
		imported = append(imported, t)
	}
	if len(imported) == 0 {
		return errs.Validation("%s contains no targets", c.File)
	}

	set, err := ctx.Session.EnsureTargets(fy)
	if err != nil {
		return err
	}
	for _, t := range imported {
		set.Targets.Set(t.Grade, t)
	}
	if err := ctx.Store.SaveTargets(set); err != nil {
		return err
	}
	ctx.Printf("Imported %d target(s) for fiscal year %d.\n", len(imported), fy)
	ctx.Println(cli.RenderTargets(set))
	return nil
}
