package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/komaplan/internal/config"
	"github.com/julianstephens/komaplan/internal/planner"
	"github.com/julianstephens/komaplan/internal/storage"
	"github.com/julianstephens/komaplan/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Config  *config.Config
	Session *planner.Session
	Out     io.Writer
}

func NewContext(store storage.Provider, cfg *config.Config) *Context {
	return &Context{
		Store:   store,
		Config:  cfg,
		Session: planner.NewSession(store, cfg),
		Out:     os.Stdout,
	}
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// FiscalYear returns fy, or the fiscal year of the current or next Saturday when fy is 0.
func (c *Context) FiscalYear(fy int) int {
	if fy != 0 {
		return fy
	}
	return utils.FiscalYearOf(utils.CurrentOrNextSaturday(c.Session.Now()))
}
