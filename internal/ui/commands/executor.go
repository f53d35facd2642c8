package commands

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"catalogadmin/internal/api"
	"catalogadmin/internal/catalog"
	"catalogadmin/internal/eventbus"
)

// Executor handles command execution
type Executor struct {
	ctx *CommandContext
}

// NewExecutor creates a new command executor
func NewExecutor(svc *catalog.Service, client *api.Client, bus eventbus.EventBus, lggr *zap.SugaredLogger) *Executor {
	if lggr == nil {
		lggr = zap.NewNop().Sugar()
	}
	return &Executor{
		ctx: &CommandContext{
			Catalog: svc,
			Client:  client,
			Bus:     bus,
			Logger:  lggr.Named("commands"),
			Timeout: 30 * time.Second,
		},
	}
}

// ExecuteLoadList creates and executes a list command
func (e *Executor) ExecuteLoadList(kind catalog.Kind, lang catalog.Language) tea.Cmd {
	cmd := NewLoadListCommand(e.ctx, kind, lang)
	return cmd.Execute()
}

// ExecuteLoadForm creates and executes a form command
func (e *Executor) ExecuteLoadForm(kind catalog.Kind, id int, lang catalog.Language, defaults map[string]any) tea.Cmd {
	cmd := NewLoadFormCommand(e.ctx, kind, id, lang, defaults)
	return cmd.Execute()
}

// ExecuteSave creates and executes a save command
func (e *Executor) ExecuteSave(kind catalog.Kind, id int, values map[string]any) tea.Cmd {
	cmd := NewSaveCommand(e.ctx, kind, id, values)
	return cmd.Execute()
}

// ExecuteDelete creates and executes a delete command
func (e *Executor) ExecuteDelete(kind catalog.Kind, id int) tea.Cmd {
	cmd := NewDeleteCommand(e.ctx, kind, id)
	return cmd.Execute()
}

// ExecuteLogin creates and executes a login command
func (e *Executor) ExecuteLogin(username, password string) tea.Cmd {
	cmd := NewLoginCommand(e.ctx, username, password)
	return cmd.Execute()
}
