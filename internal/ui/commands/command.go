package commands

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"catalogadmin/internal/api"
	"catalogadmin/internal/catalog"
	"catalogadmin/internal/domain"
	"catalogadmin/internal/eventbus"
	"catalogadmin/internal/form"
)

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// CommandContext provides context for command execution
type CommandContext struct {
	Catalog *catalog.Service
	Client  *api.Client
	Bus     eventbus.EventBus
	Logger  *zap.SugaredLogger
	Timeout time.Duration
}

func (c *CommandContext) context() (context.Context, context.CancelFunc) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (c *CommandContext) publish(e eventbus.DomainEvent) {
	if c.Bus != nil {
		c.Bus.Publish(e)
	}
}

func (c *CommandContext) fail(message string, err error) {
	c.Logger.Warnw(message, "error", err)
	c.publish(eventbus.ErrorEvent{Message: message, Err: err})
	if errors.Is(err, api.ErrUnauthorized) {
		c.publish(eventbus.LoggedOutEvent{Reason: "session expired"})
	}
}

func (c *CommandContext) binding(kind catalog.Kind) (catalog.Binding, error) {
	b, ok := c.Catalog.Binding(kind)
	if !ok {
		return nil, errors.New("unknown resource " + string(kind))
	}
	return b, nil
}

// ListLoadedMsg carries a fetched listing
type ListLoadedMsg struct {
	Kind    catalog.Kind
	Records []catalog.Record
	Err     error
}

// LoadListCommand fetches the listing of one resource
type LoadListCommand struct {
	ctx  *CommandContext
	kind catalog.Kind
	lang catalog.Language
}

// NewLoadListCommand creates a new list command
func NewLoadListCommand(ctx *CommandContext, kind catalog.Kind, lang catalog.Language) *LoadListCommand {
	return &LoadListCommand{ctx: ctx, kind: kind, lang: lang}
}

// Execute fetches the listing in the background
func (c *LoadListCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		b, err := c.ctx.binding(c.kind)
		if err != nil {
			return ListLoadedMsg{Kind: c.kind, Err: err}
		}
		ctx, cancel := c.ctx.context()
		defer cancel()

		records, err := b.List(ctx, c.lang)
		if err != nil {
			c.ctx.fail("failed to load "+string(c.kind), err)
		}
		return ListLoadedMsg{Kind: c.kind, Records: records, Err: err}
	}
}

// FormLoadedMsg carries the descriptors for a create or edit form
type FormLoadedMsg struct {
	Kind     catalog.Kind
	ID       int
	Fields   []form.Field
	Defaults map[string]any
	Err      error
}

// LoadFormCommand fetches what a form needs, including related listings
type LoadFormCommand struct {
	ctx      *CommandContext
	kind     catalog.Kind
	id       int
	lang     catalog.Language
	defaults map[string]any
}

// NewLoadFormCommand creates a new form command; id 0 means a create form
func NewLoadFormCommand(ctx *CommandContext, kind catalog.Kind, id int, lang catalog.Language, defaults map[string]any) *LoadFormCommand {
	return &LoadFormCommand{ctx: ctx, kind: kind, id: id, lang: lang, defaults: defaults}
}

// Execute loads the form descriptors in the background
func (c *LoadFormCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		msg := FormLoadedMsg{Kind: c.kind, ID: c.id, Defaults: c.defaults}
		b, err := c.ctx.binding(c.kind)
		if err != nil {
			msg.Err = err
			return msg
		}
		ctx, cancel := c.ctx.context()
		defer cancel()

		msg.Fields, msg.Err = b.Fields(ctx, c.id, c.lang)
		if msg.Err != nil {
			c.ctx.fail("failed to load form for "+string(c.kind), msg.Err)
		}
		return msg
	}
}

// SavedMsg reports the result of a create or update
type SavedMsg struct {
	Kind catalog.Kind
	ID   int
	Op   domain.Op
	Err  error
}

// SaveCommand creates or replaces a record
type SaveCommand struct {
	ctx    *CommandContext
	kind   catalog.Kind
	id     int
	values map[string]any
}

// NewSaveCommand creates a new save command; id 0 creates
func NewSaveCommand(ctx *CommandContext, kind catalog.Kind, id int, values map[string]any) *SaveCommand {
	return &SaveCommand{ctx: ctx, kind: kind, id: id, values: values}
}

// Execute saves in the background and announces the change on success
func (c *SaveCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		op := domain.OpUpdated
		if c.id == 0 {
			op = domain.OpCreated
		}
		b, err := c.ctx.binding(c.kind)
		if err != nil {
			return SavedMsg{Kind: c.kind, ID: c.id, Op: op, Err: err}
		}
		ctx, cancel := c.ctx.context()
		defer cancel()

		id, err := b.Save(ctx, c.id, c.values)
		if err != nil {
			c.ctx.fail("failed to save "+string(c.kind), err)
			return SavedMsg{Kind: c.kind, ID: c.id, Op: op, Err: err}
		}
		c.ctx.publish(eventbus.ResourceChangedEvent{Resource: c.kind, ID: id, Op: op})
		return SavedMsg{Kind: c.kind, ID: id, Op: op}
	}
}

// DeletedMsg reports the result of a delete
type DeletedMsg struct {
	Kind catalog.Kind
	ID   int
	Err  error
}

// DeleteCommand removes a record
type DeleteCommand struct {
	ctx  *CommandContext
	kind catalog.Kind
	id   int
}

// NewDeleteCommand creates a new delete command
func NewDeleteCommand(ctx *CommandContext, kind catalog.Kind, id int) *DeleteCommand {
	return &DeleteCommand{ctx: ctx, kind: kind, id: id}
}

// Execute deletes in the background and announces the change on success
func (c *DeleteCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		b, err := c.ctx.binding(c.kind)
		if err != nil {
			return DeletedMsg{Kind: c.kind, ID: c.id, Err: err}
		}
		ctx, cancel := c.ctx.context()
		defer cancel()

		if err := b.Delete(ctx, c.id); err != nil {
			c.ctx.fail("failed to delete "+string(c.kind), err)
			return DeletedMsg{Kind: c.kind, ID: c.id, Err: err}
		}
		c.ctx.publish(eventbus.ResourceChangedEvent{Resource: c.kind, ID: c.id, Op: domain.OpDeleted})
		return DeletedMsg{Kind: c.kind, ID: c.id}
	}
}

// LoginMsg reports the result of a login attempt
type LoginMsg struct {
	Username string
	Token    string
	Err      error
}

// LoginCommand exchanges credentials for a token
type LoginCommand struct {
	ctx      *CommandContext
	username string
	password string
}

// NewLoginCommand creates a new login command
func NewLoginCommand(ctx *CommandContext, username, password string) *LoginCommand {
	return &LoginCommand{ctx: ctx, username: username, password: password}
}

// Execute logs in in the background
func (c *LoginCommand) Execute() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.ctx.context()
		defer cancel()

		token, err := c.ctx.Client.Login(ctx, c.username, c.password)
		if err != nil {
			c.ctx.Logger.Infow("login failed", "username", c.username, "error", err)
			return LoginMsg{Username: c.username, Err: err}
		}
		c.ctx.publish(eventbus.LoginSucceededEvent{Username: c.username, Token: token})
		return LoginMsg{Username: c.username, Token: token}
	}
}
