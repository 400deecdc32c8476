package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/resource"
)

// counter is implemented by gateways that can count a table without
// reading it.
type counter interface {
	Count(ctx context.Context, table string) (int, error)
}

func (a *App) count(ctx context.Context, table string) (int, error) {
	if cn, ok := a.Gateway.(counter); ok {
		return cn.Count(ctx, table)
	}
	recs, err := a.Gateway.Query(ctx, table, resource.Query{})
	return len(recs), err
}

func (a *App) schemaParam(c echo.Context) (resource.Schema, error) {
	name := c.Param("resource")
	for _, s := range a.schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return resource.Schema{}, echo.NewHTTPError(http.StatusNotFound)
}

// recordUnavailable turns a failed loadedRecord into a response. Gateway
// failures go back to the list, where the queued notice is shown.
func recordUnavailable(c echo.Context, schema resource.Schema, err error) error {
	var ge *resource.GatewayError
	if errors.As(err, &ge) {
		return c.Redirect(http.StatusSeeOther, listURL(schema))
	}
	return err
}

func listURL(s resource.Schema) string {
	return "/admin/" + s.Name + "/"
}

func (a *App) handleAdmin(c echo.Context) error {
	s := GetSession(c)
	if !s.Authenticated {
		return Render(c, a.Views.AdminLogin(LoginPage{Page: a.page(c, "Sign in")}))
	}
	ws := a.workspaces.Get(s.OperatorID)
	ctx := c.Request().Context()

	counts := make([]ResourceCount, 0, len(a.schemas))
	for _, schema := range a.schemas {
		n, err := a.count(ctx, schema.Table)
		if err != nil {
			a.Log.Error().Err(err).Str("table", schema.Table).Msg("count failed")
			ws.Mailbox.NotifyFailure(fmt.Sprintf("Could not count %s.", strings.ToLower(schema.Plural)))
		}
		counts = append(counts, ResourceCount{Schema: schema, Count: n})
	}
	unread, err := a.Gateway.Query(ctx, resource.Messages.Table, resource.Query{Where: map[string]any{"read": false}})
	if err != nil {
		a.Log.Error().Err(err).Msg("unread query failed")
	}

	return Render(c, a.Views.AdminDashboard(DashboardPage{
		Page:   a.adminPage(c, ws, "Dashboard"),
		Counts: counts,
		Unread: len(unread),
	}))
}

func (a *App) handleAdminList(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	list := ws.List(schema)

	status := http.StatusOK
	if !list.Loaded() || c.QueryParam("refresh") != "" {
		if err := list.Load(c.Request().Context()); err != nil && !list.Loaded() {
			status = http.StatusBadGateway
		}
	}
	list.SetFilter(&resource.Filter{
		Text:     c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
	})

	return RenderStatus(c, status, a.Views.AdminList(AdminListPage{
		Page:       a.adminPage(c, ws, schema.Plural),
		Schema:     schema,
		Items:      list.Items(),
		Total:      len(list.All()),
		Filter:     list.Filter(),
		Categories: list.Categories(),
	}))
}

func (a *App) handleAdminNew(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	form := ws.Form(schema)
	if err := form.New(); err != nil {
		return a.formFailure(c, ws, form, err)
	}
	return a.renderForm(c, ws, form, http.StatusOK)
}

func (a *App) handleAdminEdit(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	ctx := c.Request().Context()
	list := ws.List(schema)
	rec, err := a.loadedRecord(ctx, list, c.Param("id"))
	if err != nil {
		return recordUnavailable(c, schema, err)
	}

	// Opening a message marks it as read.
	if schema.Name == resource.Messages.Name && !rec.Bool("read") {
		if err := list.Patch(ctx, rec.ID(), resource.Record{"read": true}); err == nil {
			rec["read"] = true
		}
	}

	form := ws.Form(schema)
	if err := form.Edit(rec); err != nil {
		return a.formFailure(c, ws, form, err)
	}
	return a.renderForm(c, ws, form, http.StatusOK)
}

// loadedRecord finds id in the operator's list, loading the list first if
// this is its first use. A failed load has already queued its notice.
func (a *App) loadedRecord(ctx context.Context, list *resource.ListController, id string) (resource.Record, error) {
	if !list.Loaded() {
		if err := list.Load(ctx); err != nil {
			return nil, err
		}
	}
	rec, ok := list.Get(id)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	return rec, nil
}

// handleAdminSave submits the posted draft. A draft already open for the
// same record is kept, so a retry after a failed write reuses an upload
// that already succeeded.
func (a *App) handleAdminSave(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	ctx := c.Request().Context()
	form := ws.Form(schema)
	list := ws.List(schema)

	id := c.FormValue(resource.FieldID)
	if form.State() == resource.StateEmpty || form.Draft().ID() != id {
		if id == "" {
			err = form.New()
		} else {
			var rec resource.Record
			if rec, err = a.loadedRecord(ctx, list, id); err != nil {
				return recordUnavailable(c, schema, err)
			}
			err = form.Edit(rec)
		}
		if err != nil {
			return a.formFailure(c, ws, form, err)
		}
	}

	if err := bindDraft(c, form, editableFields(schema)); err != nil {
		return a.formFailure(c, ws, form, err)
	}
	if err := bindMedia(c, form, a.Config.MaxUploadSize); err != nil {
		return a.formFailure(c, ws, form, err)
	}

	saved, err := form.Submit(ctx)
	if err != nil {
		// The controller has already queued the failure notice.
		return a.renderForm(c, ws, form, submitStatus(err))
	}
	a.Cache.Invalidate(schema.Table)
	a.Log.Info().Str("resource", schema.Name).Str("id", saved.ID()).Str("operator", s.Username).Msg("record saved")
	_ = list.Load(ctx)
	return c.Redirect(http.StatusSeeOther, listURL(schema))
}

func (a *App) handleAdminDelete(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	ctx := c.Request().Context()
	list := ws.List(schema)
	id := c.Param("id")
	if !list.Loaded() {
		if err := list.Load(ctx); err != nil {
			return c.Redirect(http.StatusSeeOther, listURL(schema))
		}
	}

	confirmed := c.FormValue("confirm") == "yes"
	err = list.Remove(ctx, id, resource.ConfirmFunc(func(string) bool { return confirmed }))
	if err == nil && confirmed {
		a.Cache.Invalidate(schema.Table)
		a.Log.Info().Str("resource", schema.Name).Str("id", id).Str("operator", s.Username).Msg("record deleted")
		form := ws.Form(schema)
		if form.State() != resource.StateEmpty && form.Draft().ID() == id {
			_ = form.Discard()
		}
	}
	return c.Redirect(http.StatusSeeOther, listURL(schema))
}

// handleAdminPatch applies the posted fields to one record without opening
// the form, e.g. a status change or a read toggle from the list.
func (a *App) handleAdminPatch(c echo.Context, s Session) error {
	schema, err := a.schemaParam(c)
	if err != nil {
		return err
	}
	ws := a.workspaces.Get(s.OperatorID)
	ctx := c.Request().Context()
	list := ws.List(schema)
	id := c.Param("id")
	if _, err := a.loadedRecord(ctx, list, id); err != nil {
		return recordUnavailable(c, schema, err)
	}

	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest)
	}
	changes := resource.Record{}
	for _, name := range editableFields(schema) {
		if _, ok := values[name]; ok {
			changes[name] = values.Get(name)
		}
	}
	if len(changes) == 0 {
		ws.Mailbox.NotifyFailure("Nothing to update.")
		return c.Redirect(http.StatusSeeOther, listURL(schema))
	}

	err = list.Patch(ctx, id, changes)
	switch {
	case err == nil:
		a.Cache.Invalidate(schema.Table)
		ws.Mailbox.NotifySuccess(fmt.Sprintf("%s updated.", schema.Label))
	case resource.IsValidation(err):
		ws.Mailbox.NotifyFailure(err.Error())
	}
	return c.Redirect(http.StatusSeeOther, listURL(schema))
}

func (a *App) handleAdminSettings(c echo.Context, s Session) error {
	ws := a.workspaces.Get(s.OperatorID)
	cfg := a.Config
	store := cfg.DatabasePath
	if cfg.Driver == DriverRedis {
		store = cfg.RedisAddr + " (prefix " + cfg.RedisPrefix + ")"
	}
	settings := []Setting{
		{Name: "Site name", Value: cfg.Name},
		{Name: "Site URL", Value: cfg.URL},
		{Name: "Storage driver", Value: cfg.Driver},
		{Name: "Storage", Value: store},
		{Name: "Media directory", Value: cfg.MediaDir},
		{Name: "Media URL", Value: cfg.MediaBaseURL},
		{Name: "Max upload size", Value: fmt.Sprintf("%d MB", cfg.MaxUploadSize>>20)},
		{Name: "Cache TTL", Value: cfg.CacheTTL.String()},
		{Name: "Log level", Value: cfg.LogLevel},
		{Name: "Signed in as", Value: s.Username},
	}
	return Render(c, a.Views.AdminSettings(SettingsPage{
		Page:     a.adminPage(c, ws, "Settings"),
		Settings: settings,
	}))
}

// formFailure reports an error raised before Submit and re-renders the form.
func (a *App) formFailure(c echo.Context, ws *Workspace, form *resource.FormController, err error) error {
	if errors.Is(err, resource.ErrBusy) {
		ws.Mailbox.NotifyFailure("A save is already in progress.")
	} else {
		ws.Mailbox.NotifyFailure(err.Error())
	}
	return a.renderForm(c, ws, form, submitStatus(err))
}

func (a *App) renderForm(c echo.Context, ws *Workspace, form *resource.FormController, status int) error {
	schema := form.Schema()
	draft := form.Draft()
	if draft == nil {
		draft = resource.Record{}
	}
	title := "New " + strings.ToLower(schema.Label)
	if draft.ID() != "" {
		title = "Edit " + strings.ToLower(schema.Label)
	}

	options := map[string][]resource.Record{}
	for _, f := range schema.Fields {
		if f.Kind != resource.KindRef {
			continue
		}
		recs, err := a.Gateway.Query(c.Request().Context(), f.RefTable, resource.Query{
			Order: resource.Order{Field: resource.FieldCreatedAt, Desc: true},
		})
		if err != nil {
			a.Log.Error().Err(err).Str("table", f.RefTable).Msg("reference options failed")
			continue
		}
		options[f.Name] = recs
	}

	page := AdminFormPage{
		Page:    a.adminPage(c, ws, title),
		Schema:  schema,
		Draft:   draft,
		State:   form.State(),
		Options: options,
	}
	if staged := form.Staged(); staged != nil {
		page.Preview = staged.Preview()
	}
	return RenderStatus(c, status, a.Views.AdminForm(page))
}
