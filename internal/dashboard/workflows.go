package dashboard

import (
	"context"
	"strings"

	"dashkeeper/internal/models"
)

type CreateHomeInput struct {
	Name   string
	Label  string
	Shared bool
}

type CreateDashletInput struct {
	Home        string
	Pane        string
	PaneTitle   string
	Dashlet     string
	Title       string
	URL         string
	Description string
}

// MoveDashletInput edits a dashlet and optionally moves it to another pane
// or home. Empty target fields keep the current value.
type MoveDashletInput struct {
	Home    string
	Pane    string
	Dashlet string

	NewHome     string
	NewPane     string
	PaneTitle   string
	Title       string
	URL         string
	Description string
	// CreateNewHome and CreateNewPane require the target not to exist yet.
	CreateNewHome bool
	CreateNewPane bool
}

// MovePaneInput renames a pane and optionally moves it to another home.
type MovePaneInput struct {
	Home  string
	Pane  string
	Title string

	NewHome       string
	CreateNewHome bool
}

// OpenHome activates the named home and loads its panes.
func (d *Dashboard) OpenHome(ctx context.Context, name string) (*Home, error) {
	home, err := d.GetHome(name)
	if err != nil {
		return nil, err
	}
	d.ActivateHome(home)
	if err := home.LoadDashboards(ctx); err != nil {
		return nil, err
	}
	return home, nil
}

func (d *Dashboard) CreateHome(ctx context.Context, in CreateHomeInput) (*Home, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Home name is required")
	}
	if isCatalog(name) {
		return nil, models.NewValidationError("Home name " + name + " is reserved")
	}
	if d.HasHome(name) {
		return nil, models.NewConflictError("Home " + name + " already exists")
	}

	home := NewHome(name)
	if label := strings.TrimSpace(in.Label); label != "" {
		home.SetLabel(label)
	}
	if in.Shared {
		home.SetType(models.HomeTypeShared)
	}
	if err := d.ManageHome(ctx, home); err != nil {
		return nil, err
	}
	return home, nil
}

// CreateDashlet adds a dashlet, creating its home and pane when missing.
func (d *Dashboard) CreateDashlet(ctx context.Context, in CreateDashletInput) (*Dashlet, error) {
	homeName := strings.TrimSpace(in.Home)
	if homeName == "" {
		homeName = DefaultHome
	}
	paneName := strings.TrimSpace(in.Pane)
	dashletName := strings.TrimSpace(in.Dashlet)
	switch {
	case paneName == "":
		return nil, models.NewValidationError("Dashboard name is required")
	case dashletName == "":
		return nil, models.NewValidationError("Dashlet name is required")
	case strings.TrimSpace(in.URL) == "":
		return nil, models.NewValidationError("Dashlet url is required")
	case isCatalog(homeName):
		return nil, models.NewValidationError("Dashlets cannot be added to " + homeName)
	}

	home := NewHome(homeName)
	if d.HasHome(homeName) {
		var err error
		if home, err = d.OpenHome(ctx, homeName); err != nil {
			return nil, err
		}
	}

	pane, _ := home.GetPane(paneName)
	if pane == nil {
		pane = NewPane(paneName)
		if in.PaneTitle != "" {
			pane.SetTitle(in.PaneTitle)
		}
	}
	if pane.IsOverriding() {
		return nil, models.NewValidationError("Dashlets cannot be added to a subscribed dashboard")
	}
	if pane.HasDashlet(dashletName) {
		return nil, models.NewConflictError("Dashlet " + dashletName + " already exists in dashboard " + paneName)
	}

	dashlet := NewDashlet(dashletName, strings.TrimSpace(in.URL), pane)
	if in.Title != "" {
		dashlet.SetTitle(in.Title)
	}
	dashlet.SetDescription(in.Description)

	err := d.session.Transaction(ctx, "create_dashlet", func(ctx context.Context) error {
		if err := d.ManageHome(ctx, home); err != nil {
			return err
		}
		if err := home.ManagePanes(ctx, nil, pane); err != nil {
			return err
		}
		return pane.ManageDashlets(ctx, nil, dashlet)
	})
	if err != nil {
		return nil, err
	}
	return dashlet, nil
}

// MoveDashlet updates a dashlet and moves it to the target pane. A dashlet
// of the same name in a different target pane is rejected before anything
// is written. Nothing is written when nothing changed.
func (d *Dashboard) MoveDashlet(ctx context.Context, in MoveDashletInput) (*Dashlet, error) {
	orgHome, err := d.OpenHome(ctx, in.Home)
	if err != nil {
		return nil, err
	}
	orgPane, err := orgHome.GetPane(in.Pane)
	if err != nil {
		return nil, err
	}
	orgDashlet, err := orgPane.GetDashlet(in.Dashlet)
	if err != nil {
		return nil, err
	}
	if orgPane.IsOverriding() {
		return nil, models.NewValidationError("Dashlets of a subscribed dashboard cannot be edited")
	}

	home, err := d.targetHome(ctx, orgHome, in.NewHome, in.CreateNewHome)
	if err != nil {
		return nil, err
	}

	paneName := orgPane.Name()
	if in.NewPane != "" {
		paneName = in.NewPane
	}
	pane, _ := home.GetPane(paneName)
	switch {
	case pane == nil:
		pane = NewPane(paneName)
	case in.CreateNewPane && !pane.is(orgPane):
		return nil, models.NewConflictError("Dashboard " + paneName + " already exists")
	case pane.IsOverriding():
		return nil, models.NewValidationError("Dashlets cannot be moved to a subscribed dashboard")
	}
	if !pane.is(orgPane) && pane.HasDashlet(orgDashlet.Name()) {
		return nil, models.NewConflictError("Dashlet " + orgDashlet.Name() + " already exists in dashboard " + paneName)
	}

	dashlet := orgDashlet.Clone()
	if in.Title != "" {
		dashlet.SetTitle(in.Title)
	}
	if in.URL != "" {
		dashlet.SetURL(in.URL)
	}
	if in.Description != "" {
		dashlet.SetDescription(in.Description)
	}
	if home == orgHome && pane.is(orgPane) && in.PaneTitle == "" && dashlet.sameContent(orgDashlet) {
		return orgDashlet, nil
	}

	err = d.session.Transaction(ctx, "move_dashlet", func(ctx context.Context) error {
		if in.PaneTitle != "" {
			prevTitle := pane.Title()
			pane.SetTitle(in.PaneTitle)
			d.session.onRollback(func() { pane.SetTitle(prevTitle) })
		}
		if err := d.ManageHome(ctx, home); err != nil {
			return err
		}
		if err := home.ManagePanes(ctx, nil, pane); err != nil {
			return err
		}
		return pane.ManageDashlets(ctx, orgPane, dashlet)
	})
	if err != nil {
		return nil, err
	}

	if !pane.is(orgPane) {
		delete(orgPane.dashlets, orgDashlet.Name())
	}
	return dashlet, nil
}

// MovePane retitles a pane and moves it with its dashlets to the target
// home. The target must not hold a pane of the same name.
func (d *Dashboard) MovePane(ctx context.Context, in MovePaneInput) (*Pane, error) {
	orgHome, err := d.OpenHome(ctx, in.Home)
	if err != nil {
		return nil, err
	}
	pane, err := orgHome.GetPane(in.Pane)
	if err != nil {
		return nil, err
	}
	if pane.IsOverriding() {
		return nil, models.NewValidationError("Subscribed dashboards cannot be edited")
	}

	home, err := d.targetHome(ctx, orgHome, in.NewHome, in.CreateNewHome)
	if err != nil {
		return nil, err
	}
	if home != orgHome && home.HasPane(pane.Name()) {
		return nil, models.NewConflictError("Dashboard " + pane.Name() + " already exists in home " + home.Name())
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = pane.Title()
	}
	if home == orgHome && title == pane.Title() {
		return pane, nil
	}

	prevTitle := pane.Title()
	err = d.session.Transaction(ctx, "move_pane", func(ctx context.Context) error {
		pane.SetTitle(title)
		d.session.onRollback(func() { pane.SetTitle(prevTitle) })
		if err := d.ManageHome(ctx, home); err != nil {
			return err
		}
		return home.ManagePanes(ctx, orgHome, pane)
	})
	if err != nil {
		return nil, err
	}

	if home != orgHome {
		delete(orgHome.panes, pane.Name())
	}
	return pane, nil
}

// targetHome resolves the home a pane or dashlet is moved to. An unknown
// name yields a new, unstored home.
func (d *Dashboard) targetHome(ctx context.Context, orgHome *Home, name string, createNew bool) (*Home, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == orgHome.Name() {
		if createNew && name != "" {
			return nil, models.NewConflictError("Home " + name + " already exists")
		}
		return orgHome, nil
	}
	if isCatalog(name) {
		return nil, models.NewValidationError("Dashboards cannot be moved to " + name)
	}
	if !d.HasHome(name) {
		return NewHome(name), nil
	}
	if createNew {
		return nil, models.NewConflictError("Home " + name + " already exists")
	}
	return d.OpenHome(ctx, name)
}

// RenameHome changes the label of a non-reserved home.
func (d *Dashboard) RenameHome(ctx context.Context, name, label string) (*Home, error) {
	home, err := d.GetHome(name)
	if err != nil {
		return nil, err
	}
	if IsReserved(name) {
		return nil, models.NewValidationError("Home " + name + " is reserved and cannot be renamed")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, models.NewValidationError("Home label is required")
	}

	home.SetLabel(label)
	if err := d.ManageHome(ctx, home); err != nil {
		return nil, err
	}
	return home, nil
}

// RemovePane removes a pane of the named home.
func (d *Dashboard) RemovePane(ctx context.Context, homeName, paneName string) error {
	home, err := d.OpenHome(ctx, homeName)
	if err != nil {
		return err
	}
	if !home.HasPane(paneName) {
		return models.NewNotFoundError("Dashboard", paneName)
	}
	return home.RemovePane(ctx, paneName)
}

// RemoveDashlet removes a dashlet of a pane of the named home.
func (d *Dashboard) RemoveDashlet(ctx context.Context, homeName, paneName, dashletName string) error {
	home, err := d.OpenHome(ctx, homeName)
	if err != nil {
		return err
	}
	pane, err := home.GetPane(paneName)
	if err != nil {
		return err
	}
	if pane.IsOverriding() {
		return models.NewValidationError("Dashlets of a subscribed dashboard cannot be removed")
	}
	return pane.RemoveDashlet(ctx, dashletName)
}

// ReorderPane moves a pane of the named home to position.
func (d *Dashboard) ReorderPane(ctx context.Context, homeName, paneName string, position int) error {
	home, err := d.OpenHome(ctx, homeName)
	if err != nil {
		return err
	}
	return home.ReorderPane(ctx, paneName, position)
}
