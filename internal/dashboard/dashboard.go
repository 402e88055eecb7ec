package dashboard

import (
	"context"
	"log/slog"
	"slices"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"
	"dashkeeper/internal/modules"
)

// Dashboard is the collection of homes of the session's user.
type Dashboard struct {
	session *Session
	homes   map[string]*Home
	order   []string
}

// New returns an empty dashboard for s. Call Load to read the stored homes.
func New(s *Session) *Dashboard {
	return &Dashboard{session: s, homes: make(map[string]*Home)}
}

func (d *Dashboard) Session() *Session {
	return d.session
}

// Load reads the stored homes, makes sure both catalog homes exist and
// loads the dashboards of the home the request asked for, falling back to
// the first home with content of its own.
func (d *Dashboard) Load(ctx context.Context) error {
	rows, err := d.session.Store().Homes.ListByUser(ctx, d.session.Username())
	if err != nil {
		return err
	}
	clear(d.homes)
	d.order = d.order[:0]
	for _, row := range rows {
		d.register(homeFromRow(row, d.session))
	}

	for _, name := range []string{AvailableDashlets, SubscribableDashboards} {
		if d.HasHome(name) {
			continue
		}
		if err := d.ManageHome(ctx, NewHome(name)); err != nil {
			return err
		}
	}

	return d.LoadDashboards(ctx, "")
}

// LoadDashboards activates and loads the named home. An empty or unknown
// name falls back to the requested home of the session, then to
// RewindHomes. Without any home it does nothing.
func (d *Dashboard) LoadDashboards(ctx context.Context, name string) error {
	var home *Home
	switch {
	case name != "" && d.HasHome(name):
		home = d.homes[name]
	case d.session.requestedHome != "" && d.HasHome(d.session.requestedHome):
		home = d.homes[d.session.requestedHome]
	default:
		home = d.RewindHomes()
	}
	if home == nil {
		return nil
	}

	d.ActivateHome(home)
	return home.LoadDashboards(ctx)
}

func (d *Dashboard) register(h *Home) {
	h.session = d.session
	if _, ok := d.homes[h.Name()]; !ok {
		d.order = append(d.order, h.Name())
	}
	d.homes[h.Name()] = h
}

func (d *Dashboard) HasHome(name string) bool {
	_, ok := d.homes[name]
	return ok
}

func (d *Dashboard) GetHome(name string) (*Home, error) {
	h, ok := d.homes[name]
	if !ok {
		return nil, models.NewNotFoundError("Home", name)
	}
	return h, nil
}

// GetHomes returns the homes in the order they were stored.
func (d *Dashboard) GetHomes() []*Home {
	out := make([]*Home, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.homes[name])
	}
	return out
}

// ActivateHome makes home the only active home.
func (d *Dashboard) ActivateHome(home *Home) {
	if active := d.GetActiveHome(); active != nil && active != home {
		active.setActive(false)
	}
	home.setActive(true)
}

func (d *Dashboard) GetActiveHome() *Home {
	for _, name := range d.order {
		if h := d.homes[name]; h.IsActive() {
			return h
		}
	}
	return nil
}

// RewindHomes returns the first home that is not a catalog, or nil.
func (d *Dashboard) RewindHomes() *Home {
	for _, name := range d.order {
		if !isCatalog(name) {
			return d.homes[name]
		}
	}
	return nil
}

// UnsetHome forgets the named home without touching storage.
func (d *Dashboard) UnsetHome(name string) {
	if _, ok := d.homes[name]; !ok {
		return
	}
	delete(d.homes, name)
	d.order = slices.DeleteFunc(d.order, func(n string) bool { return n == name })
}

// HomePersists reports whether home is stored and copies its stored id.
func (d *Dashboard) HomePersists(ctx context.Context, home *Home) (bool, error) {
	row, err := d.session.Store().Homes.GetByName(ctx, d.session.Username(), home.Name())
	if err != nil {
		if models.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	home.SetID(row.ID)
	return true, nil
}

// ManageHome stores a home that is not stored yet and registers it.
// Otherwise the label of a non-reserved home is updated.
func (d *Dashboard) ManageHome(ctx context.Context, home *Home) error {
	if existing, ok := d.homes[home.Name()]; ok && existing != home {
		home.SetID(existing.ID())
		existing.SetLabel(home.Label())
		home = existing
	}
	d.restoreHomeOnRollback(home)

	if !d.HasHome(home.Name()) {
		stored, err := d.HomePersists(ctx, home)
		if err != nil {
			return err
		}
		if !stored {
			row := &models.Home{
				Name:     home.Name(),
				Label:    home.Label(),
				Username: d.session.Username(),
				Type:     home.Type(),
			}
			if err := d.session.Store().Homes.Create(ctx, row); err != nil {
				return err
			}
			home.SetID(row.ID)
			d.register(home)
			return nil
		}
		d.register(home)
	}

	if IsReserved(home.Name()) {
		return nil
	}
	return d.session.Store().Homes.UpdateLabel(ctx, home.ID(), home.Label())
}

// restoreHomeOnRollback forgets home again if it gets registered by the
// failing transaction and puts back its id and label.
func (d *Dashboard) restoreHomeOnRollback(home *Home) {
	id, label, registered := home.ID(), home.Label(), d.HasHome(home.Name())
	d.session.onRollback(func() {
		home.SetID(id)
		home.SetLabel(label)
		if !registered {
			d.UnsetHome(home.Name())
		}
	})
}

// RemoveHome deletes the named home together with its panes and dashlets.
// Reserved homes cannot be removed.
func (d *Dashboard) RemoveHome(ctx context.Context, name string) error {
	home, ok := d.homes[name]
	if !ok {
		return models.NewProgrammingError("trying to remove invalid dashboard home %q", name)
	}
	if IsReserved(name) {
		return models.NewProgrammingError("dashboard home %q is reserved and cannot be removed", name)
	}

	d.ActivateHome(home)
	if err := home.LoadDashboards(ctx); err != nil {
		return err
	}

	err := d.session.Transaction(ctx, "remove_home", func(ctx context.Context) error {
		if err := home.RemovePanes(ctx); err != nil {
			return err
		}
		return d.session.Store().Homes.Delete(ctx, home.ID())
	})
	if err != nil {
		return err
	}

	home.setActive(false)
	d.UnsetHome(name)
	return nil
}

// GetHomeKeyNameArray lists the homes a user may pick, never the catalogs.
// With onlyShared, private homes are left out as well.
func (d *Dashboard) GetHomeKeyNameArray(onlyShared bool) []Choice {
	var out []Choice
	for _, h := range d.GetHomes() {
		if isCatalog(h.Name()) {
			continue
		}
		if onlyShared && h.Type() != models.HomeTypeShared {
			continue
		}
		out = append(out, Choice{Name: h.Name(), Title: h.Label()})
	}
	return out
}

// Subscribe adds the shared pane paneID to the user's default home. The
// pane must be shared by an owner holding a role in common with the user.
func (d *Dashboard) Subscribe(ctx context.Context, paneID []byte) error {
	s := d.session
	shared, err := s.Store().Subscriptions.IsSubscribable(ctx, paneID)
	if err != nil {
		return err
	}
	if !shared {
		return models.NewNotFoundError("Subscribable dashboard", identity.Hex(paneID))
	}

	pane, err := s.Store().Panes.Get(ctx, paneID)
	if err != nil {
		return err
	}
	if pane.Username == s.Username() {
		return models.NewValidationError("cannot subscribe to an own dashboard")
	}
	roles, err := s.roles.RolesOf(ctx, pane.Username)
	if err != nil {
		return err
	}
	if !auth.SharesRole(s.User(), roles) {
		return models.NewNotFoundError("Subscribable dashboard", identity.Hex(paneID))
	}

	err = s.Transaction(ctx, "subscribe", func(ctx context.Context) error {
		err := s.Store().Subscriptions.CreateOverride(ctx, &models.DashboardOverride{
			DashboardID: paneID,
			Username:    s.Username(),
		})
		if err != nil {
			if models.IsConflict(err) {
				return models.NewConflictError("already subscribed to dashboard " + pane.Name)
			}
			return err
		}
		// overriding panes only ever show in the default home
		if d.HasHome(DefaultHome) {
			return nil
		}
		return d.ManageHome(ctx, NewHome(DefaultHome))
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "subscribed to dashboard",
		slog.String("pane", pane.Name), slog.String("owner", pane.Username))

	if home, ok := d.homes[DefaultHome]; ok && home.IsLoaded() {
		home.setActive(false)
		d.ActivateHome(home)
		return home.LoadDashboards(ctx)
	}
	return nil
}

// SetOverrideDisabled hides or shows a subscribed pane for the user.
func (d *Dashboard) SetOverrideDisabled(ctx context.Context, paneID []byte, disabled bool) error {
	if err := d.session.Store().Subscriptions.SetOverrideDisabled(ctx, paneID, d.session.Username(), disabled); err != nil {
		return err
	}
	if home, ok := d.homes[DefaultHome]; ok {
		for _, p := range home.panes {
			if p.IsOverriding() && slices.Equal(p.ID(), paneID) {
				p.Disable(disabled)
			}
		}
	}
	return nil
}

// DeployModuleDashlets aggregates the dashlets of every loaded module into
// the catalog.
func (d *Dashboard) DeployModuleDashlets(ctx context.Context, registry modules.Registry, opts DeployOptions) (DeployResult, error) {
	return NewDeployer(d.session.Store(), d.session.logger).Deploy(ctx, registry, opts)
}
