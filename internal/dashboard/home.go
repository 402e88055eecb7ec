package dashboard

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"sort"

	"dashkeeper/internal/auth"
	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"
	"dashkeeper/internal/observability"
	"dashkeeper/internal/repository"
)

// loadState gates lazy loading: only the active home reads its panes, and
// only once per activation.
type loadState int

const (
	stateUnloaded loadState = iota
	stateActiveUnloaded
	stateActiveLoaded
)

// Home groups the panes of one user under a name.
type Home struct {
	id      uint
	name    string
	label   string
	typ     models.HomeType
	state   loadState
	panes   map[string]*Pane
	session *Session
}

// NewHome returns an unpersisted private home labelled after its name.
func NewHome(name string) *Home {
	return &Home{
		name:  name,
		label: name,
		typ:   models.HomeTypePrivate,
		panes: make(map[string]*Pane),
	}
}

func homeFromRow(row models.Home, s *Session) *Home {
	h := NewHome(row.Name)
	h.id = row.ID
	h.label = row.Label
	if row.Type != "" {
		h.typ = row.Type
	}
	h.session = s
	return h
}

func (h *Home) ID() uint                  { return h.id }
func (h *Home) SetID(id uint)             { h.id = id }
func (h *Home) Name() string              { return h.name }
func (h *Home) Label() string             { return h.label }
func (h *Home) SetLabel(label string)     { h.label = label }
func (h *Home) Type() models.HomeType     { return h.typ }
func (h *Home) SetType(t models.HomeType) { h.typ = t }

// IsActive reports whether h is the home the session is looking at.
func (h *Home) IsActive() bool {
	return h.state != stateUnloaded
}

// IsLoaded reports whether h has read its panes since it was activated.
func (h *Home) IsLoaded() bool {
	return h.state == stateActiveLoaded
}

func (h *Home) setActive(active bool) {
	switch {
	case !active:
		h.state = stateUnloaded
	case h.state == stateUnloaded:
		h.state = stateActiveUnloaded
	}
}

func (h *Home) requireSession() (*Session, error) {
	if h.session == nil {
		return nil, models.NewProgrammingError("home %q is not attached to a dashboard", h.name)
	}
	return h.session, nil
}

// GetPanes returns the panes ordered by priority, then name. Priorities can
// change between calls, so the order is recomputed every time.
func (h *Home) GetPanes(skipDisabled bool) []*Pane {
	out := make([]*Pane, 0, len(h.panes))
	for _, p := range h.panes {
		if skipDisabled && p.IsDisabled() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

func (h *Home) HasPane(name string) bool {
	_, ok := h.panes[name]
	return ok
}

func (h *Home) GetPane(name string) (*Pane, error) {
	p, ok := h.panes[name]
	if !ok {
		return nil, models.NewNotFoundError("Dashboard", name)
	}
	return p, nil
}

// AddPane registers pane with h in memory only.
func (h *Home) AddPane(pane *Pane) *Pane {
	pane.SetHome(h)
	h.panes[pane.Name()] = pane
	return pane
}

// AddPaneNamed registers a new pane titled name.
func (h *Home) AddPaneNamed(name string) *Pane {
	return h.AddPane(NewPane(name))
}

// RemovePane deletes the named pane with its dashlets and evicts it.
// Overriding panes are only evicted, their owner's rows stay untouched.
func (h *Home) RemovePane(ctx context.Context, name string) error {
	pane, ok := h.panes[name]
	if !ok {
		return models.NewProgrammingError("trying to remove invalid dashboard pane %q", name)
	}
	s, err := h.requireSession()
	if err != nil {
		return err
	}

	if !pane.IsOverriding() {
		err := s.Transaction(ctx, "remove_pane", func(ctx context.Context) error {
			if err := pane.RemoveDashlets(ctx); err != nil {
				return err
			}
			if pane.ID() == nil {
				return nil
			}
			return s.Store().Panes.Delete(ctx, pane.ID(), h.id)
		})
		if err != nil {
			return err
		}
	}
	delete(h.panes, name)
	return nil
}

// RemovePanes removes the named panes, or all of them when none are named.
func (h *Home) RemovePanes(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		for _, p := range h.GetPanes(false) {
			names = append(names, p.Name())
		}
	}
	for _, name := range names {
		if err := h.RemovePane(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// ManagePanes persists panes under h. A pane present in neither h nor
// origin is inserted. Anything else is an update that rewrites the pane's
// id, home and label from its previous id and re-homes its dashlets. The
// panes are registered with h afterwards. Overriding panes are skipped.
func (h *Home) ManagePanes(ctx context.Context, origin *Home, panes ...*Pane) error {
	s, err := h.requireSession()
	if err != nil {
		return err
	}
	if h.id == 0 {
		return models.NewProgrammingError("home %q must be stored before its panes", h.name)
	}

	return s.Transaction(ctx, "manage_panes", func(ctx context.Context) error {
		for _, pane := range panes {
			if pane.IsOverriding() {
				continue
			}
			newID := identity.PaneID(s.Username(), h.name, pane.Name())

			h.restorePaneOnRollback(s, pane)

			if !h.HasPane(pane.Name()) && (origin == nil || !origin.HasPane(pane.Name())) {
				pane.SetID(newID)
				if err := s.Store().Panes.Create(ctx, pane.row(h.id, s.Username())); err != nil {
					return err
				}
				h.AddPane(pane)
				continue
			}

			oldID := h.previousPaneID(pane, origin)
			if oldID == nil {
				oldID = newID
			}
			pane.SetID(newID)
			if err := s.Store().Panes.Rekey(ctx, oldID, pane.row(h.id, s.Username())); err != nil {
				return err
			}
			h.AddPane(pane)
			if err := pane.ManageDashlets(ctx, nil, pane.GetDashlets()...); err != nil {
				return err
			}
		}
		return nil
	})
}

// restorePaneOnRollback puts back the id and parent of pane and whatever h
// held under its name.
func (h *Home) restorePaneOnRollback(s *Session, pane *Pane) {
	id, parent := pane.ID(), pane.Home()
	prev, had := h.panes[pane.Name()]
	s.onRollback(func() {
		pane.SetID(id)
		pane.SetHome(parent)
		if had {
			h.panes[pane.Name()] = prev
		} else {
			delete(h.panes, pane.Name())
		}
	})
}

func (h *Home) previousPaneID(pane *Pane, origin *Home) []byte {
	if pane.ID() != nil {
		return pane.ID()
	}
	if prev, ok := h.panes[pane.Name()]; ok && prev.ID() != nil {
		return prev.ID()
	}
	if origin != nil {
		if prev, ok := origin.panes[pane.Name()]; ok {
			return prev.ID()
		}
	}
	return nil
}

// ReorderPane moves the named pane to position among the panes of h and
// stores the resulting 1-based priority of every pane for the acting user.
func (h *Home) ReorderPane(ctx context.Context, name string, position int) error {
	pane, err := h.GetPane(name)
	if err != nil {
		return err
	}
	s, err := h.requireSession()
	if err != nil {
		return err
	}

	ordered := slices.DeleteFunc(h.GetPanes(false), func(p *Pane) bool { return p == pane })
	position = max(0, min(position, len(ordered)))
	ordered = slices.Insert(ordered, position, pane)

	return s.Transaction(ctx, "reorder_pane", func(ctx context.Context) error {
		for i, p := range ordered {
			order := &models.DashboardOrder{
				DashboardID: p.ID(),
				Username:    s.Username(),
				Priority:    i + 1,
			}
			var err error
			if p.Priority() < 1 {
				err = s.Store().Orders.Insert(ctx, order)
			} else {
				err = s.Store().Orders.Update(ctx, order)
			}
			if err != nil {
				return err
			}
			p.SetPriority(order.Priority)
		}
		return nil
	})
}

// LoadDashboards reads the panes of h and their dashlets, replacing what is
// held in memory. It does nothing unless h was activated and has not been
// loaded since.
func (h *Home) LoadDashboards(ctx context.Context) error {
	if h.state != stateActiveUnloaded {
		return nil
	}
	s, err := h.requireSession()
	if err != nil {
		return err
	}

	span, ctx := observability.NewSpan(ctx, "home.load")
	defer span.End()

	panes := make(map[string]*Pane)
	rows, err := s.Store().Panes.ListByHome(ctx, h.id, s.Username())
	if err != nil {
		span.SetError(err)
		return err
	}
	for _, row := range rows {
		pane := NewPane(row.Name)
		pane.SetID(row.ID)
		pane.SetTitle(row.Label)
		pane.SetPriority(row.Priority)
		pane.SetHome(h)

		dashlets, err := s.Store().Dashlets.ListByPane(ctx, row.ID)
		if err != nil {
			span.SetError(err)
			return err
		}
		for _, d := range dashlets {
			pane.AddDashlet(dashletFromRow(d, pane))
		}
		panes[pane.Name()] = pane
	}

	if h.name == DefaultHome {
		if err := h.loadSubscribed(ctx, s, panes); err != nil {
			span.SetError(err)
			return err
		}
	}

	h.panes = panes
	h.state = stateActiveLoaded
	observability.HomesLoaded.Inc()
	return nil
}

// loadSubscribed adds the panes the user subscribed to as overriding panes.
// An owned pane of the same name wins.
func (h *Home) loadSubscribed(ctx context.Context, s *Session, panes map[string]*Pane) error {
	rows, err := s.Store().Subscriptions.ListSubscribed(ctx, s.Username())
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, taken := panes[row.Name]; taken {
			s.logger.DebugContext(ctx, "subscribed pane shadowed by own pane",
				slog.String("pane", row.Name), slog.String("owner", row.Owner))
			continue
		}
		pane := NewPane(row.Name)
		pane.SetID(row.DashboardID)
		pane.SetTitle(row.Label)
		if row.OverrideLabel != nil && *row.OverrideLabel != "" {
			pane.SetTitle(*row.OverrideLabel)
		}
		pane.owner = row.Owner
		pane.Override(true)
		pane.Disable(row.Disabled)
		pane.SetPriority(row.Priority)
		pane.SetHome(h)

		dashlets, err := s.Store().Dashlets.ListByPane(ctx, row.DashboardID)
		if err != nil {
			return err
		}
		for _, d := range dashlets {
			pane.AddDashlet(dashletFromRow(d, pane))
		}
		panes[pane.Name()] = pane
	}
	return nil
}

// Choice is a name and its display text.
type Choice struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// GetPaneKeyTitleArray lists the enabled panes for a picker.
func (h *Home) GetPaneKeyTitleArray() []Choice {
	panes := h.GetPanes(true)
	out := make([]Choice, 0, len(panes))
	for _, p := range panes {
		out = append(out, Choice{Name: p.Name(), Title: p.Title()})
	}
	return out
}

// MarkSubscribable shares the named pane with users holding a common role.
func (h *Home) MarkSubscribable(ctx context.Context, name string) error {
	pane, err := h.GetPane(name)
	if err != nil {
		return err
	}
	if pane.IsOverriding() {
		return models.NewValidationError("only own dashboards can be shared")
	}
	if pane.ID() == nil {
		return models.NewProgrammingError("pane %q must be stored before it is shared", name)
	}
	s, err := h.requireSession()
	if err != nil {
		return err
	}
	return s.Store().Subscriptions.MarkSubscribable(ctx, pane.ID())
}

// GetSubscribableDashboards yields the shared panes visible to the acting
// user, in query order. A pane is visible when its owner holds at least one
// role of the acting user. q.Limit and q.Offset count visible panes only.
// Outside the active "Subscribable Dashboards" home the sequence is empty.
func (h *Home) GetSubscribableDashboards(ctx context.Context, q repository.SubscribableQuery) (iter.Seq2[*Pane, error], error) {
	if h.name != SubscribableDashboards || !h.IsActive() {
		return func(func(*Pane, error) bool) {}, nil
	}
	s, err := h.requireSession()
	if err != nil {
		return nil, err
	}

	// role visibility is decided here, so the store must not page
	limit, offset := q.Limit, q.Offset
	q.Limit, q.Offset = 0, 0
	rows, err := s.Store().Subscriptions.ListSubscribable(ctx, s.Username(), q)
	if err != nil {
		return nil, err
	}

	return func(yield func(*Pane, error) bool) {
		visible := make(map[string]bool)
		skipped, emitted := 0, 0
		for _, row := range rows {
			if limit > 0 && emitted >= limit {
				return
			}
			shares, seen := visible[row.Username]
			if !seen {
				roles, err := s.roles.RolesOf(ctx, row.Username)
				if err != nil {
					yield(nil, err)
					return
				}
				shares = auth.SharesRole(s.User(), roles)
				visible[row.Username] = shares
			}
			if !shares {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			emitted++

			pane := NewPane(row.Name)
			pane.SetID(row.DashboardID)
			pane.SetTitle(row.Label)
			pane.Disable(row.Disabled)
			pane.owner = row.Username
			pane.acceptance = row.Acceptance
			pane.SetHome(h)
			if !yield(pane, nil) {
				return
			}
		}
	}, nil
}

// GetModuleDashlets yields catalog dashlets keyed by the declaring module.
// Dashlets declared inside a module dashboard carry an unstored pane of
// that name. Outside the active "Available Dashlets" home the sequence is
// empty.
func (h *Home) GetModuleDashlets(ctx context.Context, q repository.ModuleDashletQuery) (iter.Seq2[string, *Dashlet], error) {
	if h.name != AvailableDashlets || !h.IsActive() {
		return func(func(string, *Dashlet) bool) {}, nil
	}
	s, err := h.requireSession()
	if err != nil {
		return nil, err
	}

	rows, err := s.Store().ModuleDashlets.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return func(yield func(string, *Dashlet) bool) {
		for _, row := range rows {
			d := &Dashlet{
				id:          row.ID,
				name:        row.Name,
				title:       row.Label,
				url:         row.URL,
				description: row.Description,
				module:      row.Module,
			}
			d.SetPriority(row.Priority)
			if row.Pane != nil {
				d.pane = NewPane(*row.Pane)
			}
			if !yield(row.Module, d) {
				return
			}
		}
	}, nil
}
