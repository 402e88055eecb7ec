package dashboard

import (
	"bytes"
	"context"
	"sort"

	"dashkeeper/internal/identity"
	"dashkeeper/internal/models"
)

// Pane is a named dashboard inside a home, holding dashlets.
type Pane struct {
	Orderable
	Disableable

	id         []byte
	name       string
	title      string
	owner      string
	acceptance int
	overriding bool
	home       *Home
	dashlets   map[string]*Dashlet
}

var _ Overriding = (*Pane)(nil)

// NewPane returns an unpersisted pane titled after its name.
func NewPane(name string) *Pane {
	return &Pane{name: name, title: name, dashlets: make(map[string]*Dashlet)}
}

func (p *Pane) ID() []byte            { return p.id }
func (p *Pane) SetID(id []byte)       { p.id = id }
func (p *Pane) Name() string          { return p.name }
func (p *Pane) Title() string         { return p.title }
func (p *Pane) SetTitle(title string) { p.title = title }
func (p *Pane) Home() *Home           { return p.home }
func (p *Pane) SetHome(home *Home)    { p.home = home }

// Owner is the user the pane belongs to. It is only set for panes read from
// the subscription catalog or subscribed to.
func (p *Pane) Owner() string { return p.owner }

// Acceptance is the number of users subscribed to a shared pane.
func (p *Pane) Acceptance() int { return p.acceptance }

func (p *Pane) Override(overriding bool) { p.overriding = overriding }
func (p *Pane) IsOverriding() bool       { return p.overriding }

func (p *Pane) HasDashlet(name string) bool {
	_, ok := p.dashlets[name]
	return ok
}

func (p *Pane) GetDashlet(name string) (*Dashlet, error) {
	d, ok := p.dashlets[name]
	if !ok {
		return nil, models.NewNotFoundError("Dashlet", name)
	}
	return d, nil
}

// GetDashlets returns the dashlets ordered by priority, then name.
func (p *Pane) GetDashlets() []*Dashlet {
	out := make([]*Dashlet, 0, len(p.dashlets))
	for _, d := range p.dashlets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// AddDashlet registers d in memory only.
func (p *Pane) AddDashlet(d *Dashlet) {
	d.SetPane(p)
	p.dashlets[d.Name()] = d
}

func (p *Pane) session() (*Session, error) {
	if p.home == nil || p.home.session == nil {
		return nil, models.NewProgrammingError("pane %q is not attached to a loaded home", p.name)
	}
	return p.home.session, nil
}

// ManageDashlets persists dashlets under this pane. A dashlet found in
// neither this pane nor origin is inserted. Anything else is updated in
// place of its previous id, which moves it here when it came from origin.
// Each dashlet is registered with the pane afterwards.
func (p *Pane) ManageDashlets(ctx context.Context, origin *Pane, dashlets ...*Dashlet) error {
	s, err := p.session()
	if err != nil {
		return err
	}
	if p.overriding {
		return models.NewProgrammingError("cannot manage dashlets of overriding pane %q", p.name)
	}

	for _, d := range dashlets {
		newID := identity.DashletID(s.Username(), p.home.Name(), p.name, d.Name())
		p.restoreDashletOnRollback(s, d)

		if !p.HasDashlet(d.Name()) && (origin == nil || !origin.HasDashlet(d.Name())) {
			d.SetID(newID)
			if err := s.Store().Dashlets.Create(ctx, d.row(p.id)); err != nil {
				return err
			}
		} else {
			oldID := p.previousDashletID(d, origin)
			if oldID == nil {
				oldID = newID
			}
			d.SetID(newID)
			if err := s.Store().Dashlets.Rekey(ctx, oldID, d.row(p.id)); err != nil {
				return err
			}
		}
		p.AddDashlet(d)
	}
	return nil
}

func (p *Pane) restoreDashletOnRollback(s *Session, d *Dashlet) {
	id, parent := d.ID(), d.Pane()
	prev, had := p.dashlets[d.Name()]
	s.onRollback(func() {
		d.SetID(id)
		d.SetPane(parent)
		if had {
			p.dashlets[d.Name()] = prev
		} else {
			delete(p.dashlets, d.Name())
		}
	})
}

func (p *Pane) previousDashletID(d *Dashlet, origin *Pane) []byte {
	if d.ID() != nil {
		return d.ID()
	}
	if prev, ok := p.dashlets[d.Name()]; ok && prev.ID() != nil {
		return prev.ID()
	}
	if origin != nil {
		if prev, ok := origin.dashlets[d.Name()]; ok {
			return prev.ID()
		}
	}
	return nil
}

// RemoveDashlet deletes the named dashlet of this pane.
func (p *Pane) RemoveDashlet(ctx context.Context, name string) error {
	d, err := p.GetDashlet(name)
	if err != nil {
		return err
	}
	s, err := p.session()
	if err != nil {
		return err
	}
	if !p.overriding {
		if err := s.Store().Dashlets.Delete(ctx, d.ID(), p.id); err != nil {
			return err
		}
	}
	delete(p.dashlets, name)
	return nil
}

// RemoveDashlets deletes every dashlet of this pane.
func (p *Pane) RemoveDashlets(ctx context.Context) error {
	s, err := p.session()
	if err != nil {
		return err
	}
	if !p.overriding && p.id != nil {
		if err := s.Store().Dashlets.DeleteByPane(ctx, p.id); err != nil {
			return err
		}
	}
	clear(p.dashlets)
	return nil
}

func (p *Pane) row(homeID uint, username string) *models.Pane {
	return &models.Pane{
		ID:       p.id,
		HomeID:   homeID,
		Name:     p.name,
		Label:    p.title,
		Username: username,
	}
}

func (p *Pane) is(other *Pane) bool {
	return p == other || (p.id != nil && bytes.Equal(p.id, other.id))
}
