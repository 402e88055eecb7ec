package dashboard

import (
	"bytes"

	"dashkeeper/internal/models"
)

// Dashlet is a single embedded view inside a pane.
type Dashlet struct {
	Orderable
	Disableable

	id          []byte
	name        string
	title       string
	url         string
	description string
	module      string
	pane        *Pane
}

// NewDashlet returns an unpersisted dashlet titled after its name.
func NewDashlet(name, url string, pane *Pane) *Dashlet {
	return &Dashlet{name: name, title: name, url: url, pane: pane}
}

func (d *Dashlet) ID() []byte            { return d.id }
func (d *Dashlet) SetID(id []byte)       { d.id = id }
func (d *Dashlet) Name() string          { return d.name }
func (d *Dashlet) Title() string         { return d.title }
func (d *Dashlet) SetTitle(title string) { d.title = title }
func (d *Dashlet) URL() string           { return d.url }
func (d *Dashlet) SetURL(url string)     { d.url = url }
func (d *Dashlet) Description() string   { return d.description }
func (d *Dashlet) Pane() *Pane           { return d.pane }
func (d *Dashlet) SetPane(pane *Pane)    { d.pane = pane }

func (d *Dashlet) SetDescription(description string) {
	d.description = description
}

// Module names the module that declared a catalog dashlet.
func (d *Dashlet) Module() string {
	return d.module
}

// Clone copies d without its pane.
func (d *Dashlet) Clone() *Dashlet {
	c := *d
	c.id = bytes.Clone(d.id)
	c.pane = nil
	return &c
}

func (d *Dashlet) sameContent(other *Dashlet) bool {
	return d.title == other.title &&
		d.url == other.url &&
		d.description == other.description &&
		d.priority == other.priority
}

func (d *Dashlet) row(paneID []byte) *models.Dashlet {
	return &models.Dashlet{
		ID:          d.id,
		DashboardID: paneID,
		Name:        d.name,
		Label:       d.title,
		URL:         d.url,
		Description: d.description,
		Priority:    d.priority,
	}
}

func dashletFromRow(row models.Dashlet, pane *Pane) *Dashlet {
	d := &Dashlet{
		id:          row.ID,
		name:        row.Name,
		title:       row.Label,
		url:         row.URL,
		description: row.Description,
		pane:        pane,
	}
	d.SetPriority(row.Priority)
	return d
}
