// Package dashboard implements the per-user dashboard engine: homes, panes
// and dashlets, their storage identities, and the workflows that move them.
package dashboard

import "slices"

// Names of the homes every user has. The two catalog homes are never
// persisted with content of their own and are hidden from home pickers.
const (
	DefaultHome            = "Default Home"
	AvailableDashlets      = "Available Dashlets"
	SubscribableDashboards = "Subscribable Dashboards"
)

// ReservedHomes lists the home names that cannot be removed or relabelled.
var ReservedHomes = []string{DefaultHome, AvailableDashlets, SubscribableDashboards}

// IsReserved reports whether name is one of ReservedHomes.
func IsReserved(name string) bool {
	return slices.Contains(ReservedHomes, name)
}

func isCatalog(name string) bool {
	return name == AvailableDashlets || name == SubscribableDashboards
}

// Orderable holds a widget's position among its siblings. Zero means no
// explicit ordering has been stored yet.
type Orderable struct {
	priority int
}

func (o *Orderable) SetPriority(priority int) {
	o.priority = priority
}

func (o *Orderable) Priority() int {
	return o.priority
}

// Disableable holds a widget's visibility toggle.
type Disableable struct {
	disabled bool
}

func (d *Disableable) Disable(disabled bool) {
	d.disabled = disabled
}

func (d *Disableable) IsDisabled() bool {
	return d.disabled
}

// Overriding is implemented by widgets that may stand in for a widget owned
// by somebody else. Overriding widgets are never written back by their
// subscriber.
type Overriding interface {
	Override(overriding bool)
	IsOverriding() bool
}
