package models

// Pane is a row of dashboard. The id is content-derived from
// (username, home name, pane name).
type Pane struct {
	ID       []byte `gorm:"primaryKey" json:"id"`
	HomeID   uint   `gorm:"not null;index:idx_dashboard_home_user" json:"home_id"`
	Name     string `gorm:"size:64;not null" json:"name"`
	Label    string `gorm:"size:64;not null" json:"label"`
	Username string `gorm:"size:254;not null;index:idx_dashboard_home_user" json:"username"`
}

// TableName specifies the table name for GORM.
func (Pane) TableName() string {
	return "dashboard"
}

// PaneWithPriority is a pane joined with the reading user's order override.
// Priority is zero when the user never reordered the pane.
type PaneWithPriority struct {
	Pane
	Priority int `json:"priority"`
}

// DashboardOrder is a per-user pane position.
type DashboardOrder struct {
	DashboardID []byte `gorm:"primaryKey" json:"dashboard_id"`
	Username    string `gorm:"primaryKey;size:254" json:"username"`
	Priority    int    `gorm:"not null" json:"priority"`
}

// TableName specifies the table name for GORM.
func (DashboardOrder) TableName() string {
	return "dashboard_order"
}
