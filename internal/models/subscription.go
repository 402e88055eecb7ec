package models

// DashboardSubscribable marks a pane as shareable with other users.
type DashboardSubscribable struct {
	DashboardID []byte `gorm:"primaryKey" json:"dashboard_id"`
}

// TableName specifies the table name for GORM.
func (DashboardSubscribable) TableName() string {
	return "dashboard_subscribable"
}

// DashboardOverride is a subscriber's view of somebody else's shared pane.
type DashboardOverride struct {
	DashboardID []byte  `gorm:"primaryKey" json:"dashboard_id"`
	Username    string  `gorm:"primaryKey;size:254" json:"username"`
	Label       *string `gorm:"size:64" json:"label"`
	Disabled    bool    `gorm:"not null;default:false" json:"disabled"`
	Priority    int     `gorm:"not null;default:0" json:"priority"`
}

// TableName specifies the table name for GORM.
func (DashboardOverride) TableName() string {
	return "dashboard_override"
}

// SubscribableDashboard is the read-only join of a shared pane with its
// acceptance count and the reading user's override flag.
type SubscribableDashboard struct {
	DashboardID []byte `json:"dashboard_id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Username    string `json:"username"`
	Acceptance  int    `json:"acceptance"`
	Disabled    bool   `json:"disabled"`
}

// UserRole assigns a role to a username.
type UserRole struct {
	Username string `gorm:"primaryKey;size:254" json:"username"`
	Role     string `gorm:"primaryKey;size:64" json:"role"`
}

// TableName specifies the table name for GORM.
func (UserRole) TableName() string {
	return "user_role"
}
