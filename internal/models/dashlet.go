package models

// Dashlet is a row of dashlet, owned by exactly one pane.
type Dashlet struct {
	ID          []byte `gorm:"primaryKey" json:"id"`
	DashboardID []byte `gorm:"not null;index" json:"dashboard_id"`
	Name        string `gorm:"size:64;not null" json:"name"`
	Label       string `gorm:"size:254;not null" json:"label"`
	URL         string `gorm:"column:url;size:2048;not null" json:"url"`
	Description string `gorm:"type:text" json:"description"`
	Priority    int    `gorm:"not null;default:0" json:"priority"`
}

// TableName specifies the table name for GORM.
func (Dashlet) TableName() string {
	return "dashlet"
}

// ModuleDashlet is a catalog row aggregated from module declarations.
type ModuleDashlet struct {
	ID          []byte  `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:64;not null" json:"name"`
	Label       string  `gorm:"size:254;not null" json:"label"`
	Pane        *string `gorm:"size:64" json:"pane"`
	Module      string  `gorm:"size:64;not null;index" json:"module"`
	URL         string  `gorm:"column:url;size:2048;not null" json:"url"`
	Description string  `gorm:"type:text" json:"description"`
	Priority    int     `gorm:"not null;default:0" json:"priority"`
}

// TableName specifies the table name for GORM.
func (ModuleDashlet) TableName() string {
	return "module_dashlet"
}
