package models

// HomeType distinguishes homes only their owner sees from shared ones.
type HomeType string

const (
	HomeTypePrivate HomeType = "private"
	HomeTypeShared  HomeType = "shared"
)

// Home is a row of dashboard_home.
type Home struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	Name     string   `gorm:"size:64;not null;uniqueIndex:idx_dashboard_home_user_name" json:"name"`
	Label    string   `gorm:"size:64;not null" json:"label"`
	Username string   `gorm:"size:254;not null;uniqueIndex:idx_dashboard_home_user_name" json:"username"`
	Type     HomeType `gorm:"type:varchar(16);not null;default:'private'" json:"type"`
}

// TableName specifies the table name for GORM.
func (Home) TableName() string {
	return "dashboard_home"
}
