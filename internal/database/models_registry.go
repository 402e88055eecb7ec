package database

import "dashkeeper/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Home{},
		&models.Pane{},
		&models.Dashlet{},
		&models.ModuleDashlet{},
		&models.DashboardOrder{},
		&models.DashboardSubscribable{},
		&models.DashboardOverride{},
		&models.UserRole{},
	}
}
