package models

import (
	"log"

	"github.com/roufai-ne/crou-management-system-sub011/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Crou{}, &User{},
		&Allocation{},
		&Residence{}, &Room{}, &HousingAssignment{},
		&Notification{},
		&AuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
