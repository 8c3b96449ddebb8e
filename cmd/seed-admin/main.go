// seed-admin creates or updates the ministry tenant and its admin user
// (username: ministereAdmin, role: ministere_admin).
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"gorm.io/gorm"
)

const (
	adminUsername = "ministereAdmin"
	adminPassword = "Minist3re@dmin"
	adminName     = "Administrateur Ministere"
	ministryCode  = "MESRI"
	ministryName  = "Ministere de l'Enseignement Superieur"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsernameInContext(ctx, adminUsername)
	ctx = utils.SetIsMinistereInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var ministry models.Crou
	err := db.WithContext(ctx).Model(&models.Crou{}).Where("code = ?", ministryCode).First(&ministry).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup ministry tenant: %v\n", err)
			os.Exit(1)
		}
		created, err := models.CreateCrou(ctx, &models.NewCrou{
			Name:       ministryName,
			Code:       ministryCode,
			TenantType: models.TenantTypeMinistere,
			Level:      models.TenantLevelNational,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create ministry tenant: %v\n", err)
			os.Exit(1)
		}
		ministry = *created
		fmt.Printf("Created ministry tenant: code=%q id=%s\n", ministryCode, ministry.ID)
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	hashedStr := string(hashed)

	var existing models.User
	err = db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Username: adminUsername,
			Name:     adminName,
			Password: hashedStr,
			Role:     models.UserRoleMinistereAdmin,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: username=%q (role=ministere_admin)\n", adminUsername)
		return
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", adminUsername).Updates(map[string]any{
		"password":  hashedStr,
		"name":      adminName,
		"is_active": utils.NewTrue(),
		"role":      models.UserRoleMinistereAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	_ = utils.RemoveRedisInstance[models.User](adminUsername)
	fmt.Printf("Updated admin user: username=%q (role=ministere_admin)\n", adminUsername)
}
