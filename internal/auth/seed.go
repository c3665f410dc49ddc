package auth

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdminUser creates the bootstrap admin account if no admin exists yet.
// Credentials come from ADMIN_USERNAME / ADMIN_PASSWORD / ADMIN_EMAIL.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&User{}).Where("role = ?", RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	email := os.Getenv("ADMIN_EMAIL")
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "ChangeMe123!"
		log.Println("⚠️ ADMIN_PASSWORD not set, seeding admin with default password")
	}
	if email == "" {
		email = "admin@localhost"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		FullName:     "System Administrator",
		Role:         RoleAdmin,
		Status:       "active",
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded admin user %q", username)
	return nil
}
