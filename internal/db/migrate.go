package db

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// ErrOperatorExists is returned when the email is already registered.
var ErrOperatorExists = errors.New("db: operator already exists")

// Migrate runs AutoMigrate for the console's own tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Permission{},
		&models.Profile{},
		&models.Operator{},
		&models.AuditLog{},
	)
}

var builtinProfiles = []struct {
	Name        string
	Description string
}{
	{gate.ProfileAdministrateur, "Accès complet, gestion des opérateurs"},
	{gate.ProfileAgent, "Saisie et modification, sans suppression"},
	{gate.ProfileConsultation, "Lecture seule"},
}

// SeedProfiles creates the built-in profiles and their permissions. It is
// idempotent: existing profiles get their permission set replaced.
func SeedProfiles(db *gorm.DB) error {
	for _, p := range builtinProfiles {
		var profile models.Profile
		err := db.Where("name = ?", p.Name).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			if err := db.Create(&profile).Error; err != nil {
				return fmt.Errorf("seed profile %s: %w", p.Name, err)
			}
		case err != nil:
			return err
		}

		var perms []models.Permission
		for _, code := range gate.BuiltinPermissions(p.Name) {
			resource, action := code.Parse()
			perm := models.Permission{Resource: resource, Action: string(action)}
			if err := db.Where("resource = ? AND action = ?", resource, string(action)).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", code, err)
			}
			perms = append(perms, perm)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("seed profile %s permissions: %w", p.Name, err)
		}
	}
	return nil
}

// CreateOperator hashes password and stores a new operator with the named
// profile.
func CreateOperator(db *gorm.DB, email, name, password, profileName string, siteID int) (*models.Operator, error) {
	if email == "" || password == "" {
		return nil, errors.New("db: email and password are required")
	}
	var count int64
	if err := db.Model(&models.Operator{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrOperatorExists
	}
	var profile models.Profile
	if err := db.Where("name = ?", profileName).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("db: profile %q: %w", profileName, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("db: hash password: %w", err)
	}
	op := &models.Operator{
		Email:     email,
		Name:      name,
		Password:  string(hash),
		SiteID:    siteID,
		ProfileID: &profile.ID,
	}
	if err := db.Create(op).Error; err != nil {
		return nil, err
	}
	return op, nil
}

// Seed creates the profiles and, when no operator exists yet and a password
// is given, a national administrator.
func Seed(db *gorm.DB, adminEmail, adminPassword string) (created bool, err error) {
	if err := SeedProfiles(db); err != nil {
		return false, err
	}
	if adminPassword == "" {
		return false, nil
	}
	var count int64
	if err := db.Model(&models.Operator{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := CreateOperator(db, adminEmail, "Administrateur", adminPassword, gate.ProfileAdministrateur, 0); err != nil {
		return false, err
	}
	return true, nil
}
