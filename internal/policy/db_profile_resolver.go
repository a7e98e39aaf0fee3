package policy

import (
	"context"

	"gorm.io/gorm"

	"github.com/payfisc/payfisc-admin/gate"
	"github.com/payfisc/payfisc-admin/internal/models"
)

// DBProfileResolver loads operator profiles from the local store.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve returns nil, nil when the operator has no profile.
func (r *DBProfileResolver) Resolve(ctx context.Context, operatorID uint) (gate.Profile, error) {
	var op models.Operator
	if err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&op, operatorID).Error; err != nil {
		return nil, err
	}
	if op.Profile == nil {
		return nil, nil
	}
	return &dbProfile{profile: op.Profile}, nil
}

type dbProfile struct {
	profile *models.Profile
}

func (a *dbProfile) ID() uint     { return a.profile.ID }
func (a *dbProfile) Name() string { return a.profile.Name }

func (a *dbProfile) HasPermission(requested gate.Permission) bool {
	for _, p := range a.profile.Permissions {
		if gate.NewPermission(p.Resource, gate.Action(p.Action)).Matches(requested) {
			return true
		}
	}
	return false
}

func (a *dbProfile) Permissions() []gate.Permission {
	out := make([]gate.Permission, len(a.profile.Permissions))
	for i, p := range a.profile.Permissions {
		out[i] = gate.NewPermission(p.Resource, gate.Action(p.Action))
	}
	return out
}
