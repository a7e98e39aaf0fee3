package gate_test

import (
	"context"
	"testing"

	"github.com/payfisc/payfisc-admin/gate"
)

func TestStaticProfile_HasPermission(t *testing.T) {
	profile := gate.NewStaticProfile(1, "agent",
		gate.NewPermission("marques-engins", gate.ActionCreate),
		gate.NewPermission("marques-engins", gate.ActionUpdate),
	)

	if !profile.HasPermission(gate.NewPermission("marques-engins", gate.ActionCreate)) {
		t.Error("should have marques-engins:create permission")
	}
	if profile.HasPermission(gate.NewPermission("marques-engins", gate.ActionDelete)) {
		t.Error("should not have marques-engins:delete permission")
	}
}

func TestBuiltinPermissions(t *testing.T) {
	agent := gate.NewStaticProfile(2, gate.ProfileAgent, gate.BuiltinPermissions(gate.ProfileAgent)...)
	if !agent.HasPermission("plaques:toggle") || !agent.HasPermission("particuliers:create") {
		t.Error("agent should manage records")
	}
	if agent.HasPermission("plaques:delete") {
		t.Error("agent must not delete")
	}
	reader := gate.NewStaticProfile(3, gate.ProfileConsultation, gate.BuiltinPermissions(gate.ProfileConsultation)...)
	if !reader.HasPermission("paiements:list") || reader.HasPermission("paiements:create") {
		t.Error("consultation is read-only")
	}
	admin := gate.NewStaticProfile(1, gate.ProfileAdministrateur, gate.BuiltinPermissions(gate.ProfileAdministrateur)...)
	if !admin.HasPermission("operators:update") {
		t.Error("administrateur has every permission")
	}
	if gate.BuiltinPermissions("inconnu") != nil {
		t.Error("unknown profile has no permission")
	}
}

func TestStaticResolver(t *testing.T) {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticProfile(1, "consultation", gate.NewPermission("usages", gate.ActionView)))

	resolved, err := resolver.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved == nil || resolved.Name() != "consultation" {
		t.Fatalf("expected consultation profile, got %v", resolved)
	}

	unknown, err := resolver.Resolve(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown != nil {
		t.Error("expected nil for unknown user")
	}
}
