package model

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		want    Role
		wantErr bool
	}{
		{"", RoleHarvester, false},
		{"harvester", RoleHarvester, false},
		{"fighter", RoleFighter, false},
		{"guardian", RoleGuardian, false},
		{"medic", RoleHarvester, true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseRole(%q) = %v, %v", tt.name, got, err)
		}
		if err == nil && tt.name != "" && got.String() != tt.name {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}
}

func TestAgentCargo(t *testing.T) {
	a := &Agent{Capacity: 90, Cargo: 60, Health: 30, MaxHealth: 120}
	if a.Full() || a.Empty() || a.FreeSpace() != 30 {
		t.Errorf("cargo 60/90: full=%v empty=%v free=%d", a.Full(), a.Empty(), a.FreeSpace())
	}
	if a.HealthFraction() != 0.25 {
		t.Errorf("health fraction = %v", a.HealthFraction())
	}
	a.Cargo = 95
	if !a.Full() || a.FreeSpace() != 0 {
		t.Error("overfull agent should be full with no free space")
	}
	if (&Agent{}).HealthFraction() != 1 {
		t.Error("unknown max health should read as full health")
	}
}
