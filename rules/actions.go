package rules

import (
	"log/slog"

	"github.com/nstehr/wingman/model"
)

// ActionStandDown sends a combat drone back to harvesting once no enemy is
// left to fight.
func ActionStandDown(env RoleEnv, act Actuator) error {
	act.SwitchRole(env.Agent, model.RoleHarvester)
	return nil
}

// ActionHoldTheLine turns the agent into a guardian of the home base.
func ActionHoldTheLine(env RoleEnv, act Actuator) error {
	slog.Info("fleet outnumbered", "agent", env.Agent.ID,
		"casualties", env.Casualties(), "enemies", env.EnemiesAlive(), "own", env.OwnAlive())
	act.SwitchRole(env.Agent, model.RoleGuardian)
	return nil
}

// ActionStandUp returns a guardian to the attack.
func ActionStandUp(env RoleEnv, act Actuator) error {
	act.SwitchRole(env.Agent, model.RoleFighter)
	return nil
}

// ActionFallBack sends a damaged combat drone home without changing its role.
func ActionFallBack(env RoleEnv, act Actuator) error {
	slog.Info("falling back", "agent", env.Agent.ID, "role", env.Role(), "health", env.Health())
	act.Retreat(env.Agent)
	return nil
}

// ActionRearm restores a recovered fighter's offensive posture.
func ActionRearm(env RoleEnv, act Actuator) error {
	act.Rearm(env.Agent)
	return nil
}
