package rules

import (
	"fmt"

	"github.com/nstehr/wingman/config"
)

// CompileRoles generates the role transition rules from the fleet's
// thresholds. All conditions are built via fmt.Sprintf with interpolated
// values; the compiler never generates invalid expr.
func CompileRoles(r config.Roles) []*Rule {
	var rules []*Rule

	// --- Role transitions, highest precedence first ---

	rules = append(rules, &Rule{
		Name:         "all-clear",
		Priority:     400,
		Category:     "role",
		Exclusive:    true,
		ConditionSrc: `(IsRole("fighter") || IsRole("guardian")) && EnemiesAlive() == 0 && EnemyBasesAlive() == 0`,
		Action:       ActionStandDown,
	})

	rules = append(rules, &Rule{
		Name:      "hold-the-line",
		Priority:  300,
		Category:  "role",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(
			`(IsRole("harvester") || IsRole("fighter")) && Casualties() >= %d && EnemiesAlive() >= %g * OwnAlive()`,
			r.CasualtyThreshold, r.EnemyRatio),
		Action: ActionHoldTheLine,
	})

	rules = append(rules, &Rule{
		Name:         "stand-up",
		Priority:     200,
		Category:     "role",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`IsRole("guardian") && EnemiesAlive() < %g * OwnAlive()`, r.EnemyRatio),
		Action:       ActionStandUp,
	})

	// --- Posture: role unchanged ---

	rules = append(rules, &Rule{
		Name:      "fall-back",
		Priority:  100,
		Category:  "posture",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(
			`(IsRole("fighter") || IsRole("guardian")) && Health() < %g && !AtHome() && !Homebound()`,
			r.RetreatHealth),
		Action: ActionFallBack,
	})

	rules = append(rules, &Rule{
		Name:         "re-arm",
		Priority:     50,
		Category:     "posture",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`IsRole("fighter") && !Offensive() && (AtHome() || Health() >= %g)`, r.RecoverHealth),
		Action:       ActionRearm,
	})

	return rules
}

// DefaultRules compiles the rules for the default thresholds.
func DefaultRules() []*Rule {
	return CompileRoles(config.Default().Roles)
}
