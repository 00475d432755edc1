package rules

import (
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/wingman/model"
)

// Actuator applies rule decisions to the agent a rule was evaluated for.
// The drone pilot implements it.
type Actuator interface {
	SwitchRole(a *model.Agent, role model.Role)
	Retreat(a *model.Agent)
	Rearm(a *model.Agent)
}

// ActionFunc runs when a rule's condition is true.
type ActionFunc func(env RoleEnv, act Actuator) error

// Rule is one role transition: a condition → action pair.
// The engine evaluates rules by priority and uses Category + Exclusive so
// at most one transition per category fires for an agent in a tick.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
