package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine runs compiled role rules against one agent at a time.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, so an agent never takes two role transitions in
// one tick.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate runs every rule for env.Agent and returns the names of the rules
// that fired. Conditions read live agent state, so a transition made by an
// earlier rule is visible to later ones.
func (e *Engine) Evaluate(env RoleEnv, act Actuator) []string {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	fired := make(map[string]bool) // category → exclusive rule already fired
	var names []string
	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "agent", env.Agent.ID, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		slog.Debug("rule fired", "rule", r.Name, "agent", env.Agent.ID, "priority", r.Priority, "category", r.Category)
		names = append(names, r.Name)

		if err := r.Action(env, act); err != nil {
			slog.Error("rule action error", "rule", r.Name, "agent", env.Agent.ID, "error", err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}
	return names
}

// Swap atomically replaces the rule set, for example after the thresholds
// were reloaded. Compiles first; if compilation fails the old rules remain
// active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the names of the active rules in evaluation order.
func (e *Engine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RoleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
