package session

import (
	"log/slog"

	"github.com/nstehr/wingman/ipc"
	"github.com/nstehr/wingman/model"
)

// Sender is the outbound half of an engine connection.
type Sender interface {
	Send(msgType string, data any) error
}

// Commander implements model.Engine by sending one command message per
// call. Effects come back in later ticks; Moving is set locally so the
// same tick's decisions see the agent as underway.
type Commander struct {
	out  Sender
	sent int
}

func NewCommander(out Sender) *Commander {
	return &Commander{out: out}
}

// Sent returns and resets the number of commands sent since the last call.
func (c *Commander) Sent() int {
	n := c.sent
	c.sent = 0
	return n
}

func (c *Commander) MoveTo(a *model.Agent, t model.Target) {
	if c.send(ipc.TypeMove, ipc.MoveCommand{AgentID: a.ID, Target: RefOf(t)}) {
		a.Moving = true
	}
}

func (c *Commander) TurnTo(a *model.Agent, t model.Target) {
	c.send(ipc.TypeTurn, ipc.TurnCommand{AgentID: a.ID, Target: RefOf(t)})
}

func (c *Commander) LoadFrom(a *model.Agent, d model.Deposit) {
	c.send(ipc.TypeLoad, ipc.LoadCommand{AgentID: a.ID, Target: RefOf(d)})
}

func (c *Commander) UnloadTo(a *model.Agent, b *model.Base) {
	c.send(ipc.TypeUnload, ipc.UnloadCommand{AgentID: a.ID, BaseID: b.ID})
}

func (c *Commander) FireAt(a *model.Agent, t model.Target) {
	c.send(ipc.TypeFire, ipc.FireCommand{AgentID: a.ID, Target: RefOf(t)})
}

func (c *Commander) send(msgType string, cmd any) bool {
	if err := c.out.Send(msgType, cmd); err != nil {
		slog.Error("failed to send command", "type", msgType, "error", err)
		return false
	}
	c.sent++
	return true
}
