package session

import (
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/nstehr/wingman/config"
	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/ipc"
	"github.com/nstehr/wingman/journal"
	"github.com/nstehr/wingman/model"
	"github.com/nstehr/wingman/store"
)

type engineSide struct {
	t    *testing.T
	conn net.Conn
	sess *Session
}

func newEngineSide(t *testing.T, cfg config.Config, db *store.DB) *engineSide {
	t.Helper()
	server, client := net.Pipe()
	c := ipc.NewConnection(server, nil)
	s := New(c, cfg)
	s.Store = db
	c.RegisterHandler(ipc.TypeHello, s.HandleHello)
	c.RegisterHandler(ipc.TypeTick, s.HandleTick)
	go c.ReadLoop()
	t.Cleanup(func() { client.Close() })
	return &engineSide{t: t, conn: client, sess: s}
}

func (e *engineSide) send(msgType string, data any) {
	e.t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		e.t.Fatal(err)
	}
	e.conn.SetDeadline(time.Now().Add(2 * time.Second))
	if err := ipc.WriteEnvelope(e.conn, env); err != nil {
		e.t.Fatal(err)
	}
}

// replies reads command envelopes up to and including the ack.
func (e *engineSide) replies() ([]ipc.Envelope, ipc.AckMessage) {
	e.t.Helper()
	var cmds []ipc.Envelope
	for {
		e.conn.SetDeadline(time.Now().Add(2 * time.Second))
		env, err := ipc.ReadEnvelope(e.conn)
		if err != nil {
			e.t.Fatal(err)
		}
		if env.Type != ipc.TypeAck {
			cmds = append(cmds, env)
			continue
		}
		var ack ipc.AckMessage
		if err := json.Unmarshal(env.Data, &ack); err != nil {
			e.t.Fatal(err)
		}
		return cmds, ack
	}
}

func (e *engineSide) hello() ipc.AckMessage {
	e.send(ipc.TypeHello, ipc.HelloMessage{
		Team:  1,
		Arena: ipc.ArenaBounds{MaxX: 1200, MaxY: 1200},
		Home:  model.BaseState{ID: 1, Team: 1, X: 100, Y: 100, Health: 100},
	})
	_, ack := e.replies()
	return ack
}

func baseTick(tick int, agents ...model.AgentState) model.GameState {
	return model.GameState{
		Tick:      tick,
		Agents:    agents,
		Resources: []model.ResourceState{{ID: 1, X: 300, Y: 100, Payload: 50}},
		Bases:     []model.BaseState{{ID: 1, Team: 1, X: 100, Y: 100, Health: 100}},
	}
}

func drone10(x, y float64) model.AgentState {
	return model.AgentState{ID: 10, Team: 1, X: x, Y: y, Health: 100, MaxHealth: 100, Capacity: 90}
}

func find(t *testing.T, cmds []ipc.Envelope, msgType string) json.RawMessage {
	t.Helper()
	for _, c := range cmds {
		if c.Type == msgType {
			return c.Data
		}
	}
	t.Fatalf("no %s command in %d replies", msgType, len(cmds))
	return nil
}

func TestHelloStartsMatch(t *testing.T) {
	e := newEngineSide(t, config.Default(), nil)
	ack := e.hello()
	if ack.Status != "ok" || ack.MatchID == "" {
		t.Fatalf("ack = %+v", ack)
	}
	if e.sess.Fleet().Home == nil || e.sess.Fleet().Home.ID != 1 {
		t.Error("home base not registered")
	}
}

func TestSpawnedHarvesterDeparts(t *testing.T) {
	e := newEngineSide(t, config.Default(), nil)
	e.hello()

	gs := baseTick(1, drone10(100, 100))
	gs.Events = []model.HookEvent{{Kind: model.HookSpawn, AgentID: 10}}
	e.send(ipc.TypeTick, gs)
	cmds, ack := e.replies()

	if ack.Tick != 1 || ack.Commands != len(cmds) {
		t.Errorf("ack = %+v with %d commands", ack, len(cmds))
	}
	var mv ipc.MoveCommand
	if err := json.Unmarshal(find(t, cmds, ipc.TypeMove), &mv); err != nil {
		t.Fatal(err)
	}
	if mv.AgentID != 10 || mv.Target != (model.Ref{Kind: model.RefResource, ID: 1}) {
		t.Errorf("move = %+v", mv)
	}
}

func TestUnannouncedAgentJoinsAsHarvester(t *testing.T) {
	e := newEngineSide(t, config.Default(), nil)
	e.hello()

	e.send(ipc.TypeTick, baseTick(1, drone10(100, 100)))
	cmds, _ := e.replies()
	find(t, cmds, ipc.TypeMove)

	f := e.sess.Fleet()
	if got := f.Harvesters(); len(got) != 1 || got[0].ID != 10 {
		t.Errorf("harvesters = %v", got)
	}
}

func TestArrivalStartsLoading(t *testing.T) {
	e := newEngineSide(t, config.Default(), nil)
	e.hello()
	gs := baseTick(1, drone10(100, 100))
	gs.Events = []model.HookEvent{{Kind: model.HookSpawn, AgentID: 10}}
	e.send(ipc.TypeTick, gs)
	e.replies()

	gs = baseTick(2, drone10(300, 100))
	gs.Events = []model.HookEvent{{Kind: model.HookArriveDeposit, AgentID: 10, Target: &model.Ref{Kind: model.RefResource, ID: 1}}}
	e.send(ipc.TypeTick, gs)
	cmds, _ := e.replies()

	var ld ipc.LoadCommand
	if err := json.Unmarshal(find(t, cmds, ipc.TypeLoad), &ld); err != nil {
		t.Fatal(err)
	}
	if ld.AgentID != 10 || ld.Target != (model.Ref{Kind: model.RefResource, ID: 1}) {
		t.Errorf("load = %+v", ld)
	}
}

func TestTickBeforeHello(t *testing.T) {
	s := New(nil, config.Default())
	env, err := ipc.NewEnvelope(ipc.TypeTick, baseTick(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.HandleTick(env); !errors.Is(err, ErrNoHello) {
		t.Errorf("err = %v, want ErrNoHello", err)
	}
}

func TestRoleMismatchIsRecorded(t *testing.T) {
	dir := t.TempDir()
	db, err := store.Open(dir + "/wingman.db")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := config.Default()
	cfg.Server.JournalDir = dir
	e := newEngineSide(t, cfg, db)
	ack := e.hello()

	// an enemy in the field keeps the fighter from standing down
	gs := baseTick(1, drone10(100, 100), model.AgentState{ID: 20, Team: 2, X: 1000, Y: 1000, Health: 100, MaxHealth: 100})
	gs.Bases = append(gs.Bases, model.BaseState{ID: 2, Team: 2, X: 1100, Y: 1100, Health: 100})
	gs.Events = []model.HookEvent{
		{Kind: model.HookSpawn, AgentID: 10, Role: "fighter"},
		{Kind: model.HookLoadComplete, AgentID: 10},
	}
	e.send(ipc.TypeTick, gs)
	e.replies()

	if got := e.sess.Fleet().Fighters(); len(got) != 1 {
		t.Fatalf("fighters = %v", got)
	}

	events, err := db.Events(ack.MatchID, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !hasKind(events, fleet.EventRoleReject) || !hasKind(events, fleet.EventJoin) {
		t.Errorf("stored events = %+v", events)
	}
	m, err := db.Match(ack.MatchID)
	if err != nil {
		t.Fatal(err)
	}
	if m.Team != 1 || m.LastTick != 1 {
		t.Errorf("match = %+v", m)
	}

	if err := e.sess.Close(); err != nil {
		t.Fatal(err)
	}
	entries, err := journal.Read(dir, ack.MatchID)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(events) {
		t.Errorf("journal has %d entries, store has %d events", len(entries), len(events))
	}
}

func hasKind(events []fleet.Event, kind fleet.EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestReloadRetunesRunningMatch(t *testing.T) {
	e := newEngineSide(t, config.Default(), nil)
	e.hello()

	fighter := model.AgentState{ID: 10, Team: 1, X: 600, Y: 600, Health: 50, MaxHealth: 100, Capacity: 90}
	tick := func(n int, events ...model.HookEvent) model.GameState {
		gs := baseTick(n, fighter, model.AgentState{ID: 20, Team: 2, X: 1150, Y: 1150, Health: 100, MaxHealth: 100})
		gs.Bases = append(gs.Bases, model.BaseState{ID: 2, Team: 2, X: 1100, Y: 1100, Health: 100})
		gs.Events = events
		return gs
	}

	e.send(ipc.TypeTick, tick(1, model.HookEvent{Kind: model.HookSpawn, AgentID: 10, Role: "fighter"}))
	cmds, _ := e.replies()
	if len(cmds) != 0 {
		t.Fatalf("half-health fighter acted under default thresholds: %+v", cmds)
	}

	next := config.Default()
	next.Roles.RetreatHealth = 0.6
	if err := e.sess.Reload(next); err != nil {
		t.Fatal(err)
	}

	e.send(ipc.TypeTick, tick(2))
	cmds, _ = e.replies()
	var mv ipc.MoveCommand
	if err := json.Unmarshal(find(t, cmds, ipc.TypeMove), &mv); err != nil {
		t.Fatal(err)
	}
	if mv.AgentID != 10 || mv.Target != (model.Ref{Kind: model.RefBase, ID: 1}) {
		t.Errorf("move = %+v, want retreat to home base", mv)
	}
	if a := e.sess.world.Agent(10); a.Offensive {
		t.Error("fighter still offensive after falling back")
	}
}

func TestRegistryReload(t *testing.T) {
	cfg := config.Default()
	r := NewRegistry(cfg)
	waiting := New(nil, cfg)
	r.Add(waiting)
	if r.Len() != 1 {
		t.Fatalf("len = %d", r.Len())
	}

	next := config.Default()
	next.Roles.RetreatHealth = 0.6
	next.Roles.CasualtyThreshold = 5
	if failed := r.Reload(next); failed != 0 {
		t.Fatalf("failed = %d", failed)
	}
	if waiting.Config.Roles != next.Roles {
		t.Errorf("waiting session roles = %+v", waiting.Config.Roles)
	}
	if r.Config().Roles != next.Roles {
		t.Errorf("registry config roles = %+v", r.Config().Roles)
	}

	r.Remove(waiting)
	if r.Len() != 0 {
		t.Errorf("len after remove = %d", r.Len())
	}
}
