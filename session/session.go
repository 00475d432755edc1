// Package session drives one fleet from an engine connection: the hello
// handshake binds a team and arena, every tick snapshot is mirrored into
// the fleet's world, hooks are dispatched and the resulting commands are
// sent back before the tick is acknowledged.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nstehr/wingman/config"
	"github.com/nstehr/wingman/drone"
	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/ipc"
	"github.com/nstehr/wingman/journal"
	"github.com/nstehr/wingman/model"
	"github.com/nstehr/wingman/observer"
	"github.com/nstehr/wingman/stats"
	"github.com/nstehr/wingman/store"
)

var ErrNoHello = errors.New("tick before hello")

// Session owns the decision-making for a single engine connection.
type Session struct {
	// mu guards the handshake against Reload; ticks only run after it.
	mu sync.Mutex

	Out    Sender
	Config config.Config

	// Optional sinks; nil disables each.
	Store *store.DB
	Hub   *observer.Hub

	MatchID string
	Team    int

	world   *World
	fleet   *fleet.Fleet
	pilot   *drone.Pilot
	cmd     *Commander
	travel  *stats.Tracker
	journal *journal.Writer
}

func New(out Sender, cfg config.Config) *Session {
	return &Session{Out: out, Config: cfg}
}

// Fleet is nil until the hello handshake.
func (s *Session) Fleet() *fleet.Fleet { return s.fleet }

// HandleHello binds the session to a team and starts a match.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pilot != nil {
		return nil, fmt.Errorf("duplicate hello for team %d", hello.Team)
	}

	cfg := s.Config
	if !hello.Arena.Empty() {
		cfg.Arena.MinX, cfg.Arena.MinY = hello.Arena.MinX, hello.Arena.MinY
		cfg.Arena.MaxX, cfg.Arena.MaxY = hello.Arena.MaxX, hello.Arena.MaxY
	}

	s.Team = hello.Team
	s.MatchID = uuid.NewString()
	s.world = NewWorld(cfg.Arena.Bound(), hello.Team)
	s.fleet = drone.NewFleet(hello.Team, cfg)
	s.fleet.SetHome(s.world.SyncBase(hello.Home))
	s.cmd = NewCommander(s.Out)
	s.travel = stats.NewTracker()

	pilot, err := drone.New(s.fleet, s.world, s.cmd, cfg, s.travel)
	if err != nil {
		return nil, err
	}
	s.pilot = pilot

	if dir := cfg.Server.JournalDir; dir != "" {
		s.journal = journal.NewWriter(dir, s.MatchID)
	}
	if s.Store != nil {
		if err := s.Store.StartMatch(s.MatchID, s.Team); err != nil {
			slog.Error("failed to record match", "match", s.MatchID, "error", err)
		}
	}

	slog.Info("team identified", "team", s.Team, "match", s.MatchID,
		"arena", cfg.Arena.Bound(), "home", hello.Home.ID)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", MatchID: s.MatchID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleTick runs one decision phase and acknowledges it with the number
// of commands sent.
func (s *Session) HandleTick(env ipc.Envelope) (*ipc.Envelope, error) {
	var gs model.GameState
	if err := json.Unmarshal(env.Data, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal tick: %w", err)
	}
	if s.pilot == nil {
		return nil, ErrNoHello
	}

	s.fleet.Lock()
	s.fleet.Tick = gs.Tick
	fresh := s.world.Sync(gs)
	s.spawn(gs, fresh)
	for _, ev := range gs.Events {
		if ev.Kind != model.HookSpawn {
			s.dispatch(ev)
		}
	}
	s.pilot.Coordinate(gs.Tick)
	for _, a := range s.fleet.Live() {
		s.pilot.Step(a)
	}
	events := s.fleet.Drain()
	var snap observer.Snapshot
	if s.Hub != nil {
		snap = observer.Capture(s.MatchID, s.fleet, events)
	}
	casualties := s.fleet.Casualties
	delivered := 0
	if s.fleet.Home != nil {
		delivered = s.fleet.Home.Payload
	}
	s.fleet.Unlock()

	s.record(gs.Tick, events, casualties, delivered)
	if s.Hub != nil {
		s.Hub.Broadcast(snap)
	}

	sent := s.cmd.Sent()
	slog.Debug("tick handled", "tick", gs.Tick, "commands", sent, "events", len(events))

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Tick: gs.Tick, Commands: sent})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// spawn joins announced spawns with their role, then any own agent that
// showed up without an announcement as a harvester.
func (s *Session) spawn(gs model.GameState, fresh []*model.Agent) {
	announced := make(map[int]bool)
	for _, ev := range gs.Events {
		if ev.Kind != model.HookSpawn {
			continue
		}
		a := s.world.Agent(ev.AgentID)
		if a == nil || a.Team != s.Team || s.fleet.IsMember(a) {
			continue
		}
		role, err := model.ParseRole(ev.Role)
		if err != nil {
			slog.Warn("spawn with unknown role, defaulting to harvester", "agent", ev.AgentID, "error", err)
		}
		announced[a.ID] = true
		s.pilot.OnSpawn(a, role)
	}
	for _, a := range fresh {
		if announced[a.ID] || s.fleet.IsMember(a) {
			continue
		}
		slog.Debug("unannounced agent joined", "agent", a.ID)
		s.pilot.OnSpawn(a, model.RoleHarvester)
	}
}

func (s *Session) dispatch(ev model.HookEvent) {
	a := s.world.Agent(ev.AgentID)
	if a == nil || !s.fleet.IsMember(a) {
		slog.Warn("hook for unknown agent", "hook", ev.Kind, "agent", ev.AgentID)
		return
	}
	if !a.Alive() {
		return
	}

	var err error
	switch ev.Kind {
	case model.HookArriveDeposit:
		d, ok := s.world.Resolve(ev.Target).(model.Deposit)
		if !ok {
			err = fmt.Errorf("arrive deposit: no deposit for %+v", ev.Target)
			break
		}
		err = s.pilot.OnArriveDeposit(a, d)
	case model.HookLoadComplete:
		err = s.pilot.OnLoadComplete(a)
	case model.HookArriveBase:
		b, ok := s.world.Resolve(ev.Target).(*model.Base)
		if !ok {
			err = fmt.Errorf("arrive base: no base for %+v", ev.Target)
			break
		}
		err = s.pilot.OnArriveBase(a, b)
	case model.HookUnloadComplete:
		err = s.pilot.OnUnloadComplete(a)
	case model.HookWakeUp:
		err = s.pilot.OnWakeUp(a)
	default:
		err = fmt.Errorf("unknown hook %q", ev.Kind)
	}

	switch {
	case errors.Is(err, drone.ErrRoleMismatch):
		slog.Error("hook rejected", "agent", a.ID, "error", err)
	case err != nil:
		slog.Warn("hook failed", "agent", a.ID, "error", err)
	}
}

func (s *Session) record(tick int, events []fleet.Event, casualties, delivered int) {
	if s.journal != nil && len(events) > 0 {
		entries := make([]journal.Entry, 0, len(events))
		for _, e := range events {
			entries = append(entries, journal.Entry{Match: s.MatchID, Team: s.Team, Event: e})
		}
		if err := s.journal.Append(entries...); err != nil {
			slog.Error("journal append failed", "match", s.MatchID, "error", err)
		}
	}
	if s.Store == nil {
		return
	}
	if err := s.Store.SaveEvents(s.MatchID, events); err != nil {
		slog.Error("failed to save events", "match", s.MatchID, "error", err)
	}
	if err := s.Store.SaveTravel(s.MatchID, s.travel); err != nil {
		slog.Error("failed to save travel", "match", s.MatchID, "error", err)
	}
	if err := s.Store.UpdateMatch(s.MatchID, tick, casualties, delivered); err != nil {
		slog.Error("failed to update match", "match", s.MatchID, "error", err)
	}
}

// Reload applies the role thresholds in cfg. A running match swaps its
// rules between ticks; a session still waiting for hello starts with them.
// Arena, harvest and formation settings only affect later matches.
func (s *Session) Reload(cfg config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config.Roles = cfg.Roles
	if s.pilot == nil {
		return nil
	}
	s.fleet.Lock()
	defer s.fleet.Unlock()
	if err := s.pilot.Retune(cfg.Roles); err != nil {
		return fmt.Errorf("reload team %d: %w", s.Team, err)
	}
	slog.Info("role rules reloaded", "team", s.Team, "match", s.MatchID, "rules", s.pilot.Rules.Rules())
	return nil
}

// Close flushes the journal and logs the match summary.
func (s *Session) Close() error {
	if s.travel != nil {
		t := s.travel.Fleet()
		slog.Info("match ended", "match", s.MatchID, "team", s.Team,
			"travel_empty", t.Empty, "travel_partial", t.Partial, "travel_full", t.Full)
	}
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}
