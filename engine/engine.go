package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"missioncore/amb"
	"missioncore/config"
	"missioncore/messaging"
	"missioncore/mission"
	"missioncore/points"
	"missioncore/store"
	"missioncore/telemetry"
)

type LogFunc func(format string, args ...any)

// Config carries the engine's collaborators. All of them are built by
// the caller so tests can substitute fakes.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Robot      *amb.Client
	Redis      *telemetry.RedisStore // nil disables the state mirror
	MsgClient  *messaging.Client
	LogFunc    LogFunc
}

// Engine wires the mission pipeline together: resolver, planner,
// executor, queue and telemetry, with the event bus fanning lifecycle
// transitions out to persistence and the message outbox.
type Engine struct {
	Events *EventBus

	cfg     *config.Config
	cfgPath string
	db      *store.DB
	robot   *amb.Client
	redis   *telemetry.RedisStore
	msg     *messaging.Client
	logFn   LogFunc

	resolver  *points.Resolver
	planner   *mission.Planner
	queue     *mission.Queue
	telemetry *telemetry.Manager

	msgOnline bool
	stopChan  chan struct{}
}

func New(cfg Config) *Engine {
	logFn := cfg.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}

	e := &Engine{
		Events:   NewEventBus(),
		cfg:      cfg.AppConfig,
		cfgPath:  cfg.ConfigPath,
		db:       cfg.DB,
		robot:    cfg.Robot,
		redis:    cfg.Redis,
		msg:      cfg.MsgClient,
		logFn:    logFn,
		stopChan: make(chan struct{}),
	}

	mc := e.cfg.Mission
	e.resolver = points.NewResolver(points.NewMapSource(e.robot), mc.PointCacheTTL)
	e.planner = mission.NewPlanner(e.resolver)

	gateCfg := mission.DefaultGateConfig()
	if mc.GateSettle > 0 {
		gateCfg.SettleDelay = mc.GateSettle
	}
	if mc.SafetyRechecks > 0 {
		gateCfg.SpeedRechecks = mc.SafetyRechecks
	}
	gate := mission.NewGate(e.robot, gateCfg)
	charger := mission.NewFallbackChain(mission.DefaultChargeStrategies(e.robot)...)

	executor := mission.NewExecutor(e.robot, gate, charger, e.policies(mc), &missionEmitter{bus: e.Events})
	e.queue = mission.NewQueue(executor, e.robot, &missionEmitter{bus: e.Events})

	e.telemetry = telemetry.NewManager(e.robot, cfg.Redis, &telemetryEmitter{bus: e.Events},
		e.cfg.Robot.RobotID, e.cfg.Robot.StatePollRate)

	return e
}

// policies maps the config knobs onto the step policy defaults. Zero
// values keep the defaults.
func (e *Engine) policies(mc config.MissionConfig) mission.Policies {
	p := mission.DefaultPolicies()
	if mc.MoveTimeout > 0 {
		p.Move.Timeout = mc.MoveTimeout
		p.Align.Timeout = mc.MoveTimeout
		p.Unload.Timeout = mc.MoveTimeout
	}
	if mc.DockTimeout > 0 {
		p.Charger.Timeout = mc.DockTimeout
	}
	if mc.PollInterval > 0 {
		p.Move.PollInterval = mc.PollInterval
		p.Align.PollInterval = mc.PollInterval
		p.Unload.PollInterval = mc.PollInterval
	}
	if mc.JackSettle > 0 {
		p.Jack.SettleDelay = mc.JackSettle
	}
	if mc.MoveRetries > 0 {
		p.Move.MaxRetries = mc.MoveRetries
		p.Unload.MaxRetries = mc.MoveRetries
	}
	if mc.AlignAttempts > 0 {
		p.AlignAttempts = mc.AlignAttempts
	}
	if mc.SafetyRechecks > 0 {
		p.SafetyRechecks = mc.SafetyRechecks
	}
	return p
}

func (e *Engine) Start() {
	e.wireEventHandlers()
	e.reconcileInterrupted()
	e.queue.Start()
	e.telemetry.Start()

	e.checkMessagingStatus()
	go e.connectionHealthLoop()
	e.logFn("engine: started for robot %s", e.cfg.Robot.RobotID)
}

func (e *Engine) Stop() {
	select {
	case e.stopChan <- struct{}{}:
	default:
	}
	e.telemetry.Stop()
	e.queue.Stop()
}

// EnqueueMission plans an operation and hands the mission to the FIFO.
// The mission and its steps are persisted before it becomes runnable.
func (e *Engine) EnqueueMission(name string, op mission.OperationType, source, dest string, via ...string) (*mission.Mission, error) {
	steps, err := e.planner.Plan(op, source, dest, via...)
	if err != nil {
		return nil, err
	}
	m := mission.NewMission(name, op, e.cfg.Robot.RobotID, source, dest, steps)
	if err := e.db.CreateMission(missionRecord(m)); err != nil {
		return nil, fmt.Errorf("persist mission: %w", err)
	}
	e.queue.Enqueue(m)
	return m.Clone(), nil
}

// MissionStatus reports a mission, preferring the live in-memory copy
// over the persisted record.
func (e *Engine) MissionStatus(id string) (*mission.Mission, error) {
	if m, err := e.queue.Get(id); err == nil {
		return m, nil
	}
	rec, err := e.db.GetMission(id)
	if err != nil {
		return nil, mission.ErrMissionNotFound
	}
	return missionFromRecord(rec), nil
}

// ActiveMissions lists the missions the queue still knows about,
// newest first.
func (e *Engine) ActiveMissions(limit int) []*mission.Mission {
	return e.queue.List(limit)
}

// MissionLog lists persisted missions, optionally filtered by status.
func (e *Engine) MissionLog(status string, limit int) ([]*store.Mission, error) {
	return e.db.ListMissions(status, limit)
}

func (e *Engine) CancelMission(id string) error {
	return e.queue.Cancel(id)
}

func (e *Engine) PendingCount() int {
	return e.queue.PendingCount()
}

// ResolvePoint exposes symbolic point resolution, mainly for operator
// lookups.
func (e *Engine) ResolvePoint(id string) (points.Point, error) {
	return e.resolver.Resolve(id)
}

// SyncMapPoints pulls the robot's active map and stores a snapshot of
// its named points, then invalidates the resolver cache.
func (e *Engine) SyncMapPoints() (int, error) {
	pts, err := e.robot.GetActiveMapPoints()
	if err != nil {
		return 0, fmt.Errorf("fetch active map: %w", err)
	}
	records := make([]*store.MapPoint, 0, len(pts))
	for _, p := range pts {
		records = append(records, &store.MapPoint{PointID: p.Name, PosX: p.X, PosY: p.Y, Ori: p.Yaw})
	}
	if err := e.db.ReplaceMapPoints(records); err != nil {
		return 0, err
	}
	e.resolver.Invalidate()
	return len(records), nil
}

func (e *Engine) RobotSnapshot() telemetry.Snapshot {
	return e.telemetry.Snapshot()
}

func (e *Engine) RobotOnline() bool {
	return e.telemetry.Online()
}

// FleetSnapshots lists every robot state mirrored in Redis. A single
// instance usually sees one entry; instances sharing a Redis see each
// other's robots.
func (e *Engine) FleetSnapshots(ctx context.Context) ([]telemetry.Snapshot, error) {
	if e.redis == nil {
		return []telemetry.Snapshot{e.telemetry.Snapshot()}, nil
	}
	ids, err := e.redis.ListRobotIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]telemetry.Snapshot, 0, len(ids))
	for _, id := range ids {
		snap, err := e.redis.GetSnapshot(ctx, id)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			out = append(out, *snap)
		}
	}
	return out, nil
}

// ReconfigureRobot repoints the vendor client and flushes the point
// cache, since a new endpoint implies a possibly different map.
func (e *Engine) ReconfigureRobot(baseURL string, timeout time.Duration) {
	e.robot.Reconfigure(baseURL, timeout)
	e.resolver.Invalidate()
	e.logFn("engine: robot client repointed at %s", baseURL)
}

func (e *Engine) ReconfigureMessaging(cfg *config.MessagingConfig) error {
	if e.msg == nil {
		return nil
	}
	return e.msg.Reconfigure(cfg)
}

func (e *Engine) DB() *store.DB                { return e.db }
func (e *Engine) AppConfig() *config.Config    { return e.cfg }
func (e *Engine) ConfigPath() string           { return e.cfgPath }
func (e *Engine) Robot() *amb.Client           { return e.robot }
func (e *Engine) MsgClient() *messaging.Client { return e.msg }

// reconcileInterrupted finalizes missions a previous run left queued
// or running. The queue starts empty, so they can never resume.
func (e *Engine) reconcileInterrupted() {
	active, err := e.db.ListActiveMissions()
	if err != nil {
		e.logFn("engine: list interrupted missions: %v", err)
		return
	}
	for _, m := range active {
		e.logFn("engine: mission %s was %s at shutdown, marking failed", m.ID, m.Status)
		if err := e.db.FinishMission(m.ID, "failed", m.FailedStep, "", "interrupted by service restart"); err != nil {
			e.logFn("engine: finalize interrupted mission %s: %v", m.ID, err)
		}
	}
}

// connectionHealthLoop watches the broker connection and retries it,
// emitting transition events the UI can surface.
func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkMessagingStatus()
		}
	}
}

func (e *Engine) checkMessagingStatus() {
	if e.msg == nil {
		return
	}
	connected := e.msg.IsConnected()
	if !connected {
		if err := e.msg.Connect(); err != nil {
			e.logFn("engine: kafka reconnect: %v", err)
		} else {
			connected = true
		}
	}
	if connected == e.msgOnline {
		return
	}
	e.msgOnline = connected
	if connected {
		e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "kafka connected"}})
	} else {
		e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "kafka unreachable"}})
	}
}

// missionRecord converts the in-memory mission to its persisted form.
func missionRecord(m *mission.Mission) *store.Mission {
	rec := &store.Mission{
		ID:          m.ID,
		Name:        m.Name,
		Operation:   string(m.Operation),
		RobotID:     m.RobotID,
		SourcePoint: m.Source,
		DestPoint:   m.Dest,
		Status:      string(m.Status),
		FailedStep:  m.FailedStep,
		Warning:     m.Warning,
		ErrorDetail: m.Error,
	}
	for i, s := range m.Steps {
		rec.Steps = append(rec.Steps, &store.MissionStep{
			MissionID:  m.ID,
			Idx:        i,
			Kind:       string(s.Kind),
			Label:      s.Label,
			TargetX:    s.Target.X,
			TargetY:    s.Target.Y,
			TargetOri:  s.Target.Ori,
			Status:     string(s.Status),
			RetryCount: s.RetryCount,
		})
	}
	return rec
}

func missionFromRecord(rec *store.Mission) *mission.Mission {
	m := &mission.Mission{
		ID:         rec.ID,
		Name:       rec.Name,
		Operation:  mission.OperationType(rec.Operation),
		RobotID:    rec.RobotID,
		Source:     rec.SourcePoint,
		Dest:       rec.DestPoint,
		Status:     mission.MissionStatus(rec.Status),
		FailedStep: rec.FailedStep,
		Warning:    rec.Warning,
		Error:      rec.ErrorDetail,
		CreatedAt:  rec.CreatedAt,
		FinishedAt: rec.FinishedAt,
	}
	for _, s := range rec.Steps {
		m.Steps = append(m.Steps, &mission.Step{
			Kind:       mission.StepKind(s.Kind),
			Label:      s.Label,
			Target:     points.Point{ID: s.Label, X: s.TargetX, Y: s.TargetY, Ori: s.TargetOri},
			Status:     mission.StepStatus(s.Status),
			RetryCount: s.RetryCount,
		})
	}
	return m
}
