package scheduler

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"scratchcore/internal/codegen"
	"scratchcore/internal/ir"
	"scratchcore/internal/irgen"
	"scratchcore/internal/project"
	"scratchcore/internal/scratchlog"
)

// DefaultStuckBudget is the §4.6 default wall-clock budget a warp-mode
// thread gets before a stuck-detect yield is forced mid-Step.
const DefaultStuckBudget = 500 * time.Millisecond

// Helpers resolves side-effecting block opcodes (C8) against a target.
type Helpers interface {
	Reporter(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{}
	Stack(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) codegen.HelperResult
}

// Monitors owns variable-watcher visibility and cloud-variable persistence
// (C9); FlushCloud is invoked at tick boundaries to drain pending writes.
type Monitors interface {
	SetVariableVisible(target *project.Target, varID string, visible bool)
	ScheduleCloudWrite(target *project.Target, varID string, value interface{})
	FlushCloud(ctx context.Context) error
}

type broadcastGroup struct {
	pending int
}

// Scheduler is the single-threaded cooperative runner (§4.6, §5). It
// implements codegen.Host itself, since dispatching broadcasts/clones/stop
// requires the full set of live threads that only the scheduler holds.
type Scheduler struct {
	proj        *project.Project
	helpers     Helpers
	monitors    Monitors
	procedures  map[string]*irgen.CompiledProcedure
	scriptsByID map[string][]*ir.Script // keyed by TargetID, every compiled script on that target

	liveTargets []*project.Target
	threads     []*Thread

	rng         *rand.Rand
	stuckBudget time.Duration
	nowFn       func() time.Time

	cloneCap            int
	cloudCoalesceWindow time.Duration
	lastCloudFlush      time.Time
	log                 *scratchlog.Logger

	current         *Thread
	broadcastGroups map[interface{}]*broadcastGroup
}

// Option configures optional Scheduler behavior (only the wall clock and
// stuck-detect budget are worth overriding, almost always in tests).
type Option func(*Scheduler)

func WithClock(now func() time.Time) Option { return func(s *Scheduler) { s.nowFn = now } }
func WithStuckBudget(d time.Duration) Option {
	return func(s *Scheduler) { s.stuckBudget = d }
}
func WithSeed(seed int64) Option {
	return func(s *Scheduler) { s.rng = rand.New(rand.NewSource(seed)) }
}
func WithLogger(l *scratchlog.Logger) Option { return func(s *Scheduler) { s.log = l } }

// WithRuntimeConfig applies a RuntimeConfig's stuck budget, clone cap, cloud
// coalescing window and seed in one call, the shape cmd/scratchrt uses once
// it has parsed its flags. TickRate is not applied here; it is passed to Run.
func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(s *Scheduler) {
		s.stuckBudget = cfg.StuckBudget
		s.cloneCap = cfg.CloneCap
		s.cloudCoalesceWindow = cfg.CloudCoalesceWindow
		s.rng = rand.New(rand.NewSource(cfg.Seed))
	}
}

// New builds a Scheduler around a compiled project, ready to Start once
// Helpers/Monitors are wired.
func New(proj *project.Project, compiled *irgen.CompiledProject, helpers Helpers, monitors Monitors, opts ...Option) *Scheduler {
	s := &Scheduler{
		proj:            proj,
		helpers:         helpers,
		monitors:        monitors,
		procedures:      map[string]*irgen.CompiledProcedure{},
		scriptsByID:     map[string][]*ir.Script{},
		liveTargets:     append([]*project.Target(nil), proj.AllTargets()...),
		rng:             rand.New(rand.NewSource(1)),
		stuckBudget:     DefaultStuckBudget,
		nowFn:           time.Now,
		cloneCap:        DefaultCloneCap,
		log:             scratchlog.Default,
		broadcastGroups: map[interface{}]*broadcastGroup{},
	}
	for _, ct := range compiled.Targets {
		s.scriptsByID[ct.TargetID] = append(s.scriptsByID[ct.TargetID], ct.Scripts...)
		for _, p := range ct.Procedures {
			s.procedures[project.ProcedureKey(ct.TargetID, p.ProcCode)] = p
		}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start fires every green-flag hat across every live target, the entry
// point a `run` command drives after compiling and optimizing a project.
func (s *Scheduler) Start() {
	for _, t := range s.liveTargets {
		for _, sc := range s.scriptsByID[t.ID] {
			if sc.HatOpcode == ir.OpHatGreenFlag {
				s.spawn(sc, t, "")
			}
		}
	}
}

// Tick steps every active thread exactly once, in registration order
// (§4.6), then reaps anything that retired this tick.
func (s *Scheduler) Tick() {
	for _, t := range s.threads {
		if t.Status == StatusRetired {
			continue
		}
		s.current = t
		res := t.exec.Step(s)
		t.Status = statusFromStep(res, t.exec)
		if t.Status == StatusRetired {
			s.onThreadRetired(t)
		}
	}
	s.current = nil
	s.reap()
}

func (s *Scheduler) reap() {
	live := s.threads[:0]
	for _, t := range s.threads {
		if t.Status != StatusRetired {
			live = append(live, t)
		}
	}
	s.threads = live
}

func (s *Scheduler) onThreadRetired(t *Thread) {
	if t.broadcastGroup == nil {
		return
	}
	g, ok := s.broadcastGroups[t.broadcastGroup]
	if !ok {
		return
	}
	g.pending--
}

// Run drives Tick on a fixed-period loop until ctx is cancelled, fanning the
// cloud-variable flush out onto its own goroutine whenever cloudCoalesceWindow
// has elapsed since the last one (§5's "concurrent I/O at the edges,
// single-threaded script execution"; §8 S10's coalescing window).
func (s *Scheduler) Run(ctx context.Context, tickInterval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	started := s.nowFn()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("scheduler stopping, started %s", humanize.RelTime(started, s.nowFn(), "ago", "from now"))
			return g.Wait()
		case <-ticker.C:
			s.Tick()
			if s.monitors != nil && s.nowFn().Sub(s.lastCloudFlush) >= s.cloudCoalesceWindow {
				s.lastCloudFlush = s.nowFn()
				g.Go(func() error { return s.monitors.FlushCloud(gctx) })
			}
		}
	}
}

func (s *Scheduler) spawn(sc *ir.Script, target *project.Target, group interface{}) *Thread {
	th := newScriptThread(uuid.NewString(), sc, target, s, s.rng, s.nowFn())
	th.broadcastGroup = group
	s.threads = append(s.threads, th)
	return th
}

// ---- codegen.Host ----

func (s *Scheduler) CallReporterHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string) interface{} {
	if s.helpers == nil {
		return nil
	}
	return s.helpers.Reporter(opcode, target, args, fields)
}

func (s *Scheduler) CallStackHelper(opcode string, target *project.Target, args map[string]interface{}, fields map[string]string, handle interface{}) codegen.HelperResult {
	if s.helpers == nil {
		return codegen.HelperResult{Status: codegen.HelperComplete}
	}
	return s.helpers.Stack(opcode, target, args, fields, handle)
}

func (s *Scheduler) Broadcast(name string) {
	s.dispatchBroadcast(name, nil)
}

func (s *Scheduler) BroadcastAndWait(name string, handle interface{}) bool {
	if g, ok := s.broadcastGroups[handle]; ok {
		if g.pending > 0 {
			return false
		}
		delete(s.broadcastGroups, handle)
		return true
	}
	n := s.dispatchBroadcast(name, handle)
	if n == 0 {
		return true
	}
	s.broadcastGroups[handle] = &broadcastGroup{pending: n}
	return false
}

func (s *Scheduler) dispatchBroadcast(name string, group interface{}) int {
	n := 0
	for _, t := range s.liveTargets {
		for _, sc := range s.scriptsByID[t.ID] {
			if sc.HatOpcode == ir.OpHatBroadcastReceived && strings.EqualFold(sc.HatParams.Broadcast, name) {
				s.spawn(sc, t, group)
				n++
			}
		}
	}
	return n
}

func (s *Scheduler) CreateCloneOf(target *project.Target, option string) {
	if n := s.cloneCount(); n >= s.cloneCap {
		s.log.Debug("clone cap reached (%s of %d), dropping create-clone-of", humanize.Comma(int64(n)), s.cloneCap)
		return
	}
	source := target
	if option != "_myself_" {
		for _, t := range s.liveTargets {
			if !t.IsStage && t.Name == option && !t.IsClone {
				source = t
				break
			}
		}
	}
	clone := source.Clone()
	if clone == nil {
		return
	}
	s.insertCloneAfter(source, clone)
	for _, sc := range s.scriptsByID[clone.ID] {
		if sc.HatOpcode == ir.OpHatStartAsClone {
			s.spawn(sc, clone, nil)
		}
	}
}

// insertCloneAfter splices clone into liveTargets immediately behind source,
// so draw order keeps clones "just behind their originator" (§3, §5) instead
// of always trailing at the tail.
func (s *Scheduler) insertCloneAfter(source, clone *project.Target) {
	idx := -1
	for i, t := range s.liveTargets {
		if t == source {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.liveTargets = append(s.liveTargets, clone)
		return
	}
	s.liveTargets = append(s.liveTargets, nil)
	copy(s.liveTargets[idx+2:], s.liveTargets[idx+1:])
	s.liveTargets[idx+1] = clone
}

func (s *Scheduler) cloneCount() int {
	n := 0
	for _, t := range s.liveTargets {
		if t.IsClone {
			n++
		}
	}
	return n
}

func (s *Scheduler) DeleteThisClone(target *project.Target) {
	if !target.IsClone {
		return
	}
	for i, t := range s.liveTargets {
		if t == target {
			s.liveTargets = append(s.liveTargets[:i], s.liveTargets[i+1:]...)
			break
		}
	}
	for _, th := range s.threads {
		if th.Target == target {
			th.Status = StatusRetired
		}
	}
}

func (s *Scheduler) StopAll() {
	for _, t := range s.threads {
		if t != s.current {
			t.Status = StatusRetired
		}
	}
}

func (s *Scheduler) StopOthers(target *project.Target) {
	for _, t := range s.threads {
		if t != s.current && t.Target == target {
			t.Status = StatusRetired
		}
	}
}

func (s *Scheduler) SetVariableVisible(target *project.Target, varID string, visible bool) {
	if s.monitors != nil {
		s.monitors.SetVariableVisible(target, varID, visible)
	}
}

func (s *Scheduler) SaveCloudVariable(target *project.Target, varID string, value interface{}) {
	if s.monitors != nil {
		s.monitors.ScheduleCloudWrite(target, varID, value)
	}
}

func (s *Scheduler) LookupProcedure(targetID, procCode string) (*irgen.CompiledProcedure, bool) {
	p, ok := s.procedures[project.ProcedureKey(targetID, procCode)]
	return p, ok
}

func (s *Scheduler) Now() time.Time { return s.nowFn() }

func (s *Scheduler) StuckBudget() time.Duration { return s.stuckBudget }


