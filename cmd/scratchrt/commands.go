package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"time"

	"scratchcore/internal/blocks"
	"scratchcore/internal/ir"
	"scratchcore/internal/irgen"
	"scratchcore/internal/monitor"
	"scratchcore/internal/optimize"
	"scratchcore/internal/scheduler"
	"scratchcore/internal/scratchlog"
)

// compileAndOptimize runs C4 then C5 over every target and returns the
// combined diagnostics list (§C "compile-time diagnostics list") alongside
// the compiled project the scheduler or dump printer consumes.
func compileAndOptimize(path string) (*irgen.CompiledProject, []irgen.Diagnostic, error) {
	proj, rawTargets, err := LoadProject(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load project: %w", err)
	}
	compiled := irgen.Compile(proj, rawTargets)

	opt := optimize.New()
	var diags []irgen.Diagnostic
	for _, ct := range compiled.Targets {
		ct.Scripts = opt.Scripts(ct.Scripts)
		diags = append(diags, ct.Diagnostics...)
	}
	return compiled, diags, nil
}

func reportDiagnostics(log *scratchlog.Logger, diags []irgen.Diagnostic) {
	for _, d := range diags {
		if d.Err.Fatal {
			log.Error("%s", d.Err.Error())
			continue
		}
		log.Warn("%s", d.Err.Error())
	}
}

// CompileCommand validates a project file and reports diagnostics without
// running it; exits non-zero if any diagnostic is fatal.
func CompileCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: scratchrt compile <project.json|project.sb3>")
	}
	_, diags, err := compileAndOptimize(args[0])
	if err != nil {
		return err
	}
	reportDiagnostics(scratchlog.Default, diags)
	for _, d := range diags {
		if d.Err.Fatal {
			return fmt.Errorf("compilation failed: %s", d.Err.Error())
		}
	}
	fmt.Printf("compiled %s cleanly (%d diagnostics)\n", args[0], len(diags))
	return nil
}

// DumpCommand prints each compiled, optimized script's IR tree — the
// debugger-lite view promised by §C's "disassembly / dump mode".
func DumpCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: scratchrt dump <project.json|project.sb3>")
	}
	compiled, diags, err := compileAndOptimize(args[0])
	if err != nil {
		return err
	}
	reportDiagnostics(scratchlog.Default, diags)
	for _, ct := range compiled.Targets {
		fmt.Printf("== target %s ==\n", ct.TargetID)
		for _, sc := range ct.Scripts {
			fmt.Printf("script %s\n", sc.HatOpcode)
			dumpBody(sc.Body, 1)
		}
	}
	return nil
}

func dumpBody(body []*ir.StackBlock, indent int) {
	pad := strings.Repeat("  ", indent)
	for _, b := range body {
		fmt.Printf("%s%s (%s)\n", pad, b.Opcode, b.BlockID)
		for name, in := range b.Inputs {
			fmt.Printf("%s  %s = %s\n", pad, name, dumpInput(in))
		}
		for role, sub := range b.Substacks {
			fmt.Printf("%s  [%s]\n", pad, role)
			dumpBody(sub, indent+2)
		}
	}
}

func dumpInput(in ir.Input) string {
	switch n := in.(type) {
	case *ir.Constant:
		return fmt.Sprintf("const(%v)", n.Value)
	case *ir.InputReporter:
		return n.Opcode.String()
	case *ir.StackBlock:
		return n.Opcode.String()
	default:
		return "?"
	}
}

// RunCommand compiles a project and drives the scheduler to completion (or
// until interrupted), printing cloud-write activity via the logger. The CLI
// runner has no real mouse/keyboard/ask-prompt, so Blocks gets nil
// collaborators (§6: those external interfaces are named, not specified).
func RunCommand(args []string) error {
	fs := newFlagSet("run")
	ticks := fs.Int("ticks", 0, "stop after N ticks (0 = run until interrupted)")
	cloudPath := fs.String("cloud-db", "", "optional sqlite path for offline cloud persistence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: scratchrt run [--ticks N] [--cloud-db path] <project.json|project.sb3>")
	}

	proj, rawTargets, err := LoadProject(rest[0])
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	compiled := irgen.Compile(proj, rawTargets)
	opt := optimize.New()
	for _, ct := range compiled.Targets {
		ct.Scripts = opt.Scripts(ct.Scripts)
		for _, d := range ct.Diagnostics {
			if d.Err.Fatal {
				return fmt.Errorf("fatal diagnostic on target %s: %s", ct.TargetID, d.Err.Error())
			}
		}
	}

	var store monitor.CloudStore
	if *cloudPath != "" {
		s, err := monitor.OpenSQLiteCloudStore(*cloudPath)
		if err != nil {
			return fmt.Errorf("open cloud store: %w", err)
		}
		defer s.Close()
		store = s
	}
	mgr := monitor.NewManager(store)
	cfg := scheduler.NewRuntimeConfig()
	helpers := blocks.New(nil, nil, rand.New(rand.NewSource(cfg.Seed)))

	sched := scheduler.New(proj, compiled, helpers, mgr, scheduler.WithRuntimeConfig(cfg))
	sched.Start()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if *ticks > 0 {
		for i := 0; i < *ticks; i++ {
			sched.Tick()
		}
		return mgr.FlushCloud(context.Background())
	}
	return sched.Run(ctx, cfg.TickRate)
}

// MonitorCommand compiles and runs a project for a fixed window, then prints
// every visible monitor's final value (§C "monitor snapshot export").
func MonitorCommand(args []string) error {
	fs := newFlagSet("monitor")
	dur := fs.Duration("for", time.Second, "how long to run before snapshotting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: scratchrt monitor [--for 2s] <project.json|project.sb3>")
	}
	proj, rawTargets, err := LoadProject(rest[0])
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	compiled := irgen.Compile(proj, rawTargets)
	opt := optimize.New()
	for _, ct := range compiled.Targets {
		ct.Scripts = opt.Scripts(ct.Scripts)
	}

	mgr := monitor.NewManager(nil)
	cfg := scheduler.NewRuntimeConfig()
	helpers := blocks.New(nil, nil, rand.New(rand.NewSource(cfg.Seed)))
	sched := scheduler.New(proj, compiled, helpers, mgr, scheduler.WithRuntimeConfig(cfg))
	sched.Start()

	ctx, cancel := context.WithTimeout(context.Background(), *dur)
	defer cancel()
	_ = sched.Run(ctx, cfg.TickRate)

	snapshot := mgr.Snapshot(proj)
	for key, value := range snapshot {
		fmt.Printf("%s = %s\n", key, value)
	}
	return nil
}


