package scheduler

import "time"

// DefaultCloneCap mirrors Scratch's own global clone ceiling; CreateCloneOf
// silently drops requests once liveTargets holds this many clones.
const DefaultCloneCap = 300

// RuntimeConfig bundles the knobs a hosting command line needs to tune
// before it builds a Scheduler: how often scripts step, how long a
// warp-mode thread may run before a stuck-detect yield is forced, how many
// clones a project may have live at once, and how often pending cloud
// writes are flushed. Built with functional options, the same shape the
// teacher uses for its worker-pool knobs.
type RuntimeConfig struct {
	TickRate            time.Duration
	StuckBudget         time.Duration
	CloneCap            int
	CloudCoalesceWindow time.Duration
	Seed                int64
}

// DefaultRuntimeConfig matches Scratch's own ~30Hz frame rate and flushes
// cloud writes on every tick (a zero coalescing window).
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		TickRate:            33 * time.Millisecond,
		StuckBudget:         DefaultStuckBudget,
		CloneCap:            DefaultCloneCap,
		CloudCoalesceWindow: 0,
		Seed:                1,
	}
}

// ConfigOption mutates a RuntimeConfig under construction.
type ConfigOption func(*RuntimeConfig)

func WithTickRate(d time.Duration) ConfigOption {
	return func(c *RuntimeConfig) { c.TickRate = d }
}
func WithCloneCap(n int) ConfigOption {
	return func(c *RuntimeConfig) { c.CloneCap = n }
}
func WithCloudCoalesceWindow(d time.Duration) ConfigOption {
	return func(c *RuntimeConfig) { c.CloudCoalesceWindow = d }
}
func WithConfigStuckBudget(d time.Duration) ConfigOption {
	return func(c *RuntimeConfig) { c.StuckBudget = d }
}
func WithConfigSeed(seed int64) ConfigOption {
	return func(c *RuntimeConfig) { c.Seed = seed }
}

// NewRuntimeConfig starts from DefaultRuntimeConfig and applies opts in order.
func NewRuntimeConfig(opts ...ConfigOption) RuntimeConfig {
	c := DefaultRuntimeConfig()
	for _, o := range opts {
		o(&c)
	}
	return c
}


