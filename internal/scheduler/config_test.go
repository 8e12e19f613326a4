package scheduler

import (
	"testing"
	"time"
)

func TestDefaultRuntimeConfigMatchesScratchFrameRate(t *testing.T) {
	c := DefaultRuntimeConfig()
	if c.TickRate != 33*time.Millisecond {
		t.Fatalf("TickRate = %s, want 33ms", c.TickRate)
	}
	if c.CloneCap != DefaultCloneCap {
		t.Fatalf("CloneCap = %d, want %d", c.CloneCap, DefaultCloneCap)
	}
	if c.CloudCoalesceWindow != 0 {
		t.Fatalf("CloudCoalesceWindow = %s, want 0 (flush every tick)", c.CloudCoalesceWindow)
	}
}

func TestNewRuntimeConfigAppliesOptionsOverDefaults(t *testing.T) {
	c := NewRuntimeConfig(
		WithTickRate(10*time.Millisecond),
		WithCloneCap(5),
		WithCloudCoalesceWindow(200*time.Millisecond),
		WithConfigStuckBudget(time.Second),
		WithConfigSeed(42),
	)
	if c.TickRate != 10*time.Millisecond || c.CloneCap != 5 ||
		c.CloudCoalesceWindow != 200*time.Millisecond || c.StuckBudget != time.Second || c.Seed != 42 {
		t.Fatalf("unexpected config after options: %#v", c)
	}
}


