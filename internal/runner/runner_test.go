package runner

import (
	"os/exec"
	"reflect"
	"runtime"
	"testing"
	"time"
)

func TestCommandArgs(t *testing.T) {
	cases := []struct {
		name     string
		strategy Strategy
		want     []string
	}{
		{
			name:     "bare",
			strategy: Strategy{},
			want:     []string{"run"},
		},
		{
			name: "full",
			strategy: Strategy{
				Release:           true,
				Target:            "aarch64-apple-darwin",
				NoDefaultFeatures: true,
				Features:          []string{"tray-icon"},
				Args:              []string{"--bin", "app"},
				RunArgs:           []string{"--port", "8080"},
			},
			want: []string{
				"run", "--release", "--target", "aarch64-apple-darwin",
				"--no-default-features", "--features", "tray-icon",
				"--bin", "app", "--", "--port", "8080",
			},
		},
		{
			name:     "run args need separator",
			strategy: Strategy{RunArgs: []string{"-v"}},
			want:     []string{"run", "--", "-v"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.strategy.commandArgs(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("commandArgs() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHandleNormalExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell tools")
	}

	exitCh := make(chan Status, 1)
	h, err := start(exec.Command("true"), func(st Status) { exitCh <- st })
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	st := h.Wait()
	if st.Reason != ReasonNormal {
		t.Errorf("reason = %v, want normal", st.Reason)
	}
	if st.Code != 0 {
		t.Errorf("code = %d, want 0", st.Code)
	}

	select {
	case notified := <-exitCh:
		if notified != st {
			t.Errorf("onExit saw %+v, Wait saw %+v", notified, st)
		}
	case <-time.After(time.Second):
		t.Error("onExit callback never fired")
	}

	if got, ok := h.TryWait(); !ok || got != st {
		t.Errorf("TryWait after exit = (%+v, %v), want (%+v, true)", got, ok, st)
	}
}

func TestHandleKill(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell tools")
	}

	cmd := exec.Command("sleep", "30")
	setSysProcAttr(cmd)
	h, err := start(cmd, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, ok := h.TryWait(); ok {
		t.Fatal("TryWait reported exit while process is alive")
	}

	if err := h.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	st := h.Wait()
	if st.Reason != ReasonKilled {
		t.Errorf("reason = %v, want killed", st.Reason)
	}

	// Killing an already-dead process is not an error.
	if err := h.Kill(); err != nil {
		t.Errorf("second Kill: %v", err)
	}
}

func TestHandleNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell tools")
	}

	h, err := start(exec.Command("sh", "-c", "exit 7"), nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	st := h.Wait()
	if st.Code != 7 {
		t.Errorf("code = %d, want 7", st.Code)
	}
	if st.Reason != ReasonNormal {
		t.Errorf("reason = %v, want normal (self exit)", st.Reason)
	}
}
