package pipeline_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/epiq/epiq/internal/pipeline"
	"github.com/epiq/epiq/pkg/logger"
)

func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

// collect reads sink until the pipeline is done and returns the texts.
func collect(t *testing.T, p *pipeline.Pipeline, sink <-chan pipeline.Line) []string {
	t.Helper()

	var texts []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line := <-sink:
			if line.Run != p.Run() {
				t.Errorf("line %q has run %d, want %d", line.Text, line.Run, p.Run())
			}
			texts = append(texts, line.Text)
		case <-p.Done():
			for {
				select {
				case line := <-sink:
					texts = append(texts, line.Text)
				default:
					return texts
				}
			}
		case <-timeout:
			t.Fatalf("pipeline did not finish, got %q", texts)
		}
	}
}

func spawn(t *testing.T, run uint64, commands ...string) (*pipeline.Pipeline, chan pipeline.Line) {
	t.Helper()
	sink := make(chan pipeline.Line, 16)
	p, err := pipeline.Spawn(context.Background(), pipeline.Spec{Run: run, Commands: commands}, sink, logger.Discard())
	if err != nil {
		t.Fatalf("Spawn(%q) error = %v", commands, err)
	}
	t.Cleanup(p.Abort)
	return p, sink
}

func TestSpawn_TwoStages(t *testing.T) {
	requireTools(t, "echo", "tr")

	p, sink := spawn(t, 1, "echo hi", "tr a-z A-Z")
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}

	if got := collect(t, p, sink); !reflect.DeepEqual(got, []string{"HI"}) {
		t.Errorf("output = %q, want [HI]", got)
	}
	if err := p.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestSpawn_ThreeStagesKeepOrder(t *testing.T) {
	requireTools(t, "printf", "cat", "tr")

	p, sink := spawn(t, 3, `printf 'a\nb\nc\n'`, "cat", "tr a-z A-Z")

	if got := collect(t, p, sink); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("output = %q", got)
	}
}

func TestSpawn_SingleStageStreams(t *testing.T) {
	requireTools(t, "sh")

	p, sink := spawn(t, 2, `sh -c "echo out; echo err 1>&2; echo; printf tail"`)

	got := collect(t, p, sink)
	want := map[string]bool{"out": true, "err": true, "": true, "tail": true}
	if len(got) != len(want) {
		t.Fatalf("output = %q", got)
	}
	for _, line := range got {
		if !want[line] {
			t.Errorf("unexpected line %q", line)
		}
	}
}

func TestSpawn_StripsANSI(t *testing.T) {
	requireTools(t, "printf")

	p, sink := spawn(t, 1, `printf '\033[31mred\033[0m\n'`)

	if got := collect(t, p, sink); !reflect.DeepEqual(got, []string{"red"}) {
		t.Errorf("output = %q, want [red]", got)
	}
}

func TestSpawn_InvalidUTF8(t *testing.T) {
	requireTools(t, "printf", "sh")

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{name: "stdout", command: `printf 'a\377b\n'`, want: "a\uFFFDb"},
		{name: "stderr", command: `sh -c "printf 'a\377b\n' 1>&2"`, want: "a\uFFFDb"},
		{name: "stray C1 byte", command: `printf 'x\235abc\n'`, want: "x\uFFFDabc"},
		{name: "escape after invalid byte", command: `printf '\377\033[1mbold\033[0m\n'`, want: "\uFFFDbold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, sink := spawn(t, 1, tt.command)
			if got := collect(t, p, sink); !reflect.DeepEqual(got, []string{tt.want}) {
				t.Errorf("output = %q, want [%q]", got, tt.want)
			}
		})
	}
}

// An unread sink must stall every stage back to the producer instead of
// buffering without limit.
func TestSpawn_SlowConsumerStallsProducer(t *testing.T) {
	requireTools(t, "sh", "cat")

	counter := filepath.Join(t.TempDir(), "count")
	producer := `sh -c 'i=0; while :; do i=$((i+1)); echo $i; echo $i > "$0"; done' '` + counter + `'`
	p, sink := spawn(t, 5, producer, "cat")

	produced := func() int {
		data, err := os.ReadFile(counter)
		if err != nil {
			return -1
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return -1
		}
		return n
	}

	stalled := -1
	deadline := time.Now().Add(20 * time.Second)
	for time.Now().Before(deadline) {
		before := produced()
		time.Sleep(300 * time.Millisecond)
		if after := produced(); after > 0 && after == before {
			stalled = after
			break
		}
	}
	if stalled < 0 {
		t.Fatalf("producer never stalled, last count %d", produced())
	}
	if stalled > 1_000_000 {
		t.Errorf("producer wrote %d lines before stalling", stalled)
	}

	// Nothing was lost while stalled: draining resumes from the first line.
	for want := 1; want <= 200; want++ {
		select {
		case line := <-sink:
			if line.Text != strconv.Itoa(want) {
				t.Fatalf("line %d = %q", want, line.Text)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("output stopped after %d lines", want-1)
		}
	}

	p.Abort()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stalled pipeline did not finish after abort")
	}
}

func TestSpawn_FalseAfterAbort(t *testing.T) {
	requireTools(t, "sleep", "false")

	running, _ := spawn(t, 1, "sleep 10")
	running.Abort()
	running.Abort()

	select {
	case <-running.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("aborted pipeline did not finish")
	}

	p, sink := spawn(t, 2, "false")
	if got := collect(t, p, sink); len(got) != 0 {
		t.Errorf("output = %q, want none", got)
	}
}

func TestSpawn_AbortStopsDownstream(t *testing.T) {
	requireTools(t, "yes", "cat")

	p, sink := spawn(t, 7, "yes", "cat")

	select {
	case <-sink:
	case <-time.After(5 * time.Second):
		t.Fatal("no output from yes")
	}

	p.Abort()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-sink:
		case <-p.Done():
			return
		case <-deadline:
			t.Fatal("pipeline did not stop after abort")
		}
	}
}

func TestSpawn_Errors(t *testing.T) {
	requireTools(t, "sleep")

	tests := []struct {
		name     string
		commands []string
		kind     error
		stage    int
	}{
		{"empty pipeline", nil, pipeline.ErrEmptyPipeline, -1},
		{"unterminated quote", []string{"echo 'oops"}, pipeline.ErrInvalidCommand, 0},
		{"blank command", []string{"sleep 1", "   "}, pipeline.ErrInvalidCommand, 1},
		{"missing executable", []string{"epiq-no-such-command-xyz"}, pipeline.ErrSpawnFailed, 0},
		{"missing later stage", []string{"sleep 10", "epiq-no-such-command-xyz"}, pipeline.ErrSpawnFailed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := make(chan pipeline.Line, 1)
			p, err := pipeline.Spawn(context.Background(), pipeline.Spec{Commands: tt.commands}, sink, logger.Discard())
			if p != nil {
				p.Abort()
				t.Fatal("expected no pipeline")
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("error = %v, want %v", err, tt.kind)
			}
			if tt.stage < 0 {
				return
			}

			var cmdErr *pipeline.CommandError
			if !errors.As(err, &cmdErr) {
				t.Fatalf("expected *CommandError, got %T", err)
			}
			if cmdErr.Stage != tt.stage {
				t.Errorf("Stage = %d, want %d", cmdErr.Stage, tt.stage)
			}
			if errors.Is(tt.kind, pipeline.ErrSpawnFailed) {
				if cmdErr.Executable != "epiq-no-such-command-xyz" {
					t.Errorf("Executable = %q", cmdErr.Executable)
				}
				if !errors.Is(err, exec.ErrNotFound) {
					t.Errorf("expected exec.ErrNotFound in chain: %v", err)
				}
			}
		})
	}
}

func TestCommandError_Messages(t *testing.T) {
	tests := []struct {
		err  *pipeline.CommandError
		want string
	}{
		{
			&pipeline.CommandError{Stage: 1, Command: " ", Kind: pipeline.ErrInvalidCommand},
			"stage 2: the command is empty",
		},
		{
			&pipeline.CommandError{Executable: "grpe", Suggestion: "grep", Kind: pipeline.ErrSpawnFailed, Cause: exec.ErrNotFound},
			`command "grpe" is not found (did you mean "grep"?)`,
		},
		{
			&pipeline.CommandError{Executable: "grpe", Kind: pipeline.ErrSpawnFailed, Cause: exec.ErrNotFound},
			`command "grpe" is not found`,
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	dir := t.TempDir()
	for name, mode := range map[string]os.FileMode{
		"grep": 0o755,
		"grap": 0o644,
		"sort": 0o755,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, mode); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		want string
	}{
		{"grpe", "grep"},
		{"gre", "grep"},
		{"srot", "sort"},
		{"kubectl", ""},
	}

	for _, tt := range tests {
		if got := pipeline.Suggest(tt.name, dir); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
