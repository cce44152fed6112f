package pipeline

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"

	"github.com/epiq/epiq/pkg/logger"
	"github.com/epiq/epiq/pkg/process"
)

// inputBuffer bounds the channel between two stages.
const inputBuffer = 100

// emitter forwards one line downstream. It returns false once the pipeline
// is aborted.
type emitter func(ctx context.Context, text string) bool

// stage is one running process. Head stages have no input channel.
type stage struct {
	index   int
	command string
	cmd     *exec.Cmd
	input   <-chan string
}

// start launches the process for words and wires its streams. Lines read
// from input are written to the process; stdout and stderr lines go to emit.
// finish runs once both output streams are exhausted.
func (s *stage) start(
	ctx context.Context,
	words []string,
	group *process.SafeGroup,
	emit emitter,
	finish func(),
	log logger.Logger,
) error {
	cmd := exec.CommandContext(ctx, words[0], words[1:]...)

	var stdin io.WriteCloser
	if s.input != nil {
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return spawnError(s.index, s.command, words[0], err)
		}
		stdin = pipe
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnError(s.index, s.command, words[0], err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnError(s.index, s.command, words[0], err)
	}

	if err := cmd.Start(); err != nil {
		return spawnError(s.index, s.command, words[0], err)
	}
	s.cmd = cmd

	log.Debug("Stage started",
		logger.WithField("stage", s.index),
		logger.WithField("command", s.command),
		logger.WithField("pid", cmd.Process.Pid))

	if stdin != nil {
		group.Go(func() error {
			s.feed(stdin, log)
			return nil
		})
	}

	merged := make(chan string)
	readersDone := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(2)
	group.Go(func() error {
		defer readers.Done()
		readLines(ctx, stdout, cleanStdout, merged)
		return nil
	})
	group.Go(func() error {
		defer readers.Done()
		readLines(ctx, stderr, cleanStderr, merged)
		return nil
	})
	group.Go(func() error {
		readers.Wait()
		close(merged)
		close(readersDone)
		return nil
	})

	// Forwarder: ends only when both streams are done.
	group.Go(func() error {
		if finish != nil {
			defer finish()
		}
		for line := range merged {
			if !emit(ctx, line) {
				return nil
			}
		}
		return nil
	})

	// Reaper: pipes must be fully read before Wait, unless the pipeline is
	// aborted, in which case Wait closes them and unblocks the readers.
	group.Go(func() error {
		select {
		case <-readersDone:
		case <-ctx.Done():
		}
		err := cmd.Wait()
		fields := []logger.Field{
			logger.WithField("stage", s.index),
			logger.WithField("command", s.command),
		}
		if err != nil {
			fields = append(fields, logger.WithField("status", err.Error()))
		}
		log.Debug("Stage exited", fields...)
		return nil
	})

	return nil
}

// feed writes upstream lines into the process. Once the process stops
// accepting input the remaining lines are drained and dropped so upstream
// never stalls on a dead stage.
func (s *stage) feed(stdin io.WriteCloser, log logger.Logger) {
	defer stdin.Close()

	w := bufio.NewWriter(stdin)
	broken := false
	for line := range s.input {
		if broken {
			continue
		}
		_, err := w.WriteString(line + "\n")
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			broken = true
			log.Debug("Stage stopped reading input",
				logger.WithField("stage", s.index),
				logger.WithField("error", err))
		}
	}
}

func readLines(ctx context.Context, r io.Reader, clean func(string) string, out chan<- string) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			select {
			case out <- clean(line):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// cleanStdout replaces invalid UTF-8 before stripping escape sequences;
// the ANSI parser would otherwise drop stray bytes or treat C1 bytes as the
// start of a sequence.
func cleanStdout(line string) string {
	return ansi.Strip(strings.ToValidUTF8(line, "\uFFFD"))
}

func cleanStderr(line string) string {
	return strings.ToValidUTF8(line, "\uFFFD")
}
