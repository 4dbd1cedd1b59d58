package services

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// GraphBuilder turns an uploaded book file into the static knowledge graph.
// The heavy lifting lives in an external tool; this is only the trigger.
type GraphBuilder interface {
	Build(ctx context.Context, bookPath string) error
}

// CommandGraphBuilder shells out to a configured builder command, appending
// the book path as the final argument.
type CommandGraphBuilder struct {
	command []string
	logger  *slog.Logger
}

var _ GraphBuilder = (*CommandGraphBuilder)(nil)

// NewCommandGraphBuilder parses a space-separated command line. Returns nil
// when the command is empty, meaning graph builds are disabled.
func NewCommandGraphBuilder(command string, logger *slog.Logger) *CommandGraphBuilder {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return &CommandGraphBuilder{
		command: fields,
		logger:  logger,
	}
}

func (b *CommandGraphBuilder) Build(ctx context.Context, bookPath string) error {
	args := append(append([]string{}, b.command[1:]...), bookPath)
	cmd := exec.CommandContext(ctx, b.command[0], args...)

	b.logger.Info("Running graph builder", "command", b.command[0], "book", bookPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		b.logger.Error("Graph builder failed", "error", err, "output", string(out))
		return fmt.Errorf("graph builder failed: %w", err)
	}
	b.logger.Info("Graph builder finished", "book", bookPath)
	return nil
}

// MockGraphBuilder records build calls for testing
type MockGraphBuilder struct {
	Paths []string
	Err   error
}

var _ GraphBuilder = (*MockGraphBuilder)(nil)

func (m *MockGraphBuilder) Build(ctx context.Context, bookPath string) error {
	m.Paths = append(m.Paths, bookPath)
	return m.Err
}
