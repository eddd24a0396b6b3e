package provision

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// FrameworkCloner fetches the shared framework template into dest when it
// is absent on disk. Cloning into an existing checkout must be safe to
// race; git refuses to clone over a non-empty directory, which is relied
// upon when two provisions race on the template.
type FrameworkCloner interface {
	Clone(ctx context.Context, dest string) error
}

// GitCloner clones the framework template from its upstream repository.
type GitCloner struct {
	repository string
	revision   string
	logger     *zap.Logger
}

func NewGitCloner(repository, revision string, logger *zap.Logger) *GitCloner {
	return &GitCloner{repository: repository, revision: revision, logger: logger}
}

func (c *GitCloner) Clone(ctx context.Context, dest string) error {
	args := []string{"clone", "--depth", "1"}
	if c.revision != "" {
		args = append(args, "--branch", c.revision)
	}
	args = append(args, c.repository, dest)

	c.logger.Info("cloning framework template",
		zap.String("repository", c.repository),
		zap.String("dest", dest),
	)

	cmd := exec.CommandContext(ctx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", c.repository, err, out)
	}
	return nil
}
