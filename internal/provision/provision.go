// Package provision creates the working folders a new tenant needs to
// preview or publish courses: a tenant-scoped temp directory seeded with a
// copy of the shared framework template.
package provision

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type Provisioner struct {
	serverRoot   string
	frameworkDir string
	tempDir      string
	cloner       FrameworkCloner
	logger       *zap.Logger
}

func New(serverRoot, frameworkDir, tempDir string, cloner FrameworkCloner, logger *zap.Logger) *Provisioner {
	return &Provisioner{
		serverRoot:   serverRoot,
		frameworkDir: frameworkDir,
		tempDir:      tempDir,
		cloner:       cloner,
		logger:       logger,
	}
}

// CreateWorkspace provisions the on-disk workspace for the given tenant:
// it ensures the tenant temp directory exists, clones the shared framework
// template if it is not yet on disk, then copies the template into the
// tenant directory. Any failure aborts and is returned as-is; partially
// created state is left in place.
func (p *Provisioner) CreateWorkspace(ctx context.Context, tenantID string) error {
	tenantDir := filepath.Join(p.tempDir, tenantID)
	if err := os.MkdirAll(tenantDir, 0o755); err != nil {
		p.logger.Error("failed to create tenant directory", zap.Error(err))
		return err
	}

	template := filepath.Join(p.serverRoot, p.frameworkDir)
	if _, err := os.Stat(template); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		p.logger.Info("framework template does not exist")
		if err := p.cloner.Clone(ctx, template); err != nil {
			p.logger.Error("failed to clone framework template", zap.Error(err))
			return err
		}
	}

	p.logger.Info("copying framework into place for new tenant",
		zap.String("tenant_id", tenantID))
	if err := copyDir(ctx, template, filepath.Join(tenantDir, p.frameworkDir)); err != nil {
		p.logger.Error("failed to copy framework template", zap.Error(err))
		return err
	}
	return nil
}

// copyDir recursively copies src into dest, preserving file modes.
func copyDir(ctx context.Context, src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			// Symlinks and other special files are not part of the template.
			return fmt.Errorf("unsupported file type in template: %s", path)
		}
	})
}

func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
