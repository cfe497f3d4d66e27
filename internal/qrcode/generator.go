// AngelaMos | 2026
// generator.go

package qrcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"

	"github.com/carterperez-dev/kandi-backend/internal/config"
)

type Kind string

const (
	KindThread Kind = "thread"
	KindBead   Kind = "charms"
)

const imageSize = 256

// Asset is a generated QR image plus the link it encodes.
type Asset struct {
	Path string
	Link string
}

type Generator interface {
	Generate(ctx context.Context, kind Kind, id string) (*Asset, error)
}

type FileGenerator struct {
	dir     string
	baseURL string
}

func NewFileGenerator(cfg config.QRConfig) (*FileGenerator, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr dir %q: %w", cfg.Dir, err)
	}

	return &FileGenerator{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (g *FileGenerator) Generate(
	ctx context.Context,
	kind Kind,
	id string,
) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link := Link(g.baseURL, kind, id)
	path := filepath.Join(g.dir, fmt.Sprintf("%s-%s.png", kind, id))

	if err := goqrcode.WriteFile(link, goqrcode.Medium, imageSize, path); err != nil {
		return nil, fmt.Errorf("write qr code: %w", err)
	}

	return &Asset{Path: path, Link: link}, nil
}

func Link(baseURL string, kind Kind, id string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), kind, id)
}

// Ping reports whether the output directory is still a writable directory.
func (g *FileGenerator) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(g.dir)
	if err != nil {
		return fmt.Errorf("stat qr dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("qr dir %q is not a directory", g.dir)
	}

	probe, err := os.CreateTemp(g.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("qr dir not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
