package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Source yields the raw catalog document.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads the catalog from a local JSON file.
type FileSource struct {
	Path string
}

func (s FileSource) Read(_ context.Context) ([]byte, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("catalog: file path is empty")
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}
	return raw, nil
}

// Getter is satisfied by paramstore.Client.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ParamSource reads the catalog document stored as a single SSM parameter.
type ParamSource struct {
	Getter Getter
	Name   string
}

func (s ParamSource) Read(ctx context.Context) ([]byte, error) {
	if s.Getter == nil {
		return nil, errors.New("catalog: parameter getter is nil")
	}
	v, err := s.Getter.GetParameter(ctx, s.Name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read parameter: %w", err)
	}
	return []byte(v), nil
}
