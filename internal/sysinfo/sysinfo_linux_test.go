//go:build linux

package sysinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryModules_Dmidecode(t *testing.T) {
	q := &Querier{
		SysfsRoot: t.TempDir(),
		run: func(ctx context.Context, name string, args ...string) (string, error) {
			assert.Equal(t, "dmidecode", name)
			return dmidecodeOutput, nil
		},
	}
	n, err := q.MemoryModules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryModules_FallsBackToEDAC(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "devices", "system", "edac", "mc", "mc0", "dimm0"), 0o755))
	q := &Querier{
		SysfsRoot: root,
		run: func(context.Context, string, ...string) (string, error) {
			return "", errors.New("permission denied")
		},
	}
	n, err := q.MemoryModules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryModules_Failure(t *testing.T) {
	q := &Querier{
		SysfsRoot: t.TempDir(),
		run: func(context.Context, string, ...string) (string, error) {
			return "", errors.New("executable file not found")
		},
	}
	_, err := q.MemoryModules(context.Background())
	assert.Error(t, err)

	q.run = func(context.Context, string, ...string) (string, error) { return "", nil }
	_, err = q.MemoryModules(context.Background())
	assert.ErrorIs(t, err, ErrNoModules)
}
