package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "main_data.csv"))

	_, err := l.Get(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoader_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("station\nDongsi\n"), 0o644))

	_, err := NewLoader(path).Get(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoader_CachesAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	l := NewLoader(path)
	first, err := l.Get(context.Background())
	require.NoError(t, err)
	second, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	extra := "4,2013,3,2,0,1.0,1.0,1.0,1.0,1.0,1.0,0.0,Dongsi,2013-03-02 00:00:00\n"
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV+extra), 0o644))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 4, third.Len())
}
