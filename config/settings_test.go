// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysTOMLOntoDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "renderScaleFloor = 3\nbackingDimensionClamp = 8192\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float32(3), s.RenderScaleFloor)
	assert.Equal(t, 8192, s.BackingDimensionClamp)
	// Fields absent from the file keep Default()'s values.
	assert.Equal(t, float32(256), s.SuspiciousAspectRatio)
	assert.Equal(t, 16*time.Millisecond, s.DefaultTickBudget)
}

func TestLoadMissingFileReturnsDefaultAndError(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, Default(), s)
}
