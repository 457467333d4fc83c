package config

import (
	"testing"

	"github.com/ariel-frischer/gatehook/internal/task"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTemplate(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := ".gatehook/config.yml"

	res, err := WriteTemplate(fs, path, false)
	require.NoError(t, err)
	assert.True(t, res.Written)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfigTemplate(), string(data))

	require.NoError(t, afero.WriteFile(fs, path, []byte("fix_mode: none\n"), 0o644))
	res, err = WriteTemplate(fs, path, false)
	require.NoError(t, err)
	assert.False(t, res.Written, "existing config is kept")
	data, _ = afero.ReadFile(fs, path)
	assert.Equal(t, "fix_mode: none\n", string(data))

	res, err = WriteTemplate(fs, path, true)
	require.NoError(t, err)
	assert.True(t, res.Written)
}

func TestConvertJSONConfig(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		json        string
		existing    string
		dryRun      bool
		wantWritten bool
		wantErr     bool
	}{
		"converts": {
			json:        `{"fix_mode": "cautious", "hooks": {"ci": {"tasks": ["lint:check"]}}}`,
			wantWritten: true,
		},
		"dry run": {
			json:   `{"fix_mode": "cautious"}`,
			dryRun: true,
		},
		"keeps existing yaml": {
			json:     `{"fix_mode": "cautious"}`,
			existing: "fix_mode: none\n",
		},
		"rejects invalid values": {
			json:    `{"fix_mode": "whenever"}`,
			wantErr: true,
		},
		"rejects malformed json": {
			json:    `{"fix_mode": `,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, ".gatehook/config.json", []byte(tt.json), 0o644))
			if tt.existing != "" {
				require.NoError(t, afero.WriteFile(fs, ".gatehook/config.yml", []byte(tt.existing), 0o644))
			}

			res, err := ConvertJSONConfig(fs, ".gatehook/config.json", ".gatehook/config.yml", tt.dryRun)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWritten, res.Written)

			if !tt.wantWritten {
				return
			}
			data, err := afero.ReadFile(fs, ".gatehook/config.yml")
			require.NoError(t, err)
			cfg, err := LoadBytes(data)
			require.NoError(t, err)
			assert.Equal(t, task.FixCautious, cfg.FixMode)
			assert.Equal(t, "lint", cfg.ForHook(task.HookCI).Tasks[0].ID)
		})
	}
}

func TestConvertJSONConfig_NoSource(t *testing.T) {
	t.Parallel()

	res, err := ConvertJSONConfig(afero.NewMemMapFs(), "missing.json", "out.yml", false)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Contains(t, res.Message, "No JSON config")
}
