package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/iocache"
	"github.com/huangsam/ciweather/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryDashboard() *schema.Dashboard {
	return &schema.Dashboard{
		Sections: []schema.Section{
			{ID: "gpu", Tests: []schema.TestRecord{{ID: "unit", Name: "GPU unit"}}},
			{ID: "cpu", Tests: []schema.TestRecord{{ID: "unit", Name: "CPU unit"}, {ID: "lint"}}},
		},
		FailedTestsIndex: schema.FailureIndex{
			"a": {TotalCount: 1, Occurrences: []schema.Occurrence{{Date: "2025-03-10T00:00:00Z"}}},
			"b": {TotalCount: 4},
			"c": {TotalCount: 2},
		},
	}
}

func TestLoadDashboard(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		cfg := writeFixtures(t)
		require.NoError(t, ExecuteDashboard(WithSuppressHeader(context.Background()), cfg, nil))

		dash, err := LoadDashboard(cfg, nil)
		require.NoError(t, err)
		assert.Len(t, dash.Sections, 1)
	})

	t.Run("from snapshot cache", func(t *testing.T) {
		cfg := &contract.Config{OutputFile: filepath.Join(t.TempDir(), "missing.json")}
		data, err := json.Marshal(queryDashboard())
		require.NoError(t, err)

		store := &iocache.MockCacheStore{}
		store.On("Get", iocache.SnapshotKey(cfg.OutputFile)).Return(data, schema.SnapshotVersion, int64(0), nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetSnapshotStore").Return(store)

		dash, err := LoadDashboard(cfg, mgr)
		require.NoError(t, err)
		assert.Len(t, dash.Sections, 2)
	})

	t.Run("nothing available", func(t *testing.T) {
		cfg := &contract.Config{OutputFile: filepath.Join(t.TempDir(), "missing.json")}
		store := &iocache.MockCacheStore{}
		store.On("Get", iocache.SnapshotKey(cfg.OutputFile)).Return(nil, 0, int64(0), sql.ErrNoRows)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetSnapshotStore").Return(store)

		_, err := LoadDashboard(cfg, mgr)
		assert.ErrorIs(t, err, ErrNoDashboard)

		_, err = LoadDashboard(cfg, nil)
		assert.ErrorIs(t, err, ErrNoDashboard)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
		_, err := LoadDashboard(&contract.Config{OutputFile: path}, nil)
		assert.Error(t, err)
	})
}

func TestFailureIndexRows(t *testing.T) {
	rows := FailureIndexRows(queryDashboard(), 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].TestName)
	assert.Equal(t, "c", rows[1].TestName)

	assert.Len(t, FailureIndexRows(queryDashboard(), 0), 3)
	assert.Empty(t, FailureIndexRows(&schema.Dashboard{}, 5))
}

func TestFindTest(t *testing.T) {
	dash := queryDashboard()

	tests := []struct {
		name      string
		sectionID string
		testID    string
		wantName  string
		wantErr   bool
	}{
		{"first match across sections", "", "unit", "GPU unit", false},
		{"scoped to section", "cpu", "unit", "CPU unit", false},
		{"unknown test", "", "e2e", "", true},
		{"unknown section", "arm", "unit", "", true},
		{"test not in section", "gpu", "lint", "", true},
		{"empty id", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section, test, err := FindTest(dash, tt.sectionID, tt.testID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, section)
			assert.Equal(t, tt.wantName, test.Name)
		})
	}
}

func TestExecuteIndexAndWeather(t *testing.T) {
	cfg := writeFixtures(t)
	ctx := WithSuppressHeader(context.Background())
	require.NoError(t, ExecuteDashboard(ctx, cfg, nil))

	cfg.Output = schema.CSVOut
	cfg.ResultLimit = 10
	cfg.ExportFile = filepath.Join(t.TempDir(), "index.csv")
	require.NoError(t, ExecuteIndex(ctx, cfg, nil))
	content, err := os.ReadFile(cfg.ExportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test_kernel_launch")

	cfg.Output = schema.JSONOut
	cfg.ExportFile = filepath.Join(t.TempDir(), "weather.json")
	cfg.TestID = "gpu-cuda"
	require.NoError(t, ExecuteWeather(ctx, cfg, nil))
	content, err = os.ReadFile(cfg.ExportFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"testId": "gpu-cuda"`)

	cfg.TestID = "missing"
	assert.Error(t, ExecuteWeather(ctx, cfg, nil))
}
