package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/ciweather/core/failindex"
	"github.com/huangsam/ciweather/internal/contract"
	"github.com/huangsam/ciweather/internal/inputs"
	"github.com/huangsam/ciweather/internal/iocache"
	"github.com/huangsam/ciweather/internal/outwriter"
	"github.com/huangsam/ciweather/schema"
)

// ErrNoDashboard is returned when neither the dashboard file nor the
// snapshot cache holds a dashboard.
var ErrNoDashboard = errors.New("no dashboard found. Run 'ciweather run' first")

// LoadDashboard returns the latest dashboard: the snapshot file when it
// exists, otherwise the copy kept in the snapshot cache.
func LoadDashboard(cfg *contract.Config, mgr contract.CacheManager) (*schema.Dashboard, error) {
	dash, err := inputs.LoadSnapshot(cfg.SnapshotFile())
	if err != nil {
		return nil, err
	}
	if dash != nil {
		return dash, nil
	}

	if mgr != nil {
		dash, err = iocache.LoadSnapshot(mgr.GetSnapshotStore(), iocache.SnapshotKey(cfg.OutputFile))
		if err != nil {
			return nil, err
		}
	}
	if dash == nil {
		return nil, ErrNoDashboard
	}
	return dash, nil
}

// FailureIndexRows returns the top limit rows of the dashboard's failure
// index. A non-positive limit returns every row.
func FailureIndexRows(dash *schema.Dashboard, limit int) []schema.IndexRow {
	rows := failindex.Rows(dash.FailedTestsIndex)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// FindTest looks a test up by id, within sectionID when it is not empty.
func FindTest(dash *schema.Dashboard, sectionID, testID string) (*schema.Section, *schema.TestRecord, error) {
	if testID == "" {
		return nil, nil, errors.New("a test id is required (--test)")
	}
	if sectionID != "" {
		for i := range dash.Sections {
			if dash.Sections[i].ID != sectionID {
				continue
			}
			if test, ok := dash.FindTest(sectionID, testID); ok {
				return &dash.Sections[i], test, nil
			}
		}
		return nil, nil, fmt.Errorf("test %q not found in section %q", testID, sectionID)
	}
	section, test, ok := dash.FindTestByID(testID)
	if !ok {
		return nil, nil, fmt.Errorf("test %q not found", testID)
	}
	return section, test, nil
}

// ExecuteIndex prints the failure index of the latest dashboard.
// It serves as the main entry point for the 'index' command.
func ExecuteIndex(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	dash, err := LoadDashboard(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteFailureIndex(failindex.Rows(dash.FailedTestsIndex), cfg)
}

// ExecuteWeather prints the weather timeline of one test.
// It serves as the main entry point for the 'weather' command.
func ExecuteWeather(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	dash, err := LoadDashboard(cfg, mgr)
	if err != nil {
		return err
	}
	section, test, err := FindTest(dash, cfg.SectionID, cfg.TestID)
	if err != nil {
		return err
	}
	return outwriter.WriteTestWeather(section, test, cfg)
}
