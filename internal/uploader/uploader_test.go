package uploader_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SrWildman/dfs/internal/category"
	"github.com/SrWildman/dfs/internal/config"
	"github.com/SrWildman/dfs/internal/logging"
	"github.com/SrWildman/dfs/internal/manifest"
	"github.com/SrWildman/dfs/internal/services"
	"github.com/SrWildman/dfs/internal/testsupport"
	"github.com/SrWildman/dfs/internal/uploader"
)

type call struct {
	op  string
	tab string
}

type fakeClient struct {
	calls     []call
	writeErrs []error
	clearErrs []error
	lastRows  [][]string
	lastHead  []string
}

func (f *fakeClient) EnsureTab(ctx context.Context, name string) error {
	f.calls = append(f.calls, call{"ensure", name})
	return nil
}

func (f *fakeClient) ClearTab(ctx context.Context, name string) error {
	f.calls = append(f.calls, call{"clear", name})
	if len(f.clearErrs) > 0 {
		err := f.clearErrs[0]
		f.clearErrs = f.clearErrs[1:]
		return err
	}
	return nil
}

func (f *fakeClient) WriteRows(ctx context.Context, name string, header []string, rows [][]string) error {
	f.calls = append(f.calls, call{"write", name})
	if len(f.writeErrs) > 0 {
		err := f.writeErrs[0]
		f.writeErrs = f.writeErrs[1:]
		return err
	}
	f.lastHead = header
	f.lastRows = rows
	return nil
}

func (f *fakeClient) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func transientErr() error {
	return services.Wrap(services.ErrTransient, "tabstore", "write rows", "status 503", nil)
}

func authErr() error {
	return services.Wrap(services.ErrAuthentication, "tabstore", "write rows", "status 401", nil)
}

func newUploader(t *testing.T, cfg *config.Config, client *fakeClient) (*uploader.Uploader, *manifest.Manifest) {
	t.Helper()
	up := uploader.New(cfg, client, logging.NewNop())
	uploader.SetSleepForTest(up, func(time.Duration) {})
	return up, manifest.Load(cfg.Paths.ManifestPath, logging.NewNop())
}

func writeLatest(t *testing.T, cfg *config.Config, cat category.Category, content string) {
	t.Helper()
	testsupport.WriteCSV(t, cat.Dir(cfg.Paths.DataDir), cat.LatestFilename(), content)
}

func TestSyncUploadsPresentCategoriesAndSkipsMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")
	writeLatest(t, cfg, category.DraftKings, "Name,Salary\nJosh Allen,8200\n")

	cats := []category.Category{category.Projections, category.DraftKings, category.NFLOdds}
	report, err := up.Sync(context.Background(), cats, m)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	succeeded, failed, skipped := report.Counts()
	if succeeded != 2 || failed != 0 || skipped != 1 {
		t.Fatalf("counts: %d/%d/%d", succeeded, failed, skipped)
	}
	if !report.AllSucceeded() {
		t.Fatal("skips must not fail the pass")
	}

	odds := m.Entry(category.NFLOdds)
	if odds.UploadStatus != manifest.StatusSkipped || odds.LastError != "no latest file" {
		t.Fatalf("odds entry: %+v", odds)
	}
	proj := m.Entry(category.Projections)
	if proj.UploadStatus != manifest.StatusSuccess || proj.UploadedAt.IsZero() || proj.LastError != "" {
		t.Fatalf("projections entry: %+v", proj)
	}

	// Each upload clears before it writes.
	if client.count("clear") != 2 || client.count("write") != 2 {
		t.Fatalf("calls: %+v", client.calls)
	}
}

func TestSyncRetriesTransientFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{writeErrs: []error{transientErr(), transientErr()}}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")

	report, err := up.Sync(context.Background(), []category.Category{category.Projections}, m)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	outcome := report.Outcomes[category.Projections]
	if outcome.Status != manifest.StatusSuccess {
		t.Fatalf("expected success after retries: %+v", outcome)
	}
	if outcome.Attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", outcome.Attempts)
	}
	if client.count("write") != 3 || client.count("clear") != 3 {
		t.Fatalf("each attempt must clear and write: %+v", client.calls)
	}
}

func TestSyncExhaustedRetriesRecordFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{writeErrs: []error{transientErr(), transientErr(), transientErr()}}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")

	report, err := up.Sync(context.Background(), []category.Category{category.Projections}, m)
	if err != nil {
		t.Fatalf("pass-level error only on auth wipeout: %v", err)
	}
	outcome := report.Outcomes[category.Projections]
	if outcome.Status != manifest.StatusFailure || outcome.Attempts != 3 {
		t.Fatalf("outcome: %+v", outcome)
	}
	entry := m.Entry(category.Projections)
	if entry.UploadStatus != manifest.StatusFailure || entry.LastError == "" {
		t.Fatalf("entry: %+v", entry)
	}
}

func TestSyncAuthFailureIsNotRetried(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{writeErrs: []error{authErr()}}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")

	report, err := up.Sync(context.Background(), []category.Category{category.Projections}, m)
	if err == nil {
		t.Fatal("expected pass-level auth error when every attempted upload fails auth")
	}
	if !errors.Is(err, services.ErrAuthentication) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := report.Outcomes[category.Projections].Attempts; got != 1 {
		t.Fatalf("auth errors must not be retried, got %d attempts", got)
	}
}

func TestSyncAuthEscalatesOnlyWhenAllAttemptedFail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{writeErrs: []error{authErr()}}
	up, m := newUploader(t, cfg, client)

	// First category hits the auth error; second succeeds.
	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")
	writeLatest(t, cfg, category.DraftKings, "Name,Salary\nJosh Allen,8200\n")

	cats := []category.Category{category.Projections, category.DraftKings}
	report, err := up.Sync(context.Background(), cats, m)
	if err != nil {
		t.Fatalf("one auth failure among successes must not escalate: %v", err)
	}
	if report.AllSucceeded() {
		t.Fatal("failed category must be reflected in the report")
	}
}

func TestSyncFailureIsolation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{clearErrs: []error{
		services.Wrap(services.ErrNotFound, "tabstore", "clear tab", "status 404", nil),
	}}
	cfg.Sheets.CreateMissingTabs = false
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")
	writeLatest(t, cfg, category.DraftKings, "Name,Salary\nJosh Allen,8200\n")

	cats := []category.Category{category.Projections, category.DraftKings}
	report, err := up.Sync(context.Background(), cats, m)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	succeeded, failed, _ := report.Counts()
	if succeeded != 1 || failed != 1 {
		t.Fatalf("counts: %d succeeded %d failed", succeeded, failed)
	}
}

func TestSyncCleansRowsBeforeUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\n Josh Allen ,NaN\n")

	if _, err := up.Sync(context.Background(), []category.Category{category.Projections}, m); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if client.lastRows[0][0] != "Josh Allen" || client.lastRows[0][1] != "" {
		t.Fatalf("rows not cleaned: %v", client.lastRows)
	}
	if client.lastHead[0] != "Name" {
		t.Fatalf("header: %v", client.lastHead)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	client := &fakeClient{}
	up, m := newUploader(t, cfg, client)

	writeLatest(t, cfg, category.Projections, "Name,ProjPts\nJosh Allen,24.1\n")

	cats := []category.Category{category.Projections}
	if _, err := up.Sync(context.Background(), cats, m); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first := m.Entry(category.Projections)

	if _, err := up.Sync(context.Background(), cats, m); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second := m.Entry(category.Projections)

	if second.UploadStatus != manifest.StatusSuccess {
		t.Fatalf("second sync entry: %+v", second)
	}
	if second.Latest == nil || first.Latest == nil || !second.Latest.Equal(*first.Latest) {
		t.Fatalf("identity changed across idempotent syncs: %+v vs %+v", first.Latest, second.Latest)
	}
	// Tab ends fully rewritten both times: clear then write per pass.
	if client.count("clear") != 2 || client.count("write") != 2 {
		t.Fatalf("calls: %+v", client.calls)
	}
}
