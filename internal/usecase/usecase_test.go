package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IntentScanner/internal/dataset"
	"IntentScanner/internal/domain"
	"IntentScanner/internal/intent"
	"IntentScanner/internal/ports"
	"IntentScanner/internal/tabular"
)

// snapshot is the visible state of one row at checkpoint time.
type snapshot struct {
	status domain.Status
	scored bool
}

type recordingStore struct {
	saves [][]snapshot
	err   error
}

func (s *recordingStore) Save(_ context.Context, ds *domain.Dataset) error {
	snap := make([]snapshot, len(ds.Rows))
	for i, row := range ds.Rows {
		snap[i] = snapshot{status: row.Status, scored: row.Verdict != nil}
	}
	s.saves = append(s.saves, snap)
	return s.err
}

type fixedClassifier struct {
	scores map[string]int
	calls  []string
	panics string
}

func (c *fixedClassifier) Classify(_ context.Context, url string) domain.Verdict {
	c.calls = append(c.calls, url)
	if url == c.panics {
		panic("unexpected")
	}
	return domain.Verdict{IntentScore: c.scores[url], IntentCategory: "test", Source: domain.SourceAPI}
}

type countingPacer struct {
	waits  int
	cancel context.CancelFunc
	after  int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	if p.cancel != nil && p.waits > p.after {
		p.cancel()
	}
	return ctx.Err()
}

func newDataset(urls ...string) *domain.Dataset {
	ds := &domain.Dataset{Header: []string{dataset.ColumnURL}}
	for _, u := range urls {
		ds.Rows = append(ds.Rows, &domain.Row{URLRecord: domain.URLRecord{URL: u}, Cells: []string{u}})
	}
	return ds
}

func TestRunnerCheckpointsEveryBatch(t *testing.T) {
	tests := []struct {
		rows, batch, wantSaves int
	}{
		{rows: 10, batch: 3, wantSaves: 4},
		{rows: 9, batch: 3, wantSaves: 3},
		{rows: 1, batch: 10, wantSaves: 1},
		{rows: 5, batch: 1, wantSaves: 5},
	}

	for _, tt := range tests {
		urls := make([]string, tt.rows)
		for i := range urls {
			urls[i] = "https://site" + strings.Repeat("x", i) + ".ru"
		}
		store := &recordingStore{}
		runner := NewRunner(RunnerDeps{Classifier: &fixedClassifier{}, Store: store, BatchSize: tt.batch})

		stats, err := runner.Run(context.Background(), newDataset(urls...))
		require.NoError(t, err)
		assert.Equal(t, tt.wantSaves, stats.Checkpoints)
		require.Len(t, store.saves, tt.wantSaves)
		assert.Equal(t, tt.rows, stats.Processed)
		assert.Equal(t, tt.rows, stats.Success)

		// Every snapshot is a processed prefix followed by untouched rows.
		for n, snap := range store.saves {
			done := min((n+1)*tt.batch, tt.rows)
			for i, row := range snap {
				if i < done {
					assert.Equal(t, snapshot{status: domain.StatusSuccess, scored: true}, row)
				} else {
					assert.Equal(t, snapshot{}, row)
				}
			}
		}
	}
}

func TestRunnerKeepsOrderAndPacesBetweenRows(t *testing.T) {
	cls := &fixedClassifier{scores: map[string]int{"https://b.ru": 80}}
	pacer := &countingPacer{}
	ds := newDataset("https://a.ru", "https://b.ru", "https://a.ru")

	_, err := NewRunner(RunnerDeps{Classifier: cls, Pacer: pacer, BatchSize: 2}).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.ru", "https://b.ru", "https://a.ru"}, cls.calls)
	assert.Equal(t, 3, pacer.waits)
	assert.Equal(t, 80, ds.Rows[1].Verdict.IntentScore)
	assert.NotSame(t, ds.Rows[0].Verdict, ds.Rows[2].Verdict)
}

func TestRunnerSkipsRestoredRows(t *testing.T) {
	ds := newDataset("https://a.ru", "https://b.ru", "https://c.ru")
	ds.Rows[0].Apply(domain.Verdict{IntentScore: 90, IntentCategory: "restored"})

	cls := &fixedClassifier{}
	store := &recordingStore{}
	stats, err := NewRunner(RunnerDeps{Classifier: cls, Store: store, BatchSize: 10}).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://b.ru", "https://c.ru"}, cls.calls)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, "restored", ds.Rows[0].Verdict.IntentCategory)
	assert.Len(t, store.saves, 1)
}

func TestRunnerWritesOnceWhenNothingPending(t *testing.T) {
	ds := newDataset("https://a.ru")
	ds.Rows[0].Apply(domain.Verdict{IntentScore: 1, IntentCategory: "x"})
	store := &recordingStore{}

	stats, err := NewRunner(RunnerDeps{Classifier: &fixedClassifier{}, Store: store}).Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Checkpoints)
	assert.Zero(t, stats.Processed)
}

func TestRunnerRecordsPanicsAsRowErrors(t *testing.T) {
	ds := newDataset("https://a.ru", "https://boom.ru")
	cls := &fixedClassifier{panics: "https://boom.ru"}

	stats, err := NewRunner(RunnerDeps{Classifier: cls}).Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Success)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, domain.StatusError, ds.Rows[1].Status)
	assert.Contains(t, ds.Rows[1].ErrorMessage, "unexpected")
}

func TestRunnerCheckpointFailureDoesNotStopRun(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	ds := newDataset("https://a.ru", "https://b.ru", "https://c.ru")

	stats, err := NewRunner(RunnerDeps{Classifier: &fixedClassifier{}, Store: store, BatchSize: 1}).Run(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 3, stats.CheckpointFailures)
	assert.Zero(t, stats.Checkpoints)
}

func TestRunnerCheckpointsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pacer := &countingPacer{cancel: cancel, after: 2}
	store := &recordingStore{}
	ds := newDataset("https://a.ru", "https://b.ru", "https://c.ru", "https://d.ru")

	stats, err := NewRunner(RunnerDeps{Classifier: &fixedClassifier{}, Store: store, Pacer: pacer, BatchSize: 10}).Run(ctx, ds)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 2, stats.Processed)
	require.Len(t, store.saves, 1)
	final := store.saves[0]
	assert.Equal(t, domain.StatusSuccess, final[1].status)
	assert.Equal(t, domain.StatusPending, final[2].status)
}

// cancellingCompleter answers normally until call number cancelOn, which
// cancels the run and fails the way an aborted HTTP request does.
type cancellingCompleter struct {
	cancel   context.CancelFunc
	cancelOn int
	calls    int
}

func (c *cancellingCompleter) Complete(ctx context.Context, _ ports.CompletionRequest) (string, error) {
	c.calls++
	if c.calls == c.cancelOn {
		c.cancel()
		<-ctx.Done()
		return "", ctx.Err()
	}
	return `{"intentScore": 70, "intentCategory": "commercial"}`, nil
}

func TestRunnerDiscardsVerdictOfCancelledRow(t *testing.T) {
	tests := []struct {
		name          string
		cancelOn      int
		wantProcessed int
	}{
		{name: "first row", cancelOn: 1, wantProcessed: 0},
		{name: "last row", cancelOn: 2, wantProcessed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			completer := &cancellingCompleter{cancel: cancel, cancelOn: tt.cancelOn}
			cls := intent.NewClassifier(completer, "test-model", nil)
			store := &recordingStore{}
			ds := newDataset("https://a.ru", "https://b.ru")

			stats, err := NewRunner(RunnerDeps{Classifier: cls, Store: store, BatchSize: 10}).Run(ctx, ds)
			require.ErrorIs(t, err, context.Canceled)

			assert.Equal(t, tt.wantProcessed, stats.Processed)
			assert.Equal(t, tt.wantProcessed, stats.Success)
			assert.Zero(t, stats.Errors)

			cut := ds.Rows[tt.cancelOn-1]
			assert.Equal(t, domain.StatusPending, cut.Status)
			assert.Nil(t, cut.Verdict)
			assert.False(t, cut.Processed())

			require.Len(t, store.saves, 1)
			assert.Equal(t, snapshot{}, store.saves[0][tt.cancelOn-1])
		})
	}
}

func TestReporterHighIntentSubset(t *testing.T) {
	ds := newDataset("https://a.ru", "https://b.ru", "https://c.ru", "https://d.ru", "https://e.ru")
	for i, score := range []int{2, 9, 15, 7} {
		ds.Rows[i].Apply(domain.Verdict{IntentScore: score, IntentCategory: "c"})
	}

	primary, high := &recordingStore{}, &recordingStore{}
	var out strings.Builder
	reporter := NewReporter(ReporterDeps{Primary: primary, HighIntent: high, Threshold: DefaultHighIntentThreshold, Out: &out})

	result, err := reporter.Report(context.Background(), ds)
	require.NoError(t, err)

	scores := make([]int, 0, result.HighIntent.Len())
	for _, row := range result.HighIntent.Rows {
		scores = append(scores, row.Verdict.IntentScore)
	}
	assert.Equal(t, []int{15, 9, 7}, scores)
	assert.Equal(t, 4, result.Success)
	assert.Equal(t, 1, result.Pending)

	require.Len(t, primary.saves, 1)
	assert.Len(t, primary.saves[0], 5)
	require.Len(t, high.saves, 1)
	assert.Len(t, high.saves[0], 3)

	assert.Contains(t, out.String(), "High intent (score >= 7): 3 URLs")
	assert.Contains(t, out.String(), "https://c.ru")
}

func TestReporterSkipsEmptyHighIntentArtifact(t *testing.T) {
	ds := newDataset("https://a.ru")
	ds.Rows[0].Apply(domain.Verdict{IntentScore: 3, IntentCategory: "c"})

	primary, high := &recordingStore{}, &recordingStore{}
	result, err := NewReporter(ReporterDeps{Primary: primary, HighIntent: high, Threshold: 7}).Report(context.Background(), ds)
	require.NoError(t, err)

	assert.Zero(t, result.HighIntent.Len())
	assert.Len(t, primary.saves, 1)
	assert.Empty(t, high.saves)
}

func TestReporterPropagatesPrimaryFailure(t *testing.T) {
	primary := &recordingStore{err: errors.New("read-only")}
	_, err := NewReporter(ReporterDeps{Primary: primary}).Report(context.Background(), newDataset("https://a.ru"))
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	ds := newDataset("https://a.ru", "https://b.ru", "https://c.ru")

	header := append([]string{dataset.ColumnURL}, dataset.OutputColumns...)
	row := func(url, score, status, msg string) []string {
		rec := make([]string, len(header))
		rec[0] = url
		for i, col := range header {
			switch col {
			case dataset.ColumnIntentScore:
				rec[i] = score
			case dataset.ColumnIntentCategory:
				rec[i] = "cat"
			case dataset.ColumnConfidence:
				rec[i] = "low"
			case dataset.ColumnStatus:
				rec[i] = status
			case dataset.ColumnErrorMessage:
				rec[i] = msg
			}
		}
		return rec
	}
	prev := tabular.Table{Header: header, Records: [][]string{
		row("https://a.ru", "8", "success", "llm: timeout"),
		row("https://b.ru", "", "", ""),
		row("https://c.ru", "40", "error", "boom"),
	}}

	restored, err := Restore(ds, prev)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	require.NotNil(t, ds.Rows[0].Verdict)
	assert.Equal(t, 8, ds.Rows[0].Verdict.IntentScore)
	assert.Equal(t, domain.CategoricalConfidence("low"), ds.Rows[0].Verdict.Confidence)
	assert.Equal(t, "llm: timeout", ds.Rows[0].ErrorMessage)
	assert.False(t, ds.Rows[1].Processed())
	assert.False(t, ds.Rows[2].Processed())
}

func TestRestoreRejectsMismatchedOutput(t *testing.T) {
	header := append([]string{dataset.ColumnURL}, dataset.OutputColumns...)
	blank := func(url string) []string {
		rec := make([]string, len(header))
		rec[0] = url
		return rec
	}

	tests := map[string]tabular.Table{
		"row count":   {Header: header, Records: [][]string{blank("https://a.ru")}},
		"order":       {Header: header, Records: [][]string{blank("https://b.ru"), blank("https://a.ru")}},
		"no url":      {Header: dataset.OutputColumns, Records: [][]string{{}, {}}},
		"no analysis": {Header: []string{dataset.ColumnURL}, Records: [][]string{{"https://a.ru"}, {"https://b.ru"}}},
	}

	for name, prev := range tests {
		ds := newDataset("https://a.ru", "https://b.ru")
		_, err := Restore(ds, prev)
		assert.ErrorIs(t, err, ErrResumeMismatch, name)
	}
}
