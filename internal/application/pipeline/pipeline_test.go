package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/parsing"
	"github.com/turtacn/ChemLog-QC/internal/parsing/gaussian"
	"github.com/turtacn/ChemLog-QC/internal/parsing/tessellate"
	"github.com/turtacn/ChemLog-QC/internal/testutil"
	apperrors "github.com/turtacn/ChemLog-QC/pkg/errors"
)

func memFile(sample, content string) LogFile {
	return LogFile{
		SampleHint: sample,
		Root:       "/data",
		Path:       "/data/" + sample + ".log",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) FileProcessed(module string, status Status, d time.Duration) {
	m.Called(module, status, d)
}
func (m *mockRecorder) RecordsSkipped(module string, n int) { m.Called(module, n) }
func (m *mockRecorder) CacheLookup(module string, hit bool) { m.Called(module, hit) }
func (m *mockRecorder) DatasetSamples(module string, name dataset.Name, n int) {
	m.Called(module, name, n)
}
func (m *mockRecorder) RunFinished(module string, ok bool) { m.Called(module, ok) }

func TestRunner_GaussianBatch(t *testing.T) {
	log := testutil.NewMockLogger()
	r := NewRunner(gaussian.NewParser(), log)
	res, err := r.Run(context.Background(), []LogFile{
		memFile("methane", testutil.GaussianOptimization),
		memFile("water", testutil.GaussianSinglePoint),
		memFile("broken", testutil.GaussianNoSections),
	})
	require.NoError(t, err)

	assert.Equal(t, "qm", res.Module)
	assert.Equal(t, []string{"methane", "water"}, res.Assembler.Dataset(dataset.Mulliken).SampleIDs())
	assert.Equal(t, []string{"methane"}, res.Assembler.Dataset(dataset.Bonds).SampleIDs())
	assert.Equal(t, 2, res.Count(StatusCommitted))
	assert.Equal(t, 1, res.Count(StatusEmpty))
	assert.Equal(t, 2, res.Assembler.SampleCount())
	assert.True(t, log.HasMessage("info", "sample committed"))
	assert.True(t, log.HasMessage("info", "run finished"))
}

func TestRunner_BadFileDoesNotStopBatch(t *testing.T) {
	log := testutil.NewMockLogger()
	r := NewRunner(tessellate.NewParser(), log)
	res, err := r.Run(context.Background(), []LogFile{
		memFile("bad", testutil.TessellateFiveTokenHeader),
		memFile("good", testutil.TessellateJSONPDB),
	})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, StatusRejected, res.Outcomes[0].Status)
	assert.True(t, apperrors.IsCode(res.Outcomes[0].Err, apperrors.ErrCodeUnknownFormat))
	assert.Equal(t, StatusCommitted, res.Outcomes[1].Status)

	for _, name := range res.Assembler.Names() {
		assert.False(t, res.Assembler.Dataset(name).Has("bad"), name)
	}
	assert.Equal(t, []string{"good", "good_A"}, res.Assembler.Dataset(dataset.Five).SampleIDs())
	assert.True(t, log.HasMessage("error", "log file rejected"))
}

func TestRunner_NoSamples(t *testing.T) {
	r := NewRunner(tessellate.NewParser(), nil)
	res, err := r.Run(context.Background(), []LogFile{
		memFile("bad", testutil.TessellateFiveTokenHeader),
		{SampleHint: "", Path: "/data/unnamed.log"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNoSamples(err))
	require.NotNil(t, res)
	assert.Equal(t, StatusSkipped, res.Outcomes[1].Status)
}

func TestRunner_EmptyBatchIsNoSamples(t *testing.T) {
	_, err := NewRunner(gaussian.NewParser(), nil).Run(context.Background(), nil)
	assert.True(t, apperrors.IsNoSamples(err))
}

func TestRunner_DuplicateSampleRejectsWholeFile(t *testing.T) {
	r := NewRunner(gaussian.NewParser(), nil)
	res, err := r.Run(context.Background(), []LogFile{
		memFile("mol", testutil.GaussianSinglePoint),
		memFile("mol", testutil.GaussianOptimization),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Outcomes[1].Status)
	assert.True(t, apperrors.IsCode(res.Outcomes[1].Err, apperrors.ErrCodeDuplicateSample))
	// The second file's bonds are not committed either.
	assert.Equal(t, 0, res.Assembler.Dataset(dataset.Bonds).Len())
	rec, _ := res.Assembler.Dataset(dataset.Mulliken).Get("mol")
	assert.Equal(t, 3, rec.Len())
}

func TestRunner_OpenFailure(t *testing.T) {
	r := NewRunner(gaussian.NewParser(), nil)
	broken := LogFile{
		SampleHint: "gone",
		Path:       "/data/gone.log",
		Open:       func() (io.ReadCloser, error) { return nil, errors.New("permission denied") },
	}
	res, err := r.Run(context.Background(), []LogFile{broken, memFile("ok", testutil.GaussianSinglePoint)})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, res.Outcomes[0].Status)
	assert.True(t, apperrors.IsCode(res.Outcomes[0].Err, apperrors.ErrCodeLogReadFailed))
	assert.Equal(t, StatusCommitted, res.Outcomes[1].Status)
}

func TestRunner_IgnoreSamples(t *testing.T) {
	r := NewRunner(tessellate.NewParser(), nil, WithIgnoreSamples("*_A"))
	res, err := r.Run(context.Background(), []LogFile{memFile("S", testutil.TessellateJSONPDB)})
	require.NoError(t, err)
	assert.Equal(t, []string{"S"}, res.Assembler.Dataset(dataset.Five).SampleIDs())
}

func TestRunner_IgnoreEverything(t *testing.T) {
	r := NewRunner(tessellate.NewParser(), nil, WithIgnoreSamples("S*"))
	res, err := r.Run(context.Background(), []LogFile{memFile("S", testutil.TessellateText)})
	assert.True(t, apperrors.IsNoSamples(err))
	assert.Equal(t, StatusEmpty, res.Outcomes[0].Status)
}

func TestRunner_CacheHitOnSecondRun(t *testing.T) {
	cache := newMemCache()
	files := []LogFile{memFile("S", testutil.TessellateJSONTrajectory)}

	first, err := NewRunner(tessellate.NewParser(), nil, WithCache(cache)).Run(context.Background(), files)
	require.NoError(t, err)
	assert.False(t, first.Outcomes[0].Cached)
	assert.Equal(t, 1, cache.sets)

	second, err := NewRunner(tessellate.NewParser(), nil, WithCache(cache)).Run(context.Background(), files)
	require.NoError(t, err)
	assert.True(t, second.Outcomes[0].Cached)
	assert.Equal(t, 1, cache.sets)

	for _, name := range first.Assembler.Names() {
		assert.Equal(t, first.Assembler.Dataset(name).SampleIDs(), second.Assembler.Dataset(name).SampleIDs(), name)
	}
	assert.Equal(t, first.Outcomes[0].Skipped, second.Outcomes[0].Skipped)
}

func TestRunner_CacheKeyDependsOnContent(t *testing.T) {
	cache := newMemCache()
	r := NewRunner(gaussian.NewParser(), nil, WithCache(cache))
	_, err := r.Run(context.Background(), []LogFile{
		memFile("a", testutil.GaussianSinglePoint),
		memFile("b", testutil.GaussianOptimization),
	})
	require.NoError(t, err)
	assert.Len(t, cache.data, 2)
	for k := range cache.data {
		assert.True(t, strings.HasPrefix(k, "parse:qm:v1:"), k)
	}
}

func TestRunner_Metrics(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("FileProcessed", "tessellate", StatusCommitted, mock.Anything).Once()
	rec.On("FileProcessed", "tessellate", StatusRejected, mock.Anything).Once()
	rec.On("RecordsSkipped", "tessellate", 2).Once()
	rec.On("DatasetSamples", "tessellate", mock.Anything, mock.Anything)
	rec.On("RunFinished", "tessellate", true).Once()

	r := NewRunner(tessellate.NewParser(), nil, WithMetrics(rec))
	_, err := r.Run(context.Background(), []LogFile{
		memFile("traj", testutil.TessellateJSONTrajectory),
		memFile("bad", testutil.TessellateFiveTokenHeader),
	})
	require.NoError(t, err)
	rec.AssertExpectations(t)
	rec.AssertCalled(t, "DatasetSamples", "tessellate", dataset.Six, 1)
	rec.AssertCalled(t, "DatasetSamples", "tessellate", dataset.Eight, 0)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewRunner(gaussian.NewParser(), nil).Run(ctx, []LogFile{memFile("a", testutil.GaussianSinglePoint)})
	require.Error(t, err)
	assert.False(t, apperrors.IsNoSamples(err))
	assert.Empty(t, res.Outcomes)
}

// failingParser behaves like the qm parser except for the files it is told to
// break, for which it returns a plain error.
type failingParser struct {
	*gaussian.Parser
	failOn string
}

func (p *failingParser) Parse(r io.Reader, logger logging.Logger) (parsing.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(data), p.failOn) {
		return nil, errors.New("nil map write in parser")
	}
	return p.Parser.Parse(strings.NewReader(string(data)), logger)
}

func TestRunner_UncodedParserErrorIsFailure(t *testing.T) {
	log := testutil.NewMockLogger()
	r := NewRunner(&failingParser{Parser: gaussian.NewParser(), failOn: "Optimized Parameters"}, log)
	res, err := r.Run(context.Background(), []LogFile{
		memFile("methane", testutil.GaussianOptimization),
		memFile("water", testutil.GaussianSinglePoint),
	})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, StatusFailed, res.Outcomes[0].Status)
	assert.True(t, apperrors.IsCode(res.Outcomes[0].Err, apperrors.ErrCodeInternal))
	assert.False(t, apperrors.IsInputError(res.Outcomes[0].Err))
	assert.Equal(t, StatusCommitted, res.Outcomes[1].Status)
	assert.True(t, log.HasMessage("error", "log file failed"))
	assert.False(t, log.HasMessage("error", "log file rejected"))
}

// staticResult hands fixed entries to the runner.
type staticResult struct{ entries []dataset.Entry }

func (s *staticResult) Entries(sampleID string) []dataset.Entry {
	out := make([]dataset.Entry, len(s.entries))
	for i, e := range s.entries {
		e.SampleID = sampleID
		out[i] = e
	}
	return out
}

func (s *staticResult) SkippedRecords() int { return 0 }

type staticParser struct {
	*gaussian.Parser
	results map[string]*staticResult
}

func (p *staticParser) Parse(r io.Reader, _ logging.Logger) (parsing.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.results[string(data)], nil
}

func TestRunner_NonFiniteRecordRejectsOnlyItsFile(t *testing.T) {
	good := dataset.NewOrdered[float64]()
	good.Set("1", -0.4)
	bad := dataset.NewOrdered[float64]()
	bad.Set("1", 0.1)
	bad.Set("2", math.NaN())

	p := &staticParser{Parser: gaussian.NewParser(), results: map[string]*staticResult{
		"good": {entries: []dataset.Entry{{Dataset: dataset.Mulliken, Record: good}}},
		"bad":  {entries: []dataset.Entry{{Dataset: dataset.Mulliken, Record: bad}}},
	}}
	res, err := NewRunner(p, testutil.NewMockLogger()).Run(context.Background(), []LogFile{
		memFile("s1", "bad"),
		memFile("s2", "good"),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, res.Outcomes[0].Status)
	assert.True(t, apperrors.IsCode(res.Outcomes[0].Err, apperrors.ErrCodeMalformedRecord))
	assert.Equal(t, []string{"s2"}, res.Assembler.Dataset(dataset.Mulliken).SampleIDs())

	_, err = json.Marshal(res.Assembler.Dataset(dataset.Mulliken))
	assert.NoError(t, err)
}

func TestRunner_GaussianNaNChargeStillExports(t *testing.T) {
	text := strings.Replace(testutil.GaussianSinglePoint, "0.164500", "NaN", 1)
	require.NotEqual(t, testutil.GaussianSinglePoint, text)

	res, err := NewRunner(gaussian.NewParser(), testutil.NewMockLogger()).Run(context.Background(), []LogFile{
		memFile("water", text),
		memFile("methane", testutil.GaussianOptimization),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count(StatusCommitted))
	assert.Equal(t, 1, res.Outcomes[0].Skipped)

	_, err = json.Marshal(res.Assembler.Dataset(dataset.Mulliken))
	assert.NoError(t, err)
}

//Personal.AI order the ending
