package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchi/chicagodata/internal/dataset"
	"github.com/openchi/chicagodata/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	census := &dataset.Table{
		Spec: dataset.CensusSpec,
		Rows: [][]any{
			{int64(1), "Rogers Park", 7.7, 40.0, 8.7, 18.2, 27.5, int64(5000), int64(96)},
			{int64(2), "West Ridge", 7.8, 20.0, 8.8, 20.8, 38.5, int64(12000), int64(46)},
			{int64(3), "Uptown", 3.8, 30.0, 8.9, 11.8, 22.2, int64(8000), int64(80)},
		},
	}
	schools := &dataset.Table{
		Spec: dataset.SchoolsSpec,
		Rows: [][]any{
			{int64(100), "North Elementary", "ES", int64(1), "Rogers Park", int64(40)},
			{int64(101), "Lake Elementary", "ES", int64(2), "West Ridge", int64(60)},
			{int64(102), "Central High", "HS", int64(3), "Uptown", int64(80)},
		},
	}
	crime := &dataset.Table{
		Spec: dataset.CrimeSpec,
		Rows: [][]any{
			{int64(1), "HY100001", "THEFT", "POCKET-PICKING", "STREET", int64(1), int64(2015)},
			{int64(2), "HY100002", "BATTERY", "SIMPLE", "STREET", int64(1), int64(2015)},
			{int64(3), "HY100003", "THEFT", "OVER $500", "APARTMENT", int64(2), int64(2016)},
			{int64(4), "HY100004", "ASSAULT", "SIMPLE", "STREET", int64(3), int64(2016)},
			{int64(5), "HY100005", "THEFT", "POCKET-PICKING", "CTA TRAIN", int64(99), int64(2017)},
		},
	}

	for _, table := range []*dataset.Table{census, schools, crime} {
		require.NoError(t, st.Replace(ctx, table))
	}
	return st
}

func getJSON(t *testing.T, server *httptest.Server, path string, out any) {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestFiltersEndpoint(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var opts FilterOptions
	getJSON(t, ts, "/api/filters", &opts)

	assert.Equal(t, []string{"Rogers Park", "Uptown", "West Ridge"}, opts.Areas)
	assert.Equal(t, []string{"ASSAULT", "BATTERY", "THEFT"}, opts.CrimeTypes)
	assert.Equal(t, 5000, opts.IncomeMin)
	assert.Equal(t, 12000, opts.IncomeMax)
	assert.Equal(t, 8000, opts.IncomeMedian)
}

func TestHotspotsIncomePartition(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var view Hotspots
	getJSON(t, ts, "/api/hotspots?income=11000", &view)

	// Areas 1 and 3 (incomes 5000, 8000) are low, area 2 is high, and
	// the crime in unmatched area 99 has unknown income. The three
	// segments are disjoint and sum to the crime total.
	assert.Equal(t, int64(3), view.LowCount)
	assert.Equal(t, int64(1), view.HighCount)
	assert.Equal(t, int64(1), view.UnknownCount)
	assert.Equal(t, int64(5), view.LowCount+view.HighCount+view.UnknownCount)

	for _, tc := range view.TypeCounts {
		assert.Contains(t, []string{segmentLow, segmentHigh}, tc.Segment)
	}
}

func TestHotspotsFilters(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var view Hotspots
	getJSON(t, ts, "/api/hotspots?income=11000&areas=Rogers+Park&types=THEFT", &view)

	assert.Equal(t, int64(1), view.LowCount)
	assert.Equal(t, int64(0), view.HighCount)
	require.Len(t, view.TypeCounts, 1)
	assert.Equal(t, "THEFT", view.TypeCounts[0].PrimaryType)
}

func TestSocioEducationView(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var view SocioEducation
	getJSON(t, ts, "/api/socioeducation", &view)

	require.Len(t, view.Communities, 3)
	first := view.Communities[0]
	assert.Equal(t, "Rogers Park", first.AreaName)
	require.NotNil(t, first.AvgSafetyScore)
	assert.InDelta(t, 40.0, *first.AvgSafetyScore, 1e-9)
	assert.Equal(t, int64(1), first.SchoolCount)

	require.Len(t, view.CorrMatrix, 3)
	for i, row := range view.CorrMatrix {
		require.Len(t, row, 3)
		assert.InDelta(t, 1.0, row[i], 1e-9)
	}
	// Hardship and poverty move together in the seed data.
	assert.Greater(t, view.CorrMatrix[0][1], 0.9)
}

func TestSocioEducationConstantSafetyScores(t *testing.T) {
	ctx := context.Background()

	// Two communities whose schools share the same average safety
	// score: the safety series is constant, its correlation is
	// undefined, and the panel must still answer instead of failing
	// on an unencodable value.
	st, err := store.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "constant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	census := &dataset.Table{
		Spec: dataset.CensusSpec,
		Rows: [][]any{
			{int64(1), "Rogers Park", 7.7, 40.0, 8.7, 18.2, 27.5, int64(5000), int64(96)},
			{int64(2), "West Ridge", 7.8, 20.0, 8.8, 20.8, 38.5, int64(12000), int64(46)},
		},
	}
	schools := &dataset.Table{
		Spec: dataset.SchoolsSpec,
		Rows: [][]any{
			{int64(100), "North Elementary", "ES", int64(1), "Rogers Park", int64(50)},
			{int64(101), "Lake Elementary", "ES", int64(2), "West Ridge", int64(50)},
		},
	}
	crime := &dataset.Table{
		Spec: dataset.CrimeSpec,
		Rows: [][]any{
			{int64(1), "HY100001", "THEFT", "POCKET-PICKING", "STREET", int64(1), int64(2015)},
		},
	}
	for _, table := range []*dataset.Table{census, schools, crime} {
		require.NoError(t, st.Replace(ctx, table))
	}

	srv := NewServer(st)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var view SocioEducation
	getJSON(t, ts, "/api/socioeducation", &view)

	require.Len(t, view.CorrMatrix, 3)
	// Hardship and poverty still correlate; anything against the
	// constant safety series reports 0.
	assert.InDelta(t, 1.0, view.CorrMatrix[0][1], 1e-9)
	assert.Zero(t, view.CorrMatrix[0][2])
	assert.Zero(t, view.CorrMatrix[1][2])
	assert.Zero(t, view.CorrMatrix[2][0])
	assert.Zero(t, view.CorrMatrix[2][1])
	assert.InDelta(t, 1.0, view.CorrMatrix[2][2], 1e-9)

	// The summary endpoint composes the same view and must survive
	// the same selection.
	var summary Summary
	getJSON(t, ts, "/api/summary?income=11000", &summary)
	assert.Equal(t, 2, summary.CommunitiesInView)
}

func TestIncomeMedianEvenCount(t *testing.T) {
	ctx := context.Background()

	st, err := store.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "even.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	census := &dataset.Table{
		Spec: dataset.CensusSpec,
		Rows: [][]any{
			{int64(1), "Rogers Park", 7.7, 40.0, 8.7, 18.2, 27.5, int64(5000), int64(96)},
			{int64(2), "West Ridge", 7.8, 20.0, 8.8, 20.8, 38.5, int64(12000), int64(46)},
			{int64(3), "Uptown", 3.8, 30.0, 8.9, 11.8, 22.2, int64(8000), int64(80)},
			{int64(4), "Lincoln Square", 3.4, 10.9, 8.2, 13.4, 25.5, int64(20000), int64(39)},
		},
	}
	crime := &dataset.Table{
		Spec: dataset.CrimeSpec,
		Rows: [][]any{
			{int64(1), "HY100001", "THEFT", "POCKET-PICKING", "STREET", int64(1), int64(2015)},
		},
	}
	require.NoError(t, st.Replace(ctx, census))
	require.NoError(t, st.Replace(ctx, crime))

	srv := NewServer(st)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Incomes 5000, 8000, 12000, 20000: the median is the mean of
	// the two middle values.
	var opts FilterOptions
	getJSON(t, ts, "/api/filters", &opts)
	assert.Equal(t, 10000, opts.IncomeMedian)
}

func TestSummaryEndpoint(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var summary Summary
	getJSON(t, ts, "/api/summary?income=11000", &summary)

	assert.Equal(t, 3, summary.CommunitiesInView)
	assert.Equal(t, 5, summary.TotalCrimesInView)
	require.NotNil(t, summary.AvgPovertyRate)
	assert.InDelta(t, 30.0, *summary.AvgPovertyRate, 1e-9)
	require.NotNil(t, summary.LowIncomeCrimePct)
	assert.InDelta(t, 75.0, *summary.LowIncomeCrimePct, 1e-9)
}

func TestResponsesAreMemoized(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var first, second Hotspots
	getJSON(t, ts, "/api/hotspots?income=11000", &first)
	require.Len(t, srv.cache.entries, 1)

	getJSON(t, ts, "/api/hotspots?income=11000", &second)
	assert.Len(t, srv.cache.entries, 1, "identical query+filter must hit the cache")
	assert.Equal(t, first, second)

	// Only area 1 (income 5000) is low at this threshold.
	var third Hotspots
	getJSON(t, ts, "/api/hotspots?income=6000", &third)
	assert.Len(t, srv.cache.entries, 2)
	assert.Equal(t, int64(2), third.LowCount)
}

func TestPanelsDegradeIndependently(t *testing.T) {
	ctx := context.Background()

	// A store missing the crime table: the hotspot panel fails while
	// the socioeconomic/education panel keeps serving.
	st, err := store.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "partial.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	census := &dataset.Table{
		Spec: dataset.CensusSpec,
		Rows: [][]any{
			{int64(1), "Rogers Park", 7.7, 40.0, 8.7, 18.2, 27.5, int64(5000), int64(96)},
		},
	}
	schools := &dataset.Table{
		Spec: dataset.SchoolsSpec,
		Rows: [][]any{
			{int64(100), "North Elementary", "ES", int64(1), "Rogers Park", int64(40)},
		},
	}
	require.NoError(t, st.Replace(ctx, census))
	require.NoError(t, st.Replace(ctx, schools))

	srv := NewServer(st)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/hotspots?income=11000")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/socioeducation")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndexPage(t *testing.T) {
	srv := NewServer(seedStore(t))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
