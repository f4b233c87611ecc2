package dashboard

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/openchi/chicagodata/internal/store"
)

// Filter holds the sidebar selections applied to the analytical views.
type Filter struct {
	Areas           []string
	CrimeTypes      []string
	IncomeThreshold int
	TopN            int
}

// FilterOptions describes the selectable filter values offered to the
// page: known community areas, crime types, and the income range the
// threshold slider should cover.
type FilterOptions struct {
	Areas        []string `json:"areas"`
	CrimeTypes   []string `json:"crimeTypes"`
	IncomeMin    int      `json:"incomeMin"`
	IncomeMax    int      `json:"incomeMax"`
	IncomeMedian int      `json:"incomeMedian"`
}

// Summary holds the KPI card values.
type Summary struct {
	CommunitiesInView  int      `json:"communitiesInView"`
	AvgHardshipIndex   *float64 `json:"avgHardshipIndex"`
	AvgPovertyRate     *float64 `json:"avgPovertyRate"`
	AvgSchoolSafety    *float64 `json:"avgSchoolSafety"`
	LowIncomeCrimePct  *float64 `json:"lowIncomeCrimePct"`
	TotalCrimesInView  int      `json:"totalCrimesInView"`
	UnknownIncomeCount int      `json:"unknownIncomeCount"`
}

// CommunityRow is one community area in the socioeconomic/education
// view: census indicators joined with school aggregates.
type CommunityRow struct {
	AreaNumber     int64    `json:"areaNumber"`
	AreaName       string   `json:"areaName"`
	HardshipIndex  *int64   `json:"hardshipIndex"`
	PovertyRate    *float64 `json:"povertyRate"`
	AvgSafetyScore *float64 `json:"avgSafetyScore"`
	SchoolCount    int64    `json:"schoolCount"`
}

// SocioEducation is the socioeconomic/education correlation view.
type SocioEducation struct {
	Communities []CommunityRow `json:"communities"`
	CorrFields  []string       `json:"corrFields"`
	CorrMatrix  [][]float64    `json:"corrMatrix"`
}

// TypeCount is a crime count for one primary type within one income
// segment.
type TypeCount struct {
	PrimaryType string `json:"primaryType"`
	Segment     string `json:"segment"`
	Count       int64  `json:"count"`
}

// HotspotRow is a community-level crime count used in the hotspot
// table.
type HotspotRow struct {
	AreaName string `json:"areaName"`
	Segment  string `json:"segment"`
	Count    int64  `json:"count"`
}

// Hotspots is the crime-hotspot comparison view. Low and High are
// disjoint and, together with Unknown, sum to the filtered crime
// total.
type Hotspots struct {
	TypeCounts   []TypeCount  `json:"typeCounts"`
	LowCount     int64        `json:"lowCount"`
	HighCount    int64        `json:"highCount"`
	UnknownCount int64        `json:"unknownCount"`
	TopHotspots  []HotspotRow `json:"topHotspots"`
}

const (
	segmentLow     = "low"
	segmentHigh    = "high"
	segmentUnknown = "unknown"
)

// queries composes the filtered, joined views the dashboard serves.
// All reads go through the store handle; the database is never
// written from here.
type queries struct {
	st *store.Store
}

func (q *queries) filterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{}

	areas, err := q.stringColumn(ctx,
		`SELECT DISTINCT COMMUNITY_AREA_NAME FROM CENSUS_DATA
		 WHERE COMMUNITY_AREA_NAME IS NOT NULL ORDER BY COMMUNITY_AREA_NAME`)
	if err != nil {
		return nil, err
	}
	opts.Areas = areas

	types, err := q.stringColumn(ctx,
		`SELECT DISTINCT PRIMARY_TYPE FROM CHICAGO_CRIME_DATA
		 WHERE PRIMARY_TYPE IS NOT NULL ORDER BY PRIMARY_TYPE`)
	if err != nil {
		return nil, err
	}
	opts.CrimeTypes = types

	incomes, err := q.intColumn(ctx,
		`SELECT PER_CAPITA_INCOME FROM CENSUS_DATA
		 WHERE PER_CAPITA_INCOME IS NOT NULL ORDER BY PER_CAPITA_INCOME`)
	if err != nil {
		return nil, err
	}
	if len(incomes) > 0 {
		opts.IncomeMin = int(incomes[0])
		opts.IncomeMax = int(incomes[len(incomes)-1])
		opts.IncomeMedian = median(incomes)
		if opts.IncomeMin == opts.IncomeMax {
			opts.IncomeMax = opts.IncomeMin + 1
		}
	}
	return opts, nil
}

func (q *queries) socioEducation(ctx context.Context, f Filter) (*SocioEducation, error) {
	query := `SELECT c.COMMUNITY_AREA_NUMBER, c.COMMUNITY_AREA_NAME, c.HARDSHIP_INDEX,
       c.PERCENT_HOUSEHOLDS_BELOW_POVERTY,
       AVG(s.SAFETY_SCORE) AS AVG_SAFETY_SCORE,
       COUNT(s.SCHOOL_ID) AS SCHOOL_COUNT
FROM CENSUS_DATA c
LEFT JOIN CHICAGO_PUBLIC_SCHOOLS s
    ON s.COMMUNITY_AREA_NUMBER = c.COMMUNITY_AREA_NUMBER
WHERE c.COMMUNITY_AREA_NUMBER IS NOT NULL
  AND c.COMMUNITY_AREA_NAME IS NOT NULL`
	var args []any
	query += inClause("c.COMMUNITY_AREA_NAME", f.Areas, &args)
	query += `
GROUP BY c.COMMUNITY_AREA_NUMBER, c.COMMUNITY_AREA_NAME, c.HARDSHIP_INDEX,
         c.PERCENT_HOUSEHOLDS_BELOW_POVERTY
ORDER BY c.COMMUNITY_AREA_NUMBER`

	rows, err := q.st.DB().QueryContext(ctx, q.st.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	view := &SocioEducation{
		CorrFields: []string{"hardship_index", "poverty_rate", "avg_safety_score"},
	}
	for rows.Next() {
		var (
			row      CommunityRow
			hardship sql.NullInt64
			poverty  sql.NullFloat64
			safety   sql.NullFloat64
		)
		if err := rows.Scan(&row.AreaNumber, &row.AreaName, &hardship, &poverty, &safety, &row.SchoolCount); err != nil {
			return nil, err
		}
		if hardship.Valid {
			row.HardshipIndex = &hardship.Int64
		}
		if poverty.Valid {
			row.PovertyRate = &poverty.Float64
		}
		if safety.Valid {
			row.AvgSafetyScore = &safety.Float64
		}
		view.Communities = append(view.Communities, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	view.CorrMatrix = correlationMatrix(view.Communities)
	return view, nil
}

func (q *queries) hotspots(ctx context.Context, f Filter) (*Hotspots, error) {
	base := `FROM CHICAGO_CRIME_DATA cr
LEFT JOIN CENSUS_DATA c ON c.COMMUNITY_AREA_NUMBER = cr.COMMUNITY_AREA_NUMBER
WHERE cr.COMMUNITY_AREA_NUMBER IS NOT NULL`
	segment := `CASE
    WHEN c.PER_CAPITA_INCOME IS NULL THEN 'unknown'
    WHEN c.PER_CAPITA_INCOME <= ? THEN 'low'
    ELSE 'high'
END`

	var args []any
	args = append(args, f.IncomeThreshold)
	filters := inClause("c.COMMUNITY_AREA_NAME", f.Areas, &args)
	filters += inClause("cr.PRIMARY_TYPE", f.CrimeTypes, &args)

	query := "SELECT " + segment + " AS SEGMENT, cr.PRIMARY_TYPE, COUNT(*) AS CRIME_COUNT\n" +
		base + filters +
		"\nGROUP BY SEGMENT, cr.PRIMARY_TYPE"

	rows, err := q.st.DB().QueryContext(ctx, q.st.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	view := &Hotspots{}
	totals := make(map[string]int64)
	var counts []TypeCount
	for rows.Next() {
		var (
			tc          TypeCount
			primaryType sql.NullString
		)
		if err := rows.Scan(&tc.Segment, &primaryType, &tc.Count); err != nil {
			return nil, err
		}
		tc.PrimaryType = primaryType.String
		if !primaryType.Valid {
			tc.PrimaryType = "UNKNOWN"
		}

		switch tc.Segment {
		case segmentLow:
			view.LowCount += tc.Count
		case segmentHigh:
			view.HighCount += tc.Count
		default:
			view.UnknownCount += tc.Count
			continue // unknown-income rows stay out of the comparison chart
		}
		totals[tc.PrimaryType] += tc.Count
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	view.TypeCounts = topTypes(counts, totals, f.TopN)

	hotspots, err := q.topHotspots(ctx, f)
	if err != nil {
		return nil, err
	}
	view.TopHotspots = hotspots
	return view, nil
}

func (q *queries) topHotspots(ctx context.Context, f Filter) ([]HotspotRow, error) {
	var args []any
	args = append(args, f.IncomeThreshold)
	query := `SELECT c.COMMUNITY_AREA_NAME,
       CASE WHEN c.PER_CAPITA_INCOME <= ? THEN 'low' ELSE 'high' END AS SEGMENT,
       COUNT(*) AS CRIME_COUNT
FROM CHICAGO_CRIME_DATA cr
JOIN CENSUS_DATA c ON c.COMMUNITY_AREA_NUMBER = cr.COMMUNITY_AREA_NUMBER
WHERE c.PER_CAPITA_INCOME IS NOT NULL
  AND c.COMMUNITY_AREA_NAME IS NOT NULL`
	query += inClause("c.COMMUNITY_AREA_NAME", f.Areas, &args)
	query += inClause("cr.PRIMARY_TYPE", f.CrimeTypes, &args)
	query += `
GROUP BY c.COMMUNITY_AREA_NAME, SEGMENT
ORDER BY CRIME_COUNT DESC
LIMIT 15`

	rows, err := q.st.DB().QueryContext(ctx, q.st.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var hotspots []HotspotRow
	for rows.Next() {
		var row HotspotRow
		if err := rows.Scan(&row.AreaName, &row.Segment, &row.Count); err != nil {
			return nil, err
		}
		hotspots = append(hotspots, row)
	}
	return hotspots, rows.Err()
}

func (q *queries) summary(ctx context.Context, f Filter) (*Summary, error) {
	socio, err := q.socioEducation(ctx, f)
	if err != nil {
		return nil, err
	}
	hot, err := q.hotspots(ctx, f)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		CommunitiesInView:  len(socio.Communities),
		TotalCrimesInView:  int(hot.LowCount + hot.HighCount + hot.UnknownCount),
		UnknownIncomeCount: int(hot.UnknownCount),
	}

	var hardships, poverties, safeties []float64
	for _, row := range socio.Communities {
		if row.HardshipIndex != nil {
			hardships = append(hardships, float64(*row.HardshipIndex))
		}
		if row.PovertyRate != nil {
			poverties = append(poverties, *row.PovertyRate)
		}
		if row.AvgSafetyScore != nil {
			safeties = append(safeties, *row.AvgSafetyScore)
		}
	}
	s.AvgHardshipIndex = mean(hardships)
	s.AvgPovertyRate = mean(poverties)
	s.AvgSchoolSafety = mean(safeties)

	if known := hot.LowCount + hot.HighCount; known > 0 {
		share := 100 * float64(hot.LowCount) / float64(known)
		s.LowIncomeCrimePct = &share
	}
	return s, nil
}

func (q *queries) stringColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := q.st.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (q *queries) intColumn(ctx context.Context, query string) ([]int64, error) {
	rows, err := q.st.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var values []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// inClause appends an AND ... IN (?, ...) fragment for a selection
// filter, collecting the bind arguments. Empty selections add nothing.
func inClause(column string, values []string, args *[]any) string {
	if len(values) == 0 {
		return ""
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, v)
	}
	return "\n  AND " + column + " IN (" + strings.Join(placeholders, ", ") + ")"
}

// topTypes keeps the n crime types with the highest combined count,
// preserving a deterministic order (count descending, then name).
func topTypes(counts []TypeCount, totals map[string]int64, n int) []TypeCount {
	if n <= 0 {
		n = 10
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}

	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}

	var kept []TypeCount
	for _, tc := range counts {
		if keep[tc.PrimaryType] {
			kept = append(kept, tc)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		ti, tj := totals[kept[i].PrimaryType], totals[kept[j].PrimaryType]
		if ti != tj {
			return ti > tj
		}
		if kept[i].PrimaryType != kept[j].PrimaryType {
			return kept[i].PrimaryType < kept[j].PrimaryType
		}
		return kept[i].Segment < kept[j].Segment
	})
	return kept
}

// correlationMatrix computes the pairwise Pearson correlation of
// hardship, poverty, and average safety over communities where all
// three are present.
func correlationMatrix(communities []CommunityRow) [][]float64 {
	var hardship, poverty, safety []float64
	for _, row := range communities {
		if row.HardshipIndex == nil || row.PovertyRate == nil || row.AvgSafetyScore == nil {
			continue
		}
		hardship = append(hardship, float64(*row.HardshipIndex))
		poverty = append(poverty, *row.PovertyRate)
		safety = append(safety, *row.AvgSafetyScore)
	}

	fields := [][]float64{hardship, poverty, safety}
	matrix := make([][]float64, len(fields))
	for i := range fields {
		matrix[i] = make([]float64, len(fields))
		for j := range fields {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			if len(fields[i]) < 2 {
				matrix[i][j] = 0
				continue
			}
			// A constant series has no defined correlation; report 0
			// instead of a NaN that JSON cannot carry.
			r := stat.Correlation(fields[i], fields[j], nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			matrix[i][j] = r
		}
	}
	return matrix
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := stat.Mean(values, nil)
	return &m
}

// median of a sorted slice: the middle value, or the mean of the two
// middles for an even count.
func median(sorted []int64) int {
	n := len(sorted)
	if n%2 == 1 {
		return int(sorted[n/2])
	}
	return int((sorted[n/2-1] + sorted[n/2]) / 2)
}
