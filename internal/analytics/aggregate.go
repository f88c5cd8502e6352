package analytics

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"trackstats/pkg/contracts/domain"
)

// BPMMinTracks is the number of tracks a tempo must exceed to get a group mean
const BPMMinTracks = 12

// DistributionColumns are the series whose frequencies are reported
var DistributionColumns = []string{domain.ColBPM, domain.ColKey, domain.ColMode, SeriesReleaseMonth, SeriesReleaseDay}

// Bucket is a named artist_count value
type Bucket struct {
	Name        string
	ArtistCount int64
}

// Buckets partitions tracks by credited artists
var Buckets = []Bucket{
	{Name: "solo", ArtistCount: 1},
	{Name: "one_feat", ArtistCount: 2},
	{Name: "two_feat", ArtistCount: 3},
	{Name: "three_feat", ArtistCount: 4},
}

// groupBy aggregates df by its key column and orders the groups by key.
// The key column must hold no missing cells. An empty frame gives an empty
// result.
func groupBy(df dataframe.DataFrame, key string, aggs []dataframe.AggregationType, cols []string) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, nil
	}
	groups := df.GroupBy(key)
	if groups.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to group by %s: %w", key, groups.Err)
	}
	out := groups.Aggregation(aggs, cols).Arrange(dataframe.Sort(key))
	if err := out.Error(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to aggregate by %s: %w", key, err)
	}
	return out, nil
}

// aggregated names the column Aggregation writes for col
func aggregated(col string, typ dataframe.AggregationType) string {
	return col + "_" + typ.String()
}

// present keeps the non-missing cells of s
func present(s series.Series) series.Series {
	keep := s.IsNaN()
	for i := range keep {
		keep[i] = !keep[i]
	}
	return s.Subset(keep)
}

// Distribution counts each distinct non-null value of a series, ordered by value
func Distribution(t *domain.Table, name string) (domain.Distribution, error) {
	s, err := Series(t, name)
	if err != nil {
		return domain.Distribution{}, err
	}

	dist := domain.Distribution{Column: name, Counts: []domain.CategoryCount{}}
	values := present(s)
	if values.Len() == 0 {
		return dist, nil
	}
	groups, err := groupBy(dataframe.New(values), name,
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT}, []string{name})
	if err != nil {
		return domain.Distribution{}, err
	}

	categories := groups.Col(name)
	counts := groups.Col(aggregated(name, dataframe.Aggregation_COUNT)).Float()
	for i := 0; i < groups.Nrow(); i++ {
		dist.Counts = append(dist.Counts, domain.CategoryCount{
			Category: domain.Render(categories.Elem(i)),
			Count:    int(counts[i]),
		})
	}
	return dist, nil
}

// Distributions computes Distribution for every DistributionColumns entry
func Distributions(t *domain.Table) ([]domain.Distribution, error) {
	out := make([]domain.Distribution, 0, len(DistributionColumns))
	for _, name := range DistributionColumns {
		d, err := Distribution(t, name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ArtistBuckets reports the track and stream shares of each named bucket.
// Rows whose artist_count is outside the buckets only count toward the totals.
func ArtistBuckets(t *domain.Table) (domain.BucketReport, error) {
	counts, err := Series(t, domain.ColArtistCount)
	if err != nil {
		return domain.BucketReport{}, err
	}
	streams, err := Floats(t, domain.ColStreams)
	if err != nil {
		return domain.BucketReport{}, err
	}

	tracks := make(map[int64]int, len(Buckets))
	sums := make(map[int64]float64, len(Buckets))
	named := make(map[int64]bool, len(Buckets))
	for _, b := range Buckets {
		named[b.ArtistCount] = true
	}

	report := domain.BucketReport{TotalTracks: t.NumRows()}
	for i := 0; i < counts.Len(); i++ {
		report.TotalStreams += finite(streams[i])
		n, ok := domain.IntOf(counts.Elem(i))
		if !ok || !named[n] {
			report.UnbucketedTracks++
			continue
		}
		tracks[n]++
		sums[n] += finite(streams[i])
	}

	for _, b := range Buckets {
		share := domain.BucketShare{
			Bucket:      b.Name,
			ArtistCount: int(b.ArtistCount),
			Tracks:      tracks[b.ArtistCount],
			Streams:     sums[b.ArtistCount],
		}
		share.TrackShare = percent(float64(share.Tracks), float64(report.TotalTracks))
		share.StreamShare = percent(share.Streams, report.TotalStreams)
		if share.Tracks > 0 {
			share.MeanStreams = share.Streams / float64(share.Tracks)
		}
		report.Buckets = append(report.Buckets, share)
	}
	return report, nil
}

// KeyShares reports, per key, its share of tracks, streams, playlists and
// charts. Tracks without a key form their own category with an empty label,
// so each series sums to 100 over the whole table.
func KeyShares(t *domain.Table) ([]domain.CategoryShare, error) {
	keys, err := Series(t, domain.ColKey)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return []domain.CategoryShare{}, nil
	}
	labels := make([]string, keys.Len())
	for i := range labels {
		if !keys.Elem(i).IsNA() {
			labels[i] = domain.Render(keys.Elem(i))
		}
	}

	measures := []string{domain.ColStreams, domain.ColTotalPlaylists, domain.ColTotalCharts}
	cols := []series.Series{domain.Strings(domain.ColKey, labels, nil)}
	for _, name := range measures {
		xs, err := Floats(t, name)
		if err != nil {
			return nil, err
		}
		for i := range xs {
			xs[i] = finite(xs[i])
		}
		cols = append(cols, domain.Floats(name, xs))
	}

	aggs := []dataframe.AggregationType{dataframe.Aggregation_COUNT}
	for range measures {
		aggs = append(aggs, dataframe.Aggregation_SUM)
	}
	groups, err := groupBy(dataframe.New(cols...), domain.ColKey, aggs, append([]string{domain.ColKey}, measures...))
	if err != nil {
		return nil, err
	}

	categories := groups.Col(domain.ColKey)
	tracks := groups.Col(aggregated(domain.ColKey, dataframe.Aggregation_COUNT)).Float()
	sums := make([][]float64, len(measures))
	totals := make([]float64, len(measures))
	for m, name := range measures {
		sums[m] = groups.Col(aggregated(name, dataframe.Aggregation_SUM)).Float()
		for _, v := range sums[m] {
			totals[m] += v
		}
	}

	out := make([]domain.CategoryShare, 0, groups.Nrow())
	for i := 0; i < groups.Nrow(); i++ {
		out = append(out, domain.CategoryShare{
			Category:       domain.Render(categories.Elem(i)),
			Tracks:         int(tracks[i]),
			TrackShare:     percent(tracks[i], float64(t.NumRows())),
			StreamsShare:   percent(sums[0][i], totals[0]),
			PlaylistsShare: percent(sums[1][i], totals[1]),
			ChartsShare:    percent(sums[2][i], totals[2]),
		})
	}
	return out, nil
}

// streamsPresent counts, per tempo group, the rows with parsed streams
const streamsPresent = "streams_present"

// BPMStreamMeans returns the mean streams of every tempo shared by more than
// BPMMinTracks tracks, ordered by tempo. Tempos are grouped by value, so
// fractional tempos form their own groups.
func BPMStreamMeans(t *domain.Table) ([]domain.GroupMean, error) {
	bpm, err := Floats(t, domain.ColBPM)
	if err != nil {
		return nil, err
	}
	streams, err := Floats(t, domain.ColStreams)
	if err != nil {
		return nil, err
	}

	var tempos, sums, seen []float64
	for i, b := range bpm {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			continue
		}
		tempos = append(tempos, b)
		sums = append(sums, finite(streams[i]))
		if math.IsNaN(streams[i]) {
			seen = append(seen, 0)
		} else {
			seen = append(seen, 1)
		}
	}

	out := []domain.GroupMean{}
	if len(tempos) == 0 {
		return out, nil
	}
	df := dataframe.New(
		domain.Floats(domain.ColBPM, tempos),
		domain.Floats(domain.ColStreams, sums),
		domain.Floats(streamsPresent, seen),
	)
	groups, err := groupBy(df, domain.ColBPM,
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT, dataframe.Aggregation_SUM, dataframe.Aggregation_SUM},
		[]string{domain.ColBPM, domain.ColStreams, streamsPresent})
	if err != nil {
		return nil, err
	}

	keys := groups.Col(domain.ColBPM).Float()
	counts := groups.Col(aggregated(domain.ColBPM, dataframe.Aggregation_COUNT)).Float()
	totals := groups.Col(aggregated(domain.ColStreams, dataframe.Aggregation_SUM)).Float()
	parsed := groups.Col(aggregated(streamsPresent, dataframe.Aggregation_SUM)).Float()
	for i := range keys {
		if int(counts[i]) <= BPMMinTracks {
			continue
		}
		mean := 0.0
		if parsed[i] > 0 {
			mean = totals[i] / parsed[i]
		}
		out = append(out, domain.GroupMean{BPM: keys[i], Tracks: int(counts[i]), MeanStreams: mean})
	}
	return out, nil
}

// finite maps NaN and infinities to zero so that sums skip them
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// percent returns part as a percentage of total, or 0 when total is 0
func percent(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}
