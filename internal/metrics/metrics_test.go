package metrics

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"testing"
)

func TestComputeStatsMeanMedianMode(t *testing.T) {
	s := ComputeStats([]float64{1, 2, 2, 3, 4})
	if s.Mean != 2.4 {
		t.Fatalf("expected mean 2.4, got %v", s.Mean)
	}
	if s.Median != 2 {
		t.Fatalf("expected median 2, got %v", s.Median)
	}
	if s.Mode != 2 {
		t.Fatalf("expected mode 2, got %v", s.Mode)
	}
	if s.Count != 5 {
		t.Fatalf("expected count 5, got %v", s.Count)
	}
}

func TestComputeStatsSingleSampleHasZeroStdDev(t *testing.T) {
	s := ComputeStats([]float64{7})
	if s.StdDev != 0 {
		t.Fatalf("expected stddev 0 for a single sample, got %v", s.StdDev)
	}
	if s.Mean != 7 || s.Median != 7 || s.Mode != 7 {
		t.Fatalf("unexpected single-sample stats: %+v", s)
	}
}

func TestComputeStatsEmptyReturnsZeroValue(t *testing.T) {
	if s := ComputeStats(nil); s != (Stats{}) {
		t.Fatalf("expected zero-value Stats for empty input, got %+v", s)
	}
}

func TestComputeStatsModeBreaksTiesByFirstOccurrence(t *testing.T) {
	s := ComputeStats([]float64{5, 1, 1, 5})
	if s.Mode != 5 {
		t.Fatalf("expected mode 5 (first-seen value on a count tie), got %v", s.Mode)
	}
}

func TestExportArchiveProducesOneEntryPerEpisode(t *testing.T) {
	episodes := []EpisodeMetrics{
		{EpisodeID: "ep-1", Episode: map[string]Stats{"reward": ComputeStats([]float64{1, 2, 3})}},
		{EpisodeID: "ep-2", Episode: map[string]Stats{"reward": ComputeStats([]float64{4, 5})}},
	}

	var buf bytes.Buffer
	if err := ExportArchive(&buf, episodes); err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}

	gr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("archive is not valid gzip: %v", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("archive is not a valid tar stream: %v", err)
		}
		names = append(names, hdr.Name)
	}
	if len(names) != 2 || names[0] != "ep-1.json" || names[1] != "ep-2.json" {
		t.Fatalf("expected entries [ep-1.json ep-2.json], got %v", names)
	}
}
