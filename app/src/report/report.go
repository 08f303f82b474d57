// Package report writes benchmark artifacts: per-sample CSV, summary JSON and
// an error histogram.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"dfd-gps-service/app/src/core"
	"dfd-gps-service/app/src/domain"
)

const (
	HistogramFile = "benchmark_error_hist.png"
	ResultsFile   = "benchmark_results.csv"
	SummaryFile   = "benchmark_summary.json"
)

var csvHeader = []string{
	"temp_K", "pressure_Pa", "rh_frac", "elev_deg",
	"true_range_m", "measured_range_m", "dfd_range_bias_m", "corrected_range_m",
	"err_measured_m", "err_corrected_m",
}

// Artifacts holds the paths written by WriteAll.
type Artifacts struct {
	HistogramPath string
	ResultsPath   string
	SummaryPath   string
}

// WriteAll writes the three benchmark artifacts into dir, creating it if needed.
func WriteAll(dir string, result *core.BenchmarkResult) (Artifacts, error) {
	if result == nil {
		return Artifacts{}, fmt.Errorf("report: nil benchmark result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("report: create %s: %w", dir, err)
	}

	a := Artifacts{
		HistogramPath: filepath.Join(dir, HistogramFile),
		ResultsPath:   filepath.Join(dir, ResultsFile),
		SummaryPath:   filepath.Join(dir, SummaryFile),
	}
	if err := writeFile(a.ResultsPath, func(w io.Writer) error { return WriteCSV(w, result.Outcomes) }); err != nil {
		return Artifacts{}, err
	}
	if err := writeFile(a.SummaryPath, func(w io.Writer) error { return WriteSummaryJSON(w, result.Summary) }); err != nil {
		return Artifacts{}, err
	}
	if err := WriteHistogramPNG(a.HistogramPath, result.Outcomes, result.Scenario.HistBins, result.Scenario.HistLimitM); err != nil {
		return Artifacts{}, err
	}
	return a, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("report: close %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes one row per accepted outcome. Rejected samples are skipped.
func WriteCSV(w io.Writer, outcomes []domain.SampleOutcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		req := o.Sample.Request
		row := []string{
			formatFloat(req.TempK),
			formatFloat(req.PressurePa),
			formatFloat(req.RHFrac),
			formatFloat(req.ElevDeg),
			formatFloat(o.Sample.TrueRangeM),
			formatFloat(o.MeasuredM),
			formatFloat(o.Result.RangeCorrectionM),
			formatFloat(o.CorrectedM),
			formatFloat(o.ErrMeasured()),
			formatFloat(o.ErrCorrected()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, summary core.BenchmarkSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// Bin counts values into bins equal-width bins over [-limit, limit].
// Values outside the range are dropped; limit itself falls into the last bin.
func Bin(values []float64, bins int, limit float64) []plotter.HistogramBin {
	if bins <= 0 || limit <= 0 {
		return nil
	}
	width := 2 * limit / float64(bins)
	out := make([]plotter.HistogramBin, bins)
	for i := range out {
		out[i].Min = -limit + float64(i)*width
		out[i].Max = out[i].Min + width
	}
	for _, v := range values {
		if math.IsNaN(v) || v < -limit || v > limit {
			continue
		}
		i := int((v + limit) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Weight++
	}
	return out
}

// WriteHistogramPNG overlays the naive and corrected error distributions.
func WriteHistogramPNG(path string, outcomes []domain.SampleOutcome, bins int, limit float64) error {
	var naive, corrected []float64
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		naive = append(naive, o.ErrMeasured())
		corrected = append(corrected, o.ErrCorrected())
	}

	p := plot.New()
	p.Title.Text = "Range Error Distribution (Synthetic Demo)"
	p.X.Label.Text = "Error (m)"
	p.Y.Label.Text = "Count"
	p.X.Min, p.X.Max = -limit, limit

	naiveHist := newHistogram(Bin(naive, bins, limit), 2*limit/float64(bins), color.NRGBA{R: 31, G: 119, B: 180, A: 140})
	correctedHist := newHistogram(Bin(corrected, bins, limit), 2*limit/float64(bins), color.NRGBA{R: 255, G: 127, B: 14, A: 140})

	peak := 1.0
	for _, h := range []*plotter.Histogram{naiveHist, correctedHist} {
		for _, b := range h.Bins {
			peak = math.Max(peak, b.Weight)
		}
	}
	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 0, Y: peak}})
	if err != nil {
		return fmt.Errorf("report: zero line: %w", err)
	}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	zero.Color = color.Black

	p.Add(naiveHist, correctedHist, zero)
	p.Legend.Add("Naive GPS error", naiveHist)
	p.Legend.Add("DFD-corrected error", correctedHist)
	p.Legend.Top = true

	if err := p.Save(7*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

func newHistogram(bins []plotter.HistogramBin, width float64, fill color.Color) *plotter.Histogram {
	return &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		FillColor: fill,
		LineStyle: plotter.DefaultLineStyle,
	}
}
