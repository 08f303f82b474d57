package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario parameterises the synthetic measurement set used by the benchmark.
type Scenario struct {
	Samples   int    `yaml:"samples" json:"samples"`
	Seed      uint64 `yaml:"seed" json:"seed"`
	BatchSize int    `yaml:"batch_size" json:"batch_size"`
	Workers   int    `yaml:"workers" json:"workers"`

	LatDeg  float64 `yaml:"lat_deg" json:"lat_deg"`
	LonDeg  float64 `yaml:"lon_deg" json:"lon_deg"`
	HeightM float64 `yaml:"height_m" json:"height_m"`

	TempMeanK      float64 `yaml:"temp_mean_k" json:"temp_mean_k"`
	TempStdK       float64 `yaml:"temp_std_k" json:"temp_std_k"`
	PressureMeanPa float64 `yaml:"pressure_mean_pa" json:"pressure_mean_pa"`
	PressureStdPa  float64 `yaml:"pressure_std_pa" json:"pressure_std_pa"`
	RHMin          float64 `yaml:"rh_min" json:"rh_min"`
	RHMax          float64 `yaml:"rh_max" json:"rh_max"`
	ElevMinDeg     float64 `yaml:"elev_min_deg" json:"elev_min_deg"`
	ElevMaxDeg     float64 `yaml:"elev_max_deg" json:"elev_max_deg"`

	TrueRangeM float64 `yaml:"true_range_m" json:"true_range_m"`
	NoiseStdM  float64 `yaml:"noise_std_m" json:"noise_std_m"`

	HistBins   int     `yaml:"hist_bins" json:"hist_bins"`
	HistLimitM float64 `yaml:"hist_limit_m" json:"hist_limit_m"`

	TroposphereModel string `yaml:"tropo_model" json:"tropo_model"`
	MappingFunction  string `yaml:"mapping_function" json:"mapping_function"`
}

// DefaultScenario reproduces the reference synthetic demo.
func DefaultScenario() Scenario {
	return Scenario{
		Samples:          500,
		Seed:             42,
		BatchSize:        50,
		Workers:          4,
		LatDeg:           34.05,
		LonDeg:           -118.25,
		HeightM:          100,
		TempMeanK:        293.15,
		TempStdK:         4,
		PressureMeanPa:   101325,
		PressureStdPa:    1200,
		RHMin:            0.2,
		RHMax:            0.9,
		ElevMinDeg:       10,
		ElevMaxDeg:       80,
		TrueRangeM:       20_200_000,
		NoiseStdM:        0.5,
		HistBins:         60,
		HistLimitM:       5,
		TroposphereModel: "saastamoinen",
		MappingFunction:  "simple",
	}
}

// Validate reports the first parameter that cannot produce a usable run.
func (s Scenario) Validate() error {
	finite := []struct {
		name string
		v    float64
	}{
		{"lat_deg", s.LatDeg}, {"lon_deg", s.LonDeg}, {"height_m", s.HeightM},
		{"temp_mean_k", s.TempMeanK}, {"temp_std_k", s.TempStdK},
		{"pressure_mean_pa", s.PressureMeanPa}, {"pressure_std_pa", s.PressureStdPa},
		{"rh_min", s.RHMin}, {"rh_max", s.RHMax},
		{"elev_min_deg", s.ElevMinDeg}, {"elev_max_deg", s.ElevMaxDeg},
		{"true_range_m", s.TrueRangeM}, {"noise_std_m", s.NoiseStdM}, {"hist_limit_m", s.HistLimitM},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("scenario %s: must be finite", f.name)
		}
	}

	switch {
	case s.Samples <= 0:
		return fmt.Errorf("scenario samples: must be positive, got %d", s.Samples)
	case s.BatchSize <= 0:
		return fmt.Errorf("scenario batch_size: must be positive, got %d", s.BatchSize)
	case s.Workers <= 0:
		return fmt.Errorf("scenario workers: must be positive, got %d", s.Workers)
	case s.TempStdK < 0 || s.PressureStdPa < 0 || s.NoiseStdM < 0:
		return fmt.Errorf("scenario standard deviations must not be negative")
	case s.RHMin > s.RHMax:
		return fmt.Errorf("scenario rh_min %g exceeds rh_max %g", s.RHMin, s.RHMax)
	case s.ElevMinDeg > s.ElevMaxDeg:
		return fmt.Errorf("scenario elev_min_deg %g exceeds elev_max_deg %g", s.ElevMinDeg, s.ElevMaxDeg)
	case s.TrueRangeM <= 0:
		return fmt.Errorf("scenario true_range_m: must be positive, got %g", s.TrueRangeM)
	case s.HistBins <= 0:
		return fmt.Errorf("scenario hist_bins: must be positive, got %d", s.HistBins)
	case s.HistLimitM <= 0:
		return fmt.Errorf("scenario hist_limit_m: must be positive, got %g", s.HistLimitM)
	}

	if _, err := ParseTroposphereModel(s.TroposphereModel); err != nil {
		return fmt.Errorf("scenario tropo_model: %w", err)
	}
	if _, err := ParseMappingFunction(s.MappingFunction); err != nil {
		return fmt.Errorf("scenario mapping_function: %w", err)
	}
	return nil
}

// LoadScenario reads a YAML scenario file. Keys missing from the file keep
// their DefaultScenario values; unknown keys are rejected.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	s, err := ParseScenarioYAML(b)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenarioYAML overlays YAML onto DefaultScenario and validates the result.
func ParseScenarioYAML(b []byte) (Scenario, error) {
	s := DefaultScenario()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scenario{}, err
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// YAML renders the scenario in the same layout LoadScenario accepts.
func (s Scenario) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
