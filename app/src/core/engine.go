package core

import (
	"errors"
	"fmt"
	"math"

	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/geodesy"
	"dfd-gps-service/app/src/shared/constants"
)

// Validation bounds for MeasurementRequest.
const (
	MinHeightM    = -1000.0
	MaxHeightM    = 20000.0
	MaxPressurePa = 120000.0
	MinTempK      = 173.15
	MaxTempK      = 373.15

	// MaxCoordinateM bounds each ECEF component; GNSS orbits stay well inside it.
	MaxCoordinateM = 1e9
)

// Engine computes corrections. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	tropo   TroposphereModel
	mapping MappingFunction
}

type EngineOption func(*Engine)

func WithTroposphereModel(m TroposphereModel) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.tropo = m
		}
	}
}

func WithMappingFunction(m MappingFunction) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.mapping = m
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{tropo: Saastamoinen{}, mapping: SimpleMapping{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) TroposphereModel() string { return e.tropo.Name() }

func (e *Engine) MappingFunction() string { return e.mapping.Name() }

// Compute applies the estimate and refractivity terms to a measurement.
func (e *Engine) Compute(req domain.MeasurementRequest) (domain.CorrectionResult, error) {
	if err := Validate(req); err != nil {
		return domain.CorrectionResult{}, err
	}

	est := PotentialEstimate(req.HeightM, req.RangeM)

	met := Meteo{PressurePa: req.PressurePa, TempK: req.TempK, RHFrac: req.RHFrac}
	dry, wet := Refractivity(met)
	zenith := e.tropo.Zenith(met)
	site := Site{LatRad: geodesy.ToRad(req.LatDeg), HeightM: req.HeightM}
	mf := e.mapping.Factor(geodesy.ToRad(req.ElevDeg), site)
	slant := zenith.Total() * mf

	rangeCorr := slant + est.RangeM
	timing := rangeCorr / constants.SpeedOfLight

	res := domain.CorrectionResult{
		PsiSurface:         est.Psi,
		DeltaPhiOverC2:     est.DeltaPhiOverC2,
		EstimateRangeM:     est.RangeM,
		ZenithHydrostaticM: zenith.HydrostaticM,
		ZenithWetM:         zenith.WetM,
		ZenithDelayM:       zenith.Total(),
		MappingFactor:      mf,
		RefractivityDryN:   dry,
		RefractivityWetN:   wet,
		RefractivityDelayM: slant,
		RangeCorrectionM:   rangeCorr,
		TimingCorrectionS:  timing,
		CorrectedRangeM:    math.Max(0, req.RangeM-rangeCorr),
		TroposphereModel:   e.tropo.Name(),
		MappingFunction:    e.mapping.Name(),
		QualityFlag:        e.qualityFlag(),
	}

	if req.HasGeometry() {
		los, _ := req.LineOfSight()
		u, _, err := geodesy.Unit(los)
		switch {
		case errors.Is(err, geodesy.ErrDegenerateGeometry):
			return domain.CorrectionResult{}, domain.NewInvalidInput("satellite_ecef", "must differ from receiver_ecef")
		case err != nil:
			return domain.CorrectionResult{}, domain.NewInvalidInput("satellite_ecef", "line of sight is not finite")
		}
		vec := u.Scale(rangeCorr)
		res.LOSUnit = &u
		res.CorrectionVector = &vec
	}

	return res, nil
}

func (e *Engine) qualityFlag() string {
	return fmt.Sprintf("psi from phi~g*h; %s zenith delay from surface refractivity; %s elevation mapping",
		e.tropo.Name(), e.mapping.Name())
}

// Validate rejects requests outside the physical domain of the model.
func Validate(req domain.MeasurementRequest) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"lat", req.LatDeg},
		{"lon", req.LonDeg},
		{"h_m", req.HeightM},
		{"pressure_Pa", req.PressurePa},
		{"temp_K", req.TempK},
		{"rh_frac", req.RHFrac},
		{"elev_deg", req.ElevDeg},
		{"range_m", req.RangeM},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return domain.NewInvalidInput(f.name, "must be a finite number")
		}
	}

	switch {
	case req.ElevDeg < 0 || req.ElevDeg > 90:
		return domain.NewInvalidInput("elev_deg", "must be within [0, 90], got %g", req.ElevDeg)
	case req.LatDeg < -90 || req.LatDeg > 90:
		return domain.NewInvalidInput("lat", "must be within [-90, 90], got %g", req.LatDeg)
	case req.LonDeg < -180 || req.LonDeg > 180:
		return domain.NewInvalidInput("lon", "must be within [-180, 180], got %g", req.LonDeg)
	case req.HeightM < MinHeightM || req.HeightM > MaxHeightM:
		return domain.NewInvalidInput("h_m", "must be within [%g, %g], got %g", MinHeightM, MaxHeightM, req.HeightM)
	case req.PressurePa <= 0 || req.PressurePa > MaxPressurePa:
		return domain.NewInvalidInput("pressure_Pa", "must be within (0, %g], got %g", MaxPressurePa, req.PressurePa)
	case req.TempK < MinTempK || req.TempK > MaxTempK:
		return domain.NewInvalidInput("temp_K", "must be within [%g, %g], got %g", MinTempK, MaxTempK, req.TempK)
	case req.RHFrac < 0 || req.RHFrac > 1:
		return domain.NewInvalidInput("rh_frac", "must be within [0, 1], got %g", req.RHFrac)
	case req.RangeM < 0:
		return domain.NewInvalidInput("range_m", "must not be negative, got %g", req.RangeM)
	}

	positions := []struct {
		name string
		p    *domain.Vec3
	}{{"receiver_ecef", req.Receiver}, {"satellite_ecef", req.Satellite}}
	for _, pos := range positions {
		if pos.p == nil {
			continue
		}
		if !pos.p.IsFinite() {
			return domain.NewInvalidInput(pos.name, "must contain finite coordinates")
		}
		for _, c := range pos.p.Slice() {
			if math.Abs(c) > MaxCoordinateM {
				return domain.NewInvalidInput(pos.name, "coordinates must be within ±%g m, got %g", MaxCoordinateM, c)
			}
		}
	}
	if req.HasGeometry() && *req.Receiver == *req.Satellite {
		return domain.NewInvalidInput("satellite_ecef", "must differ from receiver_ecef")
	}
	return nil
}

// NewEngineByName builds an engine from configured model names.
func NewEngineByName(tropoModel, mappingFunction string) (*Engine, error) {
	tropo, err := ParseTroposphereModel(tropoModel)
	if err != nil {
		return nil, err
	}
	mapping, err := ParseMappingFunction(mappingFunction)
	if err != nil {
		return nil, err
	}
	return NewEngine(WithTroposphereModel(tropo), WithMappingFunction(mapping)), nil
}
