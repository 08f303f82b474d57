// Package payload holds the JSON wire format shared by the HTTP and gRPC
// transports and its mapping onto domain types.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dfd-gps-service/app/src/core"
	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/geodesy"
	"dfd-gps-service/app/src/infra/utils"
)

// Wire defaults applied when the client omits the field.
const (
	DefaultRHFrac  = 0.5
	DefaultElevDeg = 45.0

	// Receivers further than this from the ellipsoid are not treated as
	// surface positions when deriving lat/lon/h or elevation.
	surfaceToleranceM = 50_000.0
)

// Sea-level reference used for position fields that are neither supplied nor
// derivable from a surface receiver.
const (
	referenceLatDeg  = 0.0
	referenceLonDeg  = 0.0
	referenceHeightM = 0.0
)

// ErrMalformed marks a body that is not a valid CorrectionRequest document.
var ErrMalformed = errors.New("malformed request body")

// CorrectionRequest is the client-facing measurement document. Pointer fields
// distinguish "omitted" from zero.
type CorrectionRequest struct {
	Lat        *float64  `json:"lat,omitempty"`
	Lon        *float64  `json:"lon,omitempty"`
	HeightM    *float64  `json:"h_m,omitempty"`
	TempK      *float64  `json:"temp_K,omitempty"`
	PressurePa *float64  `json:"pressure_Pa,omitempty"`
	RHFrac     *float64  `json:"rh_frac,omitempty"`
	ElevDeg    *float64  `json:"elev_deg,omitempty"`
	RangeM     *float64  `json:"range_m,omitempty"`
	Receiver   []float64 `json:"receiver_ecef,omitempty"`
	Satellite  []float64 `json:"satellite_ecef,omitempty"`
}

// CorrectionResponse mirrors domain.CorrectionResult on the wire.
type CorrectionResponse struct {
	PsiSurface         float64   `json:"psi_surface"`
	DeltaPhiOverC2     float64   `json:"delta_phi_over_c2"`
	EstimateRangeM     float64   `json:"estimate_range_m"`
	ZenithHydrostaticM float64   `json:"zenith_hydrostatic_m"`
	ZenithWetM         float64   `json:"zenith_wet_m"`
	ZenithDelayM       float64   `json:"zenith_delay_m"`
	MappingFactor      float64   `json:"mapping_factor"`
	RefractivityDryN   float64   `json:"refractivity_dry_n"`
	RefractivityWetN   float64   `json:"refractivity_wet_n"`
	RefractivityDelayM float64   `json:"refractivity_delay_m"`
	RangeBiasM         float64   `json:"range_bias_m"`
	OneWayDelayS       float64   `json:"one_way_delay_s"`
	TimingBiasNS       float64   `json:"timing_bias_ns"`
	CorrectedRangeM    float64   `json:"corrected_range_m"`
	LOSUnit            []float64 `json:"los_unit,omitempty"`
	CorrectionVectorM  []float64 `json:"correction_vector_m,omitempty"`
	TroposphereModel   string    `json:"tropo_model"`
	MappingFunction    string    `json:"mapping_function"`
	QualityFlag        string    `json:"quality_flag"`
}

// Decode reads exactly one CorrectionRequest document; unknown fields and
// trailing data are rejected.
func Decode(r io.Reader) (CorrectionRequest, error) {
	var req CorrectionRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return CorrectionRequest{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dec.More() {
		return CorrectionRequest{}, fmt.Errorf("%w: unexpected data after document", ErrMalformed)
	}
	return req, nil
}

// ToDomain resolves defaults and geometry-derived fields.
func (r CorrectionRequest) ToDomain() (domain.MeasurementRequest, error) {
	var out domain.MeasurementRequest

	rcv, err := vec3("receiver_ecef", r.Receiver)
	if err != nil {
		return out, err
	}
	sat, err := vec3("satellite_ecef", r.Satellite)
	if err != nil {
		return out, err
	}
	out.Receiver, out.Satellite = rcv, sat

	surface := rcv != nil && rcv.IsFinite() && geodesy.NearSurface(*rcv, surfaceToleranceM)
	r.resolvePosition(&out, surface)

	if r.TempK == nil {
		return out, domain.NewInvalidInput("temp_K", "is required")
	}
	out.TempK = *r.TempK

	if r.PressurePa != nil {
		out.PressurePa = *r.PressurePa
	} else {
		// The standard atmosphere is undefined outside the validated band.
		if out.HeightM < core.MinHeightM || out.HeightM > core.MaxHeightM {
			return out, domain.NewInvalidInput("h_m", "must be within [%g, %g], got %g", core.MinHeightM, core.MaxHeightM, out.HeightM)
		}
		out.PressurePa = core.BarometricPressurePa(out.HeightM)
	}

	out.RHFrac = utils.Deref(r.RHFrac, DefaultRHFrac)

	switch {
	case r.ElevDeg != nil:
		out.ElevDeg = *r.ElevDeg
	case surface && sat != nil && sat.IsFinite() && *sat != *rcv:
		out.ElevDeg = geodesy.ToDeg(geodesy.Elevation(*rcv, *sat))
	default:
		out.ElevDeg = DefaultElevDeg
	}

	switch {
	case r.RangeM != nil:
		out.RangeM = *r.RangeM
	case out.HasGeometry():
		los, _ := out.LineOfSight()
		out.RangeM = los.Norm()
	default:
		return out, domain.NewInvalidInput("range_m", "is required without receiver_ecef and satellite_ecef")
	}

	return out, nil
}

// resolvePosition fills lat/lon/h. Omitted fields come from a surface
// receiver when there is one and from the sea-level reference otherwise.
func (r CorrectionRequest) resolvePosition(out *domain.MeasurementRequest, surface bool) {
	lat, lon, h := referenceLatDeg, referenceLonDeg, referenceHeightM
	if surface {
		llh := geodesy.ToLLH(*out.Receiver)
		lat, lon, h = geodesy.ToDeg(llh.Lat), geodesy.ToDeg(llh.Lon), llh.Height
	}
	out.LatDeg = utils.Deref(r.Lat, lat)
	out.LonDeg = utils.Deref(r.Lon, lon)
	out.HeightM = utils.Deref(r.HeightM, h)
}

func vec3(field string, v []float64) (*domain.Vec3, error) {
	if v == nil {
		return nil, nil
	}
	if len(v) != 3 {
		return nil, domain.NewInvalidInput(field, "must have 3 coordinates, got %d", len(v))
	}
	return &domain.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// FromDomain converts an engine result to its wire form.
func FromDomain(res domain.CorrectionResult) CorrectionResponse {
	out := CorrectionResponse{
		PsiSurface:         res.PsiSurface,
		DeltaPhiOverC2:     res.DeltaPhiOverC2,
		EstimateRangeM:     res.EstimateRangeM,
		ZenithHydrostaticM: res.ZenithHydrostaticM,
		ZenithWetM:         res.ZenithWetM,
		ZenithDelayM:       res.ZenithDelayM,
		MappingFactor:      res.MappingFactor,
		RefractivityDryN:   res.RefractivityDryN,
		RefractivityWetN:   res.RefractivityWetN,
		RefractivityDelayM: res.RefractivityDelayM,
		RangeBiasM:         res.RangeCorrectionM,
		OneWayDelayS:       res.TimingCorrectionS,
		TimingBiasNS:       res.TimingBiasNS(),
		CorrectedRangeM:    res.CorrectedRangeM,
		TroposphereModel:   res.TroposphereModel,
		MappingFunction:    res.MappingFunction,
		QualityFlag:        res.QualityFlag,
	}
	if res.LOSUnit != nil {
		out.LOSUnit = res.LOSUnit.Slice()
	}
	if res.CorrectionVector != nil {
		out.CorrectionVectorM = res.CorrectionVector.Slice()
	}
	return out
}
