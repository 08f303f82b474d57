package core

import (
	"fmt"
	"math"
	"strings"

	"dfd-gps-service/app/src/shared/constants"
)

// Meteo is the ambient surface atmosphere at the receiver.
type Meteo struct {
	PressurePa float64
	TempK      float64
	RHFrac     float64
}

// ZenithDelay is the tropospheric delay along the local vertical, in metres.
type ZenithDelay struct {
	HydrostaticM float64
	WetM         float64
}

func (z ZenithDelay) Total() float64 {
	return z.HydrostaticM + z.WetM
}

// TroposphereModel maps surface meteorology to a zenith delay.
type TroposphereModel interface {
	Name() string
	Zenith(m Meteo) ZenithDelay
}

// SaturationVaporPressurePa is the Tetens approximation, in Pa.
func SaturationVaporPressurePa(tempK float64) float64 {
	tc := tempK - 273.15
	return 610.94 * math.Exp((17.625*tc)/(tc+243.04))
}

// VaporPressureHPa returns the partial water vapour pressure in hPa.
// Humidity is clamped to [0, 1].
func VaporPressureHPa(tempK, rhFrac float64) float64 {
	rh := math.Max(0, math.Min(1, rhFrac))
	return SaturationVaporPressurePa(tempK) * rh / 100.0
}

// Refractivity splits the Smith-Weintraub refractivity into dry and wet
// N-units: N = k1*P/T + k2'*e/T^2 with k1 = 77.6 K/hPa, k2' = 3.73e5 K^2/hPa.
func Refractivity(m Meteo) (dry, wet float64) {
	const (
		k1  = 77.6
		k2p = 3.73e5
	)
	pHPa := m.PressurePa / 100.0
	eHPa := VaporPressureHPa(m.TempK, m.RHFrac)
	return k1 * (pHPa / m.TempK), k2p * (eHPa / (m.TempK * m.TempK))
}

// BarometricPressurePa is the ISA barometric formula, valid up to about 11 km.
func BarometricPressurePa(heightM float64) float64 {
	exp := constants.StandardGravity * constants.MolarMassAir / (constants.GasConstant * constants.LapseRateKPerM)
	return constants.SeaLevelPressurePa * math.Pow(1-(constants.LapseRateKPerM*heightM)/constants.SeaLevelTempK, exp)
}

// Saastamoinen is the default zenith model: ZHD = 0.0022768*P, ZWD =
// 0.002277*(1255/T + 0.05)*e with P and e in hPa.
type Saastamoinen struct{}

func (Saastamoinen) Name() string { return "saastamoinen" }

func (Saastamoinen) Zenith(m Meteo) ZenithDelay {
	pHPa := m.PressurePa / 100.0
	eHPa := VaporPressureHPa(m.TempK, m.RHFrac)
	return ZenithDelay{
		HydrostaticM: 0.0022768 * pHPa,
		WetM:         0.002277 * (1255.0/m.TempK + 0.05) * eHPa,
	}
}

// Hopfield integrates the refractivity over quartic profiles with a
// temperature-dependent dry top height and a fixed 11 km wet top height.
type Hopfield struct{}

func (Hopfield) Name() string { return "hopfield" }

func (Hopfield) Zenith(m Meteo) ZenithDelay {
	dry, wet := Refractivity(m)
	hd := 40136.0 + 148.72*(m.TempK-273.16)
	const hw = 11000.0
	return ZenithDelay{
		HydrostaticM: 1e-6 / 5 * dry * hd,
		WetM:         1e-6 / 5 * wet * hw,
	}
}

// ParseTroposphereModel resolves a model by name. Empty selects Saastamoinen.
func ParseTroposphereModel(name string) (TroposphereModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "saastamoinen":
		return Saastamoinen{}, nil
	case "hopfield":
		return Hopfield{}, nil
	default:
		return nil, fmt.Errorf("unknown troposphere model %q", name)
	}
}
