package core

import (
	"fmt"
	"math"
	"strings"

	"dfd-gps-service/app/src/geodesy"
)

// Site is the receiver location a mapping function may depend on.
type Site struct {
	LatRad  float64
	HeightM float64
}

// MappingFunction scales a zenith delay to the slant delay at an elevation.
type MappingFunction interface {
	Name() string
	Factor(elevRad float64, site Site) float64
}

const (
	minElevDeg    = 0.1
	maxElevDeg    = 89.9
	elevOffsetDeg = 0.1
)

// SimpleMapping is m(e) = 1/sin(e + 0.1deg) with e clamped to [0.1, 89.9]
// degrees, which keeps the factor finite at the horizon and exactly 1 at zenith.
type SimpleMapping struct{}

func (SimpleMapping) Name() string { return "simple" }

func (SimpleMapping) Factor(elevRad float64, _ Site) float64 {
	e := math.Max(minElevDeg, math.Min(maxElevDeg, geodesy.ToDeg(elevRad)))
	return 1.0 / math.Sin(geodesy.ToRad(e+elevOffsetDeg))
}

// NiellMapping is the Niell (1996) hydrostatic mapping function. The seasonal
// term is evaluated at day-of-year 28, the reference phase of the model.
type NiellMapping struct{}

func (NiellMapping) Name() string { return "niell" }

var niellCoef = [6][5]float64{
	{1.2769934e-3, 1.2683230e-3, 1.2465397e-3, 1.2196049e-3, 1.2045996e-3},
	{2.9153695e-3, 2.9152299e-3, 2.9288445e-3, 2.9022565e-3, 2.9024912e-3},
	{62.610505e-3, 62.837393e-3, 63.721774e-3, 63.824265e-3, 64.258455e-3},

	{0.0000000e-0, 1.2709626e-5, 2.6523662e-5, 3.4000452e-5, 4.1202191e-5},
	{0.0000000e-0, 2.1414979e-5, 3.0160779e-5, 7.2562722e-5, 11.723375e-5},
	{0.0000000e-0, 9.0128400e-5, 4.3497037e-5, 84.795348e-5, 170.37206e-5},
}

var niellHeightCoef = [3]float64{2.53e-5, 5.49e-3, 1.14e-3}

const niellReferenceDOY = 28.0

func (NiellMapping) Factor(elevRad float64, site Site) float64 {
	elevRad = math.Max(geodesy.ToRad(minElevDeg), math.Min(math.Pi/2, elevRad))

	lat := geodesy.ToDeg(site.LatRad)
	y := (niellReferenceDOY - 28.0) / 365.25
	if lat < 0 {
		y += 0.5
	}
	cosy := math.Cos(2 * math.Pi * y)
	lat = math.Abs(lat)

	var ah [3]float64
	for i := range ah {
		ah[i] = interpLat(niellCoef[i], lat) - interpLat(niellCoef[i+3], lat)*cosy
	}
	dm := (1.0/math.Sin(elevRad) - marini(elevRad, niellHeightCoef[0], niellHeightCoef[1], niellHeightCoef[2])) * site.HeightM / 1e3
	return marini(elevRad, ah[0], ah[1], ah[2]) + dm
}

// interpLat interpolates a coefficient row tabulated every 15 degrees from 15 to 75.
func interpLat(coef [5]float64, lat float64) float64 {
	i := int(lat / 15.0)
	if i < 1 {
		return coef[0]
	} else if i > 4 {
		return coef[4]
	}
	return coef[i-1]*(1.0-lat/15.0+float64(i)) + coef[i]*(lat/15.0-float64(i))
}

// marini is the continued-fraction form shared by Niell-type mapping functions.
func marini(el, a, b, c float64) float64 {
	sinel := math.Sin(el)
	return (1.0 + a/(1.0+b/(1.0+c))) / (sinel + (a / (sinel + b/(sinel+c))))
}

// ParseMappingFunction resolves a mapping function by name. Empty selects SimpleMapping.
func ParseMappingFunction(name string) (MappingFunction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "simple":
		return SimpleMapping{}, nil
	case "niell":
		return NiellMapping{}, nil
	default:
		return nil, fmt.Errorf("unknown mapping function %q", name)
	}
}
