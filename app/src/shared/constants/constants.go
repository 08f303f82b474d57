package constants

// Physical constants shared by the correction model and the benchmark.
const (
	SpeedOfLight    = 299_792_458.0               // m/s
	SpeedOfLightSq  = SpeedOfLight * SpeedOfLight // m^2/s^2
	StandardGravity = 9.80665                     // m/s^2

	// International Standard Atmosphere, troposphere below 11 km.
	SeaLevelPressurePa = 101325.0    // Pa
	SeaLevelTempK      = 288.15      // K
	LapseRateKPerM     = 0.0065      // K/m
	GasConstant        = 8.314462618 // J/(mol K)
	MolarMassAir       = 0.0289644   // kg/mol

	// WGS-84 ellipsoid.
	EarthSemiMajorM = 6378137.0
	EarthFlattening = 1.0 / 298.257223563
)
