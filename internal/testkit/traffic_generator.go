// Package testkit provides synthetic fixtures for pipeline tests: a traffic
// volume dataset with a known ground-truth importance ordering, so tests can
// assert that the pipeline recovers the planted signal.
package testkit

import (
	"math"
	"math/rand"

	"featrank/domain/dataset"
	"featrank/domain/registry"
)

// TrafficFeatures is the canonical feature ordering of the synthetic
// dataset. The target depends on them with strictly decreasing strength:
// hour dominates, then temp, then rain_1h; clouds_all and is_holiday are
// weak; noise carries no signal at all.
var TrafficFeatures = []string{"hour", "temp", "rain_1h", "clouds_all", "is_holiday", "noise"}

// GenerateTrafficTable builds n observations of the synthetic traffic
// dataset with a fixed seed for reproducible tests
func GenerateTrafficTable(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))

	x := make([][]float64, n)
	y := make([]float64, n)

	for i := 0; i < n; i++ {
		hour := float64(i % 24)
		temp := 10 + 15*math.Sin(float64(i)/50) + rng.NormFloat64()*3
		rain := 0.0
		if rng.Float64() < 0.2 {
			rain = rng.Float64() * 8
		}
		clouds := rng.Float64() * 100
		holiday := 0.0
		if rng.Float64() < 0.05 {
			holiday = 1
		}
		noise := rng.NormFloat64()

		// Rush-hour shape plus weather effects, decreasing in strength
		rush := math.Exp(-math.Pow(hour-8, 2)/8) + math.Exp(-math.Pow(hour-17, 2)/8)
		volume := 5000*rush +
			60*temp -
			120*rain +
			5*clouds -
			400*holiday +
			rng.NormFloat64()*150

		x[i] = []float64{hour, temp, rain, clouds, holiday, noise}
		y[i] = volume
	}

	table, err := dataset.New(TrafficFeatures, "traffic_volume", x, y)
	if err != nil {
		panic(err) // fixture construction cannot fail with valid shapes
	}
	return table
}

// TrafficRegistry builds the registry matching GenerateTrafficTable
func TrafficRegistry() *registry.Registry {
	reg, err := registry.New(TrafficFeatures)
	if err != nil {
		panic(err)
	}
	return reg
}
