package simulator

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/vitalsentry/vitalsentry/internal/domain/model"
)

// SaturationGenerator random-walks blood saturation within 90 to 100
// percent. Values go out with the percent suffix the wire format uses.
type SaturationGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[int]int
}

// NewSaturationGenerator seeds each patient with a baseline between 95
// and 100 on first use.
func NewSaturationGenerator() *SaturationGenerator {
	return &SaturationGenerator{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		last: make(map[int]int),
	}
}

// Interval implements Generator.Interval.
func (g *SaturationGenerator) Interval() time.Duration { return time.Second }

// Generate implements Generator.Generate.
func (g *SaturationGenerator) Generate(patientID int, out Output) {
	g.mu.Lock()
	value, ok := g.last[patientID]
	if !ok {
		value = 95 + g.rng.Intn(6)
	}

	value += g.rng.Intn(3) - 1 // -1, 0, or 1
	if value < 90 {
		value = 90
	}
	if value > 100 {
		value = 100
	}
	g.last[patientID] = value
	g.mu.Unlock()

	_ = out.Emit(patientID, nowUnixMilli(), model.SignalSaturation,
		strconv.FormatFloat(float64(value), 'f', 1, 64)+"%")
}

// BloodPressureGenerator random-walks systolic and diastolic pressure
// around healthy baselines, emitting both signals per tick.
type BloodPressureGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	systolic  map[int]float64
	diastolic map[int]float64
}

// NewBloodPressureGenerator creates a generator with baselines around
// 120 over 80.
func NewBloodPressureGenerator() *BloodPressureGenerator {
	return &BloodPressureGenerator{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		systolic:  make(map[int]float64),
		diastolic: make(map[int]float64),
	}
}

// Interval implements Generator.Interval.
func (g *BloodPressureGenerator) Interval() time.Duration { return 2 * time.Second }

// Generate implements Generator.Generate.
func (g *BloodPressureGenerator) Generate(patientID int, out Output) {
	g.mu.Lock()
	sys, ok := g.systolic[patientID]
	if !ok {
		sys = 110 + g.rng.Float64()*20
	}
	dia, ok := g.diastolic[patientID]
	if !ok {
		dia = 70 + g.rng.Float64()*15
	}

	sys = clamp(sys+g.rng.Float64()*6-3, 60, 200)
	dia = clamp(dia+g.rng.Float64()*4-2, 40, 130)
	g.systolic[patientID] = sys
	g.diastolic[patientID] = dia
	g.mu.Unlock()

	ts := nowUnixMilli()
	_ = out.Emit(patientID, ts, model.SignalSystolic, strconv.FormatFloat(sys, 'f', 1, 64))
	_ = out.Emit(patientID, ts, model.SignalDiastolic, strconv.FormatFloat(dia, 'f', 1, 64))
}

// HeartRateGenerator random-walks the pulse around a resting baseline.
type HeartRateGenerator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[int]float64
}

// NewHeartRateGenerator creates a generator with baselines between 60
// and 90 bpm.
func NewHeartRateGenerator() *HeartRateGenerator {
	return &HeartRateGenerator{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		last: make(map[int]float64),
	}
}

// Interval implements Generator.Interval.
func (g *HeartRateGenerator) Interval() time.Duration { return time.Second }

// Generate implements Generator.Generate.
func (g *HeartRateGenerator) Generate(patientID int, out Output) {
	g.mu.Lock()
	hr, ok := g.last[patientID]
	if !ok {
		hr = 60 + g.rng.Float64()*30
	}

	hr = clamp(hr+g.rng.Float64()*4-2, 40, 180)
	g.last[patientID] = hr
	g.mu.Unlock()

	_ = out.Emit(patientID, nowUnixMilli(), model.SignalHeartRate,
		strconv.FormatFloat(hr, 'f', 1, 64))
}

// ECGGenerator emits a noisy sine wave approximating an ECG trace.
type ECGGenerator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	phase map[int]float64
}

// NewECGGenerator creates a generator with a distinct phase per patient.
func NewECGGenerator() *ECGGenerator {
	return &ECGGenerator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		phase: make(map[int]float64),
	}
}

// Interval implements Generator.Interval.
func (g *ECGGenerator) Interval() time.Duration { return 250 * time.Millisecond }

// Generate implements Generator.Generate.
func (g *ECGGenerator) Generate(patientID int, out Output) {
	g.mu.Lock()
	phase := g.phase[patientID]
	phase += 0.4
	g.phase[patientID] = phase
	value := math.Sin(phase) + g.rng.Float64()*0.1 - 0.05
	g.mu.Unlock()

	_ = out.Emit(patientID, nowUnixMilli(), model.SignalECG,
		strconv.FormatFloat(value, 'f', 3, 64))
}

// SignalManualAlert labels manually raised alert lines. The monitoring
// service's parser drops them; they exist for downstream consumers that
// read the raw streams.
const SignalManualAlert = model.SignalType("Alert")

// ManualAlertGenerator simulates staff-raised alerts. Alerts are rare:
// a patient without an active alert triggers one with a small Poisson
// derived probability, an active alert resolves with 90 percent chance
// per tick.
type ManualAlertGenerator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	active map[int]bool
}

// NewManualAlertGenerator creates a generator with no active alerts.
func NewManualAlertGenerator() *ManualAlertGenerator {
	return &ManualAlertGenerator{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		active: make(map[int]bool),
	}
}

// Interval implements Generator.Interval.
func (g *ManualAlertGenerator) Interval() time.Duration { return 20 * time.Second }

// Generate implements Generator.Generate.
func (g *ManualAlertGenerator) Generate(patientID int, out Output) {
	// Probability of at least one alert per tick at rate 0.1.
	triggerP := -math.Expm1(-0.1)

	g.mu.Lock()
	var state string
	if g.active[patientID] {
		if g.rng.Float64() < 0.9 {
			g.active[patientID] = false
			state = "resolved"
		}
	} else if g.rng.Float64() < triggerP {
		g.active[patientID] = true
		state = "triggered"
	}
	g.mu.Unlock()

	if state == "" {
		return
	}
	_ = out.Emit(patientID, nowUnixMilli(), SignalManualAlert, state)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nowUnixMilli is a variable so tests can pin the clock.
var nowUnixMilli = func() int64 { return time.Now().UnixMilli() }
