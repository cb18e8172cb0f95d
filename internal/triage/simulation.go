package triage

import (
	"math/rand"

	"github.com/triage-routing-engine/internal/domain"
)

// SymptomOptions lists the symptom codes accepted by the intake layer.
var SymptomOptions = []string{
	"chest_pain",
	"shortness_of_breath",
	"headache",
	"fever",
	"dizziness",
	"nausea",
	"abdominal_pain",
	"bleeding",
	"unconscious",
	"seizure",
	"trauma",
	"burn",
	"allergic_reaction",
	"stroke_symptoms",
	"other",
}

var highRiskSymptoms = []string{
	"chest_pain", "shortness_of_breath", "unconscious", "bleeding", "trauma", "stroke_symptoms",
}

var genders = []domain.Gender{domain.GenderMale, domain.GenderFemale, domain.GenderOther}

// Generator produces simulated admission requests for demos and load
// drills. A dedicated rand source keeps runs reproducible under test.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a simulation generator from a seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds one random admission request. With forceHighRisk the
// vitals and symptoms are biased toward a high-risk classification,
// modeling an emergency spike.
func (g *Generator) Generate(forceHighRisk bool) *AdmissionRequest {
	if forceHighRisk {
		return &AdmissionRequest{
			Age:      g.intBetween(40, 85),
			Gender:   genders[g.rng.Intn(len(genders))],
			Symptoms: g.sample(highRiskSymptoms, g.intBetween(2, 4)),
			Vitals: g.clampBP(domain.VitalSigns{
				HeartRate:       g.intBetween(100, 150),
				BPSystolic:      g.intBetween(140, 190),
				BPDiastolic:     g.intBetween(85, 120),
				Temperature:     g.floatBetween(37.5, 39.5),
				SpO2:            g.intBetween(85, 94),
				RespiratoryRate: g.intBetween(22, 40),
				PainScore:       g.intBetween(7, 10),
			}),
			ChronicDiseaseCount:  g.intBetween(1, 4),
			SymptomDurationHours: g.intBetween(1, 6),
		}
	}
	return &AdmissionRequest{
		Age:      g.intBetween(5, 90),
		Gender:   genders[g.rng.Intn(len(genders))],
		Symptoms: g.sample(SymptomOptions, g.intBetween(1, 4)),
		Vitals: g.clampBP(domain.VitalSigns{
			HeartRate:       g.intBetween(55, 110),
			BPSystolic:      g.intBetween(95, 145),
			BPDiastolic:     g.intBetween(60, 95),
			Temperature:     g.floatBetween(36.2, 37.8),
			SpO2:            g.intBetween(92, 100),
			RespiratoryRate: g.intBetween(12, 20),
			PainScore:       g.intBetween(0, 5),
		}),
		ChronicDiseaseCount:  g.intBetween(0, 2),
		SymptomDurationHours: g.intBetween(12, 72),
	}
}

// clampBP keeps diastolic plausibly below systolic.
func (g *Generator) clampBP(v domain.VitalSigns) domain.VitalSigns {
	if v.BPDiastolic > v.BPSystolic-10 {
		v.BPDiastolic = v.BPSystolic - 10
	}
	return v
}

func (g *Generator) intBetween(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) floatBetween(lo, hi float64) float64 {
	v := lo + g.rng.Float64()*(hi-lo)
	return float64(int(v*10)) / 10
}

func (g *Generator) sample(options []string, n int) []string {
	if n > len(options) {
		n = len(options)
	}
	idx := g.rng.Perm(len(options))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, options[i])
	}
	return out
}
