package triage

import (
	"testing"
)

func TestGenerateIsReproducible(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)

	for i := 0; i < 10; i++ {
		ra := a.Generate(false)
		rb := b.Generate(false)
		if ra.Age != rb.Age || ra.Gender != rb.Gender || len(ra.Symptoms) != len(rb.Symptoms) {
			t.Fatalf("seeded generators diverged at iteration %d", i)
		}
	}
}

func TestGenerateProducesValidRequests(t *testing.T) {
	g := NewGenerator(7)
	valid := make(map[string]bool, len(SymptomOptions))
	for _, s := range SymptomOptions {
		valid[s] = true
	}

	for i := 0; i < 100; i++ {
		req := g.Generate(false)
		if req.Age < 0 || req.Age > 150 {
			t.Errorf("age %d out of range", req.Age)
		}
		if !req.Gender.IsValid() {
			t.Errorf("invalid gender %q", req.Gender)
		}
		if len(req.Symptoms) == 0 {
			t.Error("request must carry at least one symptom")
		}
		for _, s := range req.Symptoms {
			if !valid[s] {
				t.Errorf("unknown symptom code %q", s)
			}
		}
		if req.Vitals.BPDiastolic > req.Vitals.BPSystolic-10 {
			t.Errorf("implausible blood pressure %d/%d", req.Vitals.BPSystolic, req.Vitals.BPDiastolic)
		}
	}
}

func TestGenerateEmergencySpikeBias(t *testing.T) {
	g := NewGenerator(11)

	for i := 0; i < 50; i++ {
		req := g.Generate(true)
		if req.Vitals.SpO2 > 94 {
			t.Errorf("spike SpO2 %d should stay depressed", req.Vitals.SpO2)
		}
		if req.Vitals.HeartRate < 100 {
			t.Errorf("spike heart rate %d should be elevated", req.Vitals.HeartRate)
		}
		if len(req.Symptoms) < 2 {
			t.Error("spike cases should present multiple acute symptoms")
		}
	}
}
