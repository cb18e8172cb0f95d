package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/triage-routing-engine/internal/domain"
	"github.com/triage-routing-engine/internal/triage"
)

// handleAdmitPatient admits one patient: classify risk, route, balance
// load, score priority, predict severity and commit to the roster.
func (s *Server) handleAdmitPatient(c *gin.Context) {
	var req triage.AdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Invalid admission payload", err.Error(), c.GetString("request_id")))
		return
	}
	if !req.Gender.IsValid() {
		c.JSON(http.StatusBadRequest, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Invalid gender category", string(req.Gender), c.GetString("request_id")))
		return
	}

	result, err := s.admissions.Admit(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrServiceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, domain.NewTriageError(
				domain.ErrCodeServiceUnavailable,
				"Risk classification service unavailable; admission rejected",
				err.Error(), c.GetString("request_id")))
			return
		}
		c.JSON(http.StatusInternalServerError, domain.NewTriageError(
			domain.ErrCodeInternalServer, "Admission failed", err.Error(), c.GetString("request_id")))
		return
	}

	c.JSON(http.StatusCreated, result)
}

// handleListPatients lists active cases. sort=priority (default) gives
// the deterministic queue order; sort=created gives admission order.
func (s *Server) handleListPatients(c *gin.Context) {
	cases := s.roster.Active()
	if c.DefaultQuery("sort", "priority") == "created" {
		sort.SliceStable(cases, func(i, j int) bool {
			return cases[i].CreatedAt.Before(cases[j].CreatedAt)
		})
	}
	c.JSON(http.StatusOK, gin.H{"patients": cases, "total": len(cases)})
}

// handleGetPatient returns one case by id.
func (s *Server) handleGetPatient(c *gin.Context) {
	id := c.Param("id")
	found, ok := s.roster.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Unknown case id", id, c.GetString("request_id")))
		return
	}
	c.JSON(http.StatusOK, found)
}

// handleDischargePatient clears a case from the active roster.
func (s *Server) handleDischargePatient(c *gin.Context) {
	id := c.Param("id")
	err := s.admissions.Discharge(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Unknown case id", id, c.GetString("request_id")))
	case errors.Is(err, domain.ErrAlreadyClosed):
		c.JSON(http.StatusConflict, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Case already discharged", id, c.GetString("request_id")))
	case err != nil:
		c.JSON(http.StatusInternalServerError, domain.NewTriageError(
			domain.ErrCodeInternalServer, "Discharge failed", err.Error(), c.GetString("request_id")))
	default:
		c.JSON(http.StatusOK, gin.H{"discharged": id})
	}
}

// handleUpdateVitals replaces a case's vitals and recomputes the queue.
func (s *Server) handleUpdateVitals(c *gin.Context) {
	id := c.Param("id")
	var vitals domain.VitalSigns
	if err := c.ShouldBindJSON(&vitals); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Invalid vitals payload", err.Error(), c.GetString("request_id")))
		return
	}
	err := s.admissions.UpdateVitals(c.Request.Context(), id, vitals)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Unknown case id", id, c.GetString("request_id")))
	case errors.Is(err, domain.ErrAlreadyClosed):
		c.JSON(http.StatusConflict, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Case already discharged", id, c.GetString("request_id")))
	case err != nil:
		c.JSON(http.StatusInternalServerError, domain.NewTriageError(
			domain.ErrCodeInternalServer, "Vitals update failed", err.Error(), c.GetString("request_id")))
	default:
		updated, _ := s.roster.Get(id)
		c.JSON(http.StatusOK, updated)
	}
}

// handleDepartmentStatus reports capacity, occupancy, load percentage
// and overload flag for every registered department.
func (s *Server) handleDepartmentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"departments": s.registry.StatusForCases(s.roster.Active()),
	})
}

// handleDashboard summarizes the active roster.
func (s *Server) handleDashboard(c *gin.Context) {
	cases := s.roster.Active()
	var high, medium, low int
	deptCounts := make(map[string]int)
	for i := range cases {
		switch cases[i].RiskTier {
		case domain.TierHigh:
			high++
		case domain.TierMedium:
			medium++
		default:
			low++
		}
		deptCounts[cases[i].RoutedDepartment]++
	}
	c.JSON(http.StatusOK, gin.H{
		"total_patients_today":    len(cases),
		"high_risk_count":         high,
		"medium_risk_count":       medium,
		"low_risk_count":          low,
		"risk_distribution":       gin.H{"high": high, "medium": medium, "low": low},
		"department_distribution": deptCounts,
	})
}

// handleListSymptoms returns the symptom options for multi-select.
func (s *Server) handleListSymptoms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symptoms": triage.SymptomOptions})
}

// handleFairness returns demographic risk matrices, parity ratios and
// the imbalance alert if one fired.
func (s *Server) handleFairness(c *gin.Context) {
	c.JSON(http.StatusOK, s.fairness.Report(s.roster.Active()))
}

type simulationAddRequest struct {
	Count          int  `json:"count"`
	EmergencySpike bool `json:"emergency_spike"`
}

// handleSimulationAdd admits simulated patients through the full
// admission pipeline.
func (s *Server) handleSimulationAdd(c *gin.Context) {
	req := simulationAddRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, domain.NewTriageError(
				domain.ErrCodeInvalidInput, "Invalid simulation payload", err.Error(), c.GetString("request_id")))
			return
		}
	}
	s.runSimulation(c, req)
}

// handleSimulationSpike admits 5 high-risk simulated patients.
func (s *Server) handleSimulationSpike(c *gin.Context) {
	s.runSimulation(c, simulationAddRequest{Count: 5, EmergencySpike: true})
}

func (s *Server) runSimulation(c *gin.Context, req simulationAddRequest) {
	count := req.Count
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}

	added := make([]triage.AdmissionResult, 0, count)
	for i := 0; i < count; i++ {
		result, err := s.admissions.Admit(c.Request.Context(), s.generator.Generate(req.EmergencySpike))
		if err != nil {
			if errors.Is(err, domain.ErrServiceUnavailable) {
				c.JSON(http.StatusServiceUnavailable, domain.NewTriageError(
					domain.ErrCodeServiceUnavailable,
					"Risk classification service unavailable; simulation aborted",
					err.Error(), c.GetString("request_id")))
				return
			}
			c.JSON(http.StatusInternalServerError, domain.NewTriageError(
				domain.ErrCodeInternalServer, "Simulation failed", err.Error(), c.GetString("request_id")))
			return
		}
		added = append(added, *result)
	}
	c.JSON(http.StatusOK, gin.H{"added": len(added), "patients": added})
}

// handleAdminPatients lists admission history with an optional risk
// filter. Falls back to the in-memory roster when no history store is
// configured.
func (s *Server) handleAdminPatients(c *gin.Context) {
	risk := c.Query("risk")
	if risk != "" && !domain.RiskTier(risk).IsValid() {
		c.JSON(http.StatusBadRequest, domain.NewTriageError(
			domain.ErrCodeInvalidInput, "Unknown risk filter", risk, c.GetString("request_id")))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if err != nil || limit < 1 {
		limit = 500
	}
	if limit > 2000 {
		limit = 2000
	}

	cases, err := s.adminCases(c, risk, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, domain.NewTriageError(
			domain.ErrCodeInternalServer, "History lookup failed", err.Error(), c.GetString("request_id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": cases, "total": len(cases)})
}

// exportColumns is the CSV export column set, in order.
var exportColumns = []string{
	"patient_id", "age", "gender", "risk_level", "confidence_score", "priority_score",
	"preferred_department", "routed_department", "routing_message", "severity_timeline",
	"estimated_wait_minutes", "heart_rate", "blood_pressure_systolic", "blood_pressure_diastolic",
	"temperature", "spo2", "chronic_disease_count", "respiratory_rate",
	"pain_score", "symptom_duration", "symptoms", "created_at",
}

// handleAdminExport downloads admission history as CSV.
func (s *Server) handleAdminExport(c *gin.Context) {
	risk := c.Query("risk")
	cases, err := s.adminCases(c, risk, 2000)
	if err != nil {
		c.JSON(http.StatusInternalServerError, domain.NewTriageError(
			domain.ErrCodeInternalServer, "History lookup failed", err.Error(), c.GetString("request_id")))
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=triage_export.csv")
	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportColumns)
	for i := range cases {
		_ = w.Write(exportRow(&cases[i]))
	}
	w.Flush()
}

func (s *Server) adminCases(c *gin.Context, risk string, limit int) ([]domain.Case, error) {
	if s.history != nil {
		return s.history.ListAdmissions(c.Request.Context(), risk, limit)
	}
	all := s.roster.All()
	out := make([]domain.Case, 0, len(all))
	for i := range all {
		if risk != "" && string(all[i].RiskTier) != risk {
			continue
		}
		out = append(out, all[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func exportRow(c *domain.Case) []string {
	return []string{
		c.ID,
		strconv.Itoa(c.Age),
		string(c.Gender),
		string(c.RiskTier),
		fmt.Sprintf("%.1f", c.Confidence),
		strconv.Itoa(c.PriorityScore),
		c.PreferredDepartment,
		c.RoutedDepartment,
		c.RoutingMessage,
		c.SeverityTimeline,
		strconv.Itoa(c.EstimatedWaitMinutes),
		strconv.Itoa(c.Vitals.HeartRate),
		strconv.Itoa(c.Vitals.BPSystolic),
		strconv.Itoa(c.Vitals.BPDiastolic),
		fmt.Sprintf("%.1f", c.Vitals.Temperature),
		strconv.Itoa(c.Vitals.SpO2),
		strconv.Itoa(c.ChronicDiseaseCount),
		strconv.Itoa(c.Vitals.RespiratoryRate),
		strconv.Itoa(c.Vitals.PainScore),
		strconv.Itoa(c.SymptomDurationHours),
		strings.Join(c.Symptoms, ","),
		c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
