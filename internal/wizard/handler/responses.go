package handler

import (
	"time"

	"permitdesk/internal/submit"
	"permitdesk/internal/wizard/models"
)

// StateResponse is the full aggregate snapshot the UI renders from.
type StateResponse struct {
	CurrentStep      int                     `json:"current_step"`
	TotalSteps       int                     `json:"total_steps"`
	ApplicationType  *models.ApplicationType `json:"application_type,omitempty"`
	PersonalInfo     models.PersonalInfo     `json:"personal_info"`
	ProjectDetails   models.ProjectDetails   `json:"project_details"`
	Documents        []models.DocumentRef    `json:"documents,omitempty"`
	FeeBreakdown     *models.FeeBreakdown    `json:"fee_breakdown,omitempty"`
	ValidationErrors map[string]string       `json:"validation_errors,omitempty"`
	LastSavedAt      *time.Time              `json:"last_saved_at,omitempty"`
	Calculating      bool                    `json:"calculating"`
}

func toStateResponse(st models.ApplicationState) StateResponse {
	return StateResponse{
		CurrentStep:      st.CurrentStep,
		TotalSteps:       models.TotalSteps,
		ApplicationType:  st.ApplicationType,
		PersonalInfo:     st.PersonalInfo,
		ProjectDetails:   st.ProjectDetails,
		Documents:        st.Documents,
		FeeBreakdown:     st.FeeBreakdown,
		ValidationErrors: st.ValidationErrors,
		LastSavedAt:      st.LastSavedAt,
		Calculating:      st.Calculating,
	}
}

// NavResponse reports a navigation outcome. A populated validation_errors
// map means the step did not change.
type NavResponse struct {
	Step             int               `json:"step"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

// CatalogResponse lists the fixed choices the UI offers.
type CatalogResponse struct {
	ApplicationTypes []models.ApplicationType `json:"application_types"`
	Parishes         []string                 `json:"parishes"`
}

// SubmitResponse wraps the submission receipt.
type SubmitResponse struct {
	Receipt submit.Receipt `json:"receipt"`
}

// LanguageResponse carries the persisted language preference.
type LanguageResponse struct {
	Language string `json:"language"`
}
