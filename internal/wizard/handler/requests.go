package handler

import (
	"strings"

	"permitdesk/internal/wizard/models"
	"permitdesk/pkg/validation"
)

// UpdateStepRequest carries a partial update for one step. Structural rules
// (enum membership, date format, duration bounds) are checked here at the
// transport boundary; the step validator owns completeness rules.
type UpdateStepRequest struct {
	ApplicationTypeID *string                     `json:"application_type_id,omitempty"`
	PersonalInfo      *models.PersonalInfoPatch   `json:"personal_info,omitempty"`
	ProjectDetails    *models.ProjectDetailsPatch `json:"project_details,omitempty"`
	Documents         *[]models.DocumentRef       `json:"documents,omitempty"`
}

func (r *UpdateStepRequest) Validate() error {
	return validation.Validate(r)
}

// Patch converts the request into the service-level patch.
func (r *UpdateStepRequest) Patch() models.StepPatch {
	return models.StepPatch{
		ApplicationTypeID: r.ApplicationTypeID,
		PersonalInfo:      r.PersonalInfo,
		ProjectDetails:    r.ProjectDetails,
		Documents:         r.Documents,
	}
}

// SetLanguageRequest stores the UI language preference.
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required,notblank,max=16"`
}

func (r *SetLanguageRequest) Normalize() {
	r.Language = strings.TrimSpace(r.Language)
}

func (r *SetLanguageRequest) Validate() error {
	return validation.Validate(r)
}
