// Package draft persists in-progress applications so the wizard survives
// interruption. A draft is a snapshot of the aggregate minus runtime-only
// flags; absence or a parse failure is always treated as "no draft".
package draft

import (
	"time"

	"permitdesk/internal/wizard/models"
)

// Keys in the underlying store. LanguageKey is written on behalf of the
// localization collaborator; the wizard core never reads it.
const (
	DraftKey    = "application-draft"
	LanguageKey = "language-preference"
)

const recordVersion = 1

// Record is the persisted shape of a draft. Documents are not part of the
// draft: uploads live in the external document store and are re-associated
// by the UI layer, so only their selection step survives via CurrentStep.
type Record struct {
	Version         int                   `json:"version"`
	ApplicationType string                `json:"application_type,omitempty"`
	PersonalInfo    models.PersonalInfo   `json:"personal_info"`
	ProjectDetails  models.ProjectDetails `json:"project_details"`
	CurrentStep     int                   `json:"current_step"`
	SavedAt         time.Time             `json:"saved_at"`
}

func recordFromState(st models.ApplicationState) Record {
	rec := Record{
		Version:        recordVersion,
		PersonalInfo:   st.PersonalInfo,
		ProjectDetails: st.ProjectDetails,
		CurrentStep:    st.CurrentStep,
	}
	if st.ApplicationType != nil {
		rec.ApplicationType = st.ApplicationType.ID
	}
	return rec
}

// State rebuilds an aggregate from the record. The application type is
// resolved against the current catalog; an ID that no longer exists restores
// as absent, which the step-0 validator will surface.
func (r *Record) State() models.ApplicationState {
	st := models.ApplicationState{
		PersonalInfo:   r.PersonalInfo,
		ProjectDetails: r.ProjectDetails,
		CurrentStep:    r.CurrentStep,
	}
	if st.CurrentStep < 0 || st.CurrentStep >= models.TotalSteps {
		st.CurrentStep = 0
	}
	if r.ApplicationType != "" {
		if at, ok := models.LookupApplicationType(r.ApplicationType); ok {
			st.ApplicationType = &at
		}
	}
	savedAt := r.SavedAt
	st.LastSavedAt = &savedAt
	return st
}
