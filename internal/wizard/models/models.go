package models

import "time"

// Wizard steps, in order. Forward transitions are validator-gated; backward
// moves and explicit jumps are unconditional.
const (
	StepApplicationType = 0
	StepPersonalInfo    = 1
	StepProjectDetails  = 2
	StepDocuments       = 3
	StepReview          = 4

	TotalSteps = 5
)

// Money is an amount in whole Jamaican dollars. Every computed fee line is
// rounded to a whole unit at the point it is created, so fractional cents
// never appear anywhere in the system.
type Money int64

// UrgencyLevel selects the flat urgency surcharge.
type UrgencyLevel string

const (
	UrgencyStandard  UrgencyLevel = "standard"
	UrgencyExpedited UrgencyLevel = "expedited"
	UrgencyEmergency UrgencyLevel = "emergency"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyStandard, UrgencyExpedited, UrgencyEmergency:
		return true
	}
	return false
}

// TrafficImpact selects the multiplicative traffic surcharge.
type TrafficImpact string

const (
	TrafficMinimal     TrafficImpact = "minimal"
	TrafficModerate    TrafficImpact = "moderate"
	TrafficSignificant TrafficImpact = "significant"
	TrafficMajor       TrafficImpact = "major"
)

func (t TrafficImpact) Valid() bool {
	switch t {
	case TrafficMinimal, TrafficModerate, TrafficSignificant, TrafficMajor:
		return true
	}
	return false
}

// WorkSchedule selects the multiplicative schedule surcharge.
type WorkSchedule string

const (
	ScheduleBusinessHours WorkSchedule = "business-hours"
	ScheduleExtendedHours WorkSchedule = "extended-hours"
	ScheduleNightWork     WorkSchedule = "night-work"
	ScheduleWeekendWork   WorkSchedule = "weekend-work"
)

func (ws WorkSchedule) Valid() bool {
	switch ws {
	case ScheduleBusinessHours, ScheduleExtendedHours, ScheduleNightWork, ScheduleWeekendWork:
		return true
	}
	return false
}

// ApplicationType is an immutable catalog entry describing one service the
// citizen can apply for.
type ApplicationType struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	CategoryID        string   `json:"category_id"`
	BaseFee           Money    `json:"base_fee"`
	ProcessingTime    string   `json:"processing_time"`
	RequiredDocuments []string `json:"required_documents"`
}

// PersonalInfo holds the applicant's identity fields. There are no
// cross-field invariants, only per-field format rules enforced by the
// step validator.
type PersonalInfo struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	Parish               string `json:"parish"`
	IdentificationType   string `json:"identification_type"`
	IdentificationNumber string `json:"identification_number"`
	TRN                  string `json:"trn"`
	DateOfBirth          string `json:"date_of_birth"`
	EmergencyContact     string `json:"emergency_contact,omitempty"`
}

// ProjectDetails describes the work being applied for. Dates are ISO
// calendar dates (2006-01-02).
type ProjectDetails struct {
	ProjectTitle            string        `json:"project_title"`
	ProjectDescription      string        `json:"project_description"`
	ProjectLocation         string        `json:"project_location"`
	ProjectDuration         int           `json:"project_duration"`
	StartDate               string        `json:"start_date"`
	EndDate                 string        `json:"end_date"`
	UrgencyLevel            UrgencyLevel  `json:"urgency_level"`
	TrafficImpact           TrafficImpact `json:"traffic_impact"`
	WorkSchedule            WorkSchedule  `json:"work_schedule"`
	EnvironmentalAssessment bool          `json:"environmental_assessment,omitempty"`
	HeritageSite            bool          `json:"heritage_site,omitempty"`
}

// DocumentRef points at an uploaded document. The wizard only cares about
// count and labels; content lives in the external upload store.
type DocumentRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// FeeLineKind drives display grouping of a fee line. It never influences
// the computation itself.
type FeeLineKind string

const (
	FeeLineBase       FeeLineKind = "base"
	FeeLineSurcharge  FeeLineKind = "surcharge"
	FeeLineFixed      FeeLineKind = "fixed"
	FeeLineProcessing FeeLineKind = "processing"
	FeeLineTax        FeeLineKind = "tax"
)

// FeeLineItem is one row of the fee breakdown.
type FeeLineItem struct {
	Label  string      `json:"label"`
	Amount Money       `json:"amount"`
	Kind   FeeLineKind `json:"kind"`
}

// FeeBreakdown is the ordered list of fee lines plus the compounded total.
// It is derived state: always recomputed, never hand-edited.
type FeeBreakdown struct {
	Items    []FeeLineItem `json:"items"`
	Total    Money         `json:"total"`
	Currency string        `json:"currency"`
}

// ApplicationState is the aggregate root for one in-progress application.
// The wizard service is the only component that mutates it; everything else
// receives copies.
type ApplicationState struct {
	CurrentStep      int               `json:"current_step"`
	ApplicationType  *ApplicationType  `json:"application_type,omitempty"`
	PersonalInfo     PersonalInfo      `json:"personal_info"`
	ProjectDetails   ProjectDetails    `json:"project_details"`
	Documents        []DocumentRef     `json:"documents,omitempty"`
	FeeBreakdown     *FeeBreakdown     `json:"fee_breakdown,omitempty"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
	LastSavedAt      *time.Time        `json:"last_saved_at,omitempty"`

	// Calculating is a runtime-only flag: a fee recomputation has been
	// dispatched and its result has not yet been applied. Never persisted.
	Calculating bool `json:"calculating"`

	// Submitted marks the aggregate terminal. Never persisted; a submitted
	// application has no draft.
	Submitted bool `json:"-"`

	// CapturedAt is the moment this snapshot was taken from the live
	// aggregate. Runtime-only; the draft persister orders saves by it so a
	// snapshot that lands late can never clobber a newer draft.
	CapturedAt time.Time `json:"-"`
}

// HasData reports whether the applicant has entered anything worth saving.
func (st *ApplicationState) HasData() bool {
	return st.ApplicationType != nil ||
		st.PersonalInfo != (PersonalInfo{}) ||
		st.ProjectDetails != (ProjectDetails{}) ||
		len(st.Documents) > 0 ||
		st.CurrentStep > 0
}

// Clone returns a deep copy safe to hand outside the owning service.
func (st *ApplicationState) Clone() ApplicationState {
	out := *st
	if st.ApplicationType != nil {
		at := *st.ApplicationType
		at.RequiredDocuments = append([]string(nil), st.ApplicationType.RequiredDocuments...)
		out.ApplicationType = &at
	}
	if st.Documents != nil {
		out.Documents = append([]DocumentRef(nil), st.Documents...)
	}
	if st.FeeBreakdown != nil {
		bd := *st.FeeBreakdown
		bd.Items = append([]FeeLineItem(nil), st.FeeBreakdown.Items...)
		out.FeeBreakdown = &bd
	}
	if st.ValidationErrors != nil {
		errs := make(map[string]string, len(st.ValidationErrors))
		for k, v := range st.ValidationErrors {
			errs[k] = v
		}
		out.ValidationErrors = errs
	}
	if st.LastSavedAt != nil {
		ts := *st.LastSavedAt
		out.LastSavedAt = &ts
	}
	return out
}
