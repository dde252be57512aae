package models

// PersonalInfoPatch is a partial update to PersonalInfo. Nil fields are
// left untouched.
type PersonalInfoPatch struct {
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	Email                *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone                *string `json:"phone,omitempty"`
	Address              *string `json:"address,omitempty"`
	Parish               *string `json:"parish,omitempty"`
	IdentificationType   *string `json:"identification_type,omitempty"`
	IdentificationNumber *string `json:"identification_number,omitempty"`
	TRN                  *string `json:"trn,omitempty"`
	DateOfBirth          *string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EmergencyContact     *string `json:"emergency_contact,omitempty"`
}

// Apply merges the patch into pi.
func (p *PersonalInfoPatch) Apply(pi *PersonalInfo) {
	setString(&pi.FirstName, p.FirstName)
	setString(&pi.LastName, p.LastName)
	setString(&pi.Email, p.Email)
	setString(&pi.Phone, p.Phone)
	setString(&pi.Address, p.Address)
	setString(&pi.Parish, p.Parish)
	setString(&pi.IdentificationType, p.IdentificationType)
	setString(&pi.IdentificationNumber, p.IdentificationNumber)
	setString(&pi.TRN, p.TRN)
	setString(&pi.DateOfBirth, p.DateOfBirth)
	setString(&pi.EmergencyContact, p.EmergencyContact)
}

// ProjectDetailsPatch is a partial update to ProjectDetails. Nil fields are
// left untouched.
type ProjectDetailsPatch struct {
	ProjectTitle            *string        `json:"project_title,omitempty"`
	ProjectDescription      *string        `json:"project_description,omitempty"`
	ProjectLocation         *string        `json:"project_location,omitempty"`
	ProjectDuration         *int           `json:"project_duration,omitempty" validate:"omitempty,min=1,max=365"`
	StartDate               *string        `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate                 *string        `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UrgencyLevel            *UrgencyLevel  `json:"urgency_level,omitempty" validate:"omitempty,oneof=standard expedited emergency"`
	TrafficImpact           *TrafficImpact `json:"traffic_impact,omitempty" validate:"omitempty,oneof=minimal moderate significant major"`
	WorkSchedule            *WorkSchedule  `json:"work_schedule,omitempty" validate:"omitempty,oneof=business-hours extended-hours night-work weekend-work"`
	EnvironmentalAssessment *bool          `json:"environmental_assessment,omitempty"`
	HeritageSite            *bool          `json:"heritage_site,omitempty"`
}

// Apply merges the patch into pd.
func (p *ProjectDetailsPatch) Apply(pd *ProjectDetails) {
	setString(&pd.ProjectTitle, p.ProjectTitle)
	setString(&pd.ProjectDescription, p.ProjectDescription)
	setString(&pd.ProjectLocation, p.ProjectLocation)
	if p.ProjectDuration != nil {
		pd.ProjectDuration = *p.ProjectDuration
	}
	setString(&pd.StartDate, p.StartDate)
	setString(&pd.EndDate, p.EndDate)
	if p.UrgencyLevel != nil {
		pd.UrgencyLevel = *p.UrgencyLevel
	}
	if p.TrafficImpact != nil {
		pd.TrafficImpact = *p.TrafficImpact
	}
	if p.WorkSchedule != nil {
		pd.WorkSchedule = *p.WorkSchedule
	}
	if p.EnvironmentalAssessment != nil {
		pd.EnvironmentalAssessment = *p.EnvironmentalAssessment
	}
	if p.HeritageSite != nil {
		pd.HeritageSite = *p.HeritageSite
	}
}

// StepPatch carries a partial update for exactly one step's data slice.
// The populated section must match the step being updated.
type StepPatch struct {
	ApplicationTypeID *string              `json:"application_type_id,omitempty"`
	PersonalInfo      *PersonalInfoPatch   `json:"personal_info,omitempty"`
	ProjectDetails    *ProjectDetailsPatch `json:"project_details,omitempty"`
	Documents         *[]DocumentRef       `json:"documents,omitempty"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
