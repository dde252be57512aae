// Package validation holds the per-step rule tables that gate wizard
// progression. Everything here is pure: rules read a state snapshot and
// return field->message maps, they never mutate and never return errors.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"permitdesk/internal/wizard/models"
)

const dateLayout = "2006-01-02"

var (
	nonDigits = regexp.MustCompile(`\D`)

	// Jamaican numbers: optional +1 country code, 876 area code, 7 digits,
	// separators allowed between groups.
	phonePattern = regexp.MustCompile(`^(\+?1[-.\s]?)?\(?876\)?[-.\s]?\d{3}[-.\s]?\d{4}$`)
)

// Step evaluates the rules for one wizard step against a state snapshot.
// An empty map means the step passes. now anchors the "start date not in
// the past" rule.
func Step(step int, st *models.ApplicationState, now time.Time) map[string]string {
	switch step {
	case models.StepApplicationType:
		return applicationTypeRules(st)
	case models.StepPersonalInfo:
		return personalInfoRules(st.PersonalInfo)
	case models.StepProjectDetails:
		return projectDetailsRules(st.ProjectDetails, now)
	case models.StepDocuments:
		return documentRules(st.Documents)
	case models.StepReview:
		// Review has no rules of its own; submission re-runs steps 1-3.
		return map[string]string{}
	default:
		return map[string]string{}
	}
}

func applicationTypeRules(st *models.ApplicationState) map[string]string {
	errs := map[string]string{}
	if st.ApplicationType == nil {
		errs["application_type"] = "select an application type"
	}
	return errs
}

func personalInfoRules(pi models.PersonalInfo) map[string]string {
	errs := map[string]string{}

	required := []struct {
		field, value, label string
	}{
		{"first_name", pi.FirstName, "first name"},
		{"last_name", pi.LastName, "last name"},
		{"email", pi.Email, "email"},
		{"phone", pi.Phone, "phone"},
		{"address", pi.Address, "address"},
		{"parish", pi.Parish, "parish"},
		{"identification_type", pi.IdentificationType, "identification type"},
		{"identification_number", pi.IdentificationNumber, "identification number"},
		{"trn", pi.TRN, "TRN"},
		{"date_of_birth", pi.DateOfBirth, "date of birth"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.field] = fmt.Sprintf("%s is required", r.label)
		}
	}

	if _, ok := errs["trn"]; !ok {
		if len(nonDigits.ReplaceAllString(pi.TRN, "")) != 9 {
			errs["trn"] = "TRN must be exactly 9 digits"
		}
	}
	if _, ok := errs["phone"]; !ok {
		if !phonePattern.MatchString(strings.TrimSpace(pi.Phone)) {
			errs["phone"] = "phone must be a valid Jamaican number (876 prefix)"
		}
	}
	return errs
}

func projectDetailsRules(pd models.ProjectDetails, now time.Time) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(pd.ProjectTitle) == "" {
		errs["project_title"] = "project title is required"
	}
	if strings.TrimSpace(pd.ProjectDescription) == "" {
		errs["project_description"] = "project description is required"
	}
	if strings.TrimSpace(pd.ProjectLocation) == "" {
		errs["project_location"] = "project location is required"
	}
	if pd.ProjectDuration == 0 {
		errs["project_duration"] = "project duration is required"
	} else if pd.ProjectDuration < 1 || pd.ProjectDuration > 365 {
		errs["project_duration"] = "project duration must be between 1 and 365 days"
	}
	if pd.WorkSchedule == "" {
		errs["work_schedule"] = "work schedule is required"
	}
	if pd.TrafficImpact == "" {
		errs["traffic_impact"] = "traffic impact is required"
	}

	start, startErr := time.Parse(dateLayout, pd.StartDate)
	if pd.StartDate == "" {
		errs["start_date"] = "start date is required"
	} else if startErr != nil {
		errs["start_date"] = "start date must be a valid date"
	}
	end, endErr := time.Parse(dateLayout, pd.EndDate)
	if pd.EndDate == "" {
		errs["end_date"] = "end date is required"
	} else if endErr != nil {
		errs["end_date"] = "end date must be a valid date"
	}

	if startErr == nil && pd.StartDate != "" {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if start.Before(today) {
			errs["start_date"] = "start date cannot be in the past"
		}
	}
	if startErr == nil && endErr == nil && pd.StartDate != "" && pd.EndDate != "" {
		if end.Before(start) {
			errs["end_date"] = "end date must be on or after the start date"
		}
	}
	return errs
}

func documentRules(docs []models.DocumentRef) map[string]string {
	errs := map[string]string{}
	if len(docs) == 0 {
		errs["documents"] = "upload at least one supporting document"
	}
	return errs
}
