package models

// The application-type catalog is fixed: the citizen picks exactly one entry
// at step 0 and the fee engine looks base fees up here. Base fees are whole
// JMD amounts.
var catalog = []ApplicationType{
	{
		ID:             "road-permit",
		Name:           "Road Works Permit",
		CategoryID:     "infrastructure",
		BaseFee:        2500,
		ProcessingTime: "10-15 business days",
		RequiredDocuments: []string{
			"National ID",
			"Proof of Address",
			"Site Plan",
			"Traffic Management Plan",
		},
	},
	{
		ID:             "event-permit",
		Name:           "Public Event Permit",
		CategoryID:     "events",
		BaseFee:        1500,
		ProcessingTime: "5-10 business days",
		RequiredDocuments: []string{
			"National ID",
			"Event Proposal",
			"Venue Approval Letter",
		},
	},
	{
		ID:             "utility-permit",
		Name:           "Utility Installation Permit",
		CategoryID:     "infrastructure",
		BaseFee:        3000,
		ProcessingTime: "15-20 business days",
		RequiredDocuments: []string{
			"National ID",
			"Utility Company Authorization",
			"Site Plan",
		},
	},
	{
		ID:             "building-permit",
		Name:           "Building Alteration Permit",
		CategoryID:     "construction",
		BaseFee:        5000,
		ProcessingTime: "20-30 business days",
		RequiredDocuments: []string{
			"National ID",
			"Proof of Ownership",
			"Architectural Drawings",
			"Structural Assessment",
		},
	},
	{
		ID:             "maintenance-request",
		Name:           "Road Maintenance Request",
		CategoryID:     "maintenance",
		BaseFee:        0,
		ProcessingTime: "30-45 business days",
		RequiredDocuments: []string{
			"National ID",
			"Photographs of Defect",
		},
	},
}

// Catalog returns a copy of every application type, in display order.
func Catalog() []ApplicationType {
	out := make([]ApplicationType, len(catalog))
	for i, at := range catalog {
		c := at
		c.RequiredDocuments = append([]string(nil), at.RequiredDocuments...)
		out[i] = c
	}
	return out
}

// LookupApplicationType finds a catalog entry by ID. The returned value is a
// copy; callers may keep it.
func LookupApplicationType(id string) (ApplicationType, bool) {
	for _, at := range catalog {
		if at.ID == id {
			c := at
			c.RequiredDocuments = append([]string(nil), at.RequiredDocuments...)
			return c, true
		}
	}
	return ApplicationType{}, false
}

// Parishes lists Jamaica's administrative divisions accepted in the
// applicant's address.
var Parishes = []string{
	"Kingston",
	"St. Andrew",
	"St. Thomas",
	"Portland",
	"St. Mary",
	"St. Ann",
	"Trelawny",
	"St. James",
	"Hanover",
	"Westmoreland",
	"St. Elizabeth",
	"Manchester",
	"Clarendon",
	"St. Catherine",
}
