package arsenal

import (
	"fmt"
	"strings"
)

// Category is one of the thirteen canonical silos a capability can be
// injected into.
type Category int

const (
	Architect Category = iota
	DataIntelligence
	SoftwareEngineering
	DevOpsInfrastructure
	Cybersecurity
	FinancialOps
	LegalCompliance
	ResearchDevelopment
	ExecutiveBoard
	MarketingPR
	HumanCapital
	QualityAssurance
	FacilityManagement
)

// DefaultInjectCategory is preselected for manual injection.
const DefaultInjectCategory = SoftwareEngineering

var categoryNames = [...]string{
	Architect:            "Architect",
	DataIntelligence:     "Data_Intelligence",
	SoftwareEngineering:  "Software_Engineering",
	DevOpsInfrastructure: "DevOps_Infrastructure",
	Cybersecurity:        "Cybersecurity",
	FinancialOps:         "Financial_Ops",
	LegalCompliance:      "Legal_Compliance",
	ResearchDevelopment:  "Research_Development",
	ExecutiveBoard:       "Executive_Board",
	MarketingPR:          "Marketing_PR",
	HumanCapital:         "Human_Capital",
	QualityAssurance:     "Quality_Assurance",
	FacilityManagement:   "Facility_Management",
}

func (c Category) Valid() bool {
	return c >= Architect && c <= FacilityManagement
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Label is the display form, with underscores shown as spaces.
func (c Category) Label() string {
	return strings.ReplaceAll(c.String(), "_", " ")
}

// AllCategories lists the silos in canonical order.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for i := range categoryNames {
		out = append(out, Category(i))
	}
	return out
}

// ParseCategory accepts the canonical name or its label, ignoring case.
func ParseCategory(raw string) (Category, error) {
	want := strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")
	for i, name := range categoryNames {
		if strings.EqualFold(name, want) {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", raw)
}
