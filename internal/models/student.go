package models

// Gender enumerates the demographic attribute used by the grouping fitness.
type Gender string

const (
	GenderMale         Gender = "MALE"
	GenderFemale       Gender = "FEMALE"
	GenderNotSpecified Gender = "NOT_SPECIFIED"
)

// Student is a value type; equality is structural, so Student works directly
// as a map key.
type Student struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    Gender `json:"gender"`
	Age       int    `json:"age"`
	Major     string `json:"major"`
}

// FullName joins first and last name for display and export.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
