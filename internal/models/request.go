package models

type SelectTypeRequest struct {
	// One of: crown, bridge, implant, denture, other
	Type string `json:"type" example:"crown"`
}

type PatientInfoRequest struct {
	FirstName   string `json:"first_name" example:"Jane"`
	LastName    string `json:"last_name" example:"Doe"`
	Email       string `json:"email,omitempty" example:"jane.doe@example.com"`
	Phone       string `json:"phone,omitempty" example:"+1 555 0100"`
	DateOfBirth string `json:"date_of_birth,omitempty" example:"1984-06-15"`
	// Free-text notes carried onto the order
	AdditionalInfo string `json:"additional_info,omitempty"`
	DueDate        string `json:"due_date,omitempty" example:"2026-10-01"`
}

type StageFileRequest struct {
	Name string `json:"name" example:"upper-arch.stl"`
	Size int64  `json:"size" example:"1048576"`
}

type SendMessageRequest struct {
	Body string `json:"body" example:"Can you check the latest scan I sent?"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" example:"Dr. Sarah Wilson"`
}
