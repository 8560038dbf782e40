package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID             string             `json:"order_id"`
	Type           string             `json:"type"`
	Status         string             `json:"status"`
	AdditionalInfo string             `json:"additional_info,omitempty"`
	DueDate        *time.Time         `json:"due_date,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Patient        *PatientResponse   `json:"patient,omitempty"`
	Scans          []ScanResponse     `json:"scans,omitempty"`
	Lifecycle      *LifecycleResponse `json:"lifecycle,omitempty"`
}

type PatientResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type ScanResponse struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type OrderListResponse struct {
	Orders []OrderSummaryResponse `json:"orders"`
}

type OrderSummaryResponse struct {
	ID          string     `json:"order_id"`
	PatientName string     `json:"patient_name"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LifecycleResponse is the render state of the status progression.
// Cancelled orders carry no stages and a zero progress fraction.
type LifecycleResponse struct {
	Cancelled bool            `json:"cancelled"`
	Rank      int             `json:"rank"`
	Progress  float64         `json:"progress"`
	Stages    []StageResponse `json:"stages,omitempty"`
}

type StageResponse struct {
	Status  string `json:"status"`
	Rank    int    `json:"rank"`
	Active  bool   `json:"active"`
	Current bool   `json:"current"`
}

type DraftResponse struct {
	Step       int                  `json:"step"`
	StepName   string               `json:"step_name"`
	Type       string               `json:"type,omitempty"`
	Patient    *PatientInfoRequest  `json:"patient,omitempty"`
	Files      []StagedFileResponse `json:"files"`
	CanAdvance bool                 `json:"can_advance"`
	CanGoBack  bool                 `json:"can_go_back"`
	FinalStep  bool                 `json:"final_step"`
	Submitting bool                 `json:"submitting"`
}

type StagedFileResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type SubmitResponse struct {
	OrderID   string `json:"order_id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"`
}

type ThreadResponse struct {
	ThreadID    string    `json:"thread_id"`
	Counterpart string    `json:"counterpart"`
	LastMessage string    `json:"last_message"`
	LastSentAt  time.Time `json:"last_sent_at"`
	Unread      bool      `json:"unread"`
}

type MessageResponse struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	SenderID string    `json:"sender_id"`
	Body     string    `json:"body"`
	Mine     bool      `json:"mine"`
	SentAt   time.Time `json:"sent_at"`
}

type LearningCategoryResponse struct {
	Category  string                     `json:"category"`
	Count     int                        `json:"count"`
	Resources []LearningResourceResponse `json:"resources"`
}

type LearningResourceResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type DashboardSummaryResponse struct {
	ActiveOrders       int                    `json:"active_orders"`
	CompletedThisMonth int                    `json:"completed_this_month"`
	UpcomingDeliveries int                    `json:"upcoming_deliveries"`
	RecentOrders       []OrderSummaryResponse `json:"recent_orders"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
