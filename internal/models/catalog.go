package models

// Service is an immutable catalog item (a specialty).
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Doctor belongs to exactly one Service.
type Doctor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	ServiceID   int64  `json:"serviceId"`
	ServiceName string `json:"serviceName"`
}

// ServiceRecord is a stub backend service row.
type ServiceRecord struct {
	BaseModel
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255"`
}

// DoctorRecord is a stub backend doctor row.
type DoctorRecord struct {
	BaseModel
	Name             string `gorm:"size:100;not null"`
	Title            string `gorm:"size:20"`
	ServiceID        int64  `gorm:"index;not null"`
	WeekdaySlotCount int
	WeekendSlotCount int
}
