package models

// Slot is a fixed doctor/date/time-range unit. Available=false means an
// appointment currently occupies it.
type Slot struct {
	ID          int64  `json:"id"`
	DoctorID    int64  `json:"doctorId"`
	DoctorName  string `json:"doctorName,omitempty"`
	ServiceID   int64  `json:"serviceId,omitempty"`
	ServiceName string `json:"serviceName,omitempty"`
	SlotDate    string `json:"slotDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Available   bool   `json:"available"`
}

// SlotRequest is the admin body for adding a slot.
type SlotRequest struct {
	DoctorID  int64  `json:"doctorId" binding:"required,gt=0" validate:"required,gt=0"`
	SlotDate  string `json:"slotDate" binding:"required,datetime=2006-01-02" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required" validate:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required" validate:"required,hhmm"`
}

// SlotRecord is a stub backend slot row.
type SlotRecord struct {
	BaseModel
	DoctorID  int64  `gorm:"index:idx_slot_doctor_date;not null"`
	SlotDate  string `gorm:"size:10;index:idx_slot_doctor_date;not null"`
	StartTime string `gorm:"size:8;not null"`
	EndTime   string `gorm:"size:8;not null"`
	Available bool   `gorm:"default:true"`
}

// HHMM returns the hour:minute prefix of a wire time ("09:30:00" -> "09:30").
func HHMM(t string) string {
	if len(t) < 5 {
		return t
	}
	return t[:5]
}
