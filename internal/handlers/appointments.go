package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"appointment-booking-client/internal/middleware"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/utils"
)

// errRejected carries a 400 message out of a transaction.
type errRejected struct{ msg string }

func (e errRejected) Error() string { return e.msg }

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Now func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Now: time.Now}
}

// Book reserves a slot for the signed-in user.
func (h *AppointmentHandler) Book(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	var req models.BookRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appt models.AppointmentRecord
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		slot, err := claimSlot(tx, req.SlotID, "This slot is no longer available")
		if err != nil {
			return err
		}
		appt = models.AppointmentRecord{UserID: userID, SlotID: slot.ID, Notes: req.Notes, Status: models.StatusPending}
		return tx.Create(&appt).Error
	})
	if h.fail(c, err) {
		return
	}
	h.respond(c, http.StatusCreated, appt)
}

// Mine lists the signed-in user's appointments, newest first.
func (h *AppointmentHandler) Mine(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	h.list(c, h.DB.Where("user_id = ?", userID))
}

// All lists every appointment for the admin board.
func (h *AppointmentHandler) All(c *gin.Context) {
	h.list(c, h.DB)
}

// Cancel marks the user's appointment rejected and frees its slot.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		appt, err := findAppointment(tx, id)
		if err != nil {
			return err
		}
		if appt.UserID != userID {
			return errRejected{"Not authorized to cancel this appointment"}
		}
		if appt.Status == models.StatusRejected {
			return errRejected{"Appointment is already rejected"}
		}
		if err := tx.Model(&appt).Update("status", models.StatusRejected).Error; err != nil {
			return err
		}
		return releaseSlot(tx, appt.SlotID)
	})
	if h.fail(c, err) {
		return
	}
	utils.NoContent(c)
}

// Reschedule moves the user's appointment onto a new slot and back to PENDING.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appt models.AppointmentRecord
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = findAppointment(tx, id)
		if err != nil {
			return err
		}
		if appt.UserID != userID {
			return errRejected{"Not authorized to reschedule this appointment"}
		}
		if appt.Status == models.StatusRejected || appt.Status == models.StatusCompleted {
			return errRejected{"Cannot reschedule a rejected or completed appointment"}
		}
		slot, err := claimSlot(tx, req.NewSlotID, "The selected slot is no longer available")
		if err != nil {
			return err
		}
		if err := releaseSlot(tx, appt.SlotID); err != nil {
			return err
		}
		appt.SlotID = slot.ID
		appt.Status = models.StatusPending
		return tx.Save(&appt).Error
	})
	if h.fail(c, err) {
		return
	}
	h.respond(c, http.StatusOK, appt)
}

// UpdateStatus is the admin approval action. Rejecting frees the slot.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req models.StatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		utils.BadRequest(c, "Status must be APPROVED or REJECTED")
		return
	}

	var appt models.AppointmentRecord
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = findAppointment(tx, id)
		if err != nil {
			return err
		}
		appt.Status = req.Status
		if err := tx.Save(&appt).Error; err != nil {
			return err
		}
		if req.Status == models.StatusRejected {
			return releaseSlot(tx, appt.SlotID)
		}
		return nil
	})
	if h.fail(c, err) {
		return
	}
	h.respond(c, http.StatusOK, appt)
}

func (h *AppointmentHandler) respond(c *gin.Context, status int, rec models.AppointmentRecord) {
	out, err := h.toAppointments([]models.AppointmentRecord{rec})
	if err != nil {
		utils.InternalServerError(c, "Failed to load appointment: "+err.Error())
		return
	}
	c.JSON(status, out[0])
}

func (h *AppointmentHandler) list(c *gin.Context, q *gorm.DB) {
	var records []models.AppointmentRecord
	if err := q.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to load appointments: "+err.Error())
		return
	}
	out, err := h.toAppointments(records)
	if err != nil {
		utils.InternalServerError(c, "Failed to load appointments: "+err.Error())
		return
	}
	utils.Success(c, out)
}

// fail writes the response for err and reports whether there was one.
func (h *AppointmentHandler) fail(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var (
		rejected errRejected
		missing  errNotFound
	)
	switch {
	case errors.As(err, &rejected):
		utils.BadRequest(c, rejected.msg)
	case errors.As(err, &missing):
		utils.NotFound(c, string(missing))
	default:
		utils.InternalServerError(c, "Database error: "+err.Error())
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(c, "Invalid appointment id")
		return 0, false
	}
	return id, true
}

func findAppointment(tx *gorm.DB, id int64) (models.AppointmentRecord, error) {
	var appt models.AppointmentRecord
	if err := tx.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appt, errNotFound("Appointment not found with id: " + strconv.FormatInt(id, 10))
		}
		return appt, err
	}
	return appt, nil
}

// claimSlot marks a slot taken, refusing one that is already held by an
// active appointment.
func claimSlot(tx *gorm.DB, slotID int64, takenMsg string) (models.SlotRecord, error) {
	var slot models.SlotRecord
	if err := tx.First(&slot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slot, errNotFound("Slot not found with id: " + strconv.FormatInt(slotID, 10))
		}
		return slot, err
	}
	var active int64
	if err := tx.Model(&models.AppointmentRecord{}).
		Where("slot_id = ? AND status IN ?", slotID, []models.AppointmentStatus{models.StatusPending, models.StatusApproved}).
		Count(&active).Error; err != nil {
		return slot, err
	}
	if active > 0 || !slot.Available {
		return slot, errRejected{takenMsg}
	}
	res := tx.Model(&models.SlotRecord{}).Where("id = ? AND available = ?", slotID, true).Update("available", false)
	if res.Error != nil {
		return slot, res.Error
	}
	if res.RowsAffected == 0 {
		return slot, errRejected{takenMsg}
	}
	slot.Available = false
	return slot, nil
}

func releaseSlot(tx *gorm.DB, slotID int64) error {
	return tx.Model(&models.SlotRecord{}).Where("id = ?", slotID).Update("available", true).Error
}

// toAppointments builds wire appointments, reporting PENDING and APPROVED
// appointments whose slot has ended as COMPLETED and persisting that.
func (h *AppointmentHandler) toAppointments(records []models.AppointmentRecord) ([]models.Appointment, error) {
	names, err := serviceNames(h.DB)
	if err != nil {
		return nil, err
	}
	now := h.Now()
	today := now.Format("2006-01-02")
	clock := now.Format("15:04:05")

	out := make([]models.Appointment, 0, len(records))
	for _, r := range records {
		var slot models.SlotRecord
		if err := h.DB.First(&slot, r.SlotID).Error; err != nil {
			return nil, err
		}
		var doctor models.DoctorRecord
		if err := h.DB.First(&doctor, slot.DoctorID).Error; err != nil {
			return nil, err
		}
		var user models.UserRecord
		if err := h.DB.First(&user, r.UserID).Error; err != nil {
			return nil, err
		}

		if r.Status == models.StatusPending || r.Status == models.StatusApproved {
			if slot.SlotDate < today || (slot.SlotDate == today && slot.EndTime < clock) {
				r.Status = models.StatusCompleted
				if err := h.DB.Model(&models.AppointmentRecord{}).Where("id = ?", r.ID).
					Update("status", models.StatusCompleted).Error; err != nil {
					return nil, err
				}
			}
		}

		createdAt := r.CreatedAt
		out = append(out, models.Appointment{
			ID:          r.ID,
			UserID:      user.ID,
			UserName:    user.Name,
			UserEmail:   user.Email,
			SlotID:      slot.ID,
			ServiceID:   doctor.ServiceID,
			DoctorID:    doctor.ID,
			ServiceName: names[doctor.ServiceID],
			DoctorName:  doctor.Name,
			SlotDate:    slot.SlotDate,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Status:      r.Status,
			CreatedAt:   &createdAt,
		})
	}
	return out, nil
}

type errNotFound string

func (e errNotFound) Error() string { return string(e) }
