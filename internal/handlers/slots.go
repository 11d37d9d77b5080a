package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/utils"
)

const slotLength = 30 * time.Minute

var (
	weekdayTimes = []string{"09:00:00", "10:00:00", "11:00:00", "12:00:00", "14:00:00", "15:00:00", "16:00:00"}
	weekendTimes = []string{"09:00:00", "10:00:00", "14:00:00"}
)

// SlotHandler serves slot queries and admin slot creation.
type SlotHandler struct {
	DB *gorm.DB
}

func NewSlotHandler(db *gorm.DB) *SlotHandler {
	return &SlotHandler{DB: db}
}

type slotQuery struct {
	DoctorID int64  `form:"doctorId"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// Available lists unbooked slots. Both filters are optional.
func (h *SlotHandler) Available(c *gin.Context) {
	var q slotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	db := h.DB.Where("available = ?", true)
	if q.DoctorID > 0 {
		db = db.Where("doctor_id = ?", q.DoctorID)
	}
	if q.Date != "" {
		db = db.Where("slot_date = ?", q.Date)
	}
	h.respondSlots(c, db)
}

// ByDate lists every slot of one doctor on one date, booked ones included.
func (h *SlotHandler) ByDate(c *gin.Context) {
	var q slotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return
	}
	if q.DoctorID <= 0 || q.Date == "" {
		utils.BadRequest(c, "doctorId and date are required")
		return
	}
	h.respondSlots(c, h.DB.Where("doctor_id = ? AND slot_date = ?", q.DoctorID, q.Date))
}

func (h *SlotHandler) respondSlots(c *gin.Context, q *gorm.DB) {
	var records []models.SlotRecord
	if err := q.Order("slot_date, start_time").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to load slots: "+err.Error())
		return
	}
	views, err := slotViews(h.DB, records)
	if err != nil {
		utils.InternalServerError(c, "Failed to load slots: "+err.Error())
		return
	}
	utils.Success(c, views)
}

// Create adds a slot for a doctor.
func (h *SlotHandler) Create(c *gin.Context) {
	var req models.SlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.DoctorRecord
	if err := h.DB.First(&doctor, req.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found with id: "+strconv.FormatInt(req.DoctorID, 10))
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	slot := models.SlotRecord{
		DoctorID:  doctor.ID,
		SlotDate:  req.SlotDate,
		StartTime: wireTime(req.StartTime),
		EndTime:   wireTime(req.EndTime),
		Available: true,
	}
	if err := h.DB.Create(&slot).Error; err != nil {
		utils.InternalServerError(c, "Failed to create slot: "+err.Error())
		return
	}

	views, err := slotViews(h.DB, []models.SlotRecord{slot})
	if err != nil {
		utils.InternalServerError(c, "Failed to load slot: "+err.Error())
		return
	}
	utils.Created(c, views[0])
}

// wireTime normalises "HH:MM" to "HH:MM:SS".
func wireTime(t string) string {
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}

func slotViews(db *gorm.DB, records []models.SlotRecord) ([]models.Slot, error) {
	names, err := serviceNames(db)
	if err != nil {
		return nil, err
	}
	doctors := make(map[int64]models.Doctor)
	out := make([]models.Slot, 0, len(records))
	for _, r := range records {
		d, ok := doctors[r.DoctorID]
		if !ok {
			var rec models.DoctorRecord
			if err := db.First(&rec, r.DoctorID).Error; err != nil {
				return nil, err
			}
			d = toDoctor(rec, names)
			doctors[r.DoctorID] = d
		}
		out = append(out, models.Slot{
			ID:          r.ID,
			DoctorID:    d.ID,
			DoctorName:  d.Name,
			ServiceID:   d.ServiceID,
			ServiceName: d.ServiceName,
			SlotDate:    r.SlotDate,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Available:   r.Available,
		})
	}
	return out, nil
}

// GenerateSlots creates each doctor's daily slots for daysAhead days from
// today, skipping slots that already exist.
func GenerateSlots(db *gorm.DB, today time.Time, daysAhead int) (int, error) {
	var doctors []models.DoctorRecord
	if err := db.Find(&doctors).Error; err != nil {
		return 0, err
	}

	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < daysAhead; i++ {
			day := today.AddDate(0, 0, i)
			date := day.Format("2006-01-02")
			for _, doctor := range doctors {
				for _, start := range timesForDay(day, doctor) {
					var n int64
					if err := tx.Model(&models.SlotRecord{}).
						Where("doctor_id = ? AND slot_date = ? AND start_time = ?", doctor.ID, date, start).
						Count(&n).Error; err != nil {
						return err
					}
					if n > 0 {
						continue
					}
					begin, _ := time.Parse("15:04:05", start)
					slot := models.SlotRecord{
						DoctorID:  doctor.ID,
						SlotDate:  date,
						StartTime: start,
						EndTime:   begin.Add(slotLength).Format("15:04:05"),
						Available: true,
					}
					if err := tx.Create(&slot).Error; err != nil {
						return err
					}
					created++
				}
			}
		}
		return nil
	})
	return created, err
}

func timesForDay(day time.Time, doctor models.DoctorRecord) []string {
	pool, count := weekdayTimes, doctor.WeekdaySlotCount
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		pool, count = weekendTimes, doctor.WeekendSlotCount
	}
	if count > len(pool) {
		count = len(pool)
	}
	if count < 0 {
		count = 0
	}
	return pool[:count]
}
