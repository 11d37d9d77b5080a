package handlers

import (
	"time"

	"gorm.io/gorm"

	"appointment-booking-client/internal/models"
)

const (
	SeedAdminEmail    = "admin@booking.com"
	SeedAdminPassword = "admin123"
)

type seedDoctor struct {
	name, title      string
	weekday, weekend int
}

var seedCatalog = []struct {
	name, description string
	doctors           []seedDoctor
}{
	{"General Consultation", "General health check-ups and consultations", []seedDoctor{
		{"Dr. Sarah Smith", "MD", 5, 3},
		{"Dr. James Wilson", "MD", 6, 2},
	}},
	{"Dental", "Dental care and oral health", []seedDoctor{
		{"Dr. Teresa Chevez", "MD", 5, 2},
		{"Dr. Emily Brown", "DDS", 4, 3},
	}},
	{"Physiotherapy", "Physical therapy and rehabilitation", []seedDoctor{
		{"Dr. Michael Lee", "PT", 6, 2},
		{"Dr. Anna Martinez", "PT", 4, 3},
	}},
}

// Seed inserts the admin account and the catalog into an empty database,
// then generates slots for daysAhead days starting today.
func Seed(db *gorm.DB, today time.Time, daysAhead int) error {
	var admins int64
	if err := db.Model(&models.UserRecord{}).Where("email = ?", SeedAdminEmail).Count(&admins).Error; err != nil {
		return err
	}
	if admins == 0 {
		admin := models.UserRecord{Email: SeedAdminEmail, Name: "Admin", Role: models.RoleAdmin}
		if err := admin.SetPassword(SeedAdminPassword); err != nil {
			return err
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
	}

	var services int64
	if err := db.Model(&models.ServiceRecord{}).Count(&services).Error; err != nil {
		return err
	}
	if services == 0 {
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, s := range seedCatalog {
				svc := models.ServiceRecord{Name: s.name, Description: s.description}
				if err := tx.Create(&svc).Error; err != nil {
					return err
				}
				for _, d := range s.doctors {
					doc := models.DoctorRecord{
						Name:             d.name,
						Title:            d.title,
						ServiceID:        svc.ID,
						WeekdaySlotCount: d.weekday,
						WeekendSlotCount: d.weekend,
					}
					if err := tx.Create(&doc).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	_, err := GenerateSlots(db, today, daysAhead)
	return err
}
