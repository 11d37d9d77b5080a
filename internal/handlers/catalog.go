package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/utils"
)

// CatalogHandler serves the read-only service and doctor lists.
type CatalogHandler struct {
	DB *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	var records []models.ServiceRecord
	if err := h.DB.Order("id").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to load services: "+err.Error())
		return
	}
	out := make([]models.Service, 0, len(records))
	for _, r := range records {
		out = append(out, models.Service{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	utils.Success(c, out)
}

func (h *CatalogHandler) ListDoctors(c *gin.Context) {
	h.listDoctors(c, h.DB)
}

func (h *CatalogHandler) DoctorsByService(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("serviceId"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid service id")
		return
	}
	h.listDoctors(c, h.DB.Where("service_id = ?", serviceID))
}

func (h *CatalogHandler) listDoctors(c *gin.Context, q *gorm.DB) {
	var records []models.DoctorRecord
	if err := q.Order("id").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to load doctors: "+err.Error())
		return
	}
	names, err := serviceNames(h.DB)
	if err != nil {
		utils.InternalServerError(c, "Failed to load services: "+err.Error())
		return
	}
	out := make([]models.Doctor, 0, len(records))
	for _, r := range records {
		out = append(out, toDoctor(r, names))
	}
	utils.Success(c, out)
}

func serviceNames(db *gorm.DB) (map[int64]string, error) {
	var services []models.ServiceRecord
	if err := db.Find(&services).Error; err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(services))
	for _, s := range services {
		names[s.ID] = s.Name
	}
	return names, nil
}

func toDoctor(r models.DoctorRecord, serviceNames map[int64]string) models.Doctor {
	return models.Doctor{
		ID:          r.ID,
		Name:        r.Name,
		Title:       r.Title,
		ServiceID:   r.ServiceID,
		ServiceName: serviceNames[r.ServiceID],
	}
}
