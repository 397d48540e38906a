package class

import (
	"strconv"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/utils/response"
	"github.com/gapindang/rapor-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ClassHandler handles class administration
type ClassHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewClassHandler creates a new class handler
func NewClassHandler(db *gorm.DB, validator *validation.Validator) *ClassHandler {
	return &ClassHandler{db: db, validator: validator}
}

// CreateClassRequest represents a new class
type CreateClassRequest struct {
	Name         string `json:"name" validate:"required"` // e.g. "X-A"
	GradeLevel   int    `json:"grade_level" validate:"required,min=1,max=12"`
	SchoolYearID uint   `json:"school_year_id" validate:"required"`
}

// UpdateClassRequest represents class field updates
type UpdateClassRequest struct {
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
}

// AssignHomeroomRequest binds a homeroom teacher to a class
type AssignHomeroomRequest struct {
	TeacherID uint `json:"teacher_id" validate:"required"`
}

// AddMemberRequest enrolls a student into a class
type AddMemberRequest struct {
	StudentID  uint `json:"student_id" validate:"required"`
	SeatNumber int  `json:"seat_number" validate:"required,min=1"`
}

// Create registers a new class under a school year
// POST /classes
func (h *ClassHandler) Create(c *fiber.Ctx) error {
	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var year model.SchoolYear
	if err := h.db.First(&year, req.SchoolYearID).Error; err != nil {
		return response.NotFound(c, "School year not found")
	}

	class := model.Class{
		Name:         validation.SanitizeString(req.Name),
		GradeLevel:   req.GradeLevel,
		SchoolYearID: req.SchoolYearID,
	}
	if err := h.db.Create(&class).Error; err != nil {
		return response.InternalServerError(c, "Failed to create class")
	}

	return response.Created(c, class)
}

// List returns classes, optionally filtered by school year
// GET /classes?school_year_id=
func (h *ClassHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&model.Class{}).Preload("HomeroomTeacher")

	if yearStr := c.Query("school_year_id"); yearStr != "" {
		yearID, err := strconv.ParseUint(yearStr, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid school year ID")
		}
		query = query.Where("school_year_id = ?", yearID)
	}

	var classes []model.Class
	if err := query.Order("grade_level asc, name asc").Find(&classes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch classes")
	}
	return response.Success(c, classes)
}

// Get returns one class with its homeroom teacher and member roster
// GET /classes/:id
func (h *ClassHandler) Get(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	var class model.Class
	if err := h.db.Preload("HomeroomTeacher").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("class_members.seat_number asc")
		}).
		Preload("Members.Student").
		First(&class, classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Class not found")
		}
		return response.InternalServerError(c, "Failed to fetch class")
	}

	return response.Success(c, class)
}

// Update changes class name or grade level
// PUT /classes/:id
func (h *ClassHandler) Update(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	var req UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var class model.Class
	if err := h.db.First(&class, classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Class not found")
		}
		return response.InternalServerError(c, "Failed to fetch class")
	}

	if req.Name != "" {
		class.Name = validation.SanitizeString(req.Name)
	}
	if req.GradeLevel > 0 {
		class.GradeLevel = req.GradeLevel
	}

	if err := h.db.Save(&class).Error; err != nil {
		return response.InternalServerError(c, "Failed to update class")
	}
	return response.Success(c, class)
}

// AssignHomeroom sets the homeroom (wali kelas) teacher of a class
// PUT /classes/:id/homeroom
func (h *ClassHandler) AssignHomeroom(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	var req AssignHomeroomRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var teacher model.User
	if err := h.db.First(&teacher, req.TeacherID).Error; err != nil {
		return response.NotFound(c, "Teacher not found")
	}
	if !teacher.IsTeacher() {
		return response.BadRequest(c, "Homeroom must be a teacher account")
	}

	var class model.Class
	if err := h.db.First(&class, classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Class not found")
		}
		return response.InternalServerError(c, "Failed to fetch class")
	}

	class.HomeroomTeacherID = &teacher.ID
	if err := h.db.Save(&class).Error; err != nil {
		return response.InternalServerError(c, "Failed to assign homeroom teacher")
	}

	class.HomeroomTeacher = &teacher
	return response.Success(c, class)
}

// AddMember enrolls a student into the class with a seat number
// POST /classes/:id/members
func (h *ClassHandler) AddMember(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	var req AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	var class model.Class
	if err := h.db.First(&class, classID).Error; err != nil {
		return response.NotFound(c, "Class not found")
	}

	var student model.User
	if err := h.db.First(&student, req.StudentID).Error; err != nil {
		return response.NotFound(c, "Student not found")
	}
	if !student.IsStudent() {
		return response.BadRequest(c, "Only student accounts can be class members")
	}

	// One class per student within a school year
	var count int64
	h.db.Model(&model.ClassMember{}).
		Joins("JOIN classes ON classes.id = class_members.class_id").
		Where("class_members.student_id = ? AND classes.school_year_id = ?", req.StudentID, class.SchoolYearID).
		Count(&count)
	if count > 0 {
		return response.Conflict(c, "Student is already enrolled in a class this school year")
	}

	member := model.ClassMember{
		ClassID:    uint(classID),
		StudentID:  req.StudentID,
		SeatNumber: req.SeatNumber,
	}
	if err := h.db.Create(&member).Error; err != nil {
		return response.InternalServerError(c, "Failed to enroll student")
	}

	return response.Created(c, member)
}

// RemoveMember removes a student from the class roster
// DELETE /classes/:id/members/:studentID
func (h *ClassHandler) RemoveMember(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}
	studentID, err := strconv.ParseUint(c.Params("studentID"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	result := h.db.Where("class_id = ? AND student_id = ?", classID, studentID).
		Delete(&model.ClassMember{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to remove student")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Student is not a member of this class")
	}

	return response.Success(c, fiber.Map{
		"message": "Student removed from class",
	})
}

// Delete removes an empty class
// DELETE /classes/:id
func (h *ClassHandler) Delete(c *fiber.Ctx) error {
	classID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid class ID")
	}

	var memberCount int64
	h.db.Model(&model.ClassMember{}).Where("class_id = ?", classID).Count(&memberCount)
	if memberCount > 0 {
		return response.Conflict(c, "Class still has enrolled students")
	}

	result := h.db.Delete(&model.Class{}, classID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete class")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Class not found")
	}

	return response.Success(c, fiber.Map{
		"message": "Class deleted successfully",
	})
}
