package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gapindang/rapor-api/model"
	"github.com/gapindang/rapor-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSchoolYear(); err != nil {
		return fmt.Errorf("failed to seed school year: %w", err)
	}

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	if err := s.SeedDemoClass(); err != nil {
		return fmt.Errorf("failed to seed demo class: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        "admin@sekolah.sch.id",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Created default admin user:", admin.Email)
	return nil
}

// SeedSchoolYear creates the current active school year
func (s *Seeder) SeedSchoolYear() error {
	var count int64
	if err := s.db.Model(&model.SchoolYear{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("School years already exist, skipping")
		return nil
	}

	year := model.SchoolYear{
		Label:     "2024/2025",
		Semester:  model.SemesterGanjil,
		StartDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}

	if err := s.db.Create(&year).Error; err != nil {
		return err
	}

	log.Println("Created active school year:", year.Label)
	return nil
}

// SeedSubjects creates the core curriculum subjects
func (s *Seeder) SeedSubjects() error {
	var count int64
	if err := s.db.Model(&model.Subject{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Subjects already exist, skipping")
		return nil
	}

	subjects := []model.Subject{
		{Name: "Matematika", Code: "MAT"},
		{Name: "Bahasa Indonesia", Code: "IND"},
		{Name: "Bahasa Inggris", Code: "ENG"},
		{Name: "Ilmu Pengetahuan Alam", Code: "IPA"},
		{Name: "Ilmu Pengetahuan Sosial", Code: "IPS"},
		{Name: "Pendidikan Jasmani", Code: "PJOK"},
	}

	for _, subject := range subjects {
		if err := s.db.Create(&subject).Error; err != nil {
			return err
		}
	}

	log.Printf("Created %d subjects", len(subjects))
	return nil
}

// SeedDemoClass creates a homeroom teacher, a class, and two enrolled
// students so a fresh install has something to render
func (s *Seeder) SeedDemoClass() error {
	if os.Getenv("SEED_DEMO_DATA") != "true" {
		return nil
	}

	var count int64
	if err := s.db.Model(&model.Class{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Classes already exist, skipping demo data")
		return nil
	}

	var year model.SchoolYear
	if err := s.db.Where("active = ?", true).First(&year).Error; err != nil {
		return err
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}

	teacher := model.User{
		Email:        "wali.xa@sekolah.sch.id",
		PasswordHash: hash,
		Name:         "Budi Santoso",
		Role:         model.RoleTeacher,
		NIP:          "197501012005011001",
	}
	if err := s.db.Create(&teacher).Error; err != nil {
		return err
	}

	class := model.Class{
		Name:              "X-A",
		GradeLevel:        10,
		SchoolYearID:      year.ID,
		HomeroomTeacherID: &teacher.ID,
	}
	if err := s.db.Create(&class).Error; err != nil {
		return err
	}

	students := []model.User{
		{Email: "ani@sekolah.sch.id", PasswordHash: hash, Name: "Ani", Role: model.RoleStudent, NISN: "1001"},
		{Email: "budi@sekolah.sch.id", PasswordHash: hash, Name: "Budi", Role: model.RoleStudent, NISN: "1002"},
	}
	for i := range students {
		if err := s.db.Create(&students[i]).Error; err != nil {
			return err
		}
		member := model.ClassMember{
			ClassID:    class.ID,
			StudentID:  students[i].ID,
			SeatNumber: i + 1,
		}
		if err := s.db.Create(&member).Error; err != nil {
			return err
		}
	}

	log.Printf("Created demo class %s with %d students", class.Name, len(students))
	return nil
}
