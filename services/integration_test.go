package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gapindang/rapor-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupIntegrationDB connects to the test database. These tests need a
// running PostgreSQL instance and are skipped by default.
func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	sslMode := os.Getenv("DB_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{}, &model.SchoolYear{}, &model.Class{}, &model.ClassMember{},
		&model.Subject{}, &model.TeachingAssignment{}, &model.Grade{},
		&model.ReportCard{}, &model.PersonalityResult{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

// testFixtures creates a minimal school: an active year, a class with a
// homeroom teacher, one enrolled student, one subject, and a teaching
// assignment binding them together.
type testFixtures struct {
	year     *model.SchoolYear
	class    *model.Class
	homeroom *model.User
	other    *model.User
	student  *model.User
	subject  *model.Subject
}

func createFixtures(t *testing.T, db *gorm.DB) *testFixtures {
	t.Helper()
	suffix := time.Now().UnixNano()

	homeroom := &model.User{
		Email: fmt.Sprintf("wali-%d@test.local", suffix),
		Name:  "Wali Kelas", Role: model.RoleTeacher, NIP: "197001011995032001",
		PasswordHash: "x",
	}
	other := &model.User{
		Email: fmt.Sprintf("guru-%d@test.local", suffix),
		Name:  "Guru Lain", Role: model.RoleTeacher, NIP: "197001011995032002",
		PasswordHash: "x",
	}
	student := &model.User{
		Email: fmt.Sprintf("siswa-%d@test.local", suffix),
		Name:  "Ani", Role: model.RoleStudent, NISN: "1001",
		PasswordHash: "x",
	}
	for _, u := range []*model.User{homeroom, other, student} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("create user: %v", err)
		}
		t.Cleanup(func() { db.Unscoped().Delete(u) })
	}

	year := &model.SchoolYear{
		Label: fmt.Sprintf("TA-%d", suffix), Semester: model.SemesterGanjil,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 6, 0), Active: true,
	}
	if err := db.Create(year).Error; err != nil {
		t.Fatalf("create school year: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(year) })

	class := &model.Class{
		Name: "X-A", GradeLevel: 10, SchoolYearID: year.ID,
		HomeroomTeacherID: &homeroom.ID,
	}
	if err := db.Create(class).Error; err != nil {
		t.Fatalf("create class: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(class) })

	member := &model.ClassMember{ClassID: class.ID, StudentID: student.ID, SeatNumber: 1}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("enroll student: %v", err)
	}
	t.Cleanup(func() {
		db.Where("class_id = ? AND student_id = ?", class.ID, student.ID).Delete(&model.ClassMember{})
	})

	subject := &model.Subject{Name: "Matematika", Code: fmt.Sprintf("MAT%d", suffix%100000)}
	if err := db.Create(subject).Error; err != nil {
		t.Fatalf("create subject: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(subject) })

	assignment := &model.TeachingAssignment{
		TeacherID: homeroom.ID, SubjectID: subject.ID,
		ClassID: class.ID, SchoolYearID: year.ID,
	}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(assignment) })

	return &testFixtures{
		year: year, class: class, homeroom: homeroom,
		other: other, student: student, subject: subject,
	}
}

func TestGradeUpsertAuthorization(t *testing.T) {
	db := setupIntegrationDB(t)
	fx := createFixtures(t, db)
	svc := NewGradeService(db)
	ctx := context.Background()

	// An unassigned teacher is rejected
	_, err := svc.UpsertGrade(ctx, UpsertGradeRequest{
		TeacherID: fx.other.ID, StudentID: fx.student.ID,
		SubjectID: fx.subject.ID, ClassID: fx.class.ID, SchoolYearID: fx.year.ID,
		UTS: fp(80),
	})
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("unassigned teacher: got %v, want ErrNotAssigned", err)
	}

	// The assigned teacher writes, writes again, and still owns one row
	for _, uas := range []*float64{nil, fp(75)} {
		_, err = svc.UpsertGrade(ctx, UpsertGradeRequest{
			TeacherID: fx.homeroom.ID, StudentID: fx.student.ID,
			SubjectID: fx.subject.ID, ClassID: fx.class.ID, SchoolYearID: fx.year.ID,
			UTS: fp(80), UAS: uas,
		})
		if err != nil {
			t.Fatalf("assigned teacher upsert: %v", err)
		}
	}
	t.Cleanup(func() {
		db.Unscoped().Where("student_id = ?", fx.student.ID).Delete(&model.Grade{})
	})

	var count int64
	db.Model(&model.Grade{}).
		Where("student_id = ? AND subject_id = ? AND school_year_id = ?", fx.student.ID, fx.subject.ID, fx.year.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("grade rows = %d, want 1 after double upsert", count)
	}

	var grade model.Grade
	db.Where("student_id = ? AND subject_id = ?", fx.student.ID, fx.subject.ID).First(&grade)
	if grade.Final == nil || *grade.Final != 77.5 {
		t.Errorf("final = %v, want 77.5", grade.Final)
	}
}

func TestReportCardFlow(t *testing.T) {
	db := setupIntegrationDB(t)
	fx := createFixtures(t, db)
	ctx := context.Background()

	grades := NewGradeService(db)
	years := NewSchoolYearService(db)
	reports := NewReportService(db, years)

	_, err := grades.UpsertGrade(ctx, UpsertGradeRequest{
		TeacherID: fx.homeroom.ID, StudentID: fx.student.ID,
		SubjectID: fx.subject.ID, ClassID: fx.class.ID, SchoolYearID: fx.year.ID,
		UTS: fp(80), UAS: fp(75), Comment: "Baik",
	})
	if err != nil {
		t.Fatalf("upsert grade: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("student_id = ?", fx.student.ID).Delete(&model.Grade{})
	})

	// A non-homeroom teacher may not write the report card
	_, err = reports.UpsertReportCard(ctx, fx.other, UpsertReportCardRequest{
		StudentID: fx.student.ID, SchoolYearID: fx.year.ID, ClassID: fx.class.ID,
	})
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("other teacher: got %v, want ErrNotAssigned", err)
	}

	rc, err := reports.UpsertReportCard(ctx, fx.homeroom, UpsertReportCardRequest{
		StudentID: fx.student.ID, SchoolYearID: fx.year.ID, ClassID: fx.class.ID,
		HomeroomComment: "Pertahankan",
	})
	if err != nil {
		t.Fatalf("homeroom upsert: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(rc) })

	if rc.Average != 77.5 {
		t.Errorf("stored average = %v, want 77.5", rc.Average)
	}

	// Access: admin and homeroom pass, the other teacher does not
	admin := &model.User{Role: model.RoleAdmin}
	for _, tc := range []struct {
		caller *model.User
		want   bool
	}{
		{admin, true},
		{fx.homeroom, true},
		{fx.other, false},
		{fx.student, true},
	} {
		allowed, _, err := reports.CanAccessReportCard(ctx, tc.caller, rc.ID)
		if err != nil {
			t.Fatalf("access check: %v", err)
		}
		if allowed != tc.want {
			t.Errorf("access for role %s = %v, want %v", tc.caller.Role, allowed, tc.want)
		}
	}

	view, err := reports.BuildViewByReportID(ctx, rc.ID)
	if err != nil {
		t.Fatalf("build view: %v", err)
	}
	if view.StudentName != "Ani" || view.ClassName != "X-A" || view.Average != 77.5 {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Status != StatusLulus {
		t.Errorf("status = %q, want %q", view.Status, StatusLulus)
	}
	if view.HomeroomTeacherName != "Wali Kelas" {
		t.Errorf("homeroom name = %q", view.HomeroomTeacherName)
	}
}

func TestPersonalityWriteOnce(t *testing.T) {
	db := setupIntegrationDB(t)
	fx := createFixtures(t, db)
	svc := NewPersonalityService(db)
	ctx := context.Background()

	req := SubmitRequest{
		StudentID: fx.student.ID, TypeCode: "INTJ",
		Description: "Perencana", Strengths: []string{"analitis"},
	}

	if _, err := svc.Submit(ctx, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Where("student_id = ?", fx.student.ID).Delete(&model.PersonalityResult{})
	})

	if _, err := svc.Submit(ctx, req); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit: got %v, want ErrAlreadySubmitted", err)
	}

	// The admin reset clears the row and reopens submission
	if err := svc.Reset(ctx, fx.student.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Submit(ctx, req); err != nil {
		t.Fatalf("submit after reset: %v", err)
	}
}

func TestSchoolYearSingleActive(t *testing.T) {
	db := setupIntegrationDB(t)
	fx := createFixtures(t, db)
	svc := NewSchoolYearService(db)
	ctx := context.Background()

	second := &model.SchoolYear{
		Label: fx.year.Label + "-2", Semester: model.SemesterGenap,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 6, 0),
	}
	if err := db.Create(second).Error; err != nil {
		t.Fatalf("create second year: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(second) })

	if _, err := svc.Activate(ctx, second.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	var activeCount int64
	db.Model(&model.SchoolYear{}).Where("active = ?", true).Count(&activeCount)
	if activeCount != 1 {
		t.Errorf("active years = %d, want exactly 1", activeCount)
	}

	active, err := svc.ActiveSchoolYear(ctx)
	if err != nil {
		t.Fatalf("active lookup: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active year = %d, want %d", active.ID, second.ID)
	}
}
