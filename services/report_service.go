package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gapindang/rapor-api/model"
	"gorm.io/gorm"
)

// PassingGrade is the minimum average that counts as a pass. Every view
// and renderer must read this constant; do not inline a threshold.
// See DESIGN.md for the 60-vs-70 decision record.
const PassingGrade = 70.0

// Pass/fail labels shown on rendered report cards
const (
	StatusLulus      = "Lulus"
	StatusTidakLulus = "Tidak Lulus"
)

// Placeholder used where an optional reference (homeroom teacher, class)
// is not assigned
const Placeholder = "-"

// SubjectGradeView is one subject row of a report card
type SubjectGradeView struct {
	SubjectName  string   `json:"subject_name"`
	TeacherName  string   `json:"teacher_name"`
	UTS          *float64 `json:"uts"`
	UAS          *float64 `json:"uas"`
	Final        *float64 `json:"final"`
	Comment      string   `json:"comment"`
	Commendation string   `json:"commendation"`
}

// PersonalityView is the personality-assessment block of a report card
type PersonalityView struct {
	TypeCode        string   `json:"type_code"`
	Description     string   `json:"description"`
	Strengths       []string `json:"strengths"`
	LearningStyle   string   `json:"learning_style"`
	Recommendations []string `json:"recommendations"`
}

// ReportCardView is the canonical, immutable report-card object every
// renderer consumes. JSON serialization of this struct is lossless.
type ReportCardView struct {
	StudentID            uint               `json:"student_id"`
	StudentName          string             `json:"student_name"`
	NISN                 string             `json:"nisn"`
	ClassName            string             `json:"class_name"`
	SchoolYear           string             `json:"school_year"`
	Semester             string             `json:"semester"` // "Ganjil" or "Genap"
	Grades               []SubjectGradeView `json:"grades"`
	Average              float64            `json:"average"`
	HasGrades            bool               `json:"has_grades"` // explicit no-data signal for renderers
	Status               string             `json:"status"`     // Lulus / Tidak Lulus
	Personality          *PersonalityView   `json:"personality"`
	HomeroomComment      string             `json:"homeroom_comment"`
	HomeroomCommendation string             `json:"homeroom_commendation"`
	HomeroomTeacherName  string             `json:"homeroom_teacher_name"`
	HomeroomTeacherNIP   string             `json:"homeroom_teacher_nip"`
	IssuedAt             *time.Time         `json:"issued_at"` // nil when no report card row exists yet
}

// PassStatus maps an average onto the pass/fail label
func PassStatus(average float64) string {
	if average >= PassingGrade {
		return StatusLulus
	}
	return StatusTidakLulus
}

// ViewOptions controls BuildView behavior per call path
type ViewOptions struct {
	// RequireReportCard makes BuildView fail with ErrReportCardNotFound
	// when no report card row exists. Administrative by-id lookups set
	// this; self-service and bulk paths tolerate the absence and render
	// a "no rapor yet" view instead.
	RequireReportCard bool
}

// ReportService is the aggregation engine: it gathers a student's grades,
// computes aggregate figures, merges personality data and homeroom
// remarks, and answers access-guard questions for report-card exports.
type ReportService struct {
	db         *gorm.DB
	schoolYear *SchoolYearService
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB, schoolYear *SchoolYearService) *ReportService {
	return &ReportService{db: db, schoolYear: schoolYear}
}

// CanAccessReportCard loads the report card (with its class) and decides
// whether the caller may read or export it. No caching: permissions can
// change between calls, so the predicate is re-evaluated per request.
func (s *ReportService) CanAccessReportCard(ctx context.Context, caller *model.User, reportCardID uint) (bool, *model.ReportCard, error) {
	var rc model.ReportCard
	err := s.db.WithContext(ctx).Preload("Class").First(&rc, reportCardID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil, ErrReportCardNotFound
		}
		return false, nil, fmt.Errorf("failed to fetch report card: %w", err)
	}
	return CanAccessReportCardData(caller, &rc), &rc, nil
}

// CanAccessReportCardData is the access predicate on already-loaded data:
// admins always pass; a teacher passes only as homeroom teacher of the
// report card's class; a student passes only for their own record.
func CanAccessReportCardData(caller *model.User, rc *model.ReportCard) bool {
	switch {
	case caller.IsAdmin():
		return true
	case caller.IsTeacher():
		return rc.Class.HomeroomTeacherID != nil && *rc.Class.HomeroomTeacherID == caller.ID
	case caller.IsStudent():
		return rc.StudentID == caller.ID
	default:
		return false
	}
}

// BuildView assembles the report-card view for one student in one school
// year and class. Missing data handling follows opts: the report card row
// is optional unless RequireReportCard is set, grades and personality may
// be absent, and a missing homeroom teacher renders as "-".
func (s *ReportService) BuildView(ctx context.Context, studentID, schoolYearID, classID uint, opts ViewOptions) (*ReportCardView, error) {
	db := s.db.WithContext(ctx)

	var student model.User
	if err := db.Where("role = ?", model.RoleStudent).First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to fetch student: %w", err)
	}

	var year model.SchoolYear
	if err := db.First(&year, schoolYearID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSchoolYearNotFound
		}
		return nil, fmt.Errorf("failed to fetch school year: %w", err)
	}

	var class model.Class
	if err := db.Preload("HomeroomTeacher").First(&class, classID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to fetch class: %w", err)
	}

	var rc *model.ReportCard
	var stored model.ReportCard
	err := db.Where("student_id = ? AND school_year_id = ?", studentID, schoolYearID).First(&stored).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if opts.RequireReportCard {
			return nil, ErrReportCardNotFound
		}
	case err != nil:
		return nil, fmt.Errorf("failed to fetch report card: %w", err)
	default:
		rc = &stored
	}

	grades, err := s.studentGrades(ctx, studentID, schoolYearID)
	if err != nil {
		return nil, err
	}

	personality, err := s.personalityResult(ctx, studentID)
	if err != nil {
		return nil, err
	}

	view := s.assembleView(&student, &class, &year, rc, grades, personality)
	return &view, nil
}

// BuildViewByReportID resolves a report card by id and builds its view.
// Used by the administrative by-id export paths, which 404 when the
// report card row is missing.
func (s *ReportService) BuildViewByReportID(ctx context.Context, reportCardID uint) (*ReportCardView, error) {
	var rc model.ReportCard
	err := s.db.WithContext(ctx).First(&rc, reportCardID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportCardNotFound
		}
		return nil, fmt.Errorf("failed to fetch report card: %w", err)
	}
	return s.BuildView(ctx, rc.StudentID, rc.SchoolYearID, rc.ClassID, ViewOptions{RequireReportCard: true})
}

// BuildViewForStudent builds the current student's own view against the
// active school year. A missing report card row is tolerated so students
// can still download a "no rapor yet" document.
func (s *ReportService) BuildViewForStudent(ctx context.Context, studentID uint) (*ReportCardView, error) {
	year, err := s.schoolYear.ActiveSchoolYear(ctx)
	if err != nil {
		return nil, err
	}

	var member model.ClassMember
	err = s.db.WithContext(ctx).
		Joins("JOIN classes ON classes.id = class_members.class_id").
		Where("class_members.student_id = ? AND classes.school_year_id = ?", studentID, year.ID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to fetch class membership: %w", err)
	}

	return s.BuildView(ctx, studentID, year.ID, member.ClassID, ViewOptions{})
}

// BuildAllViews builds one view per user with the student role against the
// active school year, left-joined against class/report/grade data so
// students without a report card still appear with placeholder values.
// Bulk exports must never silently drop a student.
func (s *ReportService) BuildAllViews(ctx context.Context) ([]ReportCardView, error) {
	db := s.db.WithContext(ctx)

	year, err := s.schoolYear.ActiveSchoolYear(ctx)
	if err != nil {
		return nil, err
	}

	var students []model.User
	if err := db.Where("role = ?", model.RoleStudent).Order("name ASC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch students: %w", err)
	}

	// Class per student for the active year
	var members []model.ClassMember
	err = db.
		Joins("JOIN classes ON classes.id = class_members.class_id").
		Where("classes.school_year_id = ?", year.ID).
		Preload("Class.HomeroomTeacher").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class memberships: %w", err)
	}
	classByStudent := make(map[uint]*model.Class, len(members))
	for i := range members {
		classByStudent[members[i].StudentID] = &members[i].Class
	}

	var reportCards []model.ReportCard
	if err := db.Where("school_year_id = ?", year.ID).Find(&reportCards).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch report cards: %w", err)
	}
	reportByStudent := make(map[uint]*model.ReportCard, len(reportCards))
	for i := range reportCards {
		reportByStudent[reportCards[i].StudentID] = &reportCards[i]
	}

	var grades []model.Grade
	err = db.
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("grades.school_year_id = ?", year.ID).
		Preload("Subject").
		Preload("Teacher").
		Order("subjects.name ASC").
		Find(&grades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grades: %w", err)
	}
	gradesByStudent := make(map[uint][]model.Grade)
	for _, g := range grades {
		gradesByStudent[g.StudentID] = append(gradesByStudent[g.StudentID], g)
	}

	var results []model.PersonalityResult
	if err := db.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch personality results: %w", err)
	}
	resultByStudent := make(map[uint]*model.PersonalityResult, len(results))
	for i := range results {
		resultByStudent[results[i].StudentID] = &results[i]
	}

	views := make([]ReportCardView, 0, len(students))
	for i := range students {
		student := &students[i]
		view := s.assembleView(
			student,
			classByStudent[student.ID],
			year,
			reportByStudent[student.ID],
			gradesByStudent[student.ID],
			resultByStudent[student.ID],
		)
		views = append(views, view)
	}

	return views, nil
}

// UpsertReportCardRequest carries the homeroom teacher's report-card write
type UpsertReportCardRequest struct {
	StudentID            uint
	SchoolYearID         uint
	ClassID              uint
	HomeroomComment      string
	HomeroomCommendation string
}

// UpsertReportCard creates or updates the report card row for a student.
// Only an admin or the homeroom teacher of the class may write it. The
// average is recomputed from the student's grades at write time.
func (s *ReportService) UpsertReportCard(ctx context.Context, caller *model.User, req UpsertReportCardRequest) (*model.ReportCard, error) {
	db := s.db.WithContext(ctx)

	var class model.Class
	if err := db.First(&class, req.ClassID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to fetch class: %w", err)
	}

	if !caller.IsAdmin() {
		if !caller.IsTeacher() || class.HomeroomTeacherID == nil || *class.HomeroomTeacherID != caller.ID {
			return nil, ErrNotAssigned
		}
	}

	var memberCount int64
	err := db.Model(&model.ClassMember{}).
		Where("class_id = ? AND student_id = ?", req.ClassID, req.StudentID).
		Count(&memberCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check class membership: %w", err)
	}
	if memberCount == 0 {
		return nil, ErrStudentNotFound
	}

	grades, err := s.studentGrades(ctx, req.StudentID, req.SchoolYearID)
	if err != nil {
		return nil, err
	}
	average, _ := MeanFinalScore(grades)

	var rc model.ReportCard
	err = db.Where("student_id = ? AND school_year_id = ?", req.StudentID, req.SchoolYearID).First(&rc).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch report card: %w", err)
	}

	rc.StudentID = req.StudentID
	rc.SchoolYearID = req.SchoolYearID
	rc.ClassID = req.ClassID
	rc.Average = average
	rc.HomeroomComment = req.HomeroomComment
	rc.HomeroomCommendation = req.HomeroomCommendation

	if err := db.Save(&rc).Error; err != nil {
		return nil, fmt.Errorf("failed to save report card: %w", err)
	}

	return &rc, nil
}

// RecomputeStaleAverages recomputes every stored report-card average for
// the given school year from the current grade rows and persists the ones
// that drifted. Returns the number of updated rows.
func (s *ReportService) RecomputeStaleAverages(ctx context.Context, schoolYearID uint) (int, error) {
	db := s.db.WithContext(ctx)

	var reportCards []model.ReportCard
	if err := db.Where("school_year_id = ?", schoolYearID).Find(&reportCards).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch report cards: %w", err)
	}

	updated := 0
	for i := range reportCards {
		rc := &reportCards[i]
		grades, err := s.studentGrades(ctx, rc.StudentID, rc.SchoolYearID)
		if err != nil {
			return updated, err
		}
		average, _ := MeanFinalScore(grades)
		if average == rc.Average {
			continue
		}
		if err := db.Model(rc).Update("average", average).Error; err != nil {
			return updated, fmt.Errorf("failed to update report card average: %w", err)
		}
		updated++
	}

	return updated, nil
}

func (s *ReportService) studentGrades(ctx context.Context, studentID, schoolYearID uint) ([]model.Grade, error) {
	var grades []model.Grade
	err := s.db.WithContext(ctx).
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("grades.student_id = ? AND grades.school_year_id = ?", studentID, schoolYearID).
		Preload("Subject").
		Preload("Teacher").
		Order("subjects.name ASC").
		Find(&grades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grades: %w", err)
	}
	return grades, nil
}

func (s *ReportService) personalityResult(ctx context.Context, studentID uint) (*model.PersonalityResult, error) {
	var result model.PersonalityResult
	err := s.db.WithContext(ctx).Where("student_id = ?", studentID).First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Not every student has tested; absent is a valid state
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch personality result: %w", err)
	}
	return &result, nil
}

// assembleView builds the view from already-loaded rows. class, rc and
// personality may be nil; grades may be empty.
func (s *ReportService) assembleView(student *model.User, class *model.Class, year *model.SchoolYear, rc *model.ReportCard, grades []model.Grade, personality *model.PersonalityResult) ReportCardView {
	view := ReportCardView{
		StudentID:           student.ID,
		StudentName:         student.Name,
		NISN:                student.NISN,
		ClassName:           Placeholder,
		SchoolYear:          year.Label,
		Semester:            year.SemesterLabel(),
		Grades:              make([]SubjectGradeView, 0, len(grades)),
		HomeroomTeacherName: Placeholder,
		HomeroomTeacherNIP:  Placeholder,
	}

	if class != nil {
		view.ClassName = class.Name
		if class.HomeroomTeacher != nil {
			view.HomeroomTeacherName = class.HomeroomTeacher.Name
			view.HomeroomTeacherNIP = class.HomeroomTeacher.NIP
		}
	}

	for _, g := range grades {
		view.Grades = append(view.Grades, SubjectGradeView{
			SubjectName:  g.Subject.Name,
			TeacherName:  g.Teacher.Name,
			UTS:          g.UTS,
			UAS:          g.UAS,
			Final:        g.Final,
			Comment:      g.Comment,
			Commendation: g.Commendation,
		})
	}
	view.HasGrades = len(grades) > 0

	if rc != nil {
		view.Average = Round2(rc.Average)
		view.HomeroomComment = rc.HomeroomComment
		view.HomeroomCommendation = rc.HomeroomCommendation
		issued := rc.CreatedAt
		view.IssuedAt = &issued
	}

	// The stored average goes stale when grades land after the homeroom
	// teacher wrote the report card. Recompute from final scores whenever
	// the stored value is zero or missing but grades exist.
	if view.Average == 0 && view.HasGrades {
		if mean, ok := MeanFinalScore(grades); ok {
			view.Average = mean
		}
	}

	view.Status = PassStatus(view.Average)

	if personality != nil {
		view.Personality = &PersonalityView{
			TypeCode:        personality.TypeCode,
			Description:     personality.Description,
			Strengths:       decodeStringList(personality.Strengths),
			LearningStyle:   personality.LearningStyle,
			Recommendations: decodeStringList(personality.Recommendations),
		}
	}

	return view
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}
