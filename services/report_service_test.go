package services

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/gapindang/rapor-api/model"
)

func TestPassStatus(t *testing.T) {
	tests := []struct {
		average float64
		want    string
	}{
		{70, StatusLulus},
		{70.01, StatusLulus},
		{100, StatusLulus},
		{69.99, StatusTidakLulus},
		{0, StatusTidakLulus},
	}
	for _, tt := range tests {
		if got := PassStatus(tt.average); got != tt.want {
			t.Errorf("PassStatus(%v) = %q, want %q", tt.average, got, tt.want)
		}
	}
}

func TestCanAccessReportCardData(t *testing.T) {
	homeroomID := uint(10)
	rc := &model.ReportCard{
		StudentID: 42,
		Class: model.Class{
			HomeroomTeacherID: &homeroomID,
		},
	}

	tests := []struct {
		name   string
		caller *model.User
		want   bool
	}{
		{"admin always", &model.User{ID: 1, Role: model.RoleAdmin}, true},
		{"homeroom teacher", &model.User{ID: 10, Role: model.RoleTeacher}, true},
		{"other teacher", &model.User{ID: 11, Role: model.RoleTeacher}, false},
		{"own record", &model.User{ID: 42, Role: model.RoleStudent}, true},
		{"another student", &model.User{ID: 43, Role: model.RoleStudent}, false},
		{"unknown role", &model.User{ID: 1, Role: "guest"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessReportCardData(tt.caller, rc); got != tt.want {
				t.Errorf("access = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAccessReportCardDataNoHomeroom(t *testing.T) {
	rc := &model.ReportCard{StudentID: 42, Class: model.Class{}}
	teacher := &model.User{ID: 10, Role: model.RoleTeacher}
	if CanAccessReportCardData(teacher, rc) {
		t.Error("teacher must not access a class without homeroom binding")
	}
}

// The view is the single source every renderer reads. Serializing it to
// JSON and back must not lose or alter a field.
func TestReportCardViewJSONRoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	view := ReportCardView{
		StudentID:   7,
		StudentName: "Ani Yudhoyono",
		NISN:        "1001",
		ClassName:   "X-A",
		SchoolYear:  "2024/2025",
		Semester:    "Ganjil",
		Grades: []SubjectGradeView{
			{SubjectName: "Matematika", TeacherName: "Budi Santoso", UTS: fp(80), UAS: fp(75), Final: fp(77.5), Comment: "Baik"},
			{SubjectName: "Fisika", TeacherName: "Budi Santoso", UTS: nil, UAS: fp(90), Final: fp(90)},
		},
		Average:   77.5,
		HasGrades: true,
		Status:    StatusLulus,
		Personality: &PersonalityView{
			TypeCode:        "INTJ",
			Description:     "Perencana strategis",
			Strengths:       []string{"analitis", "mandiri"},
			LearningStyle:   "visual",
			Recommendations: []string{"belajar terstruktur"},
		},
		HomeroomComment:     "Pertahankan prestasi",
		HomeroomTeacherName: "Siti Aminah",
		HomeroomTeacherNIP:  "197001011995032001",
		IssuedAt:            &issued,
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ReportCardView
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(view, decoded) {
		t.Errorf("round trip changed the view:\n got %+v\nwant %+v", decoded, view)
	}
}

func TestDecodeStringList(t *testing.T) {
	if got := decodeStringList([]byte(`["a","b"]`)); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("decodeStringList = %v", got)
	}
	if got := decodeStringList(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := decodeStringList([]byte(`not json`)); got != nil {
		t.Errorf("expected nil for malformed input, got %v", got)
	}
}
