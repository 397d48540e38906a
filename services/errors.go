package services

import "errors"

// Sentinel errors for the service layer. Handlers translate these into the
// HTTP error taxonomy: not-found variants map to 404 with a message naming
// the missing entity, ErrNotAssigned to 403, ErrAlreadySubmitted to 409.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrSchoolYearNotFound = errors.New("school year not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrReportCardNotFound = errors.New("report card not found")
	ErrResultNotFound     = errors.New("personality result not found")
	ErrNotAssigned        = errors.New("teacher is not assigned to this subject and class")
	ErrAlreadySubmitted   = errors.New("personality result already submitted")
)
