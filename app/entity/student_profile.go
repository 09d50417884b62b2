package entity

// StudentProfile carries the enrollment data printed on vouchers. Profiles
// are provisioned by the enrollment workflow; this service only reads them
// and tolerates their absence.
type StudentProfile struct {
	StudentID        uint64
	FullName         *string
	DocumentNumber   *string
	EnrollmentNumber *string
	Program          *string
}
