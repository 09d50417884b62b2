package repository

import (
	"context"
	"database/sql"

	"github.com/campuspay/ms-go-billing/app/entity"
)

type ProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByStudentID returns nil when no profile row exists; vouchers render
// with placeholders in that case.
func (r *ProfileRepository) FindByStudentID(ctx context.Context, studentID uint64) (*entity.StudentProfile, error) {
	query := `
		SELECT student_id, full_name, document_number, enrollment_number, program
		FROM student_profiles
		WHERE student_id = ?
	`
	item := &entity.StudentProfile{}
	var fullName, documentNumber, enrollmentNumber, program sql.NullString

	err := dbtx(ctx, r.db).QueryRowContext(ctx, query, studentID).Scan(
		&item.StudentID,
		&fullName,
		&documentNumber,
		&enrollmentNumber,
		&program,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	item.FullName = stringPtrFromNull(fullName)
	item.DocumentNumber = stringPtrFromNull(documentNumber)
	item.EnrollmentNumber = stringPtrFromNull(enrollmentNumber)
	item.Program = stringPtrFromNull(program)
	return item, nil
}
