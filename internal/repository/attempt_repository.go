package repository

import (
	"database/sql"
	"errors"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepository is the append-only ledger of submissions. Rows are
// never updated after creation except through ApplyManualGrade.
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithQuota appends an attempt, re-validating the attempt quota
// inside the transaction. The assessment row is locked for the duration so
// two concurrent submissions for the same assessment cannot both observe
// count < maxAttempts and both insert.
func (r *AttemptRepository) CreateWithQuota(attempt *model.Attempt, maxAttempts *int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if maxAttempts != nil {
			var assessment model.Assessment
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&assessment, attempt.AssessmentID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return util.ErrAssessmentNotFound
				}
				return err
			}

			var count int64
			err = tx.Model(&model.Attempt{}).
				Where("student_id = ? AND assessment_id = ?", attempt.StudentID, attempt.AssessmentID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count >= int64(*maxAttempts) {
				return &util.QuotaExceededError{Limit: *maxAttempts}
			}
		}
		return tx.Create(attempt).Error
	})
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByStudentAndAssessment(studentID, assessmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("student_id = ? AND assessment_id = ?", studentID, assessmentID).
		Count(&count).Error
	return count, err
}

// BestScore returns the highest graded score, or nil if no attempt has
// been graded yet.
func (r *AttemptRepository) BestScore(studentID, assessmentID uint) (*int, error) {
	var best sql.NullInt64
	err := r.DB.Model(&model.Attempt{}).
		Where("student_id = ? AND assessment_id = ? AND score IS NOT NULL", studentID, assessmentID).
		Select("MAX(score)").Scan(&best).Error
	if err != nil {
		return nil, err
	}
	if !best.Valid {
		return nil, nil
	}
	v := int(best.Int64)
	return &v, nil
}

func (r *AttemptRepository) Latest(studentID, assessmentID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("student_id = ? AND assessment_id = ?", studentID, assessmentID).
		Order("submitted_at desc").First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByStudent(studentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("student_id = ?", studentID).
		Order("submitted_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByAssessment(assessmentID uint, page, limit int) ([]model.Attempt, int64, error) {
	var attempts []model.Attempt
	var total int64

	query := r.DB.Model(&model.Attempt{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Student").Order("submitted_at desc").
		Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// ApplyManualGrade attaches a teacher's score and comment to an existing
// attempt. This is the ledger's only permitted mutation; the submitted
// answers are never touched and no new attempt row is created.
func (r *AttemptRepository) ApplyManualGrade(attemptID string, score int, comment string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var attempt model.Attempt
		if err := tx.First(&attempt, "id = ?", attemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}

		var exists int64
		if err := tx.Model(&model.Assessment{}).Where("id = ?", attempt.AssessmentID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return util.ErrAssessmentNotFound
		}

		return tx.Model(&attempt).Updates(map[string]interface{}{
			"score":   score,
			"comment": comment,
		}).Error
	})
}

func (r *AttemptRepository) Delete(id string) error {
	return r.DB.Delete(&model.Attempt{}, "id = ?", id).Error
}
