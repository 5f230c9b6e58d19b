package repository

import (
	"errors"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/util"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	if err := r.DB.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

type AssessmentFilter struct {
	Quarter   string
	Year      int
	SubjectID uint
	Type      string
	Published *bool
}

func (r *AssessmentRepository) List(f AssessmentFilter, page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64

	query := r.DB.Model(&model.Assessment{})
	if f.Quarter != "" {
		query = query.Where("quarter = ?", f.Quarter)
	}
	if f.Year > 0 {
		query = query.Where("year = ?", f.Year)
	}
	if f.SubjectID > 0 {
		query = query.Where("subject_id = ?", f.SubjectID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Published != nil {
		query = query.Where("is_published = ?", *f.Published)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

// Delete removes an assessment. While attempts still reference it the
// delete is refused unless cascade is set, in which case the attempts go
// with it; callers are responsible for removing any attached media first
// (see AssessmentService.DeleteAssessment).
func (r *AssessmentRepository) Delete(id uint, cascade bool) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Attempt{}).Where("assessment_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if !cascade {
				return util.ErrAttemptsReferenced
			}
			if err := tx.Where("assessment_id = ?", id).Delete(&model.Attempt{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Assessment{}, id).Error
	})
}
