package repository

import (
	"school_lms_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) Create(resource *model.Resource) error {
	return r.DB.Create(resource).Error
}

func (r *ResourceRepository) FindByID(id uint) (*model.Resource, error) {
	var res model.Resource
	if err := r.DB.First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResourceRepository) Update(resource *model.Resource) error {
	return r.DB.Save(resource).Error
}

func (r *ResourceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Resource{}, id).Error
}

type ResourceFilter struct {
	SubjectID uint
	TopicID   uint
	Type      string
	Year      int
	Quarter   string // active quarter; empty disables quarter scoping
	Published *bool
	Audience  string
}

// ListFiltered drives the student/teacher browsing views. Students see
// published resources for their year tagged with the active quarter;
// teachers pass a nil Published and empty Quarter to see everything.
func (r *ResourceRepository) ListFiltered(f ResourceFilter, page, limit int) ([]model.Resource, int64, error) {
	var resources []model.Resource
	var total int64

	query := r.DB.Model(&model.Resource{})
	if f.SubjectID > 0 {
		query = query.Where("subject_id = ?", f.SubjectID)
	}
	if f.TopicID > 0 {
		query = query.Where("topic_id = ?", f.TopicID)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Year > 0 {
		query = query.Where("year = ?", f.Year)
	}
	if f.Quarter != "" {
		query = query.Where("quarter = ?", f.Quarter)
	}
	if f.Published != nil {
		query = query.Where("is_published = ?", *f.Published)
	}
	if f.Audience != "" {
		query = query.Where("target_audience LIKE ?", "%"+f.Audience+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&resources).Error
	return resources, total, err
}
