package repository

import (
	"school_lms_backend/internal/model"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) Create(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *SubjectRepository) FindByID(id uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.Preload("Topics", func(db *gorm.DB) *gorm.DB {
		return db.Order("topics.`order` asc")
	}).Preload("Topics.Subtopics", func(db *gorm.DB) *gorm.DB {
		return db.Order("subtopics.`order` asc")
	}).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubjectRepository) List(year int) ([]model.Subject, error) {
	var subjects []model.Subject
	query := r.DB.Model(&model.Subject{})
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	err := query.Order("name asc").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) Update(subject *model.Subject) error {
	return r.DB.Save(subject).Error
}

func (r *SubjectRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Subject{}, id).Error
}

func (r *SubjectRepository) CreateTopic(topic *model.Topic) error {
	return r.DB.Create(topic).Error
}

func (r *SubjectRepository) UpdateTopic(topic *model.Topic) error {
	return r.DB.Save(topic).Error
}

func (r *SubjectRepository) DeleteTopic(id uint) error {
	return r.DB.Delete(&model.Topic{}, id).Error
}

func (r *SubjectRepository) FindTopicByID(id uint) (*model.Topic, error) {
	var t model.Topic
	if err := r.DB.Preload("Subtopics").First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SubjectRepository) CreateSubtopic(subtopic *model.Subtopic) error {
	return r.DB.Create(subtopic).Error
}

func (r *SubjectRepository) DeleteSubtopic(id uint) error {
	return r.DB.Delete(&model.Subtopic{}, id).Error
}
