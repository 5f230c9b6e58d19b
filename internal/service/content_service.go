package service

import (
	"context"
	"errors"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/repository"
)

// ContentService owns the subject/topic/resource CRUD shell around the
// assessment core.
type ContentService struct {
	Subjects  *repository.SubjectRepository
	Resources *repository.ResourceRepository
	Quarter   *QuarterService
}

func NewContentService(subjects *repository.SubjectRepository, resources *repository.ResourceRepository, quarter *QuarterService) *ContentService {
	return &ContentService{Subjects: subjects, Resources: resources, Quarter: quarter}
}

type SubjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Year        int    `json:"year" binding:"required"`
}

func (s *ContentService) CreateSubject(req SubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{Name: req.Name, Description: req.Description, Year: req.Year}
	if err := s.Subjects.Create(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *ContentService) GetSubject(id uint) (*model.Subject, error) {
	return s.Subjects.FindByID(id)
}

func (s *ContentService) ListSubjects(year int) ([]model.Subject, error) {
	return s.Subjects.List(year)
}

func (s *ContentService) UpdateSubject(id uint, req SubjectRequest) (*model.Subject, error) {
	subject, err := s.Subjects.FindByID(id)
	if err != nil {
		return nil, err
	}
	subject.Name = req.Name
	subject.Description = req.Description
	subject.Year = req.Year
	if err := s.Subjects.Update(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *ContentService) DeleteSubject(id uint) error {
	return s.Subjects.Delete(id)
}

type TopicRequest struct {
	SubjectID   uint   `json:"subjectId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *ContentService) CreateTopic(req TopicRequest) (*model.Topic, error) {
	topic := &model.Topic{
		SubjectID:   req.SubjectID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.Subjects.CreateTopic(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *ContentService) DeleteTopic(id uint) error {
	return s.Subjects.DeleteTopic(id)
}

type SubtopicRequest struct {
	TopicID     uint   `json:"topicId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *ContentService) CreateSubtopic(req SubtopicRequest) (*model.Subtopic, error) {
	subtopic := &model.Subtopic{
		TopicID:     req.TopicID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.Subjects.CreateSubtopic(subtopic); err != nil {
		return nil, err
	}
	return subtopic, nil
}

type ResourceRequest struct {
	Title          string             `json:"title" binding:"required"`
	Description    string             `json:"description"`
	Type           model.ResourceType `json:"type" binding:"required"`
	FileURL        string             `json:"fileUrl"`
	FileSize       int64              `json:"fileSize"`
	MimeType       string             `json:"mimeType"`
	SubjectID      uint               `json:"subjectId" binding:"required"`
	TopicID        *uint              `json:"topicId"`
	SubtopicID     *uint              `json:"subtopicId"`
	TargetAudience string             `json:"targetAudience"`
	Year           int                `json:"year" binding:"required"`
	Quarter        string             `json:"quarter"`
	AssessmentID   *uint              `json:"assessmentId"`
}

func (s *ContentService) CreateResource(creatorID uint, req ResourceRequest) (*model.Resource, error) {
	if !model.ValidResourceType(req.Type) {
		return nil, errors.New("unknown resource type")
	}
	quarter := req.Quarter
	if quarter == "" {
		quarter = model.DefaultQuarter
	}
	if !model.ValidQuarter(quarter) {
		return nil, errors.New("unknown quarter tag")
	}
	audience := req.TargetAudience
	if audience == "" {
		audience = "student"
	}

	resource := &model.Resource{
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
		FileURL:        req.FileURL,
		FileSize:       req.FileSize,
		MimeType:       req.MimeType,
		SubjectID:      req.SubjectID,
		TopicID:        req.TopicID,
		SubtopicID:     req.SubtopicID,
		TargetAudience: audience,
		Year:           req.Year,
		Quarter:        quarter,
		CreatorID:      creatorID,
		AssessmentID:   req.AssessmentID,
	}
	if err := s.Resources.Create(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *ContentService) GetResource(id uint) (*model.Resource, error) {
	return s.Resources.FindByID(id)
}

func (s *ContentService) PublishResource(id uint, publish bool) (*model.Resource, error) {
	resource, err := s.Resources.FindByID(id)
	if err != nil {
		return nil, err
	}
	resource.IsPublished = publish
	if err := s.Resources.Update(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *ContentService) DeleteResource(id uint) error {
	return s.Resources.Delete(id)
}

// ListForStudent shows published resources for the student's year scoped
// to the active quarter. This is where the quarter gate is consulted; the
// submission path never looks at it.
func (s *ContentService) ListForStudent(ctx context.Context, year int, subjectID, topicID uint, page, limit int) ([]model.Resource, int64, error) {
	quarter, err := s.Quarter.GetActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	published := true
	return s.Resources.ListFiltered(repository.ResourceFilter{
		SubjectID: subjectID,
		TopicID:   topicID,
		Year:      year,
		Quarter:   quarter,
		Published: &published,
		Audience:  "student",
	}, page, limit)
}

func (s *ContentService) ListForTeacher(f repository.ResourceFilter, page, limit int) ([]model.Resource, int64, error) {
	return s.Resources.ListFiltered(f, page, limit)
}
