package service

import (
	"errors"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/repository"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	return s.Repo.FindByID(userID)
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Class    string `json:"class"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Class != "" {
		if !model.IsValidClass(req.Class) {
			return nil, errors.New("unknown class code")
		}
		user.Class = req.Class
		user.Year = model.YearLevelFromClass(req.Class)
	}

	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListStudents(class string, year, page, limit int) ([]model.User, int64, error) {
	return s.Repo.ListStudents(class, year, page, limit)
}
