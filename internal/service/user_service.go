package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

type ProfileUpdateReq struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateReq) (*model.User, error) {
	user, err := s.Repo.FindByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Company != nil {
		user.Company = *req.Company
	}

	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	return s.Repo.List(page, limit)
}

// Touch 刷新最近活跃时间，30 天活跃学员统计依赖该字段
func (s *UserService) Touch(userID uint) {
	_ = s.Repo.UpdateLastSeen(userID)
}
