package job

import (
	"errors"
	"fmt"

	"github.com/beconnected/beconnected-server/cmd/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CreateJob(title, description string, skills []string, createdBy string) (*models.Job, error) {
	job := models.Job{
		Title:       title,
		Description: description,
		Skills:      pq.StringArray(skills),
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobsByUser returns the jobs a user posted, newest first.
func (s *Service) GetJobsByUser(username string) ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.Where("created_by = ?", username).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	return jobs, err
}

func (s *Service) GetAllJobs() ([]models.Job, error) {
	var jobs []models.Job
	err := s.db.Order("created_at DESC, id DESC").Find(&jobs).Error
	return jobs, err
}

func (s *Service) DeleteJob(jobID uint, username string) error {
	var job models.Job
	if err := s.db.First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w with id %d", ErrJobNotFound, jobID)
		}
		return err
	}
	if job.CreatedBy != username {
		return errors.New("user not authorized to delete this job")
	}
	return s.db.Delete(&job).Error
}
