package repository

import (
	"errors"

	"school_lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository struct {
	DB *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{DB: db}
}

// Get returns the stored value for a key, or "" with no error when the key
// does not exist.
func (r *ConfigRepository) Get(key string) (string, error) {
	var c model.Config
	if err := r.DB.First(&c, "`key` = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return c.Value, nil
}

func (r *ConfigRepository) Set(key, value string) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.Config{Key: key, Value: value}).Error
}

// EnsureDefault seeds a key with a value only if it is absent. Run at
// migration time so reads never have to initialize state.
func (r *ConfigRepository) EnsureDefault(key, value string) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&model.Config{Key: key, Value: value}).Error
}
