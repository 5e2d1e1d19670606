package repository

import (
	"turnsync/internal/model"

	"gorm.io/gorm"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Save(run *model.HostRun) error {
	return r.db.Save(run).Error
}

func (r *RunRepository) GetRecent(limit int) ([]model.HostRun, error) {
	var runs []model.HostRun
	return runs, r.db.Order("triggered_at desc").Limit(limit).Find(&runs).Error
}

func (r *RunRepository) GetByGame(game string) ([]model.HostRun, error) {
	var runs []model.HostRun
	return runs, r.db.Where("game = ?", game).Order("triggered_at desc").Find(&runs).Error
}
