package repositories

import (
	"gorm.io/gorm"
)

// BaseRepository carries the shared gorm handle repositories embed.
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}
