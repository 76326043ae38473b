package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null;column:title" json:"title"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Course) TableName() string {
	return "course"
}

type UserProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	LessonID     uuid.UUID `gorm:"type:uuid;not null" json:"lesson_id"`
	Completed    bool      `gorm:"column:completed" json:"completed"`
	WatchSeconds int       `gorm:"column:watch_seconds" json:"watch_seconds"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

type Certificate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID uuid.UUID `gorm:"type:uuid;not null" json:"course_id"`
	IssuedAt time.Time `gorm:"not null;column:issued_at" json:"issued_at"`
}

func (Certificate) TableName() string {
	return "certificate"
}
