package users

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;unique;not null" json:"username"`
	Email        string    `gorm:"size:100;unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Favorite struct {
	UserID    uint `gorm:"primaryKey"`
	MovieID   uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

type WatchlistItem struct {
	UserID    uint `gorm:"primaryKey"`
	MovieID   uint `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (WatchlistItem) TableName() string { return "watchlist" }

type Rating struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	MovieID   uint      `gorm:"primaryKey" json:"movie_id"`
	Score     int       `gorm:"not null" json:"score"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
