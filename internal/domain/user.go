package domain

import "time"

type User struct {
	ID           UserID    `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	Username     string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_username" db:"username" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" db:"password_hash" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;index" db:"role" json:"role"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Admitted reports whether the user has been let into the system.
func (u *User) Admitted() bool { return u.Role != RolePending }
