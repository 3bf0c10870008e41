package models

import "time"

type Team struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;uniqueIndex:uq_team_owner_name" json:"owner_id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_team_owner_name" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TeamMember struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	TeamID    uint             `gorm:"not null;uniqueIndex:uq_team_member" json:"team_id"`
	UserID    uint             `gorm:"not null;uniqueIndex:uq_team_member;index" json:"user_id"`
	Role      string           `gorm:"type:varchar(32);not null;default:member" json:"role"`
	Status    MembershipStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
