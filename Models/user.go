package Models

import (
	"time"

	"gorm.io/gorm"
)

// Permission levels
const (
	PermissionViewer = 1
	PermissionStaff  = 2
	PermissionDealer = 3
)

// User is a dealer or a member of a dealer's staff. Staff act on behalf of DealerID.
type User struct {
	Id         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   []byte         `json:"-"`
	Permission int            `json:"permission"`
	DealerID   uint           `json:"dealer_id" gorm:"index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Dealer returns the dealer the user works for
func (u User) Dealer() uint {
	if u.DealerID != 0 {
		return u.DealerID
	}
	return u.Id
}

// DeviceToken is a dealer's FCM registration token
type DeviceToken struct {
	gorm.Model
	UserID uint   `json:"user_id" gorm:"index;not null"`
	Value  string `json:"value" gorm:"uniqueIndex;not null"`
}
