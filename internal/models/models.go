package models

import (
	"slices"
	"time"
)

const (
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
	RoleAdmin      = "ROLE_ADMIN"
	RoleUser       = "ROLE_USER"
)

type Role struct {
	ID   uint16 `gorm:"primaryKey;autoIncrement"            json:"id"`
	Name string `gorm:"size:24;uniqueIndex;not null"        json:"name"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserName     string    `gorm:"column:user_name;size:64;uniqueIndex;not null" json:"userName"`
	FullName     string    `gorm:"size:64;not null"                      json:"fullName"`
	Email        string    `gorm:"size:255;not null"                     json:"email"`
	PasswordHash string    `gorm:"column:password;size:60;not null"      json:"-"`
	CreatedDate  time.Time `gorm:"autoCreateTime"                        json:"createdDate"`
	Roles        []Role    `gorm:"many2many:user_roles;"                 json:"roles"`
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	return slices.Contains(u.RoleNames(), name)
}

type RefreshToken struct {
	ID         uint      `gorm:"primaryKey"                            json:"id"`
	UserID     uint      `gorm:"index;not null"                        json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE"           json:"-"`
	Token      string    `gorm:"size:32;uniqueIndex;not null"          json:"token"`
	ExpiryDate time.Time `gorm:"type:date;not null;index"              json:"expiry_date"`
}

// All lists the tables owned by this service in migration order.
func All() []any {
	return []any{&Role{}, &User{}, &RefreshToken{}}
}
