package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey" db:"id"`
	Username     string     `gorm:"column:username;size:150;uniqueIndex;not null" db:"username"`
	Email        string     `gorm:"column:email;size:254;uniqueIndex;not null" db:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" db:"password_hash"`
	FirstName    string     `gorm:"column:first_name;size:150" db:"first_name"`
	LastName     string     `gorm:"column:last_name;size:150" db:"last_name"`
	IsStaff      bool       `gorm:"column:is_staff;default:false" db:"is_staff"`
	IsSuperuser  bool       `gorm:"column:is_superuser;default:false" db:"is_superuser"`
	IsActive     bool       `gorm:"column:is_active;default:true" db:"is_active"`
	DateJoined   time.Time  `gorm:"column:date_joined;autoCreateTime" db:"date_joined"`
	LastLogin    *time.Time `gorm:"column:last_login" db:"last_login"`
}

func (User) TableName() string {
	return "users"
}

type Group struct {
	ID   int64  `gorm:"primaryKey" db:"id"`
	Name string `gorm:"column:name;size:150;uniqueIndex;not null" db:"name"`
}

func (Group) TableName() string {
	return "groups"
}

// UserGroup keeps membership order through its own id so the first HR group a
// user joined stays their reported role.
type UserGroup struct {
	ID      int64 `gorm:"primaryKey" db:"id"`
	UserID  int64 `gorm:"column:user_id;not null;uniqueIndex:idx_user_groups_user_group" db:"user_id"`
	GroupID int64 `gorm:"column:group_id;not null;uniqueIndex:idx_user_groups_user_group" db:"group_id"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
