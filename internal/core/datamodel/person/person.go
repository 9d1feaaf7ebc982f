package person

import "time"

type Person struct {
	ID             int64      `gorm:"primaryKey"`
	FullName       string     `gorm:"column:full_name;size:255;not null;index"`
	AcdcEmail      *string    `gorm:"column:acdc_email;size:254;uniqueIndex"`
	PersonalEmail  *string    `gorm:"column:personal_email;size:254;uniqueIndex"`
	Phone          *string    `gorm:"column:phone;size:30"`
	Department     string     `gorm:"column:department;size:255;not null;index"`
	Subteam        *string    `gorm:"column:subteam;size:255"`
	Position       *string    `gorm:"column:position;size:50"`
	Status         string     `gorm:"column:status;size:20;not null;default:active;index"`
	TimeCommitment *int       `gorm:"column:time_commitment"`
	Timezone       *string    `gorm:"column:timezone;size:100"`
	ReportsTo      *string    `gorm:"column:reports_to;size:255"`
	StartDate      time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate        *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Person) TableName() string {
	return "people"
}
