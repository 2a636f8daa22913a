package warehouse

import "time"

// TimeDay is one calendar date in the time dimension. TimeKey encodes the
// date as YYYYMMDD so the key is lossless and sortable.
type TimeDay struct {
	TimeKey       int       `gorm:"primaryKey;autoIncrement:false" csv:"time_key"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex" csv:"date"`
	Year          int       `gorm:"not null" csv:"year"`
	Quarter       int       `gorm:"not null" csv:"quarter"`
	Month         int       `gorm:"not null" csv:"month"`
	Week          int       `gorm:"not null" csv:"week"`
	DayOfWeek     int       `gorm:"not null" csv:"day_of_week"`
	IsWeekend     bool      `gorm:"not null" csv:"is_weekend"`
	IsPayday      bool      `gorm:"not null" csv:"is_payday"`
	IsMegaSaleDay bool      `gorm:"not null" csv:"is_mega_sale_day"`
}

// TableName returns the table name for GORM
func (TimeDay) TableName() string {
	return "dim_time"
}

// TimeKeyOf encodes a date into its YYYYMMDD key
func TimeKeyOf(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
