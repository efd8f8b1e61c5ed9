package database

import "time"

// CrashRecord is one handled crash.
type CrashRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	ReportID   string    `gorm:"uniqueIndex;size:36" json:"reportId"`
	Command    string    `gorm:"size:128" json:"command"`
	Title      string    `json:"title"`
	ReportPath string    `json:"reportPath"`
	Submitted  bool      `json:"submitted"`
}

type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}
