package models

import "time"

// UploadedFile records locally stored image uploads. Files are permanent static
// assets; the row exists so uploads stay attributable to the uploading user.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	FilePath  string    `gorm:"size:1024;not null" json:"file_path"` // filesystem path
	URL       string    `gorm:"size:1024;not null" json:"url"`       // public URL like /uploads/...
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
