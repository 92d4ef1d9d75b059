package models

import "time"

// Media is a stored proof-of-payment attachment. Ref is the stable
// reference embedded in top-up requests; the byte storage behind it is
// the attachment resolver's concern.
type Media struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Ref         string `gorm:"uniqueIndex;not null" json:"ref"`
	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	UploadedBy  uint   `gorm:"index" json:"uploaded_by"`
	CreatedAt   time.Time
}
