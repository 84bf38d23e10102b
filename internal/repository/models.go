package repository

import "time"

// User is an enrolled identity. The QR code is unique across all users
// and the stored face encoding is a JSON-serialized float vector.
// QRExpiresAt stays a raw text column so that malformed values survive
// a round trip; the resolver treats unparseable expiries as unset.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;size:128"`
	QRCode       string    `gorm:"column:qr_code;uniqueIndex;size:64"`
	FaceEncoding string    `gorm:"column:face_encoding;type:text"`
	QRExpiresAt  *string   `gorm:"column:qr_expires_at;size:32"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (User) TableName() string {
	return "users"
}

// AccessEvent is a single verification outcome in the append-only audit
// log. UserID is nil when the presented QR code resolved to nobody.
// AttemptImage holds the evidence frame and is only set on failures.
type AccessEvent struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       *uint     `gorm:"column:user_id"`
	Timestamp    time.Time `gorm:"column:timestamp;index"`
	Direction    string    `gorm:"column:direction;size:8"`
	Status       string    `gorm:"column:status;size:8"`
	ErrorCode    *string   `gorm:"column:error_code;size:32"`
	QRCode       *string   `gorm:"column:qr_code;size:64"`
	AttemptImage *string   `gorm:"column:attempt_image;type:text"`
}

// TableName overrides the default table name.
func (AccessEvent) TableName() string {
	return "access_events"
}

// AdminSetting stores the single admin credential record.
type AdminSetting struct {
	ID           uint   `gorm:"primaryKey"`
	PasswordHash string `gorm:"column:password_hash;size:128"`
}

// TableName overrides the default table name.
func (AdminSetting) TableName() string {
	return "admin_settings"
}

// Event statuses and error codes recorded in the audit log.
const (
	StatusOK   = "OK"
	StatusFail = "FAIL"

	CodeMissingData  = "MISSING_DATA"
	CodeNoBlink      = "NO_BLINK"
	CodeUnknownQR    = "UNKNOWN_QR"
	CodeQRExpired    = "QR_EXPIRED"
	CodeFaceMismatch = "FACE_MISMATCH"
)
