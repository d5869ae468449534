package domain

import "time"

// System module tags for audit entries.
const (
	SystemUser  = "user"
	SystemImage = "image"
)

// Audit event types.
const (
	EventUserCreate  = "user_create"
	EventUserLogin   = "user_login"
	EventUserLogout  = "user_logout"
	EventUserUpdate  = "update_user"
	EventImageUpload = "upload_image"
	EventImageDelete = "delete_image"
)

// Audit object types.
const (
	ObjectNone     = "none"
	ObjectUserConf = "user_conf"
	ObjectFile     = "file"
)

// AuditEntry is an append-only record of who did what to which object.
// Entries are immutable once written; there is no update or delete path.
type AuditEntry struct {
	ID           string    `json:"id"`
	OperatorID   int64     `json:"operator_id"`
	OperatorName string    `json:"operator_name"`
	SystemID     string    `json:"system_id"`
	EventType    string    `json:"event_type"`
	ObjectType   string    `json:"object_type"`
	ObjectID     string    `json:"object_id,omitempty"`
	ObjectName   string    `json:"object_name,omitempty"`
	IPAddress    string    `json:"ip_address"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
