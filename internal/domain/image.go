package domain

import "time"

// Image status flags.
const (
	ImageStatusDeleted = 0
	ImageStatusNormal  = 1
)

// Image is a metadata row for an object stored in the blob bucket. The bytes
// themselves live under Key; deleting an image normally only flips Status.
type Image struct {
	ID         int64
	FileName   string
	FileSize   int64
	FileType   string
	URL        string
	Key        string
	Bucket     string
	MD5        string
	Width      int
	Height     int
	UploaderID int64
	Status     int
	Remark     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
