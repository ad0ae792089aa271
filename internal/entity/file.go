package entity

// UploadedFile is a user-supplied file as received. Size and MIMEType are the
// declared values and are validated before any processing.
type UploadedFile struct {
	Name     string
	Size     int64
	MIMEType string
	Content  []byte
}
