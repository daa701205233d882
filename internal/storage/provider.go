// Package storage defines the attachment blob-store abstraction.
package storage

// Blob describes a stored attachment.
type Blob struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Provider is the interface for owner-scoped attachment storage.
type Provider interface {
	// List returns every attachment of the owner.
	List(ownerID string) ([]Blob, error)
	// Path returns the absolute on-disk path of an attachment, for serving.
	Path(ownerID, name string) (string, error)
	// Write atomically stores content under the owner's directory.
	Write(ownerID, name string, content []byte) error
	// Delete removes the owner's attachment.
	Delete(ownerID, name string) error
}
