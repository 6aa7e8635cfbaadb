package domain

import "github.com/google/uuid"

// Document is a rendered report ready to stream to a client.
type Document struct {
	ID       uuid.UUID
	Filename string
	MIME     string
	Data     []byte
}
