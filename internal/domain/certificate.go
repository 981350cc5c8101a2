package domain

import "time"

// CertificateFields is everything printed on a certificate.
type CertificateFields struct {
	FullName      string
	CertificateID string
	EventTitle    string
	EventDate     time.Time
}

// File is a stored file handed back for download.
type File struct {
	Filename string
	Content  []byte
}

type Certificate struct {
	Filename string
	Content  []byte
}
