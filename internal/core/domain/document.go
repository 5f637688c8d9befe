package domain

import (
	"strings"
	"time"
)

// DocumentType is the closed set of identity document labels the classifier
// may produce. Anything outside the set maps to TypeUnknown, never an error.
type DocumentType string

const (
	TypePassport      DocumentType = "passport"
	TypeDriverLicense DocumentType = "driver_license"
	TypeEADCard       DocumentType = "ead_card"
	TypeUnknown       DocumentType = "unknown"
)

// KnownDocumentTypes lists the labels the classification prompt offers the
// model. TypeUnknown is deliberately absent: it is the fallback, not a choice.
var KnownDocumentTypes = []DocumentType{TypePassport, TypeDriverLicense, TypeEADCard}

// ParseDocumentType maps a raw model reply to a DocumentType. The mapping is
// total: replies are trimmed and lowercased, and any reply outside the known
// set (empty, multi-word, explanatory prose) becomes TypeUnknown.
func ParseDocumentType(raw string) DocumentType {
	label := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range KnownDocumentTypes {
		if label == string(t) {
			return t
		}
	}
	return TypeUnknown
}

type Document struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	DocType     DocumentType `json:"document_type"`
	UploadedAt  time.Time    `json:"uploaded_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Field is one extracted or corrected key/value pair belonging to a document.
// Values are always strings at the persistence boundary.
type Field struct {
	DocumentID string    `json:"document_id"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	Corrected  bool      `json:"corrected"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FieldMap holds extracted document content keyed by field name.
type FieldMap map[string]string

// RawOutputKey is the reserved field key under which unstructured model
// output is stored when no structured fields could be recovered.
const RawOutputKey = "raw_output"
