package models

import "unicode/utf8"

// Customer is a customer record resolved from the directory.
type Customer struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Country        string `json:"country,omitempty"`
	City           string `json:"city,omitempty"`
	Address        string `json:"address,omitempty"`
	DocumentNumber string `json:"document_number"`
	DocumentTypeID int    `json:"document_type_id"`
}

// DocumentType is one of the identity document kinds the backend accepts.
type DocumentType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CustomerQuery is the pair of inputs that drives a customer lookup.
type CustomerQuery struct {
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
}

const (
	DocumentTypeDNI = "DNI"
	DocumentTypeRUC = "RUC"
)

var documentLengths = map[string]int{
	DocumentTypeDNI: 8,
	DocumentTypeRUC: 11,
}

// RequiredLength returns the number of characters a document number must have
// before a lookup fires. Unsupported or absent types return 0.
func (q CustomerQuery) RequiredLength() int {
	return documentLengths[q.DocumentType]
}

// Ready reports whether the query is complete enough to be looked up.
func (q CustomerQuery) Ready() bool {
	required := q.RequiredLength()
	return required > 0 && utf8.RuneCountInString(q.DocumentNumber) == required
}
