package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Category identifies which result group of the control screen a record
// was listed in. The values are the labels the portal uses for the groups.
type Category string

const (
	// CategoryReceived is the group of processes received by the unit.
	CategoryReceived Category = "Recebidos"

	// CategoryGenerated is the group of processes generated by the unit.
	CategoryGenerated Category = "Gerados"
)

// Categories lists the result groups in the order they are collected.
var Categories = []Category{CategoryReceived, CategoryGenerated}

// String returns the portal label of the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether c is one of the known groups.
func (c Category) Valid() bool {
	return c == CategoryReceived || c == CategoryGenerated
}

// Record is one process listed on the control screen.
// Records are values: once extracted they are never mutated.
type Record struct {
	// Number is the canonical process number, e.g. "2024.01.0001234/2024-01".
	Number string `json:"numero_processo"`

	// Category is the result group the record was found in.
	Category Category `json:"categoria"`

	// Viewed is true when the portal marks the process as already opened.
	Viewed bool `json:"visualizado"`

	// Title is the tooltip title. Empty when the row has no tooltip.
	Title string `json:"titulo,omitempty"`

	// Type is the tooltip type/specificity text.
	Type string `json:"tipo_especificidade,omitempty"`

	// ResponsibleName is the name of the person the process is assigned to.
	ResponsibleName string `json:"responsavel_nome,omitempty"`

	// ResponsibleID is the identifier (CPF) of the assignee.
	ResponsibleID string `json:"responsavel_cpf,omitempty"`

	// Markers are the marker labels attached to the process, in row order.
	Markers []string `json:"marcadores,omitempty"`

	// HasNewDocuments is true when the row shows the new-documents icon.
	HasNewDocuments bool `json:"tem_documentos_novos"`

	// HasAnnotations is true when the row shows the annotation icon.
	HasAnnotations bool `json:"tem_anotacoes"`

	// ID is the internal identifier (id_procedimento query parameter).
	ID string `json:"id_procedimento,omitempty"`

	// Hash is the access token (infra_hash query parameter) of the detail URL.
	Hash string `json:"hash,omitempty"`

	// URL is the absolute detail URL of the process.
	URL string `json:"url"`
}

// Identity returns the key used for deduplication: the internal
// identifier when present, otherwise the canonical process number.
func (r Record) Identity() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Number
}

// Fingerprint returns a SHA3-256 digest of the listed fields.
// Two listings of the same process with the same fingerprint show no change.
// The hash token and URL are left out because the portal rotates them.
func (r Record) Fingerprint() string {
	fields := []string{
		r.Number,
		string(r.Category),
		boolField(r.Viewed),
		r.Title,
		r.Type,
		r.ResponsibleName,
		r.ResponsibleID,
		strings.Join(r.Markers, "\x1e"),
		boolField(r.HasNewDocuments),
		boolField(r.HasAnnotations),
		r.ID,
	}
	sum := sha3.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
