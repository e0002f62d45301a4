package snomed

import "time"

// Dataset holds the sixteen tables loaded from the national (NO) and
// international (INT) release packages, plus the in-scope concept IDs
// derived during reconciliation.
type Dataset struct {
	IDs []string

	ConceptNO  []Concept
	ConceptINT []Concept

	DescriptionNoNO  []Description
	DescriptionEnNO  []Description
	DescriptionEnINT []Description

	DefinitionNoNO  []Description
	DefinitionEnNO  []Description
	DefinitionEnINT []Description

	LanguageNbNO   []Language
	LanguageNbGpNO []Language
	LanguageNnNO   []Language
	LanguageNnGpNO []Language
	LanguageEnNO   []Language
	LanguageEnINT  []Language

	RelationshipNO  []Relationship
	RelationshipINT []Relationship
}

// Term is one denormalized term row: a description joined with its language
// reference set annotations. AcceptabilityIDGP is nil when the term has no
// general practitioner refset entry (always nil for English).
type Term struct {
	ConceptID         string
	TermID            string
	Term              string
	LanguageCode      string
	TypeID            string
	AcceptabilityID   string
	AcceptabilityIDGP *string
}

// Definition is one denormalized text-definition row.
type Definition struct {
	ConceptID    string
	DefinitionID string
	Term         string
	LanguageCode string
}

// Data is the denormalized dataset: one flat table each for terms,
// definitions and relations, plus the in-scope concept IDs.
type Data struct {
	IDs         []string
	Terms       []Term
	Definitions []Definition
	Relations   []Relationship
}

// Metadata describes a dataset produced by a pipeline stage. Fields are
// based on dcterms; Provenance links to the metadata of the stage the
// dataset was derived from.
type Metadata struct {
	Title       string
	Description string
	Date        string
	Source      string
	Provenance  *Metadata
}

// NewMetadata builds stage metadata with the current timestamp.
func NewMetadata(title, description, source string, provenance *Metadata) Metadata {
	return Metadata{
		Title:       title,
		Description: description,
		Date:        time.Now().Format(time.RFC3339),
		Source:      source,
		Provenance:  provenance,
	}
}
