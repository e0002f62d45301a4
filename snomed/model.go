package snomed

import (
	"fmt"
	"strconv"
)

// Family identifies one of the five snapshot table shapes in a release package.
type Family string

const (
	FamilyConcept      Family = "concept"
	FamilyDescription  Family = "description"
	FamilyDefinition   Family = "definition"
	FamilyLanguage     Family = "language"
	FamilyRelationship Family = "relationship"
)

// Semantic labels substituted for SNOMED CT codes during normalization.
const (
	TypeFSN        = "fsn"
	TypeSynonym    = "synonym"
	TypeDefinition = "definition"

	AcceptabilityPreferred  = "tilrådd"
	AcceptabilityAcceptable = "akseptabel"
)

// familyColumns is the explicit registry of columns read per table family.
// Release files carry more columns (effectiveTime, moduleId, ...); only the
// ones listed here are loaded.
var familyColumns = map[Family][]string{
	FamilyConcept:      {"id", "active"},
	FamilyDescription:  {"id", "active", "conceptId", "languageCode", "typeId", "term"},
	FamilyDefinition:   {"id", "active", "conceptId", "languageCode", "typeId", "term"},
	FamilyLanguage:     {"id", "active", "refsetId", "referencedComponentId", "acceptabilityId"},
	FamilyRelationship: {"id", "active", "sourceId", "destinationId", "relationshipGroup", "typeId", "characteristicTypeId"},
}

// Columns returns the columns loaded for the family.
func (f Family) Columns() []string {
	return familyColumns[f]
}

// Row is a typed record from one of the snapshot tables.
type Row interface {
	Validate() error
}

// Concept is a row of a concept snapshot table.
// Docs: https://confluence.ihtsdotools.org/display/DOCRELFMT/4.2.1+Concept+File+Specification
type Concept struct {
	ID     string
	Active int
}

func (c Concept) Validate() error {
	return checkActive(c.Active)
}

// Description is a row of a description or text-definition snapshot table.
// Docs: https://confluence.ihtsdotools.org/display/DOCRELFMT/4.2.2.+Description+File+Specification
type Description struct {
	ID           string
	Active       int
	ConceptID    string
	LanguageCode string
	TypeID       string
	Term         string
}

func (d Description) Validate() error {
	if err := checkActive(d.Active); err != nil {
		return err
	}
	if err := checkEnum("languageCode", d.LanguageCode, "no", "en"); err != nil {
		return err
	}
	return checkEnum("typeId", d.TypeID, TypeSynonym, TypeFSN, TypeDefinition)
}

// Language is a row of a language reference set snapshot table.
// Docs: https://confluence.ihtsdotools.org/display/DOCRELFMT/5.2.2.1+Language+Reference+Set
type Language struct {
	ID                    string
	Active                int
	RefsetID              string
	ReferencedComponentID string
	AcceptabilityID       string
}

func (l Language) Validate() error {
	if err := checkActive(l.Active); err != nil {
		return err
	}
	return checkEnum("acceptabilityId", l.AcceptabilityID, AcceptabilityPreferred, AcceptabilityAcceptable)
}

// Relationship is a row of a relationship snapshot table.
// Docs: https://confluence.ihtsdotools.org/display/DOCRELFMT/4.2.3+Relationship+File+Specification
//
// Relationship processing and mapping is not complete; rows are carried
// through without field constraints.
type Relationship struct {
	ID                   string
	Active               int
	SourceID             string
	DestinationID        string
	RelationshipGroup    string
	TypeID               string
	CharacteristicTypeID string
}

func (r Relationship) Validate() error {
	return nil
}

func checkActive(active int) error {
	if active != 0 && active != 1 {
		return fmt.Errorf("active must be 0 or 1, got %d", active)
	}
	return nil
}

func checkEnum(column, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", column, allowed, value)
}

// NewConcept coerces a raw row into a Concept.
func NewConcept(row map[string]string) (Concept, error) {
	active, err := parseActive(row)
	if err != nil {
		return Concept{}, err
	}
	return Concept{ID: row["id"], Active: active}, nil
}

// NewDescription coerces a raw row into a Description. Text-definition
// tables share this shape.
func NewDescription(row map[string]string) (Description, error) {
	active, err := parseActive(row)
	if err != nil {
		return Description{}, err
	}
	return Description{
		ID:           row["id"],
		Active:       active,
		ConceptID:    row["conceptId"],
		LanguageCode: row["languageCode"],
		TypeID:       row["typeId"],
		Term:         row["term"],
	}, nil
}

// NewLanguage coerces a raw row into a Language.
func NewLanguage(row map[string]string) (Language, error) {
	active, err := parseActive(row)
	if err != nil {
		return Language{}, err
	}
	return Language{
		ID:                    row["id"],
		Active:                active,
		RefsetID:              row["refsetId"],
		ReferencedComponentID: row["referencedComponentId"],
		AcceptabilityID:       row["acceptabilityId"],
	}, nil
}

// NewRelationship coerces a raw row into a Relationship.
func NewRelationship(row map[string]string) (Relationship, error) {
	active, err := parseActive(row)
	if err != nil {
		return Relationship{}, err
	}
	return Relationship{
		ID:                   row["id"],
		Active:               active,
		SourceID:             row["sourceId"],
		DestinationID:        row["destinationId"],
		RelationshipGroup:    row["relationshipGroup"],
		TypeID:               row["typeId"],
		CharacteristicTypeID: row["characteristicTypeId"],
	}, nil
}

func parseActive(row map[string]string) (int, error) {
	active, err := strconv.Atoi(row["active"])
	if err != nil {
		return 0, fmt.Errorf("parsing active flag %q: %w", row["active"], err)
	}
	return active, nil
}
