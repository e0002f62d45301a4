package config

import (
	"github.com/uib-ub/snomedct-transform/normalizer"
	"github.com/uib-ub/snomedct-transform/snomed"
)

// descriptionRules maps the SNOMED CT description type codes to semantic
// labels. Text-definition tables share the description shape and rules.
var descriptionRules = []normalizer.Rule{
	{Column: "typeId", Old: "900000000000003001", New: snomed.TypeFSN},
	{Column: "typeId", Old: "900000000000013009", New: snomed.TypeSynonym},
	{Column: "typeId", Old: "900000000000550004", New: snomed.TypeDefinition},
}

// Default returns the built-in processing configuration: the sixteen
// snapshot tables of the combined NO and INT release packages and the
// code-to-label replacement rules per table family.
func Default() Config {
	return Config{
		InputDir:       "input",
		Validate:       true,
		SafeValidation: true,
		Tables: []TableSpec{
			{Pattern: "Concept_Snapshot_NO", Family: snomed.FamilyConcept, Key: "concept_no"},
			{Pattern: "Concept_Snapshot_INT", Family: snomed.FamilyConcept, Key: "concept_int"},
			{Pattern: "Description_Snapshot-no_NO", Family: snomed.FamilyDescription, Key: "description_no_no"},
			{Pattern: "Description_Snapshot-en_NO", Family: snomed.FamilyDescription, Key: "description_en_no"},
			{Pattern: "Description_Snapshot-en_INT", Family: snomed.FamilyDescription, Key: "description_en_int"},
			{Pattern: "Definition_Snapshot-no_NO", Family: snomed.FamilyDefinition, Key: "definition_no_no"},
			{Pattern: "Definition_Snapshot-en_NO", Family: snomed.FamilyDefinition, Key: "definition_en_no"},
			{Pattern: "Definition_Snapshot-en_INT", Family: snomed.FamilyDefinition, Key: "definition_en_int"},
			{Pattern: "LanguageSnapshot-nb_NO", Family: snomed.FamilyLanguage, Key: "language_nb_no"},
			{Pattern: "LanguageSnapshot-nb-gp_NO", Family: snomed.FamilyLanguage, Key: "language_nb_gp_no"},
			{Pattern: "LanguageSnapshot-nn_NO", Family: snomed.FamilyLanguage, Key: "language_nn_no"},
			{Pattern: "LanguageSnapshot-nn-gp_NO", Family: snomed.FamilyLanguage, Key: "language_nn_gp_no"},
			{Pattern: "LanguageSnapshot-en_NO", Family: snomed.FamilyLanguage, Key: "language_en_no"},
			{Pattern: "LanguageSnapshot-en_INT", Family: snomed.FamilyLanguage, Key: "language_en_int"},
			{Pattern: "_Relationship_Snapshot_NO", Family: snomed.FamilyRelationship, Key: "relationship_no"},
			{Pattern: "_Relationship_Snapshot_INT", Family: snomed.FamilyRelationship, Key: "relationship_int"},
		},
		ReplaceValues: map[snomed.Family][]normalizer.Rule{
			snomed.FamilyDescription: descriptionRules,
			snomed.FamilyDefinition:  descriptionRules,
			snomed.FamilyLanguage: {
				{Column: "refsetId", Old: "900000000000508004", New: "en-GB"},
				{Column: "refsetId", Old: "900000000000509007", New: "en-US"},
				{Column: "acceptabilityId", Old: "900000000000548007", New: snomed.AcceptabilityPreferred},
				{Column: "acceptabilityId", Old: "900000000000549004", New: snomed.AcceptabilityAcceptable},
			},
			snomed.FamilyRelationship: {
				{Column: "typeId", Old: "116680003", New: "Is a (attribute)"},
			},
		},
	}
}
