package denormalizer

import (
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/snomed"
)

// Denormalize assembles the flat terms, definitions and relations tables
// from a reconciled dataset. The raw tables are only read, never changed.
func Denormalize(log *logging.Logger, ds snomed.Dataset) snomed.Data {
	log.Info("denormalize dataset")

	relations := make([]snomed.Relationship, 0, len(ds.RelationshipNO)+len(ds.RelationshipINT))
	relations = append(relations, ds.RelationshipNO...)
	relations = append(relations, ds.RelationshipINT...)

	return snomed.Data{
		IDs:         ds.IDs,
		Terms:       terms(ds),
		Definitions: definitions(ds),
		Relations:   relations,
	}
}

// taggedLanguage is a language refset row annotated with a locale code and,
// for the national branch, the acceptability from the matching general
// practitioner refset row.
type taggedLanguage struct {
	snomed.Language
	localeCode      string
	acceptabilityGP *string
}

// terms joins description rows with their language annotations. The national
// branch carries the GP-register acceptability where present; the English
// branch takes its locale code from the refset id.
func terms(ds snomed.Dataset) []snomed.Term {
	// Left join each national refset with its GP counterpart, tag with the
	// locale, and stack bokmål and nynorsk.
	langs := tagWithGP(ds.LanguageNbNO, ds.LanguageNbGpNO, "nb")
	langs = append(langs, tagWithGP(ds.LanguageNnNO, ds.LanguageNnGpNO, "nn")...)

	out := joinTerms(ds.DescriptionNoNO, langs)

	// English descriptions and refsets from both packages, stacked per kind.
	enDescriptions := concat(ds.DescriptionEnNO, ds.DescriptionEnINT)
	enLangs := make([]taggedLanguage, 0, len(ds.LanguageEnNO)+len(ds.LanguageEnINT))
	for _, l := range concat(ds.LanguageEnNO, ds.LanguageEnINT) {
		enLangs = append(enLangs, taggedLanguage{Language: l, localeCode: l.RefsetID})
	}

	return append(out, joinTerms(enDescriptions, enLangs)...)
}

// joinTerms matches every language annotation with its description and keeps
// fsn and synonym rows. Annotations without a surviving description row have
// no description type and drop out of the term view here.
func joinTerms(descriptions []snomed.Description, langs []taggedLanguage) []snomed.Term {
	byID := descriptionIndex(descriptions)

	var out []snomed.Term
	for _, l := range langs {
		d, ok := byID[l.ReferencedComponentID]
		if !ok {
			continue
		}
		if d.TypeID != snomed.TypeFSN && d.TypeID != snomed.TypeSynonym {
			continue
		}
		out = append(out, snomed.Term{
			ConceptID:         d.ConceptID,
			TermID:            l.ReferencedComponentID,
			Term:              d.Term,
			LanguageCode:      l.localeCode,
			TypeID:            d.TypeID,
			AcceptabilityID:   l.AcceptabilityID,
			AcceptabilityIDGP: l.acceptabilityGP,
		})
	}
	return out
}

// definitions joins text-definition rows with their language annotations.
// For the national branch the four refsets are stacked with literal locale
// tags; the GP refsets carry their base locale.
func definitions(ds snomed.Dataset) []snomed.Definition {
	langs := tagPlain(ds.LanguageNbNO, "nb")
	langs = append(langs, tagPlain(ds.LanguageNbGpNO, "nb")...)
	langs = append(langs, tagPlain(ds.LanguageNnNO, "nn")...)
	langs = append(langs, tagPlain(ds.LanguageNnGpNO, "nn")...)

	out := joinDefinitions(ds.DefinitionNoNO, langs)

	enDefinitions := concat(ds.DefinitionEnNO, ds.DefinitionEnINT)
	var enLangs []taggedLanguage
	for _, l := range concat(ds.LanguageEnNO, ds.LanguageEnINT) {
		enLangs = append(enLangs, taggedLanguage{Language: l, localeCode: l.RefsetID})
	}

	return append(out, joinDefinitions(enDefinitions, enLangs)...)
}

func joinDefinitions(defs []snomed.Description, langs []taggedLanguage) []snomed.Definition {
	byID := descriptionIndex(defs)

	var out []snomed.Definition
	for _, l := range langs {
		d, ok := byID[l.ReferencedComponentID]
		if !ok {
			continue
		}
		if d.TypeID != snomed.TypeDefinition {
			continue
		}
		out = append(out, snomed.Definition{
			ConceptID:    d.ConceptID,
			DefinitionID: l.ReferencedComponentID,
			Term:         d.Term,
			LanguageCode: l.localeCode,
		})
	}
	return out
}

// tagWithGP left-joins a national language refset with its GP-register
// counterpart on the referenced component. Rows without a GP entry get a nil
// GP acceptability and survive.
func tagWithGP(langs, gp []snomed.Language, localeCode string) []taggedLanguage {
	gpByComponent := make(map[string]string, len(gp))
	for _, l := range gp {
		gpByComponent[l.ReferencedComponentID] = l.AcceptabilityID
	}

	out := make([]taggedLanguage, 0, len(langs))
	for _, l := range langs {
		tagged := taggedLanguage{Language: l, localeCode: localeCode}
		if acc, ok := gpByComponent[l.ReferencedComponentID]; ok {
			tagged.acceptabilityGP = &acc
		}
		out = append(out, tagged)
	}
	return out
}

func tagPlain(langs []snomed.Language, localeCode string) []taggedLanguage {
	out := make([]taggedLanguage, 0, len(langs))
	for _, l := range langs {
		out = append(out, taggedLanguage{Language: l, localeCode: localeCode})
	}
	return out
}

func descriptionIndex(descriptions []snomed.Description) map[string]snomed.Description {
	byID := make(map[string]snomed.Description, len(descriptions))
	for _, d := range descriptions {
		byID[d.ID] = d
	}
	return byID
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
