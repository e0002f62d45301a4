package reconciler

import (
	"sort"

	"github.com/uib-ub/snomedct-transform/config"
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/snomed"
)

// Reconcile turns the sixteen independently loaded tables into a mutually
// consistent, identifier-scoped dataset. Each step derives new table values
// from the previous step's output; the input dataset is not mutated.
//
// Steps, in order:
//  1. drop INT rows shadowed by an NO row with the same id
//  2. keep active rows only
//  3. collect the concept universe (NO ∪ INT concept ids)
//  4. baseline ids: concepts with a national description, restricted to the
//     universe, sorted ascending
//  5. narrow by the configured id filter, then truncate by the limit
//  6. cascade the final ids through the conceptId-bearing tables
//  7. cascade description/definition ids through the language tables
//  8. keep relationships touching an in-scope concept on either end
func Reconcile(log *logging.Logger, cfg config.Config, ds snomed.Dataset) snomed.Dataset {
	log.Info("apply dataset post-load reconciliation")

	ds = dedupeCrossSource(ds)
	ds = filterActive(ds)

	universe := conceptUniverse(ds)
	log.Info("active concepts in INT and NO release packages combined", "count", len(universe))

	baseline := nationalBaseline(ds, universe)
	log.Info("active concepts with national description", "count", len(baseline))

	ds.IDs = narrowScope(log, cfg, baseline)

	log.Debug("filter tables based on final concept ids", "count", len(ds.IDs))
	ds = cascadeConcepts(cfg, ds)
	ds = cascadeLanguages(ds)
	ds = filterRelationships(ds)

	return ds
}

// dedupeCrossSource removes from each INT table every row whose id also
// appears in the corresponding NO table. The national package shadows
// matching international entries.
func dedupeCrossSource(ds snomed.Dataset) snomed.Dataset {
	ds.ConceptINT = dropByKey(ds.ConceptINT, conceptID, idSet(ds.ConceptNO, conceptID))
	ds.DescriptionEnINT = dropByKey(ds.DescriptionEnINT, descriptionID, idSet(ds.DescriptionEnNO, descriptionID))
	ds.DefinitionEnINT = dropByKey(ds.DefinitionEnINT, descriptionID, idSet(ds.DefinitionEnNO, descriptionID))
	ds.LanguageEnINT = dropByKey(ds.LanguageEnINT, languageID, idSet(ds.LanguageEnNO, languageID))
	ds.RelationshipINT = dropByKey(ds.RelationshipINT, relationshipID, idSet(ds.RelationshipNO, relationshipID))
	return ds
}

// filterActive keeps only rows with active == 1, in every table.
func filterActive(ds snomed.Dataset) snomed.Dataset {
	ds.ConceptNO = activeOnly(ds.ConceptNO, func(c snomed.Concept) int { return c.Active })
	ds.ConceptINT = activeOnly(ds.ConceptINT, func(c snomed.Concept) int { return c.Active })

	descActive := func(d snomed.Description) int { return d.Active }
	ds.DescriptionNoNO = activeOnly(ds.DescriptionNoNO, descActive)
	ds.DescriptionEnNO = activeOnly(ds.DescriptionEnNO, descActive)
	ds.DescriptionEnINT = activeOnly(ds.DescriptionEnINT, descActive)
	ds.DefinitionNoNO = activeOnly(ds.DefinitionNoNO, descActive)
	ds.DefinitionEnNO = activeOnly(ds.DefinitionEnNO, descActive)
	ds.DefinitionEnINT = activeOnly(ds.DefinitionEnINT, descActive)

	langActive := func(l snomed.Language) int { return l.Active }
	ds.LanguageNbNO = activeOnly(ds.LanguageNbNO, langActive)
	ds.LanguageNbGpNO = activeOnly(ds.LanguageNbGpNO, langActive)
	ds.LanguageNnNO = activeOnly(ds.LanguageNnNO, langActive)
	ds.LanguageNnGpNO = activeOnly(ds.LanguageNnGpNO, langActive)
	ds.LanguageEnNO = activeOnly(ds.LanguageEnNO, langActive)
	ds.LanguageEnINT = activeOnly(ds.LanguageEnINT, langActive)

	relActive := func(r snomed.Relationship) int { return r.Active }
	ds.RelationshipNO = activeOnly(ds.RelationshipNO, relActive)
	ds.RelationshipINT = activeOnly(ds.RelationshipINT, relActive)

	return ds
}

// conceptUniverse is the set of concept ids present in the deduplicated,
// active-filtered NO and INT concept tables.
func conceptUniverse(ds snomed.Dataset) map[string]struct{} {
	universe := idSet(ds.ConceptINT, conceptID)
	for _, c := range ds.ConceptNO {
		universe[c.ID] = struct{}{}
	}
	return universe
}

// nationalBaseline is the sorted sequence of universe concepts that carry at
// least one national-language description.
func nationalBaseline(ds snomed.Dataset, universe map[string]struct{}) []string {
	seen := map[string]struct{}{}
	var baseline []string
	for _, d := range ds.DescriptionNoNO {
		if d.Active != 1 {
			continue
		}
		if _, ok := seen[d.ConceptID]; ok {
			continue
		}
		seen[d.ConceptID] = struct{}{}
		if _, ok := universe[d.ConceptID]; ok {
			baseline = append(baseline, d.ConceptID)
		}
	}
	sort.Strings(baseline)
	return baseline
}

// narrowScope applies the configured id filter and limit to the baseline.
// Both can apply in one run: the allow-list narrows first, the limit then
// truncates whatever is left.
func narrowScope(log *logging.Logger, cfg config.Config, baseline []string) []string {
	ids := baseline

	if len(cfg.IDFilter) > 0 {
		log.Warn("filtering concepts by id", "filter", cfg.IDFilter)
		allowed := map[string]struct{}{}
		for _, id := range cfg.IDFilter {
			allowed[id] = struct{}{}
		}
		var kept []string
		for _, id := range ids {
			if _, ok := allowed[id]; ok {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	if cfg.Limit > 0 {
		log.Warn("filtering concept ids by limit", "limit", cfg.Limit)
		if len(ids) > cfg.Limit {
			ids = ids[:cfg.Limit]
		}
	}

	return ids
}

// cascadeConcepts filters the conceptId-bearing tables down to the final id
// sequence. The national description table defines the baseline itself and
// is only re-filtered when a limit or id filter actually narrowed the scope.
func cascadeConcepts(cfg config.Config, ds snomed.Dataset) snomed.Dataset {
	keep := stringSet(ds.IDs)
	byConcept := func(d snomed.Description) string { return d.ConceptID }

	if cfg.Limit > 0 || len(cfg.IDFilter) > 0 {
		ds.DescriptionNoNO = keepByKey(ds.DescriptionNoNO, byConcept, keep)
	}
	ds.DescriptionEnNO = keepByKey(ds.DescriptionEnNO, byConcept, keep)
	ds.DescriptionEnINT = keepByKey(ds.DescriptionEnINT, byConcept, keep)
	ds.DefinitionNoNO = keepByKey(ds.DefinitionNoNO, byConcept, keep)
	ds.DefinitionEnNO = keepByKey(ds.DefinitionEnNO, byConcept, keep)
	ds.DefinitionEnINT = keepByKey(ds.DefinitionEnINT, byConcept, keep)

	return ds
}

// cascadeLanguages filters each language table down to the component ids of
// the already-filtered description and definition tables of its own locale
// family. The two English refsets are kept separate per source.
func cascadeLanguages(ds snomed.Dataset) snomed.Dataset {
	byComponent := func(l snomed.Language) string { return l.ReferencedComponentID }

	noIDs := idSet(ds.DescriptionNoNO, descriptionID)
	for _, d := range ds.DefinitionNoNO {
		noIDs[d.ID] = struct{}{}
	}
	ds.LanguageNbNO = keepByKey(ds.LanguageNbNO, byComponent, noIDs)
	ds.LanguageNbGpNO = keepByKey(ds.LanguageNbGpNO, byComponent, noIDs)
	ds.LanguageNnNO = keepByKey(ds.LanguageNnNO, byComponent, noIDs)
	ds.LanguageNnGpNO = keepByKey(ds.LanguageNnGpNO, byComponent, noIDs)

	enNoIDs := idSet(ds.DescriptionEnNO, descriptionID)
	for _, d := range ds.DefinitionEnNO {
		enNoIDs[d.ID] = struct{}{}
	}
	ds.LanguageEnNO = keepByKey(ds.LanguageEnNO, byComponent, enNoIDs)

	enIntIDs := idSet(ds.DescriptionEnINT, descriptionID)
	for _, d := range ds.DefinitionEnINT {
		enIntIDs[d.ID] = struct{}{}
	}
	ds.LanguageEnINT = keepByKey(ds.LanguageEnINT, byComponent, enIntIDs)

	return ds
}

// filterRelationships keeps relationships where either endpoint is an
// in-scope concept.
func filterRelationships(ds snomed.Dataset) snomed.Dataset {
	keep := stringSet(ds.IDs)
	touches := func(r snomed.Relationship) bool {
		_, src := keep[r.SourceID]
		_, dst := keep[r.DestinationID]
		return src || dst
	}

	ds.RelationshipNO = keepIf(ds.RelationshipNO, touches)
	ds.RelationshipINT = keepIf(ds.RelationshipINT, touches)
	return ds
}

func conceptID(c snomed.Concept) string           { return c.ID }
func descriptionID(d snomed.Description) string   { return d.ID }
func languageID(l snomed.Language) string         { return l.ID }
func relationshipID(r snomed.Relationship) string { return r.ID }

func idSet[T any](rows []T, key func(T) string) map[string]struct{} {
	set := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		set[key(r)] = struct{}{}
	}
	return set
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func keepIf[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepByKey[T any](rows []T, key func(T) string, set map[string]struct{}) []T {
	return keepIf(rows, func(r T) bool {
		_, ok := set[key(r)]
		return ok
	})
}

func dropByKey[T any](rows []T, key func(T) string, set map[string]struct{}) []T {
	return keepIf(rows, func(r T) bool {
		_, ok := set[key(r)]
		return !ok
	})
}

func activeOnly[T any](rows []T, active func(T) int) []T {
	return keepIf(rows, func(r T) bool { return active(r) == 1 })
}
