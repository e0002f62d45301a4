package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uib-ub/snomedct-transform/config"
	"github.com/uib-ub/snomedct-transform/logging"
	"github.com/uib-ub/snomedct-transform/reconciler"
	"github.com/uib-ub/snomedct-transform/snomed"
)

func concept(id string, active int) snomed.Concept {
	return snomed.Concept{ID: id, Active: active}
}

func description(id string, active int, conceptID, typeID string) snomed.Description {
	return snomed.Description{
		ID:           id,
		Active:       active,
		ConceptID:    conceptID,
		LanguageCode: "no",
		TypeID:       typeID,
		Term:         "term " + id,
	}
}

func language(id string, active int, componentID string) snomed.Language {
	return snomed.Language{
		ID:                    id,
		Active:                active,
		RefsetID:              "refset",
		ReferencedComponentID: componentID,
		AcceptabilityID:       snomed.AcceptabilityPreferred,
	}
}

func relationship(id string, active int, sourceID, destinationID string) snomed.Relationship {
	return snomed.Relationship{
		ID:            id,
		Active:        active,
		SourceID:      sourceID,
		DestinationID: destinationID,
	}
}

// baseDataset covers concepts 1-3, each with an active national description.
func baseDataset() snomed.Dataset {
	return snomed.Dataset{
		ConceptNO:  []snomed.Concept{concept("1", 1), concept("2", 1)},
		ConceptINT: []snomed.Concept{concept("2", 1), concept("3", 1)},
		DescriptionNoNO: []snomed.Description{
			description("d1", 1, "1", snomed.TypeFSN),
			description("d2", 1, "2", snomed.TypeFSN),
			description("d3", 1, "3", snomed.TypeFSN),
		},
	}
}

func TestReconcile_CrossSourceDedup(t *testing.T) {
	ds := snomed.Dataset{
		ConceptNO:  []snomed.Concept{concept("1", 1)},
		ConceptINT: []snomed.Concept{concept("1", 1), concept("2", 1)},
		DescriptionNoNO: []snomed.Description{
			description("d1", 1, "1", snomed.TypeFSN),
			description("d2", 1, "2", snomed.TypeFSN),
		},
		DescriptionEnNO:  []snomed.Description{description("e1", 1, "1", snomed.TypeFSN)},
		DescriptionEnINT: []snomed.Description{description("e1", 1, "1", snomed.TypeFSN), description("e2", 1, "2", snomed.TypeFSN)},
		RelationshipNO:   []snomed.Relationship{relationship("r1", 1, "1", "2")},
		RelationshipINT:  []snomed.Relationship{relationship("r1", 1, "1", "2"), relationship("r2", 1, "2", "1")},
	}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	// The shadowed INT rows are gone, the NO rows survive.
	require.Len(t, out.ConceptINT, 1)
	assert.Equal(t, "2", out.ConceptINT[0].ID)
	require.Len(t, out.DescriptionEnINT, 1)
	assert.Equal(t, "e2", out.DescriptionEnINT[0].ID)
	require.Len(t, out.RelationshipINT, 1)
	assert.Equal(t, "r2", out.RelationshipINT[0].ID)
}

func TestReconcile_DedupIsIdempotent(t *testing.T) {
	ds := snomed.Dataset{
		ConceptNO:  []snomed.Concept{concept("1", 1)},
		ConceptINT: []snomed.Concept{concept("1", 1), concept("2", 1)},
		DescriptionNoNO: []snomed.Description{
			description("d1", 1, "1", snomed.TypeFSN),
			description("d2", 1, "2", snomed.TypeFSN),
		},
	}

	once := reconciler.Reconcile(logging.Nop(), config.Default(), ds)
	twice := reconciler.Reconcile(logging.Nop(), config.Default(), once)

	assert.Equal(t, once, twice)
}

func TestReconcile_ActiveFilterInvariant(t *testing.T) {
	ds := baseDataset()
	ds.ConceptNO = append(ds.ConceptNO, concept("9", 0))
	ds.DescriptionNoNO = append(ds.DescriptionNoNO, description("d9", 0, "1", snomed.TypeFSN))
	ds.LanguageNbNO = []snomed.Language{language("l1", 1, "d1"), language("l2", 0, "d2")}
	ds.RelationshipNO = []snomed.Relationship{relationship("r1", 1, "1", "2"), relationship("r2", 0, "1", "2")}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	for _, c := range append(out.ConceptNO, out.ConceptINT...) {
		assert.Equal(t, 1, c.Active)
	}
	for _, d := range out.DescriptionNoNO {
		assert.Equal(t, 1, d.Active)
	}
	for _, l := range out.LanguageNbNO {
		assert.Equal(t, 1, l.Active)
	}
	for _, r := range append(out.RelationshipNO, out.RelationshipINT...) {
		assert.Equal(t, 1, r.Active)
	}
}

// An NO row that shadows an INT row but is itself inactive must not
// reintroduce the INT row: dedup runs before the active filter.
func TestReconcile_InactiveShadowStillDedupes(t *testing.T) {
	ds := snomed.Dataset{
		ConceptNO:       []snomed.Concept{concept("1", 0)},
		ConceptINT:      []snomed.Concept{concept("1", 1)},
		DescriptionNoNO: []snomed.Description{description("d1", 1, "1", snomed.TypeFSN)},
	}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	assert.Empty(t, out.ConceptNO)
	assert.Empty(t, out.ConceptINT)
	assert.Empty(t, out.IDs)
}

func TestReconcile_BaselineIsSortedIntersection(t *testing.T) {
	ds := snomed.Dataset{
		ConceptNO:  []snomed.Concept{concept("3", 1), concept("1", 1)},
		ConceptINT: []snomed.Concept{concept("2", 1)},
		DescriptionNoNO: []snomed.Description{
			// Out of order, with a description for a concept outside the
			// universe and a duplicate concept.
			description("d3", 1, "3", snomed.TypeFSN),
			description("d1", 1, "1", snomed.TypeFSN),
			description("d1b", 1, "1", snomed.TypeSynonym),
			description("d9", 1, "9", snomed.TypeFSN),
		},
	}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	assert.Equal(t, []string{"1", "3"}, out.IDs)
}

func TestReconcile_ScopeNarrowing(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		idFilter []string
		want     []string
	}{
		{"no_narrowing", 0, nil, []string{"1", "2", "3"}},
		{"limit_truncates", 1, nil, []string{"1"}},
		{"id_filter_restricts", 0, []string{"2"}, []string{"2"}},
		{"id_filter_then_limit", 1, []string{"2"}, []string{"2"}},
		{"limit_longer_than_ids", 10, nil, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Limit = tt.limit
			cfg.IDFilter = tt.idFilter

			out := reconciler.Reconcile(logging.Nop(), cfg, baseDataset())
			assert.Equal(t, tt.want, out.IDs)
		})
	}
}

func TestReconcile_CascadeCompleteness(t *testing.T) {
	ds := baseDataset()
	ds.DescriptionEnNO = []snomed.Description{
		description("e1", 1, "1", snomed.TypeFSN),
		description("e2", 1, "2", snomed.TypeFSN),
	}
	ds.DefinitionEnINT = []snomed.Description{
		description("f1", 1, "1", snomed.TypeDefinition),
		description("f3", 1, "3", snomed.TypeDefinition),
	}
	cfg := config.Default()
	cfg.IDFilter = []string{"1"}

	out := reconciler.Reconcile(logging.Nop(), cfg, ds)

	require.Equal(t, []string{"1"}, out.IDs)
	for _, d := range out.DescriptionNoNO {
		assert.Equal(t, "1", d.ConceptID)
	}
	for _, d := range out.DescriptionEnNO {
		assert.Equal(t, "1", d.ConceptID)
	}
	for _, d := range out.DefinitionEnINT {
		assert.Equal(t, "1", d.ConceptID)
	}
}

// Without a limit or id filter the national description table keeps rows for
// concepts outside the universe; it defined the baseline itself.
func TestReconcile_NationalDescriptionsOnlyCascadeWhenNarrowed(t *testing.T) {
	ds := baseDataset()
	ds.DescriptionNoNO = append(ds.DescriptionNoNO, description("d9", 1, "9", snomed.TypeFSN))

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)
	assert.Len(t, out.DescriptionNoNO, 4)

	cfg := config.Default()
	cfg.Limit = 3
	out = reconciler.Reconcile(logging.Nop(), cfg, ds)
	assert.Len(t, out.DescriptionNoNO, 3)
}

func TestReconcile_LanguageCascadePerLocaleFamily(t *testing.T) {
	ds := baseDataset()
	ds.DefinitionNoNO = []snomed.Description{description("f1", 1, "1", snomed.TypeDefinition)}
	ds.DescriptionEnINT = []snomed.Description{description("e3", 1, "3", snomed.TypeFSN)}
	ds.LanguageNbNO = []snomed.Language{
		language("l1", 1, "d1"), // national description
		language("l2", 1, "f1"), // national definition
		language("l3", 1, "e3"), // English component, wrong family
	}
	ds.LanguageEnINT = []snomed.Language{
		language("l4", 1, "e3"),
		language("l5", 1, "d1"), // national component, wrong family
	}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	require.Len(t, out.LanguageNbNO, 2)
	assert.Equal(t, "l1", out.LanguageNbNO[0].ID)
	assert.Equal(t, "l2", out.LanguageNbNO[1].ID)
	require.Len(t, out.LanguageEnINT, 1)
	assert.Equal(t, "l4", out.LanguageEnINT[0].ID)
}

func TestReconcile_RelationshipORFilter(t *testing.T) {
	ds := baseDataset()
	cfg := config.Default()
	cfg.IDFilter = []string{"1"}
	ds.RelationshipNO = []snomed.Relationship{
		relationship("r1", 1, "1", "9"), // source in scope
		relationship("r2", 1, "9", "1"), // destination in scope
		relationship("r3", 1, "9", "8"), // neither
	}

	out := reconciler.Reconcile(logging.Nop(), cfg, ds)

	require.Len(t, out.RelationshipNO, 2)
	assert.Equal(t, "r1", out.RelationshipNO[0].ID)
	assert.Equal(t, "r2", out.RelationshipNO[1].ID)
}

// Concept 1 is shared by both packages; concept 2 only exists
// internationally and has no national description, so it stays out of scope.
func TestReconcile_NationalDescriptionScopesConcepts(t *testing.T) {
	ds := snomed.Dataset{
		ConceptNO:       []snomed.Concept{concept("1", 1)},
		ConceptINT:      []snomed.Concept{concept("1", 1), concept("2", 1)},
		DescriptionNoNO: []snomed.Description{description("d1", 1, "1", snomed.TypeFSN)},
		RelationshipINT: []snomed.Relationship{relationship("r1", 1, "2", "2")},
	}

	out := reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	assert.Equal(t, []string{"1"}, out.IDs)
	assert.Empty(t, out.RelationshipINT)
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	ds := baseDataset()
	ds.RelationshipNO = []snomed.Relationship{relationship("r1", 1, "9", "8")}
	before := len(ds.RelationshipNO)

	_ = reconciler.Reconcile(logging.Nop(), config.Default(), ds)

	assert.Len(t, ds.RelationshipNO, before)
}
