package i18n

// Translated columns of every entity kind. Each kind gets its own string
// type so a field of one table cannot be passed to the translator of
// another.

type Table[F ~string] struct {
	Name   string
	Fields []F
}

// Parse returns the field named name, or false if the table has none.
func (t Table[F]) Parse(name string) (F, bool) {
	for _, f := range t.Fields {
		if string(f) == name {
			return f, true
		}
	}
	var zero F
	return zero, false
}

// FieldNames lists the fields as strings, in declaration order.
func (t Table[F]) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = string(f)
	}
	return names
}

type ActorField string

const (
	ActorAuthorizedFormOfName             ActorField = "authorized_form_of_name"
	ActorDatesOfExistence                 ActorField = "dates_of_existence"
	ActorHistory                          ActorField = "history"
	ActorPlaces                           ActorField = "places"
	ActorLegalStatus                      ActorField = "legal_status"
	ActorFunctions                        ActorField = "functions"
	ActorMandates                         ActorField = "mandates"
	ActorInternalStructures               ActorField = "internal_structures"
	ActorGeneralContext                   ActorField = "general_context"
	ActorInstitutionResponsibleIdentifier ActorField = "institution_responsible_identifier"
	ActorRules                            ActorField = "rules"
	ActorSources                          ActorField = "sources"
	ActorRevisionHistory                  ActorField = "revision_history"
)

var ActorTable = Table[ActorField]{
	Name: "actor_i18n",
	Fields: []ActorField{
		ActorAuthorizedFormOfName, ActorDatesOfExistence, ActorHistory,
		ActorPlaces, ActorLegalStatus, ActorFunctions, ActorMandates,
		ActorInternalStructures, ActorGeneralContext,
		ActorInstitutionResponsibleIdentifier, ActorRules, ActorSources,
		ActorRevisionHistory,
	},
}

type RepositoryField string

const (
	RepositoryGeoculturalContext        RepositoryField = "geocultural_context"
	RepositoryCollectingPolicies        RepositoryField = "collecting_policies"
	RepositoryBuildings                 RepositoryField = "buildings"
	RepositoryHoldings                  RepositoryField = "holdings"
	RepositoryFindingAids               RepositoryField = "finding_aids"
	RepositoryOpeningTimes              RepositoryField = "opening_times"
	RepositoryAccessConditions          RepositoryField = "access_conditions"
	RepositoryDisabledAccess            RepositoryField = "disabled_access"
	RepositoryResearchServices          RepositoryField = "research_services"
	RepositoryReproductionServices      RepositoryField = "reproduction_services"
	RepositoryPublicFacilities          RepositoryField = "public_facilities"
	RepositoryDescInstitutionIdentifier RepositoryField = "desc_institution_identifier"
	RepositoryDescRules                 RepositoryField = "desc_rules"
	RepositoryDescSources               RepositoryField = "desc_sources"
	RepositoryDescRevisionHistory       RepositoryField = "desc_revision_history"
)

var RepositoryTable = Table[RepositoryField]{
	Name: "repository_i18n",
	Fields: []RepositoryField{
		RepositoryGeoculturalContext, RepositoryCollectingPolicies,
		RepositoryBuildings, RepositoryHoldings, RepositoryFindingAids,
		RepositoryOpeningTimes, RepositoryAccessConditions,
		RepositoryDisabledAccess, RepositoryResearchServices,
		RepositoryReproductionServices, RepositoryPublicFacilities,
		RepositoryDescInstitutionIdentifier, RepositoryDescRules,
		RepositoryDescSources, RepositoryDescRevisionHistory,
	},
}

type InformationObjectField string

const (
	InformationObjectTitle                     InformationObjectField = "title"
	InformationObjectAlternateTitle            InformationObjectField = "alternate_title"
	InformationObjectEdition                   InformationObjectField = "edition"
	InformationObjectExtentAndMedium           InformationObjectField = "extent_and_medium"
	InformationObjectArchivalHistory           InformationObjectField = "archival_history"
	InformationObjectAcquisition               InformationObjectField = "acquisition"
	InformationObjectScopeAndContent           InformationObjectField = "scope_and_content"
	InformationObjectAppraisal                 InformationObjectField = "appraisal"
	InformationObjectAccruals                  InformationObjectField = "accruals"
	InformationObjectArrangement               InformationObjectField = "arrangement"
	InformationObjectAccessConditions          InformationObjectField = "access_conditions"
	InformationObjectReproductionConditions    InformationObjectField = "reproduction_conditions"
	InformationObjectPhysicalCharacteristics   InformationObjectField = "physical_characteristics"
	InformationObjectFindingAids               InformationObjectField = "finding_aids"
	InformationObjectLocationOfOriginals       InformationObjectField = "location_of_originals"
	InformationObjectLocationOfCopies          InformationObjectField = "location_of_copies"
	InformationObjectRelatedUnitsOfDescription InformationObjectField = "related_units_of_description"
	InformationObjectRules                     InformationObjectField = "rules"
	InformationObjectSources                   InformationObjectField = "sources"
	InformationObjectRevisionHistory           InformationObjectField = "revision_history"
)

var InformationObjectTable = Table[InformationObjectField]{
	Name: "information_object_i18n",
	Fields: []InformationObjectField{
		InformationObjectTitle, InformationObjectAlternateTitle,
		InformationObjectEdition, InformationObjectExtentAndMedium,
		InformationObjectArchivalHistory, InformationObjectAcquisition,
		InformationObjectScopeAndContent, InformationObjectAppraisal,
		InformationObjectAccruals, InformationObjectArrangement,
		InformationObjectAccessConditions,
		InformationObjectReproductionConditions,
		InformationObjectPhysicalCharacteristics,
		InformationObjectFindingAids, InformationObjectLocationOfOriginals,
		InformationObjectLocationOfCopies,
		InformationObjectRelatedUnitsOfDescription, InformationObjectRules,
		InformationObjectSources, InformationObjectRevisionHistory,
	},
}

type TaxonomyField string

const (
	TaxonomyName TaxonomyField = "name"
	TaxonomyNote TaxonomyField = "note"
)

var TaxonomyTable = Table[TaxonomyField]{
	Name:   "taxonomy_i18n",
	Fields: []TaxonomyField{TaxonomyName, TaxonomyNote},
}

type TermField string

const TermName TermField = "name"

var TermTable = Table[TermField]{
	Name:   "term_i18n",
	Fields: []TermField{TermName},
}

type FunctionField string

const (
	FunctionAuthorizedFormOfName  FunctionField = "authorized_form_of_name"
	FunctionClassification        FunctionField = "classification"
	FunctionDates                 FunctionField = "dates"
	FunctionDescription           FunctionField = "description"
	FunctionHistory               FunctionField = "history"
	FunctionLegislation           FunctionField = "legislation"
	FunctionInstitutionIdentifier FunctionField = "institution_identifier"
	FunctionRules                 FunctionField = "rules"
	FunctionSources               FunctionField = "sources"
	FunctionRevisionHistory       FunctionField = "revision_history"
)

var FunctionTable = Table[FunctionField]{
	Name: "function_i18n",
	Fields: []FunctionField{
		FunctionAuthorizedFormOfName, FunctionClassification, FunctionDates,
		FunctionDescription, FunctionHistory, FunctionLegislation,
		FunctionInstitutionIdentifier, FunctionRules, FunctionSources,
		FunctionRevisionHistory,
	},
}

type EventField string

const (
	EventName        EventField = "name"
	EventDescription EventField = "description"
	EventDate        EventField = "date"
)

var EventTable = Table[EventField]{
	Name:   "event_i18n",
	Fields: []EventField{EventName, EventDescription, EventDate},
}

type NoteField string

const NoteContent NoteField = "content"

var NoteTable = Table[NoteField]{
	Name:   "note_i18n",
	Fields: []NoteField{NoteContent},
}

type PropertyField string

const PropertyValue PropertyField = "value"

var PropertyTable = Table[PropertyField]{
	Name:   "property_i18n",
	Fields: []PropertyField{PropertyValue},
}

type OtherNameField string

const (
	OtherNameName  OtherNameField = "name"
	OtherNameNote  OtherNameField = "note"
	OtherNameDates OtherNameField = "dates"
)

var OtherNameTable = Table[OtherNameField]{
	Name:   "other_name_i18n",
	Fields: []OtherNameField{OtherNameName, OtherNameNote, OtherNameDates},
}

type ContactField string

const (
	ContactType   ContactField = "contact_type"
	ContactCity   ContactField = "city"
	ContactRegion ContactField = "region"
	ContactNote   ContactField = "note"
)

var ContactTable = Table[ContactField]{
	Name:   "contact_information_i18n",
	Fields: []ContactField{ContactType, ContactCity, ContactRegion, ContactNote},
}
