package model

// Fixed primary keys of the Qubit seed data. These rows exist in every
// installation and are referenced directly by id.

// Root nodes of the hierarchical entity types.
const (
	InformationObjectRootID int64 = 1
	ActorRootID             int64 = 3
)

// Taxonomy ids.
const (
	TaxonomyRootID                   int64 = 30
	TaxonomyDescriptionDetailLevelID int64 = 31
	TaxonomyActorEntityTypeID        int64 = 32
	TaxonomyDescriptionStatusID      int64 = 33
	TaxonomyLevelOfDescriptionID     int64 = 34
	TaxonomySubjectID                int64 = 35
	TaxonomyActorNameTypeID          int64 = 36
	TaxonomyNoteTypeID               int64 = 37
	TaxonomyRepositoryTypeID         int64 = 38
	TaxonomyEventTypeID              int64 = 40
	TaxonomyQubitSettingLabelID      int64 = 41
	TaxonomyPlaceID                  int64 = 42
	TaxonomyFunctionID               int64 = 43
	TaxonomyHistoricalEventID        int64 = 44
	TaxonomyCollectionTypeID         int64 = 45
	TaxonomyMediaTypeID              int64 = 46
	TaxonomyDigitalObjectUsageID     int64 = 47
	TaxonomyPhysicalObjectTypeID     int64 = 48
	TaxonomyRelationTypeID           int64 = 49
	TaxonomyMaterialTypeID           int64 = 50
	TaxonomyRADNoteID                int64 = 51
	TaxonomyRADTitleNoteID           int64 = 52
	TaxonomyMODSResourceTypeID       int64 = 53
	TaxonomyDCTypeID                 int64 = 54
	TaxonomyActorRelationTypeID      int64 = 55
	TaxonomyRelationNoteTypeID       int64 = 56
	TaxonomyTermRelationTypeID       int64 = 57
	TaxonomyStatusTypeID             int64 = 59
	TaxonomyPublicationStatusID      int64 = 60
	TaxonomyISDFRelationTypeID       int64 = 61
)

// Term ids.
const (
	TermRootID int64 = 110

	// Event types
	TermCreationID     int64 = 111
	TermCustodyID      int64 = 113
	TermPublicationID  int64 = 114
	TermContributionID int64 = 115
	TermCollectionID   int64 = 117
	TermAccumulationID int64 = 118

	// Note types
	TermTitleNoteID            int64 = 119
	TermPublicationNoteID      int64 = 120
	TermSourceNoteID           int64 = 121
	TermScopeNoteID            int64 = 122
	TermDisplayNoteID          int64 = 123
	TermArchivistNoteID        int64 = 124
	TermGeneralNoteID          int64 = 125
	TermOtherDescriptiveDataID int64 = 126
	TermMaintenanceNoteID      int64 = 127

	// Collection types
	TermArchivalMaterialID  int64 = 128
	TermPublishedMaterialID int64 = 129
	TermArtefactMaterialID  int64 = 130

	// Actor entity types
	TermCorporateBodyID int64 = 131
	TermPersonID        int64 = 132
	TermFamilyID        int64 = 133

	TermFamilyNameFirstNameID int64 = 134

	// Media types
	TermAudioID int64 = 135
	TermImageID int64 = 136
	TermTextID  int64 = 137
	TermVideoID int64 = 138
	TermOtherID int64 = 139

	// Digital object usage
	TermMasterID    int64 = 140
	TermReferenceID int64 = 141
	TermThumbnailID int64 = 142
	TermCompoundID  int64 = 143

	// Physical object types
	TermLocationID  int64 = 144
	TermContainerID int64 = 145
	TermArtefactID  int64 = 146

	TermHasPhysicalObjectID int64 = 147

	// Actor name types
	TermParallelFormOfNameID int64 = 148
	TermOtherFormOfNameID    int64 = 149

	// Actor relation types
	TermHierarchicalRelationID int64 = 150
	TermTemporalRelationID     int64 = 151
	TermFamilyRelationID       int64 = 152
	TermAssociativeRelationID  int64 = 153

	TermRelationNoteDescriptionID int64 = 154
	TermRelationNoteDateID        int64 = 155

	TermAlternativeLabelID           int64 = 156
	TermTermRelationAssociativeID    int64 = 157
	TermStatusTypePublicationID      int64 = 158
	TermPublicationStatusDraftID     int64 = 159
	TermPublicationStatusPublishedID int64 = 160
	TermNameAccessPointID            int64 = 161

	// ISDF relation types
	TermISDFHierarchicalRelationID int64 = 162
	TermISDFTemporalRelationID     int64 = 163
	TermISDFAssociativeRelationID  int64 = 164

	TermStandardizedFormOfNameID int64 = 165
	TermExternalURIID            int64 = 166
)
