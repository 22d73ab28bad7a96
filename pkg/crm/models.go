package crm

import (
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FormattedValueSuffix is the marker the CRM adapter appends to a key to
// carry the human-readable counterpart of a base key. Any key containing
// this exact suffix is the display value of the key before the "@".
const FormattedValueSuffix = "@OData.Community.Display.V1.FormattedValue"

// FormattedGuid holds a guid value plus its display string. An empty
// value means the guid is unset.
type FormattedGuid struct {
	Value          string `json:"value"`
	FormattedValue string `json:"formatted_value,omitempty"`
}

// FormattedInt holds an integer value plus its display string.
type FormattedInt struct {
	Value          int64  `json:"value"`
	FormattedValue string `json:"formatted_value,omitempty"`
}

// FormattedStr holds a string value plus its display string.
type FormattedStr struct {
	Value          string `json:"value"`
	FormattedValue string `json:"formatted_value,omitempty"`
}

// FormattedTimestamp holds an epoch timestamp plus its display string.
// Zero seconds means the timestamp is unset.
type FormattedTimestamp struct {
	Value          *timestamppb.Timestamp `json:"value,omitempty"`
	FormattedValue string                 `json:"formatted_value,omitempty"`
}

// WorkRegionCode enumerates the closed set of work regions known to the
// CRM adapter. Zero is the unset sentinel.
type WorkRegionCode int32

const (
	WorkRegionUnspecified WorkRegionCode = iota
	WorkRegionConnecticutHudsonValley
	WorkRegionNewEngland
	WorkRegionNewYorkMetro
	WorkRegionInterRegion
	WorkRegionNationalNetwork
	WorkRegionMidAtlantic
	WorkRegionChicago
	WorkRegionInternationalNetwork
	WorkRegionKentuckyIndiana
	WorkRegionMichigan
	WorkRegionOhio
	WorkRegionWesternNewYork
	WorkRegionVirginiaCarolinas
	WorkRegionVirginia
	WorkRegionCaliforniaInlandEmpire
	WorkRegionCaliforniaLACounty
	WorkRegionCaliforniaNorthern
	WorkRegionCaliforniaOrangeCounty
	WorkRegionEasternPennsylvaniaNewJersey
	WorkRegionGeorgia
	WorkRegionLouisville
	WorkRegionMinneapolisStPaul
	WorkRegionNorthFlorida
	WorkRegionNorthernCalifornia
	WorkRegionPacificNorthWest
	WorkRegionPhoenix
	WorkRegionPittsburgh
	WorkRegionSouthFlorida
	WorkRegionSouthernCalifornia
	WorkRegionStLouis
	WorkRegionStPaul
	WorkRegionTennessee
	WorkRegionTexas
	WorkRegionRockyMountain
	WorkRegionDesertSouthwest
	WorkRegionLosAngeles
	WorkRegionSanDiego
)

// WorkRegion holds a work region code plus its display string.
type WorkRegion struct {
	Region         WorkRegionCode `json:"region"`
	FormattedValue string         `json:"formatted_value,omitempty"`
}

// CreationSourceCode enumerates how a CRM record came to exist.
type CreationSourceCode int32

const (
	CreationSourceUnspecified CreationSourceCode = 0
	CreationSourceAcme        CreationSourceCode = 100000011
)

// CreationSource holds a creation source code plus its display string.
type CreationSource struct {
	Source         CreationSourceCode `json:"source"`
	FormattedValue string             `json:"formatted_value,omitempty"`
}

// KeyValuePair is one generic field of a CRM entity. Value carries the
// canonical string form; at most one of the typed mirrors is set,
// chosen by the native type of the value. LinkedEntity is set (with a
// leading "/") when the key is a navigation property referencing
// another entity kind.
type KeyValuePair struct {
	Key          string                  `json:"key"`
	Value        string                  `json:"value"`
	StrValue     *wrapperspb.StringValue `json:"str_value,omitempty"`
	IntValue     *wrapperspb.UInt64Value `json:"int_value,omitempty"`
	FloatValue   *wrapperspb.DoubleValue `json:"float_value,omitempty"`
	BoolValue    *wrapperspb.BoolValue   `json:"bool_value,omitempty"`
	LinkedEntity string                  `json:"linked_entity,omitempty"`
}

// TypedValue returns the typed mirror of the pair, if one is set.
func (p *KeyValuePair) TypedValue() (any, bool) {
	switch {
	case p.StrValue != nil:
		return p.StrValue.Value, true
	case p.IntValue != nil:
		return p.IntValue.Value, true
	case p.FloatValue != nil:
		return p.FloatValue.Value, true
	case p.BoolValue != nil:
		return p.BoolValue.Value, true
	}
	return nil, false
}

// Entity is the generic record understood by the CRM adapter: an
// entity-kind tag plus an ordered list of key/value pairs.
type Entity struct {
	EntityType string          `json:"crm_entity_type"`
	Guid       *FormattedGuid  `json:"guid,omitempty"`
	Fields     []*KeyValuePair `json:"fields"`
}

// Match enumerates the comparison operators the CRM adapter supports.
type Match int32

const (
	MatchUnspecified Match = iota
	MatchEqual
	MatchNotEqual
	MatchGreaterThan
	MatchGreaterThanOrEqual
	MatchLessThan
	MatchLessThanOrEqual
	MatchContains
)

// Criterion is one generic search comparison.
type Criterion struct {
	Match      Match  `json:"match"`
	FieldName  string `json:"field_name"`
	FieldValue string `json:"field_value"`
}

// EntitySearch is one AND-group of criteria; groups are OR'd together
// in a SearchEntitiesRequest.
type EntitySearch struct {
	Criteria []*Criterion `json:"criterion"`
}

type CreateEntityRequest struct {
	Entity *Entity `json:"entity"`
}

type CreateEntityResponse struct {
	Entity *Entity `json:"entity"`
}

type UpdateEntityRequest struct {
	Entity *Entity `json:"entity"`
}

type UpdateEntityResponse struct {
	Entity *Entity `json:"entity"`
}

type SearchEntitiesRequest struct {
	EntityType     string          `json:"crm_entity_type"`
	Search         []*EntitySearch `json:"search"`
	Limit          int32           `json:"limit"`
	ReturnAll      bool            `json:"return_all,omitempty"`
	FieldsToReturn []string        `json:"fields_to_return,omitempty"`
}

type SearchEntitiesResponse struct {
	Entities []*Entity `json:"entities"`
}
