package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/abcnetworks/crm-sdk/pkg/crm"
	"github.com/abcnetworks/crm-sdk/pkg/mapping"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateEntity(ctx context.Context, request *crm.CreateEntityRequest) (*crm.CreateEntityResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.CreateEntityResponse), args.Error(1)
}

func (m *mockGateway) UpdateEntity(ctx context.Context, request *crm.UpdateEntityRequest) (*crm.UpdateEntityResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.UpdateEntityResponse), args.Error(1)
}

func (m *mockGateway) SearchEntities(ctx context.Context, request *crm.SearchEntitiesRequest) (*crm.SearchEntitiesResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.SearchEntitiesResponse), args.Error(1)
}

// workOrder is the test entity, one field per supported kind plus a
// reference field.
type workOrder struct {
	Id         *crm.FormattedGuid
	FirstName  string
	LastName   string
	SiteState  *crm.FormattedGuid
	WorkRegion *crm.WorkRegion
	StartedAt  *crm.FormattedTimestamp
	Attempts   int64
	Hours      float64
	Billable   bool
}

func workOrderTable(t *testing.T, linkedStates []string) *mapping.Table {
	t.Helper()
	table, err := mapping.NewTable([]mapping.FieldMapping{
		{Field: "Id", Key: "workorderid"},
		{Field: "FirstName", Key: "new_firstname"},
		{Field: "LastName", Key: "new_lastname"},
		{Field: "SiteState", Key: "new_sitestate", NavigationKey: "new_SiteStateid", LinkedEntities: linkedStates},
		{Field: "WorkRegion", Key: "new_workregion"},
		{Field: "StartedAt", Key: "createdon"},
		{Field: "Attempts", Key: "new_attempts"},
		{Field: "Hours", Key: "new_hours"},
		{Field: "Billable", Key: "new_billable"},
	})
	assert.NoError(t, err)
	return table
}

func workOrderGenerator(t *testing.T, mutate func(*Config)) *Generator {
	t.Helper()
	cfg := Config{
		EntityType: "new_workorders",
		GuidField:  "workorderid",
		Mappings:   workOrderTable(t, []string{"new_states"}),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	gen, err := New(cfg)
	assert.NoError(t, err)
	return gen
}

// allFieldsEmpty marks every workOrder field as already empty so tests
// can focus on the fields they set.
var allFieldsEmpty = []string{
	"Id", "FirstName", "LastName", "SiteState", "WorkRegion",
	"StartedAt", "Attempts", "Hours", "Billable",
}

func TestBuildEntityProtectedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		crud   CrudType
	}{
		{
			name: "update protected per operation",
			mutate: func(c *Config) {
				c.ProtectedFields = map[CrudType][]string{CrudUpdate: allFieldsEmpty}
			},
			crud: CrudUpdate,
		},
		{
			name: "create protected per operation",
			mutate: func(c *Config) {
				c.ProtectedFields = map[CrudType][]string{CrudCreate: allFieldsEmpty}
			},
			crud: CrudCreate,
		},
		{
			name: "legacy flat list protects every operation",
			mutate: func(c *Config) {
				c.FlatProtectedFields = allFieldsEmpty
			},
			crud: CrudCreate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := workOrderGenerator(t, tt.mutate)
			record, err := gen.BuildEntity(&workOrder{FirstName: "Marge"}, tt.crud, nil)
			assert.NoError(t, err)
			assert.Empty(t, record.Fields)
			assert.Equal(t, "new_workorders", record.EntityType)
		})
	}
}

func TestBuildEntityRequiredFieldEmpty(t *testing.T) {
	gen := workOrderGenerator(t, func(c *Config) {
		c.RequiredFields = []string{"FirstName"}
	})
	_, err := gen.BuildEntity(&workOrder{}, CrudUpdate, allFieldsEmpty)
	assert.ErrorIs(t, err, ErrRequiredFieldEmpty)
	assert.Contains(t, err.Error(), "FirstName")
}

func TestBuildEntityAlreadyEmptySkipped(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	record, err := gen.BuildEntity(&workOrder{}, CrudUpdate, allFieldsEmpty)
	assert.NoError(t, err)
	assert.Empty(t, record.Fields)
}

func TestBuildEntityDeletionPairs(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	record, err := gen.BuildEntity(&workOrder{}, CrudUpdate, nil)
	assert.NoError(t, err)

	byKey := make(map[string]*crm.KeyValuePair)
	for _, pair := range record.Fields {
		byKey[pair.Key] = pair
	}

	// regular field deletes through its own key
	assert.Equal(t, &crm.KeyValuePair{Key: "new_firstname", Value: ""}, byKey["new_firstname"])
	// reference field deletes through its navigation property and keeps
	// the linked entity annotation
	assert.Equal(t, &crm.KeyValuePair{Key: "new_SiteStateid", Value: "", LinkedEntity: "/new_states"},
		byKey["new_SiteStateid"])
	// deletion pairs carry no typed mirror
	for _, pair := range record.Fields {
		assert.Nil(t, pair.StrValue, pair.Key)
		assert.Nil(t, pair.IntValue, pair.Key)
	}
}

func TestBuildEntityLinkedPair(t *testing.T) {
	tests := []struct {
		name       string
		linked     []string
		wantLinked string
	}{
		{name: "bare name gains prefix", linked: []string{"new_states"}, wantLinked: "/new_states"},
		{name: "prefixed name kept as is", linked: []string{"/new_states"}, wantLinked: "/new_states"},
		{name: "first of several wins", linked: []string{"new_states", "/new_provinces"}, wantLinked: "/new_states"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := workOrderGenerator(t, func(c *Config) {
				table := workOrderTable(t, tt.linked)
				c.Mappings = table
			})
			entity := &workOrder{SiteState: &crm.FormattedGuid{Value: "1", FormattedValue: "The Moon"}}
			record, err := gen.BuildEntity(entity, CrudCreate, nil)
			assert.NoError(t, err)

			var pair *crm.KeyValuePair
			for _, p := range record.Fields {
				if p.Key == "new_SiteStateid" {
					pair = p
				}
			}
			assert.Equal(t, &crm.KeyValuePair{
				Key:          "new_SiteStateid",
				Value:        "1",
				StrValue:     wrapperspb.String("1"),
				LinkedEntity: tt.wantLinked,
			}, pair)
		})
	}
}

func TestBuildEntityTypedMirrors(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	entity := &workOrder{
		FirstName:  "Marge",
		WorkRegion: &crm.WorkRegion{Region: 16},
		StartedAt:  &crm.FormattedTimestamp{Value: &timestamppb.Timestamp{Seconds: 1234567890}},
		Attempts:   3,
		Hours:      1.5,
		Billable:   true,
	}
	record, err := gen.BuildEntity(entity, CrudCreate, allFieldsEmpty)
	assert.NoError(t, err)

	byKey := make(map[string]*crm.KeyValuePair)
	for _, pair := range record.Fields {
		byKey[pair.Key] = pair
	}
	assert.Equal(t, &crm.KeyValuePair{Key: "new_firstname", Value: "Marge", StrValue: wrapperspb.String("Marge")},
		byKey["new_firstname"])
	assert.Equal(t, &crm.KeyValuePair{Key: "new_workregion", Value: "16", StrValue: wrapperspb.String("16")},
		byKey["new_workregion"])
	assert.Equal(t, &crm.KeyValuePair{Key: "createdon", Value: "2009-02-13T23:31:30Z", StrValue: wrapperspb.String("2009-02-13T23:31:30Z")},
		byKey["createdon"])
	assert.Equal(t, &crm.KeyValuePair{Key: "new_attempts", Value: "3", IntValue: wrapperspb.UInt64(3)},
		byKey["new_attempts"])
	assert.Equal(t, &crm.KeyValuePair{Key: "new_hours", Value: "1.5", FloatValue: wrapperspb.Double(1.5)},
		byKey["new_hours"])
	assert.Equal(t, &crm.KeyValuePair{Key: "new_billable", Value: "true", BoolValue: wrapperspb.Bool(true)},
		byKey["new_billable"])
}

func TestCreate(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	gateway := &mockGateway{}
	gateway.On("CreateEntity", mock.Anything, mock.Anything).Return(&crm.CreateEntityResponse{
		Entity: &crm.Entity{
			EntityType: "new_workorders",
			Fields: []*crm.KeyValuePair{
				{Key: "new_firstname", StrValue: wrapperspb.String("Marge")},
			},
		},
	}, nil)

	result, err := gen.Create(context.Background(), gateway, &workOrder{FirstName: "Marge"})
	assert.NoError(t, err)
	assert.Equal(t, &workOrder{FirstName: "Marge"}, result)
	gateway.AssertNumberOfCalls(t, "CreateEntity", 1)
}

func TestCreateGatewayError(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	gateway := &mockGateway{}
	gateway.On("CreateEntity", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	_, err := gen.Create(context.Background(), gateway, &workOrder{FirstName: "Marge"})
	assert.Error(t, err)
}

func TestUpdateWithExisting(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	gateway := &mockGateway{}
	gateway.On("UpdateEntity", mock.Anything, mock.Anything).Return(&crm.UpdateEntityResponse{
		Entity: &crm.Entity{
			EntityType: "new_workorders",
			Fields: []*crm.KeyValuePair{
				{Key: "new_firstname", StrValue: wrapperspb.String("Marge")},
				{Key: "new_lastname", StrValue: wrapperspb.String("Bouvier")},
			},
		},
	}, nil)

	existing := &workOrder{FirstName: "Marge", LastName: "Simpson"}
	updated := &workOrder{FirstName: "Marge", LastName: "Bouvier"}
	alreadyEmpty := []string{"Id", "SiteState", "WorkRegion", "StartedAt", "Attempts", "Hours", "Billable"}

	result, err := gen.Update(context.Background(), gateway, updated, "id", alreadyEmpty, existing)
	assert.NoError(t, err)
	assert.Equal(t, updated, result)

	gateway.AssertCalled(t, "UpdateEntity", mock.Anything, &crm.UpdateEntityRequest{
		Entity: &crm.Entity{
			EntityType: "new_workorders",
			Guid:       &crm.FormattedGuid{Value: "id"},
			Fields: []*crm.KeyValuePair{
				{Key: "new_lastname", Value: "Bouvier", StrValue: wrapperspb.String("Bouvier")},
			},
		},
	})
}

func TestUpdateWithExistingAllFieldsTheSame(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	gateway := &mockGateway{}

	existing := &workOrder{FirstName: "Marge", LastName: "Simpson"}
	updated := &workOrder{FirstName: "Marge", LastName: "Simpson"}
	alreadyEmpty := []string{"Id", "SiteState", "WorkRegion", "StartedAt", "Attempts", "Hours", "Billable"}

	result, err := gen.Update(context.Background(), gateway, updated, "id", alreadyEmpty, existing)
	assert.NoError(t, err)
	assert.Same(t, existing, result)
	gateway.AssertNotCalled(t, "UpdateEntity", mock.Anything, mock.Anything)
}

func TestUpdateWithoutExisting(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	gateway := &mockGateway{}
	gateway.On("UpdateEntity", mock.Anything, mock.Anything).Return(&crm.UpdateEntityResponse{
		Entity: &crm.Entity{
			EntityType: "new_workorders",
			Fields: []*crm.KeyValuePair{
				{Key: "new_firstname", StrValue: wrapperspb.String("Marge")},
			},
		},
	}, nil)

	result, err := gen.Update(context.Background(), gateway, &workOrder{FirstName: "Marge"}, "id", allFieldsEmpty, nil)
	assert.NoError(t, err)
	assert.Equal(t, &workOrder{FirstName: "Marge"}, result)
	gateway.AssertNumberOfCalls(t, "UpdateEntity", 1)
}

func TestDecodeEntityFormattedValues(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	record := &crm.Entity{
		EntityType: "new_workorders",
		Fields: []*crm.KeyValuePair{
			{
				Key:      "new_workregion@OData.Community.Display.V1.FormattedValue",
				StrValue: wrapperspb.String("California - LA County"),
			},
			{Key: "new_workregion", StrValue: wrapperspb.String("16")},
		},
	}
	result, err := gen.DecodeEntity(&workOrder{}, record)
	assert.NoError(t, err)
	assert.Equal(t, &workOrder{
		WorkRegion: &crm.WorkRegion{Region: 16, FormattedValue: "California - LA County"},
	}, result)
}

func TestDecodeEntityUnknownKeyIgnored(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	record := &crm.Entity{
		EntityType: "new_workorders",
		Fields: []*crm.KeyValuePair{
			{Key: "new_workregion", StrValue: wrapperspb.String("16")},
			{Key: "Darth", StrValue: wrapperspb.String("Vader")},
		},
	}
	result, err := gen.DecodeEntity(&workOrder{}, record)
	assert.NoError(t, err)
	assert.Equal(t, &workOrder{WorkRegion: &crm.WorkRegion{Region: 16}}, result)
}

func TestDecodeEntityFormattedValueWithoutBase(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	record := &crm.Entity{
		EntityType: "new_workorders",
		Fields: []*crm.KeyValuePair{
			{
				Key:      "new_workregion@OData.Community.Display.V1.FormattedValue",
				StrValue: wrapperspb.String("California - LA County"),
			},
		},
	}
	result, err := gen.DecodeEntity(&workOrder{}, record)
	assert.NoError(t, err)
	assert.Equal(t, &workOrder{}, result)
}

func TestAlreadyEmptyFields(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	empty, err := gen.AlreadyEmptyFields(&workOrder{FirstName: "Marge"})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Id", "LastName", "SiteState", "WorkRegion", "StartedAt", "Attempts", "Hours", "Billable",
	}, empty)
}

func TestValidateEntityType(t *testing.T) {
	gen := workOrderGenerator(t, nil)
	assert.NoError(t, gen.ValidateEntityType(&crm.Entity{EntityType: "new_workorders"}))
	err := gen.ValidateEntityType(&crm.Entity{EntityType: "contacts"})
	assert.ErrorIs(t, err, ErrEntityTypeMismatch)
}

func TestNewConfigValidation(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{EntityType: "new_workorders"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
