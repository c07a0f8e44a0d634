package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(t autosign.FieldType, page uint, x, y, w, h float64) autosign.Field {
	return autosign.Field{
		Type: t,
		Page: page,
		Rect: autosign.Rect{
			Position: autosign.Position{X: x, Y: y},
			Size:     autosign.Size{Width: w, Height: h},
		},
	}
}

func TestReplaceFields(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	doc := db.addDocument(3)
	svc := NewLayoutService(db.stores(), testLogger())

	keptID := uuid.NewString()
	sig := field(autosign.FieldTypeSignature, 1, 10, 80, 25, 6)
	sig.ID = keptID
	sig.AssignedTo = strPtr("  buyer ")

	saved, err := svc.ReplaceFields(ctx, doc.ID, "agent-1", []autosign.Field{
		sig,
		field(autosign.FieldTypeDate, 3, 40, 80, 15, 3),
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, keptID, saved[0].ID)
	require.NotNil(t, saved[0].AssignedTo)
	assert.Equal(t, "buyer", *saved[0].AssignedTo)
	_, err = uuid.Parse(saved[1].ID)
	assert.NoError(t, err, "missing ids should be generated")
	assert.Nil(t, saved[1].AssignedTo)

	got, err := svc.GetFields(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Contains(t, db.events(doc.ID), constant.ActivityLayoutSaved)
}

func TestReplaceFieldsRejectsInvalidLayout(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	doc := db.addDocument(2)
	svc := NewLayoutService(db.stores(), testLogger())

	prior, err := svc.ReplaceFields(ctx, doc.ID, "agent-1", []autosign.Field{field(autosign.FieldTypeName, 1, 0, 0, 20, 3)})
	require.NoError(t, err)

	duplicate := uuid.NewString()
	a := field(autosign.FieldTypeText, 1, 0, 0, 10, 3)
	a.ID = duplicate
	b := field(autosign.FieldTypeText, 1, 20, 0, 10, 3)
	b.ID = duplicate
	notUUID := field(autosign.FieldTypeText, 1, 40, 0, 10, 3)
	notUUID.ID = "field-1"

	tests := []struct {
		name   string
		fields []autosign.Field
	}{
		{"page beyond page count", []autosign.Field{field(autosign.FieldTypeDate, 3, 0, 0, 10, 3)}},
		{"overflowing width", []autosign.Field{field(autosign.FieldTypeText, 1, 95, 0, 10, 3)}},
		{"zero height", []autosign.Field{field(autosign.FieldTypeText, 1, 0, 0, 10, 0)}},
		{"unknown type", []autosign.Field{field("stamp", 1, 0, 0, 10, 3)}},
		{"duplicate ids", []autosign.Field{a, b}},
		{"id is not a uuid", []autosign.Field{notUUID}},
		{"one valid one invalid", []autosign.Field{
			field(autosign.FieldTypeSignature, 1, 10, 80, 25, 6),
			field(autosign.FieldTypeText, 1, 90, 0, 20, 3),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReplaceFields(ctx, doc.ID, "agent-1", tt.fields)
			require.ErrorIs(t, err, apperror.ErrValidation)

			appErr := apperror.FromError(err)
			assert.NotNil(t, appErr.Details)

			got, err := svc.GetFields(ctx, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, prior, got, "a rejected layout must not touch the stored one")
		})
	}
}

func TestReplaceFieldsRejectsIDOfAnotherDocument(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	first := db.addDocument(1)
	second := db.addDocument(1)
	svc := NewLayoutService(db.stores(), testLogger())

	saved, err := svc.ReplaceFields(ctx, first.ID, "agent-1", []autosign.Field{field(autosign.FieldTypeSignature, 1, 10, 80, 25, 6)})
	require.NoError(t, err)

	reused := field(autosign.FieldTypeSignature, 1, 10, 80, 25, 6)
	reused.ID = saved[0].ID
	_, err = svc.ReplaceFields(ctx, second.ID, "agent-1", []autosign.Field{reused})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, err := svc.GetFields(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplaceFieldsUnknownDocument(t *testing.T) {
	svc := NewLayoutService(newMemDB().stores(), testLogger())

	_, err := svc.ReplaceFields(context.Background(), uuid.NewString(), "agent-1", nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReplaceFieldsLockedAfterIssue(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	doc := db.addDocument(1)
	svc := NewLayoutService(db.stores(), testLogger())

	_, err := svc.ReplaceFields(ctx, doc.ID, "agent-1", []autosign.Field{field(autosign.FieldTypeSignature, 1, 0, 0, 25, 6)})
	require.NoError(t, err)

	db.sessions["s1"] = &model.SigningSession{BaseModel: model.BaseModel{ID: "s1"}, DocumentID: doc.ID, Status: constant.SessionStatusPending}

	_, err = svc.ReplaceFields(ctx, doc.ID, "agent-1", nil)
	assert.ErrorIs(t, err, apperror.ErrLayoutLocked)
}

func editorEvent(t *testing.T, eventType EditorEventType, data any) EditorEvent {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return EditorEvent{Type: eventType, Data: raw}
}

func TestApplyEditorEvents(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	doc := db.addDocument(2)
	svc := NewLayoutService(db.stores(), testLogger())

	saved, err := svc.ReplaceFields(ctx, doc.ID, "agent-1", []autosign.Field{
		field(autosign.FieldTypeText, 1, 10, 10, 20, 3),
		field(autosign.FieldTypeDate, 1, 10, 20, 15, 3),
	})
	require.NoError(t, err)
	textID, dateID := saved[0].ID, saved[1].ID

	required := true
	fields, err := svc.ApplyEditorEvents(ctx, doc.ID, "agent-1", []EditorEvent{
		editorEvent(t, EventFieldAdd, FieldAddData{
			Type:       autosign.FieldTypeInitials,
			Page:       2,
			X:          50,
			Y:          50,
			FieldProps: autosign.FieldProps{AssignedTo: strPtr("seller")},
		}),
		editorEvent(t, EventFieldMove, FieldMoveData{ID: textID, Page: 2, X: 60, Y: 90}),
		editorEvent(t, EventFieldResize, FieldResizeData{ID: textID, Width: 30, Height: 4}),
		editorEvent(t, EventFieldUpdate, FieldUpdateData{ID: textID, FieldProps: autosign.FieldProps{Required: &required, Label: strPtr("Lot number")}}),
		editorEvent(t, EventFieldRemove, FieldRemoveData{ID: dateID}),
	})
	require.NoError(t, err)
	require.Len(t, fields, 2)

	byID := map[string]autosign.Field{}
	for _, f := range fields {
		byID[f.ID] = f
		assert.NoError(t, f.Validate(2))
	}

	assert.NotContains(t, byID, dateID)
	text := byID[textID]
	assert.Equal(t, uint(2), text.Page)
	assert.True(t, text.Required)
	assert.Equal(t, "Lot number", text.Label)
	assert.InDelta(t, 60, text.X, 1e-9)
	assert.InDelta(t, 30, text.Width, 1e-9)

	var added autosign.Field
	for id, f := range byID {
		if id != textID {
			added = f
		}
	}
	assert.Equal(t, autosign.FieldTypeInitials, added.Type)
	require.NotNil(t, added.AssignedTo)
	assert.Equal(t, "seller", *added.AssignedTo)
}

func TestApplyEditorEventsRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	doc := db.addDocument(1)
	svc := NewLayoutService(db.stores(), testLogger())

	_, err := svc.ApplyEditorEvents(ctx, doc.ID, "agent-1", []EditorEvent{
		editorEvent(t, EventFieldAdd, FieldAddData{Type: autosign.FieldTypeCheckbox, Page: 1, X: 10, Y: 10}),
		editorEvent(t, EventFieldRemove, FieldRemoveData{ID: uuid.NewString()}),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	details, ok := apperror.FromError(err).Details.(autosign.FieldErrors)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, 1, details[0].Index)

	fields, err := svc.GetFields(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, fields)
}
