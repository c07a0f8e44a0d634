package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LayoutService struct {
	logger    *zap.SugaredLogger
	documents DocumentStore
	fields    FieldStore
	activity  activityRecorder
}

func NewLayoutService(stores Stores, logger *zap.SugaredLogger) *LayoutService {
	return &LayoutService{
		logger:    logger,
		documents: stores.Documents,
		fields:    stores.Fields,
		activity:  activityRecorder{store: stores.Activity, logger: logger, now: time.Now},
	}
}

func (s *LayoutService) GetFields(ctx context.Context, documentID string) ([]autosign.Field, error) {
	if _, err := getDocument(ctx, s.documents, documentID); err != nil {
		return nil, err
	}

	fields, err := s.fields.GetFields(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}

	return model.ToAutoSignFields(fields), nil
}

// ReplaceFields validates the whole layout, then swaps it atomically. Fields
// without an id get one, supplied ids must be UUIDs.
func (s *LayoutService) ReplaceFields(ctx context.Context, documentID, actor string, fields []autosign.Field) ([]autosign.Field, error) {
	document, err := getDocument(ctx, s.documents, documentID)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeLayout(fields, uint(document.PageCount))
	if err != nil {
		return nil, err
	}

	return s.save(ctx, documentID, actor, normalized)
}

func (s *LayoutService) save(ctx context.Context, documentID, actor string, fields []autosign.Field) ([]autosign.Field, error) {
	rows := make([]model.Field, 0, len(fields))
	for i, f := range fields {
		rows = append(rows, model.NewField(documentID, f, i))
	}

	saved, err := s.fields.ReplaceFields(ctx, nil, documentID, rows)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, documentID, constant.ActivityLayoutSaved, actor, fmt.Sprintf("%d fields", len(saved)))

	return model.ToAutoSignFields(saved), nil
}

func normalizeLayout(fields []autosign.Field, pageCount uint) ([]autosign.Field, error) {
	out := make([]autosign.Field, 0, len(fields))
	var idErrors autosign.FieldErrors

	for i, f := range fields {
		if f.ID == "" {
			f.ID = uuid.NewString()
		} else if _, err := uuid.Parse(f.ID); err != nil {
			idErrors = append(idErrors, autosign.FieldError{Index: i, FieldID: f.ID, Message: "id must be a UUID"})
		}
		f.AssignedTo = autosign.NormalizeAssignee(f.AssignedTo)
		out = append(out, f)
	}

	if err := autosign.ValidateLayout(out, pageCount); err != nil {
		var fieldErrors autosign.FieldErrors
		if errors.As(err, &fieldErrors) {
			idErrors = append(idErrors, fieldErrors...)
		} else {
			return nil, apperror.Wrap(err, apperror.ErrValidation, "")
		}
	}

	if len(idErrors) > 0 {
		return nil, apperror.WithDetails(apperror.ErrValidation, "invalid field layout", idErrors)
	}

	return out, nil
}

type EditorEventType string

const (
	EventFieldAdd    EditorEventType = "field:add"
	EventFieldMove   EditorEventType = "field:move"
	EventFieldResize EditorEventType = "field:resize"
	EventFieldUpdate EditorEventType = "field:update"
	EventFieldRemove EditorEventType = "field:remove"
)

// EditorEvent is one placement editor action, Data depends on Type.
type EditorEvent struct {
	Type EditorEventType `json:"type" binding:"required" form:"type"`
	Data json.RawMessage `json:"data" binding:"required" form:"data"`
}

type FieldAddData struct {
	Type autosign.FieldType `json:"type"`
	Page uint               `json:"page"`
	// point the field is centered on, page percent
	X float64 `json:"x"`
	Y float64 `json:"y"`
	autosign.FieldProps
}

type FieldMoveData struct {
	ID   string  `json:"id"`
	Page uint    `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type FieldResizeData struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type FieldUpdateData struct {
	ID string `json:"id"`
	autosign.FieldProps
}

type FieldRemoveData struct {
	ID string `json:"id"`
}

func applyEditorEvent(layout autosign.Layout, event EditorEvent) (autosign.Layout, error) {
	switch event.Type {
	case EventFieldAdd:
		var data FieldAddData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return layout, err
		}
		next, f, err := layout.Add(data.Type, data.Page, autosign.Position{X: data.X, Y: data.Y})
		if err != nil {
			return layout, err
		}
		return next.Update(f.ID, data.FieldProps)
	case EventFieldMove:
		var data FieldMoveData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return layout, err
		}
		next := layout
		if data.Page != 0 {
			var err error
			if next, err = next.MoveToPage(data.ID, data.Page); err != nil {
				return layout, err
			}
		}
		return next.Move(data.ID, autosign.Position{X: data.X, Y: data.Y})
	case EventFieldResize:
		var data FieldResizeData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return layout, err
		}
		return layout.Resize(data.ID, autosign.Size{Width: data.Width, Height: data.Height})
	case EventFieldUpdate:
		var data FieldUpdateData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return layout, err
		}
		return layout.Update(data.ID, data.FieldProps)
	case EventFieldRemove:
		var data FieldRemoveData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return layout, err
		}
		return layout.Remove(data.ID)
	default:
		return layout, fmt.Errorf("unknown event type %q", event.Type)
	}
}

// ApplyEditorEvents replays a batch of editor actions on the stored layout
// and saves the result. Any failing event rejects the whole batch.
func (s *LayoutService) ApplyEditorEvents(ctx context.Context, documentID, actor string, events []EditorEvent) ([]autosign.Field, error) {
	document, err := getDocument(ctx, s.documents, documentID)
	if err != nil {
		return nil, err
	}

	stored, err := s.fields.GetFields(ctx, nil, documentID)
	if err != nil {
		return nil, err
	}

	layout := autosign.NewLayout(uint(document.PageCount), model.ToAutoSignFields(stored))
	for i, event := range events {
		s.logger.Debugf("Processing editor event #%d, type %s", i, event.Type)

		next, err := applyEditorEvent(layout, event)
		if err != nil {
			return nil, apperror.WithDetails(apperror.ErrValidation, "invalid editor event",
				autosign.FieldErrors{{Index: i, Message: err.Error()}})
		}
		layout = next
	}

	normalized, err := normalizeLayout(layout.Fields(), layout.PageCount())
	if err != nil {
		return nil, err
	}

	return s.save(ctx, documentID, actor, normalized)
}
