package service

import (
	"context"
	"testing"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAnnotationService(t *testing.T, db *gorm.DB) AnnotationService {
	t.Helper()
	return NewAnnotationService(
		repository.NewAnnotationRepository(db),
		repository.NewTaskRepository(db),
		repository.NewLabelRepository(db),
	)
}

func TestReplaceForTask(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())

	inputs := []AnnotationInput{
		{
			LabelID: label.ID,
			Type:    model.AnnotationTypeBbox,
			Data:    map[string]interface{}{"bbox": map[string]interface{}{"x": 10.0, "y": 20.0, "width": 30.0, "height": 40.0}},
		},
		{
			LabelID: label.ID,
			Type:    model.AnnotationTypePolygon,
			Data:    map[string]interface{}{"polygon": [][]float64{{10, 10}, {50, 20}, {30, 60}}},
		},
	}

	created, err := svc.ReplaceForTask(context.Background(), task.ID, inputs)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "pending", created[0].Status)

	stored, err := svc.ListByTask(task.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	bbox, ok := stored[0].GeometryBbox()
	require.True(t, ok)
	assert.Equal(t, 10.0, bbox.X)
	assert.Equal(t, 40.0, bbox.Height)
}

func TestReplaceForTask_RemovesPreviousSet(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())
	old := seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":1,"y":2,"width":3,"height":4}}`)

	inputs := []AnnotationInput{{
		LabelID: label.ID,
		Type:    model.AnnotationTypeSentiment,
		Data:    map[string]interface{}{"sentiment": "positive"},
	}}
	_, err := svc.ReplaceForTask(context.Background(), task.ID, inputs)
	require.NoError(t, err)

	stored, err := svc.ListByTask(task.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEqual(t, old.ID, stored[0].ID)
	assert.Equal(t, model.AnnotationTypeSentiment, stored[0].Type)
}

func TestReplaceForTask_EmptySetClearsAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())
	seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":1,"y":2,"width":3,"height":4}}`)

	created, err := svc.ReplaceForTask(context.Background(), task.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, created)

	stored, err := svc.ListByTask(task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestReplaceForTask_ValidationFailureKeepsOriginal(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())
	seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":1,"y":2,"width":3,"height":4}}`)

	inputs := []AnnotationInput{{
		LabelID: label.ID,
		Type:    "cuboid",
		Data:    map[string]interface{}{},
	}}
	_, err := svc.ReplaceForTask(context.Background(), task.ID, inputs)
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)

	// 校验失败时原集合保持不变
	stored, err := svc.ListByTask(task.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestReplaceForTask_LabelFromOtherProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	other := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	foreign := seedLabel(t, db, other.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())

	inputs := []AnnotationInput{{
		LabelID: foreign.ID,
		Type:    model.AnnotationTypeBbox,
		Data:    map[string]interface{}{},
	}}
	_, err := svc.ReplaceForTask(context.Background(), task.ID, inputs)
	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestReplaceForTask_MissingLabel(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())

	inputs := []AnnotationInput{{
		LabelID: "missing",
		Type:    model.AnnotationTypeBbox,
		Data:    map[string]interface{}{},
	}}
	_, err := svc.ReplaceForTask(context.Background(), task.ID, inputs)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestReplaceForTask_TaskNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newAnnotationService(t, db)

	_, err := svc.ReplaceForTask(context.Background(), "missing", nil)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
