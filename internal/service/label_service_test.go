package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLabelService(t *testing.T, db *gorm.DB) LabelService {
	t.Helper()
	return NewLabelService(
		repository.NewLabelRepository(db),
		repository.NewAnnotationRepository(db),
		repository.NewProjectRepository(db),
	)
}

func TestLabelCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")

	input := LabelInput{
		Name:     "pedestrian",
		Color:    "#00ff00",
		Shortcut: "p",
		Attributes: []model.LabelAttribute{
			{Name: "occluded", Type: "boolean"},
		},
	}
	label, err := svc.Create(context.Background(), project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "pedestrian", label.Name)

	var attributes []model.LabelAttribute
	require.NoError(t, json.Unmarshal(label.Attributes, &attributes))
	require.Len(t, attributes, 1)
	assert.Equal(t, "occluded", attributes[0].Name)
}

func TestLabelCreate_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")
	seedLabel(t, db, project.ID, "car")

	_, err := svc.Create(context.Background(), project.ID, LabelInput{Name: "car"})
	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestLabelCreate_SameNameAcrossProjects(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")
	other := seedProject(t, db, "image")
	seedLabel(t, db, other.ID, "car")

	// 唯一性约束只在项目内生效
	_, err := svc.Create(context.Background(), project.ID, LabelInput{Name: "car"})
	assert.NoError(t, err)
}

func TestLabelCreate_InvalidName(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")

	for _, name := range []string{"", "  ", "<script>alert(1)</script>"} {
		_, err := svc.Create(context.Background(), project.ID, LabelInput{Name: name})
		var validation *apperr.ValidationError
		assert.ErrorAs(t, err, &validation, "name %q", name)
	}
}

func TestLabelCreate_ProjectNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)

	_, err := svc.Create(context.Background(), "missing", LabelInput{Name: "car"})
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLabelDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")
	label := seedLabel(t, db, project.ID, "car")

	require.NoError(t, svc.Delete(context.Background(), label.ID))

	_, err := svc.Get(label.ID)
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLabelDelete_BlockedByReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)

	project := seedProject(t, db, "image")
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusLabel, time.Now())
	seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":1,"y":2,"width":3,"height":4}}`)

	err := svc.Delete(context.Background(), label.ID)
	var invalidState *apperr.InvalidStateError
	require.ErrorAs(t, err, &invalidState)

	// 标签仍然存在
	_, err = svc.Get(label.ID)
	assert.NoError(t, err)
}

func TestLabelListByProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newLabelService(t, db)
	project := seedProject(t, db, "image")

	// 按排序序号升序返回
	first := &model.LabelModel{ID: "l-1", ProjectID: project.ID, Name: "car", OrderIndex: 2,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	second := &model.LabelModel{ID: "l-2", ProjectID: project.ID, Name: "person", OrderIndex: 1,
		CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	labels, err := svc.ListByProject(project.ID)
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "person", labels[0].Name)
	assert.Equal(t, "car", labels[1].Name)
}
