package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	// rejected 是 UI 别名,归一化为 label
	assert.Equal(t, StatusLabel, NormalizeStatus(StatusRejected))

	// 其余状态原样返回
	assert.Equal(t, StatusPrelabel, NormalizeStatus(StatusPrelabel))
	assert.Equal(t, StatusLabel, NormalizeStatus(StatusLabel))
	assert.Equal(t, StatusReview, NormalizeStatus(StatusReview))
	assert.Equal(t, StatusCompleted, NormalizeStatus(StatusCompleted))
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range []string{StatusPrelabel, StatusLabel, StatusReview, StatusCompleted, StatusRejected} {
		assert.True(t, IsValidStatus(status), status)
	}

	assert.False(t, IsValidStatus("archived"))
	assert.False(t, IsValidStatus(""))
}

func TestTaskModelValidate(t *testing.T) {
	task := &TaskModel{
		ID:        "task-1",
		ProjectID: "project-1",
		AssetID:   "asset-1",
		Status:    StatusLabel,
	}
	assert.NoError(t, task.Validate())

	invalid := &TaskModel{ProjectID: "project-1", AssetID: "asset-1", Status: StatusLabel}
	assert.Error(t, invalid.Validate())

	badStatus := &TaskModel{ID: "task-1", ProjectID: "project-1", AssetID: "asset-1", Status: "unknown"}
	assert.Error(t, badStatus.Validate())
}
