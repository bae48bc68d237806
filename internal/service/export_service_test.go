package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newExportService 装配依赖内存数据库的导出服务
func newExportService(t *testing.T, db *gorm.DB, store *fakeBlobStore) ExportService {
	t.Helper()

	notification := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewExportService(
		repository.NewProjectRepository(db),
		repository.NewTaskRepository(db),
		repository.NewAnnotationRepository(db),
		repository.NewAssetRepository(db),
		repository.NewLabelRepository(db),
		repository.NewExportRepository(db),
		store,
		notification,
		config.ExportConfig{ExpiryDays: 30, DownloadTTL: 3600, PreviewLimit: 3},
	)
}

// exportFixture 单任务导出测试数据
type exportFixture struct {
	project *model.ProjectModel
	asset   *model.AssetModel
	label   *model.LabelModel
	task    *model.TaskModel
}

// seedExportFixture 创建一个带已完成任务的图片项目
// 资产尺寸 100×200,标注为 bbox {10,20,30,40}
func seedExportFixture(t *testing.T, db *gorm.DB) *exportFixture {
	t.Helper()

	project := seedProject(t, db, model.ToolTypeImage)
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", []byte(`{"width":100,"height":200}`))
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, time.Now())
	seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":10,"y":20,"width":30,"height":40}}`)
	return &exportFixture{project: project, asset: asset, label: label, task: task}
}

func TestGenerate_JSON(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatJSON, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 1)
	assert.Equal(t, "annotations.json", generated.Files[0].Name)
	assert.Equal(t, 1, generated.TaskCount)
	assert.Equal(t, 1, generated.AnnotationCount)

	var doc jsonExport
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	assert.Equal(t, f.project.ID, doc.Project.ID)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "frame-001.jpg", doc.Tasks[0].Asset.Name)
	require.Len(t, doc.Tasks[0].Annotations, 1)
	annotation := doc.Tasks[0].Annotations[0]
	assert.Equal(t, "car", annotation["label"])
	assert.Equal(t, model.AnnotationTypeBbox, annotation["type"])
	assert.Contains(t, annotation, "bbox")
}

func TestGenerate_JSON_MetadataGatedByOption(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	ctx := context.Background()

	// 默认不附带资产元数据
	generated, err := svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{})
	require.NoError(t, err)
	var doc jsonExport
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Nil(t, doc.Tasks[0].Asset.Metadata)

	// includeMetadata 打开后原样附带
	generated, err = svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{IncludeMetadata: true})
	require.NoError(t, err)
	doc = jsonExport{}
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, float64(100), doc.Tasks[0].Asset.Metadata["width"])
	assert.Equal(t, float64(200), doc.Tasks[0].Asset.Metadata["height"])
}

func TestGenerate_JSON_ReviewMetadata(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	ctx := context.Background()

	completedAt := time.Now()
	require.NoError(t, db.Model(f.task).Updates(map[string]interface{}{
		"assigned_to":  "labeler-1",
		"completed_at": completedAt,
	}).Error)

	// includeReviewMetadata 附带任务领取人/完成时间与标注时间戳
	generated, err := svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{IncludeReviewMetadata: true})
	require.NoError(t, err)
	var doc jsonExport
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	require.Len(t, doc.Tasks, 1)
	entry := doc.Tasks[0]
	require.NotNil(t, entry.AssignedTo)
	assert.Equal(t, "labeler-1", *entry.AssignedTo)
	require.NotNil(t, entry.CompletedAt)
	assert.WithinDuration(t, completedAt, *entry.CompletedAt, time.Second)
	require.Len(t, entry.Annotations, 1)
	assert.Contains(t, entry.Annotations[0], "createdAt")
	assert.Contains(t, entry.Annotations[0], "updatedAt")

	// 默认导出不泄露审核元数据
	generated, err = svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{})
	require.NoError(t, err)
	doc = jsonExport{}
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	require.Len(t, doc.Tasks, 1)
	assert.Nil(t, doc.Tasks[0].AssignedTo)
	assert.Nil(t, doc.Tasks[0].CompletedAt)
	assert.NotContains(t, doc.Tasks[0].Annotations[0], "createdAt")
}

func TestGenerate_CustomMatchesJSON(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	// custom 是 JSON 的别名管线
	generated, err := svc.Generate(context.Background(), f.project.ID, FormatCustom, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 1)
	assert.Equal(t, "annotations.json", generated.Files[0].Name)
}

func TestGenerate_StatusFilter(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	seedTask(t, db, f.project.ID, f.asset.ID, model.StatusLabel, time.Now())
	seedTask(t, db, f.project.ID, f.asset.ID, model.StatusReview, time.Now())
	seedTask(t, db, f.project.ID, f.asset.ID, model.StatusPrelabel, time.Now())
	ctx := context.Background()

	// 默认只导出 completed
	generated, err := svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, generated.TaskCount)

	// includeNonReviewed 放开到 label/review/completed,prelabel 始终排除
	generated, err = svc.Generate(ctx, f.project.ID, FormatJSON, ExportOptions{IncludeNonReviewed: true})
	require.NoError(t, err)
	assert.Equal(t, 3, generated.TaskCount)
}

func TestGenerate_COCO(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	person := seedLabel(t, db, f.project.ID, "person")
	seedAnnotation(t, db, f.task.ID, person.ID, model.AnnotationTypePolygon,
		`{"polygon":[[10,10],[50,20],[30,60]]}`)
	// 无几何信息的标注跳过
	seedAnnotation(t, db, f.task.ID, f.label.ID, model.AnnotationTypeSentiment,
		`{"sentiment":"positive"}`)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatCOCO, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 1)

	var doc cocoExport
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))

	require.Len(t, doc.Images, 1)
	assert.Equal(t, 1, doc.Images[0].ID)
	assert.Equal(t, "frame-001.jpg", doc.Images[0].FileName)
	assert.Equal(t, 100, doc.Images[0].Width)
	assert.Equal(t, 200, doc.Images[0].Height)

	require.Len(t, doc.Annotations, 2)
	first := doc.Annotations[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 1, first.ImageID)
	assert.Equal(t, 1, first.CategoryID)
	assert.Equal(t, []float64{10, 20, 30, 40}, first.Bbox)
	assert.Equal(t, 1200.0, first.Area)
	assert.Empty(t, first.Segmentation)

	// 多边形归约为外接矩形,分割环为扁平顶点序列
	second := doc.Annotations[1]
	assert.Equal(t, 2, second.CategoryID)
	assert.Equal(t, []float64{10, 10, 40, 50}, second.Bbox)
	require.Len(t, second.Segmentation, 1)
	assert.Equal(t, []float64{10, 10, 50, 20, 30, 60}, second.Segmentation[0])

	// 类别按首次出现顺序从 1 编号
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, cocoCategory{ID: 1, Name: "car"}, doc.Categories[0])
	assert.Equal(t, cocoCategory{ID: 2, Name: "person"}, doc.Categories[1])
}

func TestGenerate_COCO_DimensionFallback(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	project := seedProject(t, db, model.ToolTypeImage)
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	label := seedLabel(t, db, project.ID, "car")
	task := seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, time.Now())
	seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
		`{"bbox":{"x":0,"y":0,"width":10,"height":10}}`)

	generated, err := svc.Generate(context.Background(), project.ID, FormatCOCO, ExportOptions{})
	require.NoError(t, err)

	var doc cocoExport
	require.NoError(t, json.Unmarshal(generated.Files[0].Data, &doc))
	require.Len(t, doc.Images, 1)
	assert.Equal(t, 1920, doc.Images[0].Width)
	assert.Equal(t, 1080, doc.Images[0].Height)
}

func TestGenerate_YOLO(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatYOLO, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 2)

	assert.Equal(t, "frame-001.txt", generated.Files[0].Name)
	// bbox {10,20,30,40} @ 100×200: xc=25/100 yc=40/200 w=30/100 h=40/200
	assert.Equal(t, "0 0.25 0.2 0.3 0.2", string(generated.Files[0].Data))

	assert.Equal(t, "classes.txt", generated.Files[1].Name)
	assert.Equal(t, "car\n", string(generated.Files[1].Data))
}

func TestGenerate_YOLOv8Seg(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	person := seedLabel(t, db, f.project.ID, "person")
	seedAnnotation(t, db, f.task.ID, person.ID, model.AnnotationTypePolygon,
		`{"polygon":[[10,10],[50,20],[30,60]]}`)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatYOLOv8Seg, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 2)

	lines := strings.Split(string(generated.Files[0].Data), "\n")
	require.Len(t, lines, 2)
	// 矩形展开为 TL,TR,BR,BL 四顶点: (10,20)(40,20)(40,60)(10,60) @ 100×200
	assert.Equal(t, "0 0.1 0.1 0.4 0.1 0.4 0.3 0.1 0.3", lines[0])
	// 多边形顶点逐个归一化
	assert.Equal(t, "1 0.1 0.05 0.5 0.1 0.3 0.3", lines[1])
}

func TestGenerate_PascalVOC(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatPascalVOC, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 1)
	assert.Equal(t, "frame-001.xml", generated.Files[0].Name)

	content := string(generated.Files[0].Data)
	assert.Contains(t, content, "<folder>images</folder>")
	assert.Contains(t, content, "<filename>frame-001.jpg</filename>")
	assert.Contains(t, content, "<width>100</width>")
	assert.Contains(t, content, "<height>200</height>")
	assert.Contains(t, content, "<depth>3</depth>")
	assert.Contains(t, content, "<name>car</name>")
	assert.Contains(t, content, "<xmin>10</xmin>")
	assert.Contains(t, content, "<ymin>20</ymin>")
	assert.Contains(t, content, "<xmax>40</xmax>")
	assert.Contains(t, content, "<ymax>60</ymax>")
}

func TestGenerate_CSV(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	person := seedLabel(t, db, f.project.ID, "person")
	seedAnnotation(t, db, f.task.ID, person.ID, model.AnnotationTypePolygon,
		`{"polygon":[[10,10],[50,20]]}`)

	generated, err := svc.Generate(context.Background(), f.project.ID, FormatCSV, ExportOptions{})
	require.NoError(t, err)
	require.Len(t, generated.Files, 1)
	assert.Equal(t, "annotations.csv", generated.Files[0].Name)

	lines := strings.Split(strings.TrimSpace(string(generated.Files[0].Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "filename,label,type,x,y,width,height,polygon_points", lines[0])
	assert.Equal(t, "frame-001.jpg,car,bbox,10,20,30,40,", lines[1])
	// 多边形顶点 JSON 在末列,引号由 CSV 编码器转义
	assert.Contains(t, lines[2], "frame-001.jpg,person,polygon")
	assert.Contains(t, lines[2], `[[10,10],[50,20]]`)
}

func TestGenerate_SplitDataset(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	project := seedProject(t, db, model.ToolTypeImage)
	label := seedLabel(t, db, project.ID, "car")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		asset := seedAsset(t, db, project.ID, "frame-"+string(rune('a'+i))+".jpg", []byte(`{"width":100,"height":100}`))
		task := seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, base.Add(time.Duration(i)*time.Second))
		seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
			`{"bbox":{"x":0,"y":0,"width":10,"height":10}}`)
	}

	options := ExportOptions{SplitDataset: true, TrainSplit: 70, ValSplit: 20, TestSplit: 10}
	generated, err := svc.Generate(context.Background(), project.ID, FormatYOLO, options)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, file := range generated.Files {
		if file.Name == "classes.txt" {
			continue
		}
		prefix := strings.SplitN(file.Name, "/", 2)[0]
		counts[prefix]++
	}
	assert.Equal(t, 7, counts["train"])
	assert.Equal(t, 2, counts["val"])
	assert.Equal(t, 1, counts["test"])
}

func TestGenerate_SplitMustSumTo100(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	options := ExportOptions{SplitDataset: true, TrainSplit: 70, ValSplit: 20, TestSplit: 20}
	_, err := svc.Generate(context.Background(), f.project.ID, FormatYOLO, options)
	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGenerate_ImageOnlyFormatOnTextProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	project := seedProject(t, db, model.ToolTypeText)

	for _, format := range []string{FormatCOCO, FormatYOLO, FormatYOLOv8Seg, FormatPascalVOC} {
		_, err := svc.Generate(context.Background(), project.ID, format, ExportOptions{})
		var validation *apperr.ValidationError
		assert.ErrorAs(t, err, &validation, format)
	}

	// 通用格式不受工具类型限制
	_, err := svc.Generate(context.Background(), project.ID, FormatJSON, ExportOptions{})
	assert.NoError(t, err)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	_, err := svc.Generate(context.Background(), f.project.ID, "tfrecord", ExportOptions{})
	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGenerate_ProjectNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	_, err := svc.Generate(context.Background(), "missing", FormatJSON, ExportOptions{})
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestPreview_JSONTruncation(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	project := seedProject(t, db, model.ToolTypeImage)
	asset := seedAsset(t, db, project.ID, "frame-001.jpg", nil)
	for i := 0; i < 5; i++ {
		seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, time.Now().Add(time.Duration(i)*time.Second))
	}

	result, err := svc.Preview(context.Background(), project.ID, FormatJSON, ExportOptions{}, 2)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	// 计数反映完整数据集,内容被截断
	assert.Equal(t, 5, result.TaskCount)

	doc, ok := result.Content.(*jsonExport)
	require.True(t, ok)
	assert.Len(t, doc.Tasks, 2)
}

func TestPreview_COCOFiltersAnnotations(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	project := seedProject(t, db, model.ToolTypeImage)
	label := seedLabel(t, db, project.ID, "car")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		asset := seedAsset(t, db, project.ID, "frame.jpg", []byte(`{"width":100,"height":100}`))
		task := seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, base.Add(time.Duration(i)*time.Second))
		seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
			`{"bbox":{"x":0,"y":0,"width":10,"height":10}}`)
	}

	result, err := svc.Preview(context.Background(), project.ID, FormatCOCO, ExportOptions{}, 2)
	require.NoError(t, err)
	assert.True(t, result.Truncated)

	doc, ok := result.Content.(*cocoExport)
	require.True(t, ok)
	assert.Len(t, doc.Images, 2)
	// 被裁掉图片的标注一并过滤
	for _, annotation := range doc.Annotations {
		assert.LessOrEqual(t, annotation.ImageID, 2)
	}
	assert.Len(t, doc.Annotations, 2)
}

func TestPreview_FileFormatTruncation(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	project := seedProject(t, db, model.ToolTypeImage)
	label := seedLabel(t, db, project.ID, "car")
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		asset := seedAsset(t, db, project.ID, "frame.jpg", []byte(`{"width":100,"height":100}`))
		task := seedTask(t, db, project.ID, asset.ID, model.StatusCompleted, base.Add(time.Duration(i)*time.Second))
		seedAnnotation(t, db, task.ID, label.ID, model.AnnotationTypeBbox,
			`{"bbox":{"x":0,"y":0,"width":10,"height":10}}`)
	}

	result, err := svc.Preview(context.Background(), project.ID, FormatYOLO, ExportOptions{}, 2)
	require.NoError(t, err)
	assert.True(t, result.Truncated)

	files, ok := result.Content.([]PreviewFile)
	require.True(t, ok)
	assert.Len(t, files, 2)
}

func TestPreview_DefaultLimit(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	// limit<=0 回退到配置的预览上限,单任务项目不截断
	result, err := svc.Preview(context.Background(), f.project.ID, FormatJSON, ExportOptions{}, 0)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Equal(t, 1, result.TaskCount)
}

func TestRun(t *testing.T) {
	db := setupTestDB(t)
	store := newFakeBlobStore()
	svc := newExportService(t, db, store)
	f := seedExportFixture(t, db)
	ctx := context.Background()

	before := time.Now()
	export, downloadURL, err := svc.Run(ctx, f.project.ID, "admin-1", FormatJSON, ExportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, export.Version)
	assert.Equal(t, FormatJSON, export.Format)
	assert.Equal(t, "completed", export.StatusFilter)
	assert.Equal(t, 1, export.TaskCount)
	assert.Equal(t, 1, export.AnnotationCount)
	assert.Contains(t, export.Filename, "Street_Scenes_json_v1.json")
	assert.NotEmpty(t, downloadURL)

	// 过期时间按配置的保留天数推算
	expectedExpiry := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, expectedExpiry, export.ExpiresAt, time.Minute)

	// 对象已上传
	data, ok := store.get(export.FileURL)
	require.True(t, ok)
	assert.Equal(t, export.FileSize, int64(len(data)))

	// 导出就绪通知已写入
	notifications, err := repository.NewNotificationRepository(db).FindByUser("admin-1")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationExportReady, notifications[0].Type)

	// 版本按项目+格式单调递增
	export, _, err = svc.Run(ctx, f.project.ID, "", FormatJSON, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, export.Version)

	// 不同格式独立计数
	export, _, err = svc.Run(ctx, f.project.ID, "", FormatCSV, ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, export.Version)
}

func TestRun_MultiFileFormatZipped(t *testing.T) {
	db := setupTestDB(t)
	store := newFakeBlobStore()
	svc := newExportService(t, db, store)
	f := seedExportFixture(t, db)

	export, _, err := svc.Run(context.Background(), f.project.ID, "", FormatYOLO, ExportOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(export.Filename, ".zip"))

	data, ok := store.get(export.FileURL)
	require.True(t, ok)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	assert.ElementsMatch(t, []string{"frame-001.txt", "classes.txt"}, names)
}

func TestRun_OptionsSnapshot(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)

	options := ExportOptions{IncludeNonReviewed: true}
	export, _, err := svc.Run(context.Background(), f.project.ID, "", FormatJSON, options)
	require.NoError(t, err)
	assert.Equal(t, "all", export.StatusFilter)

	var snapshot ExportOptions
	require.NoError(t, json.Unmarshal(export.Options, &snapshot))
	assert.True(t, snapshot.IncludeNonReviewed)
}

func TestDownload(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	ctx := context.Background()

	export, _, err := svc.Run(ctx, f.project.ID, "", FormatJSON, ExportOptions{})
	require.NoError(t, err)

	url, err := svc.Download(ctx, export.ID)
	require.NoError(t, err)
	assert.Contains(t, url, export.FileURL)
}

func TestDownload_Expired(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	ctx := context.Background()

	export, _, err := svc.Run(ctx, f.project.ID, "", FormatJSON, ExportOptions{})
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.ExportModel{}).Where("id = ?", export.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = svc.Download(ctx, export.ID)
	var expired *apperr.ExpiredResourceError
	assert.ErrorAs(t, err, &expired)
}

func TestDownload_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())

	_, err := svc.Download(context.Background(), "missing")
	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListByProject(t *testing.T) {
	db := setupTestDB(t)
	svc := newExportService(t, db, newFakeBlobStore())
	f := seedExportFixture(t, db)
	ctx := context.Background()

	_, _, err := svc.Run(ctx, f.project.ID, "", FormatJSON, ExportOptions{})
	require.NoError(t, err)
	_, _, err = svc.Run(ctx, f.project.ID, "", FormatCSV, ExportOptions{})
	require.NoError(t, err)

	exports, err := svc.ListByProject(f.project.ID)
	require.NoError(t, err)
	assert.Len(t, exports, 2)
}
