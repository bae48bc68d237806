package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/lumax90/pixlhub-gin/internal/geometry"
	"github.com/lumax90/pixlhub-gin/internal/metrics"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/lumax90/pixlhub-gin/internal/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 导出格式
const (
	FormatJSON      = "json"
	FormatCOCO      = "coco"
	FormatYOLO      = "yolo"
	FormatYOLOv8Seg = "yolov8-seg"
	FormatPascalVOC = "pascal-voc"
	FormatCSV       = "csv"
	FormatCustom    = "custom"
)

// validFormats 合法的导出格式集合
var validFormats = map[string]bool{
	FormatJSON:      true,
	FormatCOCO:      true,
	FormatYOLO:      true,
	FormatYOLOv8Seg: true,
	FormatPascalVOC: true,
	FormatCSV:       true,
	FormatCustom:    true,
}

// imageOnlyFormats 仅对图片项目有效的格式
var imageOnlyFormats = map[string]bool{
	FormatCOCO:      true,
	FormatYOLO:      true,
	FormatYOLOv8Seg: true,
	FormatPascalVOC: true,
}

// ExportOptions 导出选项
type ExportOptions struct {
	IncludeNonReviewed    bool `json:"includeNonReviewed"`
	IncludeMetadata       bool `json:"includeMetadata"`
	IncludeReviewMetadata bool `json:"includeReviewMetadata"`
	SplitDataset          bool `json:"splitDataset"`
	TrainSplit            int  `json:"trainSplit"`
	ValSplit              int  `json:"valSplit"`
	TestSplit             int  `json:"testSplit"`
}

// ExportFile 一个生成的导出文件
type ExportFile struct {
	Name string
	Data []byte
}

// GeneratedExport 导出生成结果
type GeneratedExport struct {
	Format          string
	Files           []ExportFile
	TaskCount       int
	AnnotationCount int
}

// PreviewResult 导出预览结果
// 先走完整生成管线再截断,内容与正式导出的前缀一致
type PreviewResult struct {
	Format          string      `json:"format"`
	TaskCount       int         `json:"taskCount"`
	AnnotationCount int         `json:"annotationCount"`
	Truncated       bool        `json:"truncated"`
	Content         interface{} `json:"content"`
}

// PreviewFile 文件型格式的预览条目
type PreviewFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ExportService 导出服务接口
type ExportService interface {
	Generate(ctx context.Context, projectID string, format string, options ExportOptions) (*GeneratedExport, error)
	Preview(ctx context.Context, projectID string, format string, options ExportOptions, limit int) (*PreviewResult, error)
	Run(ctx context.Context, projectID string, userID string, format string, options ExportOptions) (*model.ExportModel, string, error)
	Download(ctx context.Context, exportID string) (string, error)
	ListByProject(projectID string) ([]*model.ExportModel, error)
}

// exportService 导出服务实现
type exportService struct {
	projectRepo    repository.ProjectRepository
	taskRepo       repository.TaskRepository
	annotationRepo repository.AnnotationRepository
	assetRepo      repository.AssetRepository
	labelRepo      repository.LabelRepository
	exportRepo     repository.ExportRepository
	store          storage.BlobStore
	notification   NotificationService
	cfg            config.ExportConfig
}

// NewExportService 创建导出服务
func NewExportService(
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	annotationRepo repository.AnnotationRepository,
	assetRepo repository.AssetRepository,
	labelRepo repository.LabelRepository,
	exportRepo repository.ExportRepository,
	store storage.BlobStore,
	notification NotificationService,
	cfg config.ExportConfig,
) ExportService {
	return &exportService{
		projectRepo:    projectRepo,
		taskRepo:       taskRepo,
		annotationRepo: annotationRepo,
		assetRepo:      assetRepo,
		labelRepo:      labelRepo,
		exportRepo:     exportRepo,
		store:          store,
		notification:   notification,
		cfg:            cfg,
	}
}

// exportData 导出管线的数据快照
type exportData struct {
	project     *model.ProjectModel
	tasks       []*model.TaskModel
	annotations map[string][]*model.AnnotationModel // task ID → 标注
	assets      map[string]*model.AssetModel        // asset ID → 资产
	labelNames  map[string]string                   // label ID → 标签名
	total       int                                 // 标注总数
}

// statusFilter 返回选项对应的任务状态过滤集
func statusFilter(options ExportOptions) []string {
	if options.IncludeNonReviewed {
		return []string{model.StatusLabel, model.StatusReview, model.StatusCompleted}
	}
	return []string{model.StatusCompleted}
}

// validateExportRequest 校验导出请求
func (s *exportService) validateExportRequest(project *model.ProjectModel, format string, options ExportOptions) error {
	if !validFormats[format] {
		return apperr.NewValidation("unsupported export format %q", format)
	}
	if imageOnlyFormats[format] && project.ToolType != model.ToolTypeImage {
		return apperr.NewValidation("format %q requires an image project, got tool type %q", format, project.ToolType)
	}
	if options.SplitDataset {
		if options.TrainSplit+options.ValSplit+options.TestSplit != 100 {
			return apperr.NewValidation("dataset split percentages must sum to 100")
		}
	}
	return nil
}

// loadData 加载导出管线的数据快照
// 任务按创建时间升序,保证导出顺序稳定
func (s *exportService) loadData(projectID string, options ExportOptions) (*exportData, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("project", projectID)
		}
		return nil, err
	}

	tasks, err := s.taskRepo.FindByProject(projectID, &repository.TaskFilter{Statuses: statusFilter(options)})
	if err != nil {
		return nil, err
	}

	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}
	annotationList, err := s.annotationRepo.FindByTasks(taskIDs)
	if err != nil {
		return nil, err
	}
	annotations := map[string][]*model.AnnotationModel{}
	for _, annotation := range annotationList {
		annotations[annotation.TaskID] = append(annotations[annotation.TaskID], annotation)
	}

	assetList, err := s.assetRepo.FindByProject(projectID)
	if err != nil {
		return nil, err
	}
	assets := map[string]*model.AssetModel{}
	for _, asset := range assetList {
		assets[asset.ID] = asset
	}

	labels, err := s.labelRepo.FindByProject(projectID)
	if err != nil {
		return nil, err
	}
	labelNames := map[string]string{}
	for _, label := range labels {
		labelNames[label.ID] = label.Name
	}

	return &exportData{
		project:     project,
		tasks:       tasks,
		annotations: annotations,
		assets:      assets,
		labelNames:  labelNames,
		total:       len(annotationList),
	}, nil
}

// Generate 生成导出文件集
func (s *exportService) Generate(ctx context.Context, projectID string, format string, options ExportOptions) (*GeneratedExport, error) {
	data, err := s.loadData(projectID, options)
	if err != nil {
		return nil, err
	}
	if err := s.validateExportRequest(data.project, format, options); err != nil {
		return nil, err
	}

	var files []ExportFile
	switch format {
	case FormatJSON, FormatCustom:
		files, err = s.generateJSON(data, options)
	case FormatCOCO:
		files, err = s.generateCOCO(data)
	case FormatYOLO:
		files, err = s.generateYOLO(data, options)
	case FormatYOLOv8Seg:
		files, err = s.generateYOLOv8Seg(data, options)
	case FormatPascalVOC:
		files, err = s.generatePascalVOC(data)
	case FormatCSV:
		files, err = s.generateCSV(data)
	}
	if err != nil {
		return nil, err
	}

	return &GeneratedExport{
		Format:          format,
		Files:           files,
		TaskCount:       len(data.tasks),
		AnnotationCount: data.total,
	}, nil
}

// ---- JSON ----

// jsonExport 通用 JSON 导出文档
type jsonExport struct {
	Project         jsonProject `json:"project"`
	ExportedAt      time.Time   `json:"exportedAt"`
	TaskCount       int         `json:"taskCount"`
	AnnotationCount int         `json:"annotationCount"`
	Tasks           []jsonTask  `json:"tasks"`
}

type jsonProject struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	ToolType       string `json:"toolType"`
	AnnotationType string `json:"annotationType"`
}

type jsonAsset struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	URL      string                 `json:"url,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type jsonTask struct {
	ID          string                   `json:"id"`
	Status      string                   `json:"status"`
	Asset       jsonAsset                `json:"asset"`
	Annotations []map[string]interface{} `json:"annotations"`
	AssignedTo  *string                  `json:"assignedTo,omitempty"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
}

// buildJSONDocument 构建通用 JSON 导出文档
// 标注载荷按原样展开,附加 id/label/type 字段;
// 资产元数据与审核元数据(领取人、完成时间、标注时间戳)按选项开关附带
func (s *exportService) buildJSONDocument(data *exportData, options ExportOptions) *jsonExport {
	doc := &jsonExport{
		Project: jsonProject{
			ID:             data.project.ID,
			Name:           data.project.Name,
			Description:    data.project.Description,
			ToolType:       data.project.ToolType,
			AnnotationType: data.project.AnnotationType,
		},
		ExportedAt:      time.Now(),
		TaskCount:       len(data.tasks),
		AnnotationCount: data.total,
		Tasks:           []jsonTask{},
	}

	for _, task := range data.tasks {
		entry := jsonTask{
			ID:          task.ID,
			Status:      task.Status,
			Annotations: []map[string]interface{}{},
		}
		if options.IncludeReviewMetadata {
			entry.AssignedTo = task.AssignedTo
			entry.CompletedAt = task.CompletedAt
		}
		if asset, ok := data.assets[task.AssetID]; ok {
			entry.Asset = jsonAsset{
				ID:   asset.ID,
				Name: asset.Name,
				URL:  asset.URL,
			}
			if options.IncludeMetadata {
				entry.Asset.Metadata = asset.MetadataMap()
			}
		}
		for _, annotation := range data.annotations[task.ID] {
			item := annotation.DataMap()
			item["id"] = annotation.ID
			item["label"] = data.labelNames[annotation.LabelID]
			item["type"] = annotation.Type
			if options.IncludeReviewMetadata {
				item["createdAt"] = annotation.CreatedAt
				item["updatedAt"] = annotation.UpdatedAt
			}
			entry.Annotations = append(entry.Annotations, item)
		}
		doc.Tasks = append(doc.Tasks, entry)
	}
	return doc
}

// generateJSON 生成通用 JSON 导出
func (s *exportService) generateJSON(data *exportData, options ExportOptions) ([]ExportFile, error) {
	payload, err := json.MarshalIndent(s.buildJSONDocument(data, options), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export document: %w", err)
	}
	return []ExportFile{{Name: "annotations.json", Data: payload}}, nil
}

// ---- COCO ----

type cocoExport struct {
	Info        cocoInfo         `json:"info"`
	Images      []cocoImage      `json:"images"`
	Annotations []cocoAnnotation `json:"annotations"`
	Categories  []cocoCategory   `json:"categories"`
}

type cocoInfo struct {
	Description string `json:"description"`
	DateCreated string `json:"date_created"`
}

type cocoImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

type cocoAnnotation struct {
	ID           int         `json:"id"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	Bbox         []float64   `json:"bbox"`
	Area         float64     `json:"area"`
	Segmentation [][]float64 `json:"segmentation"`
	Iscrowd      int         `json:"iscrowd"`
}

type cocoCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// buildCOCODocument 构建 COCO 导出文档
// 类别按标签名首次出现顺序编号(从 1 开始),图片按任务顺序编号
// 无几何信息的标注跳过
func (s *exportService) buildCOCODocument(data *exportData) *cocoExport {
	doc := &cocoExport{
		Info: cocoInfo{
			Description: data.project.Name,
			DateCreated: time.Now().Format(time.RFC3339),
		},
		Images:      []cocoImage{},
		Annotations: []cocoAnnotation{},
		Categories:  []cocoCategory{},
	}

	categoryIDs := map[string]int{} // 标签名 → 类别 ID
	annotationID := 1

	for i, task := range data.tasks {
		asset, ok := data.assets[task.AssetID]
		if !ok {
			continue
		}
		width, height := asset.Dimensions()
		imageID := i + 1
		doc.Images = append(doc.Images, cocoImage{
			ID:       imageID,
			FileName: asset.Name,
			Width:    int(width),
			Height:   int(height),
		})

		for _, annotation := range data.annotations[task.ID] {
			bbox, ok := annotation.GeometryBbox()
			if !ok {
				continue
			}

			labelName := data.labelNames[annotation.LabelID]
			categoryID, seen := categoryIDs[labelName]
			if !seen {
				categoryID = len(categoryIDs) + 1
				categoryIDs[labelName] = categoryID
				doc.Categories = append(doc.Categories, cocoCategory{ID: categoryID, Name: labelName})
			}

			entry := cocoAnnotation{
				ID:           annotationID,
				ImageID:      imageID,
				CategoryID:   categoryID,
				Bbox:         []float64{bbox.X, bbox.Y, bbox.Width, bbox.Height},
				Area:         bbox.Area(),
				Segmentation: [][]float64{},
				Iscrowd:      0,
			}
			if polygon, ok := annotation.GeometryPolygon(); ok {
				entry.Segmentation = [][]float64{geometry.FlattenPolygon(polygon)}
			}
			doc.Annotations = append(doc.Annotations, entry)
			annotationID++
		}
	}
	return doc
}

// generateCOCO 生成 COCO 导出
func (s *exportService) generateCOCO(data *exportData) ([]ExportFile, error) {
	payload, err := json.MarshalIndent(s.buildCOCODocument(data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coco document: %w", err)
	}
	return []ExportFile{{Name: "annotations.json", Data: payload}}, nil
}

// ---- YOLO ----

// classIndex 按标签名首次出现顺序分配类别序号(从 0 开始)
type classIndex struct {
	ids   map[string]int
	names []string
}

func newClassIndex() *classIndex {
	return &classIndex{ids: map[string]int{}}
}

func (c *classIndex) index(name string) int {
	if id, ok := c.ids[name]; ok {
		return id
	}
	id := len(c.names)
	c.ids[name] = id
	c.names = append(c.names, name)
	return id
}

func (c *classIndex) classesFile() ExportFile {
	content := strings.Join(c.names, "\n")
	if len(c.names) > 0 {
		content += "\n"
	}
	return ExportFile{Name: "classes.txt", Data: []byte(content)}
}

// formatCoord 格式化归一化坐标,去除无意义的尾零
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// labelFileName 将资产文件名的扩展名替换为 .txt
func labelFileName(assetName string) string {
	ext := path.Ext(assetName)
	return strings.TrimSuffix(assetName, ext) + ".txt"
}

// splitPrefix 返回任务在数据集划分中的目录前缀
// 划分按任务顺序确定,不做随机打乱
func splitPrefix(options ExportOptions, index int, total int) string {
	if !options.SplitDataset || total == 0 {
		return ""
	}
	trainEnd := total * options.TrainSplit / 100
	valEnd := trainEnd + total*options.ValSplit/100
	switch {
	case index < trainEnd:
		return "train/"
	case index < valEnd:
		return "val/"
	default:
		return "test/"
	}
}

// generateYOLO 生成 YOLO 导出
// 每张图片一个 .txt,行格式 <class> <xc> <yc> <w> <h>,坐标归一化
// 多边形先归约为外接矩形
func (s *exportService) generateYOLO(data *exportData, options ExportOptions) ([]ExportFile, error) {
	classes := newClassIndex()
	var files []ExportFile

	for i, task := range data.tasks {
		asset, ok := data.assets[task.AssetID]
		if !ok {
			continue
		}
		width, height := asset.Dimensions()

		var lines []string
		for _, annotation := range data.annotations[task.ID] {
			bbox, ok := annotation.GeometryBbox()
			if !ok {
				continue
			}
			classID := classes.index(data.labelNames[annotation.LabelID])
			xc := geometry.Normalize(bbox.X+bbox.Width/2, width)
			yc := geometry.Normalize(bbox.Y+bbox.Height/2, height)
			w := geometry.Normalize(bbox.Width, width)
			h := geometry.Normalize(bbox.Height, height)
			lines = append(lines, fmt.Sprintf("%d %s %s %s %s",
				classID, formatCoord(xc), formatCoord(yc), formatCoord(w), formatCoord(h)))
		}

		files = append(files, ExportFile{
			Name: splitPrefix(options, i, len(data.tasks)) + labelFileName(asset.Name),
			Data: []byte(strings.Join(lines, "\n")),
		})
	}

	files = append(files, classes.classesFile())
	return files, nil
}

// generateYOLOv8Seg 生成 YOLOv8 分割导出
// 每行一个多边形 <class> x1 y1 x2 y2 ...,坐标归一化
// 矩形展开为 TL,TR,BR,BL 四顶点多边形
func (s *exportService) generateYOLOv8Seg(data *exportData, options ExportOptions) ([]ExportFile, error) {
	classes := newClassIndex()
	var files []ExportFile

	for i, task := range data.tasks {
		asset, ok := data.assets[task.AssetID]
		if !ok {
			continue
		}
		width, height := asset.Dimensions()

		var lines []string
		for _, annotation := range data.annotations[task.ID] {
			var polygon [][]float64
			if p, ok := annotation.GeometryPolygon(); ok {
				polygon = p
			} else if bbox, ok := annotation.GeometryBbox(); ok {
				polygon = geometry.BboxToQuad(bbox)
			} else {
				continue
			}

			classID := classes.index(data.labelNames[annotation.LabelID])
			parts := []string{strconv.Itoa(classID)}
			for _, vertex := range polygon {
				if len(vertex) < 2 {
					continue
				}
				parts = append(parts,
					formatCoord(geometry.Normalize(vertex[0], width)),
					formatCoord(geometry.Normalize(vertex[1], height)))
			}
			lines = append(lines, strings.Join(parts, " "))
		}

		files = append(files, ExportFile{
			Name: splitPrefix(options, i, len(data.tasks)) + labelFileName(asset.Name),
			Data: []byte(strings.Join(lines, "\n")),
		})
	}

	files = append(files, classes.classesFile())
	return files, nil
}

// ---- Pascal VOC ----

// generatePascalVOC 生成 Pascal VOC 导出
// 每张图片一个 XML,像素坐标取整
func (s *exportService) generatePascalVOC(data *exportData) ([]ExportFile, error) {
	var files []ExportFile

	for _, task := range data.tasks {
		asset, ok := data.assets[task.AssetID]
		if !ok {
			continue
		}
		width, height := asset.Dimensions()

		var b strings.Builder
		b.WriteString("<annotation>\n")
		b.WriteString("  <folder>images</folder>\n")
		fmt.Fprintf(&b, "  <filename>%s</filename>\n", xmlEscape(asset.Name))
		b.WriteString("  <size>\n")
		fmt.Fprintf(&b, "    <width>%d</width>\n", int(width))
		fmt.Fprintf(&b, "    <height>%d</height>\n", int(height))
		b.WriteString("    <depth>3</depth>\n")
		b.WriteString("  </size>\n")

		for _, annotation := range data.annotations[task.ID] {
			bbox, ok := annotation.GeometryBbox()
			if !ok {
				continue
			}
			b.WriteString("  <object>\n")
			fmt.Fprintf(&b, "    <name>%s</name>\n", xmlEscape(data.labelNames[annotation.LabelID]))
			b.WriteString("    <pose>Unspecified</pose>\n")
			b.WriteString("    <truncated>0</truncated>\n")
			b.WriteString("    <difficult>0</difficult>\n")
			b.WriteString("    <bndbox>\n")
			fmt.Fprintf(&b, "      <xmin>%d</xmin>\n", int(math.Round(bbox.X)))
			fmt.Fprintf(&b, "      <ymin>%d</ymin>\n", int(math.Round(bbox.Y)))
			fmt.Fprintf(&b, "      <xmax>%d</xmax>\n", int(math.Round(bbox.X+bbox.Width)))
			fmt.Fprintf(&b, "      <ymax>%d</ymax>\n", int(math.Round(bbox.Y+bbox.Height)))
			b.WriteString("    </bndbox>\n")
			b.WriteString("  </object>\n")
		}
		b.WriteString("</annotation>\n")

		ext := path.Ext(asset.Name)
		files = append(files, ExportFile{
			Name: strings.TrimSuffix(asset.Name, ext) + ".xml",
			Data: []byte(b.String()),
		})
	}
	return files, nil
}

// xmlEscape 转义 XML 文本内容
func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

// ---- CSV ----

// generateCSV 生成 CSV 导出
// 多边形顶点序列化为 JSON 放在末列,引号转义由 CSV 编码器处理
func (s *exportService) generateCSV(data *exportData) ([]ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"filename", "label", "type", "x", "y", "width", "height", "polygon_points"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, task := range data.tasks {
		asset, ok := data.assets[task.AssetID]
		if !ok {
			continue
		}
		for _, annotation := range data.annotations[task.ID] {
			record := []string{
				asset.Name,
				data.labelNames[annotation.LabelID],
				annotation.Type,
				"", "", "", "", "",
			}
			if bbox, ok := annotation.GeometryBbox(); ok {
				record[3] = formatCoord(bbox.X)
				record[4] = formatCoord(bbox.Y)
				record[5] = formatCoord(bbox.Width)
				record[6] = formatCoord(bbox.Height)
			}
			if polygon, ok := annotation.GeometryPolygon(); ok {
				points, err := json.Marshal(polygon)
				if err == nil {
					record[7] = string(points)
				}
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write csv record: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return []ExportFile{{Name: "annotations.csv", Data: buf.Bytes()}}, nil
}

// ---- Preview ----

// Preview 生成导出预览
// 走完整生成管线后截断:文档型格式裁剪任务/图片数组,文件型格式裁剪文件列表
func (s *exportService) Preview(ctx context.Context, projectID string, format string, options ExportOptions, limit int) (*PreviewResult, error) {
	if limit <= 0 {
		limit = s.cfg.PreviewLimit
	}

	data, err := s.loadData(projectID, options)
	if err != nil {
		return nil, err
	}
	if err := s.validateExportRequest(data.project, format, options); err != nil {
		return nil, err
	}

	result := &PreviewResult{
		Format:          format,
		TaskCount:       len(data.tasks),
		AnnotationCount: data.total,
	}

	switch format {
	case FormatJSON, FormatCustom:
		doc := s.buildJSONDocument(data, options)
		if len(doc.Tasks) > limit {
			doc.Tasks = doc.Tasks[:limit]
			result.Truncated = true
		}
		result.Content = doc

	case FormatCOCO:
		doc := s.buildCOCODocument(data)
		if len(doc.Images) > limit {
			doc.Images = doc.Images[:limit]
			result.Truncated = true

			// 只保留被截留图片的标注
			retained := map[int]bool{}
			for _, image := range doc.Images {
				retained[image.ID] = true
			}
			filtered := doc.Annotations[:0]
			for _, annotation := range doc.Annotations {
				if retained[annotation.ImageID] {
					filtered = append(filtered, annotation)
				}
			}
			doc.Annotations = filtered
		}
		result.Content = doc

	default:
		generated, err := s.Generate(ctx, projectID, format, options)
		if err != nil {
			return nil, err
		}
		files := generated.Files
		if len(files) > limit {
			files = files[:limit]
			result.Truncated = true
		}
		previews := make([]PreviewFile, 0, len(files))
		for _, file := range files {
			previews = append(previews, PreviewFile{Name: file.Name, Content: string(file.Data)})
		}
		result.Content = previews
	}

	return result, nil
}

// ---- Orchestration ----

// buildZip 将文件集打包为 zip
func buildZip(files []ExportFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, file := range files {
		entry, err := w.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %q: %w", file.Name, err)
		}
		if _, err := entry.Write(file.Data); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %q: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeFilename 将项目名净化为安全的文件名片段
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}

// Run 执行完整导出流程
// 生成 → 打包 → 上传对象存储 → 持久化导出记录 → 预签名下载链接 → 通知
func (s *exportService) Run(ctx context.Context, projectID string, userID string, format string, options ExportOptions) (*model.ExportModel, string, error) {
	start := time.Now()

	generated, err := s.Generate(ctx, projectID, format, options)
	if err != nil {
		return nil, "", err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		return nil, "", err
	}

	// 1. 打包:单文件直接上传,多文件打 zip
	var payload []byte
	var ext, contentType string
	if len(generated.Files) == 1 {
		file := generated.Files[0]
		payload = file.Data
		ext = strings.TrimPrefix(path.Ext(file.Name), ".")
		switch ext {
		case "json":
			contentType = "application/json"
		case "csv":
			contentType = "text/csv"
		default:
			contentType = "application/octet-stream"
		}
	} else {
		payload, err = buildZip(generated.Files)
		if err != nil {
			return nil, "", err
		}
		ext = "zip"
		contentType = "application/zip"
	}

	// 2. 版本号按项目+格式单调递增
	latest, err := s.exportRepo.LatestVersion(projectID, format)
	if err != nil {
		return nil, "", err
	}
	version := latest + 1

	filename := fmt.Sprintf("%s_%s_v%d.%s", sanitizeFilename(project.Name), format, version, ext)
	objectName := fmt.Sprintf("exports/%s/%s", projectID, filename)

	// 3. 上传对象存储
	if err := s.store.Put(ctx, objectName, payload, contentType); err != nil {
		return nil, "", apperr.NewStorage("export upload", err)
	}

	// 4. 持久化导出记录
	optionsSnapshot, _ := json.Marshal(options)
	filter := "completed"
	if options.IncludeNonReviewed {
		filter = "all"
	}
	now := time.Now()
	export := &model.ExportModel{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		Format:          format,
		Version:         version,
		Filename:        filename,
		FileURL:         objectName,
		FileSize:        int64(len(payload)),
		Options:         optionsSnapshot,
		StatusFilter:    filter,
		TaskCount:       generated.TaskCount,
		AnnotationCount: generated.AnnotationCount,
		ExpiresAt:       now.Add(time.Duration(s.cfg.ExpiryDays) * 24 * time.Hour),
		CreatedAt:       now,
	}
	if err := s.exportRepo.Create(export); err != nil {
		return nil, "", err
	}

	// 5. 预签名下载链接
	downloadURL, err := s.store.PresignedGet(ctx, objectName, time.Duration(s.cfg.DownloadTTL)*time.Second, filename)
	if err != nil {
		return nil, "", apperr.NewStorage("export presign", err)
	}

	// 6. 通知(尽力而为)
	if userID != "" && s.notification != nil {
		s.notification.NotifyExportReady(ctx, userID, export, downloadURL)
	}

	metrics.RecordExport(format, time.Since(start).Seconds())

	logrus.WithFields(logrus.Fields{
		"project_id": projectID,
		"format":     format,
		"version":    version,
		"file_size":  export.FileSize,
		"tasks":      export.TaskCount,
	}).Info("export completed")

	return export, downloadURL, nil
}

// Download 获取导出文件的下载链接
// 过期的导出不可下载
func (s *exportService) Download(ctx context.Context, exportID string) (string, error) {
	export, err := s.exportRepo.FindByID(exportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NewNotFound("export", exportID)
		}
		return "", err
	}
	if export.Expired(time.Now()) {
		return "", apperr.NewExpired("export", exportID)
	}

	url, err := s.store.PresignedGet(ctx, export.FileURL, time.Duration(s.cfg.DownloadTTL)*time.Second, export.Filename)
	if err != nil {
		return "", apperr.NewStorage("export presign", err)
	}
	return url, nil
}

// ListByProject 查询项目的导出历史
func (s *exportService) ListByProject(projectID string) ([]*model.ExportModel, error) {
	return s.exportRepo.FindByProject(projectID)
}
