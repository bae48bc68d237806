package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// AssetRepository 资产仓储接口
type AssetRepository interface {
	Create(asset *model.AssetModel) error
	FindByID(id string) (*model.AssetModel, error)
	FindByIDs(ids []string) ([]*model.AssetModel, error)
	FindByProject(projectID string) ([]*model.AssetModel, error)
}

// assetRepository 资产仓储实现
type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// Create 创建资产
func (r *assetRepository) Create(asset *model.AssetModel) error {
	return r.db.Create(asset).Error
}

// FindByID 根据 ID 查找资产
func (r *assetRepository) FindByID(id string) (*model.AssetModel, error) {
	var asset model.AssetModel
	if err := r.db.Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindByIDs 根据 ID 列表查找资产
func (r *assetRepository) FindByIDs(ids []string) ([]*model.AssetModel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var assets []*model.AssetModel
	err := r.db.Where("id IN ?", ids).Find(&assets).Error
	return assets, err
}

// FindByProject 查找项目的全部资产
func (r *assetRepository) FindByProject(projectID string) ([]*model.AssetModel, error) {
	var assets []*model.AssetModel
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&assets).Error
	return assets, err
}
