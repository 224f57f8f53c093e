package mappers

import (
	"github.com/metashield/jirasync/internal/domain/syncsetting"
	"github.com/metashield/jirasync/internal/infrastructure/persistence/models"
)

// SyncSettingMapper provides methods for converting between domain and model
type SyncSettingMapper interface {
	ToDomain(model *models.SyncSettingModel) *syncsetting.Setting
	ToModel(domain *syncsetting.Setting) *models.SyncSettingModel
	ToDomainList(modelList []*models.SyncSettingModel) []*syncsetting.Setting
}

// SyncSettingMapperImpl implements SyncSettingMapper
type SyncSettingMapperImpl struct{}

// NewSyncSettingMapper creates a new SyncSettingMapper
func NewSyncSettingMapper() SyncSettingMapper {
	return &SyncSettingMapperImpl{}
}

// ToDomain converts a SyncSettingModel to a Setting domain entity
func (m *SyncSettingMapperImpl) ToDomain(model *models.SyncSettingModel) *syncsetting.Setting {
	if model == nil {
		return nil
	}

	return syncsetting.ReconstructSetting(
		model.ID,
		model.SettingKey,
		model.SettingValue,
		syncsetting.ValueType(model.ValueType),
		model.Description,
		model.UpdatedAt,
	)
}

// ToModel converts a Setting domain entity to a SyncSettingModel
func (m *SyncSettingMapperImpl) ToModel(domain *syncsetting.Setting) *models.SyncSettingModel {
	if domain == nil {
		return nil
	}

	return &models.SyncSettingModel{
		ID:           domain.ID(),
		SettingKey:   domain.Key(),
		SettingValue: domain.Value(),
		ValueType:    string(domain.ValueType()),
		Description:  domain.Description(),
		UpdatedAt:    domain.UpdatedAt(),
	}
}

// ToDomainList converts a list of SyncSettingModel to a list of Setting domain entities
func (m *SyncSettingMapperImpl) ToDomainList(modelList []*models.SyncSettingModel) []*syncsetting.Setting {
	if modelList == nil {
		return nil
	}

	domains := make([]*syncsetting.Setting, 0, len(modelList))
	for _, model := range modelList {
		if domain := m.ToDomain(model); domain != nil {
			domains = append(domains, domain)
		}
	}

	return domains
}
