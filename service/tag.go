package service

import (
	"context"
	"fmt"

	"taskflow/dao/model"

	"gorm.io/gorm"
)

// TagService manages the tag vocabulary. Tags are shared by every project.
type TagService struct {
	db *gorm.DB
}

type CreateTagInput struct {
	Name  string  `json:"name" validate:"required,min=1,max=50"`
	Color *string `json:"color" validate:"omitempty,max=32"`
}

type UpdateTagInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=50"`
	Color *string `json:"color" validate:"omitempty,max=32"`
}

func (s *TagService) Create(ctx context.Context, in CreateTagInput) (*model.Tag, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	tag := model.Tag{Name: in.Name, Color: model.DefaultTagColor}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &tag, nil
}

// List returns all tags by name.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Update(ctx context.Context, tagID uint, in UpdateTagInput) (*model.Tag, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	var tag model.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&tag, tagID).Error; err != nil {
			return notFoundOr(err, "tag")
		}
		updates := map[string]any{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Color != nil {
			updates["color"] = *in.Color
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&tag).Updates(updates).Error; err != nil {
			return fmt.Errorf("update tag: %w", err)
		}
		return tx.Take(&tag, tagID).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete removes the tag from every task, then the tag itself.
func (s *TagService) Delete(ctx context.Context, tagID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag model.Tag
		if err := tx.Take(&tag, tagID).Error; err != nil {
			return notFoundOr(err, "tag")
		}
		if err := tx.Where("tag_id = ?", tagID).Delete(&model.TaskTag{}).Error; err != nil {
			return fmt.Errorf("delete task tags: %w", err)
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		return nil
	})
}
