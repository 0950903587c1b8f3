package app

import (
	"Viewfinder/internal/content/domain"
)

// ControlsSource 提供现有 profile 列表和作为模板的默认控制项。
type ControlsSource interface {
	Profiles() ([]string, error)
	LoadControls(profile string) (*domain.Controls, error)
}

// Result 是一次成功创建的产物。
type Result struct {
	Name         string
	ControlsPath string
	RegistryPath string
	BackupPath   string
}
