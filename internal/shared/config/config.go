package config

import (
	"os"
	"path/filepath"

	"Viewfinder/modules/kit/errx"
)

const defaultConfigRelPath = "configs/conf.yml"

// Conf 在进程启动时 Load 一次，之后只读。
var Conf Config

// Load 读取配置。
//
// 约定：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Load(cfgName string) error {
	curDir, err := os.Getwd()
	if err != nil {
		return errx.ReadFailed(".", err.Error())
	}

	path := cfgName
	if path == "" {
		found, ok := findConfigUpward(curDir)
		if !ok {
			return errx.FileNotFound(filepath.Join(curDir, defaultConfigRelPath))
		}
		path = found
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(curDir, path)
	}

	c, err := load(path)
	if err != nil {
		return err
	}
	Conf = *c
	return nil
}

func findConfigUpward(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
