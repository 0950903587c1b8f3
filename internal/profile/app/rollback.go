package app

import (
	"errors"
	"io/fs"
	"os"
)

// rollback 按登记的逆序撤销已完成的步骤。
type rollback struct {
	steps []func() error
}

func (r *rollback) remove(path string) {
	r.steps = append(r.steps, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

// restore 用备份覆盖原文件；没有备份说明原文件不存在，回滚时删除。
func (r *rollback) restore(path, backup string) {
	r.steps = append(r.steps, func() error {
		if backup == "" {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		}
		raw, err := os.ReadFile(backup)
		if err != nil {
			return err
		}
		return os.WriteFile(path, raw, 0o644)
	})
}

func (r *rollback) run() []error {
	var errs []error
	for i := len(r.steps) - 1; i >= 0; i-- {
		if err := r.steps[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.steps = nil
	return errs
}
