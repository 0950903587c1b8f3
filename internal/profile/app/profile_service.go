package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	contentapp "Viewfinder/internal/content/app"
	"Viewfinder/internal/content/domain"
	"Viewfinder/modules/kit/errx"
	"Viewfinder/modules/kit/logx"
)

const maxNameLen = 64

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// 创建步骤名，失败时写进 GenerationFailed。
const (
	stepLoadBase  = "load_base_controls"
	stepBackup    = "backup_registry"
	stepControls  = "write_controls"
	stepRegistry  = "update_registry"
	stepReadIndex = "read_registry"
)

type ProfileService struct {
	source      ControlsSource
	dataDir     string
	controlsDir string
	log         logx.Logger
	now         func() time.Time
	writeFile   func(path string, data []byte) error
	createFile  func(path string, data []byte) error
}

func NewProfileService(source ControlsSource, dataDir, controlsDir string, log logx.Logger) *ProfileService {
	if log == nil {
		log = logx.NewZapLogger(nil)
	}
	return &ProfileService{
		source:      source,
		dataDir:     dataDir,
		controlsDir: controlsDir,
		log:         log,
		now:         time.Now,
		writeFile:   writeFileAtomic,
		createFile:  createFileExclusive,
	}
}

// ValidateName 只允许字母、数字和下划线。
func ValidateName(name string) error {
	switch {
	case name == "":
		return errx.InvalidProfileName(name, "name is empty")
	case len(name) > maxNameLen:
		return errx.InvalidProfileName(name, fmt.Sprintf("name is longer than %d characters", maxNameLen))
	case !nameRe.MatchString(name):
		return errx.InvalidProfileName(name, "only letters, digits and underscores are allowed")
	}
	return nil
}

// Create 以默认 profile 的控制项为模板创建新 profile，任一步失败都会回滚已写入的文件。
func (s *ProfileService) Create(name string) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	existing, err := s.source.Profiles()
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p, name) {
			return nil, errx.ProfileExists(name)
		}
	}

	res := &Result{
		Name:         name,
		ControlsPath: filepath.Join(s.controlsDir, contentapp.ControlsFileName(name)),
		RegistryPath: filepath.Join(s.dataDir, contentapp.RegistryFile),
	}

	base, err := s.baseControls()
	if err != nil {
		return nil, errx.GenerationFailed(name, stepLoadBase).WithCause(err)
	}

	var rb rollback
	if res.BackupPath, err = s.backupRegistry(res.RegistryPath); err != nil {
		return nil, errx.GenerationFailed(name, stepBackup).WithCause(err)
	}
	rb.restore(res.RegistryPath, res.BackupPath)

	base.Profile = name
	if err := s.writeJSON(res.ControlsPath, base, true); err != nil {
		return nil, s.fail(name, stepControls, err, &rb)
	}
	rb.remove(res.ControlsPath)

	reg, err := readRegistry(res.RegistryPath)
	if err != nil {
		return nil, s.fail(name, stepReadIndex, err, &rb)
	}
	reg.Profiles = append(reg.Profiles, name)
	if err := s.writeJSON(res.RegistryPath, reg, false); err != nil {
		return nil, s.fail(name, stepRegistry, err, &rb)
	}

	s.log.Info("profile created",
		zap.String("profile", name),
		zap.String("controls_path", res.ControlsPath),
		zap.String("backup_path", res.BackupPath),
	)
	return res, nil
}

func (s *ProfileService) baseControls() (*domain.Controls, error) {
	c, err := s.source.LoadControls("")
	if err == nil {
		return c, nil
	}
	if e, ok := errx.As(err); ok && e.Reason() == "file_not_found" {
		return &domain.Controls{Controls: []domain.Control{}}, nil
	}
	return nil, err
}

// backupRegistry 注册表不存在时无需备份，返回空路径。
func (s *ProfileService) backupRegistry(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errx.BackupFailed(path).WithCause(err)
	}
	backup := path + ".bak." + s.now().Format("20060102150405")
	if err := s.writeFile(backup, raw); err != nil {
		return "", errx.BackupFailed(path).WithCause(err)
	}
	return backup, nil
}

func (s *ProfileService) writeJSON(path string, v any, exclusive bool) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errx.FileWriteFailed(path, err.Error())
	}
	write := s.writeFile
	if exclusive {
		write = s.createFile
	}
	if err := write(path, append(raw, '\n')); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errx.FileWriteFailed(path, "file already exists").WithCause(err)
		}
		return errx.FileWriteFailed(path, err.Error()).WithCause(err)
	}
	return nil
}

func (s *ProfileService) fail(name, step string, cause error, rb *rollback) error {
	for _, rbErr := range rb.run() {
		s.log.Error("profile rollback step failed", zap.String("profile", name), zap.Error(rbErr))
	}
	return errx.GenerationFailed(name, step).WithCause(cause)
}

func readRegistry(path string) (*domain.ProfileRegistry, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.ProfileRegistry{}, nil
	}
	if err != nil {
		return nil, errx.ReadFailed(path, err.Error())
	}
	var reg domain.ProfileRegistry
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, errx.DecodeFailed(path, 0, err.Error())
	}
	return &reg, nil
}

// createFileExclusive 写完临时文件后用硬链接落到目标路径，目标已存在时返回 fs.ErrExist。
func createFileExclusive(path string, data []byte) error {
	return writeTemp(path, data, os.Link)
}

// writeFileAtomic 写临时文件后 rename，避免留下半截文件。
func writeFileAtomic(path string, data []byte) error {
	return writeTemp(path, data, os.Rename)
}

func writeTemp(path string, data []byte, place func(oldpath, newpath string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return place(tmp.Name(), path)
}
