package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/xela07ax/hr-console/internal/domain"
	"go.uber.org/zap"
)

// Разрешенные типы картинок. Тип определяется по содержимому, имя файла клиента не учитывается.
var allowedImages = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Store - локальное файловое хранилище аватаров и сканов договоров.
type Store struct {
	root     string
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

func NewStore(root string, maxBytes int64, logger *zap.Logger) *Store {
	return &Store{
		root:     root,
		maxBytes: maxBytes,
		now:      time.Now,
		logger:   logger.Named("blob"),
	}
}

// StoreImage сохраняет картинку как <root>/<yyyy>/<mm>/<uuid><ext> и возвращает путь относительно root.
func (s *Store) StoreImage(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file: %w", domain.ErrInvalidInput)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("file is %d bytes, limit %d: %w", len(data), s.maxBytes, domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImages...) {
		return "", fmt.Errorf("unsupported content type %s: %w", mt.String(), domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	rel := filepath.Join(fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), uuid.NewString()+mt.Extension())
	full := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write: %w", err)
	}

	s.logger.Debug("image stored", zap.String("path", rel), zap.String("mime", mt.String()), zap.Int("bytes", len(data)))
	return filepath.ToSlash(rel), nil
}

// Remove удаляет ранее сохраненный файл. Отсутствие файла ошибкой не считается.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	// путь не должен выходить за корень хранилища
	if r, err := filepath.Rel(s.root, full); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q outside storage: %w", rel, domain.ErrInvalidInput)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: remove: %w", err)
	}
	return nil
}
