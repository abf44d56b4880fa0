package assetmodule

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/mantonx/titleseeker/internal/database"
	apperrors "github.com/mantonx/titleseeker/internal/errors"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/mantonx/titleseeker/internal/types"
	"github.com/mantonx/titleseeker/internal/utils"
	"gorm.io/gorm"
)

// sniffLen is how much of an upload filetype needs to recognise it
const sniffLen = 262

// Options configures the asset service
type Options struct {
	MaxFileSize       int64
	ThumbnailWidth    int
	ThumbnailQuality  int
	PosterPlaceholder string
	AvatarPlaceholder string
}

// target is the catalog row an upload is attached to
type target struct {
	model  interface{}
	column string
	label  string
	info   string
}

var targets = map[types.AssetKind]target{
	types.AssetPosters:   {model: &database.Movie{}, column: "poster", label: "Movie", info: "Poster uploaded successfully"},
	types.AssetActors:    {model: &database.Actor{}, column: "avatar", label: "Actor", info: "Avatar uploaded successfully"},
	types.AssetDirectors: {model: &database.Director{}, column: "avatar", label: "Director", info: "Avatar uploaded successfully"},
}

// AssetService stores and serves posters and avatars
type AssetService struct {
	db           *gorm.DB
	store        *FileStore
	images       *ImageProcessor
	index        *DirIndex
	maxSize      int64
	placeholders map[types.AssetKind]string
}

// NewAssetService creates a service storing files in store
func NewAssetService(db *gorm.DB, store *FileStore, opts Options) *AssetService {
	avatar := func(kind types.AssetKind) string {
		if opts.AvatarPlaceholder != "" {
			return opts.AvatarPlaceholder
		}
		return filepath.Join(store.Dir(kind), "avatar-placeholder.jpg")
	}
	poster := opts.PosterPlaceholder
	if poster == "" {
		poster = filepath.Join(store.Root(), "poster-placeholder.jpg")
	}

	return &AssetService{
		db:      db,
		store:   store,
		images:  NewImageProcessor(opts.ThumbnailWidth, opts.ThumbnailQuality),
		maxSize: opts.MaxFileSize,
		placeholders: map[types.AssetKind]string{
			types.AssetPosters:   poster,
			types.AssetActors:    avatar(types.AssetActors),
			types.AssetDirectors: avatar(types.AssetDirectors),
		},
	}
}

// UseIndex answers existence checks from idx instead of the file system
func (s *AssetService) UseIndex(idx *DirIndex) {
	s.index = idx
}

// SaveImage validates the upload, stores it as {id}_{slug}.{ext} and
// writes a webp thumbnail next to it. A thumbnail failure is only logged.
func (s *AssetService) SaveImage(ctx context.Context, kind types.AssetKind, id uint, file *multipart.FileHeader) (string, error) {
	if _, ok := types.ParseAssetKind(string(kind)); !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown asset kind: %s", kind))
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", apperrors.NewBadRequestError("File is too large", nil)
	}

	f, err := file.Open()
	if err != nil {
		return "", apperrors.NewBadRequestError("Failed to read file", err)
	}
	defer f.Close()

	reader := io.Reader(f)
	if s.maxSize > 0 {
		reader = io.LimitReader(f, s.maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", apperrors.NewBadRequestError("Failed to read file", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", apperrors.NewBadRequestError("File is too large", nil)
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	ft, err := filetype.Match(head)
	if err != nil || ft == filetype.Unknown || !filetype.IsImage(head) {
		logger.Error("Extension not found", "file", file.Filename, "kind", kind)
		return "", apperrors.NewBadRequestError("Extension not found", err)
	}

	name := fmt.Sprintf("%d_%s.%s", id, baseSlug(file.Filename), ft.Extension)
	if err := s.save(kind, name, data); err != nil {
		return "", apperrors.NewInternalError("Failed to store file", err)
	}

	thumb, err := s.images.Thumbnail(data)
	if err == nil {
		err = s.save(kind, ThumbnailName(name), thumb)
	}
	if err != nil {
		logger.Warn("Thumbnail not created", "file", name, "kind", kind, "error", err)
	}

	logger.Info("Image stored", "file", name, "kind", kind, "mime", ft.MIME.Value, "bytes", len(data))
	return name, nil
}

// RemoveImage deletes a stored image together with its thumbnail
func (s *AssetService) RemoveImage(kind types.AssetKind, filename string) error {
	for _, name := range []string{filename, ThumbnailName(filename)} {
		if err := s.store.Remove(kind, name); err != nil {
			return err
		}
		if s.index != nil {
			s.index.Drop(kind, name)
		}
	}
	logger.Info("Image removed", "file", filename, "kind", kind)
	return nil
}

// Path returns the on-disk location of a stored file
func (s *AssetService) Path(kind types.AssetKind, filename string) string {
	return s.store.Path(kind, filename)
}

// Upload stores the image and points the movie poster or person avatar at
// it. It returns the confirmation message.
func (s *AssetService) Upload(ctx context.Context, kind types.AssetKind, id uint, file *multipart.FileHeader) (string, error) {
	t, ok := targets[kind]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown asset kind: %s", kind))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(t.model).Where("id = ?", id).Count(&count).Error; err != nil {
		return "", apperrors.NewDatabaseError("find "+strings.ToLower(t.label), err)
	}
	if count == 0 {
		logger.Error(t.label+" not found", "id", id)
		return "", apperrors.NewNotFoundError(t.label + " not found")
	}

	name, err := s.SaveImage(ctx, kind, id, file)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(t.model).Where("id = ?", id).Update(t.column, name).Error; err != nil {
		return "", apperrors.NewDatabaseError("attach "+t.column, err)
	}
	return t.info, nil
}

// Resolve finds the file to serve for a request. Thumbnails fall back to
// the full image, anything missing falls back to the kind's placeholder.
func (s *AssetService) Resolve(kind types.AssetKind, filename string, thumb bool) (string, error) {
	if thumb && s.exists(kind, ThumbnailName(filename)) {
		return s.store.Path(kind, ThumbnailName(filename)), nil
	}
	if s.exists(kind, filename) {
		return s.store.Path(kind, filename), nil
	}

	placeholder := s.placeholders[kind]
	if info, err := os.Stat(placeholder); err == nil && !info.IsDir() {
		return placeholder, nil
	}
	logger.Debug("File not found", "kind", kind, "file", filename)
	return "", apperrors.NewNotFoundError("File not found")
}

func (s *AssetService) save(kind types.AssetKind, name string, data []byte) error {
	if err := s.store.Save(kind, name, data); err != nil {
		return err
	}
	if s.index != nil {
		s.index.Add(kind, name)
	}
	return nil
}

func (s *AssetService) exists(kind types.AssetKind, filename string) bool {
	if s.index != nil {
		if has, known := s.index.Has(kind, filename); known {
			return has
		}
	}
	return s.store.Exists(kind, filename)
}

// baseSlug turns the client file name into a URL safe stem
func baseSlug(filename string) string {
	base := filepath.Base(filename)
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		return "image"
	}
	return stem
}

// BackfillThumbnails writes the thumbnails missing for images that were
// copied into the upload directories by hand. It returns how many were made.
func (s *AssetService) BackfillThumbnails(ctx context.Context, workers int) (int, error) {
	pool := utils.NewWorkerPool(workers)
	pool.Start()

	var made atomic.Int64
	for _, kind := range []types.AssetKind{types.AssetPosters, types.AssetActors, types.AssetDirectors} {
		entries, err := os.ReadDir(s.store.Dir(kind))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			pool.Stop()
			return int(made.Load()), err
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, thumbPrefix) || strings.HasSuffix(name, ".tmp") {
				continue
			}
			if s.exists(kind, ThumbnailName(name)) {
				continue
			}
			kind := kind
			err := pool.SubmitWait(ctx, func() {
				if s.backfill(kind, name) {
					made.Add(1)
				}
			})
			if err != nil {
				pool.Stop()
				return int(made.Load()), err
			}
		}
	}

	pool.Stop()
	if n := made.Load(); n > 0 {
		logger.Info("Thumbnails backfilled", "count", n)
	}
	return int(made.Load()), nil
}

func (s *AssetService) backfill(kind types.AssetKind, name string) bool {
	data, err := os.ReadFile(s.store.Path(kind, name))
	if err != nil {
		logger.Warn("Failed to read image", "file", name, "kind", kind, "error", err)
		return false
	}
	thumb, err := s.images.Thumbnail(data)
	if err != nil {
		logger.Debug("Skipping file without a decodable image", "file", name, "kind", kind, "error", err)
		return false
	}
	if err := s.save(kind, ThumbnailName(name), thumb); err != nil {
		logger.Warn("Thumbnail not created", "file", name, "kind", kind, "error", err)
		return false
	}
	return true
}
