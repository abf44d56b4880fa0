package services

import (
	"context"
	"mime/multipart"

	"github.com/mantonx/titleseeker/internal/types"
	"gorm.io/gorm"
)

// Service names used with Register and GetService
const (
	TransactionServiceName = "transactions"
	CatalogServiceName     = "catalog"
	PeopleServiceName      = "people"
	AssetServiceName       = "assets"
	SheetsServiceName      = "sheets"
)

// TransactionService runs work inside a database transaction
type TransactionService interface {
	// WithTransaction commits when fn returns nil and rolls back otherwise
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogService exposes the taxonomy menus to other modules
type CatalogService interface {
	// Filters returns every taxonomy list sorted by name.
	// An empty required list is reported as a not found AppError.
	Filters(ctx context.Context, lang types.Language) (*types.Filters, error)

	// GenresWithSubgenres returns genres with their subgenres nested
	GenresWithSubgenres(ctx context.Context, lang types.Language) ([]types.GenreItem, error)

	// VisualProfileCategories returns categories with criteria rated 0
	VisualProfileCategories(ctx context.Context, lang types.Language) ([]types.CategoryItem, error)
}

// PeopleService exposes the person menus to other modules
type PeopleService interface {
	People(ctx context.Context, lang types.Language) (*types.People, error)
}

// AssetService stores uploaded images
type AssetService interface {
	// SaveImage validates and stores the upload as {id}_{slug}.{ext} under
	// the kind's directory and returns the stored file name.
	SaveImage(ctx context.Context, kind types.AssetKind, id uint, file *multipart.FileHeader) (string, error)

	// RemoveImage deletes a stored image and its thumbnail
	RemoveImage(kind types.AssetKind, filename string) error

	// Path returns the on-disk location of a stored file
	Path(kind types.AssetKind, filename string) string
}

// SheetsService pushes newly created rows to the spreadsheet
type SheetsService interface {
	Enabled() bool

	// AppendLatest appends the most recent row of entity to its sheet
	AppendLatest(ctx context.Context, entity string) error
}
