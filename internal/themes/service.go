// internal/themes/service.go
package themes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codr1/mailthemes/internal/api/apiutil"
	"github.com/codr1/mailthemes/internal/db"
	dbgen "github.com/codr1/mailthemes/internal/db/generated"
	"github.com/codr1/mailthemes/internal/models"
)

const (
	DefaultPublicLimit = 20
	MaxPublicLimit     = 100
)

// Queries is the slice of the generated query set the service depends on.
type Queries interface {
	ListUserThemes(ctx context.Context, userID string) ([]dbgen.Theme, error)
	ListUserConnectionThemes(ctx context.Context, arg dbgen.ListUserConnectionThemesParams) ([]dbgen.Theme, error)
	GetUserTheme(ctx context.Context, arg dbgen.GetUserThemeParams) (dbgen.Theme, error)
	GetPublicTheme(ctx context.Context, id string) (dbgen.Theme, error)
	ListPublicThemes(ctx context.Context, arg dbgen.ListPublicThemesParams) ([]dbgen.Theme, error)
	CreateTheme(ctx context.Context, arg dbgen.CreateThemeParams) (int64, error)
	UpdateTheme(ctx context.Context, arg dbgen.UpdateThemeParams) (int64, error)
	DeleteTheme(ctx context.Context, arg dbgen.DeleteThemeParams) (int64, error)
	GetUserConnection(ctx context.Context, arg dbgen.GetUserConnectionParams) (dbgen.Connection, error)
	ListUserConnections(ctx context.Context, userID string) ([]dbgen.Connection, error)
	GetDefaultConnectionID(ctx context.Context, userID string) (sql.NullString, error)
	UpsertDefaultConnectionID(ctx context.Context, arg dbgen.UpsertDefaultConnectionIDParams) (int64, error)
}

// Service persists themes on behalf of a user. Every read goes through either
// an owner filter or the public filter; nothing returns a theme without one.
type Service struct {
	queries Queries
	now     func() time.Time
	newID   func() string
	// runInTx is nil when operations run directly on queries.
	runInTx func(ctx context.Context, fn func(Queries) error) error
}

type Option func(*Service)

// WithClock replaces the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the theme id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithTransactions runs each multi-step operation inside one transaction on
// database.
func WithTransactions(database *db.DB) Option {
	return func(s *Service) {
		s.runInTx = func(ctx context.Context, fn func(Queries) error) error {
			return database.RunInTx(ctx, func(tx *db.DB) error {
				return fn(tx.Queries)
			})
		}
	}
}

func NewService(queries Queries, opts ...Option) *Service {
	s := &Service{
		queries: queries,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// inTx calls fn with a service whose queries are bound to one transaction.
// Nested calls reuse the outer transaction.
func (s *Service) inTx(ctx context.Context, fn func(tx *Service) error) error {
	if s.runInTx == nil {
		return fn(s)
	}
	return s.runInTx(ctx, func(q Queries) error {
		return fn(&Service{queries: q, now: s.now, newID: s.newID})
	})
}

type CreateInput struct {
	Name        string
	Description *string
	ThemeData   models.ThemePalette
	IsPublic    bool
}

// UpdateInput is a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	ThemeData   *models.ThemePalette
	IsPublic    *bool
}

type PublicListParams struct {
	Limit  int
	Offset int
	Search string
}

// Connection is a mail account the user has linked.
type Connection struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	ProviderID string    `json:"providerId"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GetUserThemes lists the user's themes, newest first. When connectionID is
// set only themes bound to that connection are returned.
func (s *Service) GetUserThemes(ctx context.Context, userID string, connectionID *string) ([]models.Theme, error) {
	var (
		rows []dbgen.Theme
		err  error
	)
	if connectionID != nil {
		rows, err = s.queries.ListUserConnectionThemes(ctx, dbgen.ListUserConnectionThemesParams{
			UserID:       userID,
			ConnectionID: sql.NullString{String: *connectionID, Valid: true},
		})
	} else {
		rows, err = s.queries.ListUserThemes(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list user themes: %w", err)
	}
	return models.ThemesFromDB(rows), nil
}

// GetThemeByID returns the theme only when userID owns it.
func (s *Service) GetThemeByID(ctx context.Context, userID, themeID string) (*models.Theme, error) {
	row, err := s.queries.GetUserTheme(ctx, dbgen.GetUserThemeParams{ID: themeID, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user theme: %w", err)
	}
	theme := models.ThemeFromDB(row)
	return &theme, nil
}

// GetPublicTheme returns the theme only when it is public.
func (s *Service) GetPublicTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	row, err := s.queries.GetPublicTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get public theme: %w", err)
	}
	theme := models.ThemeFromDB(row)
	return &theme, nil
}

// GetPublicThemes pages through the marketplace ordered by creation time,
// newest first, with id as the tie breaker so pages never overlap.
func (s *Service) GetPublicThemes(ctx context.Context, params PublicListParams) ([]models.Theme, error) {
	if params.Limit == 0 {
		params.Limit = DefaultPublicLimit
	}
	if params.Limit < 1 || params.Limit > MaxPublicLimit {
		return nil, validationError(apiutil.FieldError{
			Field:  "limit",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxPublicLimit),
		})
	}
	if params.Offset < 0 {
		return nil, validationError(apiutil.FieldError{Field: "offset", Reason: "must be 0 or greater"})
	}

	rows, err := s.queries.ListPublicThemes(ctx, dbgen.ListPublicThemesParams{
		Search: escapeLike(strings.TrimSpace(params.Search)),
		Limit:  int64(params.Limit),
		Offset: int64(params.Offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list public themes: %w", err)
	}
	return models.ThemesFromDB(rows), nil
}

// Validate reports the error CreateTheme would reject input with.
func (in CreateInput) Validate() error {
	_, _, err := in.normalize()
	return err
}

func (in CreateInput) normalize() (string, *string, error) {
	name, err := models.ValidateName(in.Name)
	if err != nil {
		return "", nil, validationError(err)
	}
	description, err := models.ValidateDescription(in.Description)
	if err != nil {
		return "", nil, validationError(err)
	}
	if err := in.ThemeData.Validate(); err != nil {
		return "", nil, validationError(err)
	}
	return name, description, nil
}

// Validate reports the error UpdateTheme would reject patch with.
func (patch UpdateInput) Validate() error {
	_, err := patch.params(dbgen.UpdateThemeParams{})
	return err
}

// params fills the optional columns of base from the fields present in patch.
func (patch UpdateInput) params(base dbgen.UpdateThemeParams) (dbgen.UpdateThemeParams, error) {
	if patch.Name != nil {
		name, err := models.ValidateName(*patch.Name)
		if err != nil {
			return base, validationError(err)
		}
		base.Name = sql.NullString{String: name, Valid: true}
	}
	if patch.Description != nil {
		description, err := models.ValidateDescription(patch.Description)
		if err != nil {
			return base, validationError(err)
		}
		base.Description = models.NullString(description)
	}
	if patch.ThemeData != nil {
		if err := patch.ThemeData.Validate(); err != nil {
			return base, validationError(err)
		}
		themeData, err := patch.ThemeData.Encode()
		if err != nil {
			return base, err
		}
		base.ThemeData = sql.NullString{String: themeData, Valid: true}
	}
	if patch.IsPublic != nil {
		base.IsPublic = sql.NullBool{Bool: *patch.IsPublic, Valid: true}
	}
	return base, nil
}

// CreateTheme validates input and stores a new theme owned by userID.
func (s *Service) CreateTheme(ctx context.Context, userID string, connectionID *string, input CreateInput) (*models.Theme, error) {
	name, description, err := input.normalize()
	if err != nil {
		return nil, err
	}
	themeData, err := input.ThemeData.Encode()
	if err != nil {
		return nil, err
	}

	var created *models.Theme
	err = s.inTx(ctx, func(tx *Service) error {
		if connectionID != nil {
			if err := tx.requireConnection(ctx, userID, *connectionID); err != nil {
				return err
			}
		}

		id := tx.newID()
		now := tx.now().UTC()
		affected, err := tx.queries.CreateTheme(ctx, dbgen.CreateThemeParams{
			ID:           id,
			UserID:       userID,
			ConnectionID: models.NullString(connectionID),
			Name:         name,
			Description:  models.NullString(description),
			ThemeData:    themeData,
			IsPublic:     input.IsPublic,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create theme: %w", err)
		}
		if affected != 1 {
			return ErrCreationFailed
		}

		created, err = tx.GetThemeByID(ctx, userID, id)
		if errors.Is(err, ErrNotFound) {
			return ErrCreationFailed
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTheme applies the fields present in patch. The owner check is part of
// the update predicate, so a theme owned by someone else reports ErrNotFound.
func (s *Service) UpdateTheme(ctx context.Context, userID, themeID string, patch UpdateInput) (*models.Theme, error) {
	params, err := patch.params(dbgen.UpdateThemeParams{
		ID:        themeID,
		UserID:    userID,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	var updated *models.Theme
	err = s.inTx(ctx, func(tx *Service) error {
		affected, err := tx.queries.UpdateTheme(ctx, params)
		if err != nil {
			return fmt.Errorf("update theme: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		updated, err = tx.GetThemeByID(ctx, userID, themeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTheme removes an owned theme and reports whether anything was deleted.
func (s *Service) DeleteTheme(ctx context.Context, userID, themeID string) (bool, error) {
	affected, err := s.queries.DeleteTheme(ctx, dbgen.DeleteThemeParams{ID: themeID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("delete theme: %w", err)
	}
	return affected > 0, nil
}

// CopyPublicTheme creates a private copy of a public theme for userID. The
// copy owns its own palette; later edits to either theme do not touch the other.
func (s *Service) CopyPublicTheme(ctx context.Context, userID string, connectionID *string, publicThemeID string) (*models.Theme, error) {
	var copied *models.Theme
	err := s.inTx(ctx, func(tx *Service) error {
		source, err := tx.GetPublicTheme(ctx, publicThemeID)
		if err != nil {
			return err
		}

		var description *string
		if source.Description != nil {
			value := *source.Description
			description = &value
		}

		copied, err = tx.CreateTheme(ctx, userID, connectionID, CreateInput{
			Name:        models.CopyName(source.Name),
			Description: description,
			ThemeData:   source.ThemeData.Clone(),
			IsPublic:    false,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// TogglePublicStatus flips the public flag of an owned theme.
func (s *Service) TogglePublicStatus(ctx context.Context, userID, themeID string) (*models.Theme, error) {
	var toggled *models.Theme
	err := s.inTx(ctx, func(tx *Service) error {
		theme, err := tx.GetThemeByID(ctx, userID, themeID)
		if err != nil {
			return err
		}
		isPublic := !theme.IsPublic
		toggled, err = tx.UpdateTheme(ctx, userID, themeID, UpdateInput{IsPublic: &isPublic})
		return err
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// SeedPublicThemes publishes curated themes under ownerID. Themes whose name
// the owner already uses are skipped, so reseeding is a no-op. Returns the
// number of themes created.
func (s *Service) SeedPublicThemes(ctx context.Context, ownerID string, seeds []models.Theme) (int, error) {
	created := 0
	err := s.inTx(ctx, func(tx *Service) error {
		existing, err := tx.GetUserThemes(ctx, ownerID, nil)
		if err != nil {
			return err
		}
		names := make(map[string]struct{}, len(existing))
		for _, theme := range existing {
			names[theme.Name] = struct{}{}
		}

		for _, seed := range seeds {
			if _, ok := names[seed.Name]; ok {
				continue
			}
			if _, err := tx.CreateTheme(ctx, ownerID, nil, CreateInput{
				Name:        seed.Name,
				Description: seed.Description,
				ThemeData:   seed.ThemeData.Clone(),
				IsPublic:    true,
			}); err != nil {
				return fmt.Errorf("seed theme %q: %w", seed.Name, err)
			}
			names[seed.Name] = struct{}{}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetActiveConnectionID returns the user's default connection.
func (s *Service) GetActiveConnectionID(ctx context.Context, userID string) (string, error) {
	id, err := s.queries.GetDefaultConnectionID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoActiveConnection
		}
		return "", fmt.Errorf("get default connection: %w", err)
	}
	if !id.Valid || id.String == "" {
		return "", ErrNoActiveConnection
	}
	return id.String, nil
}

// SetActiveConnectionID makes connectionID the user's default connection.
func (s *Service) SetActiveConnectionID(ctx context.Context, userID, connectionID string) error {
	return s.inTx(ctx, func(tx *Service) error {
		if err := tx.requireConnection(ctx, userID, connectionID); err != nil {
			return err
		}
		if _, err := tx.queries.UpsertDefaultConnectionID(ctx, dbgen.UpsertDefaultConnectionIDParams{
			UserID:              userID,
			DefaultConnectionID: sql.NullString{String: connectionID, Valid: true},
		}); err != nil {
			return fmt.Errorf("set default connection: %w", err)
		}
		return nil
	})
}

// ListConnections returns the user's connections, flagging the default one.
func (s *Service) ListConnections(ctx context.Context, userID string) ([]Connection, error) {
	rows, err := s.queries.ListUserConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defaultID, err := s.GetActiveConnectionID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoActiveConnection) {
		return nil, err
	}

	connections := make([]Connection, 0, len(rows))
	for _, row := range rows {
		connections = append(connections, Connection{
			ID:         row.ID,
			Email:      row.Email,
			ProviderID: row.ProviderID,
			IsDefault:  row.ID == defaultID,
			CreatedAt:  row.CreatedAt,
		})
	}
	return connections, nil
}

func (s *Service) requireConnection(ctx context.Context, userID, connectionID string) error {
	if _, err := s.queries.GetUserConnection(ctx, dbgen.GetUserConnectionParams{
		ID:     connectionID,
		UserID: userID,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get connection: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
