package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
)

// Compile-time interface verification.
var _ docchat.SiteService = (*SiteService)(nil)

// SiteService implements docchat.SiteService using SQLite.
type SiteService struct {
	db *DB
}

// NewSiteService creates a new SiteService.
func NewSiteService(db *DB) *SiteService {
	return &SiteService{db: db}
}

const siteColumns = "id, url, description, builtin, created_at, updated_at"

// FindSiteByID retrieves a site by alias.
func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*docchat.Site, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+siteColumns+" FROM sites WHERE id = ?", id)

	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docchat.Errorf(docchat.ENOTFOUND, "site %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return site, nil
}

// FindSites retrieves sites matching the filter, ordered by alias.
func (s *SiteService) FindSites(ctx context.Context, filter docchat.SiteFilter) ([]*docchat.Site, error) {
	query, args := siteQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []*docchat.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// SaveSite creates the site or replaces the one with the same alias.
// The original creation time is kept on replace.
func (s *SiteService) SaveSite(ctx context.Context, site *docchat.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sites (id, url, description, builtin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			description = excluded.description,
			builtin = excluded.builtin,
			updated_at = excluded.updated_at
		RETURNING created_at
	`, site.ID, site.URL, site.Description, site.Builtin,
		formatTimestamp(now), formatTimestamp(now)).Scan(&createdAt)
	if err != nil {
		return err
	}

	site.CreatedAt, err = parseTimestamp(createdAt, "created_at")
	if err != nil {
		return err
	}
	site.UpdatedAt = now
	return nil
}

// DeleteSite removes a site.
func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sites WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return docchat.Errorf(docchat.ENOTFOUND, "site %q not found", id)
	}
	return nil
}

// Seed installs the built-in catalogue. Built-in rows are overwritten and
// built-in rows missing from sites are removed. User rows, including user
// rows that share an alias with a built-in, are left untouched.
func (s *SiteService) Seed(ctx context.Context, sites []*docchat.Site) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTimestamp(time.Now())
	ids := make([]any, 0, len(sites))
	for _, site := range sites {
		if err := site.Validate(); err != nil {
			return fmt.Errorf("seed %s: %w", site.ID, err)
		}
		ids = append(ids, site.ID)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sites (id, url, description, builtin, created_at, updated_at)
			VALUES (?, ?, ?, 1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				url = excluded.url,
				description = excluded.description,
				updated_at = excluded.updated_at
			WHERE sites.builtin = 1
		`, site.ID, site.URL, site.Description, now, now); err != nil {
			return fmt.Errorf("seed %s: %w", site.ID, err)
		}
	}

	query := "DELETE FROM sites WHERE builtin = 1"
	if len(ids) > 0 {
		query += " AND id NOT IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
	}
	if _, err := tx.ExecContext(ctx, query, ids...); err != nil {
		return fmt.Errorf("prune built-in sites: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSite(row rowScanner) (*docchat.Site, error) {
	var site docchat.Site
	var createdAt, updatedAt string

	if err := row.Scan(&site.ID, &site.URL, &site.Description, &site.Builtin, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if site.CreatedAt, err = parseTimestamp(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if site.UpdatedAt, err = parseTimestamp(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &site, nil
}
