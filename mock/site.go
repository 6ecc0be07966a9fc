package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.SiteService = (*SiteService)(nil)

// SiteService is a mock implementation of docchat.SiteService.
type SiteService struct {
	FindSiteByIDFn func(ctx context.Context, id string) (*docchat.Site, error)
	FindSitesFn    func(ctx context.Context, filter docchat.SiteFilter) ([]*docchat.Site, error)
	SaveSiteFn     func(ctx context.Context, site *docchat.Site) error
	DeleteSiteFn   func(ctx context.Context, id string) error
}

func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*docchat.Site, error) {
	return s.FindSiteByIDFn(ctx, id)
}

func (s *SiteService) FindSites(ctx context.Context, filter docchat.SiteFilter) ([]*docchat.Site, error) {
	return s.FindSitesFn(ctx, filter)
}

func (s *SiteService) SaveSite(ctx context.Context, site *docchat.Site) error {
	return s.SaveSiteFn(ctx, site)
}

func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	return s.DeleteSiteFn(ctx, id)
}
