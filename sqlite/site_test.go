package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSiteService(t *testing.T) *sqlite.SiteService {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	return sqlite.NewSiteService(db)
}

func ptr[T any](v T) *T { return &v }

func TestSiteService_SaveSite(t *testing.T) {
	t.Parallel()

	t.Run("creates site with default description", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		site := &docchat.Site{ID: "gradio", URL: "https://www.gradio.app/docs"}
		require.NoError(t, svc.SaveSite(ctx, site))

		assert.Equal(t, "Documentation for gradio", site.Description)
		assert.False(t, site.CreatedAt.IsZero())

		got, err := svc.FindSiteByID(ctx, "gradio")
		require.NoError(t, err)
		assert.Equal(t, "https://www.gradio.app/docs", got.URL)
		assert.Equal(t, "Documentation for gradio", got.Description)
		assert.False(t, got.Builtin)
	})

	t.Run("replaces existing site and keeps creation time", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		first := &docchat.Site{ID: "zod", URL: "https://zod.dev"}
		require.NoError(t, svc.SaveSite(ctx, first))

		second := &docchat.Site{ID: "zod", URL: "https://v4.zod.dev", Description: "Zod 4"}
		require.NoError(t, svc.SaveSite(ctx, second))

		got, err := svc.FindSiteByID(ctx, "zod")
		require.NoError(t, err)
		assert.Equal(t, "https://v4.zod.dev", got.URL)
		assert.Equal(t, "Zod 4", got.Description)
		assert.Equal(t, first.CreatedAt, got.CreatedAt)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("rejects invalid site", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)

		err := svc.SaveSite(context.Background(), &docchat.Site{ID: "bad", URL: "not a url"})

		assert.Equal(t, docchat.EINVALID, docchat.ErrorCode(err))
	})
}

func TestSiteService_FindSiteByID(t *testing.T) {
	t.Parallel()

	svc := newSiteService(t)

	_, err := svc.FindSiteByID(context.Background(), "missing")

	assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
}

func TestSiteService_FindSites(t *testing.T) {
	t.Parallel()

	svc := newSiteService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx, []*docchat.Site{
		{ID: "react", URL: "https://react.dev"},
		{ID: "bun", URL: "https://bun.com"},
	}))
	require.NoError(t, svc.SaveSite(ctx, &docchat.Site{ID: "mine", URL: "https://docs.mine.dev"}))

	t.Run("orders by alias", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{})

		require.NoError(t, err)
		require.Len(t, sites, 3)
		assert.Equal(t, "bun", sites[0].ID)
		assert.Equal(t, "mine", sites[1].ID)
		assert.Equal(t, "react", sites[2].ID)
	})

	t.Run("filters by builtin", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{Builtin: ptr(false)})

		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, "mine", sites[0].ID)
	})

	t.Run("filters by id", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{ID: ptr("react")})

		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.True(t, sites[0].Builtin)
	})

	t.Run("paginates", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{Limit: 1, Offset: 1})

		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, "mine", sites[0].ID)
	})

	t.Run("offsets without limit", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{Offset: 2})

		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, "react", sites[0].ID)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{ID: ptr("nope")})

		require.NoError(t, err)
		assert.NotNil(t, sites)
		assert.Empty(t, sites)
	})
}

func TestSiteService_DeleteSite(t *testing.T) {
	t.Parallel()

	t.Run("removes site", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()
		require.NoError(t, svc.SaveSite(ctx, &docchat.Site{ID: "mine", URL: "https://docs.mine.dev"}))

		require.NoError(t, svc.DeleteSite(ctx, "mine"))

		_, err := svc.FindSiteByID(ctx, "mine")
		assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing site", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)

		err := svc.DeleteSite(context.Background(), "missing")

		assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
	})
}

func TestSiteService_Seed(t *testing.T) {
	t.Parallel()

	t.Run("installs default catalogue", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		require.NoError(t, svc.Seed(ctx, docchat.DefaultSites()))

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{})
		require.NoError(t, err)
		assert.Len(t, sites, len(docchat.DefaultSites()))
		for _, s := range sites {
			assert.True(t, s.Builtin, s.ID)
		}
	})

	t.Run("overwrites built-in rows and keeps user rows", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		require.NoError(t, svc.Seed(ctx, []*docchat.Site{
			{ID: "react", URL: "https://old.react.dev"},
			{ID: "bun", URL: "https://bun.sh"},
		}))
		require.NoError(t, svc.SaveSite(ctx, &docchat.Site{ID: "bun", URL: "https://my.bun.mirror"}))
		require.NoError(t, svc.SaveSite(ctx, &docchat.Site{ID: "mine", URL: "https://docs.mine.dev"}))

		require.NoError(t, svc.Seed(ctx, []*docchat.Site{
			{ID: "react", URL: "https://react.dev"},
			{ID: "bun", URL: "https://bun.com"},
		}))

		react, err := svc.FindSiteByID(ctx, "react")
		require.NoError(t, err)
		assert.Equal(t, "https://react.dev", react.URL)

		bun, err := svc.FindSiteByID(ctx, "bun")
		require.NoError(t, err)
		assert.Equal(t, "https://my.bun.mirror", bun.URL)
		assert.False(t, bun.Builtin)

		_, err = svc.FindSiteByID(ctx, "mine")
		assert.NoError(t, err)
	})

	t.Run("removes built-in rows no longer in the catalogue", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		require.NoError(t, svc.Seed(ctx, []*docchat.Site{
			{ID: "react", URL: "https://react.dev"},
			{ID: "retired", URL: "https://retired.dev"},
		}))
		require.NoError(t, svc.Seed(ctx, []*docchat.Site{
			{ID: "react", URL: "https://react.dev"},
		}))

		_, err := svc.FindSiteByID(ctx, "retired")
		assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
	})

	t.Run("rejects invalid built-in without partial writes", func(t *testing.T) {
		t.Parallel()

		svc := newSiteService(t)
		ctx := context.Background()

		err := svc.Seed(ctx, []*docchat.Site{
			{ID: "react", URL: "https://react.dev"},
			{ID: "broken", URL: "ftp://broken"},
		})
		require.Error(t, err)

		sites, err := svc.FindSites(ctx, docchat.SiteFilter{})
		require.NoError(t, err)
		assert.Empty(t, sites)
	})
}
