// Package di provides dependency injection factories for creating application components.
package di

import (
	"geotagger/internal/config"
	platformhttp "geotagger/internal/platform/http"
	"geotagger/internal/platform/supabase"
)

// NewSupabaseClient creates a fully configured Supabase client with HTTP client.
func NewSupabaseClient(cfg *config.Config) *supabase.Client {
	httpClient := platformhttp.NewHTTPClient(cfg.HTTPTimeout())
	return supabase.NewClient(supabase.Config{
		URL:            cfg.Supabase.URL,
		ServiceRoleKey: cfg.Supabase.ServiceRoleKey,
		Bucket:         cfg.Supabase.Bucket,
	}, httpClient)
}
