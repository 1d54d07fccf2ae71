// Package supabase provides a client for the Supabase REST (PostgREST) and Storage APIs.
package supabase

import "strings"

// Config holds configuration for the Supabase client.
type Config struct {
	URL            string // Project URL (e.g., "https://xyz.supabase.co")
	ServiceRoleKey string // Privileged key sent as apikey and bearer token
	Bucket         string // Storage bucket holding uploaded images
}

// baseURL returns the project URL without trailing slashes so that joined
// paths never contain "//".
func (c Config) baseURL() string {
	return strings.TrimRight(c.URL, "/")
}
