package bookmarks_test

import (
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/bookmarks"
	"github.com/satchel-io/satchel/internal/enrichment"
)

func TestFiltersFromQuery(t *testing.T) {
	userID := uuid.New()
	values := url.Values{}
	values.Set("status", "COMPLETED")
	values.Set("platform", "TWITTER")
	values.Set("user_id", userID.String())
	values.Set("search", "worker pools")

	f := bookmarks.FiltersFromQuery(values)

	if f.Status == nil || *f.Status != "COMPLETED" {
		t.Errorf("Status = %v", f.Status)
	}
	if f.Platform == nil || *f.Platform != "TWITTER" {
		t.Errorf("Platform = %v", f.Platform)
	}
	if f.UserID == nil || *f.UserID != userID {
		t.Errorf("UserID = %v", f.UserID)
	}
	if f.Search == nil || *f.Search != "worker pools" {
		t.Errorf("Search = %v", f.Search)
	}
}

func TestFiltersFromQueryIgnoresInvalid(t *testing.T) {
	values := url.Values{}
	values.Set("user_id", "not-a-uuid")

	f := bookmarks.FiltersFromQuery(values)
	if f.UserID != nil {
		t.Errorf("UserID = %v, want nil", f.UserID)
	}
	if f.Status != nil || f.Platform != nil || f.Search != nil {
		t.Errorf("unset filters populated: %+v", f)
	}
}

func TestCreateValidation(t *testing.T) {
	valid := bookmarks.CreateCommand{
		UserID:   uuid.New(),
		URL:      "https://example.com/post/1",
		Platform: enrichment.PlatformLinkedIn,
		Content:  "text",
	}

	tests := []struct {
		name    string
		mutate  func(*bookmarks.CreateCommand)
		wantErr bool
	}{
		{"valid", func(*bookmarks.CreateCommand) {}, false},
		{"missing user", func(c *bookmarks.CreateCommand) { c.UserID = uuid.Nil }, true},
		{"missing url", func(c *bookmarks.CreateCommand) { c.URL = "" }, true},
		{"malformed url", func(c *bookmarks.CreateCommand) { c.URL = "::not a url" }, true},
		{"unknown platform", func(c *bookmarks.CreateCommand) { c.Platform = "MYSPACE" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := valid
			tt.mutate(&cmd)

			err := bookmarks.ValidateCreate(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
