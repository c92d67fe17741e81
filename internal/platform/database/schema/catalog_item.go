// Copyright (c) 2026 Dust & Gold. All rights reserved.

package schema

// CatalogItemTable represents the 'catalog.item' table
type CatalogItemTable struct {
	Table       string
	ID          string
	Type        string
	Name        string
	Description string
	URL         string
	ImageURL    string
	Artist      string
	Tags        string
	PublishedOn string
	ProviderID  string
	SubmittedBy string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogItem is the schema definition for catalog.item
var CatalogItem = CatalogItemTable{
	Table:       "catalog.item",
	ID:          "id",
	Type:        "type",
	Name:        "name",
	Description: "description",
	URL:         "url",
	ImageURL:    "imageurl",
	Artist:      "artist",
	Tags:        "tags",
	PublishedOn: "publishedon",
	ProviderID:  "providerid",
	SubmittedBy: "submittedby",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t CatalogItemTable) Columns() []string {
	return []string{
		t.ID, t.Type, t.Name, t.Description, t.URL, t.ImageURL,
		t.Artist, t.Tags, t.PublishedOn, t.ProviderID, t.SubmittedBy,
		t.CreatedAt, t.UpdatedAt,
	}
}
