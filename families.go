package main

import "regexp"

// families.go - record family descriptors (schema registry)
//
// A Family bundles everything the loader needs to handle one record shape:
// the final column layout, the load-time variant, the natural key, and the
// path patterns that classify objects in storage. Adding a family is a data
// change here; nothing in the load pipeline is family-specific.

// Column describes one column of a family's warehouse schema, in final
// table order.
type Column struct {
	Name string
	Type string

	// LoadAs overrides the column type in the load-time schema. Used for
	// fields stored as text in the file and converted during promotion
	// (e.g. pub_date arrives as an ISO datetime string).
	LoadAs string

	// FromPath marks a column that does not exist in the file at all; its
	// value is derived from the object path and injected at promotion time.
	FromPath bool

	// Expr is the promotion-time SQL expression for this column. Empty
	// means plain pass-through of the same-named temp column.
	Expr string
}

// Family describes one record family end to end.
type Family struct {
	// Name identifies the family ("archive", "most_popular")
	Name string

	// Source is the value written to the manifest's source column
	Source string

	// PathPrefix classifies object paths (after the root prefix is stripped)
	PathPrefix string

	// DatePattern extracts an embedded snapshot date from the object path.
	// Nil for families without path-encoded metadata.
	DatePattern *regexp.Regexp

	// Table is the table name, identical in the staging and prod schemas
	Table string

	// Columns is the final schema in column order
	Columns []Column

	// Key lists the natural key columns used by the deduplicating merge
	Key []string
}

// LoadColumns returns the load-time schema: FromPath columns are omitted
// (they are not in the file) and LoadAs overrides widen converted fields.
func (f *Family) LoadColumns() []Column {
	cols := make([]Column, 0, len(f.Columns))
	for _, c := range f.Columns {
		if c.FromPath {
			continue
		}
		if c.LoadAs != "" {
			c.Type = c.LoadAs
		}
		cols = append(cols, c)
	}
	return cols
}

var archiveFamily = &Family{
	Name:       "archive",
	Source:     "archive_slim",
	PathPrefix: "archive_slim/",
	Table:      "archive_articles",
	Key:        []string{"article_id"},
	Columns: []Column{
		{Name: "article_id", Type: "VARCHAR"},
		{Name: "uri", Type: "VARCHAR"},
		// Stored as an ISO datetime string in the file; promoted to a
		// calendar date by parsing the first 10 characters. TRY_CAST
		// yields NULL on a malformed value instead of failing the file.
		{Name: "pub_date", Type: "DATE", LoadAs: "VARCHAR",
			Expr: "TRY_CAST(substr(pub_date, 1, 10) AS DATE)"},
		{Name: "section_name", Type: "VARCHAR"},
		{Name: "news_desk", Type: "VARCHAR"},
		{Name: "type_of_material", Type: "VARCHAR"},
		{Name: "document_type", Type: "VARCHAR"},
		{Name: "word_count", Type: "INTEGER"},
		{Name: "web_url", Type: "VARCHAR"},
		{Name: "headline_main", Type: "VARCHAR"},
		{Name: "byline_original", Type: "VARCHAR"},
		{Name: "abstract", Type: "VARCHAR"},
		{Name: "snippet", Type: "VARCHAR"},
		{Name: "keywords", Type: "JSON"},
		{Name: "byline_person", Type: "JSON"},
		{Name: "multimedia_count_by_type", Type: "JSON"},
	},
}

var mostPopularFamily = &Family{
	Name:        "most_popular",
	Source:      "most_popular_slim",
	PathPrefix:  "most_popular_slim/",
	DatePattern: regexp.MustCompile(`most_popular_slim/(\d{4}-\d{2}-\d{2})/`),
	Table:       "most_popular_articles",
	Key:         []string{"snapshot_date", "id"},
	Columns: []Column{
		// Not present in the file; taken from the dated directory in the path.
		{Name: "snapshot_date", Type: "DATE", FromPath: true},
		{Name: "id", Type: "BIGINT"},
		{Name: "uri", Type: "VARCHAR"},
		{Name: "url", Type: "VARCHAR"},
		{Name: "asset_id", Type: "BIGINT"},
		{Name: "source", Type: "VARCHAR"},
		{Name: "published_date", Type: "VARCHAR"},
		{Name: "updated", Type: "VARCHAR"},
		{Name: "section", Type: "VARCHAR"},
		{Name: "subsection", Type: "VARCHAR"},
		{Name: "byline", Type: "VARCHAR"},
		{Name: "type", Type: "VARCHAR"},
		{Name: "title", Type: "VARCHAR"},
		{Name: "abstract", Type: "VARCHAR"},
		{Name: "des_facet", Type: "JSON"},
		{Name: "org_facet", Type: "JSON"},
		{Name: "per_facet", Type: "JSON"},
		{Name: "geo_facet", Type: "JSON"},
		{Name: "media_count_by_type", Type: "JSON"},
		{Name: "adx_keywords", Type: "VARCHAR"},
	},
}

// allFamilies returns the known families in classification priority order
// (archive before most_popular).
func allFamilies() []*Family {
	return []*Family{archiveFamily, mostPopularFamily}
}
