package site

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"photosite/internal/catalog"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// writeSitemap lists the index and every detail page under base.
func writeSitemap(out, base string, entries []Entry) error {
	urls := []sitemapURL{{Loc: strings.TrimRight(base, "/") + "/"}}
	for _, e := range entries {
		urls = append(urls, sitemapURL{Loc: catalog.DetailLink(base, e.Num)})
	}
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(out, "sitemap.xml"), data, 0o644)
}
