package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
)

const css = `:root{--bg:#fafafa;--fg:#222;--muted:#666;--card:#fff;--shadow:rgba(0,0,0,.06);--radius:16px;--maxw:960px}
*{box-sizing:border-box}
html,body{margin:0;padding:0;background:var(--bg);color:var(--fg);font:16px/1.6 system-ui,-apple-system,"Segoe UI",Roboto,Ubuntu,"Helvetica Neue",Arial,sans-serif}
img{max-width:100%;height:auto;display:block}
a{color:#0a58ca;text-decoration:none}
a:hover{text-decoration:underline}
.site-header,.site-footer{max-width:var(--maxw);margin:auto;padding:16px 20px}
.brand{font-weight:700;font-size:20px}
main{max-width:var(--maxw);margin:0 auto;padding:10px 20px 40px}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(240px,1fr));gap:18px}
.card{background:var(--card);border-radius:var(--radius);box-shadow:0 10px 20px var(--shadow);overflow:hidden;transition:transform .15s ease,box-shadow .15s ease}
.card:hover{transform:translateY(-2px);box-shadow:0 14px 24px var(--shadow)}
.card .thumb{aspect-ratio:4/3;object-fit:cover}
.card .body{padding:12px 14px}
.card .meta{font-size:12px;color:var(--muted);display:flex;gap:10px;flex-wrap:wrap}
.entry-card{background:var(--card);border-radius:var(--radius);box-shadow:0 10px 20px var(--shadow);padding:18px}
.entry-figure{margin:0 0 12px 0}
.entry-text{white-space:pre-wrap;font-size:18px}
.entry-meta{color:var(--muted);margin:6px 0 14px 0}
.entry-nav{display:flex;gap:12px;margin-top:16px;flex-wrap:wrap}
`

// =============================================================================
// Components
// =============================================================================

// Layout wraps body in the document shell shared by all pages. home is
// the href of the index relative to the page.
func Layout(t Texts, title, home string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, `<!doctype html><html lang="%s"><head><meta charset="utf-8"/>`, templ.EscapeString(t.Lang))
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		fmt.Fprintf(&buf, `<title>%s</title><style>%s</style></head><body>`, templ.EscapeString(title), css)
		if home == "" {
			fmt.Fprintf(&buf, `<header class="site-header"><div class="brand">%s</div></header>`, templ.EscapeString(t.Brand))
		} else {
			fmt.Fprintf(&buf, `<header class="site-header"><a href="%s" class="brand">%s</a></header>`,
				templ.EscapeString(home), templ.EscapeString(t.Brand))
		}
		buf.WriteString(`<main>`)
		if err := body.Render(ctx, &buf); err != nil {
			return err
		}
		fmt.Fprintf(&buf, `</main><footer class="site-footer"><p>%s</p></footer></body></html>`, templ.EscapeString(t.Footer))
		buf.WriteString("\n")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Card is the index tile linking to one entry.
func Card(e Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<a class="card" href="%s"><img class="thumb" src="%s" alt=""><div class="body"><div class="meta"><span>#%s</span><span>%s</span></div><div>%s</div></div></a>`,
			templ.EscapeString(e.Href()),
			templ.EscapeString(assetURL(ThumbsDir, e.Asset)),
			templ.EscapeString(e.Num),
			displayDate(e),
			FormatInline(Preview(e.Description)),
		)
		return err
	})
}

// IndexPage lists all entries as cards.
func IndexPage(t Texts, entries []Entry) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, `<section><h1>%s</h1><div class="grid">`, templ.EscapeString(t.IndexHeading))
		for _, e := range entries {
			if err := Card(e).Render(ctx, &buf); err != nil {
				return err
			}
		}
		buf.WriteString(`</div></section>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
	return Layout(t, t.IndexTitle, "", body)
}

// EntryPage shows entries[i] with links to its neighbors.
func EntryPage(t Texts, entries []Entry, i int) templ.Component {
	e := entries[i]
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<article class="entry"><div class="entry-card"><figure class="entry-figure">`)
		fmt.Fprintf(&buf, `<img src="../%s" alt=""></figure>`, templ.EscapeString(assetURL(ImagesDir, e.Asset)))
		fmt.Fprintf(&buf, `<div class="entry-meta">%s</div>`, displayDate(e))
		fmt.Fprintf(&buf, `<div class="entry-text">%s</div></div>`, FormatInline(e.Description))
		fmt.Fprintf(&buf, `<nav class="entry-nav"><a href="../index.html">%s</a>`, templ.EscapeString(t.Back))
		if i > 0 {
			fmt.Fprintf(&buf, ` <a href="%s.html">%s</a>`,
				templ.EscapeString(entries[i-1].Num), templ.EscapeString(t.Previous))
		}
		if i < len(entries)-1 {
			fmt.Fprintf(&buf, ` <a href="%s.html">%s</a>`,
				templ.EscapeString(entries[i+1].Num), templ.EscapeString(t.Next))
		}
		buf.WriteString(`</nav></article>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
	return Layout(t, t.EntryTitle+" "+e.Num, "../index.html", body)
}

// =============================================================================
// Helpers
// =============================================================================

// assetURL joins dir and a slash separated asset name, escaping each segment.
func assetURL(dir, asset string) string {
	parts := strings.Split(asset, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return dir + "/" + strings.Join(parts, "/")
}

func displayDate(e Entry) string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// writePages renders every detail page and the index.
func writePages(ctx context.Context, out string, t Texts, entries []Entry) error {
	for i, e := range entries {
		path := filepath.Join(out, EntriesDir, e.Num+".html")
		if err := renderFile(ctx, path, EntryPage(t, entries, i)); err != nil {
			return err
		}
	}
	return renderFile(ctx, filepath.Join(out, "index.html"), IndexPage(t, entries))
}

func renderFile(ctx context.Context, path string, c templ.Component) error {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
