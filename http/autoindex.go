package http

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/edgegate/edgegate"
)

// indexEntry is one row of a directory listing.
type indexEntry struct {
	Name     string
	URL      string
	IsDir    bool
	Size     string
	Modified string
}

type indexData struct {
	Path    string
	Entries []indexEntry
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Index of {{.Path}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, Roboto, sans-serif; margin: 2rem; background-color: #eee; }
        .container { max-width: 1200px; margin: 0 auto; background: white; border-radius: 8px; overflow: hidden; }
        .breadcrumb { background: #e9ecef; padding: 1rem 2rem; font-size: 0.9rem; color: #6c757d; }
        table { width: 100%; border-collapse: collapse; }
        th { background-color: #f8f9fa; padding: 1rem 2rem; text-align: left; border-bottom: 2px solid #dee2e6; }
        td { padding: 0.75rem 2rem; border-bottom: 1px solid #dee2e6; }
        tr:hover { background-color: #f8f9fa; }
        a { text-decoration: none; font-weight: 500; }
        .file a { color: #007bff; }
        .dir a { color: #6f42c1; }
        .size, .date { color: #6c757d; font-family: Consolas, Monaco, monospace; font-size: 0.9rem; }
        .size { text-align: right; }
    </style>
</head>
<body>
    <div class="container">
        <div class="breadcrumb">Index of {{.Path}}</div>
        <table>
            <thead>
                <tr><th>Name</th><th>Size</th><th>Modified</th></tr>
            </thead>
            <tbody>
{{- range .Entries}}
                <tr class="{{if .IsDir}}dir{{else}}file{{end}}">
                    <td><a href="{{.URL}}">{{.Name}}</a></td>
                    <td class="size">{{.Size}}</td>
                    <td class="date">{{.Modified}}</td>
                </tr>
{{- end}}
            </tbody>
        </table>
    </div>
</body>
</html>
`

var indexTemplate = template.Must(template.New("autoindex").Parse(indexHTML))

// serveIndex renders a directory listing. Entry links are signed under the
// directory's policy, so listings of signature protected prefixes stay
// navigable without handing out the secret.
func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request, rel string, policy edgegate.PathPolicy) {
	dirEntries, err := fs.ReadDir(h.root.FS(), rel)
	if err != nil {
		HandleError(w, err)
		return
	}

	reqPath := r.URL.Path
	data := indexData{Path: reqPath}

	if reqPath != "/" {
		parent := path.Dir(strings.TrimSuffix(reqPath, "/"))
		data.Entries = append(data.Entries, indexEntry{
			Name:     "../",
			URL:      signedURL(parent, policy),
			IsDir:    true,
			Size:     "-",
			Modified: "-",
		})
	}

	var dirs, files []indexEntry
	for _, entry := range dirEntries {
		name := entry.Name()

		// Hidden entries stay hidden.
		if strings.HasPrefix(name, ".") {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			slog.Warn("failed to stat directory entry", "name", name, "err", infoErr)
			continue
		}

		e := indexEntry{
			Name:     name,
			URL:      signedURL(path.Join(reqPath, name), policy),
			IsDir:    entry.IsDir(),
			Size:     "-",
			Modified: info.ModTime().UTC().Format("2006-01-02 15:04:05"),
		}

		if entry.IsDir() {
			e.Name += "/"
			dirs = append(dirs, e)
		} else {
			e.Size = formatSize(info.Size())
			files = append(files, e)
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	data.Entries = append(data.Entries, dirs...)
	data.Entries = append(data.Entries, files...)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		slog.Error("failed to render directory listing", "path", reqPath, "err", err)
	}
}

// signedURL renders p as a link target, appending a fresh token when the
// policy requires signatures. The token is computed over the decoded path,
// which is what the server sees again when the link is requested; the href
// itself carries the percent-encoded form so names with '?', '#' or spaces
// survive the round trip.
func signedURL(p string, policy edgegate.PathPolicy) string {
	escaped := escapePath(p)
	if !policy.SignatureRequired() {
		return escaped
	}
	expiresAt := edgegate.ExpiryAfter(time.Now(), time.Duration(policy.SigningTTL())*time.Second)
	return escaped + "?" + edgegate.SignQueryParam + "=" + edgegate.Sign(p, expiresAt, policy.Secret, nil)
}

// escapePath percent-encodes each path segment, keeping the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
