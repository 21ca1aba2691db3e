// Package index renders a static, browsable listing page over a storage
// folder. The page is a stateless rendering of the directory contents; it
// carries no sync state.
package index

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the name of the generated listing page.
const FileName = "index.html"

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>PDF Index</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    input[type="text"] { width: 300px; padding: 8px; margin-bottom: 20px; }
    ul { list-style-type: none; padding: 0; }
    li { margin: 6px 0; }
    a { text-decoration: none; color: #0066cc; }
    a:hover { text-decoration: underline; }
  </style>
  <script>
    window.onload = () => {
        document.getElementById('search').focus();
        };
    function search() {
      const input = document.getElementById('search').value.toLowerCase();
      const items = document.querySelectorAll('li');
      items.forEach(item => {
        const text = item.textContent.toLowerCase();
        item.style.display = text.includes(input) ? '' : 'none';
      });
    }
  </script>
</head>
<body>
  <h1>{{.Heading}}</h1>
  <input type="text" id="search" onkeyup="search()" placeholder="Search PDFs...">
  <ul>
{{- range .Files}}
    <li><a href="{{.}}">{{.}}</a></li>
{{- end}}
  </ul>
</body>
</html>
`))

type pageData struct {
	Heading string
	Files   []string
}

// Write renders the listing page for dir into dir/index.html.
//
// Every regular file except .html files is listed, sorted
// case-insensitively. Subdirectories (including the archive folder) are
// not listed.
func Write(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".html") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})

	out, err := os.Create(filepath.Join(abs, FileName))
	if err != nil {
		return fmt.Errorf("failed to create index page: %w", err)
	}

	data := pageData{Heading: filepath.Base(abs), Files: files}
	if err := pageTemplate.Execute(out, data); err != nil {
		out.Close()
		return fmt.Errorf("failed to render index page: %w", err)
	}
	return out.Close()
}
