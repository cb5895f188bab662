package build

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

//go:embed assets/main.css
var baseAssets embed.FS

// emitAssets writes the generated stylesheets and copies the static
// directory into the output tree. It returns the site-relative paths of
// everything emitted, which the link checker treats as valid targets.
func (b *Builder) emitAssets(outputDir string) ([]string, error) {
	var assets []string

	mainCSS, err := baseAssets.ReadFile("assets/main.css")
	if err != nil {
		return nil, fmt.Errorf("reading embedded stylesheet: %w", err)
	}
	if err := writeFile(filepath.Join(outputDir, "css", "main.css"), mainCSS); err != nil {
		return nil, err
	}
	assets = append(assets, "/css/main.css")

	chromaCSS, err := highlightCSS(b.cfg.Theme.HighlightStyle)
	if err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(outputDir, "css", "chroma.css"), chromaCSS); err != nil {
		return nil, err
	}
	assets = append(assets, "/css/chroma.css")

	staticDir := filepath.Join(b.root, b.cfg.Build.StaticDir)
	copied, err := copyStatic(staticDir, outputDir)
	if err != nil {
		return nil, err
	}
	assets = append(assets, copied...)

	sort.Strings(assets)
	return assets, nil
}

// highlightCSS renders the chroma class stylesheet for the configured style.
func highlightCSS(styleName string) ([]byte, error) {
	if styleName == "" {
		styleName = "github"
	}
	style := styles.Get(styleName)

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return nil, fmt.Errorf("writing highlight stylesheet: %w", err)
	}
	return buf.Bytes(), nil
}

// copyStatic mirrors the static directory into the output root. A missing
// static directory is not an error; sites without assets skip it.
func copyStatic(staticDir, outputDir string) ([]string, error) {
	info, err := os.Stat(staticDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static path %s is not a directory", staticDir)
	}

	var copied []string
	err = filepath.WalkDir(staticDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(outputDir, rel)); err != nil {
			return err
		}
		copied = append(copied, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copying static assets: %w", err)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
