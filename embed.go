package quotemill

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

// SharedAssets holds static files copied into the share root at startup.
// Embed pages reference embed/style.css with a relative link so the
// artifacts stay portable behind any static file server.
//
//go:embed assets/embed.css
var SharedAssets embed.FS

func installSharedAssets(shareRoot string) error {
	css, err := SharedAssets.ReadFile("assets/embed.css")
	if err != nil {
		return fmt.Errorf("read embedded stylesheet: %w", err)
	}
	dir := filepath.Join(shareRoot, "embed")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create embed dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "style.css"), css, 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}
