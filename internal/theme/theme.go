package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/winstack/internal/core"
)

// colorRegex matches the colour forms lipgloss understands: an ANSI index or
// a #rgb / #rrggbb hex value.
var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// ErrNotFound is returned when no user or bundled palette has the name.
var ErrNotFound = errors.New("theme not found")

// Palette holds the colours the terminal host draws with.
type Palette struct {
	Accent     string `toml:"accent"`     // top window border, headings
	Offsetable string `toml:"offsetable"` // offsetable window border
	Dragging   string `toml:"dragging"`   // border while a pan is active
	Locked     string `toml:"locked"`     // border of windows that refuse pans
	Muted      string `toml:"muted"`      // labels and hints
	Text       string `toml:"text"`       // status line
	Error      string `toml:"error"`      // error status
}

// themeFile is the on-disk form. Extends names a palette whose colours fill
// any key the file leaves unset.
type themeFile struct {
	Extends string `toml:"extends"`
	Palette
}

// Theme is a resolved palette with its origin.
type Theme struct {
	Name      string    // Theme name (without .toml extension)
	Path      string    // Full path to the file (empty for bundled)
	Palette   Palette   // Resolved colours
	ModTime   time.Time // Last modification time
	IsBundled bool      // True if loaded from the embedded set
}

// ThemesDir returns the path to the user's themes directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ThemesDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "winstack", "themes")
}

// CreateThemesDir creates the themes directory if it doesn't exist.
func CreateThemesDir() error {
	return os.MkdirAll(ThemesDir(), 0755)
}

// NewDefaultTheme returns the bundled default palette, ignoring any user
// override. It is the fallback when a configured theme fails to load.
func NewDefaultTheme() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	var f themeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		panic(fmt.Sprintf("theme: bundled default: %v", err))
	}
	return &Theme{Name: DefaultThemeName, Palette: f.Palette, IsBundled: true}
}

// Load resolves a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/winstack/themes/<name>.toml)
//  2. Embedded/bundled themes
//
// An empty name loads the default.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}
	return load(name, make(map[string]bool))
}

func load(name string, seen map[string]bool) (*Theme, error) {
	if seen[name] {
		return nil, fmt.Errorf("theme %q: circular extends", name)
	}
	seen[name] = true

	t := &Theme{Name: name}
	path := filepath.Join(ThemesDir(), name+".toml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		t.Path = path
		if info, statErr := os.Stat(path); statErr == nil {
			t.ModTime = info.ModTime()
		}
	case errors.Is(err, os.ErrNotExist):
		var found bool
		if data, found = GetEmbeddedTheme(name); !found {
			return nil, notFound(name)
		}
		t.IsBundled = true
	default:
		return nil, fmt.Errorf("failed to read theme %s: %w", path, err)
	}

	var f themeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme %q: %w", name, err)
	}

	switch {
	case f.Extends != "":
		parent, err := load(f.Extends, seen)
		if err != nil {
			return nil, err
		}
		f.Palette = f.Palette.over(parent.Palette)
	case name != DefaultThemeName || !t.IsBundled:
		f.Palette = f.Palette.over(NewDefaultTheme().Palette)
	}

	if err := f.Palette.Validate(); err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}
	t.Palette = f.Palette
	return t, nil
}

func notFound(name string) error {
	var names []string
	if themes, err := ListAvailableThemes(); err == nil {
		for _, t := range themes {
			names = append(names, t.Name)
		}
	}
	if hint, ok := core.Suggest(name, names); ok {
		return fmt.Errorf("%w: %s (did you mean %q?)", ErrNotFound, name, hint)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// over fills unset colours in p from base.
func (p Palette) over(base Palette) Palette {
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Palette{
		Accent:     pick(p.Accent, base.Accent),
		Offsetable: pick(p.Offsetable, base.Offsetable),
		Dragging:   pick(p.Dragging, base.Dragging),
		Locked:     pick(p.Locked, base.Locked),
		Muted:      pick(p.Muted, base.Muted),
		Text:       pick(p.Text, base.Text),
		Error:      pick(p.Error, base.Error),
	}
}

// Validate checks every colour is set and in a form lipgloss accepts.
func (p Palette) Validate() error {
	for _, c := range []struct{ key, value string }{
		{"accent", p.Accent},
		{"offsetable", p.Offsetable},
		{"dragging", p.Dragging},
		{"locked", p.Locked},
		{"muted", p.Muted},
		{"text", p.Text},
		{"error", p.Error},
	} {
		if !colorRegex.MatchString(c.value) {
			return fmt.Errorf("%s: invalid colour %q", c.key, c.value)
		}
	}
	return nil
}

// Reload re-reads a user theme from disk.
// Returns true if the palette changed.
func (t *Theme) Reload() (bool, error) {
	if t.IsBundled {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := Load(t.Name)
	if err != nil {
		return false, err
	}
	changed := fresh.Palette != t.Palette
	t.Palette = fresh.Palette
	t.ModTime = fresh.ModTime
	return changed, nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool // True if this is a bundled/embedded theme
}

// ListAvailableThemes lists all available themes (bundled + user).
// A user theme shadowing a bundled one is listed once, with its path.
func ListAvailableThemes() ([]ThemeInfo, error) {
	index := make(map[string]int)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	themesDir := ThemesDir()
	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		path := filepath.Join(themesDir, entry.Name())
		if i, ok := index[name]; ok {
			themes[i].Path = path
			themes[i].IsBundled = false
			continue
		}
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{Name: name, Path: path})
	}

	return themes, nil
}
