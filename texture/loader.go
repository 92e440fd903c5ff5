package texture

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
)

//go:embed assets
var assets embed.FS

// Assets holds the images shipped with the module, rooted so that
// "assets/noise.png" resolves.
var Assets fs.FS = assets

const userAgent = "goshaderquad (+https://github.com/richinsley/goshaderquad)"

type headerTransport struct {
	Transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.Transport.RoundTrip(req)
}

// DefaultClient sets a User-Agent on every request and honors proxy
// environment variables.
var DefaultClient = &http.Client{
	Transport: &headerTransport{Transport: &http.Transport{Proxy: http.ProxyFromEnvironment}},
}

// Loader resolves a texture reference to a decoded RGBA image. References
// may be http(s) URLs, file:// URLs, local paths (with ~ expansion), or
// names of embedded assets ("embed:noise.png" or a relative path such as
// "assets/noise.png" that is not present on disk).
type Loader struct {
	Client *http.Client
	// CacheDir, when set, stores downloaded media by base name.
	CacheDir string
	Assets   fs.FS
	// MaxSize bounds the longest edge of a decoded image; 0 means no limit.
	MaxSize int
}

// DefaultMaxSize bounds decoded textures from NewLoader.
const DefaultMaxSize = 4096

// NewLoader returns a loader using DefaultClient, the embedded assets and
// the "textures" cache directory. Downloads are not cached if that
// directory cannot be created.
func NewLoader() *Loader {
	l := &Loader{
		Client:  DefaultClient,
		Assets:  Assets,
		MaxSize: DefaultMaxSize,
	}
	dir, err := CacheDir("textures")
	if err != nil {
		log.Printf("Warning: texture cache disabled: %v", err)
	} else {
		l.CacheDir = dir
	}
	return l
}

// Load fetches and decodes ref.
func (l *Loader) Load(ctx context.Context, ref string) (*image.RGBA, error) {
	data, err := l.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, l.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref, err)
	}
	return img, nil
}

// Fetch returns the raw bytes behind ref.
func (l *Loader) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, errors.New("empty texture reference")
	}

	switch {
	case strings.HasPrefix(ref, "embed:"):
		return l.readAsset(strings.TrimPrefix(ref, "embed:"))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.download(ctx, ref)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid file url %s: %w", ref, err)
		}
		return l.readFile(u.Path)
	default:
		return l.readFile(ref)
	}
}

func (l *Loader) readAsset(name string) ([]byte, error) {
	if l.Assets == nil {
		return nil, fmt.Errorf("no embedded assets to resolve %s", name)
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if !strings.HasPrefix(name, "assets/") {
		name = "assets/" + name
	}
	data, err := fs.ReadFile(l.Assets, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded asset %s: %w", name, err)
	}
	return data, nil
}

func (l *Loader) readFile(p string) ([]byte, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path %s: %w", p, err)
	}
	data, err := os.ReadFile(expanded)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, fs.ErrNotExist) && l.Assets != nil && !filepath.IsAbs(expanded) {
		if asset, aerr := l.readAsset(filepath.ToSlash(p)); aerr == nil {
			return asset, nil
		}
	}
	return nil, fmt.Errorf("failed to read texture %s: %w", p, err)
}

func (l *Loader) download(ctx context.Context, mediaURL string) ([]byte, error) {
	var cachePath string
	if l.CacheDir != "" {
		u, err := url.Parse(mediaURL)
		if err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			cachePath = filepath.Join(l.CacheDir, path.Base(u.Path))
			if data, err := os.ReadFile(cachePath); err == nil {
				return data, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", mediaURL, err)
	}
	client := l.Client
	if client == nil {
		client = DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download media %s: %w", mediaURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load media %s, status code: %d", mediaURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media data from %s: %w", mediaURL, err)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			log.Printf("Warning: failed to save media to cache at %s: %v", cachePath, err)
		}
	}
	return data, nil
}

// CacheDir returns (and creates) an OS-specific cache directory for subdir.
func CacheDir(subdir string) (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", fmt.Errorf("LOCALAPPDATA environment variable not set")
		}
	case "darwin":
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, "Library", "Caches")
	default:
		base = os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := homedir.Dir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".cache")
		}
	}

	dir := filepath.Join(base, "goshaderquad", subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory at %s: %w", dir, err)
	}
	return dir, nil
}
