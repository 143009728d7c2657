// Package config reads the handcursor tunables from the environment.
package config

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/handcursor/internal/pointer"
)

// Environment variable names.
const (
	EnvSmoothAlpha    = "SMOOTH_ALPHA"
	EnvAccelGain      = "ACCEL_GAIN"
	EnvDeadzonePx     = "MOVE_DEADZONE_PX"
	EnvMaxUpdateHz    = "MAX_UPDATE_HZ"
	EnvPinchThreshold = "PINCH_THRESHOLD"
	EnvPinchRelease   = "PINCH_RELEASE"
	EnvClickCooldown  = "CLICK_COOLDOWN"
	EnvProcScale      = "PROC_SCALE"
	EnvDrawOverlays   = "DRAW_OVERLAYS"
	EnvMouseBackend   = "MOUSE_BACKEND"
	EnvHeadless       = "HEADLESS"
	EnvCameraID       = "CAMERA_ID"
	EnvCameraWidth    = "CAMERA_WIDTH"
	EnvCameraHeight   = "CAMERA_HEIGHT"
	EnvDataDir        = "HANDCURSOR_DATA_DIR"
)

// Defaults that are not pointer tunables.
const (
	DefaultProcScale    = 0.75
	DefaultCameraWidth  = 960
	DefaultCameraHeight = 540
)

// Config is the effective runtime configuration.
type Config struct {
	Pointer pointer.Config

	// ProcScale downscales frames before detection. Only values in [0.2, 1.0) take effect.
	ProcScale    float64
	DrawOverlays bool

	// MouseBackend is the preferred injection backend name, or empty for automatic.
	MouseBackend string
	Headless     bool

	CameraID     int
	CameraWidth  int
	CameraHeight int

	DataDir string
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Pointer:      pointer.DefaultConfig(),
		ProcScale:    DefaultProcScale,
		DrawOverlays: true,
		CameraWidth:  DefaultCameraWidth,
		CameraHeight: DefaultCameraHeight,
		DataDir:      defaultDataDir(),
	}
}

// Load reads the configuration from the process environment.
func Load() Config {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration using lookup. Malformed or out of range
// values keep their default and log a warning.
func LoadFrom(lookup LookupFunc) Config {
	cfg := Default()
	r := reader{lookup: lookup}

	p := &cfg.Pointer
	p.BaseAlpha = r.float(EnvSmoothAlpha, p.BaseAlpha, func(v float64) bool { return v > 0 && v <= 1 })
	p.AccelGain = r.float(EnvAccelGain, p.AccelGain, nonNegative)
	p.DeadzonePx = r.int(EnvDeadzonePx, p.DeadzonePx, func(v int) bool { return v >= 0 })
	p.MaxUpdateHz = r.float(EnvMaxUpdateHz, p.MaxUpdateHz, nonNegative)
	p.PinchThreshold = r.float(EnvPinchThreshold, p.PinchThreshold, func(v float64) bool { return v > 0 })
	p.PinchRelease = r.float(EnvPinchRelease, p.PinchRelease, nonNegative)
	p.ClickCooldown = r.seconds(EnvClickCooldown, p.ClickCooldown)

	cfg.ProcScale = r.float(EnvProcScale, cfg.ProcScale, func(v float64) bool { return v > 0 })
	cfg.DrawOverlays = r.bool(EnvDrawOverlays, cfg.DrawOverlays)
	cfg.MouseBackend = strings.ToLower(strings.TrimSpace(r.string(EnvMouseBackend, "")))
	cfg.Headless = r.bool(EnvHeadless, cfg.Headless)

	cfg.CameraID = r.int(EnvCameraID, cfg.CameraID, func(v int) bool { return v >= 0 })
	cfg.CameraWidth = r.int(EnvCameraWidth, cfg.CameraWidth, positive)
	cfg.CameraHeight = r.int(EnvCameraHeight, cfg.CameraHeight, positive)
	cfg.DataDir = r.string(EnvDataDir, cfg.DataDir)

	return cfg
}

// Settings flattens the effective tunables to key/value pairs for persistence.
func (c Config) Settings() map[string]string {
	p := c.Pointer
	return map[string]string{
		EnvSmoothAlpha:    strconv.FormatFloat(p.BaseAlpha, 'g', -1, 64),
		EnvAccelGain:      strconv.FormatFloat(p.AccelGain, 'g', -1, 64),
		EnvDeadzonePx:     strconv.Itoa(p.DeadzonePx),
		EnvMaxUpdateHz:    strconv.FormatFloat(p.MaxUpdateHz, 'g', -1, 64),
		EnvPinchThreshold: strconv.FormatFloat(p.PinchThreshold, 'g', -1, 64),
		EnvPinchRelease:   strconv.FormatFloat(p.PinchRelease, 'g', -1, 64),
		EnvClickCooldown:  strconv.FormatFloat(p.ClickCooldown.Seconds(), 'g', -1, 64),
		EnvProcScale:      strconv.FormatFloat(c.ProcScale, 'g', -1, 64),
		EnvMouseBackend:   c.MouseBackend,
	}
}

// DatabasePath is the sqlite file inside DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "handcursor.db")
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".handcursor"
	}
	return filepath.Join(homeDir, ".handcursor")
}

type reader struct {
	lookup LookupFunc
}

func (r reader) string(key, def string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (r reader) float(key string, def float64, valid func(float64) bool) float64 {
	raw, ok := r.lookup(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !valid(v) {
		log.Printf("Ignoring %s=%q, using default %g", key, raw, def)
		return def
	}
	return v
}

// seconds parses a non-negative number of seconds.
func (r reader) seconds(key string, def time.Duration) time.Duration {
	raw, ok := r.lookup(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		log.Printf("Ignoring %s=%q, using default %s", key, raw, def)
		return def
	}
	return time.Duration(math.Round(v * float64(time.Second)))
}

func (r reader) int(key string, def int, valid func(int) bool) int {
	raw, ok := r.lookup(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !valid(v) {
		log.Printf("Ignoring %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}

// bool treats 1, true and yes as true; anything else set is false.
func (r reader) bool(key string, def bool) bool {
	raw, ok := r.lookup(key)
	if !ok || raw == "" {
		return def
	}
	switch strings.TrimSpace(raw) {
	case "1", "true", "True", "TRUE", "yes":
		return true
	default:
		return false
	}
}

func nonNegative(v float64) bool { return v >= 0 }

func positive(v int) bool { return v > 0 }
