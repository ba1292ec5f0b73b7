package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"moviemeta/internal/config"
	"moviemeta/internal/omdb"
	"moviemeta/internal/services"
)

// probeTitle is looked up by CheckOMDb. Found or not found both prove the
// endpoint and key work.
const probeTitle = "Inception"

// CheckAPIKey reports whether an OMDb API key is configured.
func CheckAPIKey(cfg *config.Config) Result {
	const name = "OMDb API key"
	if err := cfg.RequireAPIKey(); err != nil {
		return Result{Name: name, Detail: "missing (pass --key, set OMDB_API_KEY, or edit the config)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckOMDb performs one probe lookup with a single attempt.
func CheckOMDb(ctx context.Context, looker omdb.Looker, timeout time.Duration) Result {
	const name = "OMDb"
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	if _, err := looker.Lookup(checkCtx, probeTitle, ""); err != nil {
		return Result{Name: name, Detail: summarizeLookupError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%v)", time.Since(started).Round(time.Millisecond))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeLookupError(err error) string {
	if errors.Is(err, services.ErrConfiguration) {
		return "auth failed (invalid api key)"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "probe timed out (OMDb unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "probe timed out (OMDb unreachable)"
	}
	return err.Error()
}
