package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

const auphonicCheckName = "Auphonic"

// CreditsReader is satisfied by the Auphonic client.
type CreditsReader interface {
	Credits(ctx context.Context) (float64, error)
}

// CheckAuphonic verifies the token by reading the account's credits. Credits
// below threshold still pass but say so in the detail.
func CheckAuphonic(ctx context.Context, client CreditsReader, threshold float64) Result {
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	credits, err := client.Credits(checkCtx)
	if err != nil {
		return Result{Name: auphonicCheckName, Detail: summarizeRemoteError(err)}
	}
	detail := fmt.Sprintf("reachable, %.2f credit hours left", credits)
	if credits < threshold {
		detail += fmt.Sprintf(" (below %.0f)", threshold)
	}
	return Result{Name: auphonicCheckName, Passed: true, Detail: detail}
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

// CheckFreeSpace fails when the filesystem holding path has less than
// minBytes available to unprivileged users.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(free), path)
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (need at least %s)", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckWebhookURL rejects callback URLs Auphonic cannot reach, such as
// loopback hosts.
func CheckWebhookURL(raw string) Result {
	const name = "Webhook URL"
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%q is not an absolute URL", raw)}
	}
	host := parsed.Hostname()
	if strings.EqualFold(host, "localhost") {
		return Result{Name: name, Detail: raw + " (loopback; set server.public_url)"}
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsUnspecified()) {
		return Result{Name: name, Detail: raw + " (loopback; set server.public_url)"}
	}
	return Result{Name: name, Passed: true, Detail: raw}
}

func summarizeRemoteError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "credit check timed out (Auphonic unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "credit check timed out (Auphonic unreachable)"
	}
	return err.Error()
}
