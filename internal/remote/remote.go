// Package remote pre-populates the local image directory from an object
// storage bucket using an external rclone binary.
//
// Sync runs strictly before normalization. It is best effort by design:
// when rclone is not installed, or no bucket is configured, the pipeline
// simply builds from whatever is already on disk.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"mc-gallery/internal/logging"
)

// DefaultTimeout bounds a whole sync run.
const DefaultTimeout = 10 * time.Minute

// Sync copies the contents of bucket into localDir via rclone. Returns
// (false, nil) when the sync was skipped, (true, nil) on success.
func Sync(ctx context.Context, bucket, localDir string) (bool, error) {
	if bucket == "" {
		logging.Debug("No remote bucket configured, skipping sync")
		return false, nil
	}

	rclonePath, err := exec.LookPath("rclone")
	if err != nil {
		logging.Info("rclone not found, skipping remote sync for %s", bucket)
		return false, nil
	}
	logging.Debug("Using rclone: %s", rclonePath)

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, rclonePath, "sync", bucket, localDir)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Info("Syncing %s -> %s", bucket, localDir)
	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("rclone sync %s failed: %v, stderr: %s", bucket, err, stderr.String())
	}

	logging.Info("Remote sync complete")
	return true, nil
}
