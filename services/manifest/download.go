package manifest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/KiaArmani/NFLBot/clients/bungie"
	"github.com/KiaArmani/NFLBot/clients/gcp"
)

// fetchWorldContent obtains the world content zip for the given content
// path and extracts the .content database out of it. It returns the
// path of the extracted database file.
//
// When a mirror bucket is configured the zip is looked up there first
// and uploaded there after a successful Bungie download, keyed by the
// content path's file name so each manifest version gets its own
// object.
func fetchWorldContent(ctx context.Context, client *bungie.Client, contentPath string, config Config) (string, error) {
	dir := config.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	zipPath := filepath.Join(dir, "manifest.zip")
	objectName := filepath.Base(contentPath)

	fromMirror := false
	if config.Bucket != "" {
		if err := gcp.DownloadFile(config.Bucket, objectName, zipPath); err != nil {
			log.Warn().Err(err).Str("object", objectName).Msg("manifest not in mirror, downloading from bungie")
		} else {
			fromMirror = true
		}
	}

	if !fromMirror {
		if err := downloadFile(ctx, bungie.ContentURL(contentPath), zipPath); err != nil {
			return "", fmt.Errorf("failed to download manifest: %w", err)
		}
		if config.Bucket != "" {
			f, err := os.Open(zipPath)
			if err != nil {
				return "", err
			}
			err = gcp.UploadFile(ctx, config.Bucket, objectName, "application/zip", f)
			f.Close()
			if err != nil {
				log.Error().Err(err).Str("object", objectName).Msg("failed to mirror manifest zip")
			}
		}
	}

	return extractContent(zipPath, dir)
}

// downloadFile streams a bungie.net URL to the given destination path.
func downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("User-Agent", "NFLBot")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad response status: %s (code: %d)", resp.Status, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write data to file: %w", err)
	}

	log.Info().
		Str("destination", destPath).
		Int64("size", resp.ContentLength).
		Msg("downloaded manifest archive")
	return nil
}

// extractContent pulls the first *.content entry out of the zip into
// dir and returns its path.
func extractContent(zipPath, dir string) (string, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open manifest archive: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if !strings.HasSuffix(file.Name, ".content") {
			continue
		}
		destPath := filepath.Join(dir, filepath.Base(file.Name))
		src, err := file.Open()
		if err != nil {
			return "", err
		}
		dest, err := os.Create(destPath)
		if err != nil {
			src.Close()
			return "", err
		}
		_, err = io.Copy(dest, src)
		src.Close()
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
		log.Info().Str("database", destPath).Msg("extracted manifest database")
		return destPath, nil
	}
	return "", fmt.Errorf("no .content database in %s", zipPath)
}
