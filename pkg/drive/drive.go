// Package drive downloads input spreadsheets from Google Drive using
// a service account.
package drive

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	googledrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/retry"
)

const sheetsMimeType = "application/vnd.google-apps.spreadsheet"
const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Client fetches files from Google Drive
type Client struct {
	service  *googledrive.Service
	retryCfg retry.Config
	logger   *logging.Logger
}

// NewClient builds a Drive client from service account credentials.
// The credentials may be raw JSON or base64-encoded JSON, matching
// how the deployment injects them.
func NewClient(ctx context.Context, credentials string, logger *logging.Logger) (*Client, error) {
	creds, err := DecodeCredentials(credentials)
	if err != nil {
		return nil, err
	}

	service, err := googledrive.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(googledrive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}

	return &Client{
		service:  service,
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}, nil
}

// DecodeCredentials accepts either raw service account JSON or its
// base64 encoding and returns the JSON bytes
func DecodeCredentials(credentials string) ([]byte, error) {
	trimmed := strings.TrimSpace(credentials)
	if trimmed == "" {
		return nil, fmt.Errorf("empty credentials")
	}
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("credentials are neither JSON nor base64: %w", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return nil, fmt.Errorf("decoded credentials are not JSON")
	}
	return decoded, nil
}

// Download fetches one file and returns its name and content. Native
// Google Sheets are exported as xlsx; everything else is downloaded
// as stored.
func (c *Client) Download(ctx context.Context, fileID string) (string, []byte, error) {
	var meta *googledrive.File
	err := retry.Do(ctx, c.retryCfg, func() error {
		var err error
		meta, err = c.service.Files.Get(fileID).Fields("name", "mimeType").Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up file %s: %w", fileID, err)
	}

	var data []byte
	err = retry.Do(ctx, c.retryCfg, func() error {
		var resp io.ReadCloser
		if meta.MimeType == sheetsMimeType {
			r, err := c.service.Files.Export(fileID, xlsxMimeType).Context(ctx).Download()
			if err != nil {
				return err
			}
			resp = r.Body
		} else {
			r, err := c.service.Files.Get(fileID).Context(ctx).Download()
			if err != nil {
				return err
			}
			resp = r.Body
		}
		defer resp.Close()

		body, readErr := io.ReadAll(resp)
		if readErr != nil {
			return readErr
		}
		data = body
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}

	name := meta.Name
	if meta.MimeType == sheetsMimeType && !strings.HasSuffix(name, ".xlsx") {
		name += ".xlsx"
	}

	c.logger.Info("Downloaded input file", map[string]interface{}{
		"file_id":  fileID,
		"filename": name,
		"bytes":    len(data),
	})

	return name, data, nil
}
