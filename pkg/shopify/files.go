package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

const stagedUploadsCreateMutation = `
mutation StagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters {
        name
        value
      }
    }
    userErrors {
      field
      message
    }
  }
}
`

const fileCreateMutation = `
mutation FileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files {
      id
      fileStatus
    }
    userErrors {
      field
      message
    }
  }
}
`

type StagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

// StagedUploadCreate requests one PUT upload target for the given file.
func (c Client) StagedUploadCreate(ctx context.Context, fileName, mimeType string, size int64) (*StagedTarget, error) {
	var data struct {
		StagedUploadsCreate struct {
			StagedTargets []StagedTarget `json:"stagedTargets"`
			UserErrors    []UserError    `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	err := c.gql(ctx, stagedUploadsCreateMutation, map[string]any{
		"input": []map[string]any{
			{
				"filename":   fileName,
				"mimeType":   mimeType,
				"resource":   "FILE",
				"fileSize":   fmt.Sprintf("%d", size),
				"httpMethod": "PUT",
			},
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.StagedUploadsCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("stagedUploadsCreate user error: %s", data.StagedUploadsCreate.UserErrors[0].Message)
	}
	if len(data.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, fmt.Errorf("stagedUploadsCreate returned no targets")
	}
	return &data.StagedUploadsCreate.StagedTargets[0], nil
}

// UploadToStagedTarget PUTs the raw bytes to the staged target URL.
func (c Client) UploadToStagedTarget(ctx context.Context, target *StagedTarget, mimeType string, data []byte) error {
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = int64(len(data))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("staged upload failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// FileCreate registers an already-staged upload as a Shopify file and returns
// the file GID. The CDN URL becomes available once Shopify finishes
// processing; callers hand out the staged resource URL in the meantime.
func (c Client) FileCreate(ctx context.Context, resourceURL, alt string) (string, error) {
	var data struct {
		FileCreate struct {
			Files []struct {
				ID         string `json:"id"`
				FileStatus string `json:"fileStatus"`
			} `json:"files"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileCreate"`
	}
	err := c.gql(ctx, fileCreateMutation, map[string]any{
		"files": []map[string]any{
			{"originalSource": resourceURL, "alt": alt},
		},
	}, &data)
	if err != nil {
		return "", err
	}
	if len(data.FileCreate.UserErrors) > 0 {
		return "", fmt.Errorf("fileCreate user error: %s", data.FileCreate.UserErrors[0].Message)
	}
	if len(data.FileCreate.Files) == 0 || data.FileCreate.Files[0].ID == "" {
		return "", fmt.Errorf("fileCreate returned no files")
	}
	return data.FileCreate.Files[0].ID, nil
}
