package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

const defaultPollDelay = 1 * time.Second

// Processing states reported by the provider media status endpoint.
const (
	mediaStateSucceeded  = "succeeded"
	mediaStatePending    = "pending"
	mediaStateInProgress = "in_progress"
	mediaStateFailed     = "failed"
)

// MediaUploadClient turns a remote image URL into a provider media handle via
// the initialize/append/finalize/status protocol. Only single-segment uploads;
// video-sized media would need segment chunking on top of this.
type MediaUploadClient struct {
	httpClient *http.Client
	uploadURL  string // base, e.g. https://api.x.com/2/media/upload
	clock      Clock
	pollDelay  time.Duration // used when the provider omits check_after_secs
}

func NewMediaUploadClient(httpClient *http.Client, uploadURL string, clock Clock, pollDelay time.Duration) *MediaUploadClient {
	if pollDelay <= 0 {
		pollDelay = defaultPollDelay
	}
	return &MediaUploadClient{
		httpClient: httpClient,
		uploadURL:  uploadURL,
		clock:      clock,
		pollDelay:  pollDelay,
	}
}

type processingInfo struct {
	State          string `json:"state"`
	CheckAfterSecs int64  `json:"check_after_secs"`
}

type mediaData struct {
	ID             string          `json:"id"`
	ProcessingInfo *processingInfo `json:"processing_info"`
}

type mediaResponse struct {
	Data mediaData `json:"data"`
}

func (c *MediaUploadClient) Upload(ctx context.Context, imageURL string, accessToken string) (string, error) {
	contentType, totalBytes, err := c.probe(ctx, imageURL)
	if err != nil {
		return "", &MediaUploadError{Phase: MediaPhaseFetch, Err: err}
	}

	mediaID, err := c.initSession(ctx, accessToken, contentType, totalBytes)
	if err != nil {
		return "", &MediaUploadError{Phase: MediaPhaseInit, Err: err}
	}

	if err = c.appendSegment(ctx, accessToken, mediaID, imageURL); err != nil {
		return "", &MediaUploadError{Phase: MediaPhaseAppend, Err: err}
	}

	info, err := c.finalize(ctx, accessToken, mediaID)
	if err != nil {
		return "", &MediaUploadError{Phase: MediaPhaseFinalize, Err: err}
	}

	if err = c.awaitProcessing(ctx, accessToken, mediaID, info); err != nil {
		return "", err
	}
	return mediaID, nil
}

// probe HEADs the image to learn content type and size. The protocol requires
// declaring total bytes up front, so a missing content-length is fatal.
func (c *MediaUploadClient) probe(ctx context.Context, imageURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("image url returned status %d", resp.StatusCode)
	}
	if resp.ContentLength <= 0 {
		return "", 0, fmt.Errorf("image url response missing content-length")
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType, resp.ContentLength, nil
}

func (c *MediaUploadClient) initSession(ctx context.Context, accessToken string, contentType string, totalBytes int64) (string, error) {
	payload := map[string]interface{}{
		"media_category": "tweet_image",
		"media_type":     contentType,
		"total_bytes":    totalBytes,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	respBody, statusCode, err := c.doUpload(ctx, accessToken, c.uploadURL+"/initialize", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if statusCode < 200 || statusCode > 299 {
		return "", &APIError{Op: "media/init", StatusCode: statusCode, Body: string(respBody)}
	}

	var parsed mediaResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("media init response missing media id")
	}
	return parsed.Data.ID, nil
}

// appendSegment fetches the full image body and uploads it as segment 0.
func (c *MediaUploadClient) appendSegment(ctx context.Context, accessToken string, mediaID string, imageURL string) error {
	imgReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	imgResp, err := c.httpClient.Do(imgReq)
	if err != nil {
		return err
	}
	defer imgResp.Body.Close()
	if imgResp.StatusCode < 200 || imgResp.StatusCode > 299 {
		return fmt.Errorf("image url returned status %d on fetch", imgResp.StatusCode)
	}
	imageBytes, err := io.ReadAll(imgResp.Body)
	if err != nil {
		return err
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err = writer.WriteField("segment_index", strconv.Itoa(0)); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("media", "media")
	if err != nil {
		return err
	}
	if _, err = part.Write(imageBytes); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}

	respBody, statusCode, err := c.doUpload(ctx, accessToken, c.uploadURL+"/"+mediaID+"/append", writer.FormDataContentType(), &form)
	if err != nil {
		return err
	}
	if statusCode < 200 || statusCode > 299 {
		return &APIError{Op: "media/append", StatusCode: statusCode, Body: string(respBody)}
	}
	return nil
}

func (c *MediaUploadClient) finalize(ctx context.Context, accessToken string, mediaID string) (*processingInfo, error) {
	respBody, statusCode, err := c.doUpload(ctx, accessToken, c.uploadURL+"/"+mediaID+"/finalize", "application/json", nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode > 299 {
		return nil, &APIError{Op: "media/finalize", StatusCode: statusCode, Body: string(respBody)}
	}

	var parsed mediaResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data.ProcessingInfo, nil
}

// awaitProcessing polls status while the provider reports an in-flight state.
// No max poll bound; callers impose deadlines through ctx.
func (c *MediaUploadClient) awaitProcessing(ctx context.Context, accessToken string, mediaID string, info *processingInfo) error {
	for {
		if info == nil || info.State == "" || info.State == mediaStateSucceeded {
			return nil
		}
		if info.State != mediaStatePending && info.State != mediaStateInProgress {
			return &MediaUploadError{Phase: MediaPhaseProcessing,
				Err: fmt.Errorf("media %s entered state %s", mediaID, info.State)}
		}

		delay := c.pollDelay
		if info.CheckAfterSecs > 0 {
			delay = time.Duration(info.CheckAfterSecs) * time.Second
		}
		if err := c.clock.Sleep(ctx, delay); err != nil {
			return &MediaUploadError{Phase: MediaPhaseProcessing, Err: err}
		}

		next, err := c.status(ctx, accessToken, mediaID)
		if err != nil {
			return &MediaUploadError{Phase: MediaPhaseProcessing, Err: err}
		}
		log.Printf("correlationID: %s media processing state: %s", mediaID, next.State)
		info = next
	}
}

func (c *MediaUploadClient) status(ctx context.Context, accessToken string, mediaID string) (*processingInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uploadURL+"?media_id="+mediaID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Op: "media/status", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed mediaResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Data.ProcessingInfo == nil {
		// Provider stopped reporting processing info; treat as done.
		return &processingInfo{State: mediaStateSucceeded}, nil
	}
	return parsed.Data.ProcessingInfo, nil
}

func (c *MediaUploadClient) doUpload(ctx context.Context, accessToken string, url string, contentType string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return respBody, resp.StatusCode, nil
}
