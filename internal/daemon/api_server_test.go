package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"yotdl/internal/api"
	"yotdl/internal/testsupport"
)

func startTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("expected bound api address")
	}
	return d, "http://" + addr
}

func TestStatusEndpoint(t *testing.T) {
	_, base := startTestDaemon(t)

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Running {
		t.Fatal("expected running daemon")
	}
	if len(payload.Dependencies) == 0 {
		t.Fatal("expected dependency list")
	}
}

func TestDownloadsEndpointValidation(t *testing.T) {
	_, base := startTestDaemon(t)

	body := bytes.NewBufferString(`{"url": "notaurl"}`)
	resp, err := http.Post(base+"/api/downloads", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/downloads: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDownloadsEndpointListEmpty(t *testing.T) {
	_, base := startTestDaemon(t)

	resp, err := http.Get(base + "/api/downloads")
	if err != nil {
		t.Fatalf("GET /api/downloads: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload api.DownloadListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Downloads) != 0 {
		t.Fatalf("expected empty list, got %d", len(payload.Downloads))
	}
}

func TestDownloadNotFound(t *testing.T) {
	_, base := startTestDaemon(t)

	resp, err := http.Get(base + "/api/downloads/no-such-id")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFilesEndpoint(t *testing.T) {
	d, base := startTestDaemon(t)
	testsupport.WriteFile(t, filepath.Join(d.cfg.Paths.DownloadDir, "video.mp4"), 64)

	resp, err := http.Get(base + "/api/files")
	if err != nil {
		t.Fatalf("GET /api/files: %v", err)
	}
	defer resp.Body.Close()
	var payload api.FileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Files) != 1 || payload.Files[0].Name != "video.mp4" {
		t.Fatalf("unexpected listing: %+v", payload.Files)
	}

	req, err := http.NewRequest(http.MethodDelete, base+"/api/files/video.mp4", nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}

	again, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("second DELETE: %v", err)
	}
	defer again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", again.StatusCode)
	}
}

func TestFileEscapeRejected(t *testing.T) {
	_, base := startTestDaemon(t)

	req, err := http.NewRequest(http.MethodDelete, base+"/api/files/..%2F..%2Fetc%2Fpasswd", nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("escape attempt must not succeed, got %d", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, base := startTestDaemon(t)

	for _, path := range []string{"/api/status", "/api/stats", "/api/files"} {
		resp, err := http.Post(base+path, "application/json", bytes.NewBufferString("{}"))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("POST %s = %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestClientAddressParsing(t *testing.T) {
	req := &http.Request{RemoteAddr: "192.0.2.7:51234"}
	if got := clientAddress(req); got != "192.0.2.7" {
		t.Fatalf("clientAddress = %q", got)
	}
	req = &http.Request{RemoteAddr: "weird"}
	if got := clientAddress(req); got != "weird" {
		t.Fatalf("clientAddress fallback = %q", got)
	}
}
